package users

import "time"

// Role define los roles soportados por el sistema.
// @Enum ADMIN, SUPERVISOR, DATA_CLERK, CITIZEN
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleDataClerk  Role = "DATA_CLERK"
	RoleCitizen    Role = "CITIZEN"
)

// IsValid reporta si el role es uno de los soportados.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleDataClerk, RoleCitizen:
		return true
	}
	return false
}

// User representa una cuenta del registro civil.
// PasswordHash es bcrypt y nunca se serializa hacia afuera.
type User struct {
	ID       string
	Username string
	Role     Role
	FullName string
	Kebele   string

	PasswordHash string `json:"-"`

	CreatedAt time.Time
}
