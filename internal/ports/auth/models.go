package auth

// Claims representa la identidad autenticada extraída del token
// (o de los headers de debug en modo dev).
type Claims struct {
	UserID   string
	Username string
	Role     string
	FullName string
	Kebele   string
}
