// Package storage agrupa los adaptadores de persistencia y el seed
// de cuentas de desarrollo.
package storage

import (
	"context"
	"errors"

	"civil-registry/internal/domain/users"
)

// SeedUsers crea las cuentas de demostración si todavía no existen.
// Pensado para entornos de desarrollo; en producción SEED_USERS va en false.
func SeedUsers(ctx context.Context, svc *users.Service) error {
	seeds := []users.CreateInput{
		{Username: "admin", Password: "password123", FullName: "System Administrator", Role: users.RoleAdmin},
		{Username: "clerk", Password: "clerk123", FullName: "Registration Clerk", Role: users.RoleDataClerk, Kebele: "01"},
		{Username: "citizen", Password: "citizen123", FullName: "Test Citizen", Role: users.RoleCitizen, Kebele: "01"},
	}

	for _, in := range seeds {
		if _, err := svc.GetByUsername(ctx, in.Username); err == nil {
			continue
		} else if !errors.Is(err, users.ErrNotFound) {
			return err
		}
		if _, err := svc.Create(ctx, in); err != nil {
			return err
		}
	}
	return nil
}
