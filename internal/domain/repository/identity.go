package repository

import "context"

// IdentityLookup puerto hacia el colaborador de gestión de usuarios.
type IdentityLookup interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// UserRegistry alta de usuarios conocidos a partir de tokens ya validados. Idempotente.
type UserRegistry interface {
	Upsert(ctx context.Context, userID string) error
}
