package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/relief-ledger/internal/domain/repository"
)

var (
	_ repository.IdentityLookup = (*UserRepo)(nil)
	_ repository.UserRegistry   = (*UserRepo)(nil)
)

// UserRepo consulta la tabla users, réplica de los usuarios del servicio de identidad.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// UserExists implementa repository.IdentityLookup.
func (r *UserRepo) UserExists(ctx context.Context, userID string) (bool, error) {
	var ok bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("exists user: %w", err)
	}
	return ok, nil
}

// Upsert implementa repository.UserRegistry.
func (r *UserRepo) Upsert(ctx context.Context, userID string) error {
	if _, err := r.q.Exec(ctx, `INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, userID); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
