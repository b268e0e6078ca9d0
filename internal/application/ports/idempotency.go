package ports

import "context"

// IdempotencyGuard reclama una clave de idempotencia. ok=false si la clave ya fue usada.
type IdempotencyGuard interface {
	Claim(ctx context.Context, key string) (ok bool, err error)
	Release(ctx context.Context, key string) error
}

// NoopIdempotency guard usado cuando no hay Redis configurado.
type NoopIdempotency struct{}

func (NoopIdempotency) Claim(context.Context, string) (bool, error) { return true, nil }
func (NoopIdempotency) Release(context.Context, string) error       { return nil }
