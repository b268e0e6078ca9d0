package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/relief-ledger/internal/application/ports"
)

var _ ports.IdempotencyGuard = (*IdempotencyGuard)(nil)

// IdempotencyGuard reserva de claves en proceso con expiración, para desarrollo sin Redis.
type IdempotencyGuard struct {
	mu   sync.Mutex
	keys map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

// NewIdempotencyGuard construye el guardia.
func NewIdempotencyGuard(ttl time.Duration) *IdempotencyGuard {
	return &IdempotencyGuard{keys: map[string]time.Time{}, ttl: ttl, now: time.Now}
}

// Claim reserva key hasta que venza el TTL. Las claves vencidas se descartan en cada llamada.
func (g *IdempotencyGuard) Claim(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	for k, exp := range g.keys {
		if !now.Before(exp) {
			delete(g.keys, k)
		}
	}
	if _, ok := g.keys[key]; ok {
		return false, nil
	}
	g.keys[key] = now.Add(g.ttl)
	return true, nil
}

func (g *IdempotencyGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	return nil
}
