package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/relief-ledger/internal/application/ports"
	"github.com/jhoicas/relief-ledger/internal/domain"
	"github.com/jhoicas/relief-ledger/pkg/logger"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxOptions parámetros de cada transacción.
type TxOptions struct {
	LockTimeout time.Duration // 0 = sin límite
	MaxRetries  int
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED).
// Ante errores de concurrencia repite la transacción completa hasta MaxRetries veces.
type TxRunner struct {
	pool *pgxpool.Pool
	opts TxOptions
	log  *logger.Logger
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, opts TxOptions, log *logger.Logger) *TxRunner {
	if log == nil {
		log = logger.Nop()
	}
	return &TxRunner{pool: pool, opts: opts, log: log.Component("postgres")}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// fn puede ejecutarse más de una vez; no debe tener efectos fuera de los repos recibidos.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.TxRepos) error) error {
	return withRetry(ctx, r.opts.MaxRetries, backoff, func() error {
		return r.runOnce(ctx, fn)
	}, func(attempt int, err error) {
		r.log.Warn().Err(err).Int("attempt", attempt).Msg("conflicto de concurrencia, reintentando transacción")
	})
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(repos ports.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.opts.LockTimeout > 0 {
		ms := strconv.FormatInt(r.opts.LockTimeout.Milliseconds(), 10)
		if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, ms); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	if err := fn(ports.TxRepos{
		Placements: NewPlacementRepository(tx),
		Lends:      NewLendRepository(tx),
		Owners:     NewOwnershipRepository(tx),
		Warehouses: NewWarehouseRepository(tx),
	}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// withRetry repite fn mientras falle con un error reintentable. Agotados los reintentos
// devuelve domain.ErrConcurrentModification envolviendo el último error.
func withRetry(ctx context.Context, maxRetries int, wait func(attempt int) time.Duration, fn func() error, onRetry func(attempt int, err error)) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !isRetryable(err) {
			return err
		}
		if attempt >= maxRetries {
			return fmt.Errorf("%w: %w", domain.ErrConcurrentModification, err)
		}
		if onRetry != nil {
			onRetry(attempt+1, err)
		}
		t := time.NewTimer(wait(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return errors.Join(ctx.Err(), err)
		case <-t.C:
		}
	}
}

// backoff exponencial con jitter: 10ms, 20ms, 40ms... más hasta 50% aleatorio, tope 500ms.
func backoff(attempt int) time.Duration {
	base := 500 * time.Millisecond
	if attempt < 6 {
		base = 10 * time.Millisecond << attempt
	}
	return base + time.Duration(rand.Int63n(int64(base/2)+1))
}
