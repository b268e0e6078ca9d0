package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/relief-ledger/internal/domain"
)

func noWait(int) time.Duration { return 0 }

func TestWithRetry_ReintentaDeadlockYTermina(t *testing.T) {
	calls := 0
	var retried []int
	err := withRetry(context.Background(), 3, noWait, func() error {
		calls++
		if calls < 3 {
			return &pgconn.PgError{Code: codeDeadlockDetected}
		}
		return nil
	}, func(attempt int, _ error) { retried = append(retried, attempt) })

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestWithRetry_AgotaReintentos(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 2, noWait, func() error {
		calls++
		return &pgconn.PgError{Code: codeLockNotAvailable}
	}, nil)

	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.Equal(t, 3, calls, "intento inicial más dos reintentos")
}

func TestWithRetry_ErrorDeNegocioNoSeReintenta(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 5, noWait, func() error {
		calls++
		return domain.ErrInsufficientStock
	}, nil)

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := withRetry(ctx, 5, func(int) time.Duration { return time.Hour }, func() error {
		return &pgconn.PgError{Code: codeSerializationFailure}
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(&pgconn.PgError{Code: codeSerializationFailure}))
	assert.True(t, isRetryable(&pgconn.PgError{Code: codeUniqueViolation}))
	assert.False(t, isRetryable(&pgconn.PgError{Code: codeCheckViolation}))
	assert.False(t, isRetryable(errors.New("otro")))
}

func TestBackoff_Acotado(t *testing.T) {
	for attempt := 0; attempt < 40; attempt++ {
		d := backoff(attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 750*time.Millisecond)
	}
}
