package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyGuard_ClaveVencidaSeDescarta(t *testing.T) {
	g := NewIdempotencyGuard(time.Minute)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return clock }
	ctx := context.Background()

	ok, err := g.Claim(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = g.Claim(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	clock = clock.Add(2 * time.Minute)
	ok, err = g.Claim(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)

	g.mu.Lock()
	_, kept := g.keys["a"]
	size := len(g.keys)
	g.mu.Unlock()
	assert.False(t, kept, "la clave vencida no debe quedar en el mapa")
	assert.Equal(t, 1, size)

	ok, err = g.Claim(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotencyGuard_Release(t *testing.T) {
	g := NewIdempotencyGuard(time.Hour)
	ctx := context.Background()

	ok, err := g.Claim(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, g.Release(ctx, "k"))

	ok, err = g.Claim(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}
