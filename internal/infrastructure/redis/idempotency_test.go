package redis

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis no disponible: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClaim_SegundoIntentoRechazado(t *testing.T) {
	g := NewIdempotencyGuard(getRedisClient(t), time.Minute)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	ok, err := g.Claim(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Claim(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRelease_PermiteReintentar(t *testing.T) {
	g := NewIdempotencyGuard(getRedisClient(t), time.Minute)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	_, err := g.Claim(ctx, key)
	require.NoError(t, err)
	require.NoError(t, g.Release(ctx, key))

	ok, err := g.Claim(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClaim_ConcurrenteUnSoloGanador(t *testing.T) {
	g := NewIdempotencyGuard(getRedisClient(t), time.Minute)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := g.Claim(ctx, key); err == nil && ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}
