package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLimiter(t *testing.T) (*miniredis.Miniredis, Limiter) {
	t.Helper()
	mr := miniredis.RunT(t)
	rl, err := NewRedisLimiter(mr.Addr(), "", 0, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rl.Close() })
	return mr, rl
}

func TestRedisLimiter_Allow(t *testing.T) {
	mr, rl := newTestRedisLimiter(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		d := rl.Allow(ctx, "login:ip:1.2.3.4", 5, 15*time.Minute)
		require.True(t, d.Allowed, "attempt %d", i)
		assert.Equal(t, i, d.Count)
	}

	d := rl.Allow(ctx, "login:ip:1.2.3.4", 5, 15*time.Minute)
	assert.False(t, d.Allowed)
	assert.Equal(t, 6, d.Count)

	assert.True(t, mr.Exists(redisKeyPrefix+"login:ip:1.2.3.4"))
	assert.Equal(t, 15*time.Minute, mr.TTL(redisKeyPrefix+"login:ip:1.2.3.4"))

	mr.FastForward(15 * time.Minute)
	d = rl.Allow(ctx, "login:ip:1.2.3.4", 5, 15*time.Minute)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
}

func TestRedisLimiter_RepairsMissingExpiry(t *testing.T) {
	mr, rl := newTestRedisLimiter(t)
	key := redisKeyPrefix + "login:ip:9.9.9.9"
	require.NoError(t, mr.Set(key, "2"))

	d := rl.Allow(context.Background(), "login:ip:9.9.9.9", 5, time.Minute)
	assert.True(t, d.Allowed)
	assert.Equal(t, 3, d.Count)
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	mr, rl := newTestRedisLimiter(t)
	mr.Close()

	d := rl.Allow(context.Background(), "login:ip:1.2.3.4", 1, time.Minute)
	assert.True(t, d.Allowed)
}

func TestNewRedisLimiter_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisLimiter(addr, "", 0, nil)
	assert.Error(t, err)
}

func TestRedisLimiter_ConcurrentBurst(t *testing.T) {
	mr, rl := newTestRedisLimiter(t)
	// keep slow round trips under contention from failing open
	rl.(*redisLimiter).timeout = 5 * time.Second

	assert.Equal(t, 5, countAllowed(rl, 50, 5))
	assert.Equal(t, "50", mustGet(t, mr, redisKeyPrefix+"login:ip:10.0.0.1"))
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}
