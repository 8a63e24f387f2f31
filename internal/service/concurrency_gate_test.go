package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/auth-session-service/internal/repository"
)

func newTestGate(t *testing.T, max int64) *ConcurrencyGate {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewConcurrencyGate(repository.NewSessionRepo(rdb), max)
}

func TestGateIncrementDecrement(t *testing.T) {
	gate := newTestGate(t, 10)
	ctx := context.Background()

	assert.Zero(t, gate.ActiveCount(ctx))

	gate.Increment(ctx)
	gate.Increment(ctx)
	assert.Equal(t, int64(2), gate.ActiveCount(ctx))

	gate.Decrement(ctx)
	assert.Equal(t, int64(1), gate.ActiveCount(ctx))
}

func TestGateDecrementClampsAtZero(t *testing.T) {
	gate := newTestGate(t, 10)
	ctx := context.Background()

	// Decrement on an empty counter: the store goes to -1, the clamp
	// corrects it, and the next read observes zero.
	gate.Decrement(ctx)
	assert.Zero(t, gate.ActiveCount(ctx))

	// Repeated underflow stays pinned at zero.
	gate.Decrement(ctx)
	gate.Decrement(ctx)
	assert.Zero(t, gate.ActiveCount(ctx))
}

func TestGateCheckLimit(t *testing.T) {
	gate := newTestGate(t, 2)
	ctx := context.Background()

	assert.False(t, gate.CheckLimit(ctx))
	gate.Increment(ctx)
	assert.False(t, gate.CheckLimit(ctx))
	gate.Increment(ctx)
	assert.True(t, gate.CheckLimit(ctx), "at the ceiling")
	gate.Increment(ctx)
	assert.True(t, gate.CheckLimit(ctx), "over the ceiling")
}
