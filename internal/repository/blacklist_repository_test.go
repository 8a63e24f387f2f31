package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestBlacklistRevokeAndLookup(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewBlacklistRepo(rdb)
	ctx := context.Background()

	token := "header.payload.signature"
	assert.False(t, repo.IsRevoked(ctx, token), "open world: unknown token is not revoked")

	require.True(t, repo.Revoke(ctx, token, "logout", time.Minute))
	assert.True(t, repo.IsRevoked(ctx, token))

	// A different token stays unaffected.
	assert.False(t, repo.IsRevoked(ctx, "another.token.entirely"))
}

func TestBlacklistEntryExpiresWithToken(t *testing.T) {
	mr, rdb := newTestRedis(t)
	repo := NewBlacklistRepo(rdb)
	ctx := context.Background()

	token := "short.lived.token"
	require.True(t, repo.Revoke(ctx, token, "forced logout", 30*time.Second))
	assert.True(t, repo.IsRevoked(ctx, token))

	// Entry TTL tracks the token's remaining life: once the token itself
	// would be expired, the blacklist no longer needs to block it.
	mr.FastForward(31 * time.Second)
	assert.False(t, repo.IsRevoked(ctx, token))
}

func TestBlacklistExpiredTokenNoWrite(t *testing.T) {
	mr, rdb := newTestRedis(t)
	repo := NewBlacklistRepo(rdb)
	ctx := context.Background()

	// Zero remaining life: nothing to block, nothing stored.
	assert.True(t, repo.Revoke(ctx, "already.expired.token", "logout", 0))
	assert.Zero(t, len(mr.Keys()))
}

func TestBlacklistEmptyInputs(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewBlacklistRepo(rdb)
	ctx := context.Background()

	assert.False(t, repo.IsRevoked(ctx, ""))
	assert.False(t, repo.RevokeFingerprint(ctx, "", "r", time.Minute))
}
