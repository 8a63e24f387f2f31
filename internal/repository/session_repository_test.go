package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-session-service/internal/model"
)

func testSession(activityID string, userID uint64) *model.ActivitySession {
	now := time.Now().UTC()
	return &model.ActivitySession{
		SchemaVersion:    model.SessionSchemaVersion,
		ActivityID:       activityID,
		UserID:           userID,
		Username:         "alice",
		UserType:         "CUSTOMER",
		TokenFingerprint: "fp-" + activityID,
		TokenExpiresAt:   now.Add(time.Hour),
		ClientIP:         "10.0.0.5",
		UserAgent:        "test-agent",
		DeviceID:         "dev-1",
		DeviceType:       model.DeviceDesktop,
		Status:           model.SessionActive,
		CreatedAt:        now,
		LastActivityAt:   now,
	}
}

func TestSessionSaveGetDelete(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewSessionRepo(rdb)
	ctx := context.Background()

	s := testSession("a1", 1)
	require.NoError(t, repo.Save(ctx, s, time.Minute))

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s.ActivityID, got.ActivityID)
	assert.Equal(t, s.UserID, got.UserID)
	assert.Equal(t, s.TokenFingerprint, got.TokenFingerprint)
	assert.Equal(t, model.SessionSchemaVersion, got.SchemaVersion)

	deleted, err := repo.Delete(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, deleted)

	// Second delete reports nothing removed, no error.
	deleted, err = repo.Delete(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err = repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionGetEmptyID(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewSessionRepo(rdb)

	got, err := repo.Get(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionRecordExpires(t *testing.T) {
	mr, rdb := newTestRedis(t)
	repo := NewSessionRepo(rdb)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testSession("a1", 1), 30*time.Second))
	mr.FastForward(31 * time.Second)

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionIndex(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewSessionRepo(rdb)
	ctx := context.Background()

	require.NoError(t, repo.AddToIndex(ctx, 1, "a1", time.Minute))
	require.NoError(t, repo.AddToIndex(ctx, 1, "a2", time.Minute))

	ids, err := repo.IndexMembers(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a1", "a2"}, ids)

	require.NoError(t, repo.RemoveFromIndex(ctx, 1, "a1"))
	ids, err = repo.IndexMembers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a2"}, ids)

	// Removing a member that is not there is a no-op.
	require.NoError(t, repo.RemoveFromIndex(ctx, 1, "a9"))
}

func TestSessionScan(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewSessionRepo(rdb)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testSession("a1", 1), time.Minute))
	require.NoError(t, repo.Save(ctx, testSession("a2", 2), time.Minute))
	require.NoError(t, repo.Save(ctx, testSession("a3", 2), time.Minute))

	seen := map[string]uint64{}
	err := repo.ScanSessions(ctx, func(s *model.ActivitySession) error {
		seen[s.ActivityID] = s.UserID
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]uint64{"a1": 1, "a2": 2, "a3": 2}, seen)
}

func TestActiveCounter(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewSessionRepo(rdb)
	ctx := context.Background()

	n, err := repo.ActiveCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "absent counter reads as zero")

	n, err = repo.IncrementActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DecrementActive(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// The repo exposes the raw primitive; the gate layers the clamp.
	n, err = repo.DecrementActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), n)
}
