package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/auth-session-service/internal/model"
)

// Key prefixes for the lockout bookkeeping. Failure counters and lock
// records are independent keys: the counter tracks consecutive failures
// inside its window, the lock key existing (with a future unlock_at) is
// what actually blocks authentication.
const (
	failuresKey = "failures:"
	lockKey     = "lock:"
)

// LockoutRepo keeps per-user failure counters and temporary account locks
// in the store. All expiry relies on Redis per-key TTLs; no sweeper is
// needed for this data.
type LockoutRepo struct {
	rdb *redis.Client
}

func NewLockoutRepo(rdb *redis.Client) *LockoutRepo { return &LockoutRepo{rdb: rdb} }

func failureCounterKey(userID uint64) string { return fmt.Sprintf("%s%d", failuresKey, userID) }
func accountLockKey(userID uint64) string    { return fmt.Sprintf("%s%d", lockKey, userID) }

// RecordFailure atomically increments the user's failure counter and
// refreshes the counter window. The new count is returned so the caller
// can decide whether the threshold has just been reached.
func (r *LockoutRepo) RecordFailure(ctx context.Context, userID uint64, window time.Duration) (int64, error) {
	key := failureCounterKey(userID)
	n, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("lockout: record failure: %w", err)
	}
	// Refresh the window on every failure; the expiry outcome is not part
	// of the count, so its error is non-fatal.
	_ = r.rdb.Expire(ctx, key, window).Err()
	return n, nil
}

// FailureCount returns the current consecutive-failure count, zero when
// the counter key is absent or unreadable.
func (r *LockoutRepo) FailureCount(ctx context.Context, userID uint64) (int64, error) {
	n, err := r.rdb.Get(ctx, failureCounterKey(userID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("lockout: read failure count: %w", err)
	}
	return n, nil
}

// Lock writes an AccountLock record with unlock_at = now + duration and a
// matching TTL.
func (r *LockoutRepo) Lock(ctx context.Context, userID uint64, reason string, duration time.Duration) error {
	now := time.Now().UTC()
	payload, err := json.Marshal(model.AccountLock{
		UserID:   userID,
		LockedAt: now,
		UnlockAt: now.Add(duration),
		Reason:   reason,
	})
	if err != nil {
		return fmt.Errorf("lockout: marshal lock: %w", err)
	}
	if err := r.rdb.Set(ctx, accountLockKey(userID), payload, duration).Err(); err != nil {
		return fmt.Errorf("lockout: write lock: %w", err)
	}
	return nil
}

// GetLock returns the user's AccountLock, or nil when no lock record
// exists. An unparseable record is treated as absent rather than locking
// the user out on corrupt data.
func (r *LockoutRepo) GetLock(ctx context.Context, userID uint64) (*model.AccountLock, error) {
	raw, err := r.rdb.Get(ctx, accountLockKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lockout: read lock: %w", err)
	}
	var lock model.AccountLock
	if err := json.Unmarshal(raw, &lock); err != nil {
		return nil, nil
	}
	return &lock, nil
}

// IsLocked lazily computes the lock state by comparing now against
// unlock_at. A lock whose TTL has not fired yet but whose unlock_at has
// passed counts as absent; no cleanup is required for correctness.
func (r *LockoutRepo) IsLocked(ctx context.Context, userID uint64) (bool, error) {
	lock, err := r.GetLock(ctx, userID)
	if err != nil {
		return false, err
	}
	return lock != nil && lock.Active(time.Now().UTC()), nil
}

// Reset clears both the failure counter and any lock. Called on every
// successful authentication.
func (r *LockoutRepo) Reset(ctx context.Context, userID uint64) error {
	if err := r.rdb.Del(ctx, failureCounterKey(userID), accountLockKey(userID)).Err(); err != nil {
		return fmt.Errorf("lockout: reset: %w", err)
	}
	return nil
}
