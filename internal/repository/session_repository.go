package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/auth-session-service/internal/model"
)

// Store key shapes for session bookkeeping. The session record is the
// authoritative side; the per-user index set is derived, best-effort
// state whose TTL runs slightly longer than the records it points at so
// the sweep sees orphans before the index disappears under it.
const (
	sessionKey      = "session:"
	userSessionsKey = "user:sessions:"
	activeCountKey  = "sessions:active"
)

// SessionRepo provides data access to session records, the per-user
// session index and the global active-session counter. All methods use
// single-key atomic store primitives; the record+index pair is documented
// as non-atomic and reconciled by the tracker's sweep.
type SessionRepo struct {
	rdb *redis.Client
}

func NewSessionRepo(rdb *redis.Client) *SessionRepo { return &SessionRepo{rdb: rdb} }

func sessionRecordKey(activityID string) string { return sessionKey + activityID }
func userIndexKey(userID uint64) string         { return fmt.Sprintf("%s%d", userSessionsKey, userID) }

// Save writes (or rewrites) a session record with the given TTL.
func (r *SessionRepo) Save(ctx context.Context, s *model.ActivitySession, ttl time.Duration) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: marshal record: %w", err)
	}
	if err := r.rdb.Set(ctx, sessionRecordKey(s.ActivityID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("session: write record: %w", err)
	}
	return nil
}

// Get returns the session record for an activity id, or nil when the id
// is empty or no record exists. Unparseable payloads are treated as
// missing; the sweep will reap the key once its TTL fires.
func (r *SessionRepo) Get(ctx context.Context, activityID string) (*model.ActivitySession, error) {
	if activityID == "" {
		return nil, nil
	}
	raw, err := r.rdb.Get(ctx, sessionRecordKey(activityID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read record: %w", err)
	}
	var s model.ActivitySession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, nil
	}
	return &s, nil
}

// Delete removes a session record. The returned count tells the caller
// whether a record actually existed, which is what makes forced logout
// idempotent.
func (r *SessionRepo) Delete(ctx context.Context, activityID string) (bool, error) {
	n, err := r.rdb.Del(ctx, sessionRecordKey(activityID)).Result()
	if err != nil {
		return false, fmt.Errorf("session: delete record: %w", err)
	}
	return n > 0, nil
}

// AddToIndex adds an activity id to the owner's session index and keeps
// the index TTL at session TTL plus grace.
func (r *SessionRepo) AddToIndex(ctx context.Context, userID uint64, activityID string, ttl time.Duration) error {
	key := userIndexKey(userID)
	if err := r.rdb.SAdd(ctx, key, activityID).Err(); err != nil {
		return fmt.Errorf("session: index add: %w", err)
	}
	_ = r.rdb.Expire(ctx, key, ttl).Err()
	return nil
}

// RemoveFromIndex drops an activity id from the owner's index. Index
// maintenance is secondary bookkeeping, so callers log-and-swallow any
// error from here.
func (r *SessionRepo) RemoveFromIndex(ctx context.Context, userID uint64, activityID string) error {
	if err := r.rdb.SRem(ctx, userIndexKey(userID), activityID).Err(); err != nil {
		return fmt.Errorf("session: index remove: %w", err)
	}
	return nil
}

// IndexMembers returns the activity ids currently in a user's index. The
// set may contain stale ids (record expired, index not yet reconciled);
// callers verify each against Get.
func (r *SessionRepo) IndexMembers(ctx context.Context, userID uint64) ([]string, error) {
	ids, err := r.rdb.SMembers(ctx, userIndexKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: index members: %w", err)
	}
	return ids, nil
}

// ScanSessions walks all session records with SCAN and invokes fn for
// each record that still parses. Cost is proportional to the total
// session count, which the concurrency gate already bounds in practice.
// Records that vanish between SCAN and GET are skipped silently.
func (r *SessionRepo) ScanSessions(ctx context.Context, fn func(*model.ActivitySession) error) error {
	iter := r.rdb.Scan(ctx, 0, sessionKey+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := r.rdb.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return fmt.Errorf("session: scan read: %w", err)
		}
		var s model.ActivitySession
		if err := json.Unmarshal(raw, &s); err != nil {
			log.Printf("session: skipping unparseable record | key=%s", iter.Val())
			continue
		}
		if err := fn(&s); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("session: scan: %w", err)
	}
	return nil
}

// ScanIndexes walks all per-user index sets, invoking fn with each user
// id key and its members. Used by the sweep to reap orphaned index
// entries whose session records are gone.
func (r *SessionRepo) ScanIndexes(ctx context.Context, fn func(indexKey string, members []string) error) error {
	iter := r.rdb.Scan(ctx, 0, userSessionsKey+"*", 100).Iterator()
	for iter.Next(ctx) {
		members, err := r.rdb.SMembers(ctx, iter.Val()).Result()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("session: scan index: %w", err)
		}
		if err := fn(iter.Val(), members); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("session: scan indexes: %w", err)
	}
	return nil
}

// RemoveFromIndexKey is RemoveFromIndex addressed by raw index key, for
// the sweep which discovers indexes via SCAN rather than by user id.
func (r *SessionRepo) RemoveFromIndexKey(ctx context.Context, indexKey, activityID string) error {
	return r.rdb.SRem(ctx, indexKey, activityID).Err()
}

// IncrementActive bumps the global active-session counter.
func (r *SessionRepo) IncrementActive(ctx context.Context) (int64, error) {
	n, err := r.rdb.Incr(ctx, activeCountKey).Result()
	if err != nil {
		return 0, fmt.Errorf("session: increment active: %w", err)
	}
	return n, nil
}

// DecrementActive decrements the global counter and returns the new
// value. Callers (the concurrency gate) are responsible for the
// clamp-at-zero correction; the repo only exposes the atomic primitive.
func (r *SessionRepo) DecrementActive(ctx context.Context) (int64, error) {
	n, err := r.rdb.Decr(ctx, activeCountKey).Result()
	if err != nil {
		return 0, fmt.Errorf("session: decrement active: %w", err)
	}
	return n, nil
}

// ActiveCount reads the global counter; a missing key reads as zero.
func (r *SessionRepo) ActiveCount(ctx context.Context) (int64, error) {
	n, err := r.rdb.Get(ctx, activeCountKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("session: read active count: %w", err)
	}
	return n, nil
}
