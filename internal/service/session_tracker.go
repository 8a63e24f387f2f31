package service

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/auth-session-service/internal/model"
	"github.com/iliyamo/auth-session-service/internal/repository"
	"github.com/iliyamo/auth-session-service/internal/utils"
)

// SessionTracker owns the activity lifecycle: creating session records on
// login, keeping the per-user index roughly in step, answering online
// queries, and sweeping what expired or came apart.  The session record
// is authoritative; the index is best-effort bookkeeping and every reader
// here treats it with suspicion.
//
// Write discipline (primary vs. secondary): the session record write is
// the primary operation and its failure aborts the flow; the index update
// is secondary and its failure is logged and swallowed.  The pair spans
// two keys and is not atomic – a crash between them is the documented,
// tolerated source of eventual inconsistency, reconciled by Sweep.
type SessionTracker struct {
	sessions    *repository.SessionRepo
	blacklist   *repository.BlacklistRepo
	gate        *ConcurrencyGate
	idleTimeout time.Duration
	indexGrace  time.Duration
}

func NewSessionTracker(sessions *repository.SessionRepo, blacklist *repository.BlacklistRepo, gate *ConcurrencyGate, idleTimeout, indexGrace time.Duration) *SessionTracker {
	return &SessionTracker{
		sessions:    sessions,
		blacklist:   blacklist,
		gate:        gate,
		idleTimeout: idleTimeout,
		indexGrace:  indexGrace,
	}
}

// RecordActivity creates a session record for a fresh login and adds it
// to the owner's index. Empty userID, username or activityID are rejected
// as validation errors before any store I/O.
func (t *SessionTracker) RecordActivity(ctx context.Context, userID uint64, username, userType, activityID, tokenFingerprint string, tokenExpiresAt time.Time, deviceID, clientIP, userAgent string) (*model.ActivitySession, error) {
	if userID == 0 || username == "" || activityID == "" {
		return nil, repository.ErrValidation
	}
	now := time.Now().UTC()
	s := &model.ActivitySession{
		SchemaVersion:    model.SessionSchemaVersion,
		ActivityID:       activityID,
		UserID:           userID,
		Username:         username,
		UserType:         userType,
		TokenFingerprint: tokenFingerprint,
		TokenExpiresAt:   tokenExpiresAt,
		ClientIP:         clientIP,
		UserAgent:        userAgent,
		DeviceID:         deviceID,
		DeviceType:       utils.ClassifyDevice(userAgent),
		Status:           model.SessionActive,
		CreatedAt:        now,
		LastActivityAt:   now,
	}
	if err := t.sessions.Save(ctx, s, t.idleTimeout); err != nil {
		return nil, err
	}
	// Index maintenance is secondary: primary write success is never held
	// hostage by the bookkeeping.
	if err := t.sessions.AddToIndex(ctx, userID, activityID, t.idleTimeout+t.indexGrace); err != nil {
		log.Printf("tracker: index add failed, continuing | user=%d activity=%s err=%v", userID, activityID, err)
	}
	return s, nil
}

// GetActivity returns the session for an activity id. Empty input and
// missing records both resolve to nil; store errors degrade to nil with
// a log line so read paths stay resilient to transient outages.
func (t *SessionTracker) GetActivity(ctx context.Context, activityID string) *model.ActivitySession {
	s, err := t.sessions.Get(ctx, activityID)
	if err != nil {
		log.Printf("tracker: activity lookup failed | activity=%s err=%v", activityID, err)
		return nil
	}
	return s
}

// UpdateActivity refreshes the session's last-activity timestamp and
// rewrites it with a full TTL. Soft-fails: any problem returns false,
// never an error.
func (t *SessionTracker) UpdateActivity(ctx context.Context, activityID string) bool {
	s, err := t.sessions.Get(ctx, activityID)
	if err != nil || s == nil {
		return false
	}
	s.LastActivityAt = time.Now().UTC()
	if err := t.sessions.Save(ctx, s, t.idleTimeout); err != nil {
		log.Printf("tracker: activity refresh failed | activity=%s err=%v", activityID, err)
		return false
	}
	return true
}

// UpdateToken swaps the fingerprint and expiry stored on a session after
// a refresh rotation, preserving the rest of the record. Soft-fails like
// UpdateActivity.
func (t *SessionTracker) UpdateToken(ctx context.Context, activityID, fingerprint string, expiresAt time.Time) bool {
	s, err := t.sessions.Get(ctx, activityID)
	if err != nil || s == nil {
		return false
	}
	s.TokenFingerprint = fingerprint
	s.TokenExpiresAt = expiresAt
	s.LastActivityAt = time.Now().UTC()
	if err := t.sessions.Save(ctx, s, t.idleTimeout); err != nil {
		log.Printf("tracker: token rotate failed | activity=%s err=%v", activityID, err)
		return false
	}
	return true
}

// ForceLogoutSession terminates one session: mark it FORCED_LOGOUT,
// revoke its token, delete the record, drop it from the index, in that
// order. Revoke-then-delete means a crash mid-operation leaves the token
// safely revoked even if the record lingers for the next sweep. Returns
// true iff both the revocation and the record deletion succeeded;
// calling it again on an already-removed session returns false without
// error.
func (t *SessionTracker) ForceLogoutSession(ctx context.Context, activityID, reason string) bool {
	s, err := t.sessions.Get(ctx, activityID)
	if err != nil || s == nil {
		return false
	}
	s.Status = model.SessionForcedLogout
	if err := t.sessions.Save(ctx, s, t.idleTimeout); err != nil {
		log.Printf("tracker: force-logout mark failed, continuing | activity=%s err=%v", activityID, err)
	}

	remaining := time.Until(s.TokenExpiresAt)
	revoked := t.blacklist.RevokeFingerprint(ctx, s.TokenFingerprint, reason, remaining)

	deleted, err := t.sessions.Delete(ctx, activityID)
	if err != nil {
		log.Printf("tracker: force-logout delete failed | activity=%s err=%v", activityID, err)
		return false
	}
	if err := t.sessions.RemoveFromIndex(ctx, s.UserID, activityID); err != nil {
		log.Printf("tracker: index remove failed, continuing | activity=%s err=%v", activityID, err)
	}
	if deleted {
		t.gate.Decrement(ctx)
	}
	return revoked && deleted
}

// ForceLogoutUser terminates every session in the user's index. Partial
// success counts as success for this bulk operation: true iff at least
// one session was force-logged-out.
func (t *SessionTracker) ForceLogoutUser(ctx context.Context, userID uint64, reason string) bool {
	ids, err := t.sessions.IndexMembers(ctx, userID)
	if err != nil {
		log.Printf("tracker: force-logout enumerate failed | user=%d err=%v", userID, err)
		return false
	}
	any := false
	for _, id := range ids {
		if t.ForceLogoutSession(ctx, id, reason) {
			any = true
		}
	}
	return any
}

// RemoveActivity is the normal-logout deletion path for one session:
// delete the record, drop the index entry, decrement the gate. Returns
// whether a record was actually removed.
func (t *SessionTracker) RemoveActivity(ctx context.Context, activityID string) bool {
	s, err := t.sessions.Get(ctx, activityID)
	if err != nil || s == nil {
		return false
	}
	deleted, err := t.sessions.Delete(ctx, activityID)
	if err != nil {
		log.Printf("tracker: remove failed | activity=%s err=%v", activityID, err)
		return false
	}
	if err := t.sessions.RemoveFromIndex(ctx, s.UserID, activityID); err != nil {
		log.Printf("tracker: index remove failed, continuing | activity=%s err=%v", activityID, err)
	}
	if deleted {
		t.gate.Decrement(ctx)
	}
	return deleted
}

// RemoveUserActivity deletes all sessions recorded under a username, the
// by-username deletion path. Returns whether anything was removed.
func (t *SessionTracker) RemoveUserActivity(ctx context.Context, username string) bool {
	if username == "" {
		return false
	}
	var ids []string
	err := t.sessions.ScanSessions(ctx, func(s *model.ActivitySession) error {
		if s.Username == username {
			ids = append(ids, s.ActivityID)
		}
		return nil
	})
	if err != nil {
		log.Printf("tracker: remove-by-username scan failed | username=%s err=%v", username, err)
		return false
	}
	any := false
	for _, id := range ids {
		if t.RemoveActivity(ctx, id) {
			any = true
		}
	}
	return any
}

// EachActiveSession streams all session records with status ACTIVE to fn.
// Cost is proportional to the total session count.
func (t *SessionTracker) EachActiveSession(ctx context.Context, fn func(*model.ActivitySession) error) error {
	return t.sessions.ScanSessions(ctx, func(s *model.ActivitySession) error {
		if s.Status != model.SessionActive {
			return nil
		}
		return fn(s)
	})
}

// ActiveSessionCount returns how many live sessions a user has. Index
// members are verified against live records; stale members found along
// the way are pruned best-effort, which is part of the self-healing
// story for the derived index.
func (t *SessionTracker) ActiveSessionCount(ctx context.Context, userID uint64) int {
	ids, err := t.sessions.IndexMembers(ctx, userID)
	if err != nil {
		log.Printf("tracker: session count failed | user=%d err=%v", userID, err)
		return 0
	}
	count := 0
	for _, id := range ids {
		s, err := t.sessions.Get(ctx, id)
		if err != nil {
			continue
		}
		if s == nil {
			_ = t.sessions.RemoveFromIndex(ctx, userID, id)
			continue
		}
		count++
	}
	return count
}

// IsOnline reports whether the user has at least one live session.
func (t *SessionTracker) IsOnline(ctx context.Context, userID uint64) bool {
	return t.ActiveSessionCount(ctx, userID) > 0
}

// OnlineUserCount counts distinct users with at least one ACTIVE
// session: two concurrent sessions for the same user contribute one.
// Store errors degrade to zero.
func (t *SessionTracker) OnlineUserCount(ctx context.Context) int {
	users := map[uint64]struct{}{}
	err := t.EachActiveSession(ctx, func(s *model.ActivitySession) error {
		users[s.UserID] = struct{}{}
		return nil
	})
	if err != nil {
		log.Printf("tracker: online user count failed | err=%v", err)
		return 0
	}
	return len(users)
}

// Sweep is the periodic reconciliation pass. It deletes sessions idle
// past the configured timeout (record and index together, decrementing
// the gate), then reaps index members whose records are gone – the
// second half is what makes the index a self-healing derived structure
// rather than a mere expiry-deleter. Returns the number of sessions
// removed.
func (t *SessionTracker) Sweep(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	var stale []*model.ActivitySession
	err := t.sessions.ScanSessions(ctx, func(s *model.ActivitySession) error {
		if s.IdleSince(now, t.idleTimeout) {
			stale = append(stale, s)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	removed := 0
	live := map[string]struct{}{}
	for _, s := range stale {
		deleted, err := t.sessions.Delete(ctx, s.ActivityID)
		if err != nil {
			log.Printf("sweep: delete failed | activity=%s err=%v", s.ActivityID, err)
			continue
		}
		if err := t.sessions.RemoveFromIndex(ctx, s.UserID, s.ActivityID); err != nil {
			log.Printf("sweep: index remove failed | activity=%s err=%v", s.ActivityID, err)
		}
		if deleted {
			t.gate.Decrement(ctx)
			removed++
		}
	}

	// Second pass: reap orphaned index members. Re-check each member
	// against the store rather than trusting the first scan, since
	// records can appear between passes.
	err = t.sessions.ScanIndexes(ctx, func(indexKey string, members []string) error {
		for _, id := range members {
			if _, ok := live[id]; ok {
				continue
			}
			s, err := t.sessions.Get(ctx, id)
			if err != nil {
				continue
			}
			if s == nil {
				if err := t.sessions.RemoveFromIndexKey(ctx, indexKey, id); err != nil {
					log.Printf("sweep: orphan remove failed | index=%s activity=%s err=%v", indexKey, id, err)
				}
			} else {
				live[id] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("sweep: index reconciliation failed | err=%v", err)
	}
	return removed, nil
}

// RunSweeper blocks, running Sweep on the given interval until the
// context is cancelled. Intended to be started as a goroutine from main.
func (t *SessionTracker) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := t.Sweep(ctx)
			if err != nil {
				log.Printf("sweep: pass failed | err=%v", err)
				continue
			}
			if n > 0 {
				log.Printf("sweep: removed expired sessions | count=%d", n)
			}
		}
	}
}
