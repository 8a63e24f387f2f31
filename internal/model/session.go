package model

import "time"

// SessionSchemaVersion is embedded in every stored session record so the
// codec can evolve without guessing at the shape of old payloads.
const SessionSchemaVersion = 1

// Session status values.  A session record only ever exists in the store
// while it is ACTIVE or freshly marked FORCED_LOGOUT; terminated and swept
// sessions converge to "no record, token revoked".
const (
	SessionActive       = "ACTIVE"
	SessionForcedLogout = "FORCED_LOGOUT"
)

// Device type values derived from the login user agent.
const (
	DeviceMobile  = "MOBILE"
	DeviceTablet  = "TABLET"
	DeviceDesktop = "DESKTOP"
)

// ActivitySession is the canonical session record written to the store
// under `session:{activityId}`.  It is the authoritative side of the
// session bookkeeping; the per-user index set is derived, best-effort
// state reconciled by the periodic sweep.
//
// The token itself is never stored – only its SHA-256 fingerprint, which
// is enough to blacklist the token on forced logout.  TokenExpiresAt
// remembers the token's own expiry so the blacklist entry can be given
// exactly the token's remaining lifetime.
type ActivitySession struct {
	SchemaVersion    int       `json:"schema_version"`
	ActivityID       string    `json:"activity_id"`
	UserID           uint64    `json:"user_id"`
	Username         string    `json:"username"`
	UserType         string    `json:"user_type"`
	TokenFingerprint string    `json:"token_fingerprint"`
	TokenExpiresAt   time.Time `json:"token_expires_at"`
	ClientIP         string    `json:"client_ip"`
	UserAgent        string    `json:"user_agent"`
	DeviceID         string    `json:"device_id"`
	DeviceType       string    `json:"device_type"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	LastActivityAt   time.Time `json:"last_activity_at"`
}

// IdleSince reports whether the session has seen no activity for longer
// than the given timeout.
func (s *ActivitySession) IdleSince(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActivityAt) > timeout
}

// AccountLock is the payload stored under `lock:{userId}` when a user
// crosses the failure threshold.  The key carries a TTL matching the lock
// duration, but UnlockAt is also checked on read so an expired lock is
// treated as absent even if the store has not reaped the key yet.
type AccountLock struct {
	UserID   uint64    `json:"user_id"`
	LockedAt time.Time `json:"locked_at"`
	UnlockAt time.Time `json:"unlock_at"`
	Reason   string    `json:"reason"`
}

// Active reports whether the lock is still in force at the given instant.
func (l *AccountLock) Active(now time.Time) bool {
	return now.Before(l.UnlockAt)
}
