// Package queue defines message payloads exchanged over the message broker.
package queue

// AuthEvent is published for every notable authentication lifecycle
// moment: login, logout, refresh, lockout escalation and forced logout.
// It contains enough information for downstream consumers to log, alert
// or feed analytics without querying the credential database or the
// session store.
type AuthEvent struct {
	Type       string `json:"type"` // LOGIN | LOGOUT | REFRESH | LOCKOUT | FORCE_LOGOUT
	UserID     uint64 `json:"user_id"`
	Username   string `json:"username"`
	ActivityID string `json:"activity_id,omitempty"`
	ClientIP   string `json:"client_ip,omitempty"`
	DeviceType string `json:"device_type,omitempty"`
	Reason     string `json:"reason,omitempty"`
	At         string `json:"at"` // RFC 3339 UTC
}

// Event type values for AuthEvent.Type.
const (
	EventLogin       = "LOGIN"
	EventLogout      = "LOGOUT"
	EventRefresh     = "REFRESH"
	EventLockout     = "LOCKOUT"
	EventForceLogout = "FORCE_LOGOUT"
)
