package model

import "time"

// Account status values as stored in the `users.status` column.  The
// authentication flow only ever lets ACTIVE accounts through; any other
// value is rejected before the password is looked at.
const (
	StatusActive   = "ACTIVE"
	StatusDisabled = "DISABLED"
)

// User represents a credential record as stored in the `users` table.
// This service treats the table as read-only: account provisioning and
// password management live elsewhere.  The json tags are omitted because
// these structs are only used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  Status       – ACTIVE or DISABLED.
//  Type         – user type (e.g. ADMIN, OPERATOR, CUSTOMER); resolved to
//                 an authority list at login time.
//  ExpiresAt    – optional account expiry (nil means never expires).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64     // users.id
	Username     string     // users.username
	PasswordHash string     // users.password_hash
	Status       string     // users.status
	Type         string     // users.type
	ExpiresAt    *time.Time // users.expires_at (nullable)
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}

// Expired reports whether the account itself has lapsed.  An account with
// no expiry never expires.
func (u *User) Expired(now time.Time) bool {
	return u.ExpiresAt != nil && now.After(*u.ExpiresAt)
}
