package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/auth-session-service/internal/model"
)

// UserRepo provides read-only access to the `users` credential table.
// This service never writes to it: provisioning, password changes and
// status transitions belong to the account-management system.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// GetByUsername fetches a credential record by normalized username.
// sql.ErrNoRows passes through so callers can map "unknown user" to the
// same generic error as "wrong password".
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,status,type,expires_at,created_at,updated_at FROM users WHERE username=? LIMIT 1",
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Status, &u.Type, &u.ExpiresAt, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a credential record by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,status,type,expires_at,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Status, &u.Type, &u.ExpiresAt, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
