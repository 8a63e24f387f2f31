package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/auth-session-service/internal/model"
	"github.com/iliyamo/auth-session-service/internal/queue"
	"github.com/iliyamo/auth-session-service/internal/repository"
	"github.com/iliyamo/auth-session-service/internal/utils"
)

// CredentialStore is the read-only credential lookup this service needs
// from the account system. repository.UserRepo satisfies it.
type CredentialStore interface {
	GetByUsername(ctx context.Context, username string) (model.User, error)
}

// ClientContext carries the request-scoped facts a login or refresh
// brings along: where it came from and what device it claims to be.
type ClientContext struct {
	ClientIP  string
	UserAgent string
	DeviceID  string
}

// UserInfo is the caller-visible slice of the credential record.
type UserInfo struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Type     string `json:"type"`
}

// LoginResult is everything a successful login hands back.
type LoginResult struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"` // seconds until the access token expires
	Permissions  []string `json:"permissions"`
	User         UserInfo `json:"user"`
	DeviceID     string   `json:"device_id"`
	ActivityID   string   `json:"activity_id"`
}

// TokenPair is the result of a refresh rotation.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthService is the orchestrator: it composes the credential store,
// lockout policy, token issuance, session tracker, concurrency gate and
// audit sink into the login/logout/refresh/force-logout flows.
type AuthService struct {
	users      CredentialStore
	lockout    *LockoutPolicy
	tracker    *SessionTracker
	blacklist  *repository.BlacklistRepo
	gate       *ConcurrencyGate
	audit      AuditSink
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(users CredentialStore, lockout *LockoutPolicy, tracker *SessionTracker, blacklist *repository.BlacklistRepo, gate *ConcurrencyGate, audit AuditSink, secret string, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		lockout:    lockout,
		tracker:    tracker,
		blacklist:  blacklist,
		gate:       gate,
		audit:      audit,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// verifyCredentials runs the authentication precedence exactly: account
// status, then lock state (password never checked while locked), then
// the password itself, with failure counting and escalation on the
// attempt that crosses the threshold.
func (a *AuthService) verifyCredentials(ctx context.Context, username, password string) (model.User, error) {
	u, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Unknown user and wrong password must be indistinguishable.
			return model.User{}, repository.ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("auth: credential lookup: %w", err)
	}
	if u.Status != model.StatusActive || u.Expired(time.Now().UTC()) {
		return model.User{}, repository.ErrAccountDisabled
	}

	locked, err := a.lockout.IsLocked(ctx, u.ID)
	if err != nil {
		return model.User{}, fmt.Errorf("auth: lock check: %w", err)
	}
	if locked {
		return model.User{}, &repository.AccountLockedError{UserID: u.ID}
	}

	if !utils.VerifyPassword(u.PasswordHash, password) {
		count, err := a.lockout.RecordFailure(ctx, u.ID)
		if err != nil {
			// The failure itself still has to surface as a credential
			// error; losing one counter tick is the lesser harm.
			log.Printf("auth: failure count write failed | user=%d err=%v", u.ID, err)
			return model.User{}, repository.ErrInvalidCredentials
		}
		if a.lockout.HasReachedThreshold(count) {
			if err := a.lockout.Lock(ctx, u.ID, "too many failed login attempts"); err != nil {
				log.Printf("auth: lock write failed | user=%d err=%v", u.ID, err)
				return model.User{}, repository.ErrInvalidCredentials
			}
			a.publish(ctx, queue.AuthEvent{
				Type: queue.EventLockout, UserID: u.ID, Username: u.Username,
				Reason: "failure threshold reached", At: nowRFC3339(),
			})
			// The exact attempt that triggers the lock says so explicitly;
			// every other failure stays generic.
			return model.User{}, &repository.AccountLockedError{UserID: u.ID, Escalated: true}
		}
		return model.User{}, repository.ErrInvalidCredentials
	}

	if err := a.lockout.ResetOnSuccess(ctx, u.ID); err != nil {
		log.Printf("auth: lockout reset failed, continuing | user=%d err=%v", u.ID, err)
	}
	return u, nil
}

// Login authenticates a user and establishes a session. Primary-path
// failures (credential lookup, token issuance, session write) abort with
// typed errors; secondary bookkeeping (index, counter, audit) is
// best-effort.
func (a *AuthService) Login(ctx context.Context, username, password string, cc ClientContext) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, repository.ErrValidation
	}
	u, err := a.verifyCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}

	deviceID := cc.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	authorities := ResolveAuthorities(u.Type)

	access, err := utils.NewAccessToken(a.secret, u.ID, u.Username, u.Type, authorities, deviceID, cc.ClientIP, a.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: issue access: %w", err)
	}
	refresh, err := utils.NewRefreshToken(a.secret, u.ID, u.Username, u.Type, authorities, deviceID, a.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: issue refresh: %w", err)
	}

	activityID := uuid.NewString()
	s, err := a.tracker.RecordActivity(ctx, u.ID, u.Username, u.Type, activityID,
		utils.FingerprintToken(access.Token), access.Exp, deviceID, cc.ClientIP, cc.UserAgent)
	if err != nil {
		return nil, err
	}

	if a.gate.CheckLimit(ctx) {
		// Advisory only: the ceiling is observed, not enforced.
		log.Printf("gate: active sessions at or over ceiling | user=%d", u.ID)
	}
	a.gate.Increment(ctx)

	a.publish(ctx, queue.AuthEvent{
		Type: queue.EventLogin, UserID: u.ID, Username: u.Username,
		ActivityID: activityID, ClientIP: cc.ClientIP, DeviceType: s.DeviceType, At: nowRFC3339(),
	})

	return &LoginResult{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		ExpiresIn:    int64(a.accessTTL.Seconds()),
		Permissions:  authorities,
		User:         UserInfo{ID: u.ID, Username: u.Username, Type: u.Type},
		DeviceID:     deviceID,
		ActivityID:   activityID,
	}, nil
}

// Validate reports whether a token is good: signature and expiry valid
// AND not revoked. Malformed or expired tokens are simply false, never
// an error.
func (a *AuthService) Validate(ctx context.Context, raw string) bool {
	if _, err := utils.ParseClaims(a.secret, raw); err != nil {
		return false
	}
	return !a.blacklist.IsRevoked(ctx, raw)
}

// Logout terminates the session behind a bearer token: the token is
// revoked unconditionally for its remaining life, then the matching
// session record is removed. Returns true when the revocation took; a
// missing session (already swept) does not turn a successful logout into
// a failure.
func (a *AuthService) Logout(ctx context.Context, raw string) bool {
	claims, err := utils.ParseClaims(a.secret, raw)
	if err != nil {
		return false
	}
	revoked := a.blacklist.Revoke(ctx, raw, "logout", claims.RemainingLife(time.Now().UTC()))

	// Find the session carrying this token's fingerprint and remove it.
	fp := utils.FingerprintToken(raw)
	ids, err := a.tracker.sessions.IndexMembers(ctx, claims.UserID)
	if err != nil {
		log.Printf("auth: logout enumerate failed, token still revoked | user=%d err=%v", claims.UserID, err)
		return revoked
	}
	for _, id := range ids {
		s := a.tracker.GetActivity(ctx, id)
		if s == nil || s.TokenFingerprint != fp {
			continue
		}
		a.tracker.RemoveActivity(ctx, id)
		a.publish(ctx, queue.AuthEvent{
			Type: queue.EventLogout, UserID: claims.UserID, Username: claims.Username,
			ActivityID: id, ClientIP: claims.ClientIP, At: nowRFC3339(),
		})
		break
	}
	return revoked
}

// Refresh rotates a refresh token: the old one is revoked for its
// remaining life and a fresh pair is issued. The session record keeps
// tracking the new access token via its fingerprint, matched by device.
func (a *AuthService) Refresh(ctx context.Context, raw string, cc ClientContext) (*TokenPair, error) {
	claims, err := utils.ParseClaims(a.secret, raw)
	if err != nil {
		return nil, repository.ErrInvalidToken
	}
	if claims.TokenType != utils.TokenTypeRefresh {
		return nil, repository.ErrInvalidToken
	}
	if a.blacklist.IsRevoked(ctx, raw) {
		return nil, repository.ErrInvalidToken
	}

	// Rotation: the presented refresh token is spent from here on.
	a.blacklist.Revoke(ctx, raw, "refresh rotation", claims.RemainingLife(time.Now().UTC()))

	access, err := utils.NewAccessToken(a.secret, claims.UserID, claims.Username, claims.UserType, claims.Authorities, claims.DeviceID, cc.ClientIP, a.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: issue access: %w", err)
	}
	refresh, err := utils.NewRefreshToken(a.secret, claims.UserID, claims.Username, claims.UserType, claims.Authorities, claims.DeviceID, a.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: issue refresh: %w", err)
	}

	// Best-effort: point the device's session at the new access token.
	ids, err := a.tracker.sessions.IndexMembers(ctx, claims.UserID)
	if err == nil {
		for _, id := range ids {
			s := a.tracker.GetActivity(ctx, id)
			if s == nil || s.DeviceID != claims.DeviceID {
				continue
			}
			a.tracker.UpdateToken(ctx, id, utils.FingerprintToken(access.Token), access.Exp)
			break
		}
	}

	a.publish(ctx, queue.AuthEvent{
		Type: queue.EventRefresh, UserID: claims.UserID, Username: claims.Username,
		ClientIP: cc.ClientIP, At: nowRFC3339(),
	})

	return &TokenPair{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		ExpiresIn:    int64(a.accessTTL.Seconds()),
	}, nil
}

// ForceLogoutSession terminates a single session by activity id.
func (a *AuthService) ForceLogoutSession(ctx context.Context, activityID, reason string) bool {
	s := a.tracker.GetActivity(ctx, activityID)
	ok := a.tracker.ForceLogoutSession(ctx, activityID, reason)
	if ok && s != nil {
		a.publish(ctx, queue.AuthEvent{
			Type: queue.EventForceLogout, UserID: s.UserID, Username: s.Username,
			ActivityID: activityID, Reason: reason, At: nowRFC3339(),
		})
	}
	return ok
}

// ForceLogoutUser terminates all of a user's sessions.
func (a *AuthService) ForceLogoutUser(ctx context.Context, userID uint64, reason string) bool {
	ok := a.tracker.ForceLogoutUser(ctx, userID, reason)
	if ok {
		a.publish(ctx, queue.AuthEvent{
			Type: queue.EventForceLogout, UserID: userID, Reason: reason, At: nowRFC3339(),
		})
	}
	return ok
}

// IsOnline reports whether the user has at least one live session.
func (a *AuthService) IsOnline(ctx context.Context, userID uint64) bool {
	return a.tracker.IsOnline(ctx, userID)
}

// ActiveSessionCount returns the user's live session count.
func (a *AuthService) ActiveSessionCount(ctx context.Context, userID uint64) int {
	return a.tracker.ActiveSessionCount(ctx, userID)
}

// OnlineUserCount returns the number of distinct users online.
func (a *AuthService) OnlineUserCount(ctx context.Context) int {
	return a.tracker.OnlineUserCount(ctx)
}

// publish sends an audit event, logging and swallowing any error: audit
// is fire-and-forget by contract.
func (a *AuthService) publish(ctx context.Context, ev queue.AuthEvent) {
	if a.audit == nil {
		return
	}
	if err := a.audit.Publish(ctx, ev); err != nil {
		log.Printf("audit: publish failed, continuing | type=%s user=%d err=%v", ev.Type, ev.UserID, err)
	}
}

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339) }
