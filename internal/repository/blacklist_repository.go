package repository

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/auth-session-service/internal/utils"
)

// blacklistKey namespaces revocation entries.  The key suffix is the
// token's SHA-256 fingerprint, never the raw token.
const blacklistKey = "blacklist:"

// revokedEntry is the value stored for a blacklisted token.  The entry is
// informational; presence of the key alone is what fails validation.
type revokedEntry struct {
	Reason    string    `json:"reason"`
	RevokedAt time.Time `json:"revoked_at"`
}

// BlacklistRepo is the revocation registry. Entries carry a TTL equal to
// the revoked token's remaining lifetime, so the registry can never grow
// past the set of tokens that are still cryptographically valid.
type BlacklistRepo struct {
	rdb *redis.Client
}

func NewBlacklistRepo(rdb *redis.Client) *BlacklistRepo { return &BlacklistRepo{rdb: rdb} }

// Revoke blacklists a raw token for the remainder of its life. A zero or
// negative ttl means the token is already expired and there is nothing to
// block; the call reports success without writing.
func (r *BlacklistRepo) Revoke(ctx context.Context, token, reason string, ttl time.Duration) bool {
	return r.RevokeFingerprint(ctx, utils.FingerprintToken(token), reason, ttl)
}

// RevokeFingerprint blacklists a token by its stored fingerprint. Forced
// logout uses this path: the session record only keeps the fingerprint.
func (r *BlacklistRepo) RevokeFingerprint(ctx context.Context, fingerprint, reason string, ttl time.Duration) bool {
	if fingerprint == "" {
		return false
	}
	if ttl <= 0 {
		return true
	}
	entry, err := json.Marshal(revokedEntry{Reason: reason, RevokedAt: time.Now().UTC()})
	if err != nil {
		return false
	}
	if err := r.rdb.Set(ctx, blacklistKey+fingerprint, entry, ttl).Err(); err != nil {
		log.Printf("blacklist: revoke failed | fp=%s err=%v", fingerprint, err)
		return false
	}
	return true
}

// IsRevoked reports whether a raw token has been blacklisted. Absence of
// the key means not revoked: a signature-valid token is trusted until
// proven blacklisted. A store error degrades to false with a logged
// warning so a transient outage does not lock every caller out.
func (r *BlacklistRepo) IsRevoked(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	n, err := r.rdb.Exists(ctx, blacklistKey+utils.FingerprintToken(token)).Result()
	if err != nil {
		log.Printf("blacklist: lookup failed, treating as not revoked | err=%v", err)
		return false
	}
	return n > 0
}
