package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/sha256" // SHA‑256 hashing for token fingerprints
    "encoding/hex"  // hex encoding of digests
    "errors"        // sentinel error for invalid tokens
    "time"          // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned by ParseClaims when a token is malformed,
// carries a bad signature, has expired, or its claims are not in the
// expected shape.  Callers that only need a yes/no answer should treat
// this error as "invalid", never as a reason to fail the whole request.
var ErrInvalidToken = errors.New("invalid token")

// Token kind markers embedded in the `typ` claim.  The refresh flow
// rejects access tokens presented as refresh tokens and vice versa.
const (
    TokenTypeAccess  = "access"
    TokenTypeRefresh = "refresh"
)

// SignedToken represents a signed JWT along with its expiry.  The Token
// field contains the serialized JWT string; Exp stores the expiration as a
// time.Time.  Access tokens are short‑lived and carried in the
// Authorization header; refresh tokens live longer and are only ever
// exchanged at the refresh endpoint.
type SignedToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// TokenClaims is the typed view of the claims this service issues.  All
// tokens carry the subject id, username, user type, flattened authority
// list, device id, issued-at and expiry; access tokens additionally carry
// the client IP observed at login.
type TokenClaims struct {
    UserID      uint64    // sub
    Username    string    // username
    UserType    string    // user_type
    Authorities []string  // authorities
    DeviceID    string    // device_id
    ClientIP    string    // client_ip (access tokens only)
    TokenType   string    // typ
    IssuedAt    time.Time // iat
    ExpiresAt   time.Time // exp
}

// RemainingLife returns how long the token is still valid for, clamped at
// zero.  The blacklist uses this as the TTL for revocation entries so an
// entry never outlives the token it blocks.
func (c *TokenClaims) RemainingLife(now time.Time) time.Duration {
    if d := c.ExpiresAt.Sub(now); d > 0 {
        return d
    }
    return 0
}

// NewAccessToken builds and signs an HS256 access JWT.  The claims include
// the standard subject (sub), expiration (exp) and issued at (iat) fields
// plus the identity fields this service propagates to downstream checks.
// Signing can only fail when the key is unusable, which is a
// configuration-level problem rather than a per-request one.
func NewAccessToken(secret string, userID uint64, username, userType string, authorities []string, deviceID, clientIP string, ttl time.Duration) (SignedToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "sub":         userID,
        "username":    username,
        "user_type":   userType,
        "authorities": authorities,
        "device_id":   deviceID,
        "client_ip":   clientIP,
        "typ":         TokenTypeAccess,
        "iat":         now.Unix(),
        "exp":         exp.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SignedToken{}, err
    }
    return SignedToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs an HS256 refresh JWT.  Refresh tokens
// live longer than access tokens, are marked with typ=refresh, and omit
// the client IP claim: the IP at refresh time is not the IP at login time
// and must not be trusted from a long-lived credential.
func NewRefreshToken(secret string, userID uint64, username, userType string, authorities []string, deviceID string, ttl time.Duration) (SignedToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "sub":         userID,
        "username":    username,
        "user_type":   userType,
        "authorities": authorities,
        "device_id":   deviceID,
        "typ":         TokenTypeRefresh,
        "iat":         now.Unix(),
        "exp":         exp.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SignedToken{}, err
    }
    return SignedToken{Token: signed, Exp: exp}, nil
}

// ParseClaims verifies the signature and expiry of a token and extracts
// its claims into a TokenClaims.  Any failure – wrong algorithm, bad
// signature, expired, malformed claims – comes back as ErrInvalidToken so
// callers never have to distinguish the library's error zoo.
func ParseClaims(secret, raw string) (*TokenClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject tokens signed with anything but HMAC; accepting the
        // token's own alg header verbatim is the classic JWT footgun.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return nil, ErrInvalidToken
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return nil, ErrInvalidToken
    }

    out := &TokenClaims{}
    switch sub := mc["sub"].(type) {
    case float64:
        // JSON numbers decode as float64; our ids fit comfortably.
        out.UserID = uint64(sub)
    default:
        return nil, ErrInvalidToken
    }
    out.Username, _ = mc["username"].(string)
    out.UserType, _ = mc["user_type"].(string)
    out.DeviceID, _ = mc["device_id"].(string)
    out.ClientIP, _ = mc["client_ip"].(string)
    out.TokenType, _ = mc["typ"].(string)
    if out.Username == "" || out.TokenType == "" {
        return nil, ErrInvalidToken
    }
    if raw, ok := mc["authorities"].([]interface{}); ok {
        for _, a := range raw {
            if s, ok := a.(string); ok {
                out.Authorities = append(out.Authorities, s)
            }
        }
    }
    if iat, ok := mc["iat"].(float64); ok {
        out.IssuedAt = time.Unix(int64(iat), 0).UTC()
    }
    if exp, ok := mc["exp"].(float64); ok {
        out.ExpiresAt = time.Unix(int64(exp), 0).UTC()
    }
    return out, nil
}

// FingerprintToken returns the SHA‑256 hash of a token as a hex string.
// Session records and blacklist keys store only the fingerprint, never the
// raw token, so a leaked store dump cannot be replayed as credentials.
func FingerprintToken(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}
