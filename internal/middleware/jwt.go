package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/auth-session-service/internal/repository" // blacklist lookups
    "github.com/iliyamo/auth-session-service/internal/utils"      // token parsing
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's identity claims into the request context.  A
// token passes only if its signature and expiry check out AND it has not
// been blacklisted – revocation beats cryptographic validity, which is
// what makes logout and forced logout mean anything.  Handlers behind
// this middleware can read `user_id`, `username`, `user_type` and
// `authorities` via c.Get().
func JWTAuth(secret string, blacklist *repository.BlacklistRepo) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // Token transport convention is the Authorization header only:
            // "Bearer <token>". Anything else is a 401.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            claims, err := utils.ParseClaims(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            if claims.TokenType != utils.TokenTypeAccess {
                // Refresh tokens only ever appear at the refresh endpoint.
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            if blacklist.IsRevoked(c.Request().Context(), raw) {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token revoked"})
            }

            c.Set("user_id", claims.UserID)
            c.Set("username", claims.Username)
            c.Set("user_type", claims.UserType)
            c.Set("authorities", claims.Authorities)
            c.Set("token", raw)
            return next(c)
        }
    }
}
