package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireType returns a middleware function that enforces that the
// authenticated user has one of the specified user types.  The types
// accepted correspond to the values stored in the JWT's "user_type"
// claim.  If the user's type is not in the allowed set, the request is
// aborted with a 403 Forbidden response.  It assumes JWTAuth has already
// stored the type in the context under the key "user_type".
func RequireType(types ...string) echo.MiddlewareFunc {
    // Build a set of allowed types for constant‑time lookups.
    allowed := make(map[string]bool, len(types))
    for _, t := range types {
        allowed[t] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            v := c.Get("user_type")
            userType, ok := v.(string)
            if !ok || !allowed[userType] {
                return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
