package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/auth-session-service/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/auth-session-service/internal/middleware" // import middleware for JWT authentication and user-type enforcement
	"github.com/iliyamo/auth-session-service/internal/repository" // blacklist needed by the JWT middleware
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems use this to verify the
	// service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, s *handler.SessionHandler, jwtSecret string, blacklist *repository.BlacklistRepo) {
	// Operations that do not require an existing session.  Login issues a
	// token pair; refresh exchanges a refresh token for a new pair.
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout takes the Bearer token straight from the Authorization
	// header; it does not sit behind JWTAuth because a just-revoked or
	// almost-expired token must still be able to log itself out.
	g.POST("/logout", a.Logout)

	// Routes that require a valid, non-revoked access token.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret, blacklist))
	auth.GET("/me", a.Me)

	// Administrative session management: forced logout and online
	// queries.  Restricted to the user types whose authority lists carry
	// the session permissions.
	admin := e.Group("/v1/sessions")
	admin.Use(middleware.JWTAuth(jwtSecret, blacklist))
	admin.Use(middleware.RequireType("ADMIN", "OPERATOR"))
	admin.POST("/force-logout", s.ForceLogout)
	admin.GET("/online/:userId", s.Online)
	admin.GET("/count/:userId", s.Count)
	admin.GET("/online-users", s.OnlineUsers)
}
