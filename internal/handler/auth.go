package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-session-service/internal/repository"
	"github.com/iliyamo/auth-session-service/internal/service"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(a *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: a}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	DeviceID string `json:"device_id"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// Login: verify credentials and establish a session.
//
// The error mapping is part of the security contract: validation → 400,
// generic invalid credentials / disabled account → 401 with the same
// body, lockout → 423 with the flavor-specific message. Only the exact
// attempt that trips the threshold reveals the lock escalation.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.Username, req.Password, service.ClientContext{
		ClientIP:  c.RealIP(),
		UserAgent: c.Request().UserAgent(),
		DeviceID:  req.DeviceID,
	})
	if err != nil {
		if le, ok := repository.IsAccountLocked(err); ok {
			return c.JSON(http.StatusLocked, echo.Map{"error": le.Error()})
		}
		switch {
		case errors.Is(err, repository.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
		case errors.Is(err, repository.ErrInvalidCredentials), errors.Is(err, repository.ErrAccountDisabled):
			// One body for both: account state must not leak on failure.
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
		}
	}
	return c.JSON(http.StatusOK, res)
}

// Logout: revoke the presented bearer token and remove its session.
func (h *AuthHandler) Logout(c echo.Context) error {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Authorization header required"})
	}
	raw := strings.TrimPrefix(auth, "Bearer ")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if !h.Auth.Logout(ctx, raw) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Refresh: rotate a refresh token and return a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken), service.ClientContext{
		ClientIP:  c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalidToken) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	return c.JSON(http.StatusOK, pair)
}

// Me: simple protected endpoint echoing the injected identity.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":     c.Get("user_id"),
		"username":    c.Get("username"),
		"user_type":   c.Get("user_type"),
		"authorities": c.Get("authorities"),
	})
}
