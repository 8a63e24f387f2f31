package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-session-service/internal/service"
)

// SessionHandler exposes the administrative session operations: forced
// logout and the online/occupancy queries. All routes are mounted behind
// JWTAuth plus a user-type check.
type SessionHandler struct {
	Auth *service.AuthService
}

func NewSessionHandler(a *service.AuthService) *SessionHandler {
	return &SessionHandler{Auth: a}
}

type forceLogoutReq struct {
	UserID     uint64 `json:"user_id"`
	ActivityID string `json:"activity_id"`
	Reason     string `json:"reason"`
}

// ForceLogout terminates either one session (activity_id) or every
// session of a user (user_id). Exactly one selector must be supplied.
// The response reports whether anything was actually terminated, which
// lets callers observe the idempotent false on an already-removed
// session without treating it as an error.
func (h *SessionHandler) ForceLogout(c echo.Context) error {
	var req forceLogoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.ActivityID = strings.TrimSpace(req.ActivityID)
	if (req.ActivityID == "") == (req.UserID == 0) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide exactly one of user_id or activity_id"})
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "forced logout"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var ok bool
	if req.ActivityID != "" {
		ok = h.Auth.ForceLogoutSession(ctx, req.ActivityID, reason)
	} else {
		ok = h.Auth.ForceLogoutUser(ctx, req.UserID, reason)
	}
	return c.JSON(http.StatusOK, echo.Map{"terminated": ok})
}

// Online reports whether a user currently has a live session.
func (h *SessionHandler) Online(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil || userID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "online": h.Auth.IsOnline(ctx, userID)})
}

// Count returns a user's live session count.
func (h *SessionHandler) Count(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil || userID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "active_sessions": h.Auth.ActiveSessionCount(ctx, userID)})
}

// OnlineUsers returns the number of distinct users currently online.
func (h *SessionHandler) OnlineUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()
	return c.JSON(http.StatusOK, echo.Map{"online_users": h.Auth.OnlineUserCount(ctx)})
}
