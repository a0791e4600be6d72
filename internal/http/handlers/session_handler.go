// Session HTTP handlers.
//
// This file exposes the cookie-based session endpoints:
//   - POST /create-session   (store identity, set the session cookie)
//   - GET  /session-status   (logged-in flag and identity)
//   - POST /heartbeat        (slide the expiry forward)
//   - POST /logout           (destroy the session, clear the cookie)
//
// Cookie policy: HttpOnly and Path=/ always. SameSite=Lax over plain HTTP in
// development; SameSite=None with Secure in production.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/game-catalog-backend/internal/services"
)

// CreateSessionRequest is the JSON payload for create-session.
type CreateSessionRequest struct {
	UserID   string `json:"userId"   example:"5f0c2b1e-8f6e-4a43-9a55-2b7f6c0d1e2f"`
	Username string `json:"username" example:"alice"`
}

// CreateSessionResponse confirms a new session.
type CreateSessionResponse struct {
	Message   string `json:"message"   example:"Session created"`
	SessionID string `json:"sessionId" example:"0b9a3f5e-3f1d-4d1e-9c4b-6b2a7c8d9e0f"`
}

// SessionStatusResponse reports whether the cookie maps to a live session.
type SessionStatusResponse struct {
	LoggedIn bool               `json:"loggedIn"`
	User     *services.Identity `json:"user,omitempty"`
}

// HeartbeatResponse carries the refreshed activity instant (RFC3339).
type HeartbeatResponse struct {
	LastActivity string `json:"lastActivity" example:"2024-03-01T12:00:00Z"`
}

// MessageResponse is a plain confirmation.
type MessageResponse struct {
	Message string `json:"message" example:"Logged out"`
}

func (h *Handlers) setSessionCookie(c *gin.Context, value string, maxAge int) {
	if h.opts.SecureCookies {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(h.opts.CookieName, value, maxAge, "/", "", h.opts.SecureCookies, true)
}

func (h *Handlers) sessionID(c *gin.Context) string {
	id, err := c.Cookie(h.opts.CookieName)
	if err != nil {
		return ""
	}
	return id
}

// CreateSession godoc
// @ID          createSession
// @Summary     Create a server-side session
// @Tags        Sessions
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.CreateSessionRequest  true  "Identity"
// @Success     200   {object}  handlers.CreateSessionResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Missing fields"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /create-session [post]
func (h *Handlers) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidJSON)
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), req.UserID, req.Username)
	if errors.Is(err, services.ErrSessionFieldsRequired) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "userId and username are required.")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	h.setSessionCookie(c, sess.ID, int(h.opts.SessionTTL.Seconds()))
	ok(c, http.StatusOK, CreateSessionResponse{Message: "Session created", SessionID: sess.ID})
}

// SessionStatus godoc
// @ID          sessionStatus
// @Summary     Session status
// @Tags        Sessions
// @Produce     json
// @Success     200  {object}  handlers.SessionStatusResponse
// @Failure     401  {object}  handlers.SessionStatusResponse  "No live session"
// @Failure     500  {object}  handlers.ErrorResponse          "Internal error"
// @Router      /session-status [get]
func (h *Handlers) SessionStatus(c *gin.Context) {
	ident, err := h.sessions.Status(c.Request.Context(), h.sessionID(c))
	if errors.Is(err, services.ErrNoSession) {
		c.JSON(http.StatusUnauthorized, SessionStatusResponse{LoggedIn: false})
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, SessionStatusResponse{LoggedIn: true, User: ident})
}

// Heartbeat godoc
// @ID          heartbeat
// @Summary     Refresh session expiry
// @Tags        Sessions
// @Produce     json
// @Success     200  {object}  handlers.HeartbeatResponse
// @Failure     401  {object}  handlers.ErrorResponse  "No live session"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /heartbeat [post]
func (h *Handlers) Heartbeat(c *gin.Context) {
	id := h.sessionID(c)
	at, err := h.sessions.Heartbeat(c.Request.Context(), id)
	if errors.Is(err, services.ErrNoSession) {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, msgNoSession)
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	h.setSessionCookie(c, id, int(h.opts.SessionTTL.Seconds()))
	ok(c, http.StatusOK, HeartbeatResponse{LastActivity: at.UTC().Format(time.RFC3339)})
}

// Logout godoc
// @ID          logout
// @Summary     Destroy the session
// @Description Idempotent: succeeds with or without a live session.
// @Tags        Sessions
// @Produce     json
// @Success     200  {object}  handlers.MessageResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context(), h.sessionID(c)); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	h.setSessionCookie(c, "", -1)
	ok(c, http.StatusOK, MessageResponse{Message: "Logged out"})
}
