// Account HTTP handlers.
//
// This file exposes:
//   - POST /auth/register  (create account, returns a bearer token)
//   - POST /auth/login     (exchange credentials for a bearer token)
//   - GET  /auth/me        (account summary for the bearer token)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/game-catalog-backend/internal/domain"
	"github.com/tbourn/game-catalog-backend/internal/http/middleware"
	"github.com/tbourn/game-catalog-backend/internal/services"
)

// RegisterRequest is the JSON payload for registration.
type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email"    example:"a@x.com"`
	Password string `json:"password" example:"pw123"`
}

// LoginRequest is the JSON payload for login.
type LoginRequest struct {
	Email    string `json:"email"    example:"a@x.com"`
	Password string `json:"password" example:"pw123"`
}

// UserSummary is the public view of an account.
type UserSummary struct {
	ID       string `json:"id"       example:"5f0c2b1e-8f6e-4a43-9a55-2b7f6c0d1e2f"`
	Username string `json:"username" example:"alice"`
	Email    string `json:"email"    example:"a@x.com"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

func summarize(a *domain.Account) UserSummary {
	return UserSummary{ID: a.ID, Username: a.Username, Email: a.Email}
}

// Register godoc
// @ID          register
// @Summary     Register a new account
// @Description Creates an account and returns a signed token valid for one hour.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.RegisterRequest  true  "Registration payload"
// @Success     201   {object}  handlers.AuthResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Missing or invalid fields"
// @Failure     409   {object}  handlers.ErrorResponse  "Username or email taken"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidJSON)
		return
	}

	res, err := h.accounts.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrMissingFields):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgFieldsRequired)
		return
	case errors.Is(err, services.ErrInvalidEmail):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidEmail)
		return
	case errors.Is(err, services.ErrPasswordTooShort):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgPasswordTooShort)
		return
	case errors.Is(err, services.ErrPasswordTooLong):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgPasswordTooLong)
		return
	case errors.Is(err, services.ErrUsernameTooLong):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgUsernameTooLong)
		return
	case errors.Is(err, services.ErrAccountExists):
		fail(c, http.StatusConflict, ErrCodeConflict, msgUserExists)
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusCreated, AuthResponse{Token: res.Token, User: summarize(res.Account)})
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies email and password. Unknown email and wrong password yield the same error.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.LoginRequest  true  "Credentials"
// @Success     200   {object}  handlers.AuthResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidJSON)
		return
	}

	res, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		fail(c, http.StatusBadRequest, ErrCodeInvalidCredentials, msgInvalidCredentials)
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, AuthResponse{Token: res.Token, User: summarize(res.Account)})
}

// Me godoc
// @ID          me
// @Summary     Current account
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.UserSummary
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     404  {object}  handlers.ErrorResponse  "Account gone"
// @Router      /auth/me [get]
func (h *Handlers) Me(c *gin.Context) {
	acc, err := h.accounts.Me(c.Request.Context(), middleware.UserID(c))
	if errors.Is(err, services.ErrAccountNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "Account not found.")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, summarize(acc))
}
