// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller's identity from an optional bearer token.
// Authenticate never rejects; RequireAuth turns a missing identity into 401.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/game-catalog-backend/internal/auth"
)

// Context keys for the authenticated identity.
const (
	ctxKeyUserID   = "userID"
	ctxKeyUsername = "username"
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Authenticate stores user id and username in the context when the request
// carries a valid "Authorization: Bearer <jwt>" header.
func Authenticate(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := bearerToken(c.GetHeader("Authorization")); tok != "" && v != nil {
			if claims, err := v.Validate(tok); err == nil {
				c.Set(ctxKeyUserID, claims.UserID)
				c.Set(ctxKeyUsername, claims.Username)
			} else {
				LoggerFrom(c).Debug().Err(err).Msg("bearer token rejected")
			}
		}
		c.Next()
	}
}

// RequireAuth aborts with 401 unless Authenticate resolved a user.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "unauthorized",
				"message":    "Authentication required.",
			})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or "".
func UserID(c *gin.Context) string {
	v, _ := c.Get(ctxKeyUserID)
	return asString(v)
}

// Username returns the authenticated username, or "".
func Username(c *gin.Context) string {
	v, _ := c.Get(ctxKeyUsername)
	return asString(v)
}

func bearerToken(h string) string {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}
