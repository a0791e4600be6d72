// Package services – SessionService
//
// SessionService manages cookie-referenced server sessions with a sliding
// expiry. It is also the identity source for realtime connections.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/game-catalog-backend/internal/domain"
	"github.com/tbourn/game-catalog-backend/internal/session"
)

// DefaultSessionTTL is the idle window after which a session expires.
const DefaultSessionTTL = 30 * time.Minute

// Identity is the claim attached to a session.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// SessionService creates, inspects, refreshes, and destroys sessions.
type SessionService struct {
	Store session.Store
	TTL   time.Duration

	now func() time.Time
}

// NewSessionService wires a SessionService; ttl <= 0 uses DefaultSessionTTL.
func NewSessionService(store session.Store, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{Store: store, TTL: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// Create opens a session for the given identity.
func (s *SessionService) Create(ctx context.Context, userID, username string) (*domain.Session, error) {
	userID, username = strings.TrimSpace(userID), strings.TrimSpace(username)
	if userID == "" || username == "" {
		return nil, ErrSessionFieldsRequired
	}
	now := s.now()
	sess := &domain.Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		Username:     username,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(s.TTL),
	}
	if err := s.Store.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Status returns the identity of a live session.
func (s *SessionService) Status(ctx context.Context, id string) (*Identity, error) {
	if id == "" {
		return nil, ErrNoSession
	}
	sess, err := s.Store.Get(ctx, id, s.now())
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: sess.UserID, Username: sess.Username}, nil
}

// Heartbeat slides the expiry forward and returns the new activity instant.
func (s *SessionService) Heartbeat(ctx context.Context, id string) (time.Time, error) {
	if id == "" {
		return time.Time{}, ErrNoSession
	}
	now := s.now()
	err := s.Store.Touch(ctx, id, now, now.Add(s.TTL))
	if errors.Is(err, session.ErrNotFound) {
		return time.Time{}, ErrNoSession
	}
	if err != nil {
		return time.Time{}, err
	}
	return now, nil
}

// Logout destroys the session. Unknown ids are not an error.
func (s *SessionService) Logout(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.Store.Delete(ctx, id)
}

// Identify resolves a session id to its identity for the realtime handshake.
// Absence is not an error; ok is false.
func (s *SessionService) Identify(ctx context.Context, id string) (Identity, bool) {
	ident, err := s.Status(ctx, id)
	if err != nil {
		return Identity{}, false
	}
	return *ident, true
}
