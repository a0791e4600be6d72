// Package session persists server-side login sessions behind a small Store
// interface. Two backends exist: the relational database (default) and
// Redis, for deployments that run several API instances.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/tbourn/game-catalog-backend/internal/domain"
)

// ErrNotFound is returned when a session is missing or expired.
var ErrNotFound = errors.New("session not found")

// Store is the persistence contract for sessions. Implementations must treat
// expired sessions exactly like missing ones.
type Store interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id string, now time.Time) (*domain.Session, error)
	Touch(ctx context.Context, id string, now, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
}
