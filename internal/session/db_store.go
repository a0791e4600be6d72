package session

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/game-catalog-backend/internal/domain"
	"github.com/tbourn/game-catalog-backend/internal/repo"
)

// DBStore keeps sessions in the sessions table.
type DBStore struct {
	DB *gorm.DB
}

// NewDBStore returns a Store backed by db.
func NewDBStore(db *gorm.DB) *DBStore { return &DBStore{DB: db} }

func (s *DBStore) Create(ctx context.Context, sess *domain.Session) error {
	return repo.CreateSession(ctx, s.DB, sess)
}

func (s *DBStore) Get(ctx context.Context, id string, now time.Time) (*domain.Session, error) {
	sess, err := repo.GetSession(ctx, s.DB, id, now)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return sess, err
}

func (s *DBStore) Touch(ctx context.Context, id string, now, expiresAt time.Time) error {
	err := repo.TouchSession(ctx, s.DB, id, now, expiresAt)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *DBStore) Delete(ctx context.Context, id string) error {
	return repo.DeleteSession(ctx, s.DB, id)
}

// Purge removes expired rows; Redis expires keys on its own.
func (s *DBStore) Purge(ctx context.Context, now time.Time) (int64, error) {
	return repo.PurgeExpiredSessions(ctx, s.DB, now)
}
