// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Session
// model. Expired rows are treated as absent.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/game-catalog-backend/internal/domain"
)

// CreateSession inserts s as-is.
func CreateSession(ctx context.Context, db *gorm.DB, s *domain.Session) error {
	return db.WithContext(ctx).Create(s).Error
}

// GetSession returns the live session with id, or ErrNotFound when it is
// missing or expired at now.
func GetSession(ctx context.Context, db *gorm.DB, id string, now time.Time) (*domain.Session, error) {
	var s domain.Session
	err := db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", id, now.UTC()).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// TouchSession slides a live session's expiry and records activity.
func TouchSession(ctx context.Context, db *gorm.DB, id string, now, expiresAt time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ? AND expires_at > ?", id, now.UTC()).
		Updates(map[string]any{
			"last_activity": now.UTC(),
			"expires_at":    expiresAt.UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSession removes a session. Deleting a missing id is not an error.
func DeleteSession(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Session{}).Error
}

// PurgeExpiredSessions deletes every session expired at now.
func PurgeExpiredSessions(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&domain.Session{})
	return res.RowsAffected, res.Error
}
