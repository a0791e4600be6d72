// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// ChatMessage model. Rows are append-only.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/game-catalog-backend/internal/domain"
)

// CreateChatMessage inserts a chat message stamped with createdAt (UTC).
func CreateChatMessage(ctx context.Context, db *gorm.DB, author, body string, createdAt time.Time) (*domain.ChatMessage, error) {
	m := &domain.ChatMessage{
		ID:        uuid.NewString(),
		Author:    author,
		Body:      body,
		CreatedAt: createdAt.UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// CountChatMessages uses a raw COUNT so a missing table surfaces as an error.
func CountChatMessages(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM chat_messages").Scan(&total).Error
	return total, err
}

// ListChatMessagesPage returns a page ordered (CreatedAt ASC, ID ASC).
func ListChatMessagesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.ChatMessage, error) {
	out := make([]domain.ChatMessage, 0, limit)
	err := db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
