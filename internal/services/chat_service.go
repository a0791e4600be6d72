// Package services – ChatService
//
// ChatService is the persistence side of the public chat room: it appends
// accepted messages (the realtime hub's message store) and pages through
// history for the REST API.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/game-catalog-backend/internal/domain"
	"github.com/tbourn/game-catalog-backend/internal/repo"
)

// ChatService stores and lists chat messages.
type ChatService struct {
	DB *gorm.DB
}

// NewChatService wires a ChatService.
func NewChatService(db *gorm.DB) *ChatService { return &ChatService{DB: db} }

// SaveMessage appends a message stamped with at.
func (s *ChatService) SaveMessage(ctx context.Context, author, body string, at time.Time) (*domain.ChatMessage, error) {
	ctx, span := otel.Tracer("services/ChatService").Start(ctx, "SaveMessage")
	defer span.End()

	m, err := repo.CreateChatMessage(ctx, s.DB, author, body, at)
	if err != nil {
		span.RecordError(err)
	}
	return m, err
}

// ListPage returns history oldest-first. Invalid page values fall back to
// page 1 and a page size of 20.
func (s *ChatService) ListPage(ctx context.Context, page, pageSize int) ([]domain.ChatMessage, int64, error) {
	ctx, span := otel.Tracer("services/ChatService").Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountChatMessages(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.ChatMessage{}, 0, nil
	}
	items, err := repo.ListChatMessagesPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}

// Stats returns the message count and newest CreatedAt, used for ETags.
func (s *ChatService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return repo.MessagesStats(ctx, s.DB)
}
