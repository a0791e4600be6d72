// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Game model.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/game-catalog-backend/internal/domain"
)

// CreateGame inserts g with a fresh UUID and UTC creation time. The caller
// is responsible for filling Title and TitleKey.
func CreateGame(ctx context.Context, db *gorm.DB, g domain.Game) (*domain.Game, error) {
	g.ID = uuid.NewString()
	g.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// GetGame fetches a game by primary key.
func GetGame(ctx context.Context, db *gorm.DB, id string) (*domain.Game, error) {
	var g domain.Game
	if err := db.WithContext(ctx).Where("id = ?", id).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// SearchGames returns games whose TitleKey contains key as a literal
// substring, newest first. An empty key returns the full catalog.
// LIKE wildcards in key are escaped.
func SearchGames(ctx context.Context, db *gorm.DB, key string) ([]domain.Game, error) {
	q := gamesQuery(ctx, db, key)
	out := make([]domain.Game, 0)
	err := q.Order("created_at DESC, id ASC").Find(&out).Error
	return out, err
}

func gamesQuery(ctx context.Context, db *gorm.DB, key string) *gorm.DB {
	q := db.WithContext(ctx).Model(&domain.Game{})
	if key != "" {
		q = q.Where(`title_key LIKE ? ESCAPE '\'`, "%"+escapeLike(key)+"%")
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
