// Package services – CatalogService
//
// CatalogService lists, searches, and creates game catalog entries. Search is
// a case-insensitive substring match on the title. Titles and search terms
// are NFC-normalized and case-folded into a search key, so "CHESS", "chess"
// and "Chess" all find the same entry regardless of SQL dialect.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/game-catalog-backend/internal/domain"
	"github.com/tbourn/game-catalog-backend/internal/repo"
)

// GameInput carries the user-supplied fields of a new catalog entry.
type GameInput struct {
	Title       string
	Description string
	Genre       string
	Image       string
	Download    string
}

// CatalogService provides search and creation over the games table.
type CatalogService struct {
	DB *gorm.DB
}

// NewCatalogService wires a CatalogService.
func NewCatalogService(db *gorm.DB) *CatalogService { return &CatalogService{DB: db} }

// SearchKey maps a title or search term onto the form stored in TitleKey.
func SearchKey(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	// cases.Caser is stateful; build one per call.
	return norm.NFC.String(cases.Fold().String(s))
}

// Search returns entries whose title contains term, case-insensitively.
// A blank term returns the whole catalog, newest first.
func (s *CatalogService) Search(ctx context.Context, term string) ([]domain.Game, error) {
	key := SearchKey(term)
	ctx, span := otel.Tracer("services/CatalogService").Start(ctx, "Search",
		trace.WithAttributes(attribute.String("search.key", key)),
	)
	defer span.End()

	games, err := repo.SearchGames(ctx, s.DB, key)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("search.results", len(games)))
	return games, nil
}

// Stats reports count and newest created_at for the same filter as Search.
func (s *CatalogService) Stats(ctx context.Context, term string) (int64, *time.Time, error) {
	return repo.GamesStats(ctx, s.DB, SearchKey(term))
}

// Create validates and stores a new entry. Only the title is required.
func (s *CatalogService) Create(ctx context.Context, in GameInput) (*domain.Game, error) {
	ctx, span := otel.Tracer("services/CatalogService").Start(ctx, "Create")
	defer span.End()

	title := norm.NFC.String(strings.TrimSpace(in.Title))
	if title == "" {
		return nil, ErrTitleRequired
	}
	g, err := repo.CreateGame(ctx, s.DB, domain.Game{
		Title:       title,
		TitleKey:    SearchKey(title),
		Description: strings.TrimSpace(in.Description),
		Genre:       strings.TrimSpace(in.Genre),
		Image:       strings.TrimSpace(in.Image),
		Download:    strings.TrimSpace(in.Download),
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("game.id", g.ID))
	return g, nil
}

// Get fetches a single entry by id.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Game, error) {
	g, err := repo.GetGame(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	return g, err
}
