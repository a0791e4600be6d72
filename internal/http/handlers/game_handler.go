// Catalog HTTP handlers.
//
// This file exposes:
//   - GET  /games?search=term  (case-insensitive title substring, weak ETag)
//   - POST /games              (create an entry, Idempotency-Key aware)
//
// Idempotency:
// When the client repeats an Idempotency-Key within its TTL, the entry
// created by the first request is returned with `Idempotency-Replayed: true`
// and no new row is written.
package handlers

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/game-catalog-backend/internal/domain"
	"github.com/tbourn/game-catalog-backend/internal/http/middleware"
	"github.com/tbourn/game-catalog-backend/internal/repo"
	"github.com/tbourn/game-catalog-backend/internal/services"
)

// CreateGameRequest is the JSON payload for a new catalog entry.
type CreateGameRequest struct {
	Title       string `json:"title"       example:"Chess"`
	Description string `json:"description" example:"Classic strategy board game"`
	Genre       string `json:"genre"       example:"Strategy"`
	Image       string `json:"image"       example:"https://cdn.example.com/chess.png"`
	Download    string `json:"download"    example:"https://example.com/chess.zip"`
}

// gamesETag derives a weak validator from the normalized term and the
// matching set's size and newest timestamp.
func gamesETag(term string, count int64, latest *time.Time) string {
	hs := fnv.New32a()
	_, _ = hs.Write([]byte(services.SearchKey(term)))
	var ts int64
	if latest != nil {
		ts = latest.UnixNano()
	}
	return fmt.Sprintf(`W/"games:%08x:%d:%d"`, hs.Sum32(), count, ts)
}

// ListGames godoc
// @ID          listGames
// @Summary     Search the catalog
// @Description Returns entries whose title contains the term (case-insensitive), newest first.
// @Description An empty term returns every entry. Supports weak ETag via If-None-Match.
// @Tags        Games
// @Produce     json
// @Param       search  query     string  false  "Title substring"  example(che)
// @Success     200     {array}   domain.Game
// @Success     304     "Not Modified"
// @Failure     500     {object}  handlers.ErrorResponse  "Internal error"
// @Router      /games [get]
func (h *Handlers) ListGames(c *gin.Context) {
	ctx := c.Request.Context()
	term := c.Query("search")

	// ETag pre-check (best effort).
	if count, latest, err := h.catalog.Stats(ctx, term); err == nil {
		if notModified(c, gamesETag(term, count, latest)) {
			return
		}
	}

	games, err := h.catalog.Search(ctx, term)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, games)
}

// CreateGame godoc
// @ID          createGame
// @Summary     Add a catalog entry
// @Description Creates a game. Only the title is required. Supports Idempotency-Key for safe retries.
// @Tags        Games
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header    string                      false  "Idempotency key"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body      handlers.CreateGameRequest  true   "Entry"
// @Success     201              {object}  domain.Game
// @Failure     400              {object}  handlers.ErrorResponse  "Title missing"
// @Failure     500              {object}  handlers.ErrorResponse  "Internal error"
// @Router      /games [post]
func (h *Handlers) CreateGame(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidJSON)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgTitleRequired)
		return
	}

	idemKey, _ := middleware.GetIdempotencyKey(c)
	scope := middleware.IdempotencyScope(c)
	if prev, status, found := h.replayedGame(c, scope, idemKey); found {
		c.Header("Idempotency-Replayed", "true")
		ok(c, status, prev)
		return
	}

	g, err := h.catalog.Create(ctx, services.GameInput{
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		Image:       req.Image,
		Download:    req.Download,
	})
	if errors.Is(err, services.ErrTitleRequired) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgTitleRequired)
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" && h.opts.DB != nil {
		if _, err := repo.CreateIdempotency(ctx, h.opts.DB, scope, idemKey, g.ID, http.StatusCreated, h.opts.IdempotencyTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record not stored")
		}
	}

	ok(c, http.StatusCreated, g)
}

// replayedGame returns the entry recorded for (scope, key), if any.
func (h *Handlers) replayedGame(c *gin.Context, scope, key string) (*domain.Game, int, bool) {
	if key == "" || h.opts.DB == nil {
		return nil, 0, false
	}
	ctx := c.Request.Context()
	rec, err := repo.GetIdempotency(ctx, h.opts.DB, scope, key, time.Now().UTC())
	if err != nil {
		return nil, 0, false
	}
	g, err := h.catalog.Get(ctx, rec.ResourceID)
	if err != nil {
		return nil, 0, false
	}
	return g, rec.Status, true
}
