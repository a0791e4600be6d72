// Package handlers wires HTTP endpoints to the application services.
//
// Handlers are transport-thin: they bind and trim input, call a service, and
// translate sentinel errors into the error envelope. Service dependencies are
// expressed as small interfaces so tests can substitute stubs.
package handlers

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/game-catalog-backend/internal/domain"
	"github.com/tbourn/game-catalog-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// AccountService registers and authenticates users.
type AccountService interface {
	Register(ctx context.Context, username, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Me(ctx context.Context, userID string) (*domain.Account, error)
}

// CatalogService searches and creates game entries.
type CatalogService interface {
	Search(ctx context.Context, term string) ([]domain.Game, error)
	Stats(ctx context.Context, term string) (int64, *time.Time, error)
	Create(ctx context.Context, in services.GameInput) (*domain.Game, error)
	Get(ctx context.Context, id string) (*domain.Game, error)
}

// SessionService manages cookie-referenced server sessions.
type SessionService interface {
	Create(ctx context.Context, userID, username string) (*domain.Session, error)
	Status(ctx context.Context, id string) (*services.Identity, error)
	Heartbeat(ctx context.Context, id string) (time.Time, error)
	Logout(ctx context.Context, id string) error
}

// ChatHistory pages through persisted chat messages.
type ChatHistory interface {
	ListPage(ctx context.Context, page, pageSize int) ([]domain.ChatMessage, int64, error)
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// ChatSocket upgrades a request to the realtime chat channel.
type ChatSocket interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

//
// Handler wiring
//

// Services groups the dependencies of Handlers. Nil members disable the
// matching endpoints at the router.
type Services struct {
	Accounts AccountService
	Catalog  CatalogService
	Sessions SessionService
	History  ChatHistory
	Socket   ChatSocket
}

// Options carries transport-level settings.
type Options struct {
	// DB backs Idempotency-Key replay for catalog creation; nil disables it.
	DB             *gorm.DB
	IdempotencyTTL time.Duration

	CookieName string
	SessionTTL time.Duration
	// SecureCookies selects the production cookie policy
	// (SameSite=None; Secure) instead of SameSite=Lax.
	SecureCookies bool
}

// Handlers groups all HTTP endpoints.
type Handlers struct {
	accounts AccountService
	catalog  CatalogService
	sessions SessionService
	history  ChatHistory
	socket   ChatSocket
	opts     Options
}

// New constructs a Handlers instance bound to the given services.
func New(svc Services, opts Options) *Handlers {
	if opts.CookieName == "" {
		opts.CookieName = "sid"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = services.DefaultSessionTTL
	}
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = 24 * time.Hour
	}
	return &Handlers{
		accounts: svc.Accounts,
		catalog:  svc.Catalog,
		sessions: svc.Sessions,
		history:  svc.History,
		socket:   svc.Socket,
		opts:     opts,
	}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}
