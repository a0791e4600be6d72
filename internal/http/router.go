// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, route handlers, and the realtime chat hub. It centralizes
// cross-cutting concerns such as tracing, correlation IDs, logging/redaction,
// panic recovery, compression, metrics, authentication, idempotency, rate
// limiting, CORS, and security headers.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/game-catalog-backend/docs"
	"github.com/tbourn/game-catalog-backend/internal/auth"
	"github.com/tbourn/game-catalog-backend/internal/config"
	"github.com/tbourn/game-catalog-backend/internal/http/handlers"
	"github.com/tbourn/game-catalog-backend/internal/http/middleware"
	"github.com/tbourn/game-catalog-backend/internal/realtime"
	"github.com/tbourn/game-catalog-backend/internal/repo"
	"github.com/tbourn/game-catalog-backend/internal/services"
	"github.com/tbourn/game-catalog-backend/internal/session"
)

// identifierShim adapts SessionService to the realtime handshake, which
// keeps its own identity type so the hub does not import services.
type identifierShim struct {
	svc *services.SessionService
}

// Identify proxies SessionService.Identify.
func (s identifierShim) Identify(ctx context.Context, sessionID string) (realtime.Identity, bool) {
	ident, ok := s.svc.Identify(ctx, sessionID)
	if !ok {
		return realtime.Identity{}, false
	}
	return realtime.Identity{UserID: ident.UserID, Username: ident.Username}, true
}

// Deps are the long-lived resources RegisterRoutes builds services on.
// Sessions defaults to the DB store; Registry and Relay default to a local,
// single-process chat room.
type Deps struct {
	DB       *gorm.DB
	Sessions session.Store
	Registry *realtime.Registry
	Relay    realtime.Relay
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and returns the chat hub so the caller can shut it down.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter and gzip (the websocket route is excluded)
//  6. Metrics
//  7. Authenticate: optional bearer token, feeds logs and rate-limit keys
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per user/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) *realtime.Hub {
	r.HandleMethodNotAllowed = true
	db := deps.DB
	apiBase := cfg.APIBasePath

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB) and response compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws", "/metrics"})))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Bearer token identity (never rejects on its own)
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	r.Use(middleware.Authenticate(issuer))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, scope, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, scope, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per user/IP; chat frames are limited per connection
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP(), "/health", "/metrics", "/ws")
	r.Use(rl.Handler())

	// 10) CORS posture (allow all if none configured)
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// The session cookie crosses origins, so credentials are allowed
		// for allow-listed origins only.
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers; token and session responses are never cached.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
		NoStorePrefixes: []string{
			joinPath(apiBase, "/auth"),
			joinPath(apiBase, "/create-session"),
			joinPath(apiBase, "/session-status"),
			joinPath(apiBase, "/heartbeat"),
			joinPath(apiBase, "/logout"),
		},
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/session store
	store := deps.Sessions
	if store == nil {
		store = session.NewDBStore(db)
	}
	reg := deps.Registry
	if reg == nil {
		reg = realtime.NewRegistry()
	}
	relay := deps.Relay
	if relay == nil {
		relay = realtime.NewLocalRelay(reg)
	}

	sessSvc := services.NewSessionService(store, cfg.Session.TTL)
	chatSvc := services.NewChatService(db)
	hub := realtime.NewHub(reg, chatSvc, relay, identifierShim{svc: sessSvc}, realtime.Options{
		MaxBodyRunes:   cfg.Chat.MaxBodyRunes,
		MaxFrameBytes:  cfg.Chat.MaxFrameBytes,
		SendBuffer:     cfg.Chat.SendBuffer,
		RateRPS:        cfg.Chat.RateRPS,
		RateBurst:      cfg.Chat.RateBurst,
		PingInterval:   cfg.Chat.PingInterval,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		CookieName:     cfg.Session.CookieName,
	})

	h := handlers.New(handlers.Services{
		Accounts: services.NewAccountService(db, issuer),
		Catalog:  services.NewCatalogService(db),
		Sessions: sessSvc,
		History:  chatSvc,
		Socket:   hub,
	}, handlers.Options{
		DB:             db,
		IdempotencyTTL: cfg.IdempotencyTTL,
		CookieName:     cfg.Session.CookieName,
		SessionTTL:     cfg.Session.TTL,
		SecureCookies:  cfg.IsProduction(),
	})

	// Realtime chat
	r.GET("/ws", h.ChatWS)

	// Public API
	api := groupWithPrefix(r, apiBase)
	{
		// Accounts
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.GET("/auth/me", middleware.RequireAuth(), h.Me)

		// Catalog
		api.GET("/games", h.ListGames)
		api.POST("/games", h.CreateGame)

		// Sessions
		api.POST("/create-session", h.CreateSession)
		api.GET("/session-status", h.SessionStatus)
		api.POST("/heartbeat", h.Heartbeat)
		api.POST("/logout", h.Logout)

		// Chat history
		api.GET("/messages", h.ListMessages)
	}

	return hub
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

func joinPath(base, p string) string {
	if base == "/" {
		return p
	}
	return base + p
}
