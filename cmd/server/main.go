// Command server runs the game catalog API: account registration and login,
// the game catalog, cookie sessions, chat history, and the realtime chat
// websocket.
//
//	@title			Game Catalog API
//	@version		1.0
//	@BasePath		/api
//	@securityDefinitions.apikey	BearerAuth
//	@in				header
//	@name			Authorization
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/game-catalog-backend/internal/config"
	httpapi "github.com/tbourn/game-catalog-backend/internal/http"
	"github.com/tbourn/game-catalog-backend/internal/observability"
	"github.com/tbourn/game-catalog-backend/internal/realtime"
	"github.com/tbourn/game-catalog-backend/internal/repo"
	"github.com/tbourn/game-catalog-backend/internal/session"
	"github.com/tbourn/game-catalog-backend/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	purgeInterval   = 10 * time.Minute
	shutdownTimeout = 15 * time.Second
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	sysutil.ConfigureLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := observability.SetupOTel(ctx, cfg.OTEL, observability.Build{
		Version:     version,
		Environment: cfg.AppEnv,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("open database")
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Warn().Err(err).Msg("gorm tracing disabled")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	store, storeCloser := openSessionStore(ctx, cfg, db)

	reg := realtime.NewRegistry()
	relay := openRelay(cfg, reg)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	hub := httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:       db,
		Sessions: store,
		Registry: reg,
		Relay:    relay,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	if dbs, ok := store.(*session.DBStore); ok {
		go purgeSessions(ctx, dbs)
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("env", cfg.AppEnv).
			Str("version", version).
			Str("sessions", cfg.Session.Backend).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := hub.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("chat hub shutdown")
	}
	if err := relay.Close(); err != nil {
		log.Error().Err(err).Msg("relay close")
	}
	if storeCloser != nil {
		if err := storeCloser.Close(); err != nil {
			log.Error().Err(err).Msg("session store close")
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if err := otelShutdown(sctx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
	log.Info().Msg("bye")
}

func openSessionStore(ctx context.Context, cfg config.Config, db *gorm.DB) (session.Store, io.Closer) {
	if cfg.Session.Backend != config.SessionBackendRedis {
		return session.NewDBStore(db), nil
	}
	rs, err := session.NewRedisStore(ctx, cfg.Session.RedisAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Session.RedisAddr).Msg("connect redis")
	}
	return rs, rs
}

// openRelay falls back to an in-process relay when NATS is not configured
// or unreachable at startup.
func openRelay(cfg config.Config, reg *realtime.Registry) realtime.Relay {
	if cfg.Chat.NATSURL == "" {
		return realtime.NewLocalRelay(reg)
	}
	nr, err := realtime.NewNATSRelay(cfg.Chat.NATSURL, sysutil.InstanceName(os.Getenv("INSTANCE_NAME")), reg)
	if err != nil {
		log.Error().Err(err).Msg("nats unavailable; chat is local to this instance")
		return realtime.NewLocalRelay(reg)
	}
	return nr
}

func purgeSessions(ctx context.Context, s *session.DBStore) {
	t := time.NewTicker(purgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := s.Purge(ctx, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("purge sessions")
				continue
			}
			if n > 0 {
				log.Debug().Int64("purged", n).Msg("expired sessions removed")
			}
		}
	}
}
