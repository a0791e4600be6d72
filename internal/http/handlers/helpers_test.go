package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/game-catalog-backend/internal/auth"
	"github.com/tbourn/game-catalog-backend/internal/http/middleware"
	"github.com/tbourn/game-catalog-backend/internal/repo"
	"github.com/tbourn/game-catalog-backend/internal/services"
	"github.com/tbourn/game-catalog-backend/internal/session"
)

// ---------- test plumbing ----------

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type testAPI struct {
	r      *gin.Engine
	db     *gorm.DB
	issuer *auth.Issuer
}

// newTestAPI mounts every REST endpoint on real services over a fresh DB,
// mirroring the production middleware that handlers rely on.
func newTestAPI(t *testing.T, secureCookies bool) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	issuer := auth.NewIssuer("test-secret", time.Hour, "test")
	h := New(Services{
		Accounts: services.NewAccountService(db, issuer),
		Catalog:  services.NewCatalogService(db),
		Sessions: services.NewSessionService(session.NewDBStore(db), 30*time.Minute),
		History:  services.NewChatService(db),
	}, Options{
		DB:            db,
		CookieName:    "sid",
		SessionTTL:    30 * time.Minute,
		SecureCookies: secureCookies,
	})

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Authenticate(issuer))
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{},
		func(ctx context.Context, scope, key string, now time.Time) (bool, error) {
			_, err := repo.GetIdempotency(ctx, db, scope, key, now)
			return err == nil, nil
		},
	))
	api := r.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/auth/me", middleware.RequireAuth(), h.Me)
	api.GET("/games", h.ListGames)
	api.POST("/games", h.CreateGame)
	api.POST("/create-session", h.CreateSession)
	api.GET("/session-status", h.SessionStatus)
	api.POST("/heartbeat", h.Heartbeat)
	api.POST("/logout", h.Logout)
	api.GET("/messages", h.ListMessages)

	return &testAPI{r: r, db: db, issuer: issuer}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, hdr map[string]string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return &buf
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}
