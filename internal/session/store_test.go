package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/game-catalog-backend/internal/domain"
	"github.com/tbourn/game-catalog-backend/internal/repo"
)

func newDBStore(t *testing.T) *DBStore {
	t.Helper()
	db, err := repo.OpenSQLite(fmt.Sprintf("file:session_%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewDBStore(db)
}

// exerciseStore runs the contract every backend must satisfy.
func exerciseStore(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	id := uuid.NewString()

	sess := &domain.Session{
		ID: id, UserID: "u1", Username: "alice",
		CreatedAt: now, LastActivity: now, ExpiresAt: now.Add(time.Minute),
	}
	if err := st.Create(ctx, sess); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := st.Get(ctx, id, now)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != "u1" || got.Username != "alice" {
		t.Fatalf("unexpected session: %+v", got)
	}

	later := now.Add(20 * time.Second)
	if err := st.Touch(ctx, id, later, later.Add(time.Minute)); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	got, err = st.Get(ctx, id, later)
	if err != nil || !got.LastActivity.Equal(later) {
		t.Fatalf("after touch: %+v, %v", got, err)
	}

	if _, err := st.Get(ctx, id, later.Add(2*time.Minute)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired: want ErrNotFound, got %v", err)
	}
	if _, err := st.Get(ctx, "missing", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing: want ErrNotFound, got %v", err)
	}
	if err := st.Touch(ctx, "missing", now, now.Add(time.Minute)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("touch missing: want ErrNotFound, got %v", err)
	}

	if err := st.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Get(ctx, id, later); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted: want ErrNotFound, got %v", err)
	}
}

func TestDBStore(t *testing.T) {
	exerciseStore(t, newDBStore(t))
}

func TestDBStore_Purge(t *testing.T) {
	st := newDBStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	_ = st.Create(ctx, &domain.Session{ID: "old", UserID: "u", Username: "n", CreatedAt: now, LastActivity: now, ExpiresAt: now.Add(-time.Second)})
	_ = st.Create(ctx, &domain.Session{ID: "new", UserID: "u", Username: "n", CreatedAt: now, LastActivity: now, ExpiresAt: now.Add(time.Hour)})

	n, err := st.Purge(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("Purge = %d, %v; want 1", n, err)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	st, err := NewRedisStore(context.Background(), addr)
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer st.Close()
	exerciseStore(t, st)
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewRedisStore(ctx, "127.0.0.1:1"); err == nil {
		t.Fatalf("expected connection error")
	}
}
