package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/game-catalog-backend/internal/domain"
)

func TestSessionLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	s := &domain.Session{
		ID: "sid-1", UserID: "u1", Username: "alice",
		CreatedAt: now, LastActivity: now, ExpiresAt: now.Add(time.Minute),
	}
	if err := CreateSession(ctx, db, s); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := GetSession(ctx, db, "sid-1", now)
	if err != nil || got.Username != "alice" {
		t.Fatalf("GetSession = %+v, %v", got, err)
	}

	later := now.Add(30 * time.Second)
	if err := TouchSession(ctx, db, "sid-1", later, later.Add(time.Minute)); err != nil {
		t.Fatalf("TouchSession: %v", err)
	}
	// Still alive past the original expiry.
	if _, err := GetSession(ctx, db, "sid-1", now.Add(80*time.Second)); err != nil {
		t.Fatalf("expected slid expiry, got %v", err)
	}
	if _, err := GetSession(ctx, db, "sid-1", now.Add(5*time.Minute)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired session to be ErrNotFound, got %v", err)
	}

	if err := DeleteSession(ctx, db, "sid-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := GetSession(ctx, db, "sid-1", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := TouchSession(ctx, db, "sid-1", now, now.Add(time.Minute)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("touch missing: want ErrNotFound, got %v", err)
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i, exp := range []time.Time{now.Add(-time.Minute), now.Add(-time.Second), now.Add(time.Hour)} {
		s := &domain.Session{
			ID: string(rune('a' + i)), UserID: "u", Username: "n",
			CreatedAt: now, LastActivity: now, ExpiresAt: exp,
		}
		if err := CreateSession(ctx, db, s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	n, err := PurgeExpiredSessions(ctx, db, now)
	if err != nil || n != 2 {
		t.Fatalf("PurgeExpiredSessions = %d, %v; want 2", n, err)
	}
}
