package repo

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestIdempotency_CreateGetDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rec, err := CreateIdempotency(ctx, db, "games:u1", "k1", "game-1", http.StatusCreated, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ExpiresAt.Sub(rec.CreatedAt) != time.Hour {
		t.Fatalf("unexpected ttl window: %v", rec.ExpiresAt.Sub(rec.CreatedAt))
	}

	got, err := GetIdempotency(ctx, db, "games:u1", "k1", time.Now())
	if err != nil || got.ResourceID != "game-1" || got.Status != http.StatusCreated {
		t.Fatalf("GetIdempotency = %+v, %v", got, err)
	}

	if _, err := CreateIdempotency(ctx, db, "games:u1", "k1", "game-2", http.StatusCreated, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}
	// Same key under another scope is independent.
	if _, err := CreateIdempotency(ctx, db, "games:u2", "k1", "game-3", http.StatusCreated, time.Hour); err != nil {
		t.Fatalf("other scope: %v", err)
	}
}

func TestIdempotency_ExpiredAndBlank(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "s", "k", "r", http.StatusCreated, time.Minute); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := GetIdempotency(ctx, db, "s", "k", time.Now().Add(2*time.Minute)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired: want ErrNotFound, got %v", err)
	}
	if _, err := GetIdempotency(ctx, db, "", "k", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("blank scope: want ErrNotFound, got %v", err)
	}
	if _, err := GetIdempotency(ctx, db, "s", " ", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("blank key: want ErrNotFound, got %v", err)
	}
}
