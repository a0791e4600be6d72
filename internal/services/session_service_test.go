package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/game-catalog-backend/internal/session"
)

func TestSessionService_Lifecycle(t *testing.T) {
	svc := NewSessionService(session.NewDBStore(newTestDB(t)), time.Minute)
	base := time.Now().UTC()
	svc.now = func() time.Time { return base }
	ctx := context.Background()

	if _, err := svc.Create(ctx, "", "alice"); !errors.Is(err, ErrSessionFieldsRequired) {
		t.Fatalf("missing userId: %v", err)
	}
	if _, err := svc.Create(ctx, "u1", " "); !errors.Is(err, ErrSessionFieldsRequired) {
		t.Fatalf("missing username: %v", err)
	}

	sess, err := svc.Create(ctx, "u1", "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ident, err := svc.Status(ctx, sess.ID)
	if err != nil || ident.UserID != "u1" || ident.Username != "alice" {
		t.Fatalf("Status: %+v, %v", ident, err)
	}

	svc.now = func() time.Time { return base.Add(50 * time.Second) }
	at, err := svc.Heartbeat(ctx, sess.ID)
	if err != nil || !at.Equal(base.Add(50*time.Second)) {
		t.Fatalf("Heartbeat: %v, %v", at, err)
	}

	// Past the original expiry but within the slid window.
	svc.now = func() time.Time { return base.Add(90 * time.Second) }
	if _, ok := svc.Identify(ctx, sess.ID); !ok {
		t.Fatalf("expected session alive after heartbeat")
	}

	svc.now = func() time.Time { return base.Add(5 * time.Minute) }
	if _, err := svc.Status(ctx, sess.ID); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expired: %v", err)
	}
	if _, err := svc.Heartbeat(ctx, sess.ID); !errors.Is(err, ErrNoSession) {
		t.Fatalf("heartbeat expired: %v", err)
	}
}

func TestSessionService_LogoutAndBlank(t *testing.T) {
	svc := NewSessionService(session.NewDBStore(newTestDB(t)), 0)
	if svc.TTL != DefaultSessionTTL {
		t.Fatalf("TTL = %v; want default", svc.TTL)
	}
	ctx := context.Background()

	if _, err := svc.Status(ctx, ""); !errors.Is(err, ErrNoSession) {
		t.Fatalf("blank status: %v", err)
	}
	if _, ok := svc.Identify(ctx, ""); ok {
		t.Fatalf("blank id must not identify")
	}

	sess, _ := svc.Create(ctx, "u1", "alice")
	if err := svc.Logout(ctx, sess.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := svc.Logout(ctx, sess.ID); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	if _, err := svc.Status(ctx, sess.ID); !errors.Is(err, ErrNoSession) {
		t.Fatalf("after logout: %v", err)
	}
}
