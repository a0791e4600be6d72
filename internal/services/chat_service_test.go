package services

import (
	"context"
	"testing"
	"time"
)

func TestChatService_SaveAndList(t *testing.T) {
	svc := NewChatService(newTestDB(t))
	ctx := context.Background()

	items, total, err := svc.ListPage(ctx, 0, 0)
	if err != nil || total != 0 || len(items) != 0 {
		t.Fatalf("empty: %v %d %v", items, total, err)
	}

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := svc.SaveMessage(ctx, "alice", "hi", base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("SaveMessage: %v", err)
		}
	}

	items, total, err = svc.ListPage(ctx, 2, 2)
	if err != nil || total != 5 || len(items) != 2 {
		t.Fatalf("page 2: len=%d total=%d err=%v", len(items), total, err)
	}
	if !items[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("unexpected order: %v", items[0].CreatedAt)
	}
}

func TestChatService_Stats(t *testing.T) {
	svc := NewChatService(newTestDB(t))
	ctx := context.Background()

	n, latest, err := svc.Stats(ctx)
	if err != nil || n != 0 || latest != nil {
		t.Fatalf("empty stats: %d %v %v", n, latest, err)
	}

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if _, err := svc.SaveMessage(ctx, "bob", "yo", at); err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}
	n, latest, err = svc.Stats(ctx)
	if err != nil || n != 1 || latest == nil || !latest.Equal(at) {
		t.Fatalf("stats: %d %v %v", n, latest, err)
	}
}
