package repo

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestChatMessages_CreateCountPage(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, body := range []string{"one", "two", "three"} {
		if _, err := CreateChatMessage(ctx, db, "alice", body, base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("CreateChatMessage: %v", err)
		}
	}

	n, err := CountChatMessages(ctx, db)
	if err != nil || n != 3 {
		t.Fatalf("CountChatMessages = %d, %v", n, err)
	}

	page, err := ListChatMessagesPage(ctx, db, 1, 5)
	if err != nil {
		t.Fatalf("ListChatMessagesPage: %v", err)
	}
	if len(page) != 2 || page[0].Body != "two" || page[1].Body != "three" {
		t.Fatalf("unexpected page: %+v", page)
	}
	if !page[0].CreatedAt.Equal(base.Add(time.Second)) {
		t.Fatalf("created_at not preserved: %v", page[0].CreatedAt)
	}
}

func TestCountChatMessages_MissingTable(t *testing.T) {
	db := newTestDB(t)
	if err := db.Exec("DROP TABLE chat_messages").Error; err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := CountChatMessages(context.Background(), db); err == nil {
		t.Fatalf("expected error when table is missing")
	}
}

func TestCreateChatMessage_LongAuthor(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := strings.Repeat("a", 300)
	if _, err := CreateChatMessage(ctx, db, author, "hi", time.Now().UTC()); err != nil {
		t.Fatalf("CreateChatMessage: %v", err)
	}
	page, err := ListChatMessagesPage(ctx, db, 0, 1)
	if err != nil || len(page) != 1 || page[0].Author != author {
		t.Fatalf("author not stored intact: %+v, %v", page, err)
	}
}
