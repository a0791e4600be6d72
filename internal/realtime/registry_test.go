package realtime

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newQueuedClient(buf int) *Client {
	return &Client{id: "c", send: make(chan []byte, buf), log: zerolog.Nop()}
}

func TestRegistry_AddRemoveSnapshot(t *testing.T) {
	r := NewRegistry()
	a, b := newQueuedClient(1), newQueuedClient(1)
	r.Add(a)
	r.Add(b)
	r.Add(a)
	if r.Len() != 2 || len(r.Snapshot()) != 2 {
		t.Fatalf("Len = %d; want 2", r.Len())
	}
	if !r.Remove(a) || r.Remove(a) {
		t.Fatalf("Remove should succeed once")
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d; want 1", r.Len())
	}
}

func TestRegistry_BroadcastEvictsFullQueue(t *testing.T) {
	r := NewRegistry()
	fast, slow := newQueuedClient(4), newQueuedClient(1)
	r.Add(fast)
	r.Add(slow)

	if got := r.Broadcast([]byte("1")); got != 2 {
		t.Fatalf("first broadcast delivered %d; want 2", got)
	}
	if got := r.Broadcast([]byte("2")); got != 1 {
		t.Fatalf("second broadcast delivered %d; want 1", got)
	}
	if r.Len() != 1 || r.Snapshot()[0] != fast {
		t.Fatalf("slow client should have been evicted")
	}
	if slow.enqueue([]byte("x")) {
		t.Fatalf("evicted client must not accept more frames")
	}
	if len(fast.send) != 2 {
		t.Fatalf("fast client queued %d; want 2", len(fast.send))
	}
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	c := newQueuedClient(1)
	c.close()
	c.close()
	if _, ok := <-c.send; ok {
		t.Fatalf("send channel should be closed")
	}
}

func TestDisplayTime_UTCFallback(t *testing.T) {
	at := time.Date(2024, 1, 1, 9, 5, 0, 0, time.FixedZone("X", 3600))
	if got := displayTime("", at); got != "08:05" {
		t.Fatalf("displayTime = %q; want 08:05 (UTC)", got)
	}
	if got := displayTime("11:11", at); got != "11:11" {
		t.Fatalf("displayTime = %q; want client value", got)
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://Example.com", " http://localhost:3000 "})
	cases := map[string]bool{
		"":                      true,
		"https://example.com":   true,
		"HTTPS://EXAMPLE.COM":   true,
		"http://localhost:3000": true,
		"https://evil.com":      false,
		"http://localhost:3001": false,
		"not a url":             false,
	}
	for origin, want := range cases {
		r := httptest.NewRequest("GET", "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		if got := check(r); got != want {
			t.Fatalf("origin %q allowed=%v; want %v", origin, got, want)
		}
	}

	open := originChecker(nil)
	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Origin", "https://anything.test")
	if !open(r) {
		t.Fatalf("empty allow-list should allow all")
	}
	if !originChecker([]string{"*"})(r) {
		t.Fatalf("wildcard should allow all")
	}
}
