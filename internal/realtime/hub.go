package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/tbourn/game-catalog-backend/internal/config"
	"github.com/tbourn/game-catalog-backend/internal/domain"
)

// MessageStore persists accepted chat messages.
type MessageStore interface {
	SaveMessage(ctx context.Context, author, body string, at time.Time) (*domain.ChatMessage, error)
}

// Identifier resolves a session cookie value to an identity claim.
type Identifier interface {
	Identify(ctx context.Context, sessionID string) (Identity, bool)
}

// Options tunes connection limits and timers. Zero values get defaults.
type Options struct {
	MaxBodyRunes   int
	MaxFrameBytes  int64
	SendBuffer     int
	RateRPS        float64
	RateBurst      int
	PingInterval   time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	PersistTimeout time.Duration
	AllowedOrigins []string
	CookieName     string
}

func (o Options) withDefaults() Options {
	if o.MaxBodyRunes <= 0 {
		o.MaxBodyRunes = 2000
	}
	if o.MaxFrameBytes <= 0 {
		o.MaxFrameBytes = config.MinChatFrameBytes(o.MaxBodyRunes)
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 256
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 54 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PongWait <= o.PingInterval {
		o.PongWait = o.PingInterval + o.PingInterval/9
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.PersistTimeout <= 0 {
		o.PersistTimeout = 5 * time.Second
	}
	if o.CookieName == "" {
		o.CookieName = "sid"
	}
	return o
}

// Hub accepts connections and runs the validate, persist, broadcast
// pipeline for every inbound event.
type Hub struct {
	registry *Registry
	store    MessageStore
	relay    Relay
	ident    Identifier
	opts     Options
	upgrader websocket.Upgrader
	validate *validator.Validate
	now      func() time.Time

	// mu orders admissions against Shutdown so no client registers after
	// the shutdown snapshot and no wg.Add races wg.Wait.
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHub wires a Hub. ident may be nil, in which case every connection is
// anonymous.
func NewHub(reg *Registry, store MessageStore, relay Relay, ident Identifier, opts Options) *Hub {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		registry: reg,
		store:    store,
		relay:    relay,
		ident:    ident,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
		validate: validator.New(),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Registry exposes the connection set.
func (h *Hub) Registry() *Registry { return h.registry }

// ServeWS upgrades the request and runs the connection until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	if h.ctx.Err() != nil {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	c := &Client{
		id:   uuid.NewString(),
		conn: conn,
		addr: r.RemoteAddr,
		send: make(chan []byte, h.opts.SendBuffer),
	}
	if h.opts.RateRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(h.opts.RateRPS), max(h.opts.RateBurst, 1))
	}
	c.ident = h.handshake(r)
	c.log = log.With().
		Str("conn_id", c.id).
		Str("remote_addr", c.addr).
		Str("user_id", c.ident.UserID).
		Logger()

	if !h.admit(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(h.opts.WriteWait))
		_ = conn.Close()
		return
	}
	chatConnectionsActive.Inc()
	c.log.Info().Int("clients", h.registry.Len()).Msg("client connected")

	go func() { defer h.wg.Done(); c.writeLoop(h) }()
	go func() { defer h.wg.Done(); c.readLoop(h) }()
}

// admit registers c and reserves its two loop goroutines, unless Shutdown
// has begun.
func (h *Hub) admit(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ctx.Err() != nil {
		return false
	}
	h.registry.Add(c)
	h.wg.Add(2)
	return true
}

func (h *Hub) handshake(r *http.Request) Identity {
	if h.ident == nil {
		return Identity{}
	}
	ck, err := r.Cookie(h.opts.CookieName)
	if err != nil || ck.Value == "" {
		return Identity{}
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.PersistTimeout)
	defer cancel()
	if id, ok := h.ident.Identify(ctx, ck.Value); ok {
		return id
	}
	return Identity{}
}

func (h *Hub) unregister(c *Client) {
	if h.registry.Remove(c) {
		chatConnectionsActive.Dec()
		c.log.Info().Int("clients", h.registry.Len()).Msg("client disconnected")
	}
	c.close()
}

func (h *Hub) drop(c *Client, reason string) {
	chatEventsTotal.WithLabelValues(outcomeDropped).Inc()
	c.log.Warn().Str("reason", reason).Msg("chat event dropped")
}

// handle runs one inbound frame through the pipeline. It returns only after
// the event is broadcast or discarded, which keeps per-connection order.
func (h *Hub) handle(c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.drop(c, "malformed_json")
		return
	}
	if env.Event != EventSendMessage {
		h.drop(c, "unknown_event")
		return
	}
	var in SendMessage
	if err := json.Unmarshal(env.Data, &in); err != nil {
		h.drop(c, "malformed_payload")
		return
	}
	in.Author = strings.TrimSpace(in.Author)
	in.Message = strings.TrimSpace(in.Message)
	in.Time = strings.TrimSpace(in.Time)
	if err := h.validate.Struct(in); err != nil {
		h.drop(c, "invalid_fields")
		return
	}
	if !utf8.ValidString(in.Author) || !utf8.ValidString(in.Message) ||
		utf8.RuneCountInString(in.Message) > h.opts.MaxBodyRunes {
		h.drop(c, "invalid_body")
		return
	}

	at := h.now().UTC()
	ctx, cancel := context.WithTimeout(h.ctx, h.opts.PersistTimeout)
	defer cancel()

	start := time.Now()
	_, err := h.store.SaveMessage(ctx, in.Author, in.Message, at)
	chatPersistSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		chatEventsTotal.WithLabelValues(outcomePersistFailed).Inc()
		c.log.Error().Err(err).Msg("persist chat message failed")
		return
	}

	payload, err := encodeReceive(ReceiveMessage{
		Author:  in.Author,
		Message: in.Message,
		Time:    displayTime(in.Time, at),
	})
	if err != nil {
		chatEventsTotal.WithLabelValues(outcomeRelayFailed).Inc()
		c.log.Error().Err(err).Msg("encode chat message failed")
		return
	}
	if err := h.relay.Publish(ctx, payload); err != nil {
		chatEventsTotal.WithLabelValues(outcomeRelayFailed).Inc()
		c.log.Error().Err(err).Msg("relay chat message failed")
		return
	}
	chatEventsTotal.WithLabelValues(outcomeBroadcast).Inc()
}

// Shutdown closes every connection and waits for their goroutines, or for
// ctx to end.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.cancel()
	h.mu.Unlock()
	for _, c := range h.registry.Snapshot() {
		h.unregister(c)
	}
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
