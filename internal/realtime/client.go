package realtime

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Identity is the optional claim captured at handshake.
type Identity struct {
	UserID   string
	Username string
}

// Client is one WebSocket connection.
type Client struct {
	id      string
	conn    *websocket.Conn
	addr    string
	ident   Identity
	limiter *rate.Limiter
	log     zerolog.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// ID returns the connection id used in logs.
func (c *Client) ID() string { return c.id }

// Identity returns the handshake claim; the zero value means anonymous.
func (c *Client) Identity() Identity { return c.ident }

// enqueue queues payload without blocking and reports whether it fit.
func (c *Client) enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// close ends the send queue; the write pump then closes the socket.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) readLoop(h *Hub) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(h.opts.MaxFrameBytes * hardFrameFactor)
	if err := c.conn.SetReadDeadline(time.Now().Add(h.opts.PongWait)); err != nil {
		c.log.Debug().Err(err).Msg("set read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.opts.PongWait))
	})

	for {
		raw, fits, err := c.readFrame(h.opts.MaxFrameBytes)
		if err != nil {
			c.logReadError(err)
			return
		}
		if c.limiter != nil && !c.limiter.Allow() {
			h.drop(c, "rate_limited")
			continue
		}
		if !fits {
			h.drop(c, "frame_too_large")
			continue
		}
		h.handle(c, raw)
	}
}

// hardFrameFactor scales the frame budget into the transport read limit.
// Frames between the two are discarded without closing the connection.
const hardFrameFactor = 4

// readFrame reads the next message. A message longer than limit is drained
// and reported with fits == false.
func (c *Client) readFrame(limit int64) (raw []byte, fits bool, err error) {
	_, r, err := c.conn.NextReader()
	if err != nil {
		return nil, false, err
	}
	raw, err = io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(raw)) <= limit {
		return raw, true, nil
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, false, err
	}
	return nil, false, nil
}

func (c *Client) writeLoop(h *Hub) {
	ticker := time.NewTicker(h.opts.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				if !isExpectedCloseError(err) {
					c.log.Warn().Err(err).Msg("write failed")
				}
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.log.Warn().Msg("frame exceeded read limit")
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
		c.log.Debug().Msg("client disconnected")
	case errors.Is(err, io.EOF) || isExpectedCloseError(err):
		c.log.Debug().Err(err).Msg("connection closed")
	default:
		c.log.Warn().Err(err).Msg("read error")
	}
}

func isExpectedCloseError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, websocket.ErrCloseSent) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer")
}
