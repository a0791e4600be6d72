package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// SubjectBroadcast is the NATS subject shared by every API instance.
const SubjectBroadcast = "chat.broadcast"

// Relay delivers an already-persisted envelope to connected clients.
type Relay interface {
	Publish(ctx context.Context, payload []byte) error
	Close() error
}

// LocalRelay delivers straight into a single process's Registry.
type LocalRelay struct {
	reg *Registry
}

// NewLocalRelay returns a Relay for single-instance deployments.
func NewLocalRelay(reg *Registry) *LocalRelay { return &LocalRelay{reg: reg} }

func (l *LocalRelay) Publish(_ context.Context, payload []byte) error {
	l.reg.Broadcast(payload)
	return nil
}

func (l *LocalRelay) Close() error { return nil }

// NATSRelay publishes envelopes to SubjectBroadcast and delivers everything
// received on it, including its own publications, into the local Registry.
type NATSRelay struct {
	conn *nats.Conn
	sub  *nats.Subscription
}

// NewNATSRelay connects to url and subscribes on behalf of reg.
func NewNATSRelay(url, name string, reg *Registry) (*NATSRelay, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	sub, err := nc.Subscribe(SubjectBroadcast, func(msg *nats.Msg) {
		reg.Broadcast(msg.Data)
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("nats subscribe %s: %w", SubjectBroadcast, err)
	}
	log.Info().Str("url", nc.ConnectedUrl()).Str("subject", SubjectBroadcast).Msg("nats relay ready")
	return &NATSRelay{conn: nc, sub: sub}, nil
}

func (n *NATSRelay) Publish(_ context.Context, payload []byte) error {
	return n.conn.Publish(SubjectBroadcast, payload)
}

// Close drains the subscription and the connection.
func (n *NATSRelay) Close() error {
	_ = n.sub.Unsubscribe()
	return n.conn.Drain()
}
