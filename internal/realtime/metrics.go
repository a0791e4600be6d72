package realtime

import "github.com/prometheus/client_golang/prometheus"

var (
	chatConnectionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connections_active",
		Help: "Currently registered chat WebSocket connections.",
	})
	chatEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_events_total",
		Help: "Inbound chat events by outcome.",
	}, []string{"outcome"})
	chatBroadcastDeliveries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_broadcast_deliveries_total",
		Help: "Frames queued to connections by broadcasts.",
	})
	chatPersistSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chat_persist_seconds",
		Help:    "Latency of persisting chat messages.",
		Buckets: prometheus.DefBuckets,
	})
)

// Outcomes recorded in chat_events_total.
const (
	outcomeBroadcast     = "broadcast"
	outcomeDropped       = "dropped"
	outcomePersistFailed = "persist_failed"
	outcomeRelayFailed   = "relay_failed"
)

func init() {
	prometheus.MustRegister(chatConnectionsActive, chatEventsTotal, chatBroadcastDeliveries, chatPersistSeconds)
}
