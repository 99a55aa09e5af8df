// Package metrics exposes hub activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements hub.Observer on top of a private Prometheus
// registry. Room names are not used as labels to keep cardinality
// bounded.
type Metrics struct {
	registry *prometheus.Registry

	rooms       prometheus.Gauge
	created     prometheus.Counter
	evicted     prometheus.Counter
	messages    prometheus.Counter
	connections prometheus.Counter
	pruned      prometheus.Counter
	broadcast   prometheus.Histogram
}

// New registers all collectors, plus the Go runtime and process
// collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "meowww", Name: "rooms",
			Help: "Number of live rooms.",
		}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meowww", Name: "rooms_created_total",
			Help: "Rooms published into the registry.",
		}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meowww", Name: "rooms_evicted_total",
			Help: "Rooms removed for holding no messages and no connections.",
		}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meowww", Name: "messages_total",
			Help: "Messages accepted into a room.",
		}),
		connections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meowww", Name: "connections_total",
			Help: "Notification connections registered.",
		}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meowww", Name: "slots_pruned_total",
			Help: "Notification slots dropped after a failed send or resolve.",
		}),
		broadcast: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "meowww", Name: "broadcast_seconds",
			Help:    "Time spent delivering one payload to every slot of a room.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
	m.registry.MustRegister(
		m.rooms, m.created, m.evicted, m.messages, m.connections, m.pruned, m.broadcast,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RoomCreated counts a published room.
func (m *Metrics) RoomCreated(string) {
	m.created.Inc()
	m.rooms.Inc()
}

// RoomEvicted counts an evicted room.
func (m *Metrics) RoomEvicted(string) {
	m.evicted.Inc()
	m.rooms.Dec()
}

// MessageAccepted counts an accepted message.
func (m *Metrics) MessageAccepted(string) { m.messages.Inc() }

// ConnectionAdded counts a registered notification slot.
func (m *Metrics) ConnectionAdded(string) { m.connections.Inc() }

// SlotsPruned counts slots dropped by a broadcast.
func (m *Metrics) SlotsPruned(_ string, n int) { m.pruned.Add(float64(n)) }

// Broadcast records how long a broadcast took.
func (m *Metrics) Broadcast(_ string, _ int, elapsed time.Duration) {
	m.broadcast.Observe(elapsed.Seconds())
}
