package dispatcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "energytrading"

// ── Event metrics ─────────────────────────────────────────────────────────────

// eventsReceivedTotal counts committed chaincode events taken from the source.
// Label:
//   - event: chaincode event name (e.g. "TradeCompleted")
var eventsReceivedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dispatcher",
		Name:      "events_received_total",
		Help:      "Total number of committed chaincode events received.",
	},
	[]string{"event"},
)

// deliveriesTotal counts payloads written to a subscriber connection.
var deliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dispatcher",
		Name:      "deliveries_total",
		Help:      "Total number of event payloads sent to subscriber connections.",
	},
	[]string{"event"},
)

// deliveryFailuresTotal counts payloads that could not be queued for a
// connection, because its queue was full or it had closed. Failures never stop
// the fan-out to other connections.
var deliveryFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dispatcher",
		Name:      "delivery_failures_total",
		Help:      "Total number of event payloads that could not be sent.",
	},
	[]string{"event"},
)

// writeFailuresTotal counts socket writes that failed and closed their connection.
var writeFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dispatcher",
		Name:      "write_failures_total",
		Help:      "Total number of WebSocket writes that failed.",
	},
)

// payloadErrorsTotal counts events whose payload has no readable targetAudience.
var payloadErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dispatcher",
		Name:      "payload_errors_total",
		Help:      "Total number of events dropped because the payload could not be decoded.",
	},
)

// ── Connection metrics ────────────────────────────────────────────────────────

var connectionsGauge = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "dispatcher",
		Name:      "connections",
		Help:      "Current number of open WebSocket connections.",
	},
)

var subscribersGauge = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "dispatcher",
		Name:      "subscribers",
		Help:      "Current number of participants with at least one subscribed connection.",
	},
)
