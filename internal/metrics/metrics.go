// Package metrics defines and registers the custom Prometheus metrics of the
// novedades service. It is the single source of truth for metric names,
// labels and help strings.
//
// Metrics register themselves with the default registry on package init via
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "novedades"

// ── Mutation metrics ──────────────────────────────────────────────────────────

// MutationsTotal counts write operations handled by the services.
// Labels:
//   - resource: "announcement", "entity", "entity_type" or "user"
//   - action:   "create", "update" or "delete"
//   - result:   "ok" or the error class ("validation", "not_found", "conflict", "error")
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of write operations, by resource, action and result.",
	},
	[]string{"resource", "action", "result"},
)

// IdempotencyTotal counts Idempotency-Key lookups on announcement creation.
// Label:
//   - result: "hit" (replayed) or "miss" (new announcement)
var IdempotencyTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotency_total",
		Help:      "Total number of idempotency key checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Broadcast metrics ─────────────────────────────────────────────────────────

// BroadcastEventsTotal counts events fanned out by the hub.
// Label:
//   - event: the event name (e.g. "announcement-added")
var BroadcastEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcast_events_total",
		Help:      "Total number of change events published to subscribers.",
	},
	[]string{"event"},
)

// BroadcastEvictionsTotal counts subscribers dropped because their buffer was full.
var BroadcastEvictionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcast_evictions_total",
		Help:      "Total number of subscribers evicted for falling behind.",
	},
)

// StreamSubscribers tracks the number of currently connected subscribers.
var StreamSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_subscribers",
		Help:      "Current number of subscribers attached to the broadcast hub.",
	},
)

// RelayMessagesTotal counts messages crossing the Redis relay.
// Label:
//   - direction: "out" (published) or "in" (delivered from another instance)
var RelayMessagesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "relay_messages_total",
		Help:      "Total number of change events relayed through Redis.",
	},
	[]string{"direction"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of events waiting in each audit worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// AuditErrorsTotal counts audit records that could not be written or queued.
// Label:
//   - reason: "queue_full" or "insert_failed"
var AuditErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_errors_total",
		Help:      "Total number of change events that were not recorded in the audit trail.",
	},
	[]string{"reason"},
)

// ── Credential metrics ────────────────────────────────────────────────────────

// PasswordHashDuration measures bcrypt work.
// Label:
//   - op: "hash" or "verify"
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of bcrypt hash and compare operations.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"op"},
)
