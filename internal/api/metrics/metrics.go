// Package metrics defines and registers the custom Prometheus metrics of the
// course portal. It is the single source of truth for metric names, labels
// and help strings.
//
// All metrics are registered with the default registry on package load via
// promauto, so importing the package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "courses"

// ── Course metrics ────────────────────────────────────────────────────────────

// CourseOperationsTotal counts course use cases by outcome.
// Labels:
//   - operation: "list", "create", "update", "delete", "search"
//   - result: "ok", "invalid", "unavailable", "forbidden", "error", "replayed"
var CourseOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of course operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// CourseRowsAffected records how many rows each update/delete touched.
// Zero-row mutations are legal and show up in the first bucket.
var CourseRowsAffected = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rows_affected",
		Help:      "Rows affected by course update and delete statements.",
		Buckets:   []float64{0, 1, 2, 5},
	},
	[]string{"operation"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Labels:
//   - mode: "credentials" or "assertion"
//   - result: "ok", "rejected", "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by mode and result.",
	},
	[]string{"mode", "result"},
)

// GuardDenialsTotal counts requests stopped by an authorization guard.
// Label:
//   - guard: "authenticated" or "role"
var GuardDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_denials_total",
		Help:      "Total number of requests short-circuited by a guard.",
	},
	[]string{"guard"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events by fate.
// Label:
//   - result: "stored", "failed", "dropped"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of course audit events, by result.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks events waiting in each audit worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each worker channel.",
	},
	[]string{"worker_id"},
)
