// Package metrics defines and registers all custom Prometheus metrics for
// the loan-management API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init via promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "loans"

// ── Loan lifecycle metrics ───────────────────────────────────────────────────

// LoansCreatedTotal counts loan applications accepted into the pending state.
var LoansCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "created_total",
		Help:      "Total number of loan applications created.",
	},
)

// LoanDecisionsTotal counts admin decisions.
// Label:
//   - outcome: "approved" or "rejected"
var LoanDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decisions_total",
		Help:      "Total number of admin loan decisions, by outcome.",
	},
	[]string{"outcome"},
)

// ── Payment metrics ──────────────────────────────────────────────────────────

// PaymentsTotal counts payment attempts.
// Label:
//   - result: "settled", "declined", "not_found", or "error"
var PaymentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_total",
		Help:      "Total number of payment attempts, by result.",
	},
	[]string{"result"},
)

// InstallmentsSettledTotal counts installments flipped to paid.
var InstallmentsSettledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "installments_settled_total",
		Help:      "Total number of installments marked as paid.",
	},
)

// PaymentProcessingDuration measures how long a payment takes end-to-end,
// including the loan-closure re-scan.
// Label:
//   - result: "settled" or "declined"
var PaymentProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "payment_processing_duration_seconds",
		Help:      "Duration of payment processing from lookup to loan-closure check.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"result"},
)

// ── Audit trail metrics ──────────────────────────────────────────────────────

// AuditQueueDepth tracks the current number of events waiting in each audit
// worker channel.
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

// AuditEventsDroppedTotal counts audit events discarded because a worker
// queue was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped due to a full worker queue.",
	},
)
