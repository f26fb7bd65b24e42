package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	purchases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "altair_purchases_total",
			Help: "Purchase commits by outcome",
		},
		[]string{"outcome"},
	)

	purchaseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "altair_purchase_commit_seconds",
			Help:    "Time spent committing a purchase",
			Buckets: prometheus.DefBuckets,
		},
	)

	cancellations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "altair_cancellations_total",
			Help: "Cancellations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	cascadeAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "altair_cascade_attempts_total",
			Help: "Event cancellation batch attempts, retries included",
		},
	)

	seatsReconciled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "altair_seats_reconciled_total",
			Help: "Orphaned seats released by the reconciliation sweep",
		},
	)

	eventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "altair_events_published_total",
			Help: "Events published",
		},
	)

	seatCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "altair_seat_cache_lookups_total",
			Help: "Seat grid cache lookups by result",
		},
		[]string{"result"},
	)
)

// Outcome labels shared by the counters.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
	OutcomeLost   = "lost_race"
)

func RecordPurchase(outcome string, started time.Time) {
	purchases.WithLabelValues(outcome).Inc()
	purchaseDuration.Observe(time.Since(started).Seconds())
}

func RecordCancellation(kind, outcome string) {
	cancellations.WithLabelValues(kind, outcome).Inc()
}

func RecordCascadeAttempt() {
	cascadeAttempts.Inc()
}

func RecordReconciled(n int) {
	seatsReconciled.Add(float64(n))
}

func RecordPublish() {
	eventsPublished.Inc()
}

func RecordCacheLookup(hit bool) {
	if hit {
		seatCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	seatCacheLookups.WithLabelValues("miss").Inc()
}
