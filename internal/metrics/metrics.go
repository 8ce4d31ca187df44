// Package metrics declares the engine's Prometheus collectors. They are
// registered with the default registry and served by the HTTP adapter on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var AuctionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ads",
	Name:      "auctions_total",
	Help:      "Auctions run, by outcome and empty-slot reason.",
}, []string{"outcome", "reason"})

var AuctionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "ads",
	Name:      "auction_duration_seconds",
	Help:      "Wall time of selectWinner.",
	Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
})

var FrequencyCapped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ads",
	Name:      "frequency_capped_total",
	Help:      "Ad groups skipped because the viewer hit the frequency cap.",
})

var LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ads",
	Name:      "ledger_operations_total",
	Help:      "Wallet ledger operations, by operation and result.",
}, []string{"operation", "result"})

var LifecycleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ads",
	Name:      "lifecycle_transitions_total",
	Help:      "Applied campaign and ad status transitions.",
}, []string{"entity", "to"})

var EventsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ads",
	Name:      "events_recorded_total",
	Help:      "Ad events stored, by type and whether they were billed.",
}, []string{"type", "billed"})

var OrphansRepaired = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ads",
	Name:      "orphaned_campaigns_repaired_total",
	Help:      "Campaigns force-activated by the reconciliation sweep.",
})

var NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ads",
	Name:      "notification_failures_total",
	Help:      "Notifications the sink refused. The triggering change is kept.",
})
