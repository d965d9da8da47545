package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CoreMetrics records ledger and finalization activity.
type CoreMetrics struct {
	ledgerDuration *prometheus.HistogramVec
	finalizations  *prometheus.CounterVec
	shortfalls     *prometheus.CounterVec
	entryItems     *prometheus.CounterVec
}

// FinalizeOutcome labels for the finalization counter.
const (
	FinalizeOutcomeApplied  = "applied"
	FinalizeOutcomeNoop     = "noop"
	FinalizeOutcomeRejected = "rejected"
)

// NewCoreMetrics registers the core metrics on the provided registerer.
func NewCoreMetrics(reg prometheus.Registerer) *CoreMetrics {
	if reg == nil {
		return &CoreMetrics{}
	}
	ledgerDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_mutation_duration_seconds",
		Help:    "Duration of atomic ledger mutations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "kind"})
	finalizations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_finalizations_total",
		Help: "Order finalization attempts by outcome.",
	}, []string{"outcome"})
	shortfalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_shortfalls_total",
		Help: "Ledger deductions that clamped at zero stock.",
	}, []string{"kind"})
	entryItems := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_entry_items_total",
		Help: "Inventory entry line items recorded, by entry type.",
	}, []string{"entry_type"})
	reg.MustRegister(ledgerDuration, finalizations, shortfalls, entryItems)
	return &CoreMetrics{
		ledgerDuration: ledgerDuration,
		finalizations:  finalizations,
		shortfalls:     shortfalls,
		entryItems:     entryItems,
	}
}

// ObserveLedgerMutation records the duration of one atomic ledger update.
func (c *CoreMetrics) ObserveLedgerMutation(op, kind string, duration time.Duration) {
	if c == nil || c.ledgerDuration == nil {
		return
	}
	c.ledgerDuration.WithLabelValues(normalizeLabel(op), normalizeLabel(kind)).Observe(duration.Seconds())
}

// IncFinalization counts a finalization attempt by outcome.
func (c *CoreMetrics) IncFinalization(outcome string) {
	if c == nil || c.finalizations == nil {
		return
	}
	c.finalizations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncShortfall counts a clamped deduction for the given material kind.
func (c *CoreMetrics) IncShortfall(kind string) {
	if c == nil || c.shortfalls == nil {
		return
	}
	c.shortfalls.WithLabelValues(normalizeLabel(kind)).Inc()
}

// AddEntryItems counts recorded inventory entry lines.
func (c *CoreMetrics) AddEntryItems(entryType string, count int) {
	if c == nil || c.entryItems == nil {
		return
	}
	c.entryItems.WithLabelValues(normalizeLabel(entryType)).Add(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
