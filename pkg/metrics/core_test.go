package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewCoreMetricsNilRegisterer(t *testing.T) {
	m := NewCoreMetrics(nil)
	// all recorders must be safe no-ops
	m.ObserveLedgerMutation("decrement", "stones", time.Second)
	m.IncFinalization(FinalizeOutcomeApplied)
	m.IncShortfall("paper")
	m.AddEntryItems("purchase", 3)
}

func TestNewCoreMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCoreMetrics(reg)

	m.IncFinalization(FinalizeOutcomeNoop)
	m.IncShortfall("")
	m.AddEntryItems("return", 2)
	m.ObserveLedgerMutation("increment", "tape", 50*time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected registered metric families")
	}
}
