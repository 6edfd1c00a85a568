package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewCartMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCartMetrics(reg)

	m.IncAddAttempt("committed")
	m.IncAddAttempt("")
	m.IncViolation("stock")
	m.ObserveOrganize(25 * time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) != 3 {
		t.Fatalf("expected 3 metric families, got %d", len(families))
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var m *CartMetrics
	m.IncAddAttempt("committed")
	m.IncViolation("access")
	m.ObserveOrganize(time.Second)

	empty := NewCartMetrics(nil)
	empty.IncAddAttempt("rejected")
}
