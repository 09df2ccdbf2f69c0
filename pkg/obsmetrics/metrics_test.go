package obsmetrics_test

import (
	"testing"

	"github.com/jihwankim/dscale-sim/pkg/obsmetrics"
)

func TestNewRegistersWithoutPanicking(t *testing.T) {
	m := obsmetrics.New()
	m.EventsProcessed.Inc()
	m.NicBytesSent.WithLabelValues("1").Add(128)
	m.QueueDepth.Set(3)
	m.EventLatency.Observe(12)

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected at least one registered metric family")
	}
}
