package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncTransition("report", "pending", "rescued")
	m.IncTransition("report", "pending", "rescued")
	m.IncLedgerAdjustment("currentAnimals", -1)
	m.IncLedgerAdjustment("currentAnimals", 0)
	m.IncDedupConflict()
	m.AddSwept(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("report", "pending", "rescued")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LedgerAdjustments.WithLabelValues("currentAnimals", "down")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LedgerAdjustments.WithLabelValues("currentAnimals", "up")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DedupConflicts))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.NotificationsSwept))
}

func TestNilReceiver(t *testing.T) {
	var m *Metrics
	m.IncTransition("animal", "available", "adopted")
	m.IncSideEffectFailure("ledger")
	m.IncNotificationCreated("system")
	m.ObserveNearby("reports", 0)
}
