package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa los contadores del motor de workflow.
// Todos los métodos aceptan receptor nil para que los tests no necesiten registry.
type Metrics struct {
	Transitions          *prometheus.CounterVec
	SideEffectFailures   *prometheus.CounterVec
	LedgerAdjustments    *prometheus.CounterVec
	DedupConflicts       prometheus.Counter
	NotificationsCreated *prometheus.CounterVec
	NearbyQuery          *prometheus.HistogramVec
	NotificationsSwept   prometheus.Counter
}

// New registra las métricas en reg. Con reg nil usa el registry global.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "epaws_transitions_total",
			Help: "Status transitions applied, by entity and from/to status",
		}, []string{"entity", "from", "to"}),

		SideEffectFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "epaws_side_effect_failures_total",
			Help: "Side effects that failed after the primary change was committed",
		}, []string{"subscriber"}),

		LedgerAdjustments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "epaws_ledger_adjustments_total",
			Help: "Organization counter adjustments by field and direction",
		}, []string{"field", "direction"}), // direction: "up", "down"

		DedupConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "epaws_dedup_conflicts_total",
			Help: "Adoption applications rejected by the active-application guard",
		}),

		NotificationsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "epaws_notifications_created_total",
			Help: "Notifications created by type",
		}, []string{"type"}),

		NearbyQuery: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "epaws_nearby_query_seconds",
			Help:    "Duration of proximity queries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"kind"}), // kind: "reports", "clinics"

		NotificationsSwept: f.NewCounter(prometheus.CounterOpts{
			Name: "epaws_notifications_swept_total",
			Help: "Read notifications removed by the retention sweeper",
		}),
	}
}

func (m *Metrics) IncTransition(entity, from, to string) {
	if m != nil {
		m.Transitions.WithLabelValues(entity, from, to).Inc()
	}
}

func (m *Metrics) IncSideEffectFailure(subscriber string) {
	if m != nil {
		m.SideEffectFailures.WithLabelValues(subscriber).Inc()
	}
}

func (m *Metrics) IncLedgerAdjustment(field string, delta int64) {
	if m == nil || delta == 0 {
		return
	}
	dir := "up"
	if delta < 0 {
		dir = "down"
	}
	m.LedgerAdjustments.WithLabelValues(field, dir).Inc()
}

func (m *Metrics) IncDedupConflict() {
	if m != nil {
		m.DedupConflicts.Inc()
	}
}

func (m *Metrics) IncNotificationCreated(typ string) {
	if m != nil {
		m.NotificationsCreated.WithLabelValues(typ).Inc()
	}
}

func (m *Metrics) ObserveNearby(kind string, d time.Duration) {
	if m != nil {
		m.NearbyQuery.WithLabelValues(kind).Observe(d.Seconds())
	}
}

func (m *Metrics) AddSwept(n int64) {
	if m != nil && n > 0 {
		m.NotificationsSwept.Add(float64(n))
	}
}
