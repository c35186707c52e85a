package notifications

import (
	"context"
	"time"

	"epaws/internal/platform/logger"
	"epaws/internal/platform/metrics"
)

// DefaultRetention: las leídas con más de 30 días se borran.
const DefaultRetention = 30 * 24 * time.Hour

// Sweeper corre fuera del manejo de requests. Solo toca notificaciones
// leídas; nunca entidades de workflow.
type Sweeper struct {
	repo      Repository
	retention time.Duration
	interval  time.Duration
	log       logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewSweeper(repo Repository, retention, interval time.Duration, log logger.Logger, m *metrics.Metrics) *Sweeper {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if interval <= 0 {
		interval = time.Hour
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Sweeper{
		repo:      repo,
		retention: retention,
		interval:  interval,
		log:       log.With(map[string]any{"component": "notification_sweeper"}),
		metrics:   m,
		now:       time.Now,
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.retention)
	n, err := s.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.metrics.AddSwept(n)
	s.log.Info("notifications swept", map[string]any{"deleted": n, "cutoff": cutoff.Format(time.RFC3339)})
	return n, nil
}

// Run barre al arrancar y luego cada interval hasta que ctx se cancela.
// Un error de barrido se loguea y no detiene el loop.
func (s *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
			s.log.Error("notification sweep failed", map[string]any{"err": err})
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}
