package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"epaws/internal/platform/logger"
	"epaws/internal/platform/metrics"
)

// Dispatcher crea entradas de buzón como efecto secundario.
// Nunca devuelve error: una falla se loguea y se cuenta.
type Dispatcher struct {
	repo    Repository
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewDispatcher(repo Repository, log logger.Logger, m *metrics.Metrics) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		repo:    repo,
		log:     log.With(map[string]any{"component": "notifications"}),
		metrics: m,
		now:     time.Now,
	}
}

// Notify devuelve false si no se creó (destinatario vacío o falla de storage).
func (d *Dispatcher) Notify(ctx context.Context, userID string, typ Type, title, body string, related *Related) bool {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		d.log.Debug("notification skipped: no recipient", map[string]any{"type": typ, "title": title})
		return false
	}

	n := Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Body:      body,
		Related:   related,
		CreatedAt: d.now().UTC(),
	}

	if err := d.repo.Create(ctx, n); err != nil {
		d.metrics.IncSideEffectFailure("notifications")
		fields := map[string]any{"user_id": userID, "type": typ, "err": err}
		if related != nil {
			fields["related_kind"] = related.Kind
			fields["related_id"] = related.ID
		}
		d.log.Warn("notification dropped", fields)
		return false
	}

	d.metrics.IncNotificationCreated(string(typ))
	return true
}
