package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"epaws/internal/platform/logger"
	"epaws/internal/platform/metrics"
)

// Handler aplica un efecto secundario. Su error se loguea y se cuenta,
// nunca vuelve a quien publicó.
type Handler func(ctx context.Context, e Event) error

// Publisher es lo único que ven los servicios de dominio.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Subscriber lo usan los proyectores (ledger, notificaciones, kafka).
type Subscriber interface {
	Subscribe(name string, h Handler, kinds ...Kind)
}

type subscription struct {
	name    string
	kinds   map[Kind]struct{}
	handler Handler
}

func (s subscription) wants(k Kind) bool {
	if len(s.kinds) == 0 {
		return true
	}
	_, ok := s.kinds[k]
	return ok
}

type BusOptions struct {
	Logger  logger.Logger
	Metrics *metrics.Metrics
	// Async encola eventos y los despacha Run. Sin Async, Publish despacha inline
	// después del commit de la transición.
	Async  bool
	Buffer int
}

type Bus struct {
	mu   sync.RWMutex
	subs []subscription

	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	queue chan queued
}

type queued struct {
	ctx context.Context
	e   Event
}

func NewBus(opts BusOptions) *Bus {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	b := &Bus{
		log:     log.With(map[string]any{"component": "event_bus"}),
		metrics: opts.Metrics,
		now:     time.Now,
	}
	if opts.Async {
		size := opts.Buffer
		if size <= 0 {
			size = 256
		}
		b.queue = make(chan queued, size)
	}
	return b
}

// Subscribe registra un handler. Sin kinds recibe todos los eventos.
func (b *Bus) Subscribe(name string, h Handler, kinds ...Kind) {
	set := map[Kind]struct{}{}
	for _, k := range kinds {
		set[k] = struct{}{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{name: name, kinds: set, handler: h})
}

func (b *Bus) Publish(ctx context.Context, e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = b.now().UTC()
	}

	if b.queue == nil {
		b.dispatch(ctx, e)
		return
	}

	// el request puede terminar antes que el worker; conservamos valores, no la cancelación
	qctx := context.WithoutCancel(ctx)
	select {
	case b.queue <- queued{ctx: qctx, e: e}:
	default:
		b.log.Warn("event queue full, dispatching inline", map[string]any{"kind": e.Kind, "entity_id": e.EntityID})
		b.dispatch(qctx, e)
	}
}

// Run consume la cola en modo async. En modo sync retorna al cancelar ctx.
func (b *Bus) Run(ctx context.Context) error {
	if b.queue == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	for {
		select {
		case <-ctx.Done():
			b.drain()
			return ctx.Err()
		case q := <-b.queue:
			b.dispatch(q.ctx, q.e)
		}
	}
}

func (b *Bus) drain() {
	for {
		select {
		case q := <-b.queue:
			b.dispatch(q.ctx, q.e)
		default:
			return
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, e Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if !s.wants(e.Kind) {
			continue
		}
		if err := b.call(ctx, s, e); err != nil {
			b.metrics.IncSideEffectFailure(s.name)
			b.log.Error("side effect failed", map[string]any{
				"subscriber": s.name,
				"kind":       e.Kind,
				"entity_id":  e.EntityID,
				"event_id":   e.ID,
				"err":        err,
			})
		}
	}
}

func (b *Bus) call(ctx context.Context, s subscription, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in subscriber %s: %v", s.name, r)
		}
	}()
	return s.handler(ctx, e)
}
