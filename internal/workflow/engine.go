// Package workflow compone los servicios de dominio en el motor de flujo:
// valida y persiste cada transición, y cuelga del bus los efectos secundarios
// (ledger, notificaciones, métricas, animal ← adopción).
package workflow

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"epaws/internal/domain/adoptions"
	"epaws/internal/domain/animals"
	"epaws/internal/domain/events"
	"epaws/internal/domain/ledger"
	"epaws/internal/domain/medical"
	"epaws/internal/domain/notifications"
	"epaws/internal/domain/organizations"
	"epaws/internal/domain/reports"
	"epaws/internal/platform/logger"
	"epaws/internal/platform/metrics"
)

const tracerName = "epaws/internal/workflow"

// Stores agrupa los adaptadores de persistencia (memory o postgres).
type Stores struct {
	Reports       reports.Repository
	Animals       animals.Repository
	Adoptions     adoptions.Repository
	Medical       medical.Repository
	Organizations organizations.Repository
	Notifications notifications.Repository
	Ledger        ledger.Store
}

type Options struct {
	Logger  logger.Logger
	Metrics *metrics.Metrics
	// Bus nil = bus síncrono propio.
	Bus *events.Bus
	// Locale de las plantillas de notificación (es por defecto).
	Locale string
	Tracer trace.Tracer
}

type Engine struct {
	Reports       *reports.Service
	Animals       *animals.Service
	Adoptions     *adoptions.Service
	Medical       *medical.Service
	Organizations *organizations.Service
	Notifications *notifications.Service
	Ledger        *ledger.Service

	orgs    organizations.Repository
	animals animals.Repository

	bus     *events.Bus
	log     logger.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func New(st Stores, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	bus := opts.Bus
	if bus == nil {
		bus = events.NewBus(events.BusOptions{Logger: log, Metrics: opts.Metrics})
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	e := &Engine{
		orgs:    st.Organizations,
		animals: st.Animals,
		bus:     bus,
		log:     log.With(map[string]any{"component": "workflow"}),
		metrics: opts.Metrics,
		tracer:  tracer,
	}

	e.Ledger = ledger.NewService(st.Ledger, log, opts.Metrics)
	e.Organizations = organizations.NewService(st.Organizations, e.Ledger, opts.Metrics)
	e.Reports = reports.NewService(st.Reports, st.Organizations, bus, opts.Metrics)
	e.Animals = animals.NewService(st.Animals, st.Reports, bus)
	e.Adoptions = adoptions.NewService(st.Adoptions, st.Animals, bus, opts.Metrics)
	e.Medical = medical.NewService(st.Medical, st.Animals, st.Reports, bus)
	e.Notifications = notifications.NewService(st.Notifications)

	// el orden importa solo para la lectura de los logs; cada suscriptor es independiente
	e.Ledger.Register(bus)
	notifications.NewProjector(
		notifications.NewDispatcher(st.Notifications, log, opts.Metrics),
		notifications.NewTemplates(opts.Locale),
	).Register(bus)
	bus.Subscribe("adoption_animal", e.driveAnimal, events.AdoptionStatusChanged)
	bus.Subscribe("transition_metrics", e.countTransition,
		events.ReportStatusChanged,
		events.AnimalStatusChanged,
		events.AdoptionStatusChanged,
		events.MedicalRecordStatusChanged,
	)

	return e
}

// Subscribe expone el bus para forwarders externos (kafka).
func (e *Engine) Subscribe(name string, h events.Handler, kinds ...events.Kind) {
	e.bus.Subscribe(name, h, kinds...)
}

// Run despacha la cola de eventos en modo async; en modo sync solo espera ctx.
func (e *Engine) Run(ctx context.Context) error {
	return e.bus.Run(ctx)
}

func (e *Engine) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "workflow."+op, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (e *Engine) countTransition(_ context.Context, ev events.Event) error {
	switch p := ev.Payload.(type) {
	case events.ReportStatusChangedPayload:
		e.metrics.IncTransition("report", p.From, p.To)
	case events.AnimalStatusChangedPayload:
		e.metrics.IncTransition("animal", p.From, p.To)
	case events.AdoptionStatusChangedPayload:
		e.metrics.IncTransition("adoption", p.From, p.To)
	case events.MedicalRecordStatusChangedPayload:
		e.metrics.IncTransition("medical_record", p.From, p.To)
	}
	return nil
}
