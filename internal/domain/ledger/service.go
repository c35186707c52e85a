package ledger

import (
	"context"

	"epaws/internal/domain/events"
	"epaws/internal/platform/logger"
	"epaws/internal/platform/metrics"
)

type Service struct {
	store   Store
	log     logger.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, log logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store:   store,
		log:     log.With(map[string]any{"component": "ledger"}),
		metrics: m,
	}
}

func (s *Service) Adjust(ctx context.Context, orgID string, f Field, delta int64) (int64, error) {
	if err := validate(orgID, f); err != nil {
		return 0, err
	}
	v, err := s.store.Adjust(ctx, orgID, f, delta)
	if err != nil {
		return 0, err
	}
	s.metrics.IncLedgerAdjustment(string(f), delta)
	s.log.Debug("ledger adjusted", map[string]any{"org_id": orgID, "field": f, "delta": delta, "value": v})
	return v, nil
}

func (s *Service) Get(ctx context.Context, orgID string) (Counters, error) {
	return s.store.Get(ctx, orgID)
}

// Register suscribe el proyector del ledger a los eventos de dominio.
// Cada evento se emite una sola vez por transición efectiva, así que
// reintentar una transición ya aplicada no vuelve a ajustar contadores.
func (s *Service) Register(sub events.Subscriber) {
	sub.Subscribe("ledger", s.Project,
		events.AnimalCreated,
		events.AnimalStatusChanged,
		events.AnimalDeleted,
		events.ReportStatusChanged,
		events.MedicalRecordCreated,
	)
}

const (
	animalAdopted  = "adopted"
	animalDeceased = "deceased"
)

// Project traduce un evento a ajustes del ledger.
func (s *Service) Project(ctx context.Context, e events.Event) error {
	switch p := e.Payload.(type) {
	case events.AnimalCreatedPayload:
		_, err := s.Adjust(ctx, p.OrganizationID, CurrentAnimals, +1)
		return err

	case events.AnimalStatusChangedPayload:
		switch {
		case p.To == animalAdopted && p.From != animalAdopted:
			_, err := s.Adjust(ctx, p.OrganizationID, CurrentAnimals, -1)
			return err
		case p.From == animalAdopted && p.To != animalAdopted:
			_, err := s.Adjust(ctx, p.OrganizationID, CurrentAnimals, +1)
			return err
		}
		return nil

	case events.AnimalDeletedPayload:
		if p.Status == animalAdopted || p.Status == animalDeceased {
			return nil
		}
		_, err := s.Adjust(ctx, p.OrganizationID, CurrentAnimals, -1)
		return err

	case events.ReportStatusChangedPayload:
		if !p.FirstRescue || p.OrganizationID == "" {
			return nil
		}
		_, err := s.Adjust(ctx, p.OrganizationID, TotalRescues, +1)
		return err

	case events.MedicalRecordCreatedPayload:
		_, err := s.Adjust(ctx, p.ClinicID, TotalCasesHandled, +1)
		return err
	}
	return nil
}
