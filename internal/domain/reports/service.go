package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"epaws/internal/domain/events"
	"epaws/internal/domain/geo"
	"epaws/internal/domain/organizations"
	"epaws/internal/platform/metrics"
	"epaws/internal/platform/sentinel"
	"epaws/internal/ports/auth"
)

// Directory resuelve organizaciones/clínicas referenciadas por un reporte.
type Directory interface {
	GetByID(ctx context.Context, id string) (organizations.Organization, error)
}

type Service struct {
	repo    Repository
	dir     Directory
	pub     events.Publisher
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(repo Repository, dir Directory, pub events.Publisher, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		dir:     dir,
		pub:     pub,
		metrics: m,
		now:     time.Now,
	}
}

type CreateInput struct {
	Description string
	Urgency     Urgency
	AnimalType  AnimalType
	Location    geo.Point
	Address     string
	PhotoURLs   []string
}

func (s *Service) Create(ctx context.Context, actor auth.Claims, in CreateInput) (Report, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return Report{}, sentinel.ErrUnauthorized
	}

	desc := strings.TrimSpace(in.Description)
	if n := utf8.RuneCountInString(desc); n < 10 || n > 2000 {
		return Report{}, fmt.Errorf("%w: description must be 10-2000 characters", sentinel.ErrValidation)
	}
	urgency := in.Urgency
	if urgency == "" {
		urgency = UrgencyMedium
	}
	if !urgency.Valid() {
		return Report{}, fmt.Errorf("%w: unknown urgency %q", sentinel.ErrValidation, in.Urgency)
	}
	if !in.AnimalType.Valid() {
		return Report{}, fmt.Errorf("%w: unknown animal type %q", sentinel.ErrValidation, in.AnimalType)
	}
	if err := in.Location.Validate(); err != nil {
		return Report{}, err
	}
	addr := strings.TrimSpace(in.Address)
	if utf8.RuneCountInString(addr) > 300 {
		return Report{}, fmt.Errorf("%w: address too long", sentinel.ErrValidation)
	}

	now := s.now().UTC()
	r := Report{
		ID:          uuid.NewString(),
		ReporterID:  actor.UserID,
		Description: desc,
		Urgency:     urgency,
		AnimalType:  in.AnimalType,
		Status:      StatusPending,
		Location:    in.Location,
		Address:     addr,
		PhotoURLs:   cleanURLs(in.PhotoURLs),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return Report{}, err
	}

	s.pub.Publish(ctx, events.Event{
		Kind:     events.ReportCreated,
		EntityID: r.ID,
		Payload: events.ReportCreatedPayload{
			ReportID:   r.ID,
			ReporterID: r.ReporterID,
			Urgency:    string(r.Urgency),
		},
	})
	return r, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Report{}, fmt.Errorf("%w: report", sentinel.ErrNotFound)
	}
	return s.repo.GetByID(ctx, id)
}

// TransitionInput: nil = no tocar.
type TransitionInput struct {
	Status         *Status
	OrganizationID *string
	ClinicID       *string
	Notes          *string
}

// Transition aplica estado/asignaciones/notas en una sola escritura condicional.
// Reglas:
// - solo admin o una organización (la asignada, o cualquiera si no hay asignada)
// - assigned exige organización; in_veterinary exige clínica
// - rescuedAt y closedAt se estampan una vez
// - pedir el estado actual sin otros cambios es no-op
func (s *Service) Transition(ctx context.Context, actor auth.Claims, id string, in TransitionInput) (Report, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return Report{}, err
	}
	if err := canTransition(actor, cur); err != nil {
		return Report{}, err
	}

	next := cur
	var assigned []events.ReportAssignedPayload

	if in.OrganizationID != nil {
		orgID := strings.TrimSpace(*in.OrganizationID)
		if orgID != cur.OrganizationID {
			if err := s.checkParty(ctx, orgID, organizations.KindOrganization); err != nil {
				return Report{}, err
			}
			next.OrganizationID = orgID
			assigned = append(assigned, events.ReportAssignedPayload{
				ReportID:   cur.ID,
				Party:      events.PartyOrganization,
				AssigneeID: orgID,
				PreviousID: cur.OrganizationID,
				AnimalType: string(cur.AnimalType),
			})
		}
	}

	if in.ClinicID != nil {
		clinicID := strings.TrimSpace(*in.ClinicID)
		if clinicID != cur.ClinicID {
			if err := s.checkParty(ctx, clinicID, organizations.KindClinic); err != nil {
				return Report{}, err
			}
			next.ClinicID = clinicID
			assigned = append(assigned, events.ReportAssignedPayload{
				ReportID:   cur.ID,
				Party:      events.PartyClinic,
				AssigneeID: clinicID,
				PreviousID: cur.ClinicID,
				AnimalType: string(cur.AnimalType),
			})
		}
	}

	if in.Notes != nil {
		notes := strings.TrimSpace(*in.Notes)
		if utf8.RuneCountInString(notes) > 1000 {
			return Report{}, fmt.Errorf("%w: notes too long", sentinel.ErrValidation)
		}
		next.Notes = notes
	}

	now := s.now().UTC()
	statusChanged := false
	firstRescue := false

	if in.Status != nil && *in.Status != cur.Status {
		to := *in.Status
		if err := machine.Check(cur.Status, to); err != nil {
			return Report{}, err
		}
		next.Status = to
		statusChanged = true

		if to == StatusRescued && next.RescuedAt == nil {
			next.RescuedAt = &now
			firstRescue = true
		}
		if to == StatusClosed && next.ClosedAt == nil {
			next.ClosedAt = &now
		}
	}

	if !statusChanged && len(assigned) == 0 && next.Notes == cur.Notes {
		return cur, nil
	}
	if machine.Terminal(cur.Status) && !statusChanged {
		return Report{}, fmt.Errorf("%w: report is closed", sentinel.ErrInvalidTransition)
	}
	if err := checkCompanions(next); err != nil {
		return Report{}, err
	}

	next.Version = cur.Version + 1
	next.UpdatedAt = now
	if err := s.repo.Update(ctx, next, cur.Version); err != nil {
		return Report{}, err
	}

	if statusChanged {
		s.pub.Publish(ctx, events.Event{
			Kind:     events.ReportStatusChanged,
			EntityID: next.ID,
			Payload: events.ReportStatusChangedPayload{
				ReportID:       next.ID,
				ReporterID:     next.ReporterID,
				OrganizationID: next.OrganizationID,
				From:           string(cur.Status),
				To:             string(next.Status),
				FirstRescue:    firstRescue,
			},
		})
	}
	for _, a := range assigned {
		if a.AssigneeID == "" {
			continue
		}
		s.pub.Publish(ctx, events.Event{Kind: events.ReportAssigned, EntityID: next.ID, Payload: a})
	}

	return next, nil
}

// Nearby: reportes pending/assigned, más cercanos primero, máx 50.
// maxDistance nil usa el radio por defecto (10 km).
func (s *Service) Nearby(ctx context.Context, origin geo.Point, maxDistance *float64) ([]Nearby, error) {
	q, err := geo.Normalize(origin, maxDistance, geo.DefaultReportRadius, geo.ReportPageSize)
	if err != nil {
		return nil, err
	}

	start := s.now()
	defer func() { s.metrics.ObserveNearby("reports", s.now().Sub(start)) }()

	return s.repo.Nearby(ctx, q, ActiveStatuses)
}

func canTransition(actor auth.Claims, r Report) error {
	if strings.TrimSpace(actor.UserID) == "" {
		return sentinel.ErrUnauthorized
	}
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role != auth.RoleOrganization {
		return fmt.Errorf("%w: only organizations or admins can update reports", sentinel.ErrForbidden)
	}
	if r.OrganizationID != "" && r.OrganizationID != actor.UserID {
		return fmt.Errorf("%w: report is assigned to another organization", sentinel.ErrForbidden)
	}
	return nil
}

// checkCompanions valida el estado final: también cubre desasignar
// la organización de un reporte que sigue en assigned.
func checkCompanions(r Report) error {
	if r.Status == StatusAssigned && r.OrganizationID == "" {
		return fmt.Errorf("%w: assigned requires an organization", sentinel.ErrInvalidTransition)
	}
	if r.Status == StatusInVeterinary && r.ClinicID == "" {
		return fmt.Errorf("%w: in_veterinary requires a clinic", sentinel.ErrInvalidTransition)
	}
	return nil
}

// checkParty: "" desasigna; si no, la referencia debe existir y ser del tipo correcto.
func (s *Service) checkParty(ctx context.Context, id string, kind organizations.Kind) error {
	if id == "" {
		return nil
	}
	o, err := s.dir.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return fmt.Errorf("%w: %s %s", sentinel.ErrNotFound, kind, id)
		}
		return err
	}
	if o.Kind != kind {
		return fmt.Errorf("%w: %s is not a %s", sentinel.ErrValidation, id, kind)
	}
	if !o.Active {
		return fmt.Errorf("%w: %s %s is inactive", sentinel.ErrValidation, kind, id)
	}
	return nil
}

func cleanURLs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, u := range in {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}
