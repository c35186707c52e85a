package medical

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"epaws/internal/domain/animals"
	"epaws/internal/domain/events"
	"epaws/internal/domain/reports"
	"epaws/internal/platform/sentinel"
	"epaws/internal/ports/auth"
)

type AnimalLookup interface {
	GetByID(ctx context.Context, id string) (animals.Animal, error)
}

type ReportLookup interface {
	GetByID(ctx context.Context, id string) (reports.Report, error)
}

type Service struct {
	repo    Repository
	animals AnimalLookup
	reports ReportLookup
	pub     events.Publisher
	now     func() time.Time
}

func NewService(repo Repository, al AnimalLookup, rl ReportLookup, pub events.Publisher) *Service {
	return &Service{
		repo:    repo,
		animals: al,
		reports: rl,
		pub:     pub,
		now:     time.Now,
	}
}

type CreateInput struct {
	AnimalID        string
	ReportID        string
	VisitType       VisitType
	Diagnosis       string
	Treatment       string
	Medications     []Medication
	Notes           string
	EstimatedCost   float64
	PhotoURLs       []string
	Documents       []Document
	VisitDate       *time.Time // nil = ahora
	NextAppointment *time.Time
}

// Create abre una ficha scheduled. Solo veterinarias; la clínica es el actor.
// El ledger suma un caso atendido a la clínica aunque la ficha se cancele después.
func (s *Service) Create(ctx context.Context, actor auth.Claims, in CreateInput) (Record, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return Record{}, sentinel.ErrUnauthorized
	}
	if actor.Role != auth.RoleVeterinary {
		return Record{}, fmt.Errorf("%w: only veterinary clinics can create medical records", sentinel.ErrForbidden)
	}
	if !in.VisitType.Valid() {
		return Record{}, fmt.Errorf("%w: unknown visit type %q", sentinel.ErrValidation, in.VisitType)
	}

	now := s.now().UTC()
	rec := Record{
		ID:        uuid.NewString(),
		AnimalID:  strings.TrimSpace(in.AnimalID),
		ReportID:  strings.TrimSpace(in.ReportID),
		ClinicID:  actor.UserID,
		VisitType: in.VisitType,
		Status:    StatusScheduled,
		PhotoURLs: cleanList(in.PhotoURLs),
		VisitDate: now,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.VisitDate != nil {
		rec.VisitDate = in.VisitDate.UTC()
	}

	est := in.EstimatedCost
	if err := applyFields(&rec, FieldUpdate{
		Diagnosis:       &in.Diagnosis,
		Treatment:       &in.Treatment,
		Medications:     &in.Medications,
		Notes:           &in.Notes,
		EstimatedCost:   &est,
		NextAppointment: in.NextAppointment,
	}); err != nil {
		return Record{}, err
	}
	docs, err := cleanDocuments(in.Documents, now)
	if err != nil {
		return Record{}, err
	}
	rec.Documents = docs

	if rec.AnimalID == "" {
		return Record{}, fmt.Errorf("%w: animal", sentinel.ErrNotFound)
	}
	animal, err := s.animals.GetByID(ctx, rec.AnimalID)
	if err != nil {
		return Record{}, err
	}
	rec.OrganizationID = animal.OrganizationID

	if rec.ReportID != "" && s.reports != nil {
		if _, err := s.reports.GetByID(ctx, rec.ReportID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return Record{}, fmt.Errorf("%w: report %s", sentinel.ErrNotFound, rec.ReportID)
			}
			return Record{}, err
		}
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return Record{}, err
	}

	s.pub.Publish(ctx, events.Event{
		Kind:     events.MedicalRecordCreated,
		EntityID: rec.ID,
		Payload: events.MedicalRecordCreatedPayload{
			RecordID:       rec.ID,
			AnimalID:       rec.AnimalID,
			AnimalName:     animal.Name,
			ClinicID:       rec.ClinicID,
			OrganizationID: rec.OrganizationID,
			VisitType:      string(rec.VisitType),
		},
	})
	return rec, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, fmt.Errorf("%w: medical record", sentinel.ErrNotFound)
	}
	return s.repo.GetByID(ctx, id)
}

// FieldUpdate: nil = no tocar.
type FieldUpdate struct {
	Diagnosis       *string
	Treatment       *string
	Medications     *[]Medication
	Notes           *string
	EstimatedCost   *float64
	ActualCost      *float64
	NextAppointment *time.Time
}

type TransitionInput struct {
	Status *Status
	Fields FieldUpdate
}

// Transition: la clínica dueña o un admin. Una ficha completada sigue
// aceptando correcciones de campos (costo real, notas); una cancelada no.
func (s *Service) Transition(ctx context.Context, actor auth.Claims, id string, in TransitionInput) (Record, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if strings.TrimSpace(actor.UserID) == "" {
		return Record{}, sentinel.ErrUnauthorized
	}
	if !actor.IsAdmin() && actor.UserID != cur.ClinicID {
		return Record{}, fmt.Errorf("%w: record belongs to another clinic", sentinel.ErrForbidden)
	}

	next := cur
	next.Medications = slices.Clone(cur.Medications)
	if err := applyFields(&next, in.Fields); err != nil {
		return Record{}, err
	}

	now := s.now().UTC()
	statusChanged := false
	if in.Status != nil && *in.Status != cur.Status {
		if err := machine.Check(cur.Status, *in.Status); err != nil {
			return Record{}, err
		}
		next.Status = *in.Status
		statusChanged = true

		if next.Status == StatusCompleted && next.VisitType == VisitDischarge && next.DischargeDate == nil {
			next.DischargeDate = &now
		}
	}

	if !statusChanged && sameFields(cur, next) {
		return cur, nil
	}
	if cur.Status == StatusCancelled {
		return Record{}, fmt.Errorf("%w: record is cancelled", sentinel.ErrInvalidTransition)
	}

	next.Version = cur.Version + 1
	next.UpdatedAt = now
	if err := s.repo.Update(ctx, next, cur.Version); err != nil {
		return Record{}, err
	}

	if statusChanged {
		s.pub.Publish(ctx, events.Event{
			Kind:     events.MedicalRecordStatusChanged,
			EntityID: next.ID,
			Payload: events.MedicalRecordStatusChangedPayload{
				RecordID:       next.ID,
				AnimalID:       next.AnimalID,
				AnimalName:     s.animalName(ctx, next.AnimalID),
				ClinicID:       next.ClinicID,
				OrganizationID: next.OrganizationID,
				VisitType:      string(next.VisitType),
				From:           string(cur.Status),
				To:             string(next.Status),
			},
		})
	}
	return next, nil
}

func (s *Service) animalName(ctx context.Context, id string) string {
	a, err := s.animals.GetByID(ctx, id)
	if err != nil {
		return ""
	}
	return a.Name
}

func applyFields(r *Record, u FieldUpdate) error {
	texts := []struct {
		dst   *string
		src   *string
		field string
		max   int
	}{
		{&r.Diagnosis, u.Diagnosis, "diagnosis", 1000},
		{&r.Treatment, u.Treatment, "treatment", 2000},
		{&r.Notes, u.Notes, "notes", 2000},
	}
	for _, t := range texts {
		if t.src == nil {
			continue
		}
		v := strings.TrimSpace(*t.src)
		if utf8.RuneCountInString(v) > t.max {
			return fmt.Errorf("%w: %s too long", sentinel.ErrValidation, t.field)
		}
		*t.dst = v
	}

	if u.Medications != nil {
		meds := make([]Medication, 0, len(*u.Medications))
		for _, m := range *u.Medications {
			m.Name = strings.TrimSpace(m.Name)
			if m.Name == "" {
				return fmt.Errorf("%w: medication name required", sentinel.ErrValidation)
			}
			m.Dosage = strings.TrimSpace(m.Dosage)
			m.Frequency = strings.TrimSpace(m.Frequency)
			m.Duration = strings.TrimSpace(m.Duration)
			meds = append(meds, m)
		}
		r.Medications = meds
	}

	for _, c := range []struct {
		dst   *float64
		src   *float64
		field string
	}{
		{&r.EstimatedCost, u.EstimatedCost, "estimated_cost"},
		{&r.ActualCost, u.ActualCost, "actual_cost"},
	} {
		if c.src == nil {
			continue
		}
		if *c.src < 0 || math.IsNaN(*c.src) || math.IsInf(*c.src, 0) {
			return fmt.Errorf("%w: %s must be a non-negative number", sentinel.ErrValidation, c.field)
		}
		*c.dst = *c.src
	}

	if u.NextAppointment != nil {
		t := u.NextAppointment.UTC()
		r.NextAppointment = &t
	}
	return nil
}

func sameFields(a, b Record) bool {
	return a.Diagnosis == b.Diagnosis &&
		a.Treatment == b.Treatment &&
		a.Notes == b.Notes &&
		slices.Equal(a.Medications, b.Medications) &&
		a.EstimatedCost == b.EstimatedCost &&
		a.ActualCost == b.ActualCost &&
		sameTime(a.NextAppointment, b.NextAppointment)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func cleanDocuments(in []Document, now time.Time) ([]Document, error) {
	out := make([]Document, 0, len(in))
	for _, d := range in {
		d.Name = strings.TrimSpace(d.Name)
		d.URL = strings.TrimSpace(d.URL)
		if d.URL == "" {
			return nil, fmt.Errorf("%w: document url required", sentinel.ErrValidation)
		}
		if d.UploadedAt.IsZero() {
			d.UploadedAt = now
		}
		out = append(out, d)
	}
	return out, nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
