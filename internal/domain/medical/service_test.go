package medical

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"epaws/internal/domain/animals"
	"epaws/internal/domain/events"
	"epaws/internal/domain/reports"
	"epaws/internal/platform/sentinel"
	"epaws/internal/ports/auth"
)

type testRepo struct {
	mu   sync.Mutex
	byID map[string]Record
}

func newTestRepo() *testRepo { return &testRepo{byID: map[string]Record{}} }

func (r *testRepo) Create(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rec.ID] = rec
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return Record{}, sentinel.ErrNotFound
	}
	return rec, nil
}

func (r *testRepo) Update(_ context.Context, rec Record, prev int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[rec.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if cur.Version != prev {
		return sentinel.ErrConflict
	}
	r.byID[rec.ID] = rec
	return nil
}

type testAnimals map[string]animals.Animal

func (t testAnimals) GetByID(_ context.Context, id string) (animals.Animal, error) {
	a, ok := t[id]
	if !ok {
		return animals.Animal{}, sentinel.ErrNotFound
	}
	return a, nil
}

type testReports map[string]reports.Report

func (t testReports) GetByID(_ context.Context, id string) (reports.Report, error) {
	r, ok := t[id]
	if !ok {
		return reports.Report{}, sentinel.ErrNotFound
	}
	return r, nil
}

type recPub struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recPub) Publish(_ context.Context, e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

var (
	vet     = auth.Claims{UserID: "clinic-1", Role: auth.RoleVeterinary}
	vet2    = auth.Claims{UserID: "clinic-2", Role: auth.RoleVeterinary}
	shelter = auth.Claims{UserID: "org-1", Role: auth.RoleOrganization}
)

var t0 = time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)

func newTestService() (*Service, *recPub) {
	pub := &recPub{}
	zoo := testAnimals{"a-1": {ID: "a-1", Name: "Canela", OrganizationID: "org-1"}}
	svc := NewService(newTestRepo(), zoo, testReports{"rep-1": {ID: "rep-1"}}, pub)
	svc.now = func() time.Time { return t0 }
	return svc, pub
}

func create(t *testing.T, svc *Service, visit VisitType) Record {
	t.Helper()
	rec, err := svc.Create(context.Background(), vet, CreateInput{
		AnimalID:    "a-1",
		VisitType:   visit,
		Diagnosis:   "Fractura leve",
		Medications: []Medication{{Name: " Meloxicam ", Dosage: "0.1 mg/kg"}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return rec
}

func statusPtr(s Status) *Status { return &s }

func TestCreate_CopiesOwnerAndPublishes(t *testing.T) {
	svc, pub := newTestService()
	rec := create(t, svc, VisitInitialExam)

	if rec.Status != StatusScheduled || rec.ClinicID != "clinic-1" || rec.OrganizationID != "org-1" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Medications[0].Name != "Meloxicam" {
		t.Fatalf("expected trimmed medication name, got %q", rec.Medications[0].Name)
	}
	if !rec.VisitDate.Equal(t0) {
		t.Fatalf("expected default visit date")
	}
	p, ok := pub.events[0].Payload.(events.MedicalRecordCreatedPayload)
	if !ok || p.ClinicID != "clinic-1" || p.OrganizationID != "org-1" || p.AnimalName != "Canela" {
		t.Fatalf("unexpected payload: %+v", pub.events[0].Payload)
	}
}

func TestCreate_Rules(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, shelter, CreateInput{AnimalID: "a-1", VisitType: VisitTreatment}); !errors.Is(err, sentinel.ErrForbidden) {
		t.Fatalf("organization: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Create(ctx, vet, CreateInput{AnimalID: "a-1", VisitType: "spa"}); !errors.Is(err, sentinel.ErrValidation) {
		t.Fatalf("bad visit: expected ErrValidation, got %v", err)
	}
	if _, err := svc.Create(ctx, vet, CreateInput{AnimalID: "a-404", VisitType: VisitTreatment}); !errors.Is(err, sentinel.ErrNotFound) {
		t.Fatalf("missing animal: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Create(ctx, vet, CreateInput{AnimalID: "a-1", ReportID: "rep-404", VisitType: VisitTreatment}); !errors.Is(err, sentinel.ErrNotFound) {
		t.Fatalf("missing report: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Create(ctx, vet, CreateInput{AnimalID: "a-1", VisitType: VisitTreatment, EstimatedCost: -1}); !errors.Is(err, sentinel.ErrValidation) {
		t.Fatalf("negative cost: expected ErrValidation, got %v", err)
	}
	if _, err := svc.Create(ctx, vet, CreateInput{AnimalID: "a-1", VisitType: VisitTreatment, Medications: []Medication{{Dosage: "1"}}}); !errors.Is(err, sentinel.ErrValidation) {
		t.Fatalf("unnamed medication: expected ErrValidation, got %v", err)
	}
}

func TestTransition_DischargeStampsOnce(t *testing.T) {
	svc, pub := newTestService()
	ctx := context.Background()
	rec := create(t, svc, VisitDischarge)

	if _, err := svc.Transition(ctx, vet, rec.ID, TransitionInput{Status: statusPtr(StatusInProgress)}); err != nil {
		t.Fatalf("in_progress: %v", err)
	}
	done, err := svc.Transition(ctx, vet, rec.ID, TransitionInput{Status: statusPtr(StatusCompleted)})
	if err != nil {
		t.Fatalf("completed: %v", err)
	}
	if done.DischargeDate == nil || !done.DischargeDate.Equal(t0) {
		t.Fatalf("expected dischargeDate=%v, got %v", t0, done.DischargeDate)
	}

	// corrección posterior del costo real
	svc.now = func() time.Time { return t0.Add(24 * time.Hour) }
	cost := 35000.0
	fixed, err := svc.Transition(ctx, vet, rec.ID, TransitionInput{Fields: FieldUpdate{ActualCost: &cost}})
	if err != nil {
		t.Fatalf("fix cost: %v", err)
	}
	if fixed.TotalCost() != cost || !fixed.DischargeDate.Equal(t0) {
		t.Fatalf("unexpected after fix: %+v", fixed)
	}

	var changes int
	for _, e := range pub.events {
		if e.Kind == events.MedicalRecordStatusChanged {
			changes++
		}
	}
	if changes != 2 {
		t.Fatalf("expected 2 status events, got %d", changes)
	}
}

func TestTransition_NonDischargeHasNoDischargeDate(t *testing.T) {
	svc, _ := newTestService()
	rec := create(t, svc, VisitSurgery)

	done, err := svc.Transition(context.Background(), vet, rec.ID, TransitionInput{Status: statusPtr(StatusCompleted)})
	if err != nil {
		t.Fatalf("completed: %v", err)
	}
	if done.DischargeDate != nil {
		t.Fatalf("dischargeDate must stay nil for surgery")
	}
}

func TestTransition_CancelledAndPermissions(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	rec := create(t, svc, VisitTreatment)

	if _, err := svc.Transition(ctx, vet2, rec.ID, TransitionInput{Status: statusPtr(StatusCancelled)}); !errors.Is(err, sentinel.ErrForbidden) {
		t.Fatalf("other clinic: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Transition(ctx, vet, rec.ID, TransitionInput{Status: statusPtr(StatusCancelled)}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.Transition(ctx, vet, rec.ID, TransitionInput{Status: statusPtr(StatusInProgress)}); !errors.Is(err, sentinel.ErrInvalidTransition) {
		t.Fatalf("from cancelled: expected ErrInvalidTransition, got %v", err)
	}
	notes := "olvidé algo"
	if _, err := svc.Transition(ctx, vet, rec.ID, TransitionInput{Fields: FieldUpdate{Notes: &notes}}); !errors.Is(err, sentinel.ErrInvalidTransition) {
		t.Fatalf("edit cancelled: expected ErrInvalidTransition, got %v", err)
	}
}
