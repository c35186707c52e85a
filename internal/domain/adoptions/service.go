package adoptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"epaws/internal/domain/animals"
	"epaws/internal/domain/events"
	"epaws/internal/platform/metrics"
	"epaws/internal/platform/sentinel"
	"epaws/internal/ports/auth"
)

// AnimalLookup es la parte de animals que necesita una solicitud.
type AnimalLookup interface {
	GetByID(ctx context.Context, id string) (animals.Animal, error)
}

type Service struct {
	repo    Repository
	animals AnimalLookup
	pub     events.Publisher
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(repo Repository, al AnimalLookup, pub events.Publisher, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		animals: al,
		pub:     pub,
		metrics: m,
		now:     time.Now,
	}
}

type SubmitInput struct {
	AnimalID    string
	Message     string
	AdopterInfo AdopterInfo
}

// Submit crea una solicitud pending. El animal debe estar available y no puede
// haber otra solicitud activa del mismo adoptante para el mismo animal.
func (s *Service) Submit(ctx context.Context, actor auth.Claims, in SubmitInput) (Adoption, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return Adoption{}, sentinel.ErrUnauthorized
	}
	if actor.Role != auth.RoleUser {
		return Adoption{}, fmt.Errorf("%w: only users can apply for adoption", sentinel.ErrForbidden)
	}

	msg := strings.TrimSpace(in.Message)
	if n := utf8.RuneCountInString(msg); n < 50 || n > 2000 {
		return Adoption{}, fmt.Errorf("%w: message must be 50-2000 characters", sentinel.ErrValidation)
	}
	info, err := cleanInfo(in.AdopterInfo)
	if err != nil {
		return Adoption{}, err
	}

	animalID := strings.TrimSpace(in.AnimalID)
	if animalID == "" {
		return Adoption{}, fmt.Errorf("%w: animal", sentinel.ErrNotFound)
	}
	animal, err := s.animals.GetByID(ctx, animalID)
	if err != nil {
		return Adoption{}, err
	}
	if animal.Status != animals.StatusAvailable {
		return Adoption{}, fmt.Errorf("%w: animal is %s", sentinel.ErrConflict, animal.Status)
	}

	// Chequeo previo; la carrera residual la cierra el repositorio.
	dup, err := s.repo.HasActive(ctx, animalID, actor.UserID)
	if err != nil {
		return Adoption{}, err
	}
	if dup {
		s.metrics.IncDedupConflict()
		return Adoption{}, fmt.Errorf("%w: an active application already exists for this animal", sentinel.ErrConflict)
	}

	now := s.now().UTC()
	a := Adoption{
		ID:             uuid.NewString(),
		AnimalID:       animalID,
		AdopterID:      actor.UserID,
		OrganizationID: animal.OrganizationID,
		Message:        msg,
		AdopterInfo:    info,
		Status:         StatusPending,
		AppliedAt:      now,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.IncDedupConflict()
		}
		return Adoption{}, err
	}

	s.pub.Publish(ctx, events.Event{
		Kind:     events.AdoptionSubmitted,
		EntityID: a.ID,
		Payload: events.AdoptionSubmittedPayload{
			AdoptionID:     a.ID,
			AnimalID:       a.AnimalID,
			AnimalName:     animal.Name,
			AdopterID:      a.AdopterID,
			OrganizationID: a.OrganizationID,
		},
	})
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Adoption, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Adoption{}, fmt.Errorf("%w: adoption", sentinel.ErrNotFound)
	}
	return s.repo.GetByID(ctx, id)
}

// Get es GetByID restringido a las partes: adoptante, organización dueña o admin.
func (s *Service) Get(ctx context.Context, actor auth.Claims, id string) (Adoption, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return Adoption{}, sentinel.ErrUnauthorized
	}
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Adoption{}, err
	}
	if !actor.IsAdmin() && actor.UserID != a.AdopterID && actor.UserID != a.OrganizationID {
		return Adoption{}, fmt.Errorf("%w: not a party of this adoption", sentinel.ErrForbidden)
	}
	return a, nil
}

// TransitionInput: Status vacío mantiene el estado (solo notas).
type TransitionInput struct {
	Status          Status
	ReviewNotes     *string
	RejectionReason *string
}

// Transition la usa la organización dueña (o un admin) para revisar.
func (s *Service) Transition(ctx context.Context, actor auth.Claims, id string, in TransitionInput) (Adoption, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return Adoption{}, err
	}
	if strings.TrimSpace(actor.UserID) == "" {
		return Adoption{}, sentinel.ErrUnauthorized
	}
	if !actor.IsAdmin() && actor.UserID != cur.OrganizationID {
		return Adoption{}, fmt.Errorf("%w: only the owning organization can review", sentinel.ErrForbidden)
	}
	return s.apply(ctx, cur, in, false)
}

// Cancel: solo el adoptante y solo mientras la solicitud está activa.
func (s *Service) Cancel(ctx context.Context, actor auth.Claims, id string) (Adoption, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return Adoption{}, err
	}
	if strings.TrimSpace(actor.UserID) == "" {
		return Adoption{}, sentinel.ErrUnauthorized
	}
	if actor.UserID != cur.AdopterID {
		return Adoption{}, fmt.Errorf("%w: only the adopter can cancel", sentinel.ErrForbidden)
	}
	if !cur.Status.Active() {
		return Adoption{}, fmt.Errorf("%w: adoption is %s", sentinel.ErrInvalidTransition, cur.Status)
	}
	return s.apply(ctx, cur, TransitionInput{Status: StatusCancelled}, true)
}

func (s *Service) apply(ctx context.Context, cur Adoption, in TransitionInput, byAdopter bool) (Adoption, error) {
	next := cur

	if in.ReviewNotes != nil {
		notes := strings.TrimSpace(*in.ReviewNotes)
		if utf8.RuneCountInString(notes) > 1000 {
			return Adoption{}, fmt.Errorf("%w: review notes too long", sentinel.ErrValidation)
		}
		next.ReviewNotes = notes
	}
	if in.RejectionReason != nil {
		reason := strings.TrimSpace(*in.RejectionReason)
		if utf8.RuneCountInString(reason) > 1000 {
			return Adoption{}, fmt.Errorf("%w: rejection reason too long", sentinel.ErrValidation)
		}
		next.RejectionReason = reason
	}

	to := in.Status
	if to == "" {
		to = cur.Status
	}

	now := s.now().UTC()
	statusChanged := false
	if to != cur.Status {
		if err := machine.Check(cur.Status, to); err != nil {
			return Adoption{}, err
		}
		next.Status = to
		statusChanged = true

		switch to {
		case StatusUnderReview, StatusApproved, StatusRejected:
			if next.ReviewedAt == nil {
				next.ReviewedAt = &now
			}
		case StatusCompleted:
			if next.CompletedAt == nil {
				next.CompletedAt = &now
			}
		}
	}

	if !statusChanged && next.ReviewNotes == cur.ReviewNotes && next.RejectionReason == cur.RejectionReason {
		return cur, nil
	}
	if machine.Terminal(cur.Status) {
		return Adoption{}, fmt.Errorf("%w: adoption is %s", sentinel.ErrInvalidTransition, cur.Status)
	}

	next.Version = cur.Version + 1
	next.UpdatedAt = now
	if err := s.repo.Update(ctx, next, cur.Version); err != nil {
		return Adoption{}, err
	}

	if statusChanged {
		s.pub.Publish(ctx, events.Event{
			Kind:     events.AdoptionStatusChanged,
			EntityID: next.ID,
			Payload: events.AdoptionStatusChangedPayload{
				AdoptionID:      next.ID,
				AnimalID:        next.AnimalID,
				AnimalName:      s.animalName(ctx, next.AnimalID),
				AdopterID:       next.AdopterID,
				OrganizationID:  next.OrganizationID,
				From:            string(cur.Status),
				To:              string(next.Status),
				ByAdopter:       byAdopter,
				RejectionReason: next.RejectionReason,
			},
		})
	}
	return next, nil
}

// animalName solo alimenta el texto de la notificación; si el animal ya no
// resuelve (borrado) la plantilla usa un nombre genérico.
func (s *Service) animalName(ctx context.Context, id string) string {
	a, err := s.animals.GetByID(ctx, id)
	if err != nil {
		return ""
	}
	return a.Name
}

func cleanInfo(in AdopterInfo) (AdopterInfo, error) {
	if !in.HomeType.Valid() {
		return AdopterInfo{}, fmt.Errorf("%w: unknown home type %q", sentinel.ErrValidation, in.HomeType)
	}
	if in.HouseholdMembers < 1 {
		return AdopterInfo{}, fmt.Errorf("%w: household members must be at least 1", sentinel.ErrValidation)
	}

	texts := []struct {
		v     *string
		field string
		max   int
	}{
		{&in.ExperienceDetails, "experience_details", 500},
		{&in.OtherPetsDetails, "other_pets_details", 500},
		{&in.HouseholdDetails, "household_details", 500},
		{&in.WorkSchedule, "work_schedule", 300},
		{&in.ReasonForAdoption, "reason_for_adoption", 1000},
	}
	for _, t := range texts {
		*t.v = strings.TrimSpace(*t.v)
		if utf8.RuneCountInString(*t.v) > t.max {
			return AdopterInfo{}, fmt.Errorf("%w: %s too long", sentinel.ErrValidation, t.field)
		}
	}
	return in, nil
}
