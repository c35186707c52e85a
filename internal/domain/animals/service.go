package animals

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"epaws/internal/domain/events"
	"epaws/internal/domain/reports"
	"epaws/internal/platform/sentinel"
	"epaws/internal/ports/auth"
)

// ReportLookup valida el reporte de origen opcional.
type ReportLookup interface {
	GetByID(ctx context.Context, id string) (reports.Report, error)
}

// casAttempts acota los reintentos de SetStatusIf ante escrituras concurrentes.
const casAttempts = 3

type Service struct {
	repo    Repository
	reports ReportLookup
	pub     events.Publisher
	now     func() time.Time
}

func NewService(repo Repository, rl ReportLookup, pub events.Publisher) *Service {
	return &Service{
		repo:    repo,
		reports: rl,
		pub:     pub,
		now:     time.Now,
	}
}

type CreateInput struct {
	ReportID          string
	Name              string
	Species           Species
	Breed             string
	Gender            Gender
	AgeEstimate       string
	Size              Size
	Color             string
	Story             string
	PersonalityTraits []string
	SpecialNeeds      string
	PhotoURLs         []string
	VideoURL          string
	Health            HealthInfo
}

// Create registra un animal rescatado. Solo organizaciones; el dueño es el actor.
func (s *Service) Create(ctx context.Context, actor auth.Claims, in CreateInput) (Animal, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return Animal{}, sentinel.ErrUnauthorized
	}
	if actor.Role != auth.RoleOrganization {
		return Animal{}, fmt.Errorf("%w: only organizations can create animals", sentinel.ErrForbidden)
	}

	a := Animal{
		ID:             uuid.NewString(),
		ReportID:       strings.TrimSpace(in.ReportID),
		OrganizationID: actor.UserID,
		Breed:          DefaultBreed,
		Gender:         GenderUnknown,
		Status:         StatusAvailable,
		Version:        1,
	}
	if in.Gender == "" {
		in.Gender = GenderUnknown
	}
	if err := applyAttributes(&a, AttributeUpdate{
		Name:              &in.Name,
		Species:           &in.Species,
		Breed:             &in.Breed,
		Gender:            &in.Gender,
		AgeEstimate:       &in.AgeEstimate,
		Size:              &in.Size,
		Color:             &in.Color,
		Story:             &in.Story,
		PersonalityTraits: &in.PersonalityTraits,
		SpecialNeeds:      &in.SpecialNeeds,
		PhotoURLs:         &in.PhotoURLs,
		VideoURL:          &in.VideoURL,
		Health: &HealthUpdate{
			Vaccinated:   &in.Health.Vaccinated,
			Sterilized:   &in.Health.Sterilized,
			Dewormed:     &in.Health.Dewormed,
			MedicalNotes: &in.Health.MedicalNotes,
		},
	}); err != nil {
		return Animal{}, err
	}
	if a.Breed == "" {
		a.Breed = DefaultBreed
	}

	if a.ReportID != "" && s.reports != nil {
		if _, err := s.reports.GetByID(ctx, a.ReportID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return Animal{}, fmt.Errorf("%w: report %s", sentinel.ErrNotFound, a.ReportID)
			}
			return Animal{}, err
		}
	}

	now := s.now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	if err := s.repo.Create(ctx, a); err != nil {
		return Animal{}, err
	}

	s.pub.Publish(ctx, events.Event{
		Kind:     events.AnimalCreated,
		EntityID: a.ID,
		Payload: events.AnimalCreatedPayload{
			AnimalID:       a.ID,
			OrganizationID: a.OrganizationID,
			ReportID:       a.ReportID,
			Name:           a.Name,
		},
	})
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Animal{}, fmt.Errorf("%w: animal", sentinel.ErrNotFound)
	}
	return s.repo.GetByID(ctx, id)
}

// HealthUpdate mezcla campo a campo con la info existente.
type HealthUpdate struct {
	Vaccinated   *bool
	Sterilized   *bool
	Dewormed     *bool
	MedicalNotes *string
}

// AttributeUpdate: nil = no tocar.
type AttributeUpdate struct {
	Name              *string
	Species           *Species
	Breed             *string
	Gender            *Gender
	AgeEstimate       *string
	Size              *Size
	Color             *string
	Story             *string
	PersonalityTraits *[]string
	SpecialNeeds      *string
	PhotoURLs         *[]string
	VideoURL          *string
	Health            *HealthUpdate
}

type TransitionInput struct {
	Status     *Status
	Attributes AttributeUpdate
}

// Transition aplica estado y atributos en una sola escritura condicional.
// Solo la organización dueña o un admin.
func (s *Service) Transition(ctx context.Context, actor auth.Claims, id string, in TransitionInput) (Animal, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}
	if err := canManage(actor, cur); err != nil {
		return Animal{}, err
	}

	next := cur
	next.PersonalityTraits = slices.Clone(cur.PersonalityTraits)
	next.PhotoURLs = slices.Clone(cur.PhotoURLs)
	if err := applyAttributes(&next, in.Attributes); err != nil {
		return Animal{}, err
	}

	now := s.now().UTC()
	statusChanged := false
	if in.Status != nil && *in.Status != cur.Status {
		if err := machine.Check(cur.Status, *in.Status); err != nil {
			return Animal{}, err
		}
		setStatus(&next, *in.Status, now)
		statusChanged = true
	}

	if !statusChanged && sameAttributes(cur, next) {
		return cur, nil
	}
	if machine.Terminal(cur.Status) {
		return Animal{}, fmt.Errorf("%w: animal is %s", sentinel.ErrInvalidTransition, cur.Status)
	}

	next.Version = cur.Version + 1
	next.UpdatedAt = now
	if err := s.repo.Update(ctx, next, cur.Version); err != nil {
		return Animal{}, err
	}

	if statusChanged {
		s.publishStatus(ctx, cur.Status, next)
	}
	return next, nil
}

// SetStatusIf mueve el animal a `to` solo si su estado actual está en from.
// Devuelve changed=false (sin error) si el estado ya no coincide: otra vía
// lo movió y no hay que pisarlo. Reintenta ante ErrConflict releyendo.
func (s *Service) SetStatusIf(ctx context.Context, id string, to Status, from ...Status) (Animal, bool, error) {
	var lastErr error
	for range casAttempts {
		cur, err := s.GetByID(ctx, id)
		if err != nil {
			return Animal{}, false, err
		}
		if cur.Status == to || !slices.Contains(from, cur.Status) {
			return cur, false, nil
		}
		if err := machine.Check(cur.Status, to); err != nil {
			return cur, false, err
		}

		now := s.now().UTC()
		next := cur
		setStatus(&next, to, now)
		next.Version = cur.Version + 1
		next.UpdatedAt = now

		err = s.repo.Update(ctx, next, cur.Version)
		if err == nil {
			s.publishStatus(ctx, cur.Status, next)
			return next, true, nil
		}
		if !errors.Is(err, sentinel.ErrConflict) {
			return Animal{}, false, err
		}
		lastErr = err
	}
	return Animal{}, false, lastErr
}

// Delete hace soft delete. El ledger descuenta si el animal seguía a cargo.
func (s *Service) Delete(ctx context.Context, actor auth.Claims, id string) error {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := canManage(actor, cur); err != nil {
		return err
	}

	next := cur
	next.Deleted = true
	next.Version = cur.Version + 1
	next.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, next, cur.Version); err != nil {
		return err
	}

	s.pub.Publish(ctx, events.Event{
		Kind:     events.AnimalDeleted,
		EntityID: cur.ID,
		Payload: events.AnimalDeletedPayload{
			AnimalID:       cur.ID,
			OrganizationID: cur.OrganizationID,
			Status:         string(cur.Status),
		},
	})
	return nil
}

func (s *Service) publishStatus(ctx context.Context, from Status, a Animal) {
	s.pub.Publish(ctx, events.Event{
		Kind:     events.AnimalStatusChanged,
		EntityID: a.ID,
		Payload: events.AnimalStatusChangedPayload{
			AnimalID:       a.ID,
			OrganizationID: a.OrganizationID,
			From:           string(from),
			To:             string(a.Status),
		},
	})
}

func setStatus(a *Animal, to Status, now time.Time) {
	a.Status = to
	switch {
	case to == StatusAdopted && a.AdoptedAt == nil:
		a.AdoptedAt = &now
	case to != StatusAdopted:
		a.AdoptedAt = nil
	}
}

func canManage(actor auth.Claims, a Animal) error {
	if strings.TrimSpace(actor.UserID) == "" {
		return sentinel.ErrUnauthorized
	}
	if actor.IsAdmin() || actor.UserID == a.OrganizationID {
		return nil
	}
	return fmt.Errorf("%w: animal belongs to another organization", sentinel.ErrForbidden)
}

func applyAttributes(a *Animal, u AttributeUpdate) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" || utf8.RuneCountInString(name) > 50 {
			return fmt.Errorf("%w: name must be 1-50 characters", sentinel.ErrValidation)
		}
		a.Name = name
	}
	if u.Species != nil {
		if !u.Species.Valid() {
			return fmt.Errorf("%w: unknown species %q", sentinel.ErrValidation, *u.Species)
		}
		a.Species = *u.Species
	}
	if u.Gender != nil {
		if !u.Gender.Valid() {
			return fmt.Errorf("%w: unknown gender %q", sentinel.ErrValidation, *u.Gender)
		}
		a.Gender = *u.Gender
	}
	if u.Size != nil {
		if !u.Size.Valid() {
			return fmt.Errorf("%w: unknown size %q", sentinel.ErrValidation, *u.Size)
		}
		a.Size = *u.Size
	}

	texts := []struct {
		dst   *string
		src   *string
		field string
		max   int
	}{
		{&a.Breed, u.Breed, "breed", 100},
		{&a.AgeEstimate, u.AgeEstimate, "age_estimate", 50},
		{&a.Color, u.Color, "color", 100},
		{&a.Story, u.Story, "story", 2000},
		{&a.SpecialNeeds, u.SpecialNeeds, "special_needs", 500},
		{&a.VideoURL, u.VideoURL, "video_url", 2048},
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

	if u.PersonalityTraits != nil {
		traits := cleanList(*u.PersonalityTraits)
		for _, tr := range traits {
			if utf8.RuneCountInString(tr) > 50 {
				return fmt.Errorf("%w: personality trait too long", sentinel.ErrValidation)
			}
		}
		a.PersonalityTraits = traits
	}
	if u.PhotoURLs != nil {
		photos := cleanList(*u.PhotoURLs)
		if len(photos) == 0 {
			return fmt.Errorf("%w: at least one photo is required", sentinel.ErrValidation)
		}
		a.PhotoURLs = photos
	}

	if h := u.Health; h != nil {
		if h.Vaccinated != nil {
			a.Health.Vaccinated = *h.Vaccinated
		}
		if h.Sterilized != nil {
			a.Health.Sterilized = *h.Sterilized
		}
		if h.Dewormed != nil {
			a.Health.Dewormed = *h.Dewormed
		}
		if h.MedicalNotes != nil {
			notes := strings.TrimSpace(*h.MedicalNotes)
			if utf8.RuneCountInString(notes) > 1000 {
				return fmt.Errorf("%w: medical notes too long", sentinel.ErrValidation)
			}
			a.Health.MedicalNotes = notes
		}
	}
	return nil
}

func sameAttributes(a, b Animal) bool {
	return a.Name == b.Name &&
		a.Species == b.Species &&
		a.Breed == b.Breed &&
		a.Gender == b.Gender &&
		a.AgeEstimate == b.AgeEstimate &&
		a.Size == b.Size &&
		a.Color == b.Color &&
		a.Story == b.Story &&
		slices.Equal(a.PersonalityTraits, b.PersonalityTraits) &&
		a.SpecialNeeds == b.SpecialNeeds &&
		slices.Equal(a.PhotoURLs, b.PhotoURLs) &&
		a.VideoURL == b.VideoURL &&
		a.Health == b.Health
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
