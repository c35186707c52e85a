package organizations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"epaws/internal/domain/geo"
	"epaws/internal/domain/ledger"
	"epaws/internal/platform/metrics"
	"epaws/internal/platform/sentinel"
	"epaws/internal/ports/auth"
)

// CounterReader es la parte del ledger que necesita la vista de detalle.
type CounterReader interface {
	Get(ctx context.Context, orgID string) (ledger.Counters, error)
}

type Service struct {
	repo     Repository
	counters CounterReader
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(repo Repository, counters CounterReader, m *metrics.Metrics) *Service {
	return &Service{
		repo:     repo,
		counters: counters,
		metrics:  m,
		now:      time.Now,
	}
}

type RegisterInput struct {
	ID          string // opcional: ID del principal ya existente
	Kind        Kind
	Name        string
	Email       string
	Phone       string
	Address     string
	Location    *geo.Point
	Specialties []string
	Verified    bool
}

// Register da de alta una organización o clínica. Solo admin.
func (s *Service) Register(ctx context.Context, actor auth.Claims, in RegisterInput) (Organization, error) {
	if !actor.IsAdmin() {
		return Organization{}, fmt.Errorf("%w: only admins can register organizations", sentinel.ErrForbidden)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Organization{}, fmt.Errorf("%w: name required", sentinel.ErrValidation)
	}
	if in.Kind != KindOrganization && in.Kind != KindClinic {
		return Organization{}, fmt.Errorf("%w: kind must be organization or clinic", sentinel.ErrValidation)
	}
	if in.Location != nil {
		if err := in.Location.Validate(); err != nil {
			return Organization{}, err
		}
	}
	if in.Kind == KindClinic && in.Location == nil {
		return Organization{}, fmt.Errorf("%w: clinics require a location", sentinel.ErrValidation)
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}

	now := s.now()
	o := Organization{
		ID:          id,
		Kind:        in.Kind,
		Name:        name,
		Email:       strings.TrimSpace(in.Email),
		Phone:       strings.TrimSpace(in.Phone),
		Address:     strings.TrimSpace(in.Address),
		Location:    in.Location,
		Specialties: cleanList(in.Specialties),
		Verified:    in.Verified,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return Organization{}, err
	}
	return o, nil
}

// GetByID incluye los contadores del ledger.
func (s *Service) GetByID(ctx context.Context, id string) (Organization, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Organization{}, fmt.Errorf("%w: organization", sentinel.ErrNotFound)
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Organization{}, err
	}
	if s.counters != nil {
		c, err := s.counters.Get(ctx, id)
		if err != nil {
			return Organization{}, err
		}
		o.Counters = c
	}
	return o, nil
}

// NearbyClinics: clínicas verificadas y activas, más cercanas primero, máx 20.
// maxDistance nil usa el radio por defecto (20 km).
func (s *Service) NearbyClinics(ctx context.Context, origin geo.Point, maxDistance *float64) ([]Nearby, error) {
	q, err := geo.Normalize(origin, maxDistance, geo.DefaultClinicRadius, geo.ClinicPageSize)
	if err != nil {
		return nil, err
	}

	start := s.now()
	defer func() { s.metrics.ObserveNearby("clinics", s.now().Sub(start)) }()

	return s.repo.NearbyClinics(ctx, q)
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
