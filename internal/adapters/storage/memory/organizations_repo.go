package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"epaws/internal/domain/geo"
	"epaws/internal/domain/organizations"
	"epaws/internal/platform/sentinel"
)

type organizationRepo struct {
	mu   sync.RWMutex
	byID map[string]organizations.Organization
}

func NewOrganizationRepo() organizations.Repository {
	return &organizationRepo{
		byID: make(map[string]organizations.Organization),
	}
}

func (r *organizationRepo) Create(ctx context.Context, o organizations.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("%w: organization id required", sentinel.ErrValidation)
	}
	if _, exists := r.byID[o.ID]; exists {
		return fmt.Errorf("%w: organization %s already exists", sentinel.ErrConflict, o.ID)
	}
	r.byID[o.ID] = cloneOrganization(o)
	return nil
}

func (r *organizationRepo) GetByID(ctx context.Context, id string) (organizations.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return organizations.Organization{}, fmt.Errorf("%w: organization %s", sentinel.ErrNotFound, id)
	}
	return cloneOrganization(o), nil
}

func (r *organizationRepo) NearbyClinics(ctx context.Context, q geo.Query) ([]organizations.Nearby, error) {
	r.mu.RLock()
	candidates := make([]organizations.Organization, 0)
	for _, o := range r.byID {
		if o.Kind == organizations.KindClinic && o.Verified && o.Active && o.Location != nil {
			candidates = append(candidates, cloneOrganization(o))
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(candidates, func(a, b organizations.Organization) int { return strings.Compare(a.ID, b.ID) })

	matches := geo.Nearest(q, candidates, func(o organizations.Organization) (geo.Point, bool) {
		return *o.Location, true
	})
	out := make([]organizations.Nearby, 0, len(matches))
	for _, m := range matches {
		out = append(out, organizations.Nearby{Organization: m.Item, Distance: m.Distance})
	}
	return out, nil
}

func cloneOrganization(o organizations.Organization) organizations.Organization {
	o.Specialties = slices.Clone(o.Specialties)
	if o.Location != nil {
		loc := *o.Location
		o.Location = &loc
	}
	return o
}
