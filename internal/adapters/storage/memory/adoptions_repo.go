package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"epaws/internal/domain/adoptions"
	"epaws/internal/platform/sentinel"
)

type pairKey struct {
	animalID  string
	adopterID string
}

// adoptionRepo mantiene un índice de solicitudes activas por (animal, adoptante)
// que hace de restricción única bajo el mismo lock de escritura.
type adoptionRepo struct {
	mu     sync.RWMutex
	byID   map[string]adoptions.Adoption
	active map[pairKey]string
}

func NewAdoptionRepo() adoptions.Repository {
	return &adoptionRepo{
		byID:   make(map[string]adoptions.Adoption),
		active: make(map[pairKey]string),
	}
}

func (r *adoptionRepo) Create(ctx context.Context, a adoptions.Adoption) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("%w: adoption id required", sentinel.ErrValidation)
	}
	if _, exists := r.byID[a.ID]; exists {
		return fmt.Errorf("%w: adoption %s already exists", sentinel.ErrConflict, a.ID)
	}
	key := pairKey{a.AnimalID, a.AdopterID}
	if a.Status.Active() {
		if other, taken := r.active[key]; taken {
			return fmt.Errorf("%w: active adoption %s already exists for this animal", sentinel.ErrConflict, other)
		}
		r.active[key] = a.ID
	}
	r.byID[a.ID] = a
	return nil
}

func (r *adoptionRepo) GetByID(ctx context.Context, id string) (adoptions.Adoption, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return adoptions.Adoption{}, fmt.Errorf("%w: adoption %s", sentinel.ErrNotFound, id)
	}
	return a, nil
}

func (r *adoptionRepo) Update(ctx context.Context, a adoptions.Adoption, prevVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[a.ID]
	if !ok {
		return fmt.Errorf("%w: adoption %s", sentinel.ErrNotFound, a.ID)
	}
	if cur.Version != prevVersion {
		return fmt.Errorf("%w: adoption %s was modified concurrently", sentinel.ErrConflict, a.ID)
	}

	key := pairKey{a.AnimalID, a.AdopterID}
	if a.Status.Active() {
		if other, taken := r.active[key]; taken && other != a.ID {
			return fmt.Errorf("%w: active adoption %s already exists for this animal", sentinel.ErrConflict, other)
		}
		r.active[key] = a.ID
	} else if r.active[key] == a.ID {
		delete(r.active, key)
	}
	r.byID[a.ID] = a
	return nil
}

func (r *adoptionRepo) HasActive(ctx context.Context, animalID, adopterID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.active[pairKey{animalID, adopterID}]
	return ok, nil
}
