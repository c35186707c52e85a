package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"epaws/internal/domain/animals"
	"epaws/internal/platform/sentinel"
)

type animalRepo struct {
	mu   sync.RWMutex
	byID map[string]animals.Animal
}

func NewAnimalRepo() animals.Repository {
	return &animalRepo{
		byID: make(map[string]animals.Animal),
	}
}

func (r *animalRepo) Create(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("%w: animal id required", sentinel.ErrValidation)
	}
	if _, exists := r.byID[a.ID]; exists {
		return fmt.Errorf("%w: animal %s already exists", sentinel.ErrConflict, a.ID)
	}
	r.byID[a.ID] = cloneAnimal(a)
	return nil
}

func (r *animalRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok || a.Deleted {
		return animals.Animal{}, fmt.Errorf("%w: animal %s", sentinel.ErrNotFound, id)
	}
	return cloneAnimal(a), nil
}

func (r *animalRepo) Update(ctx context.Context, a animals.Animal, prevVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[a.ID]
	if !ok || cur.Deleted {
		return fmt.Errorf("%w: animal %s", sentinel.ErrNotFound, a.ID)
	}
	if cur.Version != prevVersion {
		return fmt.Errorf("%w: animal %s was modified concurrently", sentinel.ErrConflict, a.ID)
	}
	r.byID[a.ID] = cloneAnimal(a)
	return nil
}

func cloneAnimal(a animals.Animal) animals.Animal {
	a.PersonalityTraits = slices.Clone(a.PersonalityTraits)
	a.PhotoURLs = slices.Clone(a.PhotoURLs)
	return a
}
