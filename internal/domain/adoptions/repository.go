package adoptions

import "context"

type Repository interface {
	// Create devuelve ErrConflict si ya existe una solicitud activa para el
	// mismo (animal, adoptante). Es el punto real de enforcement del dedup.
	Create(ctx context.Context, a Adoption) error
	GetByID(ctx context.Context, id string) (Adoption, error)
	Update(ctx context.Context, a Adoption, prevVersion int64) error
	HasActive(ctx context.Context, animalID, adopterID string) (bool, error)
}
