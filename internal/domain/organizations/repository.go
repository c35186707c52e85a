package organizations

import (
	"context"

	"epaws/internal/domain/geo"
)

type Repository interface {
	Create(ctx context.Context, o Organization) error
	GetByID(ctx context.Context, id string) (Organization, error)
	// NearbyClinics devuelve solo clínicas verificadas y activas dentro de q.
	NearbyClinics(ctx context.Context, q geo.Query) ([]Nearby, error)
}
