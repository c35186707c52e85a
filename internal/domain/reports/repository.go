package reports

import (
	"context"

	"epaws/internal/domain/geo"
)

type Repository interface {
	Create(ctx context.Context, r Report) error
	GetByID(ctx context.Context, id string) (Report, error)
	// Update escribe solo si la versión almacenada es prevVersion; si no, ErrConflict.
	Update(ctx context.Context, r Report, prevVersion int64) error
	// Nearby devuelve reportes en statuses dentro de q, más cercanos primero.
	Nearby(ctx context.Context, q geo.Query, statuses []Status) ([]Nearby, error)
}
