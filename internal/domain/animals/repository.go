package animals

import "context"

type Repository interface {
	Create(ctx context.Context, a Animal) error
	// GetByID devuelve ErrNotFound también para animales borrados.
	GetByID(ctx context.Context, id string) (Animal, error)
	// Update escribe solo si la versión almacenada es prevVersion; si no, ErrConflict.
	Update(ctx context.Context, a Animal, prevVersion int64) error
}
