package medical

import "context"

type Repository interface {
	Create(ctx context.Context, r Record) error
	GetByID(ctx context.Context, id string) (Record, error)
	Update(ctx context.Context, r Record, prevVersion int64) error
}
