package notifications

import (
	"context"
	"time"
)

type ListFilter struct {
	Unread *bool // nil = todas
	Type   Type  // "" = todos
	Limit  int
	Offset int
}

// Repository: todas las operaciones de buzón van acotadas por userID.
// Una notificación de otro usuario se trata como inexistente.
type Repository interface {
	Create(ctx context.Context, n Notification) error
	List(ctx context.Context, userID string, f ListFilter) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string, at time.Time) (Notification, error)
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteRead(ctx context.Context, userID string) (int64, error)
	// DeleteReadBefore es el barrido de retención: solo leídas y creadas antes de cutoff.
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
