package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"epaws/internal/domain/notifications"
	"epaws/internal/platform/sentinel"
)

type notificationRepo struct {
	mu   sync.RWMutex
	byID map[string]notifications.Notification
}

func NewNotificationRepo() notifications.Repository {
	return &notificationRepo{
		byID: make(map[string]notifications.Notification),
	}
}

func (r *notificationRepo) Create(ctx context.Context, n notifications.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(n.ID) == "" {
		return fmt.Errorf("%w: notification id required", sentinel.ErrValidation)
	}
	if _, exists := r.byID[n.ID]; exists {
		return fmt.Errorf("%w: notification %s already exists", sentinel.ErrConflict, n.ID)
	}
	r.byID[n.ID] = n
	return nil
}

func (r *notificationRepo) List(ctx context.Context, userID string, f notifications.ListFilter) ([]notifications.Notification, error) {
	r.mu.RLock()
	out := make([]notifications.Notification, 0)
	for _, n := range r.byID {
		if n.UserID != userID {
			continue
		}
		if f.Unread != nil && n.Read == *f.Unread {
			continue
		}
		if f.Type != "" && n.Type != f.Type {
			continue
		}
		out = append(out, n)
	}
	r.mu.RUnlock()

	// más recientes primero
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []notifications.Notification{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, it := range r.byID {
		if it.UserID == userID && !it.Read {
			n++
		}
	}
	return n, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, userID, id string, at time.Time) (notifications.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.byID[id]
	if !ok || n.UserID != userID {
		return notifications.Notification{}, fmt.Errorf("%w: notification %s", sentinel.ErrNotFound, id)
	}
	if !n.Read {
		n.Read = true
		n.ReadAt = &at
		r.byID[id] = n
	}
	return n, nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var changed int64
	for id, n := range r.byID {
		if n.UserID != userID || n.Read {
			continue
		}
		n.Read = true
		n.ReadAt = &at
		r.byID[id] = n
		changed++
	}
	return changed, nil
}

func (r *notificationRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.byID[id]
	if !ok || n.UserID != userID {
		return fmt.Errorf("%w: notification %s", sentinel.ErrNotFound, id)
	}
	delete(r.byID, id)
	return nil
}

func (r *notificationRepo) DeleteRead(ctx context.Context, userID string) (int64, error) {
	return r.deleteWhere(func(n notifications.Notification) bool {
		return n.UserID == userID && n.Read
	}), nil
}

func (r *notificationRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.deleteWhere(func(n notifications.Notification) bool {
		return n.Read && n.CreatedAt.Before(cutoff)
	}), nil
}

func (r *notificationRepo) deleteWhere(match func(notifications.Notification) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, n := range r.byID {
		if match(n) {
			delete(r.byID, id)
			removed++
		}
	}
	return removed
}
