package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"epaws/internal/platform/sentinel"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service: operaciones de buzón del propio usuario.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func requireUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", sentinel.ErrUnauthorized
	}
	return userID, nil
}

func (s *Service) List(ctx context.Context, userID string, f ListFilter) ([]Notification, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	if f.Type != "" && !f.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown notification type %q", sentinel.ErrValidation, f.Type)
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, userID, f)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return 0, err
	}
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead es idempotente: una ya leída conserva su ReadAt original.
func (s *Service) MarkRead(ctx context.Context, userID, id string) (Notification, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return Notification{}, err
	}
	if strings.TrimSpace(id) == "" {
		return Notification{}, fmt.Errorf("%w: notification", sentinel.ErrNotFound)
	}
	return s.repo.MarkRead(ctx, userID, strings.TrimSpace(id), s.now().UTC())
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return 0, err
	}
	return s.repo.MarkAllRead(ctx, userID, s.now().UTC())
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	userID, err := requireUser(userID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: notification", sentinel.ErrNotFound)
	}
	return s.repo.Delete(ctx, userID, strings.TrimSpace(id))
}

func (s *Service) DeleteAllRead(ctx context.Context, userID string) (int64, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return 0, err
	}
	return s.repo.DeleteRead(ctx, userID)
}
