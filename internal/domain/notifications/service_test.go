package notifications

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"epaws/internal/domain/events"
	"epaws/internal/platform/sentinel"
)

// testRepo: buzón en memoria para tests del paquete.
type testRepo struct {
	mu   sync.Mutex
	byID map[string]Notification
}

func newTestRepo() *testRepo { return &testRepo{byID: map[string]Notification{}} }

func (r *testRepo) Create(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[n.ID] = n
	return nil
}

func (r *testRepo) List(_ context.Context, userID string, f ListFilter) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Notification{}
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
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Offset >= len(out) {
		return []Notification{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *testRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c int64
	for _, n := range r.byID {
		if n.UserID == userID && !n.Read {
			c++
		}
	}
	return c, nil
}

func (r *testRepo) MarkRead(_ context.Context, userID, id string, at time.Time) (Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok || n.UserID != userID {
		return Notification{}, sentinel.ErrNotFound
	}
	if !n.Read {
		n.Read = true
		n.ReadAt = &at
		r.byID[id] = n
	}
	return n, nil
}

func (r *testRepo) MarkAllRead(_ context.Context, userID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c int64
	for id, n := range r.byID {
		if n.UserID == userID && !n.Read {
			n.Read = true
			n.ReadAt = &at
			r.byID[id] = n
			c++
		}
	}
	return c, nil
}

func (r *testRepo) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok || n.UserID != userID {
		return sentinel.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) DeleteRead(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c int64
	for id, n := range r.byID {
		if n.UserID == userID && n.Read {
			delete(r.byID, id)
			c++
		}
	}
	return c, nil
}

func (r *testRepo) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c int64
	for id, n := range r.byID {
		if n.Read && n.CreatedAt.Before(cutoff) {
			delete(r.byID, id)
			c++
		}
	}
	return c, nil
}

func (r *testRepo) forUser(userID string) []Notification {
	items, _ := r.List(context.Background(), userID, ListFilter{})
	return items
}

func seed(t *testing.T, repo *testRepo, userID string, n int, base time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		_ = repo.Create(context.Background(), Notification{
			ID:        fmt.Sprintf("%s-%d", userID, i),
			UserID:    userID,
			Type:      TypeSystem,
			Title:     "t",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
}

func TestMailbox_OwnershipAndBulkOps(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	seed(t, repo, "alice", 3, now.Add(-time.Hour))
	seed(t, repo, "bob", 2, now.Add(-time.Hour))

	// bob no puede tocar notificaciones de alice
	if _, err := svc.MarkRead(ctx, "bob", "alice-0"); !errors.Is(err, sentinel.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign notification, got %v", err)
	}
	if err := svc.Delete(ctx, "bob", "alice-0"); !errors.Is(err, sentinel.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}

	n, err := svc.MarkRead(ctx, "alice", "alice-0")
	if err != nil || !n.Read || !n.ReadAt.Equal(now) {
		t.Fatalf("unexpected mark read %+v err=%v", n, err)
	}

	if c, _ := svc.UnreadCount(ctx, "alice"); c != 2 {
		t.Fatalf("expected 2 unread, got %d", c)
	}

	if c, _ := svc.MarkAllRead(ctx, "alice"); c != 2 {
		t.Fatalf("expected 2 marked, got %d", c)
	}
	if c, _ := svc.DeleteAllRead(ctx, "alice"); c != 3 {
		t.Fatalf("expected 3 deleted, got %d", c)
	}

	if len(repo.forUser("bob")) != 2 {
		t.Fatalf("bulk ops leaked into another mailbox")
	}
}

func TestList_FiltersAndLimits(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	seed(t, repo, "alice", 30, base)
	ctx := context.Background()

	items, err := svc.List(ctx, "alice", ListFilter{})
	if err != nil || len(items) != defaultListLimit {
		t.Fatalf("expected default limit, got %d err=%v", len(items), err)
	}
	if items[0].ID != "alice-29" {
		t.Fatalf("expected newest first, got %s", items[0].ID)
	}

	items, _ = svc.List(ctx, "alice", ListFilter{Limit: 1000})
	if len(items) != 30 {
		t.Fatalf("expected 30 (under max), got %d", len(items))
	}

	if _, err := svc.List(ctx, "alice", ListFilter{Type: "spam"}); !errors.Is(err, sentinel.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := svc.List(ctx, "", ListFilter{}); !errors.Is(err, sentinel.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSweeper_OnlyOldReadNotifications(t *testing.T) {
	repo := newTestRepo()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	old := now.Add(-31 * 24 * time.Hour)
	recent := now.Add(-29 * 24 * time.Hour)
	readAt := now

	_ = repo.Create(ctx, Notification{ID: "old-read", UserID: "u", Read: true, ReadAt: &readAt, CreatedAt: old})
	_ = repo.Create(ctx, Notification{ID: "old-unread", UserID: "u", CreatedAt: old})
	_ = repo.Create(ctx, Notification{ID: "recent-read", UserID: "u", Read: true, ReadAt: &readAt, CreatedAt: recent})

	sw := NewSweeper(repo, 0, 0, nil, nil)
	sw.now = func() time.Time { return now }

	n, err := sw.SweepOnce(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 swept, got %d err=%v", n, err)
	}
	if _, ok := repo.byID["old-read"]; ok {
		t.Fatalf("old read notification should be gone")
	}
	if len(repo.byID) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(repo.byID))
	}
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	sw := NewSweeper(newTestRepo(), time.Hour, time.Millisecond, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sw.Run(ctx) }()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("sweeper did not stop")
	}
}

func TestProjector_Recipients(t *testing.T) {
	repo := newTestRepo()
	p := NewProjector(NewDispatcher(repo, nil, nil), NewTemplates("es"))
	ctx := context.Background()

	publish := func(pl any) {
		if err := p.Handle(ctx, events.Event{Payload: pl}); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}

	publish(events.ReportStatusChangedPayload{ReportID: "r1", ReporterID: "citizen", From: "pending", To: "assigned"})
	publish(events.ReportAssignedPayload{ReportID: "r1", Party: events.PartyOrganization, AssigneeID: "org", AnimalType: "cat"})
	publish(events.ReportAssignedPayload{ReportID: "r1", Party: events.PartyClinic, AssigneeID: "vet"})
	publish(events.AdoptionSubmittedPayload{AdoptionID: "ad1", AnimalName: "Luna", AdopterID: "adopter", OrganizationID: "org"})
	publish(events.AdoptionStatusChangedPayload{AdoptionID: "ad1", AdopterID: "adopter", OrganizationID: "org", From: "pending", To: "approved"})
	publish(events.AdoptionStatusChangedPayload{AdoptionID: "ad1", AdopterID: "adopter", OrganizationID: "org", From: "approved", To: "cancelled", ByAdopter: true, AnimalName: "Luna"})
	publish(events.MedicalRecordCreatedPayload{RecordID: "m1", AnimalName: "Luna", ClinicID: "vet", OrganizationID: "org"})
	publish(events.MedicalRecordStatusChangedPayload{RecordID: "m1", OrganizationID: "org", From: "scheduled", To: "in_progress"})
	publish(events.MedicalRecordStatusChangedPayload{RecordID: "m1", AnimalName: "Luna", OrganizationID: "org", From: "in_progress", To: "completed"})

	citizen := repo.forUser("citizen")
	if len(citizen) != 1 || citizen[0].Body != "Tu reporte ha cambiado de estado a: assigned" {
		t.Fatalf("unexpected citizen mailbox %+v", citizen)
	}
	if got := len(repo.forUser("vet")); got != 1 {
		t.Fatalf("expected 1 clinic notification, got %d", got)
	}
	adopter := repo.forUser("adopter")
	if len(adopter) != 1 || adopter[0].Body != "¡Tu solicitud de adopción ha sido aprobada!" {
		t.Fatalf("unexpected adopter mailbox %+v", adopter)
	}
	// new_case + submitted + cancelled + medical created + medical completed
	if got := len(repo.forUser("org")); got != 5 {
		t.Fatalf("expected 5 org notifications, got %d", got)
	}
}
