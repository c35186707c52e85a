package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"epaws/internal/domain/geo"
	"epaws/internal/domain/reports"
	"epaws/internal/platform/sentinel"
)

type reportRepo struct {
	mu   sync.RWMutex
	byID map[string]reports.Report
}

func NewReportRepo() reports.Repository {
	return &reportRepo{
		byID: make(map[string]reports.Report),
	}
}

func (r *reportRepo) Create(ctx context.Context, rp reports.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rp.ID) == "" {
		return fmt.Errorf("%w: report id required", sentinel.ErrValidation)
	}
	if _, exists := r.byID[rp.ID]; exists {
		return fmt.Errorf("%w: report %s already exists", sentinel.ErrConflict, rp.ID)
	}
	r.byID[rp.ID] = cloneReport(rp)
	return nil
}

func (r *reportRepo) GetByID(ctx context.Context, id string) (reports.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rp, ok := r.byID[id]
	if !ok {
		return reports.Report{}, fmt.Errorf("%w: report %s", sentinel.ErrNotFound, id)
	}
	return cloneReport(rp), nil
}

func (r *reportRepo) Update(ctx context.Context, rp reports.Report, prevVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[rp.ID]
	if !ok {
		return fmt.Errorf("%w: report %s", sentinel.ErrNotFound, rp.ID)
	}
	if cur.Version != prevVersion {
		return fmt.Errorf("%w: report %s was modified concurrently", sentinel.ErrConflict, rp.ID)
	}
	r.byID[rp.ID] = cloneReport(rp)
	return nil
}

func (r *reportRepo) Nearby(ctx context.Context, q geo.Query, statuses []reports.Status) ([]reports.Nearby, error) {
	r.mu.RLock()
	candidates := make([]reports.Report, 0, len(r.byID))
	for _, rp := range r.byID {
		if slices.Contains(statuses, rp.Status) {
			candidates = append(candidates, cloneReport(rp))
		}
	}
	r.mu.RUnlock()

	// orden estable ante empates de distancia
	slices.SortFunc(candidates, func(a, b reports.Report) int { return strings.Compare(a.ID, b.ID) })

	matches := geo.Nearest(q, candidates, func(rp reports.Report) (geo.Point, bool) { return rp.Location, true })
	out := make([]reports.Nearby, 0, len(matches))
	for _, m := range matches {
		out = append(out, reports.Nearby{Report: m.Item, Distance: m.Distance})
	}
	return out, nil
}

func cloneReport(rp reports.Report) reports.Report {
	rp.PhotoURLs = slices.Clone(rp.PhotoURLs)
	return rp
}
