package memory

import (
	"context"
	"fmt"
	"sync"

	"epaws/internal/domain/ledger"
	"epaws/internal/platform/sentinel"
)

// ledgerStore serializa los ajustes con un mutex; el clamp ocurre dentro
// de la sección crítica, igual que el GREATEST del adapter SQL.
type ledgerStore struct {
	mu    sync.Mutex
	byOrg map[string]ledger.Counters
}

func NewLedgerStore() ledger.Store {
	return &ledgerStore{
		byOrg: make(map[string]ledger.Counters),
	}
}

func (s *ledgerStore) Adjust(ctx context.Context, orgID string, f ledger.Field, delta int64) (int64, error) {
	if !f.Valid() {
		return 0, fmt.Errorf("%w: unknown ledger field %q", sentinel.ErrValidation, f)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.byOrg[orgID]
	next := ledger.Clamp(get(c, f), delta)
	c.Set(f, next)
	s.byOrg[orgID] = c
	return next, nil
}

func (s *ledgerStore) Get(ctx context.Context, orgID string) (ledger.Counters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.byOrg[orgID], nil
}

func get(c ledger.Counters, f ledger.Field) int64 {
	switch f {
	case ledger.CurrentAnimals:
		return c.CurrentAnimals
	case ledger.TotalRescues:
		return c.TotalRescues
	case ledger.TotalCasesHandled:
		return c.TotalCasesHandled
	default:
		return 0
	}
}
