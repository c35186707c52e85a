package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"epaws/internal/domain/ledger"
	"epaws/internal/platform/sentinel"
)

// LedgerStore guarda los contadores como columnas de organizations. El ajuste
// es un único UPDATE con GREATEST, así que el piso en cero lo aplica la base.
type LedgerStore struct {
	db *sql.DB
}

var _ ledger.Store = (*LedgerStore)(nil)

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func (s *LedgerStore) Adjust(ctx context.Context, orgID string, f ledger.Field, delta int64) (int64, error) {
	col := f.Column()
	if col == "" {
		return 0, fmt.Errorf("%w: unknown ledger field %q", sentinel.ErrValidation, f)
	}

	var v int64
	err := s.db.QueryRowContext(ctx, `
		UPDATE organizations
		SET `+col+` = GREATEST(`+col+` + $2, 0)
		WHERE id = $1
		RETURNING `+col,
		orgID, delta,
	).Scan(&v)
	if err != nil {
		return 0, mapErr(err, "organization "+orgID)
	}
	return v, nil
}

func (s *LedgerStore) Get(ctx context.Context, orgID string) (ledger.Counters, error) {
	var c ledger.Counters
	err := s.db.QueryRowContext(ctx, `
		SELECT current_animals, total_rescues, total_cases_handled
		FROM organizations
		WHERE id = $1
	`, orgID).Scan(&c.CurrentAnimals, &c.TotalRescues, &c.TotalCasesHandled)
	if err != nil {
		return ledger.Counters{}, mapErr(err, "organization "+orgID)
	}
	return c, nil
}
