package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"epaws/internal/domain/medical"
	"epaws/internal/platform/sentinel"
)

type medicalRepo struct {
	mu   sync.RWMutex
	byID map[string]medical.Record
}

func NewMedicalRepo() medical.Repository {
	return &medicalRepo{
		byID: make(map[string]medical.Record),
	}
}

func (r *medicalRepo) Create(ctx context.Context, rec medical.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("%w: medical record id required", sentinel.ErrValidation)
	}
	if _, exists := r.byID[rec.ID]; exists {
		return fmt.Errorf("%w: medical record %s already exists", sentinel.ErrConflict, rec.ID)
	}
	r.byID[rec.ID] = cloneRecord(rec)
	return nil
}

func (r *medicalRepo) GetByID(ctx context.Context, id string) (medical.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return medical.Record{}, fmt.Errorf("%w: medical record %s", sentinel.ErrNotFound, id)
	}
	return cloneRecord(rec), nil
}

func (r *medicalRepo) Update(ctx context.Context, rec medical.Record, prevVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[rec.ID]
	if !ok {
		return fmt.Errorf("%w: medical record %s", sentinel.ErrNotFound, rec.ID)
	}
	if cur.Version != prevVersion {
		return fmt.Errorf("%w: medical record %s was modified concurrently", sentinel.ErrConflict, rec.ID)
	}
	r.byID[rec.ID] = cloneRecord(rec)
	return nil
}

func cloneRecord(rec medical.Record) medical.Record {
	rec.Medications = slices.Clone(rec.Medications)
	rec.Documents = slices.Clone(rec.Documents)
	rec.PhotoURLs = slices.Clone(rec.PhotoURLs)
	return rec
}
