package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"epaws/internal/domain/adoptions"
)

// AdoptionsRepo delega el dedup en el índice único parcial
// adoptions_active_pair_uq: una violación llega como ErrConflict.
type AdoptionsRepo struct {
	db *sql.DB
}

var _ adoptions.Repository = (*AdoptionsRepo)(nil)

func NewAdoptionsRepo(db *sql.DB) *AdoptionsRepo {
	return &AdoptionsRepo{db: db}
}

const adoptionColumns = `
	id, animal_id, adopter_id, organization_id,
	message, adopter_info, status, review_notes, rejection_reason,
	applied_at, reviewed_at, completed_at, version, created_at, updated_at`

func (r *AdoptionsRepo) Create(ctx context.Context, a adoptions.Adoption) error {
	info, err := json.Marshal(a.AdopterInfo)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO adoptions (`+adoptionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		a.ID, a.AnimalID, a.AdopterID, a.OrganizationID,
		a.Message, info, a.Status, a.ReviewNotes, a.RejectionReason,
		a.AppliedAt, nullTime(a.ReviewedAt), nullTime(a.CompletedAt), a.Version, a.CreatedAt, a.UpdatedAt,
	)
	return mapErr(err, "adoption for animal "+a.AnimalID)
}

func (r *AdoptionsRepo) GetByID(ctx context.Context, id string) (adoptions.Adoption, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+adoptionColumns+` FROM adoptions WHERE id = $1`, id)

	var (
		a           adoptions.Adoption
		info        []byte
		reviewedAt  sql.NullTime
		completedAt sql.NullTime
	)
	if err := row.Scan(
		&a.ID, &a.AnimalID, &a.AdopterID, &a.OrganizationID,
		&a.Message, &info, &a.Status, &a.ReviewNotes, &a.RejectionReason,
		&a.AppliedAt, &reviewedAt, &completedAt, &a.Version, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return adoptions.Adoption{}, mapErr(err, "adoption "+id)
	}
	if err := fromJSONB(info, &a.AdopterInfo); err != nil {
		return adoptions.Adoption{}, err
	}
	a.ReviewedAt = timePtr(reviewedAt)
	a.CompletedAt = timePtr(completedAt)
	return a, nil
}

func (r *AdoptionsRepo) Update(ctx context.Context, a adoptions.Adoption, prevVersion int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE adoptions
		SET
			status = $2,
			review_notes = $3,
			rejection_reason = $4,
			reviewed_at = $5,
			completed_at = $6,
			version = $7,
			updated_at = $8
		WHERE id = $1 AND version = $9
	`,
		a.ID, a.Status, a.ReviewNotes, a.RejectionReason,
		nullTime(a.ReviewedAt), nullTime(a.CompletedAt),
		a.Version, a.UpdatedAt, prevVersion,
	)
	if err != nil {
		return mapErr(err, "adoption "+a.ID)
	}
	return checkUpdated(ctx, r.db, res, "adoptions", a.ID, "adoption "+a.ID)
}

func (r *AdoptionsRepo) HasActive(ctx context.Context, animalID, adopterID string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM adoptions
			WHERE animal_id = $1 AND adopter_id = $2
			  AND status IN ('pending', 'under_review', 'approved')
		)
	`, animalID, adopterID).Scan(&ok)
	return ok, err
}
