package postgres

import (
	"context"
	"database/sql"

	"epaws/internal/domain/geo"
	"epaws/internal/domain/reports"
)

type ReportsRepo struct {
	db *sql.DB
}

var _ reports.Repository = (*ReportsRepo)(nil)

func NewReportsRepo(db *sql.DB) *ReportsRepo {
	return &ReportsRepo{db: db}
}

const reportColumns = `
	id, reporter_id, organization_id, clinic_id,
	description, urgency, animal_type, status,
	lon, lat, address, photo_urls, notes,
	rescued_at, closed_at, version, created_at, updated_at`

func (r *ReportsRepo) Create(ctx context.Context, rp reports.Report) error {
	photos, err := jsonb(rp.PhotoURLs)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO reports (`+reportColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`,
		rp.ID, rp.ReporterID, rp.OrganizationID, rp.ClinicID,
		rp.Description, rp.Urgency, rp.AnimalType, rp.Status,
		rp.Location.Lon, rp.Location.Lat, rp.Address, photos, rp.Notes,
		nullTime(rp.RescuedAt), nullTime(rp.ClosedAt), rp.Version, rp.CreatedAt, rp.UpdatedAt,
	)
	return mapErr(err, "report "+rp.ID)
}

func (r *ReportsRepo) GetByID(ctx context.Context, id string) (reports.Report, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	rp, err := scanReport(row)
	if err != nil {
		return reports.Report{}, mapErr(err, "report "+id)
	}
	return rp, nil
}

func (r *ReportsRepo) Update(ctx context.Context, rp reports.Report, prevVersion int64) error {
	photos, err := jsonb(rp.PhotoURLs)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE reports
		SET
			organization_id = $2,
			clinic_id = $3,
			description = $4,
			urgency = $5,
			animal_type = $6,
			status = $7,
			address = $8,
			photo_urls = $9,
			notes = $10,
			rescued_at = $11,
			closed_at = $12,
			version = $13,
			updated_at = $14
		WHERE id = $1 AND version = $15
	`,
		rp.ID, rp.OrganizationID, rp.ClinicID,
		rp.Description, rp.Urgency, rp.AnimalType, rp.Status,
		rp.Address, photos, rp.Notes,
		nullTime(rp.RescuedAt), nullTime(rp.ClosedAt),
		rp.Version, rp.UpdatedAt, prevVersion,
	)
	if err != nil {
		return mapErr(err, "report "+rp.ID)
	}
	return checkUpdated(ctx, r.db, res, "reports", rp.ID, "report "+rp.ID)
}

func (r *ReportsRepo) Nearby(ctx context.Context, q geo.Query, statuses []reports.Status) ([]reports.Nearby, error) {
	st := make([]string, 0, len(statuses))
	for _, s := range statuses {
		st = append(st, string(s))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = geo.ReportPageSize
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reportColumns+`, distance
		FROM (
			SELECT *, `+haversineSQL+` AS distance
			FROM reports
			WHERE status = ANY($3)
		) s
		WHERE distance <= $4
		ORDER BY distance ASC, id ASC
		LIMIT $5
	`, q.Origin.Lon, q.Origin.Lat, st, q.MaxDistance, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reports.Nearby, 0)
	for rows.Next() {
		var d float64
		rp, err := scanReport(rows, &d)
		if err != nil {
			return nil, err
		}
		out = append(out, reports.Nearby{Report: rp, Distance: d})
	}
	return out, rows.Err()
}

func scanReport(s rowScanner, extra ...any) (reports.Report, error) {
	var (
		rp        reports.Report
		photos    []byte
		rescuedAt sql.NullTime
		closedAt  sql.NullTime
	)
	dest := []any{
		&rp.ID, &rp.ReporterID, &rp.OrganizationID, &rp.ClinicID,
		&rp.Description, &rp.Urgency, &rp.AnimalType, &rp.Status,
		&rp.Location.Lon, &rp.Location.Lat, &rp.Address, &photos, &rp.Notes,
		&rescuedAt, &closedAt, &rp.Version, &rp.CreatedAt, &rp.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return reports.Report{}, err
	}
	if err := fromJSONB(photos, &rp.PhotoURLs); err != nil {
		return reports.Report{}, err
	}
	rp.RescuedAt = timePtr(rescuedAt)
	rp.ClosedAt = timePtr(closedAt)
	return rp, nil
}
