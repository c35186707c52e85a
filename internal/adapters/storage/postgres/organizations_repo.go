package postgres

import (
	"context"
	"database/sql"

	"epaws/internal/domain/geo"
	"epaws/internal/domain/organizations"
)

type OrganizationsRepo struct {
	db *sql.DB
}

var _ organizations.Repository = (*OrganizationsRepo)(nil)

func NewOrganizationsRepo(db *sql.DB) *OrganizationsRepo {
	return &OrganizationsRepo{db: db}
}

const organizationColumns = `
	id, kind, name, email, phone, address,
	lon, lat, specialties, verified, active,
	created_at, updated_at`

func (r *OrganizationsRepo) Create(ctx context.Context, o organizations.Organization) error {
	specs, err := jsonb(o.Specialties)
	if err != nil {
		return err
	}
	var lon, lat sql.NullFloat64
	if o.Location != nil {
		lon = sql.NullFloat64{Float64: o.Location.Lon, Valid: true}
		lat = sql.NullFloat64{Float64: o.Location.Lat, Valid: true}
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO organizations (`+organizationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		o.ID, o.Kind, o.Name, o.Email, o.Phone, o.Address,
		lon, lat, specs, o.Verified, o.Active,
		o.CreatedAt, o.UpdatedAt,
	)
	return mapErr(err, "organization "+o.ID)
}

// GetByID no incluye los contadores: esos se leen a través del ledger.
func (r *OrganizationsRepo) GetByID(ctx context.Context, id string) (organizations.Organization, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, id)
	o, err := scanOrganization(row)
	if err != nil {
		return organizations.Organization{}, mapErr(err, "organization "+id)
	}
	return o, nil
}

func (r *OrganizationsRepo) NearbyClinics(ctx context.Context, q geo.Query) ([]organizations.Nearby, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = geo.ClinicPageSize
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+organizationColumns+`, distance
		FROM (
			SELECT *, `+haversineSQL+` AS distance
			FROM organizations
			WHERE kind = $3 AND verified AND active AND lon IS NOT NULL AND lat IS NOT NULL
		) s
		WHERE distance <= $4
		ORDER BY distance ASC, id ASC
		LIMIT $5
	`, q.Origin.Lon, q.Origin.Lat, organizations.KindClinic, q.MaxDistance, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]organizations.Nearby, 0)
	for rows.Next() {
		var d float64
		o, err := scanOrganization(rows, &d)
		if err != nil {
			return nil, err
		}
		out = append(out, organizations.Nearby{Organization: o, Distance: d})
	}
	return out, rows.Err()
}

func scanOrganization(s rowScanner, extra ...any) (organizations.Organization, error) {
	var (
		o        organizations.Organization
		lon, lat sql.NullFloat64
		specs    []byte
	)
	dest := []any{
		&o.ID, &o.Kind, &o.Name, &o.Email, &o.Phone, &o.Address,
		&lon, &lat, &specs, &o.Verified, &o.Active,
		&o.CreatedAt, &o.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return organizations.Organization{}, err
	}
	if err := fromJSONB(specs, &o.Specialties); err != nil {
		return organizations.Organization{}, err
	}
	if lon.Valid && lat.Valid {
		o.Location = &geo.Point{Lon: lon.Float64, Lat: lat.Float64}
	}
	return o, nil
}
