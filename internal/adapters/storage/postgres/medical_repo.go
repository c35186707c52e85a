package postgres

import (
	"context"
	"database/sql"

	"epaws/internal/domain/medical"
)

type MedicalRepo struct {
	db *sql.DB
}

var _ medical.Repository = (*MedicalRepo)(nil)

func NewMedicalRepo(db *sql.DB) *MedicalRepo {
	return &MedicalRepo{db: db}
}

const medicalColumns = `
	id, animal_id, report_id, clinic_id, organization_id,
	visit_type, diagnosis, treatment, medications, notes,
	estimated_cost, actual_cost, status, photo_urls, documents,
	visit_date, discharge_date, next_appointment, version, created_at, updated_at`

type medicalJSON struct {
	medications []byte
	photos      []byte
	documents   []byte
}

func encodeMedical(rec medical.Record) (medicalJSON, error) {
	var (
		out medicalJSON
		err error
	)
	if out.medications, err = jsonb(rec.Medications); err != nil {
		return out, err
	}
	if out.photos, err = jsonb(rec.PhotoURLs); err != nil {
		return out, err
	}
	if out.documents, err = jsonb(rec.Documents); err != nil {
		return out, err
	}
	return out, nil
}

func (r *MedicalRepo) Create(ctx context.Context, rec medical.Record) error {
	j, err := encodeMedical(rec)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO medical_records (`+medicalColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
	`,
		rec.ID, rec.AnimalID, rec.ReportID, rec.ClinicID, rec.OrganizationID,
		rec.VisitType, rec.Diagnosis, rec.Treatment, j.medications, rec.Notes,
		rec.EstimatedCost, rec.ActualCost, rec.Status, j.photos, j.documents,
		rec.VisitDate, nullTime(rec.DischargeDate), nullTime(rec.NextAppointment),
		rec.Version, rec.CreatedAt, rec.UpdatedAt,
	)
	return mapErr(err, "medical record "+rec.ID)
}

func (r *MedicalRepo) GetByID(ctx context.Context, id string) (medical.Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+medicalColumns+` FROM medical_records WHERE id = $1`, id)

	var (
		rec             medical.Record
		j               medicalJSON
		dischargeDate   sql.NullTime
		nextAppointment sql.NullTime
	)
	if err := row.Scan(
		&rec.ID, &rec.AnimalID, &rec.ReportID, &rec.ClinicID, &rec.OrganizationID,
		&rec.VisitType, &rec.Diagnosis, &rec.Treatment, &j.medications, &rec.Notes,
		&rec.EstimatedCost, &rec.ActualCost, &rec.Status, &j.photos, &j.documents,
		&rec.VisitDate, &dischargeDate, &nextAppointment,
		&rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return medical.Record{}, mapErr(err, "medical record "+id)
	}
	if err := fromJSONB(j.medications, &rec.Medications); err != nil {
		return medical.Record{}, err
	}
	if err := fromJSONB(j.photos, &rec.PhotoURLs); err != nil {
		return medical.Record{}, err
	}
	if err := fromJSONB(j.documents, &rec.Documents); err != nil {
		return medical.Record{}, err
	}
	rec.DischargeDate = timePtr(dischargeDate)
	rec.NextAppointment = timePtr(nextAppointment)
	return rec, nil
}

func (r *MedicalRepo) Update(ctx context.Context, rec medical.Record, prevVersion int64) error {
	j, err := encodeMedical(rec)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE medical_records
		SET
			diagnosis = $2,
			treatment = $3,
			medications = $4,
			notes = $5,
			estimated_cost = $6,
			actual_cost = $7,
			status = $8,
			photo_urls = $9,
			documents = $10,
			discharge_date = $11,
			next_appointment = $12,
			version = $13,
			updated_at = $14
		WHERE id = $1 AND version = $15
	`,
		rec.ID, rec.Diagnosis, rec.Treatment, j.medications, rec.Notes,
		rec.EstimatedCost, rec.ActualCost, rec.Status, j.photos, j.documents,
		nullTime(rec.DischargeDate), nullTime(rec.NextAppointment),
		rec.Version, rec.UpdatedAt, prevVersion,
	)
	if err != nil {
		return mapErr(err, "medical record "+rec.ID)
	}
	return checkUpdated(ctx, r.db, res, "medical_records", rec.ID, "medical record "+rec.ID)
}
