package postgres

import (
	"context"
	"database/sql"

	"epaws/internal/domain/animals"
)

type AnimalsRepo struct {
	db *sql.DB
}

var _ animals.Repository = (*AnimalsRepo)(nil)

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalColumns = `
	id, report_id, organization_id,
	name, species, breed, gender, age_estimate, size, color, story,
	personality_traits, special_needs, photo_urls, video_url,
	vaccinated, sterilized, dewormed, medical_notes,
	status, adopted_at, deleted, version, created_at, updated_at`

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	traits, photos, err := animalLists(a)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO animals (`+animalColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
	`,
		a.ID, a.ReportID, a.OrganizationID,
		a.Name, a.Species, a.Breed, a.Gender, a.AgeEstimate, a.Size, a.Color, a.Story,
		traits, a.SpecialNeeds, photos, a.VideoURL,
		a.Health.Vaccinated, a.Health.Sterilized, a.Health.Dewormed, a.Health.MedicalNotes,
		a.Status, nullTime(a.AdoptedAt), a.Deleted, a.Version, a.CreatedAt, a.UpdatedAt,
	)
	return mapErr(err, "animal "+a.ID)
}

func (r *AnimalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE id = $1 AND NOT deleted
	`, id)
	a, err := scanAnimal(row)
	if err != nil {
		return animals.Animal{}, mapErr(err, "animal "+id)
	}
	return a, nil
}

// Update también persiste el soft delete; una fila ya borrada no matchea.
func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal, prevVersion int64) error {
	traits, photos, err := animalLists(a)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE animals
		SET
			name = $2,
			species = $3,
			breed = $4,
			gender = $5,
			age_estimate = $6,
			size = $7,
			color = $8,
			story = $9,
			personality_traits = $10,
			special_needs = $11,
			photo_urls = $12,
			video_url = $13,
			vaccinated = $14,
			sterilized = $15,
			dewormed = $16,
			medical_notes = $17,
			status = $18,
			adopted_at = $19,
			deleted = $20,
			version = $21,
			updated_at = $22
		WHERE id = $1 AND version = $23 AND NOT deleted
	`,
		a.ID,
		a.Name, a.Species, a.Breed, a.Gender, a.AgeEstimate, a.Size, a.Color, a.Story,
		traits, a.SpecialNeeds, photos, a.VideoURL,
		a.Health.Vaccinated, a.Health.Sterilized, a.Health.Dewormed, a.Health.MedicalNotes,
		a.Status, nullTime(a.AdoptedAt), a.Deleted, a.Version, a.UpdatedAt,
		prevVersion,
	)
	if err != nil {
		return mapErr(err, "animal "+a.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return r.missOrConflict(ctx, a.ID)
	}
	return nil
}

func (r *AnimalsRepo) missOrConflict(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return versionMiss(ctx, r.db, "animals", id, "animal "+id)
}

func animalLists(a animals.Animal) (traits, photos []byte, err error) {
	if traits, err = jsonb(a.PersonalityTraits); err != nil {
		return nil, nil, err
	}
	if photos, err = jsonb(a.PhotoURLs); err != nil {
		return nil, nil, err
	}
	return traits, photos, nil
}

func scanAnimal(s rowScanner) (animals.Animal, error) {
	var (
		a         animals.Animal
		traits    []byte
		photos    []byte
		adoptedAt sql.NullTime
	)
	if err := s.Scan(
		&a.ID, &a.ReportID, &a.OrganizationID,
		&a.Name, &a.Species, &a.Breed, &a.Gender, &a.AgeEstimate, &a.Size, &a.Color, &a.Story,
		&traits, &a.SpecialNeeds, &photos, &a.VideoURL,
		&a.Health.Vaccinated, &a.Health.Sterilized, &a.Health.Dewormed, &a.Health.MedicalNotes,
		&a.Status, &adoptedAt, &a.Deleted, &a.Version, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return animals.Animal{}, err
	}
	if err := fromJSONB(traits, &a.PersonalityTraits); err != nil {
		return animals.Animal{}, err
	}
	if err := fromJSONB(photos, &a.PhotoURLs); err != nil {
		return animals.Animal{}, err
	}
	a.AdoptedAt = timePtr(adoptedAt)
	return a, nil
}
