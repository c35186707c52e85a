package animals

import (
	"time"

	"epaws/internal/domain/statemachine"
)

type Status string

const (
	StatusAvailable       Status = "available"
	StatusPendingAdoption Status = "pending_adoption"
	StatusAdopted         Status = "adopted"
	StatusDeceased        Status = "deceased"
)

// adopted puede volver a available (adopción devuelta) o pasar a deceased;
// deceased es terminal.
var machine = statemachine.New("animal", map[Status][]Status{
	StatusAvailable:       {StatusPendingAdoption, StatusAdopted, StatusDeceased},
	StatusPendingAdoption: {StatusAvailable, StatusAdopted, StatusDeceased},
	StatusAdopted:         {StatusAvailable, StatusDeceased},
	StatusDeceased:        {},
})

type Species string

const (
	SpeciesDog    Species = "dog"
	SpeciesCat    Species = "cat"
	SpeciesBird   Species = "bird"
	SpeciesRabbit Species = "rabbit"
	SpeciesOther  Species = "other"
)

func (s Species) Valid() bool {
	switch s {
	case SpeciesDog, SpeciesCat, SpeciesBird, SpeciesRabbit, SpeciesOther:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderUnknown
}

type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

func (s Size) Valid() bool {
	return s == SizeSmall || s == SizeMedium || s == SizeLarge
}

const DefaultBreed = "Mestizo"

type HealthInfo struct {
	Vaccinated   bool   `json:"vaccinated"`
	Sterilized   bool   `json:"sterilized"`
	Dewormed     bool   `json:"dewormed"`
	MedicalNotes string `json:"medical_notes,omitempty"`
}

type Animal struct {
	ID             string
	ReportID       string // opcional: reporte de origen
	OrganizationID string

	Name              string
	Species           Species
	Breed             string
	Gender            Gender
	AgeEstimate       string
	Size              Size
	Color             string
	Story             string
	PersonalityTraits []string
	SpecialNeeds      string
	PhotoURLs         []string
	VideoURL          string
	Health            HealthInfo

	Status Status
	// AdoptedAt está seteado si y solo si Status == adopted.
	AdoptedAt *time.Time

	// Soft delete: los repositorios no devuelven animales borrados.
	Deleted bool

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
