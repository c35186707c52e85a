package organizations

import (
	"time"

	"epaws/internal/domain/geo"
	"epaws/internal/domain/ledger"
)

type Kind string

const (
	KindOrganization Kind = "organization"
	KindClinic       Kind = "clinic"
)

// Organization es el registro de identidad de un refugio o una clínica.
// Su ID coincide con el UserID del principal que opera en su nombre.
type Organization struct {
	ID   string
	Kind Kind
	Name string

	Email   string
	Phone   string
	Address string

	// Location es obligatoria para clínicas (búsqueda por cercanía).
	Location *geo.Point

	Specialties []string
	Verified    bool
	Active      bool

	// Counters es una vista: vive en el ledger, no en este registro.
	Counters ledger.Counters

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Nearby es una clínica con su distancia al punto consultado.
type Nearby struct {
	Organization Organization
	Distance     float64 // metros
}

// Summary es la forma resumida que se embebe al resolver referencias.
type Summary struct {
	ID       string `json:"id"`
	Kind     Kind   `json:"kind"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
}

func (o Organization) Summary() Summary {
	return Summary{ID: o.ID, Kind: o.Kind, Name: o.Name, Verified: o.Verified}
}
