package reports

import (
	"time"

	"epaws/internal/domain/geo"
	"epaws/internal/domain/statemachine"
)

type Status string

const (
	StatusPending      Status = "pending"
	StatusAssigned     Status = "assigned"
	StatusRescued      Status = "rescued"
	StatusInVeterinary Status = "in_veterinary"
	StatusRecovered    Status = "recovered"
	StatusAdopted      Status = "adopted"
	StatusClosed       Status = "closed"
)

// ActiveStatuses: los que aparecen en la búsqueda por cercanía.
var ActiveStatuses = []Status{StatusPending, StatusAssigned}

// Flujo: pending → assigned → rescued → in_veterinary → recovered → adopted → closed.
// Se permite saltar hacia adelante, recovered puede volver a in_veterinary
// (recaída) y closed es alcanzable desde cualquier estado y es terminal.
var machine = statemachine.New("report", map[Status][]Status{
	StatusPending:      {StatusAssigned, StatusRescued, StatusInVeterinary, StatusRecovered, StatusAdopted, StatusClosed},
	StatusAssigned:     {StatusRescued, StatusInVeterinary, StatusRecovered, StatusAdopted, StatusClosed},
	StatusRescued:      {StatusInVeterinary, StatusRecovered, StatusAdopted, StatusClosed},
	StatusInVeterinary: {StatusRecovered, StatusAdopted, StatusClosed},
	StatusRecovered:    {StatusInVeterinary, StatusAdopted, StatusClosed},
	StatusAdopted:      {StatusClosed},
	StatusClosed:       {},
})

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

type AnimalType string

const (
	AnimalDog    AnimalType = "dog"
	AnimalCat    AnimalType = "cat"
	AnimalBird   AnimalType = "bird"
	AnimalRabbit AnimalType = "rabbit"
	AnimalOther  AnimalType = "other"
)

func (a AnimalType) Valid() bool {
	switch a {
	case AnimalDog, AnimalCat, AnimalBird, AnimalRabbit, AnimalOther:
		return true
	}
	return false
}

type Report struct {
	ID         string
	ReporterID string

	// Asignaciones opcionales (IDs de organizations).
	OrganizationID string
	ClinicID       string

	Description string
	Urgency     Urgency
	AnimalType  AnimalType
	Status      Status

	Location  geo.Point
	Address   string
	PhotoURLs []string
	Notes     string

	// Se estampan una sola vez.
	RescuedAt *time.Time
	ClosedAt  *time.Time

	// Version para escritura condicional (optimistic concurrency).
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Nearby struct {
	Report   Report
	Distance float64 // metros
}
