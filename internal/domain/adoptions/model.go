package adoptions

import (
	"time"

	"epaws/internal/domain/statemachine"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
)

// ActiveStatuses: a lo sumo una solicitud activa por (animal, adoptante).
var ActiveStatuses = []Status{StatusPending, StatusUnderReview, StatusApproved}

func (s Status) Active() bool {
	return s == StatusPending || s == StatusUnderReview || s == StatusApproved
}

var machine = statemachine.New("adoption", map[Status][]Status{
	StatusPending:     {StatusUnderReview, StatusApproved, StatusRejected, StatusCancelled},
	StatusUnderReview: {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:    {StatusCompleted, StatusRejected, StatusCancelled},
	StatusRejected:    {},
	StatusCompleted:   {},
	StatusCancelled:   {},
})

type HomeType string

const (
	HomeHouse     HomeType = "house"
	HomeApartment HomeType = "apartment"
	HomeFarm      HomeType = "farm"
	HomeOther     HomeType = "other"
)

func (h HomeType) Valid() bool {
	switch h {
	case HomeHouse, HomeApartment, HomeFarm, HomeOther:
		return true
	}
	return false
}

// AdopterInfo son las respuestas de idoneidad del formulario.
type AdopterInfo struct {
	HasExperience     bool     `json:"has_experience"`
	ExperienceDetails string   `json:"experience_details,omitempty"`
	HasOtherPets      bool     `json:"has_other_pets"`
	OtherPetsDetails  string   `json:"other_pets_details,omitempty"`
	HomeType          HomeType `json:"home_type"`
	HasYard           bool     `json:"has_yard"`
	HouseholdMembers  int      `json:"household_members"`
	HouseholdDetails  string   `json:"household_details,omitempty"`
	WorkSchedule      string   `json:"work_schedule,omitempty"`
	ReasonForAdoption string   `json:"reason_for_adoption,omitempty"`
}

type Adoption struct {
	ID        string
	AnimalID  string
	AdopterID string
	// Copiado del animal al crear la solicitud.
	OrganizationID string

	Message     string
	AdopterInfo AdopterInfo

	Status          Status
	ReviewNotes     string
	RejectionReason string

	AppliedAt   time.Time
	ReviewedAt  *time.Time // primera entrada a under_review/approved/rejected
	CompletedAt *time.Time

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
