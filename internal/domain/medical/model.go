package medical

import (
	"time"

	"epaws/internal/domain/statemachine"
)

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var machine = statemachine.New("medical_record", map[Status][]Status{
	StatusScheduled:  {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
})

type VisitType string

const (
	VisitInitialExam VisitType = "initial_exam"
	VisitTreatment   VisitType = "treatment"
	VisitSurgery     VisitType = "surgery"
	VisitFollowUp    VisitType = "follow_up"
	VisitVaccination VisitType = "vaccination"
	VisitDischarge   VisitType = "discharge"
)

func (v VisitType) Valid() bool {
	switch v {
	case VisitInitialExam, VisitTreatment, VisitSurgery, VisitFollowUp, VisitVaccination, VisitDischarge:
		return true
	}
	return false
}

type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage,omitempty"`
	Frequency string `json:"frequency,omitempty"`
	Duration  string `json:"duration,omitempty"`
}

type Document struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type Record struct {
	ID       string
	AnimalID string
	ReportID string // opcional
	ClinicID string
	// Copiado del animal al crear; destinatario de las notificaciones.
	OrganizationID string

	VisitType   VisitType
	Diagnosis   string
	Treatment   string
	Medications []Medication
	Notes       string

	EstimatedCost float64
	ActualCost    float64

	Status    Status
	PhotoURLs []string
	Documents []Document

	VisitDate       time.Time
	DischargeDate   *time.Time // solo visitas discharge, al completarse
	NextAppointment *time.Time

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalCost es el costo real si ya se cargó; si no, el estimado.
func (r Record) TotalCost() float64 {
	if r.ActualCost > 0 {
		return r.ActualCost
	}
	return r.EstimatedCost
}
