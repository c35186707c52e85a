package events

import "time"

// Kind identifica el tipo de evento de dominio.
type Kind string

const (
	ReportCreated       Kind = "report.created"
	ReportStatusChanged Kind = "report.status_changed"
	ReportAssigned      Kind = "report.assigned"

	AnimalCreated       Kind = "animal.created"
	AnimalStatusChanged Kind = "animal.status_changed"
	AnimalDeleted       Kind = "animal.deleted"

	AdoptionSubmitted     Kind = "adoption.submitted"
	AdoptionStatusChanged Kind = "adoption.status_changed"

	MedicalRecordCreated       Kind = "medical_record.created"
	MedicalRecordStatusChanged Kind = "medical_record.status_changed"
)

// Event es lo que publica una transición ya persistida.
// Payload es uno de los structs de abajo (por valor).
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	EntityID   string    `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Los estados viajan como string para no importar los paquetes de dominio
// (reports/animals/... importan events, no al revés).

type ReportCreatedPayload struct {
	ReportID   string `json:"report_id"`
	ReporterID string `json:"reporter_id"`
	Urgency    string `json:"urgency"`
}

type ReportStatusChangedPayload struct {
	ReportID       string `json:"report_id"`
	ReporterID     string `json:"reporter_id"`
	OrganizationID string `json:"organization_id,omitempty"`
	From           string `json:"from"`
	To             string `json:"to"`
	// FirstRescue es true solo cuando esta transición estampó rescuedAt.
	FirstRescue bool `json:"first_rescue"`
}

// Party indica a quién se asignó el reporte.
type Party string

const (
	PartyOrganization Party = "organization"
	PartyClinic       Party = "clinic"
)

type ReportAssignedPayload struct {
	ReportID   string `json:"report_id"`
	Party      Party  `json:"party"`
	AssigneeID string `json:"assignee_id"`
	PreviousID string `json:"previous_id,omitempty"`
	AnimalType string `json:"animal_type"`
}

type AnimalCreatedPayload struct {
	AnimalID       string `json:"animal_id"`
	OrganizationID string `json:"organization_id"`
	ReportID       string `json:"report_id,omitempty"`
	Name           string `json:"name"`
}

type AnimalStatusChangedPayload struct {
	AnimalID       string `json:"animal_id"`
	OrganizationID string `json:"organization_id"`
	From           string `json:"from"`
	To             string `json:"to"`
}

type AnimalDeletedPayload struct {
	AnimalID       string `json:"animal_id"`
	OrganizationID string `json:"organization_id"`
	Status         string `json:"status"`
}

type AdoptionSubmittedPayload struct {
	AdoptionID     string `json:"adoption_id"`
	AnimalID       string `json:"animal_id"`
	AnimalName     string `json:"animal_name"`
	AdopterID      string `json:"adopter_id"`
	OrganizationID string `json:"organization_id"`
}

type AdoptionStatusChangedPayload struct {
	AdoptionID     string `json:"adoption_id"`
	AnimalID       string `json:"animal_id"`
	AnimalName     string `json:"animal_name"`
	AdopterID      string `json:"adopter_id"`
	OrganizationID string `json:"organization_id"`
	From           string `json:"from"`
	To             string `json:"to"`
	// ByAdopter marca la cancelación hecha por el propio adoptante.
	ByAdopter       bool   `json:"by_adopter"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

type MedicalRecordCreatedPayload struct {
	RecordID       string `json:"record_id"`
	AnimalID       string `json:"animal_id"`
	AnimalName     string `json:"animal_name"`
	ClinicID       string `json:"clinic_id"`
	OrganizationID string `json:"organization_id"`
	VisitType      string `json:"visit_type"`
}

type MedicalRecordStatusChangedPayload struct {
	RecordID       string `json:"record_id"`
	AnimalID       string `json:"animal_id"`
	AnimalName     string `json:"animal_name"`
	ClinicID       string `json:"clinic_id"`
	OrganizationID string `json:"organization_id"`
	VisitType      string `json:"visit_type"`
	From           string `json:"from"`
	To             string `json:"to"`
}
