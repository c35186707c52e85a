package notifications

import "time"

type Type string

const (
	TypeReportUpdate   Type = "report_update"
	TypeNewCase        Type = "new_case"
	TypeMedicalUpdate  Type = "medical_update"
	TypeAdoptionUpdate Type = "adoption_update"
	TypeMessage        Type = "message"
	TypeSystem         Type = "system"
)

func (t Type) Valid() bool {
	switch t {
	case TypeReportUpdate, TypeNewCase, TypeMedicalUpdate, TypeAdoptionUpdate, TypeMessage, TypeSystem:
		return true
	default:
		return false
	}
}

// RelatedKind etiqueta la referencia débil a la entidad que disparó la notificación.
type RelatedKind string

const (
	RelatedReport        RelatedKind = "Report"
	RelatedAnimal        RelatedKind = "Animal"
	RelatedAdoption      RelatedKind = "Adoption"
	RelatedMedicalRecord RelatedKind = "MedicalRecord"
)

// Related no es ownership: borrar la entidad no borra la notificación ni viceversa.
type Related struct {
	Kind RelatedKind `json:"kind"`
	ID   string      `json:"id"`
}

type Notification struct {
	ID     string
	UserID string
	Type   Type
	Title  string
	Body   string

	Related *Related

	Read   bool
	ReadAt *time.Time

	CreatedAt time.Time
}
