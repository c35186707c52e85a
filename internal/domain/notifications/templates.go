package notifications

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// IDs de mensaje. El texto vive en el catálogo (es por defecto, en disponible).
const (
	msgReportUpdateTitle = "report_update.title"
	msgReportUpdateBody  = "report_update.body"

	msgNewCaseOrgTitle    = "new_case.organization.title"
	msgNewCaseOrgBody     = "new_case.organization.body"
	msgNewCaseClinicTitle = "new_case.clinic.title"
	msgNewCaseClinicBody  = "new_case.clinic.body"

	msgMedicalCreatedTitle   = "medical.created.title"
	msgMedicalCreatedBody    = "medical.created.body"
	msgMedicalCompletedTitle = "medical.completed.title"
	msgMedicalCompletedBody  = "medical.completed.body"

	msgAdoptionSubmittedTitle = "adoption.submitted.title"
	msgAdoptionSubmittedBody  = "adoption.submitted.body"
	msgAdoptionCancelledTitle = "adoption.cancelled.title"
	msgAdoptionCancelledBody  = "adoption.cancelled.body"
	msgAdoptionUpdateTitle    = "adoption.update.title"

	msgAdoptionUnderReview = "adoption.update.under_review"
	msgAdoptionApproved    = "adoption.update.approved"
	msgAdoptionRejected    = "adoption.update.rejected"
	msgAdoptionCompleted   = "adoption.update.completed"
	msgAdoptionUpdated     = "adoption.update.default"
)

var messages = map[language.Tag]map[string]string{
	language.Spanish: {
		msgReportUpdateTitle: "Actualización de reporte",
		msgReportUpdateBody:  "Tu reporte ha cambiado de estado a: %s",

		msgNewCaseOrgTitle:    "Nuevo caso asignado",
		msgNewCaseOrgBody:     "Se te ha asignado un nuevo caso de %s",
		msgNewCaseClinicTitle: "Nuevo caso veterinario",
		msgNewCaseClinicBody:  "Se te ha asignado un nuevo caso médico",

		msgMedicalCreatedTitle:   "Nuevo registro médico",
		msgMedicalCreatedBody:    "Se ha creado un nuevo registro médico para %s",
		msgMedicalCompletedTitle: "Registro médico completado",
		msgMedicalCompletedBody:  "El registro médico de %s ha sido completado",

		msgAdoptionSubmittedTitle: "Nueva solicitud de adopción",
		msgAdoptionSubmittedBody:  "Se ha enviado una solicitud para adoptar a %s",
		msgAdoptionCancelledTitle: "Adopción cancelada",
		msgAdoptionCancelledBody:  "El adoptante ha cancelado su solicitud de adopción para %s",
		msgAdoptionUpdateTitle:    "Actualización de adopción",

		msgAdoptionUnderReview: "Tu solicitud de adopción está siendo revisada",
		msgAdoptionApproved:    "¡Tu solicitud de adopción ha sido aprobada!",
		msgAdoptionRejected:    "Tu solicitud de adopción ha sido rechazada",
		msgAdoptionCompleted:   "¡Felicidades! La adopción se ha completado",
		msgAdoptionUpdated:     "Tu solicitud de adopción ha sido actualizada",
	},
	language.English: {
		msgReportUpdateTitle: "Report update",
		msgReportUpdateBody:  "Your report status changed to: %s",

		msgNewCaseOrgTitle:    "New case assigned",
		msgNewCaseOrgBody:     "You have been assigned a new %s case",
		msgNewCaseClinicTitle: "New veterinary case",
		msgNewCaseClinicBody:  "You have been assigned a new medical case",

		msgMedicalCreatedTitle:   "New medical record",
		msgMedicalCreatedBody:    "A new medical record was created for %s",
		msgMedicalCompletedTitle: "Medical record completed",
		msgMedicalCompletedBody:  "The medical record for %s has been completed",

		msgAdoptionSubmittedTitle: "New adoption application",
		msgAdoptionSubmittedBody:  "An application was submitted to adopt %s",
		msgAdoptionCancelledTitle: "Adoption cancelled",
		msgAdoptionCancelledBody:  "The adopter cancelled their application for %s",
		msgAdoptionUpdateTitle:    "Adoption update",

		msgAdoptionUnderReview: "Your adoption application is under review",
		msgAdoptionApproved:    "Your adoption application has been approved!",
		msgAdoptionRejected:    "Your adoption application has been rejected",
		msgAdoptionCompleted:   "Congratulations! The adoption is complete",
		msgAdoptionUpdated:     "Your adoption application has been updated",
	},
}

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.Spanish))
	for tag, msgs := range messages {
		for key, text := range msgs {
			// SetString solo falla con mensajes inválidos; los de arriba son literales.
			_ = b.SetString(tag, key, text)
		}
	}
	return b
}

// Templates renderiza títulos y cuerpos en un idioma fijo.
type Templates struct {
	p *message.Printer
}

// NewTemplates acepta "es", "en", "es-CL", etc. Desconocido cae a español.
func NewTemplates(locale string) *Templates {
	cat := newCatalog()
	tag := language.Spanish
	if t, err := language.Parse(strings.TrimSpace(locale)); err == nil {
		langs := cat.Languages()
		_, idx, conf := language.NewMatcher(langs).Match(t)
		if conf != language.No {
			tag = langs[idx]
		}
	}
	return &Templates{p: message.NewPrinter(tag, message.Catalog(cat))}
}

func (t *Templates) render(key string, args ...any) string {
	return t.p.Sprintf(key, args...)
}

// Message es un título + cuerpo ya renderizados.
type Message struct {
	Title string
	Body  string
}

func (t *Templates) ReportUpdate(status string) Message {
	return Message{t.render(msgReportUpdateTitle), t.render(msgReportUpdateBody, status)}
}

func (t *Templates) NewCaseOrganization(animalType string) Message {
	return Message{t.render(msgNewCaseOrgTitle), t.render(msgNewCaseOrgBody, animalType)}
}

func (t *Templates) NewCaseClinic() Message {
	return Message{t.render(msgNewCaseClinicTitle), t.render(msgNewCaseClinicBody)}
}

func (t *Templates) MedicalCreated(animalName string) Message {
	return Message{t.render(msgMedicalCreatedTitle), t.render(msgMedicalCreatedBody, animalName)}
}

func (t *Templates) MedicalCompleted(animalName string) Message {
	return Message{t.render(msgMedicalCompletedTitle), t.render(msgMedicalCompletedBody, animalName)}
}

func (t *Templates) AdoptionSubmitted(animalName string) Message {
	return Message{t.render(msgAdoptionSubmittedTitle), t.render(msgAdoptionSubmittedBody, animalName)}
}

func (t *Templates) AdoptionCancelled(animalName string) Message {
	return Message{t.render(msgAdoptionCancelledTitle), t.render(msgAdoptionCancelledBody, animalName)}
}

// AdoptionUpdate: cuerpo según el estado destino.
func (t *Templates) AdoptionUpdate(status string) Message {
	key := msgAdoptionUpdated
	switch status {
	case "under_review":
		key = msgAdoptionUnderReview
	case "approved":
		key = msgAdoptionApproved
	case "rejected":
		key = msgAdoptionRejected
	case "completed":
		key = msgAdoptionCompleted
	}
	return Message{t.render(msgAdoptionUpdateTitle), t.render(key)}
}
