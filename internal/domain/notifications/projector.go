package notifications

import (
	"context"

	"epaws/internal/domain/events"
)

// Projector convierte eventos de dominio en entradas de buzón.
type Projector struct {
	dispatcher *Dispatcher
	templates  *Templates
}

func NewProjector(d *Dispatcher, t *Templates) *Projector {
	return &Projector{dispatcher: d, templates: t}
}

func (p *Projector) Register(sub events.Subscriber) {
	sub.Subscribe("notifications", p.Handle,
		events.ReportStatusChanged,
		events.ReportAssigned,
		events.AdoptionSubmitted,
		events.AdoptionStatusChanged,
		events.MedicalRecordCreated,
		events.MedicalRecordStatusChanged,
	)
}

// Handle siempre devuelve nil: el Dispatcher ya loguea y cuenta sus fallas.
func (p *Projector) Handle(ctx context.Context, e events.Event) error {
	switch pl := e.Payload.(type) {
	case events.ReportStatusChangedPayload:
		m := p.templates.ReportUpdate(pl.To)
		p.dispatcher.Notify(ctx, pl.ReporterID, TypeReportUpdate, m.Title, m.Body, &Related{Kind: RelatedReport, ID: pl.ReportID})

	case events.ReportAssignedPayload:
		var m Message
		if pl.Party == events.PartyClinic {
			m = p.templates.NewCaseClinic()
		} else {
			m = p.templates.NewCaseOrganization(pl.AnimalType)
		}
		p.dispatcher.Notify(ctx, pl.AssigneeID, TypeNewCase, m.Title, m.Body, &Related{Kind: RelatedReport, ID: pl.ReportID})

	case events.AdoptionSubmittedPayload:
		m := p.templates.AdoptionSubmitted(pl.AnimalName)
		p.dispatcher.Notify(ctx, pl.OrganizationID, TypeAdoptionUpdate, m.Title, m.Body, &Related{Kind: RelatedAdoption, ID: pl.AdoptionID})

	case events.AdoptionStatusChangedPayload:
		related := &Related{Kind: RelatedAdoption, ID: pl.AdoptionID}
		if pl.ByAdopter {
			m := p.templates.AdoptionCancelled(pl.AnimalName)
			p.dispatcher.Notify(ctx, pl.OrganizationID, TypeAdoptionUpdate, m.Title, m.Body, related)
			return nil
		}
		m := p.templates.AdoptionUpdate(pl.To)
		p.dispatcher.Notify(ctx, pl.AdopterID, TypeAdoptionUpdate, m.Title, m.Body, related)

	case events.MedicalRecordCreatedPayload:
		m := p.templates.MedicalCreated(pl.AnimalName)
		p.dispatcher.Notify(ctx, pl.OrganizationID, TypeMedicalUpdate, m.Title, m.Body, &Related{Kind: RelatedMedicalRecord, ID: pl.RecordID})

	case events.MedicalRecordStatusChangedPayload:
		if pl.To != "completed" {
			return nil
		}
		m := p.templates.MedicalCompleted(pl.AnimalName)
		p.dispatcher.Notify(ctx, pl.OrganizationID, TypeMedicalUpdate, m.Title, m.Body, &Related{Kind: RelatedMedicalRecord, ID: pl.RecordID})
	}
	return nil
}
