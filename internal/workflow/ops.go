package workflow

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"epaws/internal/domain/adoptions"
	"epaws/internal/domain/animals"
	"epaws/internal/domain/geo"
	"epaws/internal/domain/medical"
	"epaws/internal/domain/organizations"
	"epaws/internal/domain/reports"
	"epaws/internal/ports/auth"
)

// Reports

func (e *Engine) CreateReport(ctx context.Context, actor auth.Claims, in reports.CreateInput) (v reports.View, err error) {
	ctx, span := e.start(ctx, "CreateReport", attribute.String("actor.id", actor.UserID))
	defer func() { finish(span, err) }()

	r, err := e.Reports.Create(ctx, actor, in)
	if err != nil {
		return reports.View{}, err
	}
	span.SetAttributes(attribute.String("report.id", r.ID))
	v, verr := e.reportView(ctx, r)
	e.afterWrite(ctx, "CreateReport", verr)
	return v, nil
}

func (e *Engine) GetReport(ctx context.Context, id string) (v reports.View, err error) {
	ctx, span := e.start(ctx, "GetReport", attribute.String("report.id", id))
	defer func() { finish(span, err) }()

	r, err := e.Reports.GetByID(ctx, id)
	if err != nil {
		return reports.View{}, err
	}
	return e.reportView(ctx, r)
}

func (e *Engine) TransitionReport(ctx context.Context, actor auth.Claims, id string, in reports.TransitionInput) (v reports.View, err error) {
	ctx, span := e.start(ctx, "TransitionReport", attribute.String("report.id", id), attribute.String("actor.id", actor.UserID))
	defer func() { finish(span, err) }()

	r, err := e.Reports.Transition(ctx, actor, id, in)
	if err != nil {
		return reports.View{}, err
	}
	span.SetAttributes(attribute.String("report.status", string(r.Status)))
	v, verr := e.reportView(ctx, r)
	e.afterWrite(ctx, "TransitionReport", verr)
	return v, nil
}

func (e *Engine) NearbyReports(ctx context.Context, origin geo.Point, maxDistance *float64) (out []reports.Nearby, err error) {
	ctx, span := e.start(ctx, "NearbyReports", attribute.Float64("origin.lon", origin.Lon), attribute.Float64("origin.lat", origin.Lat))
	defer func() { finish(span, err) }()

	out, err = e.Reports.Nearby(ctx, origin, maxDistance)
	span.SetAttributes(attribute.Int("results", len(out)))
	return out, err
}

// Animals

func (e *Engine) CreateAnimal(ctx context.Context, actor auth.Claims, in animals.CreateInput) (v animals.View, err error) {
	ctx, span := e.start(ctx, "CreateAnimal", attribute.String("actor.id", actor.UserID))
	defer func() { finish(span, err) }()

	a, err := e.Animals.Create(ctx, actor, in)
	if err != nil {
		return animals.View{}, err
	}
	span.SetAttributes(attribute.String("animal.id", a.ID))
	v, verr := e.animalView(ctx, a)
	e.afterWrite(ctx, "CreateAnimal", verr)
	return v, nil
}

func (e *Engine) GetAnimal(ctx context.Context, id string) (v animals.View, err error) {
	ctx, span := e.start(ctx, "GetAnimal", attribute.String("animal.id", id))
	defer func() { finish(span, err) }()

	a, err := e.Animals.GetByID(ctx, id)
	if err != nil {
		return animals.View{}, err
	}
	return e.animalView(ctx, a)
}

func (e *Engine) TransitionAnimal(ctx context.Context, actor auth.Claims, id string, in animals.TransitionInput) (v animals.View, err error) {
	ctx, span := e.start(ctx, "TransitionAnimal", attribute.String("animal.id", id), attribute.String("actor.id", actor.UserID))
	defer func() { finish(span, err) }()

	a, err := e.Animals.Transition(ctx, actor, id, in)
	if err != nil {
		return animals.View{}, err
	}
	span.SetAttributes(attribute.String("animal.status", string(a.Status)))
	v, verr := e.animalView(ctx, a)
	e.afterWrite(ctx, "TransitionAnimal", verr)
	return v, nil
}

func (e *Engine) DeleteAnimal(ctx context.Context, actor auth.Claims, id string) (err error) {
	ctx, span := e.start(ctx, "DeleteAnimal", attribute.String("animal.id", id), attribute.String("actor.id", actor.UserID))
	defer func() { finish(span, err) }()

	return e.Animals.Delete(ctx, actor, id)
}

// Adoptions

func (e *Engine) SubmitAdoption(ctx context.Context, actor auth.Claims, in adoptions.SubmitInput) (v adoptions.View, err error) {
	ctx, span := e.start(ctx, "SubmitAdoption", attribute.String("animal.id", in.AnimalID), attribute.String("actor.id", actor.UserID))
	defer func() { finish(span, err) }()

	a, err := e.Adoptions.Submit(ctx, actor, in)
	if err != nil {
		return adoptions.View{}, err
	}
	span.SetAttributes(attribute.String("adoption.id", a.ID))
	v, verr := e.adoptionView(ctx, a)
	e.afterWrite(ctx, "SubmitAdoption", verr)
	return v, nil
}

func (e *Engine) GetAdoption(ctx context.Context, actor auth.Claims, id string) (v adoptions.View, err error) {
	ctx, span := e.start(ctx, "GetAdoption", attribute.String("adoption.id", id))
	defer func() { finish(span, err) }()

	a, err := e.Adoptions.Get(ctx, actor, id)
	if err != nil {
		return adoptions.View{}, err
	}
	return e.adoptionView(ctx, a)
}

func (e *Engine) TransitionAdoption(ctx context.Context, actor auth.Claims, id string, in adoptions.TransitionInput) (v adoptions.View, err error) {
	ctx, span := e.start(ctx, "TransitionAdoption",
		attribute.String("adoption.id", id),
		attribute.String("actor.id", actor.UserID),
		attribute.String("adoption.requested_status", string(in.Status)),
	)
	defer func() { finish(span, err) }()

	a, err := e.Adoptions.Transition(ctx, actor, id, in)
	if err != nil {
		return adoptions.View{}, err
	}
	v, verr := e.adoptionView(ctx, a)
	e.afterWrite(ctx, "TransitionAdoption", verr)
	return v, nil
}

func (e *Engine) CancelAdoption(ctx context.Context, actor auth.Claims, id string) (v adoptions.View, err error) {
	ctx, span := e.start(ctx, "CancelAdoption", attribute.String("adoption.id", id), attribute.String("actor.id", actor.UserID))
	defer func() { finish(span, err) }()

	a, err := e.Adoptions.Cancel(ctx, actor, id)
	if err != nil {
		return adoptions.View{}, err
	}
	v, verr := e.adoptionView(ctx, a)
	e.afterWrite(ctx, "CancelAdoption", verr)
	return v, nil
}

// Medical records

func (e *Engine) CreateMedicalRecord(ctx context.Context, actor auth.Claims, in medical.CreateInput) (v medical.View, err error) {
	ctx, span := e.start(ctx, "CreateMedicalRecord", attribute.String("animal.id", in.AnimalID), attribute.String("actor.id", actor.UserID))
	defer func() { finish(span, err) }()

	r, err := e.Medical.Create(ctx, actor, in)
	if err != nil {
		return medical.View{}, err
	}
	span.SetAttributes(attribute.String("medical_record.id", r.ID))
	v, verr := e.recordView(ctx, r)
	e.afterWrite(ctx, "CreateMedicalRecord", verr)
	return v, nil
}

func (e *Engine) GetMedicalRecord(ctx context.Context, id string) (v medical.View, err error) {
	ctx, span := e.start(ctx, "GetMedicalRecord", attribute.String("medical_record.id", id))
	defer func() { finish(span, err) }()

	r, err := e.Medical.GetByID(ctx, id)
	if err != nil {
		return medical.View{}, err
	}
	return e.recordView(ctx, r)
}

func (e *Engine) TransitionMedicalRecord(ctx context.Context, actor auth.Claims, id string, in medical.TransitionInput) (v medical.View, err error) {
	ctx, span := e.start(ctx, "TransitionMedicalRecord", attribute.String("medical_record.id", id), attribute.String("actor.id", actor.UserID))
	defer func() { finish(span, err) }()

	r, err := e.Medical.Transition(ctx, actor, id, in)
	if err != nil {
		return medical.View{}, err
	}
	v, verr := e.recordView(ctx, r)
	e.afterWrite(ctx, "TransitionMedicalRecord", verr)
	return v, nil
}

// Organizations

func (e *Engine) RegisterOrganization(ctx context.Context, actor auth.Claims, in organizations.RegisterInput) (o organizations.Organization, err error) {
	ctx, span := e.start(ctx, "RegisterOrganization", attribute.String("actor.id", actor.UserID), attribute.String("organization.kind", string(in.Kind)))
	defer func() { finish(span, err) }()

	return e.Organizations.Register(ctx, actor, in)
}

func (e *Engine) GetOrganization(ctx context.Context, id string) (o organizations.Organization, err error) {
	ctx, span := e.start(ctx, "GetOrganization", attribute.String("organization.id", id))
	defer func() { finish(span, err) }()

	return e.Organizations.GetByID(ctx, id)
}

func (e *Engine) NearbyClinics(ctx context.Context, origin geo.Point, maxDistance *float64) (out []organizations.Nearby, err error) {
	ctx, span := e.start(ctx, "NearbyClinics", attribute.Float64("origin.lon", origin.Lon), attribute.Float64("origin.lat", origin.Lat))
	defer func() { finish(span, err) }()

	out, err = e.Organizations.NearbyClinics(ctx, origin, maxDistance)
	span.SetAttributes(attribute.Int("results", len(out)))
	return out, err
}

var (
	_ reports.Operations   = (*Engine)(nil)
	_ animals.Operations   = (*Engine)(nil)
	_ adoptions.Operations = (*Engine)(nil)
	_ medical.Operations   = (*Engine)(nil)

	_ organizations.Operations = (*Engine)(nil)
)
