package workflow

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"epaws/internal/domain/adoptions"
	"epaws/internal/domain/animals"
	"epaws/internal/domain/medical"
	"epaws/internal/domain/organizations"
	"epaws/internal/domain/reports"
	"epaws/internal/platform/logger"
	"epaws/internal/platform/sentinel"
)

type resolver func(ctx context.Context) error

// resolve corre los resolvers en paralelo. Una referencia que no existe
// (p.ej. animal borrado) queda en nil; otros errores se devuelven.
func resolve(ctx context.Context, rs ...resolver) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range rs {
		g.Go(func() error { return r(gctx) })
	}
	return g.Wait()
}

func (e *Engine) orgRef(id string, dst **organizations.Summary) resolver {
	return func(ctx context.Context) error {
		if id == "" {
			return nil
		}
		o, err := e.orgs.GetByID(ctx, id)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("resolve organization %s: %w", id, err)
		}
		s := o.Summary()
		*dst = &s
		return nil
	}
}

func (e *Engine) animalRef(id string, dst **animals.Summary) resolver {
	return func(ctx context.Context) error {
		if id == "" {
			return nil
		}
		a, err := e.animals.GetByID(ctx, id)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("resolve animal %s: %w", id, err)
		}
		s := a.Summary()
		*dst = &s
		return nil
	}
}

// afterWrite: la escritura ya se confirmó, así que un fallo al resolver
// referencias no se propaga; la vista sale sin ellas.
func (e *Engine) afterWrite(ctx context.Context, op string, err error) {
	if err == nil {
		return
	}
	logger.FromContext(ctx, e.log).Warn("view resolution failed", map[string]any{"op": op, "err": err})
}

func (e *Engine) reportView(ctx context.Context, r reports.Report) (reports.View, error) {
	v := reports.View{Report: r}
	err := resolve(ctx,
		e.orgRef(r.OrganizationID, &v.Organization),
		e.orgRef(r.ClinicID, &v.Clinic),
	)
	return v, err
}

func (e *Engine) animalView(ctx context.Context, a animals.Animal) (animals.View, error) {
	v := animals.View{Animal: a}
	err := resolve(ctx, e.orgRef(a.OrganizationID, &v.Organization))
	return v, err
}

func (e *Engine) adoptionView(ctx context.Context, a adoptions.Adoption) (adoptions.View, error) {
	v := adoptions.View{Adoption: a}
	err := resolve(ctx,
		e.animalRef(a.AnimalID, &v.Animal),
		e.orgRef(a.OrganizationID, &v.Organization),
	)
	return v, err
}

func (e *Engine) recordView(ctx context.Context, r medical.Record) (medical.View, error) {
	v := medical.View{Record: r}
	err := resolve(ctx,
		e.animalRef(r.AnimalID, &v.Animal),
		e.orgRef(r.ClinicID, &v.Clinic),
	)
	return v, err
}
