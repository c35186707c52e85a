package workflow

import (
	"context"
	"fmt"

	"epaws/internal/domain/adoptions"
	"epaws/internal/domain/animals"
	"epaws/internal/domain/events"
	"epaws/internal/platform/logger"
)

// driveAnimal acompaña al animal con la adopción:
//   - approved  → pending_adoption (si estaba available)
//   - completed → adopted (si estaba available o pending_adoption)
//   - rejected/cancelled desde under_review/approved → available, solo si
//     sigue en pending_adoption; si otra vía ya lo movió no se pisa.
//
// Cada cambio efectivo publica animal.status_changed y el ledger lo proyecta.
func (e *Engine) driveAnimal(ctx context.Context, ev events.Event) error {
	p, ok := ev.Payload.(events.AdoptionStatusChangedPayload)
	if !ok {
		return nil
	}

	var (
		to   animals.Status
		from []animals.Status
	)
	switch adoptions.Status(p.To) {
	case adoptions.StatusApproved:
		to, from = animals.StatusPendingAdoption, []animals.Status{animals.StatusAvailable}
	case adoptions.StatusCompleted:
		to, from = animals.StatusAdopted, []animals.Status{animals.StatusAvailable, animals.StatusPendingAdoption}
	case adoptions.StatusRejected, adoptions.StatusCancelled:
		prev := adoptions.Status(p.From)
		if prev != adoptions.StatusApproved && prev != adoptions.StatusUnderReview {
			return nil
		}
		to, from = animals.StatusAvailable, []animals.Status{animals.StatusPendingAdoption}
	default:
		return nil
	}

	a, changed, err := e.Animals.SetStatusIf(ctx, p.AnimalID, to, from...)
	if err != nil {
		return fmt.Errorf("drive animal %s to %s: %w", p.AnimalID, to, err)
	}
	if !changed {
		logger.FromContext(ctx, e.log).Debug("animal left as is", map[string]any{
			"adoption_id": p.AdoptionID,
			"animal_id":   p.AnimalID,
			"status":      a.Status,
			"wanted":      to,
		})
	}
	return nil
}
