package ledger

import (
	"context"
	"fmt"

	"epaws/internal/platform/sentinel"
)

// Field es uno de los contadores embebidos en la organización/clínica.
type Field string

const (
	CurrentAnimals    Field = "currentAnimals"
	TotalRescues      Field = "totalRescues"
	TotalCasesHandled Field = "totalCasesHandled"
)

func (f Field) Valid() bool {
	switch f {
	case CurrentAnimals, TotalRescues, TotalCasesHandled:
		return true
	default:
		return false
	}
}

// Column es el nombre de columna/hash-field usado por los adapters.
func (f Field) Column() string {
	switch f {
	case CurrentAnimals:
		return "current_animals"
	case TotalRescues:
		return "total_rescues"
	case TotalCasesHandled:
		return "total_cases_handled"
	default:
		return ""
	}
}

type Counters struct {
	CurrentAnimals    int64 `json:"currentAnimals"`
	TotalRescues      int64 `json:"totalRescues"`
	TotalCasesHandled int64 `json:"totalCasesHandled"`
}

// Set asigna el valor de un campo (usado por los adapters al leer).
func (c *Counters) Set(f Field, v int64) {
	switch f {
	case CurrentAnimals:
		c.CurrentAnimals = v
	case TotalRescues:
		c.TotalRescues = v
	case TotalCasesHandled:
		c.TotalCasesHandled = v
	}
}

// Store aplica deltas atómicos. Adjust nunca deja el valor bajo cero (clamp)
// y devuelve el valor resultante. El read-modify-write ocurre en el storage.
type Store interface {
	Adjust(ctx context.Context, orgID string, f Field, delta int64) (int64, error)
	Get(ctx context.Context, orgID string) (Counters, error)
}

// Clamp es la regla de piso compartida por los adapters.
func Clamp(current, delta int64) int64 {
	v := current + delta
	if v < 0 {
		return 0
	}
	return v
}

func validate(orgID string, f Field) error {
	if orgID == "" {
		return fmt.Errorf("%w: organization id required", sentinel.ErrValidation)
	}
	if !f.Valid() {
		return fmt.Errorf("%w: unknown ledger field %q", sentinel.ErrValidation, f)
	}
	return nil
}
