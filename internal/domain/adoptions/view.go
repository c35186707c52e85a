package adoptions

import (
	"epaws/internal/domain/animals"
	"epaws/internal/domain/organizations"
)

type View struct {
	Adoption     Adoption
	Animal       *animals.Summary
	Organization *organizations.Summary
}
