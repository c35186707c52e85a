package medical

import (
	"epaws/internal/domain/animals"
	"epaws/internal/domain/organizations"
)

type View struct {
	Record Record
	Animal *animals.Summary
	Clinic *organizations.Summary
}
