package reports

import "epaws/internal/domain/organizations"

// View es el reporte con sus referencias resueltas para mostrar.
// Una referencia que no resuelve queda en nil (el ID sigue en Report).
type View struct {
	Report       Report
	Organization *organizations.Summary
	Clinic       *organizations.Summary
}
