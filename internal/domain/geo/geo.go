package geo

import (
	"fmt"
	"math"
	"sort"

	"epaws/internal/platform/sentinel"
)

// EarthRadiusMeters es el radio esférico usado por Haversine (6371 km).
const EarthRadiusMeters = 6371000.0

// Radios y tamaños de página por tipo de búsqueda.
const (
	DefaultReportRadius = 10000.0
	ReportPageSize      = 50

	DefaultClinicRadius = 20000.0
	ClinicPageSize      = 20
)

// Point es un par WGS84. El orden (lon, lat) sigue el de GeoJSON.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

func (p Point) Validate() error {
	if math.IsNaN(p.Lon) || math.IsNaN(p.Lat) || math.IsInf(p.Lon, 0) || math.IsInf(p.Lat, 0) {
		return fmt.Errorf("%w: coordinates must be finite", sentinel.ErrValidation)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180,180]", sentinel.ErrValidation, p.Lon)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90,90]", sentinel.ErrValidation, p.Lat)
	}
	return nil
}

// Haversine devuelve la distancia de gran círculo en metros.
// Siempre es finita para puntos válidos, incluso en ±180 de longitud.
func Haversine(a, b Point) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLat := lat2 - lat1
	dLon := toRad(b.Lon - a.Lon)

	sLat := math.Sin(dLat / 2)
	sLon := math.Sin(dLon / 2)
	h := sLat*sLat + math.Cos(lat1)*math.Cos(lat2)*sLon*sLon

	// redondeo puede dejar h apenas fuera de [0,1] y Asin devolvería NaN
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

// Query describe una búsqueda por cercanía.
type Query struct {
	Origin      Point
	MaxDistance float64 // metros
	Limit       int
}

// Normalize valida el origen y aplica defaults.
// MaxDistance nil usa defaultRadius; 0 es válido y solo matchea puntos coincidentes.
func Normalize(origin Point, maxDistance *float64, defaultRadius float64, limit int) (Query, error) {
	if err := origin.Validate(); err != nil {
		return Query{}, err
	}
	d := defaultRadius
	if maxDistance != nil {
		d = *maxDistance
	}
	if math.IsNaN(d) || d < 0 {
		return Query{}, fmt.Errorf("%w: max distance must be >= 0", sentinel.ErrValidation)
	}
	return Query{Origin: origin, MaxDistance: d, Limit: limit}, nil
}

// Match es un resultado con su distancia al origen.
type Match[T any] struct {
	Item     T
	Distance float64
}

// Nearest filtra por radio, ordena por distancia ascendente y corta en q.Limit.
// Es la implementación de referencia; los adapters SQL deben devolver lo mismo.
func Nearest[T any](q Query, items []T, locate func(T) (Point, bool)) []Match[T] {
	out := make([]Match[T], 0)
	for _, it := range items {
		p, ok := locate(it)
		if !ok {
			continue
		}
		d := Haversine(q.Origin, p)
		if d <= q.MaxDistance {
			out = append(out, Match[T]{Item: it, Distance: d})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
