package geo

import (
	"errors"
	"math"
	"testing"

	"epaws/internal/platform/sentinel"
)

func TestValidate(t *testing.T) {
	ok := []Point{{-70.6, -33.45}, {180, 90}, {-180, -90}, {0, 0}}
	for _, p := range ok {
		if err := p.Validate(); err != nil {
			t.Fatalf("expected %v valid, got %v", p, err)
		}
	}

	bad := []Point{{180.0001, 0}, {0, -90.5}, {math.NaN(), 0}, {0, math.Inf(1)}}
	for _, p := range bad {
		if err := p.Validate(); !errors.Is(err, sentinel.ErrValidation) {
			t.Fatalf("expected ErrValidation for %v, got %v", p, err)
		}
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Santiago -> Valparaíso ~ 98-99 km
	santiago := Point{Lon: -70.6693, Lat: -33.4489}
	valpo := Point{Lon: -71.6127, Lat: -33.0472}

	d := Haversine(santiago, valpo)
	if d < 97000 || d > 100000 {
		t.Fatalf("unexpected distance %f", d)
	}
	if Haversine(santiago, santiago) != 0 {
		t.Fatalf("expected zero distance for same point")
	}
}

func TestHaversine_Antimeridian(t *testing.T) {
	d := Haversine(Point{Lon: 180, Lat: 10}, Point{Lon: -180, Lat: 10})
	if math.IsNaN(d) || math.IsInf(d, 0) {
		t.Fatalf("expected finite distance, got %v", d)
	}
	if d > 1 {
		t.Fatalf("±180 are the same meridian, got %f m", d)
	}

	antipodal := Haversine(Point{Lon: 0, Lat: 0}, Point{Lon: 180, Lat: 0})
	if math.Abs(antipodal-math.Pi*EarthRadiusMeters) > 1 {
		t.Fatalf("expected half circumference, got %f", antipodal)
	}
}

type place struct {
	id  string
	loc *Point
}

func locate(p place) (Point, bool) {
	if p.loc == nil {
		return Point{}, false
	}
	return *p.loc, true
}

func TestNearest_OrderRadiusAndLimit(t *testing.T) {
	origin := Point{Lon: -70.6, Lat: -33.45}
	items := []place{
		{"far", &Point{Lon: -70.0, Lat: -33.45}},   // ~55 km
		{"near", &Point{Lon: -70.61, Lat: -33.45}}, // ~1 km
		{"same", &Point{Lon: -70.6, Lat: -33.45}},  // 0 m
		{"mid", &Point{Lon: -70.65, Lat: -33.45}},  // ~4.6 km
		{"nowhere", nil},
	}

	got := Nearest(Query{Origin: origin, MaxDistance: 10000, Limit: 2}, items, locate)
	if len(got) != 2 || got[0].Item.id != "same" || got[1].Item.id != "near" {
		t.Fatalf("unexpected result %+v", got)
	}

	all := Nearest(Query{Origin: origin, MaxDistance: 10000}, items, locate)
	if len(all) != 3 || all[2].Item.id != "mid" {
		t.Fatalf("unexpected result %+v", all)
	}
}

func TestNearest_ZeroRadiusOnlyCoincident(t *testing.T) {
	origin := Point{Lon: 10, Lat: 10}
	items := []place{
		{"a", &Point{Lon: 10, Lat: 10}},
		{"b", &Point{Lon: 10.00001, Lat: 10}},
	}
	got := Nearest(Query{Origin: origin, MaxDistance: 0}, items, locate)
	if len(got) != 1 || got[0].Item.id != "a" {
		t.Fatalf("expected only coincident point, got %+v", got)
	}

	none := Nearest(Query{Origin: Point{Lon: 0, Lat: 0}, MaxDistance: 0}, items, locate)
	if len(none) != 0 {
		t.Fatalf("expected empty, got %+v", none)
	}
}

func TestNormalize(t *testing.T) {
	q, err := Normalize(Point{Lon: 1, Lat: 1}, nil, DefaultReportRadius, ReportPageSize)
	if err != nil || q.MaxDistance != DefaultReportRadius || q.Limit != ReportPageSize {
		t.Fatalf("unexpected %+v err=%v", q, err)
	}

	zero := 0.0
	q, err = Normalize(Point{Lon: 1, Lat: 1}, &zero, DefaultReportRadius, ReportPageSize)
	if err != nil || q.MaxDistance != 0 {
		t.Fatalf("expected explicit zero radius to be kept, got %+v err=%v", q, err)
	}

	neg := -1.0
	if _, err := Normalize(Point{Lon: 1, Lat: 1}, &neg, DefaultReportRadius, ReportPageSize); !errors.Is(err, sentinel.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := Normalize(Point{Lon: 200, Lat: 1}, nil, DefaultClinicRadius, ClinicPageSize); !errors.Is(err, sentinel.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
