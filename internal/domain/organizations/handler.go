package organizations

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"epaws/internal/domain/geo"
	"epaws/internal/domain/ledger"
	"epaws/internal/middleware"
	"epaws/internal/platform/respond"
	"epaws/internal/ports/auth"
)

type Operations interface {
	RegisterOrganization(ctx context.Context, actor auth.Claims, in RegisterInput) (Organization, error)
	GetOrganization(ctx context.Context, id string) (Organization, error)
	NearbyClinics(ctx context.Context, origin geo.Point, maxDistance *float64) ([]Nearby, error)
}

func RegisterRoutes(r chi.Router, ops Operations) {
	r.Post("/organizations", registerHandler(ops))
	r.Get("/organizations/{orgID}", getHandler(ops))
	r.Get("/clinics/nearby", nearbyClinicsHandler(ops))
}

type registerRequest struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Address     string     `json:"address"`
	Location    *geo.Point `json:"location"`
	Specialties []string   `json:"specialties"`
	Verified    bool       `json:"verified"`
}

type organizationResponse struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Name        string          `json:"name"`
	Email       string          `json:"email,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Address     string          `json:"address,omitempty"`
	Location    *geo.Point      `json:"location,omitempty"`
	Specialties []string        `json:"specialties"`
	Verified    bool            `json:"verified"`
	Active      bool            `json:"active"`
	Counters    ledger.Counters `json:"counters"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type nearbyClinicResponse struct {
	organizationResponse
	DistanceMeters float64 `json:"distance_meters"`
}

// registerHandler godoc
// @Summary Registrar organización o clínica
// @Description Alta de un refugio (`organization`) o clínica (`clinic`). Solo administradores. Las clínicas requieren `location`.
// @Tags organizations
// @Accept json
// @Produce json
// @Param payload body registerRequest true "Datos de la organización"
// @Success 201 {object} organizationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /organizations [post]
func registerHandler(ops Operations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			respond.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req registerRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Message(w, http.StatusBadRequest, "invalid json")
			return
		}

		o, err := ops.RegisterOrganization(r.Context(), claims, RegisterInput{
			ID:          req.ID,
			Kind:        Kind(strings.TrimSpace(req.Kind)),
			Name:        req.Name,
			Email:       req.Email,
			Phone:       req.Phone,
			Address:     req.Address,
			Location:    req.Location,
			Specialties: req.Specialties,
			Verified:    req.Verified,
		})
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusCreated, toResponse(o))
	}
}

// getHandler godoc
// @Summary Detalle de organización
// @Description Incluye los contadores del ledger (currentAnimals, totalRescues, totalCasesHandled).
// @Tags organizations
// @Produce json
// @Param orgID path string true "ID de la organización"
// @Success 200 {object} organizationResponse
// @Failure 404 {object} map[string]string
// @Router /organizations/{orgID} [get]
func getHandler(ops Operations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := ops.GetOrganization(r.Context(), chi.URLParam(r, "orgID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toResponse(o))
	}
}

// nearbyClinicsHandler godoc
// @Summary Clínicas cercanas
// @Tags organizations
// @Produce json
// @Param lat query number true "Latitud"
// @Param lon query number true "Longitud"
// @Param max_distance query number false "Radio en metros (default 20000)"
// @Success 200 {array} nearbyClinicResponse
// @Failure 400 {object} map[string]string
// @Router /clinics/nearby [get]
func nearbyClinicsHandler(ops Operations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin, maxDistance, ok := parseNearbyQuery(w, r)
		if !ok {
			return
		}

		items, err := ops.NearbyClinics(r.Context(), origin, maxDistance)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		out := make([]nearbyClinicResponse, 0, len(items))
		for _, it := range items {
			out = append(out, nearbyClinicResponse{
				organizationResponse: toResponse(it.Organization),
				DistanceMeters:       it.Distance,
			})
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func parseNearbyQuery(w http.ResponseWriter, r *http.Request) (geo.Point, *float64, bool) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		respond.Message(w, http.StatusBadRequest, "lat and lon are required numbers")
		return geo.Point{}, nil, false
	}

	var maxDistance *float64
	if raw := strings.TrimSpace(q.Get("max_distance")); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respond.Message(w, http.StatusBadRequest, "max_distance must be a number")
			return geo.Point{}, nil, false
		}
		maxDistance = &d
	}
	return geo.Point{Lon: lon, Lat: lat}, maxDistance, true
}

func toResponse(o Organization) organizationResponse {
	specs := o.Specialties
	if specs == nil {
		specs = []string{}
	}
	return organizationResponse{
		ID:          o.ID,
		Kind:        string(o.Kind),
		Name:        o.Name,
		Email:       o.Email,
		Phone:       o.Phone,
		Address:     o.Address,
		Location:    o.Location,
		Specialties: specs,
		Verified:    o.Verified,
		Active:      o.Active,
		Counters:    o.Counters,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}
