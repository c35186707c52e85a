package reports

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"epaws/internal/domain/geo"
	"epaws/internal/domain/organizations"
	"epaws/internal/middleware"
	"epaws/internal/platform/respond"
	"epaws/internal/ports/auth"
)

// Operations es lo que el handler necesita del motor de workflow.
type Operations interface {
	CreateReport(ctx context.Context, actor auth.Claims, in CreateInput) (View, error)
	GetReport(ctx context.Context, id string) (View, error)
	TransitionReport(ctx context.Context, actor auth.Claims, id string, in TransitionInput) (View, error)
	NearbyReports(ctx context.Context, origin geo.Point, maxDistance *float64) ([]Nearby, error)
}

func RegisterRoutes(r chi.Router, ops Operations) {
	r.Route("/reports", func(rr chi.Router) {
		rr.Post("/", createHandler(ops))
		rr.Get("/nearby", nearbyHandler(ops))
		rr.Get("/{reportID}", getHandler(ops))
		rr.Patch("/{reportID}", transitionHandler(ops))
	})
}

type createRequest struct {
	Description string   `json:"description"`
	Urgency     string   `json:"urgency"`
	AnimalType  string   `json:"animal_type"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Address     string   `json:"address"`
	PhotoURLs   []string `json:"photo_urls"`
}

type transitionRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Status         *string `json:"status"`
	OrganizationID *string `json:"organization_id"`
	ClinicID       *string `json:"clinic_id"`
	Notes          *string `json:"notes"`
}

type reportResponse struct {
	ID           string                 `json:"id"`
	ReporterID   string                 `json:"reporter_id"`
	Organization *organizations.Summary `json:"organization,omitempty"`
	Clinic       *organizations.Summary `json:"clinic,omitempty"`

	OrganizationID string `json:"organization_id,omitempty"`
	ClinicID       string `json:"clinic_id,omitempty"`

	Description string    `json:"description"`
	Urgency     string    `json:"urgency"`
	AnimalType  string    `json:"animal_type"`
	Status      string    `json:"status"`
	Location    geo.Point `json:"location"`
	Address     string    `json:"address,omitempty"`
	PhotoURLs   []string  `json:"photo_urls"`
	Notes       string    `json:"notes,omitempty"`

	RescuedAt *time.Time `json:"rescued_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type nearbyResponse struct {
	reportResponse
	DistanceMeters float64 `json:"distance_meters"`
}

// createHandler godoc
// @Summary Crear reporte
// @Description Un ciudadano reporta un animal que necesita ayuda. El reporte nace en `pending`. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags reports
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createRequest true "Datos del reporte; urgency low|medium|high|critical"
// @Success 201 {object} reportResponse
// @Failure 400 {object} map[string]string "json inválido / coordenadas fuera de rango"
// @Failure 401 {object} map[string]string
// @Router /reports [post]
func createHandler(ops Operations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			respond.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req createRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Message(w, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Latitude == nil || req.Longitude == nil {
			respond.Message(w, http.StatusBadRequest, "latitude and longitude are required")
			return
		}

		v, err := ops.CreateReport(r.Context(), claims, CreateInput{
			Description: req.Description,
			Urgency:     Urgency(strings.TrimSpace(req.Urgency)),
			AnimalType:  AnimalType(strings.TrimSpace(req.AnimalType)),
			Location:    geo.Point{Lon: *req.Longitude, Lat: *req.Latitude},
			Address:     req.Address,
			PhotoURLs:   req.PhotoURLs,
		})
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusCreated, toResponse(v))
	}
}

// getHandler godoc
// @Summary Detalle de reporte
// @Tags reports
// @Produce json
// @Param reportID path string true "ID del reporte"
// @Success 200 {object} reportResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /reports/{reportID} [get]
func getHandler(ops Operations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetClaims(r.Context()); !ok {
			respond.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		v, err := ops.GetReport(r.Context(), chi.URLParam(r, "reportID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toResponse(v))
	}
}

// transitionHandler godoc
// @Summary Actualizar reporte (estado / asignación / notas)
// @Description Solo la organización asignada (o cualquiera si no hay asignada) o un admin. `assigned` requiere organización y `in_veterinary` requiere clínica, ya sea existente o enviada en el mismo request. Reasignar notifica al nuevo responsable.
// @Tags reports
// @Accept json
// @Produce json
// @Param reportID path string true "ID del reporte"
// @Param payload body transitionRequest true "Campos a cambiar"
// @Success 200 {object} reportResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "transición inválida o escritura concurrente"
// @Router /reports/{reportID} [patch]
func transitionHandler(ops Operations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			respond.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req transitionRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Message(w, http.StatusBadRequest, "invalid json")
			return
		}

		in := TransitionInput{
			OrganizationID: req.OrganizationID,
			ClinicID:       req.ClinicID,
			Notes:          req.Notes,
		}
		if req.Status != nil {
			st := Status(strings.TrimSpace(*req.Status))
			in.Status = &st
		}

		v, err := ops.TransitionReport(r.Context(), claims, chi.URLParam(r, "reportID"), in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toResponse(v))
	}
}

// nearbyHandler godoc
// @Summary Casos abiertos cercanos
// @Description Reportes `pending` o `assigned` dentro del radio, más cercanos primero (máx 50).
// @Tags reports
// @Produce json
// @Param lat query number true "Latitud"
// @Param lon query number true "Longitud"
// @Param max_distance query number false "Radio en metros (default 10000)"
// @Success 200 {array} nearbyResponse
// @Failure 400 {object} map[string]string
// @Router /reports/nearby [get]
func nearbyHandler(ops Operations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
		lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
		if errLat != nil || errLon != nil {
			respond.Message(w, http.StatusBadRequest, "lat and lon are required numbers")
			return
		}

		var maxDistance *float64
		if raw := strings.TrimSpace(q.Get("max_distance")); raw != "" {
			d, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				respond.Message(w, http.StatusBadRequest, "max_distance must be a number")
				return
			}
			maxDistance = &d
		}

		items, err := ops.NearbyReports(r.Context(), geo.Point{Lon: lon, Lat: lat}, maxDistance)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		out := make([]nearbyResponse, 0, len(items))
		for _, it := range items {
			out = append(out, nearbyResponse{
				reportResponse: toResponse(View{Report: it.Report}),
				DistanceMeters: it.Distance,
			})
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func toResponse(v View) reportResponse {
	rp := v.Report
	photos := rp.PhotoURLs
	if photos == nil {
		photos = []string{}
	}
	return reportResponse{
		ID:             rp.ID,
		ReporterID:     rp.ReporterID,
		Organization:   v.Organization,
		Clinic:         v.Clinic,
		OrganizationID: rp.OrganizationID,
		ClinicID:       rp.ClinicID,
		Description:    rp.Description,
		Urgency:        string(rp.Urgency),
		AnimalType:     string(rp.AnimalType),
		Status:         string(rp.Status),
		Location:       rp.Location,
		Address:        rp.Address,
		PhotoURLs:      photos,
		Notes:          rp.Notes,
		RescuedAt:      rp.RescuedAt,
		ClosedAt:       rp.ClosedAt,
		Version:        rp.Version,
		CreatedAt:      rp.CreatedAt,
		UpdatedAt:      rp.UpdatedAt,
	}
}
