package medical

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"epaws/internal/domain/animals"
	"epaws/internal/domain/organizations"
	"epaws/internal/middleware"
	"epaws/internal/platform/respond"
	"epaws/internal/ports/auth"
)

type Operations interface {
	CreateMedicalRecord(ctx context.Context, actor auth.Claims, in CreateInput) (View, error)
	GetMedicalRecord(ctx context.Context, id string) (View, error)
	TransitionMedicalRecord(ctx context.Context, actor auth.Claims, id string, in TransitionInput) (View, error)
}

func RegisterRoutes(r chi.Router, ops Operations) {
	r.Route("/medical-records", func(rr chi.Router) {
		rr.Post("/", createHandler(ops))
		rr.Get("/{recordID}", getHandler(ops))
		rr.Patch("/{recordID}", transitionHandler(ops))
	})
}

type createRequest struct {
	AnimalID        string       `json:"animal_id"`
	ReportID        string       `json:"report_id"`
	VisitType       string       `json:"visit_type"`
	Diagnosis       string       `json:"diagnosis"`
	Treatment       string       `json:"treatment"`
	Medications     []Medication `json:"medications"`
	Notes           string       `json:"notes"`
	EstimatedCost   float64      `json:"estimated_cost"`
	PhotoURLs       []string     `json:"photo_urls"`
	Documents       []Document   `json:"documents"`
	VisitDate       *time.Time   `json:"visit_date"`
	NextAppointment *time.Time   `json:"next_appointment"`
}

type updateRequest struct {
	Status          *string       `json:"status"`
	Diagnosis       *string       `json:"diagnosis"`
	Treatment       *string       `json:"treatment"`
	Medications     *[]Medication `json:"medications"`
	Notes           *string       `json:"notes"`
	EstimatedCost   *float64      `json:"estimated_cost"`
	ActualCost      *float64      `json:"actual_cost"`
	NextAppointment *time.Time    `json:"next_appointment"`
}

type recordResponse struct {
	ID              string                 `json:"id"`
	AnimalID        string                 `json:"animal_id"`
	Animal          *animals.Summary       `json:"animal,omitempty"`
	ReportID        string                 `json:"report_id,omitempty"`
	ClinicID        string                 `json:"clinic_id"`
	Clinic          *organizations.Summary `json:"clinic,omitempty"`
	OrganizationID  string                 `json:"organization_id"`
	VisitType       string                 `json:"visit_type"`
	Diagnosis       string                 `json:"diagnosis,omitempty"`
	Treatment       string                 `json:"treatment,omitempty"`
	Medications     []Medication           `json:"medications"`
	Notes           string                 `json:"notes,omitempty"`
	EstimatedCost   float64                `json:"estimated_cost"`
	ActualCost      float64                `json:"actual_cost"`
	TotalCost       float64                `json:"total_cost"`
	Status          string                 `json:"status"`
	PhotoURLs       []string               `json:"photo_urls"`
	Documents       []Document             `json:"documents"`
	VisitDate       time.Time              `json:"visit_date"`
	DischargeDate   *time.Time             `json:"discharge_date"`
	NextAppointment *time.Time             `json:"next_appointment"`
	Version         int64                  `json:"version"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// createHandler godoc
// @Summary Crear ficha médica
// @Description Solo veterinarias. Suma un caso atendido a la clínica y notifica a la organización dueña del animal.
// @Tags medical-records
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param X-Debug-Role header string false "Solo en modo dev (veterinary)"
// @Param payload body createRequest true "Visita; visit_type initial_exam|treatment|surgery|follow_up|vaccination|discharge"
// @Success 201 {object} recordResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /medical-records [post]
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

		v, err := ops.CreateMedicalRecord(r.Context(), claims, CreateInput{
			AnimalID:        req.AnimalID,
			ReportID:        req.ReportID,
			VisitType:       VisitType(req.VisitType),
			Diagnosis:       req.Diagnosis,
			Treatment:       req.Treatment,
			Medications:     req.Medications,
			Notes:           req.Notes,
			EstimatedCost:   req.EstimatedCost,
			PhotoURLs:       req.PhotoURLs,
			Documents:       req.Documents,
			VisitDate:       req.VisitDate,
			NextAppointment: req.NextAppointment,
		})
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toResponse(v))
	}
}

// getHandler godoc
// @Summary Detalle de ficha médica
// @Tags medical-records
// @Produce json
// @Param recordID path string true "ID de la ficha"
// @Success 200 {object} recordResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /medical-records/{recordID} [get]
func getHandler(ops Operations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetClaims(r.Context()); !ok {
			respond.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		v, err := ops.GetMedicalRecord(r.Context(), chi.URLParam(r, "recordID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toResponse(v))
	}
}

// transitionHandler godoc
// @Summary Actualizar ficha médica
// @Description Clínica dueña o admin. Completar una visita `discharge` estampa `discharge_date` y toda finalización notifica a la organización.
// @Tags medical-records
// @Accept json
// @Produce json
// @Param recordID path string true "ID de la ficha"
// @Param payload body updateRequest true "Campos a cambiar"
// @Success 200 {object} recordResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /medical-records/{recordID} [patch]
func transitionHandler(ops Operations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			respond.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req updateRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Message(w, http.StatusBadRequest, "invalid json")
			return
		}

		in := TransitionInput{Fields: FieldUpdate{
			Diagnosis:       req.Diagnosis,
			Treatment:       req.Treatment,
			Medications:     req.Medications,
			Notes:           req.Notes,
			EstimatedCost:   req.EstimatedCost,
			ActualCost:      req.ActualCost,
			NextAppointment: req.NextAppointment,
		}}
		if req.Status != nil {
			st := Status(*req.Status)
			in.Status = &st
		}

		v, err := ops.TransitionMedicalRecord(r.Context(), claims, chi.URLParam(r, "recordID"), in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toResponse(v))
	}
}

func toResponse(v View) recordResponse {
	rec := v.Record
	meds := rec.Medications
	if meds == nil {
		meds = []Medication{}
	}
	docs := rec.Documents
	if docs == nil {
		docs = []Document{}
	}
	photos := rec.PhotoURLs
	if photos == nil {
		photos = []string{}
	}
	return recordResponse{
		ID:              rec.ID,
		AnimalID:        rec.AnimalID,
		Animal:          v.Animal,
		ReportID:        rec.ReportID,
		ClinicID:        rec.ClinicID,
		Clinic:          v.Clinic,
		OrganizationID:  rec.OrganizationID,
		VisitType:       string(rec.VisitType),
		Diagnosis:       rec.Diagnosis,
		Treatment:       rec.Treatment,
		Medications:     meds,
		Notes:           rec.Notes,
		EstimatedCost:   rec.EstimatedCost,
		ActualCost:      rec.ActualCost,
		TotalCost:       rec.TotalCost(),
		Status:          string(rec.Status),
		PhotoURLs:       photos,
		Documents:       docs,
		VisitDate:       rec.VisitDate,
		DischargeDate:   rec.DischargeDate,
		NextAppointment: rec.NextAppointment,
		Version:         rec.Version,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}
