package adoptions

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"epaws/internal/domain/animals"
	"epaws/internal/domain/organizations"
	"epaws/internal/middleware"
	"epaws/internal/platform/respond"
	"epaws/internal/ports/auth"
)

type Operations interface {
	SubmitAdoption(ctx context.Context, actor auth.Claims, in SubmitInput) (View, error)
	GetAdoption(ctx context.Context, actor auth.Claims, id string) (View, error)
	TransitionAdoption(ctx context.Context, actor auth.Claims, id string, in TransitionInput) (View, error)
	CancelAdoption(ctx context.Context, actor auth.Claims, id string) (View, error)
}

func RegisterRoutes(r chi.Router, ops Operations) {
	r.Route("/adoptions", func(rr chi.Router) {
		rr.Post("/", submitHandler(ops))
		rr.Get("/{adoptionID}", getHandler(ops))
		rr.Patch("/{adoptionID}/status", transitionHandler(ops))
		rr.Post("/{adoptionID}/cancel", cancelHandler(ops))
	})
}

type submitRequest struct {
	AnimalID    string      `json:"animal_id"`
	Message     string      `json:"message"`
	AdopterInfo AdopterInfo `json:"adopter_info"`
}

type statusRequest struct {
	Status          string  `json:"status"`
	ReviewNotes     *string `json:"review_notes"`
	RejectionReason *string `json:"rejection_reason"`
}

type adoptionResponse struct {
	ID              string                 `json:"id"`
	AnimalID        string                 `json:"animal_id"`
	Animal          *animals.Summary       `json:"animal,omitempty"`
	AdopterID       string                 `json:"adopter_id"`
	OrganizationID  string                 `json:"organization_id"`
	Organization    *organizations.Summary `json:"organization,omitempty"`
	Message         string                 `json:"message"`
	AdopterInfo     AdopterInfo            `json:"adopter_info"`
	Status          string                 `json:"status"`
	ReviewNotes     string                 `json:"review_notes,omitempty"`
	RejectionReason string                 `json:"rejection_reason,omitempty"`
	AppliedAt       time.Time              `json:"applied_at"`
	ReviewedAt      *time.Time             `json:"reviewed_at"`
	CompletedAt     *time.Time             `json:"completed_at"`
	Version         int64                  `json:"version"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// submitHandler godoc
// @Summary Solicitar adopción
// @Description Solo usuarios. El animal debe estar `available`; una segunda solicitud activa del mismo usuario para el mismo animal responde 409.
// @Tags adoptions
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param payload body submitRequest true "Solicitud; message 50-2000 caracteres"
// @Success 201 {object} adoptionResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "duplicada o animal no disponible"
// @Router /adoptions [post]
func submitHandler(ops Operations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			respond.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req submitRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Message(w, http.StatusBadRequest, "invalid json")
			return
		}

		v, err := ops.SubmitAdoption(r.Context(), claims, SubmitInput{
			AnimalID:    req.AnimalID,
			Message:     req.Message,
			AdopterInfo: req.AdopterInfo,
		})
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toResponse(v))
	}
}

// getHandler godoc
// @Summary Detalle de solicitud
// @Description Visible para el adoptante, la organización dueña o un admin.
// @Tags adoptions
// @Produce json
// @Param adoptionID path string true "ID de la solicitud"
// @Success 200 {object} adoptionResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /adoptions/{adoptionID} [get]
func getHandler(ops Operations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			respond.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		v, err := ops.GetAdoption(r.Context(), claims, chi.URLParam(r, "adoptionID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toResponse(v))
	}
}

// transitionHandler godoc
// @Summary Revisar solicitud
// @Description Organización dueña o admin. `approved` reserva el animal (`pending_adoption`), `completed` lo marca `adopted`, `rejected`/`cancelled` lo liberan si seguía reservado.
// @Tags adoptions
// @Accept json
// @Produce json
// @Param adoptionID path string true "ID de la solicitud"
// @Param payload body statusRequest true "Nuevo estado"
// @Success 200 {object} adoptionResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /adoptions/{adoptionID}/status [patch]
func transitionHandler(ops Operations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			respond.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req statusRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Message(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(req.Status) == "" {
			respond.Message(w, http.StatusBadRequest, "status is required")
			return
		}

		v, err := ops.TransitionAdoption(r.Context(), claims, chi.URLParam(r, "adoptionID"), TransitionInput{
			Status:          Status(strings.TrimSpace(req.Status)),
			ReviewNotes:     req.ReviewNotes,
			RejectionReason: req.RejectionReason,
		})
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toResponse(v))
	}
}

// cancelHandler godoc
// @Summary Cancelar solicitud
// @Description Solo el adoptante, mientras la solicitud está pending, under_review o approved.
// @Tags adoptions
// @Produce json
// @Param adoptionID path string true "ID de la solicitud"
// @Success 200 {object} adoptionResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /adoptions/{adoptionID}/cancel [post]
func cancelHandler(ops Operations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			respond.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		v, err := ops.CancelAdoption(r.Context(), claims, chi.URLParam(r, "adoptionID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toResponse(v))
	}
}

func toResponse(v View) adoptionResponse {
	a := v.Adoption
	return adoptionResponse{
		ID:              a.ID,
		AnimalID:        a.AnimalID,
		Animal:          v.Animal,
		AdopterID:       a.AdopterID,
		OrganizationID:  a.OrganizationID,
		Organization:    v.Organization,
		Message:         a.Message,
		AdopterInfo:     a.AdopterInfo,
		Status:          string(a.Status),
		ReviewNotes:     a.ReviewNotes,
		RejectionReason: a.RejectionReason,
		AppliedAt:       a.AppliedAt,
		ReviewedAt:      a.ReviewedAt,
		CompletedAt:     a.CompletedAt,
		Version:         a.Version,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
