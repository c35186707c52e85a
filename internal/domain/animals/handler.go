package animals

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"epaws/internal/domain/organizations"
	"epaws/internal/middleware"
	"epaws/internal/platform/respond"
	"epaws/internal/ports/auth"
)

type Operations interface {
	CreateAnimal(ctx context.Context, actor auth.Claims, in CreateInput) (View, error)
	GetAnimal(ctx context.Context, id string) (View, error)
	TransitionAnimal(ctx context.Context, actor auth.Claims, id string, in TransitionInput) (View, error)
	DeleteAnimal(ctx context.Context, actor auth.Claims, id string) error
}

func RegisterRoutes(r chi.Router, ops Operations) {
	r.Route("/animals", func(rr chi.Router) {
		rr.Post("/", createHandler(ops))
		rr.Get("/{animalID}", getHandler(ops))
		rr.Patch("/{animalID}", transitionHandler(ops))
		rr.Delete("/{animalID}", deleteHandler(ops))
	})
}

type healthPayload struct {
	Vaccinated   *bool   `json:"vaccinated"`
	Sterilized   *bool   `json:"sterilized"`
	Dewormed     *bool   `json:"dewormed"`
	MedicalNotes *string `json:"medical_notes"`
}

type createRequest struct {
	ReportID          string         `json:"report_id"`
	Name              string         `json:"name"`
	Species           string         `json:"species"`
	Breed             string         `json:"breed"`
	Gender            string         `json:"gender"`
	AgeEstimate       string         `json:"age_estimate"`
	Size              string         `json:"size"`
	Color             string         `json:"color"`
	Story             string         `json:"story"`
	PersonalityTraits []string       `json:"personality_traits"`
	SpecialNeeds      string         `json:"special_needs"`
	PhotoURLs         []string       `json:"photo_urls"`
	VideoURL          string         `json:"video_url"`
	Health            *healthPayload `json:"health"`
}

type updateRequest struct {
	Status            *string        `json:"status"`
	Name              *string        `json:"name"`
	Breed             *string        `json:"breed"`
	Gender            *string        `json:"gender"`
	AgeEstimate       *string        `json:"age_estimate"`
	Size              *string        `json:"size"`
	Color             *string        `json:"color"`
	Story             *string        `json:"story"`
	PersonalityTraits *[]string      `json:"personality_traits"`
	SpecialNeeds      *string        `json:"special_needs"`
	PhotoURLs         *[]string      `json:"photo_urls"`
	VideoURL          *string        `json:"video_url"`
	Health            *healthPayload `json:"health"`
}

type animalResponse struct {
	ID                string                 `json:"id"`
	ReportID          string                 `json:"report_id,omitempty"`
	OrganizationID    string                 `json:"organization_id"`
	Organization      *organizations.Summary `json:"organization,omitempty"`
	Name              string                 `json:"name"`
	Species           string                 `json:"species"`
	Breed             string                 `json:"breed"`
	Gender            string                 `json:"gender"`
	AgeEstimate       string                 `json:"age_estimate,omitempty"`
	Size              string                 `json:"size"`
	Color             string                 `json:"color,omitempty"`
	Story             string                 `json:"story,omitempty"`
	PersonalityTraits []string               `json:"personality_traits"`
	SpecialNeeds      string                 `json:"special_needs,omitempty"`
	PhotoURLs         []string               `json:"photo_urls"`
	VideoURL          string                 `json:"video_url,omitempty"`
	Health            HealthInfo             `json:"health"`
	Status            string                 `json:"status"`
	AdoptedAt         *time.Time             `json:"adopted_at"`
	Version           int64                  `json:"version"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// createHandler godoc
// @Summary Crear perfil de animal
// @Description Solo organizaciones. El animal nace `available` y suma 1 a `currentAnimals` de la organización. `report_id` opcional enlaza el reporte de origen.
// @Tags animals
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param X-Debug-Role header string false "Solo en modo dev (organization)"
// @Param payload body createRequest true "Datos del animal; size small|medium|large"
// @Success 201 {object} animalResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string "reporte no encontrado"
// @Router /animals [post]
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

		in := CreateInput{
			ReportID:          req.ReportID,
			Name:              req.Name,
			Species:           Species(req.Species),
			Breed:             req.Breed,
			Gender:            Gender(req.Gender),
			AgeEstimate:       req.AgeEstimate,
			Size:              Size(req.Size),
			Color:             req.Color,
			Story:             req.Story,
			PersonalityTraits: req.PersonalityTraits,
			SpecialNeeds:      req.SpecialNeeds,
			PhotoURLs:         req.PhotoURLs,
			VideoURL:          req.VideoURL,
		}
		if h := req.Health; h != nil {
			in.Health = HealthInfo{
				Vaccinated:   deref(h.Vaccinated),
				Sterilized:   deref(h.Sterilized),
				Dewormed:     deref(h.Dewormed),
				MedicalNotes: deref(h.MedicalNotes),
			}
		}

		v, err := ops.CreateAnimal(r.Context(), claims, in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toResponse(v))
	}
}

// getHandler godoc
// @Summary Detalle de animal
// @Tags animals
// @Produce json
// @Param animalID path string true "ID del animal"
// @Success 200 {object} animalResponse
// @Failure 404 {object} map[string]string
// @Router /animals/{animalID} [get]
func getHandler(ops Operations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := ops.GetAnimal(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toResponse(v))
	}
}

// transitionHandler godoc
// @Summary Actualizar animal (estado y atributos)
// @Description Solo la organización dueña o un admin. Entrar a `adopted` descuenta `currentAnimals` y estampa `adopted_at`; salir de `adopted` lo vuelve a sumar.
// @Tags animals
// @Accept json
// @Produce json
// @Param animalID path string true "ID del animal"
// @Param payload body updateRequest true "Campos a cambiar"
// @Success 200 {object} animalResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /animals/{animalID} [patch]
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

		in := TransitionInput{Attributes: AttributeUpdate{
			Name:              req.Name,
			Breed:             req.Breed,
			AgeEstimate:       req.AgeEstimate,
			Color:             req.Color,
			Story:             req.Story,
			PersonalityTraits: req.PersonalityTraits,
			SpecialNeeds:      req.SpecialNeeds,
			PhotoURLs:         req.PhotoURLs,
			VideoURL:          req.VideoURL,
		}}
		if req.Status != nil {
			st := Status(*req.Status)
			in.Status = &st
		}
		if req.Gender != nil {
			g := Gender(*req.Gender)
			in.Attributes.Gender = &g
		}
		if req.Size != nil {
			sz := Size(*req.Size)
			in.Attributes.Size = &sz
		}
		if h := req.Health; h != nil {
			in.Attributes.Health = &HealthUpdate{
				Vaccinated:   h.Vaccinated,
				Sterilized:   h.Sterilized,
				Dewormed:     h.Dewormed,
				MedicalNotes: h.MedicalNotes,
			}
		}

		v, err := ops.TransitionAnimal(r.Context(), claims, chi.URLParam(r, "animalID"), in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toResponse(v))
	}
}

// deleteHandler godoc
// @Summary Eliminar animal (soft delete)
// @Tags animals
// @Param animalID path string true "ID del animal"
// @Success 204
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /animals/{animalID} [delete]
func deleteHandler(ops Operations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			respond.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if err := ops.DeleteAnimal(r.Context(), claims, chi.URLParam(r, "animalID")); err != nil {
			respond.Error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toResponse(v View) animalResponse {
	a := v.Animal
	return animalResponse{
		ID:                a.ID,
		ReportID:          a.ReportID,
		OrganizationID:    a.OrganizationID,
		Organization:      v.Organization,
		Name:              a.Name,
		Species:           string(a.Species),
		Breed:             a.Breed,
		Gender:            string(a.Gender),
		AgeEstimate:       a.AgeEstimate,
		Size:              string(a.Size),
		Color:             a.Color,
		Story:             a.Story,
		PersonalityTraits: nonNil(a.PersonalityTraits),
		SpecialNeeds:      a.SpecialNeeds,
		PhotoURLs:         nonNil(a.PhotoURLs),
		VideoURL:          a.VideoURL,
		Health:            a.Health,
		Status:            string(a.Status),
		AdoptedAt:         a.AdoptedAt,
		Version:           a.Version,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
