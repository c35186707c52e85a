package notifications

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"epaws/internal/middleware"
	"epaws/internal/platform/respond"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/me/notifications", func(nr chi.Router) {
		nr.Get("/", listHandler(svc))
		nr.Get("/unread-count", unreadCountHandler(svc))
		nr.Post("/read-all", markAllReadHandler(svc))
		nr.Delete("/read", deleteReadHandler(svc))
		nr.Post("/{notificationID}/read", markReadHandler(svc))
		nr.Delete("/{notificationID}", deleteHandler(svc))
	})
}

type notificationResponse struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Related   *Related   `json:"related,omitempty"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

// listHandler godoc
// @Summary Mis notificaciones
// @Description Lista el buzón del usuario autenticado, más recientes primero.
// @Tags notifications
// @Produce json
// @Param unread query bool false "Solo no leídas (true) o solo leídas (false)"
// @Param type query string false "report_update|new_case|medical_update|adoption_update|message|system"
// @Param limit query int false "1-100, default 20"
// @Param offset query int false "default 0"
// @Success 200 {array} notificationResponse
// @Failure 401 {object} map[string]string
// @Router /me/notifications [get]
func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			respond.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		q := r.URL.Query()
		f := ListFilter{Type: Type(strings.TrimSpace(q.Get("type")))}
		if raw := strings.TrimSpace(q.Get("unread")); raw != "" {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				respond.Message(w, http.StatusBadRequest, "unread must be a boolean")
				return
			}
			f.Unread = &b
		}
		if raw := q.Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				respond.Message(w, http.StatusBadRequest, "limit must be an integer")
				return
			}
			f.Limit = n
		}
		if raw := q.Get("offset"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				respond.Message(w, http.StatusBadRequest, "offset must be an integer")
				return
			}
			f.Offset = n
		}

		items, err := svc.List(r.Context(), claims.UserID, f)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		out := make([]notificationResponse, 0, len(items))
		for _, n := range items {
			out = append(out, toResponse(n))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// unreadCountHandler godoc
// @Summary Cantidad de no leídas
// @Tags notifications
// @Produce json
// @Success 200 {object} countResponse
// @Router /me/notifications/unread-count [get]
func unreadCountHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			respond.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		n, err := svc.UnreadCount(r.Context(), claims.UserID)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, countResponse{Count: n})
	}
}

// markReadHandler godoc
// @Summary Marcar como leída
// @Tags notifications
// @Produce json
// @Param notificationID path string true "ID de la notificación"
// @Success 200 {object} notificationResponse
// @Failure 404 {object} map[string]string
// @Router /me/notifications/{notificationID}/read [post]
func markReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			respond.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		n, err := svc.MarkRead(r.Context(), claims.UserID, chi.URLParam(r, "notificationID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toResponse(n))
	}
}

// markAllReadHandler godoc
// @Summary Marcar todas como leídas
// @Tags notifications
// @Produce json
// @Success 200 {object} countResponse
// @Router /me/notifications/read-all [post]
func markAllReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			respond.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		n, err := svc.MarkAllRead(r.Context(), claims.UserID)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, countResponse{Count: n})
	}
}

// deleteHandler godoc
// @Summary Eliminar notificación
// @Tags notifications
// @Param notificationID path string true "ID de la notificación"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /me/notifications/{notificationID} [delete]
func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			respond.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "notificationID")); err != nil {
			respond.Error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// deleteReadHandler godoc
// @Summary Eliminar todas las leídas
// @Tags notifications
// @Produce json
// @Success 200 {object} countResponse
// @Router /me/notifications/read [delete]
func deleteReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			respond.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		n, err := svc.DeleteAllRead(r.Context(), claims.UserID)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, countResponse{Count: n})
	}
}

func toResponse(n Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Body:      n.Body,
		Related:   n.Related,
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
