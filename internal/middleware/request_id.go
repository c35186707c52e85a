package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"epaws/internal/platform/logger"
)

// RequestLogger deja en el contexto un logger con request_id (y user_id si ya
// hay claims). Debe ir después de chimw.RequestID y AuthContext.
func RequestLogger(base logger.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fields := map[string]any{
				"request_id": chimw.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
			}
			if c, ok := GetClaims(r.Context()); ok {
				fields["user_id"] = c.UserID
				fields["role"] = string(c.Role)
			}
			ctx := logger.IntoContext(r.Context(), base.With(fields))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
