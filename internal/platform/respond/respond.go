// Package respond concentra writeJSON/errores HTTP, que antes estaba duplicado
// en cada handler de módulo.
package respond

import (
	"encoding/json"
	"net/http"

	"epaws/internal/platform/logger"
	"epaws/internal/platform/sentinel"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// Error traduce err con sentinel.HTTPStatus. Los 500 se loguean con el
// logger del request y no exponen el detalle.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := sentinel.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context(), nil).Error("request failed", map[string]any{"err": err})
	}
	JSON(w, status, errorBody{Error: sentinel.PublicMessage(err)})
}

// Message responde con un texto fijo (json inválido, falta auth, etc.).
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

// DecodeJSON decodifica el body rechazando campos desconocidos.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
