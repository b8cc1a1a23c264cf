package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"financas/internal/core"
	"financas/internal/log"
)

type errorBody struct {
	Error string `json:"error"`
}

type validationBody struct {
	Errors core.ValidationErrors `json:"errors"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Failed to write response", log.FieldError, err)
	}
}

// writeError answers with {"error": ...}, or the field list for validation
// failures.
func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	var ve core.ValidationErrors
	if errors.As(err, &ve) {
		writeJSON(w, r, status, validationBody{Errors: ve})
		return
	}
	writeJSON(w, r, status, errorBody{Error: err.Error()})
}
