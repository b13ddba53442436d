package api

import (
	"encoding/json"
	"net/http"

	"github.com/yanizio/formrelay/internal/form"
	"github.com/yanizio/formrelay/internal/middleware"
)

type errorBody struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Details []form.ErrorField `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeValidation(w http.ResponseWriter, ve *form.ValidationError) {
	writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "Validation failed", Details: ve.Fields})
}

func writeServerError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(middleware.ServerErrorBody))
}
