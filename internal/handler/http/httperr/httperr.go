// Package httperr writes the structured error bodies the API exposes.
package httperr

import (
	"encoding/json"
	"net/http"
	"time"
)

type Response struct {
	Message   string    `json:"message"`
	Error     string    `json:"error"`
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

type ValidationResponse struct {
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors"`
	Status    int               `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Path      string            `json:"path"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func Write(w http.ResponseWriter, r *http.Request, status int, label, message string) {
	WriteJSON(w, status, Response{
		Message:   message,
		Error:     label,
		Status:    status,
		Timestamp: time.Now().UTC(),
		Path:      r.URL.Path,
	})
}

func WriteNotFound(w http.ResponseWriter, r *http.Request, message string) {
	Write(w, r, http.StatusNotFound, "Not Found", message)
}

func WriteInternal(w http.ResponseWriter, r *http.Request) {
	Write(w, r, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred")
}

func WriteValidation(w http.ResponseWriter, r *http.Request, fieldErrors map[string]string) {
	WriteJSON(w, http.StatusBadRequest, ValidationResponse{
		Message:   "Validation failed",
		Errors:    fieldErrors,
		Status:    http.StatusBadRequest,
		Timestamp: time.Now().UTC(),
		Path:      r.URL.Path,
	})
}
