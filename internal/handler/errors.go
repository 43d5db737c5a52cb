package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"postforlife/internal/reaction"
	"postforlife/internal/repository"
	"postforlife/internal/service"
	"postforlife/internal/storage"
)

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Mess    string `json:"mess"`
}

func WriteError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Success: false, Mess: message})
}

// WriteSuccess writes payload with success set to true.
func WriteSuccess(w http.ResponseWriter, payload map[string]any, statusCode int) {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeServiceError maps service and repository errors to a status code.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmailUsed):
		WriteError(w, "Email is used", http.StatusBadRequest)
	case errors.Is(err, service.ErrMobileUsed):
		WriteError(w, "Mobile is used", http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, reaction.ErrUnknownType),
		errors.Is(err, repository.ErrInvalidQuery),
		errors.Is(err, storage.ErrNotImage):
		WriteError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteError(w, "Invalid password or username", http.StatusUnauthorized)
	case errors.Is(err, service.ErrBlocked), errors.Is(err, service.ErrInvalidToken):
		WriteError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrNotFound):
		WriteError(w, err.Error(), http.StatusNotFound)
	default:
		slog.Error("request failed", "error", err)
		WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}

// validationMessage turns validator errors into one client message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid input"
	}

	missing := lo.FilterMap(verrs, func(fe validator.FieldError, _ int) (string, bool) {
		return fe.Field(), fe.Tag() == "required"
	})
	if len(missing) > 0 {
		return "Missing inputs: " + strings.Join(missing, ", ")
	}

	invalid := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
		return fe.Field()
	})
	return "Invalid " + strings.Join(lo.Uniq(invalid), ", ")
}
