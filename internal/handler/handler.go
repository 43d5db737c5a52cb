package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"postforlife/internal/config"
	"postforlife/internal/service"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	UserService    service.UserService
	AuthService    service.AuthService
	PostService    service.PostService
	CommentService service.CommentService
	DB             Pinger
	Cfg            *config.Config
	Validate       *validator.Validate
}

func NewHandlers(service *service.Service, db Pinger, config *config.Config) *Handlers {
	return &Handlers{
		UserService:    service.User,
		AuthService:    service.Auth,
		PostService:    service.Post,
		CommentService: service.Comment,
		DB:             db,
		Cfg:            config,
		Validate:       newValidator(),
	}
}

// newValidator reports field errors under their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into req and validates it. On failure the error
// response is already written.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, validationMessage(err), http.StatusBadRequest)
		return false
	}

	return true
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.PingContext(r.Context()); err != nil {
			WriteError(w, fmt.Sprintf("database unavailable: %v", err), http.StatusServiceUnavailable)
			return
		}
	}

	WriteSuccess(w, map[string]any{"status": "ok"}, http.StatusOK)
}
