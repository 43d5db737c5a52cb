package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"postforlife/internal/auth"
	"postforlife/internal/service"
)

type UpdateUserRequest struct {
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Mobile    *string `json:"mobile"`
	Password  *string `json:"password"`
}

func (req UpdateUserRequest) input() service.UpdateUserInput {
	return service.UpdateUserInput{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Mobile:    req.Mobile,
		Password:  req.Password,
	}
}

type AdminUpdateUserRequest struct {
	UpdateUserRequest
	Role      *string `json:"role" validate:"omitempty,oneof=user admin"`
	IsBlocked *bool   `json:"isBlocked"`
}

func (h *Handlers) GetCurrent(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	user, err := h.UserService.GetCurrent(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"rs": user}, http.StatusOK)
}

func (h *Handlers) GetUsers(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"users": users}, http.StatusOK)
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	userID := r.URL.Query().Get("_id")
	if userID == "" {
		WriteError(w, "Missing inputs: _id", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.DeleteUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{
		"deleteUser": fmt.Sprintf("User with email %s deleted", user.Email),
	}, http.StatusOK)
}

func (h *Handlers) UpdateCurrent(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req UpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.UserService.UpdateCurrent(r.Context(), id.UserID, req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"updatedUser": user}, http.StatusOK)
}

func (h *Handlers) UpdateUserByAdmin(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	var req AdminUpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.UserService.UpdateByAdmin(r.Context(), mux.Vars(r)["uid"], service.AdminUpdateUserInput{
		UpdateUserInput: req.input(),
		Role:            req.Role,
		IsBlocked:       req.IsBlocked,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"updatedUser": user}, http.StatusOK)
}

func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	if !h.parseMultipart(w, r) {
		return
	}

	// getting the file
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	user, err := h.UserService.UploadAvatar(r.Context(), id.UserID, service.File{
		Name:   header.Filename,
		Size:   header.Size,
		Reader: file,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"user": user}, http.StatusOK)
}

// parseMultipart bounds the request body by MaxUploadSize before parsing.
func (h *Handlers) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize)

	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, fmt.Sprintf("File is too large (max %d MB)", h.Cfg.MaxUploadSize/(1024*1024)), http.StatusBadRequest)
		} else {
			WriteError(w, "Failed to read multipart form", http.StatusBadRequest)
		}
		return false
	}

	return true
}
