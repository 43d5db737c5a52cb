package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"postforlife/internal/service"
)

const refreshCookieName = "refreshToken"

type RegisterRequest struct {
	Firstname string `json:"firstname" validate:"required"`
	Lastname  string `json:"lastname" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Mobile    string `json:"mobile" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required"`
	Token    string `json:"token"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	_, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Mobile:    req.Mobile,
		Password:  req.Password,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"mess": "Register is successful"}, http.StatusOK)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// refresh token only travels in the cookie
	http.SetCookie(w, h.refreshCookie(result.RefreshToken, int(h.Cfg.RefreshTokenDuration.Seconds())))

	WriteSuccess(w, map[string]any{
		"accessToken": result.AccessToken,
		"userData":    result.User,
	}, http.StatusOK)
}

func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	accessToken, err := h.AuthService.RefreshAccessToken(r.Context(), readRefreshCookie(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"newAccessToken": accessToken}, http.StatusOK)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.Logout(r.Context(), readRefreshCookie(r)); err != nil {
		writeServiceError(w, err)
		return
	}

	http.SetCookie(w, h.refreshCookie("", -1))
	WriteSuccess(w, map[string]any{"mess": "Logout successfully"}, http.StatusOK)
}

func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		WriteError(w, "Missing email", http.StatusBadRequest)
		return
	}

	if err := h.AuthService.ForgotPassword(r.Context(), email); err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"rs": "Check your email to reset password"}, http.StatusOK)
}

// ResetPassword accepts the token in the body or as the last path segment of
// the mailed link.
func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	token := req.Token
	if token == "" {
		token = mux.Vars(r)["token"]
	}
	if token == "" {
		WriteError(w, "Missing inputs: token", http.StatusBadRequest)
		return
	}

	if err := h.AuthService.ResetPassword(r.Context(), token, req.Password); err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"mess": "Updated password"}, http.StatusOK)
}

func (h *Handlers) refreshCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func readRefreshCookie(r *http.Request) string {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
