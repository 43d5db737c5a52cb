package middleware

import (
	"net/http"
	"strings"

	"postforlife/internal/auth"
	handlers "postforlife/internal/handler"
)

// AuthedHandlerFunc is a handler that receives the verified caller.
type AuthedHandlerFunc func(w http.ResponseWriter, r *http.Request, id auth.Identity)

type AccessTokenParser interface {
	ParseAccess(tokenString string) (auth.Identity, error)
}

// RequireAuth verifies the bearer access token and passes the caller to next.
func RequireAuth(tokens AccessTokenParser, next AuthedHandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Checking the "Bearer <token>" format
		scheme, tokenString, found := strings.Cut(r.Header.Get("Authorization"), " ")
		if !found || scheme != "Bearer" || tokenString == "" {
			handlers.WriteError(w, "Require authentication", http.StatusUnauthorized)
			return
		}

		identity, err := tokens.ParseAccess(tokenString)
		if err != nil {
			handlers.WriteError(w, "Invalid access token", http.StatusUnauthorized)
			return
		}

		next(w, r, identity)
	})
}

// RequireAdmin is RequireAuth restricted to the admin role.
func RequireAdmin(tokens AccessTokenParser, next AuthedHandlerFunc) http.Handler {
	return RequireAuth(tokens, func(w http.ResponseWriter, r *http.Request, id auth.Identity) {
		if !id.IsAdmin() {
			handlers.WriteError(w, "Require admin role", http.StatusUnauthorized)
			return
		}
		next(w, r, id)
	})
}
