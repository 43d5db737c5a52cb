package router

import (
	"net/http"

	"github.com/gorilla/mux"

	handlers "postforlife/internal/handler"
	"postforlife/internal/metrics"
	"postforlife/internal/middleware"
)

// New registers every API route on a single router so a method mismatch
// on a known path is reported as 405. Static paths under /api/user are
// added before /{uid} so they are never captured as a user id.
func New(h *handlers.Handlers, tokens middleware.AccessTokenParser) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	authed := func(f middleware.AuthedHandlerFunc) http.Handler { return middleware.RequireAuth(tokens, f) }
	admin := func(f middleware.AuthedHandlerFunc) http.Handler { return middleware.RequireAdmin(tokens, f) }

	// collection routes answer with and without the trailing slash
	root := func(prefix, method string, handler http.Handler) {
		r.Handle(prefix, handler).Methods(method)
		r.Handle(prefix+"/", handler).Methods(method)
	}

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/api/user/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/user/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/user/refreshToken", h.RefreshToken).Methods(http.MethodPost)
	r.HandleFunc("/api/user/logout", h.Logout).Methods(http.MethodGet)
	r.HandleFunc("/api/user/forgotpassword", h.ForgotPassword).Methods(http.MethodGet)
	r.HandleFunc("/api/user/reset-password", h.ResetPassword).Methods(http.MethodPut)
	r.HandleFunc("/api/user/reset-password/{token}", h.ResetPassword).Methods(http.MethodPut)
	r.Handle("/api/user/current", authed(h.GetCurrent)).Methods(http.MethodGet)
	r.Handle("/api/user/current", authed(h.UpdateCurrent)).Methods(http.MethodPut)
	r.Handle("/api/user/avatar", authed(h.UploadAvatar)).Methods(http.MethodPut)
	root("/api/user", http.MethodGet, admin(h.GetUsers))
	root("/api/user", http.MethodDelete, admin(h.DeleteUser))
	r.Handle("/api/user/{uid}", admin(h.UpdateUserByAdmin)).Methods(http.MethodPut)

	root("/api/post", http.MethodGet, http.HandlerFunc(h.GetPosts))
	root("/api/post", http.MethodPost, authed(h.CreatePost))
	root("/api/post", http.MethodDelete, authed(h.DeletePost))
	r.Handle("/api/post/like", authed(h.ReactPost)).Methods(http.MethodPut)
	r.Handle("/api/post/getCurrentPosts", authed(h.GetCurrentPosts)).Methods(http.MethodGet)
	r.HandleFunc("/api/post/getPost/{postid}", h.GetPost).Methods(http.MethodGet)
	r.Handle("/api/post/uploadImage/{postid}", authed(h.UploadImages)).Methods(http.MethodPut)
	r.Handle("/api/post/update/{postid}", authed(h.UpdatePost)).Methods(http.MethodPut)

	root("/api/comment", http.MethodPost, authed(h.CreateComment))
	root("/api/comment", http.MethodDelete, authed(h.DeleteComment))
	r.Handle("/api/comment/reaction", authed(h.ReactComment)).Methods(http.MethodPut)
	r.Handle("/api/comment/update/{commentid}", authed(h.UpdateComment)).Methods(http.MethodPut)
	r.HandleFunc("/api/comment/{postId}", h.GetComments).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlers.WriteError(w, "Route not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlers.WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	return middleware.Chain(r, middleware.CORSMiddleware, middleware.LoggingMiddleware)
}
