package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"example.com/note-keeper/internal/auth"
	"example.com/note-keeper/internal/httpx"
	"example.com/note-keeper/internal/notes"
)

type Deps struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	Gate           *auth.Gate
	Auth           *auth.Handlers
	Notes          *notes.Handlers
}

// NewRouter assembles the middleware chain and mounts the API.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpx.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Mount("/auth", d.Auth.Routes())
	r.Group(func(r chi.Router) {
		r.Use(d.Gate.Require)
		r.Mount("/notes", d.Notes.Routes())
	})

	return r
}
