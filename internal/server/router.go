package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"booktracker/internal/auth"
	"booktracker/internal/books"
	"booktracker/internal/middleware"
)

// NewRouter assembles the full route table. Every /api/books route sits
// behind the auth middleware; /stats is a static pattern, so chi matches it
// ahead of the {id} routes.
func NewRouter(authHandler *auth.Handler, bookHandler *books.Handler, tokens *auth.TokenService, users auth.UserStore) chi.Router {
	requireAuth := middleware.RequireAuth(tokens, users)

	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.With(requireAuth).Get("/me", authHandler.Me)
	})

	r.Route("/api/books", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/stats", bookHandler.Stats)
		r.Get("/", bookHandler.List)
		r.Post("/", bookHandler.Create)
		r.Get("/{id}", bookHandler.Get)
		r.Put("/{id}", bookHandler.Update)
		r.Delete("/{id}", bookHandler.Delete)
	})

	return r
}
