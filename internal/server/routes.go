package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-recoform/pkg/renderers/vanilla"
)

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(s.accessLog())
	r.Use(chimiddleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/api/state", s.handleState)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServerFS(vanilla.AssetsFS())))

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit())
		r.Post("/method", s.handleMethod)
		r.Post("/recommend", s.handleRecommend)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
