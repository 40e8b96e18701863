package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgallion1/svdoc/internal/config"
	"github.com/dgallion1/svdoc/internal/pipeline"
	"github.com/dgallion1/svdoc/internal/render"
)

// Server is the HTTP preview server for a generated documentation site.
type Server struct {
	router    chi.Router
	generator *pipeline.Generator
	html      *render.HTMLRenderer
	log       *slog.Logger
	cfg       config.Config

	generating sync.Mutex
}

// NewServer creates and configures the HTTP server.
func NewServer(gen *pipeline.Generator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		generator: gen,
		html:      render.NewHTMLRenderer(),
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}
		r.Get("/modules", s.handleListModules)
		r.Get("/status", s.handleStatus)
		r.Post("/render", s.handleRender)
		r.Post("/generate", s.handleGenerate)
	})

	// Everything else is the generated site.
	r.Handle("/*", http.FileServer(http.Dir(s.cfg.OutDir)))

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
