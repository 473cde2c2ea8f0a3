// Package server exposes the reconciliation pipeline and dashboard queries
// over HTTP. Each browser session owns one snapshot in the store.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/sells-group/adrecon/internal/config"
	"github.com/sells-group/adrecon/internal/model"
	"github.com/sells-group/adrecon/internal/reconcile"
	"github.com/sells-group/adrecon/internal/store"
)

// Processor turns uploaded source files into a snapshot.
type Processor interface {
	Process(in reconcile.Inputs) (*model.Snapshot, error)
}

// Server holds the HTTP handlers' dependencies.
type Server struct {
	cfg   config.ServerConfig
	store store.Store
	proc  Processor
	now   func() time.Time
	newID func() string
}

// New creates a Server.
func New(cfg config.ServerConfig, st store.Store, proc Processor) *Server {
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 50
	}
	return &Server{
		cfg:   cfg,
		store: st,
		proc:  proc,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Handler builds the router with its middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	upload := newUploadLimiter(s.cfg.UploadRatePerMin)
	r.With(upload.Middleware).Post("/upload", s.handleUpload)

	r.Route("/api", func(r chi.Router) {
		r.Get("/data", s.handleData)
		r.Get("/statistics", s.handleStatistics)
		r.Get("/options", s.handleOptions)
		r.Get("/export", s.handleExport)
		r.Delete("/session", s.handleDeleteSession)
	})

	return r
}
