// Package server provides the HTTP API for ecorank.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hyperjump/ecorank/internal/config"
	"github.com/hyperjump/ecorank/internal/models"
	"github.com/hyperjump/ecorank/pkg/utils"
)

// Session is the scoring session served over HTTP.
type Session interface {
	AddLink(ctx context.Context, link string) ([]models.ScoredProduct, error)
	Products(ctx context.Context) ([]models.ScoredProduct, error)
	Links() []string
	Reset(ctx context.Context) error
	SessionID() string
}

// Info describes the inference backend for the status endpoint.
type Info struct {
	Provider string
	Model    string
	// PromptSource reports where the current instruction came from; it may change at runtime.
	PromptSource func() string
}

// Server is the HTTP server for the ecorank API.
type Server struct {
	session Session
	info    Info
	config  *config.ServerConfig
	logger  *zap.Logger

	mu      sync.Mutex
	server  *http.Server
	stopped bool
}

// NewServer creates a server with the given dependencies.
func NewServer(session Session, cfg *config.ServerConfig, info Info, logger *zap.Logger) *Server {
	return &Server{
		session: session,
		info:    info,
		config:  cfg,
		logger:  utils.OrNop(logger),
	}
}

// Routes builds the router. The legacy unversioned routes are kept next to
// the /api/v1 ones so existing frontends keep working.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	if timeout := s.config.RequestTimeout(); timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}
	r.Use(middleware.Compress(5))

	r.Post("/add_product", s.handleAddProduct)
	r.Get("/get_products", s.handleGetProducts)
	r.Post("/reset", s.handleReset)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/products", s.handleAddProduct)
		r.Get("/products", s.handleGetProducts)
		r.Delete("/products", s.handleReset)
		r.Get("/links", s.handleLinks)
		r.Get("/status", s.handleStatus)
		r.Get("/export", s.handleExport)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return http.ErrServerClosed
	}
	s.server = srv
	s.mu.Unlock()
	s.logger.Info("Starting server", zap.String("addr", addr))
	return srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	srv := s.server
	s.mu.Unlock()
	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}
