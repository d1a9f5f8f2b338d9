// Package httpserver provides the HTTP REST API server for the paper
// discovery service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/scholarai/discovery-service/internal/config"
	"github.com/scholarai/discovery-service/internal/llm"
	"github.com/scholarai/discovery-service/internal/observability"
	"github.com/scholarai/discovery-service/internal/scopus"
	"github.com/scholarai/discovery-service/internal/search"
)

// Version is the API version reported by the health endpoint.
const Version = "2.0.0"

// Server is the HTTP REST API server.
type Server struct {
	router       chi.Router
	httpServer   *http.Server
	cfg          *config.Config
	searchSvc    *search.Service
	llmSelector  *llm.Selector
	scopusClient *scopus.Client
	metrics      *observability.Metrics
	logger       zerolog.Logger
}

// NewServer creates a new HTTP server with all dependencies.
func NewServer(
	cfg *config.Config,
	searchSvc *search.Service,
	llmSelector *llm.Selector,
	scopusClient *scopus.Client,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		cfg:          cfg,
		searchSvc:    searchSvc,
		llmSelector:  llmSelector,
		scopusClient: scopusClient,
		metrics:      metrics,
		logger:       logger.With().Str("component", "http-server").Logger(),
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.HTTPAddress(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
// Rate limits are per client IP per minute, with separate budgets for
// cheap and expensive routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           s.cfg.CORS.MaxAge,
	}))
	r.Use(s.securityHeadersMiddleware)
	r.Use(s.requestLogMiddleware)

	limits := s.cfg.RateLimit

	r.Group(func(r chi.Router) {
		r.Use(s.perMinuteLimit(limits.Search))
		r.Get("/search", s.searchPapers)
		r.Post("/cite", s.citePaper)
		r.Get("/trending", s.getTrending)
	})
	r.Group(func(r chi.Router) {
		r.Use(s.perMinuteLimit(limits.Summarize))
		r.Post("/summarize", s.summarizePaper)
	})
	r.Group(func(r chi.Router) {
		r.Use(s.perMinuteLimit(limits.Export))
		r.Get("/export", s.exportPapers)
		r.Post("/cite/batch", s.batchCitations)
	})
	r.Group(func(r chi.Router) {
		r.Use(s.perMinuteLimit(limits.Scopus))
		r.Get("/scopus/check", s.scopusCheck)
	})
	r.Group(func(r chi.Router) {
		r.Use(s.perMinuteLimit(limits.Health))
		r.Get("/health", s.healthCheck)
	})

	return r
}

// perMinuteLimit builds a per-IP request limiter that answers JSON when
// the budget is exhausted.
func (s *Server) perMinuteLimit(requests int) func(http.Handler) http.Handler {
	return httprate.Limit(
		requests,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please slow down and try again shortly.")
		}),
	)
}

// Router returns the configured router, exposed for handler tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
