package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/lfb-response-predictor/internal/domain"
)

// Predictor is the prediction surface the API exposes.
type Predictor interface {
	PredictPayload(p domain.IncidentPayload) (domain.PredictionResult, error)
	FeatureImportance() (domain.ImportanceReport, error)
	FormOptions() domain.FormOptions
}

// Server exposes the prediction API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	predictor  Predictor
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /v1 API routes and /healthz,
// /readyz, and /metrics.
func NewServer(addr string, predictor Predictor, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		predictor: predictor,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/form-options", s.handleFormOptions)
	mux.HandleFunc("POST /v1/predictions", s.handlePredict)
	mux.HandleFunc("GET /v1/feature-importance", s.handleFeatureImportance)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
