package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/lfb-response-predictor/internal/domain"
	"github.com/couchcryptid/lfb-response-predictor/internal/observability"
)

// Service wraps the prediction engine with metrics and logging. It is shared
// by the HTTP API and the Kafka pipeline and is safe for concurrent use.
type Service struct {
	engine  *domain.Engine
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewService creates a Service around a validated engine.
func NewService(engine *domain.Engine, metrics *observability.Metrics, logger *slog.Logger) *Service {
	metrics.ArtifactsLoaded.Set(1)
	metrics.FeatureVectorWidth.Set(float64(len(engine.Metadata().ModelColumns)))
	return &Service{engine: engine, metrics: metrics, logger: logger}
}

// PredictPayload validates a wire request and predicts its response time.
func (s *Service) PredictPayload(p domain.IncidentPayload) (domain.PredictionResult, error) {
	req, err := domain.ParsePayload(p)
	if err != nil {
		s.record(err, domain.PredictionResult{}, 0)
		return domain.PredictionResult{}, err
	}
	return s.Predict(req)
}

// Predict runs the engine on req.
func (s *Service) Predict(req domain.IncidentRequest) (domain.PredictionResult, error) {
	start := time.Now()
	result, err := s.engine.Predict(req)
	s.record(err, result, time.Since(start))
	return result, err
}

func (s *Service) record(err error, result domain.PredictionResult, elapsed time.Duration) {
	if err == nil {
		s.metrics.PredictionsTotal.WithLabelValues(observability.OutcomeSuccess).Inc()
		s.metrics.PredictionDuration.Observe(elapsed.Seconds())
		s.metrics.PredictedSeconds.Observe(float64(result.TotalSeconds))
		return
	}

	kind := domain.ErrorKind(err)
	s.metrics.PredictionsTotal.WithLabelValues(kind).Inc()

	var predErr *domain.PredictionError
	if errors.As(err, &predErr) || domain.IsFatal(err) {
		s.logger.Error("prediction failed", "error", err, "kind", kind)
		return
	}
	s.logger.Debug("prediction rejected", "error", err, "kind", kind)
}

// FeatureImportance returns the ranked importances. A length mismatch between
// importances and columns is logged but not treated as an error.
func (s *Service) FeatureImportance() (domain.ImportanceReport, error) {
	report, err := s.engine.FeatureImportance()
	if err != nil {
		return domain.ImportanceReport{}, err
	}
	if !report.Consistent() {
		s.logger.Warn("feature importances do not match model columns",
			"columns", report.ColumnCount,
			"importances", report.ImportanceCount,
		)
	}
	return report, nil
}

// FormOptions returns the selectable input values.
func (s *Service) FormOptions() domain.FormOptions {
	return s.engine.Metadata().FormOptions()
}

// CheckReadiness reports ready once an engine is loaded. Artifacts are
// immutable, so there is nothing to re-check afterwards.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.engine == nil {
		return errors.New("artifacts not loaded")
	}
	return nil
}
