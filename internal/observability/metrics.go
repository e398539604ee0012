package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lfb_predictor"

// Prediction outcomes, used as the "outcome" label of PredictionsTotal.
// Failures use domain.ErrorKind.
const OutcomeSuccess = "success"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// predictor and its Kafka pipeline.
type Metrics struct {
	// Prediction metrics.
	PredictionsTotal   *prometheus.CounterVec // labels: outcome
	PredictionDuration prometheus.Histogram
	PredictedSeconds   prometheus.Histogram
	ArtifactsLoaded    prometheus.Gauge
	FeatureVectorWidth prometheus.Gauge

	// Pipeline metrics.
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PredictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Prediction requests by outcome.",
		}, []string{"outcome"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time to encode a request and run the model.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		PredictedSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "predicted_response_seconds",
			Help:      "Distribution of predicted first-pump response times.",
			Buckets:   []float64{60, 120, 180, 240, 300, 360, 480, 600, 900},
		}),
		ArtifactsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "artifacts_loaded",
			Help:      "1 when the artifact bundle is loaded and validated.",
		}),
		FeatureVectorWidth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feature_vector_width",
			Help:      "Number of model input columns.",
		}),
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total request messages read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total reply messages written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total request messages that could not be decoded.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch fetched from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete fetch-predict-reply cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.PredictionsTotal,
		m.PredictionDuration,
		m.PredictedSeconds,
		m.ArtifactsLoaded,
		m.FeatureVectorWidth,
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
	}
}
