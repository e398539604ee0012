package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/lfb-response-predictor/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Artifact bundle location.
	ArtifactDir    string
	ModelFile      string
	ScalerFile     string
	EncodersFile   string
	MetadataFile   string
	EncodingPolicy domain.EncodingPolicy

	// Optional Kafka request/reply pipeline.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string

	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	policy, err := domain.ParseEncodingPolicy(os.Getenv("ENCODING_POLICY"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENCODING_POLICY: %w", err)
	}

	kafkaEnabled, err := parseBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ArtifactDir:    sharedcfg.EnvOrDefault("ARTIFACT_DIR", "data/artifacts"),
		ModelFile:      sharedcfg.EnvOrDefault("MODEL_FILE", "model.json"),
		ScalerFile:     sharedcfg.EnvOrDefault("SCALER_FILE", "scaler.json"),
		EncodersFile:   sharedcfg.EnvOrDefault("ENCODERS_FILE", "encoders.json"),
		MetadataFile:   sharedcfg.EnvOrDefault("METADATA_FILE", "metadata.json"),
		EncodingPolicy: policy,

		KafkaEnabled:     kafkaEnabled,
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic: sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "incident-requests"),
		KafkaSinkTopic:   sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "response-time-predictions"),
		KafkaGroupID:     sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "lfb-response-predictor"),

		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if cfg.ArtifactDir == "" {
		return nil, errors.New("ARTIFACT_DIR is required")
	}
	if !cfg.KafkaEnabled {
		return cfg, nil
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}
