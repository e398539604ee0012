package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/lfb-response-predictor/internal/adapter/artifact"
	httpadapter "github.com/couchcryptid/lfb-response-predictor/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/lfb-response-predictor/internal/adapter/kafka"
	"github.com/couchcryptid/lfb-response-predictor/internal/config"
	"github.com/couchcryptid/lfb-response-predictor/internal/domain"
	"github.com/couchcryptid/lfb-response-predictor/internal/observability"
	"github.com/couchcryptid/lfb-response-predictor/internal/pipeline"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	files := artifact.Files{
		Model:    cfg.ModelFile,
		Scaler:   cfg.ScalerFile,
		Encoders: cfg.EncodersFile,
		Metadata: cfg.MetadataFile,
	}
	bundle, err := artifact.Load(cfg.ArtifactDir, files)
	if err != nil {
		logger.Error("failed to load artifacts",
			"dir", filepath.Clean(cfg.ArtifactDir),
			"kind", domain.ErrorKind(err),
			"fatal", domain.IsFatal(err),
			"error", err,
		)
		os.Exit(1)
	}

	engine, err := domain.NewEngine(bundle, cfg.EncodingPolicy)
	if err != nil {
		logger.Error("failed to build prediction engine", "error", err)
		os.Exit(1)
	}
	logger.Info("artifacts loaded",
		"dir", cfg.ArtifactDir,
		"columns", len(bundle.Metadata.ModelColumns),
		"encoders", len(bundle.Encoders),
		"policy", string(engine.Policy()),
	)

	svc := pipeline.NewService(engine, metrics, logger)
	ready := observability.ReadinessGroup{svc}

	var (
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
		p      *pipeline.Pipeline
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p = pipeline.New(reader, pipeline.NewTransformer(svc, logger), writer, logger, metrics, cfg.BatchSize)
		ready = append(ready, p)
		logger.Info("kafka pipeline enabled",
			"brokers", cfg.KafkaBrokers,
			"source_topic", cfg.KafkaSourceTopic,
			"sink_topic", cfg.KafkaSinkTopic,
		)
	} else {
		logger.Info("kafka pipeline disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, ready, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start request/reply pipeline.
	var wg sync.WaitGroup
	if p != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	wg.Wait()
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
