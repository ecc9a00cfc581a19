package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/flood-risk-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/flood-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/flood-risk-service/internal/model"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
	"github.com/couchcryptid/flood-risk-service/internal/pipeline"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the assessment form, JSON API, and optional assessment stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd.Context())
		},
	}
}

func (a *app) runServe(parent context.Context) error {
	cfg, logger := a.cfg, a.logger

	if observability.ParseLevel(cfg.LogLevel) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	artifacts, err := model.Load(cfg.ModelManifest, logger)
	if err != nil {
		logger.Error("failed to load model artifacts", "error", err, "manifest", cfg.ModelManifest)
		return fmt.Errorf("load model artifacts: %w", err)
	}
	defer func() {
		if err := artifacts.Close(); err != nil {
			logger.Error("model artifacts close error", "error", err)
		}
	}()

	metrics := observability.NewMetrics()
	metrics.ArtifactsLoaded.Set(1)

	assessor := pipeline.NewAssessor(artifacts.Scaler, artifacts.Classifier, artifacts.Name, nil, metrics, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, assessor, assessor, logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			serveErr <- err
			stop()
		}
	}()

	// Start assessment stream.
	var reader *kafkaadapter.Reader
	var writer *kafkaadapter.Writer
	streamDone := make(chan struct{})
	if cfg.StreamEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(reader, pipeline.NewTransformer(assessor), writer, logger, metrics)

		logger.Info("assessment stream enabled",
			"source_topic", cfg.KafkaSourceTopic,
			"sink_topic", cfg.KafkaSinkTopic,
			"group_id", cfg.KafkaGroupID,
		)
		go func() {
			defer close(streamDone)
			if err := p.Run(ctx); err != nil {
				logger.Error("assessment stream error", "error", err)
			}
		}()
	} else {
		close(streamDone)
		logger.Info("assessment stream disabled")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	select {
	case <-streamDone:
	case <-shutdownCtx.Done():
		logger.Warn("assessment stream did not stop before shutdown timeout")
	}
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

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	default:
		return nil
	}
}
