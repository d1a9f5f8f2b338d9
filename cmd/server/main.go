// Package main provides the entry point for the paper discovery service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scholarai/discovery-service/internal/config"
	"github.com/scholarai/discovery-service/internal/llm"
	"github.com/scholarai/discovery-service/internal/observability"
	"github.com/scholarai/discovery-service/internal/openalex"
	"github.com/scholarai/discovery-service/internal/scopus"
	"github.com/scholarai/discovery-service/internal/search"
	httpserver "github.com/scholarai/discovery-service/internal/server/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load a local .env file if present. Missing files are fine; real
	// deployments set environment variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Str("environment", cfg.Environment).Msg("discovery-service starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer, "scholarai")

	// Build clients.
	openalexClient := openalex.New(openalex.Config{
		BaseURL:   cfg.OpenAlex.BaseURL,
		Email:     cfg.OpenAlex.Email,
		Timeout:   cfg.OpenAlex.Timeout,
		RateLimit: cfg.OpenAlex.RateLimit,
		BurstSize: cfg.OpenAlex.BurstSize,
		PageSize:  cfg.OpenAlex.PageSize,
	})

	scopusClient := scopus.New(scopus.Config{
		BaseURL:   cfg.Scopus.BaseURL,
		APIKey:    cfg.Scopus.APIKey,
		Timeout:   cfg.Scopus.Timeout,
		RateLimit: cfg.Scopus.RateLimit,
		BurstSize: cfg.Scopus.BurstSize,
	})
	if scopusClient.Enabled() {
		logger.Info().Msg("scopus cross-check enabled")
	} else {
		logger.Info().Msg("scopus API key not set, cross-check disabled")
	}

	ollamaClient := llm.NewOllamaClient(cfg.LLM.Ollama, logger)
	openaiClient := llm.NewOpenAIClient(cfg.LLM.OpenAI, logger)
	llmSelector := llm.NewSelector(cfg.LLM, ollamaClient, openaiClient, logger)

	searchSvc := search.New(openalexClient, metrics, logger)

	httpSrv := httpserver.NewServer(cfg, searchSvc, llmSelector, scopusClient, metrics, logger)

	// Metrics server on its own port.
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress(),
			Handler:      metricsMux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
	}

	// Channel to collect server errors.
	errCh := make(chan error, 2)

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if metricsServer != nil {
		go func() {
			logger.Info().
				Str("address", metricsServer.Addr).
				Msg("metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	readyLog := logger.Info().Str("http_address", cfg.Server.HTTPAddress())
	if metricsServer != nil {
		readyLog = readyLog.Str("metrics_address", metricsServer.Addr)
	}
	readyLog.Msg("discovery-service is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	// Graceful shutdown.
	logger.Info().Msg("shutting down discovery-service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}

	logger.Info().Msg("discovery-service stopped")
	return nil
}
