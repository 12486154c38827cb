package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"fraudcheck/internal/alert"
	"fraudcheck/internal/httpapi"
	"fraudcheck/internal/observability"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the fraud check HTTP service",
		RunE:  a.runServe,
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Bool("metrics", true, "expose /metrics")
	cmd.Flags().StringSlice("alert-brokers", nil, "Kafka brokers for fraud alerts (empty disables alerts)")
	cmd.Flags().String("alert-topic", "fraudcheck.alerts", "Kafka topic for fraud alerts")

	_ = a.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = a.v.BindPFlag("metrics.enabled", cmd.Flags().Lookup("metrics"))
	_ = a.v.BindPFlag("alerts.brokers", cmd.Flags().Lookup("alert-brokers"))
	_ = a.v.BindPFlag("alerts.topic", cmd.Flags().Lookup("alert-topic"))

	return cmd
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := a.cfg
	logger := a.logger

	logger.Info("starting fraudcheck", slog.String("version", version))

	classifier, err := a.classifier()
	if err != nil {
		return err
	}

	var publisher alert.Publisher = alert.NopPublisher{}
	if cfg.Alerts.Enabled() {
		publisher = alert.NewKafkaPublisher(cfg.Alerts.Brokers, cfg.Alerts.Topic, logger)
		logger.Info("fraud alerts enabled",
			slog.Any("brokers", cfg.Alerts.Brokers),
			slog.String("topic", cfg.Alerts.Topic),
		)
	}
	metrics := observability.NewMetrics()
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = metrics.Handler()
	}

	check := httpapi.NewFraudCheckHandler(classifier, publisher, metrics, logger, cfg.Server.MaxBodyBytes)
	health := httpapi.NewHealthHandler(logger, cfg.Alerts.Enabled())
	defer func() {
		check.Wait()
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close alert publisher", slog.String("error", err.Error()))
		}
	}()

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      httpapi.NewRouter(check, health, metricsHandler, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting",
			slog.String("address", cfg.Server.Addr),
			slog.String("classifier", string(cfg.Classifier.Kind)),
			slog.String("window_policy", string(cfg.Window)),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err, ok := <-errCh:
		if ok {
			return err
		}
	}

	logger.Info("shutting down fraudcheck")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	logger.Info("fraudcheck stopped")
	return nil
}
