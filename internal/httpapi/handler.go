// Package httpapi exposes the fraud classifier over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fraudcheck"
	"fraudcheck/internal/alert"
	"fraudcheck/internal/observability"
)

const alertTimeout = 5 * time.Second

// FraudCheckHandler serves POST /api/fraudcheck.
type FraudCheckHandler struct {
	classifier   fraudcheck.Classifier
	publisher    alert.Publisher
	metrics      *observability.Metrics
	logger       *slog.Logger
	maxBodyBytes int64
	now          func() time.Time

	inflight sync.WaitGroup
}

// NewFraudCheckHandler wires a handler. Flagged postcodes are sent to publisher in the background
// once the response is written; publishing never delays or changes the response. Call Wait before
// closing publisher.
func NewFraudCheckHandler(
	classifier fraudcheck.Classifier,
	publisher alert.Publisher,
	metrics *observability.Metrics,
	logger *slog.Logger,
	maxBodyBytes int64,
) *FraudCheckHandler {
	return &FraudCheckHandler{
		classifier:   classifier,
		publisher:    publisher,
		metrics:      metrics,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
		now:          time.Now,
	}
}

func (h *FraudCheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := h.check(w, r)
	h.metrics.ObserveRequest(code)
}

func (h *FraudCheckHandler) check(w http.ResponseWriter, r *http.Request) int {
	ctx := r.Context()
	requestID := RequestIDFromContext(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return writeJSON(w, h.logger, http.StatusRequestEntityTooLarge, "request body too large")
		}
		return writeJSON(w, h.logger, http.StatusBadRequest, "unable to read request body")
	}

	req, err := DecodeCheckRequest(body)
	if err != nil {
		code := statusFor(err)
		h.logger.Debug("rejected fraud check",
			slog.String("request_id", requestID),
			slog.Int("status", code),
			slog.String("error", err.Error()),
		)
		return writeJSON(w, h.logger, code, err.Error())
	}

	start := time.Now()
	flagged, err := h.classifier.Classify(ctx, req.Threshold, req.Applications)
	took := time.Since(start)
	if err != nil {
		h.logger.Warn("classification aborted",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return writeJSON(w, h.logger, http.StatusServiceUnavailable, "classification aborted")
	}
	h.metrics.ObserveClassification(len(req.Applications), len(flagged), took)

	h.logger.Info("fraud check completed",
		slog.String("request_id", requestID),
		slog.String("threshold", req.Threshold.String()),
		slog.Int("applications", len(req.Applications)),
		slog.Int("flagged", len(flagged)),
		slog.Duration("took", took),
	)

	code := writeJSON(w, h.logger, http.StatusOK, flagged)

	if len(flagged) > 0 {
		alerts := alert.NewAlerts(flagged, req.Threshold, requestID, h.now())
		// Alerts go out even if the client has already gone away.
		detached := context.WithoutCancel(ctx)

		h.inflight.Add(1)
		go func() {
			defer h.inflight.Done()
			h.publish(detached, requestID, req.Threshold.String(), alerts)
		}()
	}

	return code
}

func (h *FraudCheckHandler) publish(ctx context.Context, requestID, threshold string, alerts []alert.Alert) {
	ctx, cancel := context.WithTimeout(ctx, alertTimeout)
	defer cancel()

	if err := h.publisher.Publish(ctx, alerts...); err != nil {
		h.metrics.ObserveAlertFailure()
		h.logger.Error("failed to publish fraud alerts",
			slog.String("request_id", requestID),
			slog.String("threshold", threshold),
			slog.Int("count", len(alerts)),
			slog.String("error", err.Error()),
		)
	}
}

// Wait blocks until every alert publish started by the handler has finished.
func (h *FraudCheckHandler) Wait() {
	h.inflight.Wait()
}

// statusFor maps request errors to HTTP status codes.
func statusFor(err error) int {
	var appErr *fraudcheck.ApplicationError
	switch {
	case errors.Is(err, ErrInvalidThreshold), errors.Is(err, ErrInvalidApplications):
		return http.StatusBadRequest
	case errors.As(err, &appErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// writeJSON writes v without a trailing newline and returns status.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) int {
	payload, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to encode response", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		logger.Debug("failed to write response", slog.String("error", err.Error()))
	}
	return status
}
