// Package alert publishes flagged postcodes to downstream consumers.
package alert

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType identifies flagged-postcode alerts in message headers.
const EventType = "fraudcheck.postcode_flagged"

// Alert announces one postcode flagged by a fraud check.
type Alert struct {
	ID         uuid.UUID       `json:"id"`
	Postcode   string          `json:"postcode"`
	Threshold  decimal.Decimal `json:"threshold"`
	RequestID  string          `json:"request_id,omitempty"`
	DetectedAt time.Time       `json:"detected_at"`
}

// NewAlerts builds one alert per flagged postcode, preserving order.
func NewAlerts(postcodes []string, threshold decimal.Decimal, requestID string, detectedAt time.Time) []Alert {
	alerts := make([]Alert, 0, len(postcodes))
	for _, postcode := range postcodes {
		alerts = append(alerts, Alert{
			ID:         uuid.New(),
			Postcode:   postcode,
			Threshold:  threshold,
			RequestID:  requestID,
			DetectedAt: detectedAt.UTC(),
		})
	}
	return alerts
}

// Publisher delivers alerts.
type Publisher interface {
	Publish(ctx context.Context, alerts ...Alert) error
	Close() error
}

// NopPublisher drops every alert. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...Alert) error { return nil }

func (NopPublisher) Close() error { return nil }
