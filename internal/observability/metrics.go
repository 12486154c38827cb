package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fraudcheck"

// Metrics are the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	applications   prometheus.Counter
	flagged        prometheus.Counter
	classification prometheus.Histogram
	alertFailures  prometheus.Counter
}

// NewMetrics registers the collectors on a fresh registry, together with the Go and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Fraud check requests by response status code.",
		}, []string{"code"}),
		applications: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "applications_total",
			Help:      "Applications classified.",
		}),
		flagged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flagged_postcodes_total",
			Help:      "Postcodes flagged as fraudulent.",
		}),
		classification: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classification_duration_seconds",
			Help:      "Time spent classifying a batch.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		alertFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_publish_failures_total",
			Help:      "Fraud alert batches that could not be published.",
		}),
	}
}

// ObserveRequest counts a finished fraud check request.
func (m *Metrics) ObserveRequest(code int) {
	m.requests.WithLabelValues(strconv.Itoa(code)).Inc()
}

// ObserveClassification records one classified batch.
func (m *Metrics) ObserveClassification(applications, flagged int, took time.Duration) {
	m.applications.Add(float64(applications))
	m.flagged.Add(float64(flagged))
	m.classification.Observe(took.Seconds())
}

// ObserveAlertFailure counts a failed alert publish.
func (m *Metrics) ObserveAlertFailure() {
	m.alertFailures.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
