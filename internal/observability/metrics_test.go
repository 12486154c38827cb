package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics()

	m.ObserveRequest(http.StatusOK)
	m.ObserveRequest(http.StatusOK)
	m.ObserveRequest(http.StatusBadRequest)
	m.ObserveClassification(15, 3, 2*time.Millisecond)
	m.ObserveAlertFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("400")))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.applications))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.flagged))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.alertFailures))
	assert.Equal(t, 1, testutil.CollectAndCount(m.classification))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveClassification(4, 1, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "fraudcheck_flagged_postcodes_total 1")
	assert.Contains(t, string(body), "fraudcheck_applications_total 4")
}
