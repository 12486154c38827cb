package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudcheck"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 120*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, fraudcheck.WindowElapsed, cfg.Window)
	assert.Equal(t, fraudcheck.KindSequential, cfg.Classifier.Kind)
	assert.Equal(t, 4, cfg.Classifier.Workers)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Alerts.Enabled())
	assert.Equal(t, "fraudcheck.alerts", cfg.Alerts.Topic)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("FRAUDCHECK_SERVER_ADDR", ":9999")
	t.Setenv("FRAUDCHECK_WINDOW_POLICY", "calendar")
	t.Setenv("FRAUDCHECK_CLASSIFIER_KIND", "worker")
	t.Setenv("FRAUDCHECK_CLASSIFIER_WORKERS", "8")
	t.Setenv("FRAUDCHECK_ALERTS_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, fraudcheck.WindowCalendar, cfg.Window)
	assert.Equal(t, fraudcheck.KindWorker, cfg.Classifier.Kind)
	assert.Equal(t, 8, cfg.Classifier.Workers)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Alerts.Brokers)
	assert.True(t, cfg.Alerts.Enabled())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fraudcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":7070"
  read_timeout: 2s
log:
  level: debug
  format: json
classifier:
  kind: fanout
alerts:
  brokers:
    - localhost:9092
  topic: fraud.alerts
`), 0o600))

	v := New()
	require.NoError(t, ReadFile(v, path))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, fraudcheck.KindFanOut, cfg.Classifier.Kind)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Alerts.Brokers)
	assert.Equal(t, "fraud.alerts", cfg.Alerts.Topic)
}

func TestReadFile_MissingExplicitPath(t *testing.T) {
	err := ReadFile(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestReadFile_NoDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())
	assert.NoError(t, ReadFile(New(), ""))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "unknown window policy", key: "window.policy", value: "rolling"},
		{name: "unknown classifier", key: "classifier.kind", value: "gpu"},
		{name: "zero workers", key: "classifier.workers", value: 0},
		{name: "empty addr", key: "server.addr", value: ""},
		{name: "negative body limit", key: "server.max_body_bytes", value: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}

func TestLoad_AlertsNeedTopic(t *testing.T) {
	v := New()
	v.Set("alerts.brokers", []string{"localhost:9092"})
	v.Set("alerts.topic", "")

	_, err := Load(v)
	assert.Error(t, err)
}
