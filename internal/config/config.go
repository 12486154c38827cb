// Package config loads fraudcheck settings from flags, environment and an optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"fraudcheck"
)

// EnvPrefix is prepended to every environment variable, e.g. FRAUDCHECK_SERVER_ADDR.
const EnvPrefix = "FRAUDCHECK"

// Config holds all configuration for the fraudcheck service.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Window     fraudcheck.WindowPolicy
	Classifier ClassifierConfig
	Metrics    MetricsConfig
	Alerts     AlertsConfig
}

type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}

type LogConfig struct {
	Level  string
	Format string
}

type ClassifierConfig struct {
	Kind    fraudcheck.Kind
	Workers int
}

type MetricsConfig struct {
	Enabled bool
}

// AlertsConfig configures the fraud alert publisher. No brokers disables publishing.
type AlertsConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether alerts should be published.
func (a AlertsConfig) Enabled() bool {
	return len(a.Brokers) > 0
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.max_body_bytes", 10<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("window.policy", string(fraudcheck.WindowElapsed))

	v.SetDefault("classifier.kind", string(fraudcheck.KindSequential))
	v.SetDefault("classifier.workers", 4)

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("alerts.brokers", []string{})
	v.SetDefault("alerts.topic", "fraudcheck.alerts")
}

// ReadFile reads path into v. An empty path looks for fraudcheck.yaml in the working directory and
// tolerates its absence.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("fraudcheck")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && path == "" {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	return nil
}

// Load builds and validates a Config from v.
func Load(v *viper.Viper) (*Config, error) {
	policy, err := fraudcheck.ParseWindowPolicy(v.GetString("window.policy"))
	if err != nil {
		return nil, err
	}

	kind, err := fraudcheck.ParseKind(v.GetString("classifier.kind"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			MaxBodyBytes:    v.GetInt64("server.max_body_bytes"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Window: policy,
		Classifier: ClassifierConfig{
			Kind:    kind,
			Workers: v.GetInt("classifier.workers"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
		},
		Alerts: AlertsConfig{
			Brokers: brokers(v.GetStringSlice("alerts.brokers")),
			Topic:   v.GetString("alerts.topic"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if c.Classifier.Workers <= 0 {
		return fmt.Errorf("classifier.workers must be positive, got %d", c.Classifier.Workers)
	}
	if c.Alerts.Enabled() && c.Alerts.Topic == "" {
		return fmt.Errorf("alerts.topic must be set when alerts.brokers is")
	}
	return nil
}

// brokers accepts both a list and a comma separated string, as env vars only carry the latter.
func brokers(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		for _, b := range strings.Split(entry, ",") {
			if b = strings.TrimSpace(b); b != "" {
				out = append(out, b)
			}
		}
	}
	return out
}
