package config

import "fmt"

type ServerConfig struct {
	Host        string
	Port        int
	RateLimits  RateLimits
	AllowOrigin []string
}

type SentryConfig struct {
	Enabled     bool
	Dsn         RedactedString
	Environment string
	SampleRate  float64
}

type PrometheusConfig struct {
	Enabled bool
	Port    int
}

type MonitoringConfig struct {
	Sentry     SentryConfig
	Prometheus PrometheusConfig
}

type RateLimits struct {
	Enabled bool
	Rate    float64
	Burst   int
}

func (s ServerConfig) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid server port %d", s.Port)
	}
	if s.RateLimits.Enabled && (s.RateLimits.Rate <= 0 || s.RateLimits.Burst <= 0) {
		return fmt.Errorf("rate limits need a positive rate and burst")
	}
	return nil
}

func (m MonitoringConfig) Validate() error {
	if m.Sentry.Enabled && m.Sentry.Dsn == "" {
		return fmt.Errorf("sentry is enabled but no DSN is set")
	}
	if m.Prometheus.Enabled && (m.Prometheus.Port <= 0 || m.Prometheus.Port > 65535) {
		return fmt.Errorf("invalid prometheus port %d", m.Prometheus.Port)
	}
	return nil
}
