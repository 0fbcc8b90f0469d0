// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads the portal client configuration from defaults, an
// optional YAML file and PORTAL_* environment variables.
package config

import (
	"time"

	"github.com/ManuGH/cloudportal/internal/dispatch"
	"github.com/ManuGH/cloudportal/internal/polling"
	"github.com/ManuGH/cloudportal/internal/telemetry"
)

// AppConfig is the effective configuration.
type AppConfig struct {
	API       APIConfig       `yaml:"api"`
	Polling   PollingConfig   `yaml:"polling"`
	Session   SessionConfig   `yaml:"session"`
	Status    StatusConfig    `yaml:"status"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Version is the build version; it is never read from file or env.
	Version string `yaml:"-"`
}

// APIConfig configures the connection to the portal API.
type APIConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxInFlight int           `yaml:"max_in_flight"`
	// RateLimit caps requests per second; 0 disables the limiter.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// PollingConfig holds the refresh intervals.
type PollingConfig struct {
	TenancyRepeat time.Duration `yaml:"tenancy_repeat"`
	Machines      time.Duration `yaml:"machines"`
	Settle        time.Duration `yaml:"settle"`
}

// SessionConfig configures session persistence.
type SessionConfig struct {
	CookieFile string `yaml:"cookie_file"`
}

// StatusConfig configures the local status endpoint. An empty Listen
// disables it.
type StatusConfig struct {
	Listen string `yaml:"listen"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	Insecure     bool    `yaml:"insecure"`
	SamplingRate float64 `yaml:"sampling_rate"`
	Environment  string  `yaml:"environment"`
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		API: APIConfig{
			BaseURL:     "http://localhost:8000",
			Timeout:     30 * time.Second,
			MaxInFlight: dispatch.DefaultMaxInFlight,
			RateBurst:   1,
		},
		Polling: PollingConfig{
			TenancyRepeat: polling.DefaultTenancyRepeat,
			Machines:      polling.DefaultMachinesPoll,
			Settle:        polling.DefaultSettleDelay,
		},
		Session: SessionConfig{CookieFile: "portal-cookies.json"},
		Log:     LogConfig{Level: "info", Service: "portal"},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "development",
		},
	}
}

// DispatchOptions maps the API section onto the dispatch epic options.
func (c AppConfig) DispatchOptions() dispatch.Config {
	return dispatch.Config{
		MaxInFlight: c.API.MaxInFlight,
		RateLimit:   c.API.RateLimit,
		RateBurst:   c.API.RateBurst,
	}
}

// PollingOptions maps the polling section onto the polling epic options.
func (c AppConfig) PollingOptions() polling.Config {
	return polling.Config{
		TenancyRepeat: c.Polling.TenancyRepeat,
		MachinesPoll:  c.Polling.Machines,
		SettleDelay:   c.Polling.Settle,
	}
}

// TelemetryOptions maps the telemetry section onto the tracer provider
// options.
func (c AppConfig) TelemetryOptions() telemetry.Config {
	return telemetry.Config{
		Enabled:        c.Telemetry.Enabled,
		ServiceName:    c.Log.Service,
		ServiceVersion: c.Version,
		Environment:    c.Telemetry.Environment,
		ExporterType:   c.Telemetry.Exporter,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       c.Telemetry.Insecure,
		SamplingRate:   c.Telemetry.SamplingRate,
	}
}
