// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"strings"
	"time"

	"github.com/ManuGH/cloudportal/internal/validate"
)

// Validate validates a AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.URL("api.base_url", cfg.API.BaseURL, []string{"http", "https"})
	v.MinDuration("api.timeout", cfg.API.Timeout, time.Second)
	v.Range("api.max_in_flight", cfg.API.MaxInFlight, 1, 16)
	v.NonNegative("api.rate_limit", cfg.API.RateLimit)
	if cfg.API.RateLimit > 0 {
		v.Range("api.rate_burst", cfg.API.RateBurst, 1, 100)
	}

	v.MinDuration("polling.tenancy_repeat", cfg.Polling.TenancyRepeat, time.Minute)
	v.MinDuration("polling.machines", cfg.Polling.Machines, 5*time.Second)
	v.MinDuration("polling.settle", cfg.Polling.Settle, 100*time.Millisecond)

	v.NotEmpty("session.cookie_file", cfg.Session.CookieFile)
	if strings.TrimSpace(cfg.Status.Listen) != "" {
		v.ListenAddr("status.listen", cfg.Status.Listen)
	}

	if _, err := validate.ParseLogLevel(strings.ToLower(cfg.Log.Level)); err != nil {
		v.AddError(validate.ErrInvalidLogLevel.Field, "must be one of "+strings.Join(validate.LogLevels, ", "), cfg.Log.Level)
	}

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
			v.AddError("telemetry.sampling_rate", "must be between 0 and 1", cfg.Telemetry.SamplingRate)
		}
	}

	return v.Err()
}
