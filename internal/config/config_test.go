// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/cloudportal/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Validate(Defaults()))

	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", cfg.Version)
	assert.Equal(t, 2, cfg.API.MaxInFlight)
	assert.Equal(t, 30*time.Minute, cfg.Polling.TenancyRepeat)
	assert.Equal(t, 2*time.Minute, cfg.Polling.Machines)
	assert.Equal(t, time.Second, cfg.Polling.Settle)
}

func TestFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "portal.yaml", `
api:
  base_url: https://portal.example.org
  timeout: 10s
  rate_limit: 5
  rate_burst: 3
polling:
  machines: 30s
status:
  listen: 127.0.0.1:9090
log:
  level: debug
`)
	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, "https://portal.example.org", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5.0, cfg.API.RateLimit)
	assert.Equal(t, 3, cfg.API.RateBurst)
	assert.Equal(t, 30*time.Second, cfg.Polling.Machines)
	assert.Equal(t, "127.0.0.1:9090", cfg.Status.Listen)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Untouched keys keep their defaults.
	assert.Equal(t, 2, cfg.API.MaxInFlight)
	assert.Equal(t, time.Second, cfg.Polling.Settle)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "portal.yml", "api:\n  base_url: https://file.example.org\n  max_in_flight: 4\n")
	t.Setenv("PORTAL_API_BASE_URL", "https://env.example.org")
	t.Setenv("PORTAL_POLLING_SETTLE", "2s")
	t.Setenv("PORTAL_TELEMETRY_ENABLED", "yes")
	t.Setenv("PORTAL_API_RATE_LIMIT", "")

	l := NewLoader(path, "")
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.org", cfg.API.BaseURL)
	assert.Equal(t, 4, cfg.API.MaxInFlight)
	assert.Equal(t, 2*time.Second, cfg.Polling.Settle)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Zero(t, cfg.API.RateLimit, "empty variables count as unset")
	assert.Contains(t, l.ConsumedEnvKeys, "PORTAL_API_BASE_URL")
	assert.Contains(t, l.ConsumedEnvKeys, "PORTAL_TELEMETRY_SAMPLING_RATE")
}

func TestInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("PORTAL_API_MAX_IN_FLIGHT", "many")
	t.Setenv("PORTAL_POLLING_MACHINES", "soon")
	cfg, err := NewLoader("", "").Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.API.MaxInFlight)
	assert.Equal(t, 2*time.Minute, cfg.Polling.Machines)
}

func TestStrictFileParsing(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "unknown key", file: "a.yaml", body: "api:\n  base_uri: x\n", wantErr: ErrUnknownConfigField},
		{name: "not yaml", file: "a.json", body: "{}", wantErr: ErrUnsupportedFormat},
		{name: "two documents", file: "a.yaml", body: "log:\n  level: info\n---\nlog:\n  level: debug\n", wantMsg: "multiple documents"},
		{name: "bad duration", file: "a.yaml", body: "polling:\n  settle: quickly\n", wantMsg: "strict config parse error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(writeConfig(t, tt.file, tt.body), "").Load()
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestEmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadFileConfig(writeConfig(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestMissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml"), "").Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		field  string
	}{
		{name: "bad scheme", mutate: func(c *AppConfig) { c.API.BaseURL = "ftp://x" }, field: "api.base_url"},
		{name: "zero in flight", mutate: func(c *AppConfig) { c.API.MaxInFlight = 0 }, field: "api.max_in_flight"},
		{name: "negative rate", mutate: func(c *AppConfig) { c.API.RateLimit = -1 }, field: "api.rate_limit"},
		{name: "rate without burst", mutate: func(c *AppConfig) { c.API.RateLimit = 2; c.API.RateBurst = 0 }, field: "api.rate_burst"},
		{name: "short timeout", mutate: func(c *AppConfig) { c.API.Timeout = time.Millisecond }, field: "api.timeout"},
		{name: "tight settle", mutate: func(c *AppConfig) { c.Polling.Settle = time.Millisecond }, field: "polling.settle"},
		{name: "no cookie file", mutate: func(c *AppConfig) { c.Session.CookieFile = "" }, field: "session.cookie_file"},
		{name: "bad listen", mutate: func(c *AppConfig) { c.Status.Listen = "localhost" }, field: "status.listen"},
		{name: "bad level", mutate: func(c *AppConfig) { c.Log.Level = "loud" }, field: "log.level"},
		{name: "bad exporter", mutate: func(c *AppConfig) { c.Telemetry.Enabled = true; c.Telemetry.Exporter = "zipkin" }, field: "telemetry.exporter"},
		{name: "bad sampling", mutate: func(c *AppConfig) { c.Telemetry.Enabled = true; c.Telemetry.SamplingRate = 2 }, field: "telemetry.sampling_rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)

			var verr validate.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Errors(), 1)
			assert.Equal(t, tt.field, verr.Errors()[0].Field)
		})
	}
}

func TestOptionMapping(t *testing.T) {
	cfg := Defaults()
	cfg.Version = "v9"
	cfg.API.RateLimit = 3
	cfg.Telemetry.Enabled = true

	d := cfg.DispatchOptions()
	assert.Equal(t, 2, d.MaxInFlight)
	assert.Equal(t, 3.0, d.RateLimit)

	p := cfg.PollingOptions()
	assert.Equal(t, cfg.Polling.Machines, p.MachinesPoll)
	assert.Equal(t, cfg.Polling.Settle, p.SettleDelay)

	tc := cfg.TelemetryOptions()
	assert.True(t, tc.Enabled)
	assert.Equal(t, "portal", tc.ServiceName)
	assert.Equal(t, "v9", tc.ServiceVersion)
	assert.Equal(t, "grpc", tc.ExporterType)
}
