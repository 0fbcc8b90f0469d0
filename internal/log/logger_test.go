// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestConfigureAttachesServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "portal-test", Version: "v0.0.1"})
	t.Cleanup(func() { Configure(Config{}) })

	l := WithComponent("dispatch")
	l.Debug().Str(FieldEvent, "request.start").Msg("starting")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log entry: %v", err)
	}
	if entry["service"] != "portal-test" {
		t.Errorf("expected service portal-test, got %v", entry["service"])
	}
	if entry["version"] != "v0.0.1" {
		t.Errorf("expected version v0.0.1, got %v", entry["version"])
	}
	if entry[FieldComponent] != "dispatch" {
		t.Errorf("expected component dispatch, got %v", entry[FieldComponent])
	}
	if entry[FieldEvent] != "request.start" {
		t.Errorf("expected event request.start, got %v", entry[FieldEvent])
	}
}

func TestConfigureInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "not-a-level", Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	l := Base()
	l.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected debug entry to be filtered at info level, got %q", buf.String())
	}
	l.Info().Msg("visible")
	if buf.Len() == 0 {
		t.Error("expected info entry to be written")
	}
}

func TestDeriveAppliesBuilder(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	l := Derive(nil)
	l.Info().Msg("no builder")
	if buf.Len() == 0 {
		t.Fatal("expected entry for nil builder")
	}
}
