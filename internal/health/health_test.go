// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fixed(status Status) Checker {
	return CheckerFunc(string(status), func(context.Context) CheckResult {
		return CheckResult{Status: status}
	})
}

func TestReadyWithoutCheckers(t *testing.T) {
	resp := NewManager("v1").Ready(context.Background())
	assert.True(t, resp.Ready)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "v1", resp.Version)
	assert.Nil(t, resp.Checks)
}

func TestReadyAggregatesStatus(t *testing.T) {
	tests := []struct {
		name       string
		checks     []Status
		wantReady  bool
		wantStatus Status
	}{
		{name: "all healthy", checks: []Status{StatusHealthy, StatusHealthy}, wantReady: true, wantStatus: StatusHealthy},
		{name: "degraded", checks: []Status{StatusHealthy, StatusDegraded}, wantReady: true, wantStatus: StatusDegraded},
		{name: "unhealthy wins", checks: []Status{StatusUnhealthy, StatusDegraded}, wantReady: false, wantStatus: StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("")
			for _, s := range tt.checks {
				m.RegisterChecker(fixed(s))
			}
			resp := m.Ready(context.Background())
			assert.Equal(t, tt.wantReady, resp.Ready)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Len(t, resp.Checks, len(dedup(tt.checks)))
		})
	}
}

func dedup(in []Status) map[Status]bool {
	out := make(map[Status]bool)
	for _, s := range in {
		out[s] = true
	}
	return out
}
