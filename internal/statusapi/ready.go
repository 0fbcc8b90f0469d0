// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package statusapi

import (
	"context"

	"github.com/ManuGH/cloudportal/internal/health"
	"github.com/ManuGH/cloudportal/internal/session"
)

// readiness reports the session as unhealthy until initialisation has
// finished, and degraded while nobody is signed in or no tenancy is loaded.
func readiness(core Core, version string) *health.Manager {
	m := health.NewManager(version)
	m.RegisterChecker(health.CheckerFunc("session", func(context.Context) health.CheckResult {
		switch phase := core.State().Session.Phase(); phase {
		case session.PhaseAuthenticated:
			return health.CheckResult{Status: health.StatusHealthy}
		case session.PhaseUninitialised, session.PhaseInitialising:
			return health.CheckResult{Status: health.StatusUnhealthy, Message: string(phase)}
		default:
			return health.CheckResult{Status: health.StatusDegraded, Message: string(phase)}
		}
	}))
	m.RegisterChecker(health.CheckerFunc("tenancies", func(context.Context) health.CheckResult {
		t := core.State().Tenancies
		switch {
		case t.Fetching && len(t.Data) == 0:
			return health.CheckResult{Status: health.StatusDegraded, Message: "loading"}
		case len(t.Data) == 0:
			return health.CheckResult{Status: health.StatusDegraded, Message: "none available"}
		}
		return health.CheckResult{Status: health.StatusHealthy}
	}))
	return m
}
