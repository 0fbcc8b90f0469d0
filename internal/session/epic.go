// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"net/http"

	"github.com/ManuGH/cloudportal/internal/event"
	xglog "github.com/ManuGH/cloudportal/internal/log"
)

// Epic derives the session lifecycle signals and turns authorisation
// failures of unrelated requests into a global authentication failure.
type Epic struct{}

// NewEpic returns the session epic.
func NewEpic() *Epic {
	return &Epic{}
}

// Handle reacts to one reduced event.
func (e *Epic) Handle(ctx context.Context, ev event.Event, s State, d event.Dispatcher) {
	logger := xglog.WithComponentFromContext(ctx, "session")

	switch ev.Kind {
	case InitialisationSucceeded, AuthenticationSucceeded:
		logger.Info().
			Str(xglog.FieldEvent, "session.started").
			Str(xglog.FieldUsername, s.Username).
			Msg("session started")
		d.Dispatch(NewStarted(s.Username, ev))
		return
	case SignOutSucceeded, InitialisationFailed, AuthenticationFailed:
		logger.Info().
			Str(xglog.FieldEvent, "session.terminated").
			Str(xglog.FieldKind, string(ev.Kind)).
			Msg("session terminated")
		d.Dispatch(NewTerminated(ev))
		return
	}

	if reclassified, ok := Reclassify(ev); ok {
		logger.Warn().
			Str(xglog.FieldEvent, "session.expired").
			Str(xglog.FieldKind, string(ev.Kind)).
			Int(xglog.FieldStatus, ev.Status()).
			Str(xglog.FieldTenancyID, ev.Tenancy()).
			Msg("request rejected as unauthorised, terminating session")
		d.Dispatch(reclassified)
	}
}

// Reclassify maps a 401/403 failure of a non-session request to a silent
// authentication failure caused by it.
func Reclassify(ev event.Event) (event.Event, bool) {
	if !ev.Error || IsSessionKind(ev.Kind) {
		return event.Event{}, false
	}
	if status := ev.Status(); status != http.StatusUnauthorized && status != http.StatusForbidden {
		return event.Event{}, false
	}
	return event.Event{
		Kind:     AuthenticationFailed,
		Error:    true,
		Silent:   true,
		Err:      ev.Err,
		CausedBy: &ev,
	}, true
}
