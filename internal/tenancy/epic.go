// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package tenancy

import (
	"context"
	"net/http"

	"github.com/ManuGH/cloudportal/internal/event"
	xglog "github.com/ManuGH/cloudportal/internal/log"
	"github.com/ManuGH/cloudportal/internal/resources"
	"github.com/ManuGH/cloudportal/internal/session"
)

// Epic loads the tenancy list when a session starts, fans out the resource
// fetches when a tenancy becomes current and drops a tenancy the server no
// longer serves.
type Epic struct {
	// current is the tenancy that was current after the previous event.
	// Handle runs on the store goroutine only.
	current string
}

// NewEpic returns the tenancy epic.
func NewEpic() *Epic {
	return &Epic{}
}

// Handle reacts to one reduced event.
func (e *Epic) Handle(ctx context.Context, ev event.Event, s State, d event.Dispatcher) {
	logger := xglog.WithComponentFromContext(ctx, "tenancy")
	previous := e.current
	e.current = s.CurrentID()

	switch ev.Kind {
	case session.Started:
		d.Dispatch(NewFetchList())
		return

	case Switch:
		if e.current == "" || e.current == previous {
			return
		}
		logger.Info().
			Str(xglog.FieldEvent, "tenancy.switched").
			Str(xglog.FieldTenancyID, e.current).
			Msg("tenancy is now current")
		for _, req := range resources.FetchAll(e.current) {
			d.Dispatch(req)
		}
		return

	case FetchListSucceeded:
		if e.current != "" {
			if _, ok := s.Data[e.current]; !ok {
				logger.Warn().
					Str(xglog.FieldEvent, "tenancy.vanished").
					Str(xglog.FieldTenancyID, e.current).
					Msg("current tenancy no longer listed, clearing selection")
				d.Dispatch(NewSwitch(""))
			}
		}
		return
	}

	if r, ok := resources.ListFailure(ev.Kind); ok && !r.Probe() &&
		ev.FailedWith(http.StatusNotFound) && e.current != "" && ev.Tenancy() == e.current {
		logger.Warn().
			Str(xglog.FieldEvent, "tenancy.gone").
			Str(xglog.FieldTenancyID, e.current).
			Str(xglog.FieldKind, string(ev.Kind)).
			Msg("tenancy no longer accessible, clearing selection")
		d.Dispatch(NewSwitch(""))
	}
}
