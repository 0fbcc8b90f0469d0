// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package notify

import (
	"context"

	"github.com/ManuGH/cloudportal/internal/event"
	xglog "github.com/ManuGH/cloudportal/internal/log"
	"github.com/ManuGH/cloudportal/internal/metrics"
)

const fallbackMessage = "An unknown error occurred"

// Epic turns every non-silent failure into an error notification.
type Epic struct{}

// NewEpic returns the notification epic.
func NewEpic() *Epic {
	return &Epic{}
}

// Handle reacts to one reduced event.
func (e *Epic) Handle(ctx context.Context, ev event.Event, d event.Dispatcher) {
	if ev.Kind == Notify {
		if n, ok := ev.Data.(Notification); ok {
			metrics.IncNotification(n.Context)
		}
		return
	}
	if !ev.Error || ev.Silent {
		return
	}
	msg := fallbackMessage
	if ev.Err != nil && ev.Err.Message != "" {
		msg = ev.Err.Message
	}
	logger := xglog.WithComponentFromContext(ctx, "notify")
	logger.Debug().
		Str(xglog.FieldEvent, "notify.error").
		Str(xglog.FieldKind, string(ev.Kind)).
		Int(xglog.FieldStatus, ev.Status()).
		Msg(msg)
	d.Dispatch(NewNotify(msg, ContextError))
}
