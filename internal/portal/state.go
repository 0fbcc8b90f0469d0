// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package portal

import (
	"github.com/ManuGH/cloudportal/internal/event"
	"github.com/ManuGH/cloudportal/internal/notify"
	"github.com/ManuGH/cloudportal/internal/session"
	"github.com/ManuGH/cloudportal/internal/tenancy"
)

// State is the root of the state tree.
type State struct {
	Session       session.State `json:"session"`
	Notifications notify.State  `json:"notifications"`
	Tenancies     tenancy.State `json:"tenancies"`
}

// Reduce folds ev into every branch of the tree.
func Reduce(s State, ev event.Event) State {
	return State{
		Session:       session.Reduce(s.Session, ev),
		Notifications: notify.Reduce(s.Notifications, ev),
		Tenancies:     tenancy.Reduce(s.Tenancies, ev),
	}
}
