// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"github.com/ManuGH/cloudportal/internal/event"
	xglog "github.com/ManuGH/cloudportal/internal/log"
)

// State is the authentication state of the portal user. A non-empty
// Username means the user is authenticated.
type State struct {
	Initialised         bool            `json:"initialised"`
	Initialising        bool            `json:"initialising"`
	Authenticating      bool            `json:"authenticating"`
	SigningOut          bool            `json:"signing_out"`
	Username            string          `json:"username,omitempty"`
	AuthenticationError *event.APIError `json:"authentication_error,omitempty"`
}

type identity struct {
	Username string `json:"username"`
}

// Reduce folds a session event into s. Phase changes that are not in the
// transition table are logged but applied.
func Reduce(s State, ev event.Event) State {
	next, handled := reduce(s, ev)
	if !handled {
		return s
	}
	from, to := s.Phase(), next.Phase()
	if from != to {
		logger := xglog.WithComponent("session")
		if _, ok := TransitionFor(from, ev.Kind); !ok {
			logger.Warn().
				Str(xglog.FieldEvent, "session.illegal_transition").
				Str(xglog.FieldKind, string(ev.Kind)).
				Str(xglog.FieldOldState, string(from)).
				Str(xglog.FieldNewState, string(to)).
				Msg("session transition not in table")
		} else {
			logger.Debug().
				Str(xglog.FieldEvent, "session.transition").
				Str(xglog.FieldKind, string(ev.Kind)).
				Str(xglog.FieldOldState, string(from)).
				Str(xglog.FieldNewState, string(to)).
				Msg("session transition")
		}
	}
	return next
}

func reduce(s State, ev event.Event) (State, bool) {
	switch ev.Kind {
	case Initialise:
		s.Initialising = true
	case InitialisationSucceeded:
		s.Initialising = false
		s.Initialised = true
		s.Username = username(ev)
	case InitialisationFailed:
		s.Initialising = false
		s.Initialised = true
		s.Username = ""

	case Authenticate:
		s.Authenticating = true
		s.AuthenticationError = nil
	case AuthenticationSucceeded:
		s.Authenticating = false
		s.Initialised = true
		s.Username = username(ev)
	case AuthenticationFailed:
		s.Authenticating = false
		s.Initialised = true
		s.Username = ""
		// Only a rejected login is reported on the login form. Expired
		// sessions detected elsewhere carry the triggering failure instead.
		if ev.CausedBy != nil && ev.CausedBy.Kind == Authenticate {
			s.AuthenticationError = ev.Err
		}

	case SignOut:
		s.SigningOut = true
	case SignOutSucceeded:
		s.SigningOut = false
		s.Username = ""
	case SignOutFailed:
		s.SigningOut = false

	default:
		return s, false
	}
	return s, true
}

// username reads the user name from a success payload, falling back to the
// credentials of the login request when the server omits it.
func username(ev event.Event) string {
	var id identity
	if err := ev.Decode(&id); err == nil && id.Username != "" {
		return id.Username
	}
	if ev.CausedBy != nil && ev.CausedBy.Request != nil {
		if creds, ok := ev.CausedBy.Request.Body.(Credentials); ok {
			return creds.Username
		}
	}
	return ""
}
