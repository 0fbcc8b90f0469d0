// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package session tracks the authentication lifecycle of the portal user and
// derives the STARTED/TERMINATED signals that gate tenancy loading.
package session

import (
	"net/http"

	"github.com/ManuGH/cloudportal/internal/event"
)

// Prefix is the namespace shared by every session event kind.
const Prefix = "SESSION/"

const (
	Initialise              event.Kind = Prefix + "INITIALISE"
	InitialisationSucceeded event.Kind = Prefix + "INITIALISATION_SUCCEEDED"
	InitialisationFailed    event.Kind = Prefix + "INITIALISATION_FAILED"

	Authenticate            event.Kind = Prefix + "AUTHENTICATE"
	AuthenticationSucceeded event.Kind = Prefix + "AUTHENTICATION_SUCCEEDED"
	AuthenticationFailed    event.Kind = Prefix + "AUTHENTICATION_FAILED"

	SignOut          event.Kind = Prefix + "SIGN_OUT"
	SignOutSucceeded event.Kind = Prefix + "SIGN_OUT_SUCCEEDED"
	SignOutFailed    event.Kind = Prefix + "SIGN_OUT_FAILED"

	Started    event.Kind = Prefix + "STARTED"
	Terminated event.Kind = Prefix + "TERMINATED"
)

const (
	sessionPath      = "/api/session/"
	authenticatePath = "/api/authenticate/"
)

var sessionKinds = map[event.Kind]struct{}{
	Initialise: {}, InitialisationSucceeded: {}, InitialisationFailed: {},
	Authenticate: {}, AuthenticationSucceeded: {}, AuthenticationFailed: {},
	SignOut: {}, SignOutSucceeded: {}, SignOutFailed: {},
	Started: {}, Terminated: {},
}

// IsSessionKind reports whether kind is one of the session kinds above.
// Failures of these kinds are never reclassified as authentication failures.
func IsSessionKind(kind event.Kind) bool {
	_, ok := sessionKinds[kind]
	return ok
}

// Credentials is the body of an authentication request.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// NewInitialise checks for an existing server-side session. A missing session
// is the normal case for a fresh client, so the request fails silently.
func NewInitialise() event.Event {
	return event.Event{
		Kind: Initialise,
		Request: &event.Request{
			Method:       http.MethodGet,
			Path:         sessionPath,
			OnSuccess:    InitialisationSucceeded,
			OnFailure:    InitialisationFailed,
			FailSilently: true,
		},
	}
}

// NewAuthenticate logs in with a username and password.
func NewAuthenticate(username, password string) event.Event {
	return event.Event{
		Kind: Authenticate,
		Request: &event.Request{
			Method:    http.MethodPost,
			Path:      authenticatePath,
			Body:      Credentials{Username: username, Password: password},
			OnSuccess: AuthenticationSucceeded,
			OnFailure: AuthenticationFailed,
		},
	}
}

// NewSignOut ends the server-side session.
func NewSignOut() event.Event {
	return event.Event{
		Kind: SignOut,
		Request: &event.Request{
			Method:    http.MethodDelete,
			Path:      sessionPath,
			OnSuccess: SignOutSucceeded,
			OnFailure: SignOutFailed,
		},
	}
}

// NewStarted signals that an authenticated session is available.
func NewStarted(username string, cause event.Event) event.Event {
	return event.Event{Kind: Started, Data: username, CausedBy: &cause}
}

// NewTerminated signals that the session has ended.
func NewTerminated(cause event.Event) event.Event {
	return event.Event{Kind: Terminated, CausedBy: &cause}
}
