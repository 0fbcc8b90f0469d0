// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import "github.com/ManuGH/cloudportal/internal/event"

// Transition is a single allowed edge in the session state machine.
type Transition struct {
	From  Phase
	To    Phase
	Event event.Kind
}

var transitionsTable = []Transition{
	// Probe for an existing session
	{From: PhaseUninitialised, To: PhaseInitialising, Event: Initialise},
	{From: PhaseAnonymous, To: PhaseInitialising, Event: Initialise},
	{From: PhaseInitialising, To: PhaseAuthenticated, Event: InitialisationSucceeded},
	{From: PhaseInitialising, To: PhaseAnonymous, Event: InitialisationFailed},

	// Login
	{From: PhaseUninitialised, To: PhaseAuthenticating, Event: Authenticate},
	{From: PhaseAnonymous, To: PhaseAuthenticating, Event: Authenticate},
	{From: PhaseAuthenticating, To: PhaseAuthenticated, Event: AuthenticationSucceeded},
	{From: PhaseAuthenticating, To: PhaseAnonymous, Event: AuthenticationFailed},

	// Expired session detected by an unrelated request
	{From: PhaseAuthenticated, To: PhaseAnonymous, Event: AuthenticationFailed},

	// Logout
	{From: PhaseAuthenticated, To: PhaseSigningOut, Event: SignOut},
	{From: PhaseSigningOut, To: PhaseAnonymous, Event: SignOutSucceeded},
	{From: PhaseSigningOut, To: PhaseAuthenticated, Event: SignOutFailed},
}

// TransitionFor returns the allowed transition for a given phase and event.
func TransitionFor(from Phase, kind event.Kind) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == kind {
			return tr, true
		}
	}
	return Transition{}, false
}
