// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

// Phase is the lifecycle phase derived from the session state.
type Phase string

const (
	PhaseUninitialised  Phase = "uninitialised"
	PhaseInitialising   Phase = "initialising"
	PhaseAuthenticating Phase = "authenticating"
	PhaseAuthenticated  Phase = "authenticated"
	PhaseAnonymous      Phase = "anonymous"
	PhaseSigningOut     Phase = "signing_out"
)

// Phase derives the lifecycle phase. In-flight operations take precedence
// over the settled outcome.
func (s State) Phase() Phase {
	switch {
	case s.Initialising:
		return PhaseInitialising
	case s.Authenticating:
		return PhaseAuthenticating
	case s.SigningOut:
		return PhaseSigningOut
	case s.Username != "":
		return PhaseAuthenticated
	case s.Initialised:
		return PhaseAnonymous
	default:
		return PhaseUninitialised
	}
}
