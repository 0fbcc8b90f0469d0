// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package event defines the universal unit of communication of the portal
// core: a tagged, immutable record flowing through one ordered stream.
package event

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Kind is the unique tag of an event, e.g. "MACHINE/CREATE".
type Kind string

// Request describes an intent to call the portal API. An event carrying a
// Request is consumed by the dispatch epic, which emits exactly one event of
// kind OnSuccess or OnFailure in response.
type Request struct {
	Method       string
	Path         string
	Body         any
	OnSuccess    Kind
	OnFailure    Kind
	FailSilently bool
}

// Mutating reports whether the request changes server state and therefore
// must carry a CSRF token.
func (r *Request) Mutating() bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// APIError is the decoded form of a failed API call.
type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	return e.Message
}

// Event is a discrete message describing something that happened or is
// requested. Correlation fields are set explicitly by the constructors; they
// are never derived from the kind.
type Event struct {
	Kind Kind

	// Request is non-nil exactly when the event asks for an API call.
	Request *Request

	TenancyID string
	ItemID    string

	// Set on terminal events emitted by the dispatch epic.
	Payload  json.RawMessage
	Error    bool
	Silent   bool
	Err      *APIError
	CausedBy *Event

	// Data carries in-process payloads of events that never touch the wire.
	Data any
}

// IsRequest reports whether the event represents an API request.
func (e Event) IsRequest() bool {
	return e.Request != nil
}

// Tenancy returns the tenancy the event concerns, read from the event itself
// or from the request that caused it.
func (e Event) Tenancy() string {
	if e.TenancyID != "" {
		return e.TenancyID
	}
	if e.CausedBy != nil {
		return e.CausedBy.Tenancy()
	}
	return ""
}

// Item returns the resource item id the event concerns, read from the event
// itself or from the request that caused it.
func (e Event) Item() string {
	if e.ItemID != "" {
		return e.ItemID
	}
	if e.CausedBy != nil {
		return e.CausedBy.Item()
	}
	return ""
}

// Status returns the HTTP status of a failure event, or 0.
func (e Event) Status() int {
	if e.Err == nil {
		return 0
	}
	return e.Err.Status
}

// FailedWith reports whether the event is a failure with the given status.
func (e Event) FailedWith(status int) bool {
	return e.Error && e.Status() == status
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("event %s: empty payload", e.Kind)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("event %s: decode payload: %w", e.Kind, err)
	}
	return nil
}

// Succeeded builds the success counterpart of a request event.
func Succeeded(req Event, payload json.RawMessage) Event {
	return Event{
		Kind:     req.Request.OnSuccess,
		Payload:  payload,
		CausedBy: &req,
	}
}

// Failed builds the failure counterpart of a request event.
func Failed(req Event, apiErr *APIError) Event {
	return Event{
		Kind:     req.Request.OnFailure,
		Error:    true,
		Silent:   req.Request.FailSilently,
		Err:      apiErr,
		CausedBy: &req,
	}
}
