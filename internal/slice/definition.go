// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package slice implements the resource cache slice: a generic, per-resource
// state container whose reducer folds API events into a normalized cache.
package slice

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/ManuGH/cloudportal/internal/event"
)

// Action is a named per-item operation beyond the uniform CRUD set, such as
// starting a machine. Its request sets Flag on the addressed item and the
// terminal events clear it.
type Action struct {
	Name   string
	Kinds  Triple
	Method string
	// Suffix is appended to the item path, e.g. "start/".
	Suffix string
	Flag   Flag
	// Merge folds the success payload into the item. Set it only when the
	// server answers with the item itself.
	Merge bool
}

// Option configures a Definition.
type Option[T any] func(*Definition[T])

// WithActive marks items subject to fast polling.
func WithActive[T any](fn func(T) bool) Option[T] {
	return func(d *Definition[T]) { d.isActive = fn }
}

// WithTransform sets the function applied to every item on ingestion.
func WithTransform[T any](fn func(T) T) Option[T] {
	return func(d *Definition[T]) { d.transform = fn }
}

// WithAction registers a per-item action under the resource's kind prefix.
func WithAction[T any](name, method, suffix string, flag Flag, merge bool) Option[T] {
	return func(d *Definition[T]) {
		d.actions = append(d.actions, Action{
			Name:   name,
			Kinds:  NewTriple(d.name, name),
			Method: method,
			Suffix: suffix,
			Flag:   flag,
			Merge:  merge,
		})
	}
}

// AsProbe marks the resource as speculative: its list fetches fail silently
// because the endpoint may legitimately be missing.
func AsProbe[T any]() Option[T] {
	return func(d *Definition[T]) { d.probe = true }
}

// Definition parameterises the slice reducer and action creators for one
// resource kind.
type Definition[T any] struct {
	name      string
	segment   string
	kinds     Kinds
	id        func(T) string
	isActive  func(T) bool
	transform func(T) T
	probe     bool
	actions   []Action
}

// New creates a definition for the resource whose events are prefixed with
// name and whose list lives at /api/tenancies/{tid}/{segment}/.
func New[T any](name, segment string, id func(T) string, opts ...Option[T]) *Definition[T] {
	d := &Definition[T]{
		name:    name,
		segment: strings.Trim(segment, "/"),
		kinds:   NewKinds(name),
		id:      id,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Definition[T]) Name() string { return d.name }

func (d *Definition[T]) Kinds() Kinds { return d.kinds }

// Probe reports whether list fetches of the resource fail silently.
func (d *Definition[T]) Probe() bool { return d.probe }

// ID returns the server-assigned identifier of item.
func (d *Definition[T]) ID(item T) string {
	return d.id(item)
}

// Action returns the registered action with the given name.
func (d *Definition[T]) Action(name string) (Action, bool) {
	for _, a := range d.actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// Actions returns the registered per-item actions.
func (d *Definition[T]) Actions() []Action {
	return append([]Action(nil), d.actions...)
}

// Active applies the resource's active predicate. Resources without one are
// never active.
func (d *Definition[T]) Active(item T) bool {
	return d.isActive != nil && d.isActive(item)
}

// Transform applies the ingestion transform, if any.
func (d *Definition[T]) Transform(item T) T {
	if d.transform == nil {
		return item
	}
	return d.transform(item)
}

// ListPath returns the collection path of the resource for a tenancy.
func (d *Definition[T]) ListPath(tenancyID string) string {
	return "/api/tenancies/" + url.PathEscape(tenancyID) + "/" + d.segment + "/"
}

// ItemPath returns the path of one item as used by mutations and actions.
func (d *Definition[T]) ItemPath(tenancyID, id string) string {
	return d.ReadPath(tenancyID, id) + "/"
}

// ReadPath returns the path a single item is fetched from. The portal
// serves it without a trailing slash.
func (d *Definition[T]) ReadPath(tenancyID, id string) string {
	return d.ListPath(tenancyID) + url.PathEscape(id)
}

func (d *Definition[T]) request(kinds Triple, tenancyID, id, method, path string, body any, silent bool) event.Event {
	return event.Event{
		Kind:      kinds.Request,
		TenancyID: tenancyID,
		ItemID:    id,
		Request: &event.Request{
			Method:       method,
			Path:         path,
			Body:         body,
			OnSuccess:    kinds.Succeeded,
			OnFailure:    kinds.Failed,
			FailSilently: silent,
		},
	}
}

// FetchList asks for the tenancy's full list of this resource.
func (d *Definition[T]) FetchList(tenancyID string) event.Event {
	k := Triple{d.kinds.FetchList, d.kinds.FetchListSucceeded, d.kinds.FetchListFailed}
	return d.request(k, tenancyID, "", http.MethodGet, d.ListPath(tenancyID), nil, d.probe)
}

// FetchOne asks for a single item.
func (d *Definition[T]) FetchOne(tenancyID, id string) event.Event {
	k := Triple{d.kinds.FetchOne, d.kinds.FetchOneSucceeded, d.kinds.FetchOneFailed}
	return d.request(k, tenancyID, id, http.MethodGet, d.ReadPath(tenancyID, id), nil, false)
}

// Create asks the server to create an item from body.
func (d *Definition[T]) Create(tenancyID string, body any) event.Event {
	k := Triple{d.kinds.Create, d.kinds.CreateSucceeded, d.kinds.CreateFailed}
	return d.request(k, tenancyID, "", http.MethodPost, d.ListPath(tenancyID), body, false)
}

// Update asks the server to update an item with body.
func (d *Definition[T]) Update(tenancyID, id string, body any) event.Event {
	k := Triple{d.kinds.Update, d.kinds.UpdateSucceeded, d.kinds.UpdateFailed}
	return d.request(k, tenancyID, id, http.MethodPut, d.ItemPath(tenancyID, id), body, false)
}

// Delete asks the server to delete an item.
func (d *Definition[T]) Delete(tenancyID, id string) event.Event {
	k := Triple{d.kinds.Delete, d.kinds.DeleteSucceeded, d.kinds.DeleteFailed}
	return d.request(k, tenancyID, id, http.MethodDelete, d.ItemPath(tenancyID, id), nil, false)
}

// Act builds the request event of a registered action. Extra path segments
// are escaped and appended after the action suffix.
func (d *Definition[T]) Act(name, tenancyID, id string, body any, extra ...string) (event.Event, bool) {
	a, ok := d.Action(name)
	if !ok {
		return event.Event{}, false
	}
	path := d.ItemPath(tenancyID, id) + a.Suffix
	for _, seg := range extra {
		path += url.PathEscape(seg) + "/"
	}
	return d.request(a.Kinds, tenancyID, id, a.Method, path, body, false), true
}
