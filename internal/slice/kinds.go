// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package slice

import "github.com/ManuGH/cloudportal/internal/event"

// Kinds is the uniform event taxonomy of one resource kind.
type Kinds struct {
	FetchList          event.Kind
	FetchListSucceeded event.Kind
	FetchListFailed    event.Kind

	FetchOne          event.Kind
	FetchOneSucceeded event.Kind
	FetchOneFailed    event.Kind

	Create          event.Kind
	CreateSucceeded event.Kind
	CreateFailed    event.Kind

	Update          event.Kind
	UpdateSucceeded event.Kind
	UpdateFailed    event.Kind

	Delete          event.Kind
	DeleteSucceeded event.Kind
	DeleteFailed    event.Kind
}

// Triple is a request kind with its terminal counterparts.
type Triple struct {
	Request   event.Kind
	Succeeded event.Kind
	Failed    event.Kind
}

// NewTriple derives the request/success/failure kinds for prefix/name.
func NewTriple(prefix, name string) Triple {
	base := prefix + "/" + name
	return Triple{
		Request:   event.Kind(base),
		Succeeded: event.Kind(base + "_SUCCEEDED"),
		Failed:    event.Kind(base + "_FAILED"),
	}
}

// NewKinds builds the taxonomy for a resource, e.g. NewKinds("MACHINE")
// yields MACHINE/FETCH_LIST, MACHINE/FETCH_LIST_SUCCEEDED and so on.
func NewKinds(prefix string) Kinds {
	list := NewTriple(prefix, "FETCH_LIST")
	one := NewTriple(prefix, "FETCH_ONE")
	create := NewTriple(prefix, "CREATE")
	update := NewTriple(prefix, "UPDATE")
	del := NewTriple(prefix, "DELETE")
	return Kinds{
		FetchList:          list.Request,
		FetchListSucceeded: list.Succeeded,
		FetchListFailed:    list.Failed,
		FetchOne:           one.Request,
		FetchOneSucceeded:  one.Succeeded,
		FetchOneFailed:     one.Failed,
		Create:             create.Request,
		CreateSucceeded:    create.Succeeded,
		CreateFailed:       create.Failed,
		Update:             update.Request,
		UpdateSucceeded:    update.Succeeded,
		UpdateFailed:       update.Failed,
		Delete:             del.Request,
		DeleteSucceeded:    del.Succeeded,
		DeleteFailed:       del.Failed,
	}
}
