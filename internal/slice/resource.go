// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package slice

import "github.com/ManuGH/cloudportal/internal/event"

// Resource is the type-erased view of a Definition used by orchestration
// code that treats every resource kind alike.
type Resource interface {
	Name() string
	Kinds() Kinds
	Probe() bool
	Actions() []Action
	FetchList(tenancyID string) event.Event
	FetchOne(tenancyID, id string) event.Event
	// Act builds the request of a registered action; false when the
	// resource has no action of that name.
	Act(name, tenancyID, id string, body any, extra ...string) (event.Event, bool)
	// ActiveIDs decodes a list payload and returns the ids of active items.
	ActiveIDs(ev event.Event) []string
	// ActiveItem decodes a single-item payload and reports its id and
	// whether it is still active.
	ActiveItem(ev event.Event) (string, bool)
	// PayloadID decodes a single-item payload and returns its id.
	PayloadID(ev event.Event) string
}

var _ Resource = (*Definition[struct{}])(nil)

func (d *Definition[T]) ActiveIDs(ev event.Event) []string {
	if d.isActive == nil {
		return nil
	}
	var items []T
	if err := ev.Decode(&items); err != nil {
		return nil
	}
	var ids []string
	for _, item := range items {
		item = d.Transform(item)
		if d.isActive(item) {
			ids = append(ids, d.id(item))
		}
	}
	return ids
}

func (d *Definition[T]) ActiveItem(ev event.Event) (string, bool) {
	var item T
	if err := ev.Decode(&item); err != nil {
		return "", false
	}
	item = d.Transform(item)
	return d.id(item), d.Active(item)
}

func (d *Definition[T]) PayloadID(ev event.Event) string {
	var item T
	if err := ev.Decode(&item); err != nil {
		return ""
	}
	return d.id(item)
}
