// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package slice

import (
	"maps"
	"slices"
)

// Flag names one client-only operation flag of a cached item.
type Flag int

const (
	FlagUpdating Flag = iota
	FlagDeleting
	FlagActionInProgress
	FlagAttachingVolume
	FlagDetachingVolume
)

// Flags track in-flight per-item operations. They exist only on the client
// and are never sent to the server.
type Flags struct {
	Updating         bool `json:"updating,omitempty"`
	Deleting         bool `json:"deleting,omitempty"`
	ActionInProgress bool `json:"action_in_progress,omitempty"`
	AttachingVolume  bool `json:"attaching_volume,omitempty"`
	DetachingVolume  bool `json:"detaching_volume,omitempty"`
}

// With returns a copy of f with the given flag set to v.
func (f Flags) With(flag Flag, v bool) Flags {
	switch flag {
	case FlagUpdating:
		f.Updating = v
	case FlagDeleting:
		f.Deleting = v
	case FlagActionInProgress:
		f.ActionInProgress = v
	case FlagAttachingVolume:
		f.AttachingVolume = v
	case FlagDetachingVolume:
		f.DetachingVolume = v
	}
	return f
}

// Any reports whether any operation is in flight for the item.
func (f Flags) Any() bool {
	return f.Updating || f.Deleting || f.ActionInProgress || f.AttachingVolume || f.DetachingVolume
}

// Entry is a cached item: stable server data plus client-side flags.
type Entry[T any] struct {
	Item  T     `json:"item"`
	Flags Flags `json:"flags"`
}

// State is the cache of one resource kind for one tenancy. A nil Data map
// means the list has never been fetched successfully; an empty map means it
// was fetched and is empty.
type State[T any] struct {
	Fetching bool                `json:"fetching"`
	Creating bool                `json:"creating"`
	Data     map[string]Entry[T] `json:"data"`
}

// Loaded reports whether the list has been fetched at least once.
func (s State[T]) Loaded() bool {
	return s.Data != nil
}

// Get returns the entry with the given id.
func (s State[T]) Get(id string) (Entry[T], bool) {
	e, ok := s.Data[id]
	return e, ok
}

// IDs returns the ids of the cached items in sorted order.
func (s State[T]) IDs() []string {
	return slices.Sorted(maps.Keys(s.Data))
}

// Items returns the cached items ordered by id.
func (s State[T]) Items() []T {
	out := make([]T, 0, len(s.Data))
	for _, id := range s.IDs() {
		out = append(out, s.Data[id].Item)
	}
	return out
}

// put returns a copy of s with the entry stored under id. The receiver's map
// is never mutated so previously published snapshots stay valid.
func (s State[T]) put(id string, e Entry[T]) State[T] {
	data := make(map[string]Entry[T], len(s.Data)+1)
	maps.Copy(data, s.Data)
	data[id] = e
	s.Data = data
	return s
}

func (s State[T]) remove(id string) State[T] {
	data := make(map[string]Entry[T], len(s.Data))
	for k, v := range s.Data {
		if k != id {
			data[k] = v
		}
	}
	s.Data = data
	return s
}
