// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package notify accumulates user-visible messages, collapsing repeats of
// the same message into one entry with a counter.
package notify

import (
	"slices"

	"github.com/ManuGH/cloudportal/internal/event"
)

const (
	Notify event.Kind = "NOTIFICATION/NOTIFY"
	Remove event.Kind = "NOTIFICATION/REMOVE"
	Clear  event.Kind = "NOTIFICATION/CLEAR"
)

// ContextError is the context of notifications raised for failed events.
const ContextError = "error"

// Notification is one user-visible message.
type Notification struct {
	Message string `json:"message"`
	Context string `json:"context"`
	Times   int    `json:"times"`
}

// State is the ordered list of notifications.
type State []Notification

// NewNotify raises a message in the given context, e.g. "danger" or "info".
func NewNotify(message, context string) event.Event {
	return event.Event{Kind: Notify, Data: Notification{Message: message, Context: context}}
}

// NewRemove removes the notification at index.
func NewRemove(index int) event.Event {
	return event.Event{Kind: Remove, Data: index}
}

// NewClear removes every notification.
func NewClear() event.Event {
	return event.Event{Kind: Clear}
}

// Reduce folds a notification event into s. The input slice is never
// modified.
func Reduce(s State, ev event.Event) State {
	switch ev.Kind {
	case Notify:
		n, ok := ev.Data.(Notification)
		if !ok {
			return s
		}
		for i, existing := range s {
			if existing.Context == n.Context && existing.Message == n.Message {
				next := slices.Clone(s)
				next[i].Times++
				return next
			}
		}
		n.Times = 1
		return append(slices.Clip(s), n)

	case Remove:
		i, ok := ev.Data.(int)
		if !ok || i < 0 || i >= len(s) {
			return s
		}
		return slices.Delete(slices.Clone(s), i, i+1)

	case Clear:
		if s == nil {
			return s
		}
		return State{}
	}
	return s
}
