// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package bus fans the reduced event stream out to observers outside the
// store loop, such as the CLI's watch command.
package bus

import "context"

// TopicEvents carries every event after it has been reduced.
const TopicEvents = "events"

// Message is an opaque payload. The store publishes event.Event values.
type Message any

type Subscriber interface {
	// C returns a read-only message channel. It is closed by Close.
	C() <-chan Message
	// Close unsubscribes.
	Close() error
}

// Bus is the event stream transport.
type Bus interface {
	Publish(ctx context.Context, topic string, msg Message) error
	Subscribe(ctx context.Context, topic string) (Subscriber, error)
}
