// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package store runs the serial event loop: one goroutine folds every event
// into the state tree, notifies listeners and hands the event to the epics.
package store

import (
	"context"
	"sync"

	"github.com/ManuGH/cloudportal/internal/bus"
	"github.com/ManuGH/cloudportal/internal/event"
	xglog "github.com/ManuGH/cloudportal/internal/log"
	"github.com/ManuGH/cloudportal/internal/metrics"
)

// Reducer folds one event into the state. It must not block or mutate its
// input.
type Reducer[S any] func(state S, ev event.Event) S

// Epic observes every reduced event together with the resulting state and
// may dispatch follow-up events. Handle runs on the loop goroutine and must
// not block.
type Epic[S any] interface {
	Handle(ctx context.Context, ev event.Event, state S, d event.Dispatcher)
}

// EpicFunc adapts a function to the Epic interface.
type EpicFunc[S any] func(ctx context.Context, ev event.Event, state S, d event.Dispatcher)

func (f EpicFunc[S]) Handle(ctx context.Context, ev event.Event, state S, d event.Dispatcher) {
	f(ctx, ev, state, d)
}

// Listener is notified synchronously after every reduced event.
type Listener[S any] func(ev event.Event, state S)

// Option configures a Store.
type Option[S any] func(*Store[S])

// WithEpics appends epics, which run in registration order.
func WithEpics[S any](epics ...Epic[S]) Option[S] {
	return func(s *Store[S]) { s.epics = append(s.epics, epics...) }
}

// WithBus publishes every reduced event on bus.TopicEvents.
func WithBus[S any](b bus.Bus) Option[S] {
	return func(s *Store[S]) { s.bus = b }
}

type listenerEntry[S any] struct {
	id uint64
	fn Listener[S]
}

// Store owns the state tree. All mutation happens on the goroutine running
// Run; Dispatch may be called from anywhere.
type Store[S any] struct {
	reduce Reducer[S]
	epics  []Epic[S]
	bus    bus.Bus

	qmu   sync.Mutex
	queue []event.Event
	wake  chan struct{}

	smu   sync.RWMutex
	state S

	lmu       sync.Mutex
	listeners []listenerEntry[S]
	nextID    uint64
}

// New creates a store holding initial.
func New[S any](initial S, reduce Reducer[S], opts ...Option[S]) *Store[S] {
	s := &Store[S]{
		reduce: reduce,
		state:  initial,
		wake:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch enqueues ev. It never blocks.
func (s *Store[S]) Dispatch(ev event.Event) {
	s.qmu.Lock()
	s.queue = append(s.queue, ev)
	metrics.EventQueueDepth.Set(float64(len(s.queue)))
	s.qmu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// State returns the current state tree.
func (s *Store[S]) State() S {
	s.smu.RLock()
	defer s.smu.RUnlock()
	return s.state
}

// Subscribe registers l and returns the function that removes it. l is
// called on the loop goroutine and must not block.
func (s *Store[S]) Subscribe(l Listener[S]) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listenerEntry[S]{id: id, fn: l})
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			defer s.lmu.Unlock()
			for i, e := range s.listeners {
				if e.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Run consumes the queue until ctx is done. Events still queued at that
// point are discarded.
func (s *Store[S]) Run(ctx context.Context) error {
	logger := xglog.WithComponent("store")
	logger.Debug().Str(xglog.FieldEvent, "store.started").Msg("event loop started")
	for {
		select {
		case <-ctx.Done():
			s.qmu.Lock()
			pending := len(s.queue)
			s.qmu.Unlock()
			logger.Debug().
				Str(xglog.FieldEvent, "store.stopped").
				Int("pending", pending).
				Msg("event loop stopped")
			return nil
		case <-s.wake:
			s.Drain(ctx)
		}
	}
}

// Drain processes queued events on the calling goroutine until the queue is
// empty or ctx is done, and returns the number processed. Run calls it;
// tests may call it directly instead of running the loop.
func (s *Store[S]) Drain(ctx context.Context) int {
	n := 0
	for ctx.Err() == nil {
		ev, ok := s.next()
		if !ok {
			return n
		}
		s.process(ctx, ev)
		n++
	}
	return n
}

func (s *Store[S]) next() (event.Event, bool) {
	s.qmu.Lock()
	defer s.qmu.Unlock()
	if len(s.queue) == 0 {
		return event.Event{}, false
	}
	ev := s.queue[0]
	s.queue[0] = event.Event{}
	s.queue = s.queue[1:]
	metrics.EventQueueDepth.Set(float64(len(s.queue)))
	return ev, true
}

func (s *Store[S]) process(ctx context.Context, ev event.Event) {
	s.smu.Lock()
	next := s.reduce(s.state, ev)
	s.state = next
	s.smu.Unlock()
	metrics.IncEventReduced(string(ev.Kind))

	s.lmu.Lock()
	listeners := append([]listenerEntry[S](nil), s.listeners...)
	s.lmu.Unlock()
	for _, l := range listeners {
		l.fn(ev, next)
	}

	if s.bus != nil {
		if err := s.bus.Publish(ctx, bus.TopicEvents, ev); err != nil {
			logger := xglog.WithComponent("store")
			logger.Debug().
				Err(err).
				Str(xglog.FieldKind, string(ev.Kind)).
				Msg("event not published")
		}
	}

	for _, e := range s.epics {
		e.Handle(ctx, ev, next, s)
	}
}
