// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/cloudportal/internal/bus"
	"github.com/ManuGH/cloudportal/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	kindInc  event.Kind = "COUNTER/INC"
	kindEcho event.Kind = "COUNTER/ECHO"
)

func count(n int, ev event.Event) int {
	if ev.Kind == kindInc {
		return n + 1
	}
	return n
}

func TestDrainReducesInOrder(t *testing.T) {
	s := New(0, count)
	for range 3 {
		s.Dispatch(event.Event{Kind: kindInc})
	}
	assert.Equal(t, 0, s.State())
	assert.Equal(t, 3, s.Drain(context.Background()))
	assert.Equal(t, 3, s.State())
	assert.Zero(t, s.Drain(context.Background()))
}

func TestEpicsSeeReducedStateAndQueueFollowUps(t *testing.T) {
	var seen []string
	echo := EpicFunc[int](func(_ context.Context, ev event.Event, state int, d event.Dispatcher) {
		seen = append(seen, string(ev.Kind))
		if ev.Kind == kindInc && state < 3 {
			d.Dispatch(event.Event{Kind: kindInc})
		}
	})
	second := EpicFunc[int](func(_ context.Context, ev event.Event, _ int, _ event.Dispatcher) {
		seen = append(seen, "second:"+string(ev.Kind))
	})

	s := New(0, count, WithEpics[int](echo, second))
	s.Dispatch(event.Event{Kind: kindInc})
	s.Drain(context.Background())

	assert.Equal(t, 3, s.State())
	assert.Equal(t, []string{
		"COUNTER/INC", "second:COUNTER/INC",
		"COUNTER/INC", "second:COUNTER/INC",
		"COUNTER/INC", "second:COUNTER/INC",
	}, seen)
}

func TestListenersRunBeforeEpics(t *testing.T) {
	var order []string
	s := New(0, count, WithEpics[int](EpicFunc[int](func(context.Context, event.Event, int, event.Dispatcher) {
		order = append(order, "epic")
	})))
	unsubscribe := s.Subscribe(func(_ event.Event, state int) {
		order = append(order, "listener")
		assert.Equal(t, 1, state)
	})

	s.Dispatch(event.Event{Kind: kindInc})
	s.Drain(context.Background())
	assert.Equal(t, []string{"listener", "epic"}, order)

	unsubscribe()
	unsubscribe()
	order = nil
	s.Dispatch(event.Event{Kind: kindEcho})
	s.Drain(context.Background())
	assert.Equal(t, []string{"epic"}, order)
}

func TestListenerMayUnsubscribeItself(t *testing.T) {
	s := New(0, count)
	calls := 0
	var unsubscribe func()
	unsubscribe = s.Subscribe(func(event.Event, int) {
		calls++
		unsubscribe()
	})
	other := 0
	s.Subscribe(func(event.Event, int) { other++ })

	s.Dispatch(event.Event{Kind: kindInc})
	s.Dispatch(event.Event{Kind: kindInc})
	s.Drain(context.Background())
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, other)
}

func TestPublishesReducedEvents(t *testing.T) {
	b := bus.NewMemoryBus()
	sub, err := b.Subscribe(context.Background(), bus.TopicEvents)
	require.NoError(t, err)
	defer func() { _ = sub.Close() }()

	s := New(0, count, WithBus[int](b))
	s.Dispatch(event.Event{Kind: kindInc})
	s.Drain(context.Background())

	msg := <-sub.C()
	ev, ok := msg.(event.Event)
	require.True(t, ok)
	assert.Equal(t, kindInc, ev.Kind)
}

func TestRunProcessesConcurrentDispatches(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := New(0, count)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	reached := make(chan struct{})
	var once sync.Once
	s.Subscribe(func(_ event.Event, state int) {
		if state == 100 {
			once.Do(func() { close(reached) })
		}
	})

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				s.Dispatch(event.Event{Kind: kindInc})
			}
		}()
	}
	wg.Wait()

	select {
	case <-reached:
	case <-time.After(2 * time.Second):
		t.Fatalf("state stuck at %d", s.State())
	}
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 100, s.State())
}
