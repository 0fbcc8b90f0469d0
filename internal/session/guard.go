// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"sync"
)

// SubscribeFunc registers a listener for session state changes and returns
// the function that removes it.
type SubscribeFunc func(listener func(State)) (unsubscribe func())

// Guard holds a read-only snapshot of the session state, refreshed by the
// store after every reduced event. Routing decisions are made against the
// snapshot without touching the store.
type Guard struct {
	mu          sync.RWMutex
	state       State
	changed     chan struct{}
	unsubscribe func()
	closeOnce   sync.Once
}

// NewGuard subscribes a guard through subscribe.
func NewGuard(subscribe SubscribeFunc) *Guard {
	g := &Guard{changed: make(chan struct{})}
	g.unsubscribe = subscribe(g.update)
	return g
}

func (g *Guard) update(s State) {
	g.mu.Lock()
	if s == g.state {
		g.mu.Unlock()
		return
	}
	g.state = s
	close(g.changed)
	g.changed = make(chan struct{})
	g.mu.Unlock()
}

// Snapshot returns the last observed session state.
func (g *Guard) Snapshot() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Authenticated reports whether the user is signed in.
func (g *Guard) Authenticated() bool {
	return g.Snapshot().Username != ""
}

// Username returns the signed-in user, or "".
func (g *Guard) Username() string {
	return g.Snapshot().Username
}

// Await blocks until cond holds for the snapshot or ctx is done.
func (g *Guard) Await(ctx context.Context, cond func(State) bool) (State, error) {
	for {
		g.mu.RLock()
		s, changed := g.state, g.changed
		g.mu.RUnlock()
		if cond(s) {
			return s, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return s, ctx.Err()
		}
	}
}

// Close detaches the guard from the store. The last snapshot stays readable.
func (g *Guard) Close() {
	g.closeOnce.Do(func() {
		if g.unsubscribe != nil {
			g.unsubscribe()
		}
	})
}
