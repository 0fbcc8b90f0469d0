// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package portal assembles the store, the epics and the collaborators into
// a running client core.
package portal

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuGH/cloudportal/internal/bus"
	"github.com/ManuGH/cloudportal/internal/dispatch"
	"github.com/ManuGH/cloudportal/internal/event"
	xglog "github.com/ManuGH/cloudportal/internal/log"
	"github.com/ManuGH/cloudportal/internal/notify"
	"github.com/ManuGH/cloudportal/internal/polling"
	"github.com/ManuGH/cloudportal/internal/resources"
	"github.com/ManuGH/cloudportal/internal/session"
	"github.com/ManuGH/cloudportal/internal/store"
	"github.com/ManuGH/cloudportal/internal/tenancy"
)

var (
	// ErrAuthentication is returned by Login when the credentials are
	// rejected.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNotAuthenticated is returned when no session could be established.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrUnknownTenancy is returned when switching to a tenancy that is not
	// in the list.
	ErrUnknownTenancy = errors.New("unknown tenancy")
	// ErrNoTenancy is returned by Act when no tenancy is current.
	ErrNoTenancy = errors.New("no tenancy selected")
	// ErrUnknownAction is returned by Act for a resource or action name
	// that is not registered.
	ErrUnknownAction = errors.New("unknown action")
	// ErrActionFailed wraps the server's message when an action fails.
	ErrActionFailed = errors.New("action failed")
)

// Options configures New.
type Options struct {
	Transport dispatch.Transport
	Cookies   dispatch.CookieSource
	Dispatch  dispatch.Config
	Polling   polling.Config
	// Bus receives every reduced event. A memory bus is created when nil.
	Bus bus.Bus
}

// Portal is the running client core.
type Portal struct {
	store    *store.Store[State]
	bus      bus.Bus
	dispatch *dispatch.Epic
	polling  *polling.Epic
	guard    *session.Guard
}

// New wires the store and its epics. Nothing happens until Run is called.
func New(opts Options) (*Portal, error) {
	if opts.Transport == nil {
		return nil, errors.New("portal: transport is required")
	}
	b := opts.Bus
	if b == nil {
		b = bus.NewMemoryBus()
	}

	sessionEpic := session.NewEpic()
	notifyEpic := notify.NewEpic()
	tenancyEpic := tenancy.NewEpic()
	p := &Portal{
		bus:      b,
		dispatch: dispatch.New(opts.Transport, opts.Cookies, opts.Dispatch),
		polling:  polling.NewEpic(opts.Polling),
	}

	p.store = store.New(State{}, Reduce,
		store.WithBus[State](b),
		store.WithEpics(
			store.EpicFunc[State](func(ctx context.Context, ev event.Event, s State, d event.Dispatcher) {
				sessionEpic.Handle(ctx, ev, s.Session, d)
			}),
			store.EpicFunc[State](func(ctx context.Context, ev event.Event, _ State, d event.Dispatcher) {
				notifyEpic.Handle(ctx, ev, d)
			}),
			store.EpicFunc[State](func(ctx context.Context, ev event.Event, s State, d event.Dispatcher) {
				tenancyEpic.Handle(ctx, ev, s.Tenancies, d)
			}),
			store.EpicFunc[State](func(ctx context.Context, ev event.Event, s State, d event.Dispatcher) {
				p.polling.Handle(ctx, ev, s.Tenancies, d)
			}),
			store.EpicFunc[State](func(ctx context.Context, ev event.Event, _ State, d event.Dispatcher) {
				p.dispatch.Handle(ctx, ev, d)
			}),
		),
	)

	p.guard = session.NewGuard(func(l func(session.State)) func() {
		return p.store.Subscribe(func(_ event.Event, s State) { l(s.Session) })
	})
	return p, nil
}

// Run processes events until ctx is done, then stops the timers and waits
// for in-flight requests to settle.
func (p *Portal) Run(ctx context.Context) error {
	logger := xglog.WithComponent("portal")
	logger.Info().Str(xglog.FieldEvent, "portal.started").Msg("portal core running")

	err := p.store.Run(ctx)

	p.polling.Stop()
	p.dispatch.Wait()
	p.guard.Close()
	logger.Info().Str(xglog.FieldEvent, "portal.stopped").Msg("portal core stopped")
	return err
}

// Dispatch enqueues ev.
func (p *Portal) Dispatch(ev event.Event) { p.store.Dispatch(ev) }

// State returns the current state tree.
func (p *Portal) State() State { return p.store.State() }

// Subscribe registers a listener called after every reduced event.
func (p *Portal) Subscribe(l store.Listener[State]) (unsubscribe func()) {
	return p.store.Subscribe(l)
}

// Guard returns the session guard.
func (p *Portal) Guard() *session.Guard { return p.guard }

// Bus returns the event stream.
func (p *Portal) Bus() bus.Bus { return p.bus }

// Do dispatches ev and blocks until done reports true for a reduced event
// or ctx is done. done runs on the loop goroutine and must not block.
func (p *Portal) Do(ctx context.Context, ev event.Event, done func(event.Event, State) bool) (State, error) {
	result := make(chan State, 1)
	var unsubscribe func()
	unsubscribe = p.store.Subscribe(func(e event.Event, s State) {
		if done(e, s) {
			select {
			case result <- s:
			default:
			}
		}
	})
	defer unsubscribe()

	p.store.Dispatch(ev)
	select {
	case s := <-result:
		return s, nil
	case <-ctx.Done():
		return p.store.State(), ctx.Err()
	}
}

// Act runs the named action on item id of the current tenancy and waits for
// its outcome. resource is a resource name such as "MACHINE".
func (p *Portal) Act(ctx context.Context, resource, action, id string, extra ...string) error {
	r, ok := resources.Lookup(resource)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, resource)
	}
	kinds, ok := resources.ActionKinds(r, action)
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrUnknownAction, resource, action)
	}
	tid := p.State().Tenancies.CurrentID()
	if tid == "" {
		return ErrNoTenancy
	}
	ev, _ := r.Act(action, tid, id, nil, extra...)

	outcome := make(chan event.Event, 1)
	unsubscribe := p.store.Subscribe(func(e event.Event, _ State) {
		if (e.Kind != kinds.Succeeded && e.Kind != kinds.Failed) || e.Tenancy() != tid || e.Item() != id {
			return
		}
		select {
		case outcome <- e:
		default:
		}
	})
	defer unsubscribe()

	p.store.Dispatch(ev)
	select {
	case e := <-outcome:
		if e.Kind == kinds.Failed {
			msg := "request failed"
			if e.Err != nil && e.Err.Message != "" {
				msg = e.Err.Message
			}
			return fmt.Errorf("%w: %s", ErrActionFailed, msg)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func sessionSettled(ev event.Event, _ State) bool {
	return ev.Kind == session.Started || ev.Kind == session.Terminated
}

// Initialise probes for an existing session and reports whether one was
// found.
func (p *Portal) Initialise(ctx context.Context) (bool, error) {
	s, err := p.Do(ctx, session.NewInitialise(), sessionSettled)
	if err != nil {
		return false, err
	}
	return s.Session.Username != "", nil
}

// Login authenticates with the given credentials.
func (p *Portal) Login(ctx context.Context, username, password string) error {
	s, err := p.Do(ctx, session.NewAuthenticate(username, password), sessionSettled)
	if err != nil {
		return err
	}
	if s.Session.Username == "" {
		if apiErr := s.Session.AuthenticationError; apiErr != nil {
			return fmt.Errorf("%w: %s", ErrAuthentication, apiErr.Message)
		}
		return ErrAuthentication
	}
	return nil
}

// Logout ends the session.
func (p *Portal) Logout(ctx context.Context) error {
	s, err := p.Do(ctx, session.NewSignOut(), func(ev event.Event, _ State) bool {
		return ev.Kind == session.Terminated || ev.Kind == session.SignOutFailed
	})
	if err != nil {
		return err
	}
	if s.Session.Username != "" {
		return errors.New("sign out failed")
	}
	return nil
}

// Tenancies refreshes the tenancy list.
func (p *Portal) Tenancies(ctx context.Context) (tenancy.State, error) {
	s, err := p.Do(ctx, tenancy.NewFetchList(), func(ev event.Event, _ State) bool {
		return ev.Kind == tenancy.FetchListSucceeded || ev.Kind == tenancy.FetchListFailed
	})
	if err != nil {
		return s.Tenancies, err
	}
	if s.Tenancies.Data == nil {
		return s.Tenancies, errors.New("tenancy list unavailable")
	}
	return s.Tenancies, nil
}

// Switch makes id current and waits until every resource list of the
// tenancy has been fetched or has failed.
func (p *Portal) Switch(ctx context.Context, id string) (*tenancy.Current, error) {
	if _, ok := p.store.State().Tenancies.Data[id]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTenancy, id)
	}
	if cur := p.store.State().Tenancies.Current; cur != nil && cur.ID == id {
		return cur, nil
	}
	terminal := make(map[event.Kind]string, 2*len(resources.All))
	for _, r := range resources.All {
		k := r.Kinds()
		terminal[k.FetchListSucceeded] = r.Name()
		terminal[k.FetchListFailed] = r.Name()
	}
	settled := make(map[string]bool, len(resources.All))
	s, err := p.Do(ctx, tenancy.NewSwitch(id), func(ev event.Event, s State) bool {
		if s.Tenancies.CurrentID() != id {
			// Cleared while loading, e.g. the tenancy answered 404.
			return ev.Kind == tenancy.Switch
		}
		if name, ok := terminal[ev.Kind]; ok && ev.Tenancy() == id {
			settled[name] = true
		}
		return len(settled) == len(resources.All)
	})
	if err != nil {
		return nil, err
	}
	if s.Tenancies.CurrentID() != id {
		return nil, fmt.Errorf("%w: %q is no longer accessible", ErrUnknownTenancy, id)
	}
	return s.Tenancies.Current, nil
}
