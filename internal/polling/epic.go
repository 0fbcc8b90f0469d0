// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package polling keeps the caches of the current tenancy fresh: it repeats
// list fetches on a timer, polls items in transitional states until they
// settle and refreshes related caches after mutations.
package polling

import (
	"context"
	"net/http"
	"time"

	"github.com/ManuGH/cloudportal/internal/event"
	xglog "github.com/ManuGH/cloudportal/internal/log"
	"github.com/ManuGH/cloudportal/internal/resources"
	"github.com/ManuGH/cloudportal/internal/session"
	"github.com/ManuGH/cloudportal/internal/slice"
	"github.com/ManuGH/cloudportal/internal/tenancy"
)

// Timer rules.
const (
	RuleTenancies = "tenancies"
	RuleMachines  = "machines"
	RuleSettle    = "settle"
)

// Default intervals.
const (
	DefaultTenancyRepeat = 30 * time.Minute
	DefaultMachinesPoll  = 2 * time.Minute
	DefaultSettleDelay   = time.Second
)

// Config holds the polling intervals. Zero values select the defaults.
type Config struct {
	TenancyRepeat time.Duration
	MachinesPoll  time.Duration
	SettleDelay   time.Duration
}

func (c Config) withDefaults() Config {
	if c.TenancyRepeat <= 0 {
		c.TenancyRepeat = DefaultTenancyRepeat
	}
	if c.MachinesPoll <= 0 {
		c.MachinesPoll = DefaultMachinesPoll
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	return c
}

// settling lists the resources whose items are polled until they leave a
// transitional state.
var settling = []slice.Resource{resources.Machines, resources.Clusters, resources.Volumes}

// Epic schedules the follow-up fetches. Handle must only be called from the
// store goroutine; timers dispatch from their own goroutines.
type Epic struct {
	cfg   Config
	sched *Scheduler
}

// NewEpic returns a polling epic with its own scheduler.
func NewEpic(cfg Config) *Epic {
	return &Epic{cfg: cfg.withDefaults(), sched: NewScheduler()}
}

// Scheduler exposes the epic's timers.
func (e *Epic) Scheduler() *Scheduler { return e.sched }

// Stop cancels every pending timer.
func (e *Epic) Stop() { e.sched.Stop() }

// Handle reacts to one reduced event.
func (e *Epic) Handle(ctx context.Context, ev event.Event, s tenancy.State, d event.Dispatcher) {
	switch ev.Kind {
	case tenancy.FetchList:
		e.sched.Cancel(Key{Rule: RuleTenancies})
		return
	case tenancy.FetchListSucceeded:
		e.later(Key{Rule: RuleTenancies}, e.cfg.TenancyRepeat, d, tenancy.NewFetchList())
		return
	case tenancy.Switch:
		e.dropStale(ctx, s.CurrentID())
		return
	case session.Terminated:
		n := e.sched.CancelWhere(func(Key) bool { return true })
		if n > 0 {
			logger := xglog.WithComponentFromContext(ctx, "polling")
			logger.Debug().
				Str(xglog.FieldEvent, "polling.cancelled").
				Int("timers", n).
				Msg("session ended, timers cancelled")
		}
		return
	}

	tid := ev.Tenancy()
	if tid == "" || tid != s.CurrentID() {
		return
	}

	e.machinesPoll(ev, tid, d)
	e.settle(ev, tid, d)
	e.mutations(ev, tid, d)
	e.externalIPs(ev, tid, d)
}

func (e *Epic) later(key Key, after time.Duration, d event.Dispatcher, ev event.Event) {
	e.sched.Schedule(key, after, func() { d.Dispatch(ev) })
}

// dropStale cancels every tenancy-scoped timer not belonging to current.
func (e *Epic) dropStale(ctx context.Context, current string) {
	n := e.sched.CancelWhere(func(k Key) bool {
		return k.TenancyID != "" && k.TenancyID != current
	})
	if n > 0 {
		logger := xglog.WithComponentFromContext(ctx, "polling")
		logger.Debug().
			Str(xglog.FieldEvent, "polling.cancelled").
			Str(xglog.FieldTenancyID, current).
			Int("timers", n).
			Msg("tenancy switched, stale timers cancelled")
	}
}

func (e *Epic) machinesPoll(ev event.Event, tid string, d event.Dispatcher) {
	k := resources.Machines.Kinds()
	key := Key{Rule: RuleMachines, TenancyID: tid}
	switch ev.Kind {
	case k.FetchList:
		e.sched.Cancel(key)
	case k.FetchListSucceeded:
		e.later(key, e.cfg.MachinesPoll, d, resources.Machines.FetchList(tid))
	}
}

func (e *Epic) settle(ev event.Event, tid string, d event.Dispatcher) {
	for _, r := range settling {
		k := r.Kinds()
		switch ev.Kind {
		case k.FetchListSucceeded:
			for _, id := range r.ActiveIDs(ev) {
				d.Dispatch(r.FetchOne(tid, id))
			}
			return
		case k.FetchOneSucceeded:
			id, active := r.ActiveItem(ev)
			if id == "" {
				id = ev.Item()
			}
			key := Key{Rule: RuleSettle + ":" + r.Name(), TenancyID: tid, ItemID: id}
			if active {
				e.later(key, e.cfg.SettleDelay, d, r.FetchOne(tid, id))
			} else {
				e.sched.Cancel(key)
			}
			return
		case k.FetchOneFailed, k.DeleteSucceeded:
			e.sched.Cancel(Key{Rule: RuleSettle + ":" + r.Name(), TenancyID: tid, ItemID: ev.Item()})
			return
		}
	}
}

func (e *Epic) mutations(ev event.Event, tid string, d event.Dispatcher) {
	machines := resources.Machines.Kinds()
	volumes := resources.Volumes.Kinds()
	clusters := resources.Clusters.Kinds()
	ips := resources.ExternalIPs.Kinds()

	switch ev.Kind {
	case machines.CreateSucceeded:
		e.fetchCreated(resources.Machines, ev, tid, d)
	case volumes.CreateSucceeded:
		e.fetchCreated(resources.Volumes, ev, tid, d)
	case clusters.CreateSucceeded:
		e.fetchCreated(resources.Clusters, ev, tid, d)
	case volumes.UpdateSucceeded:
		d.Dispatch(resources.Volumes.FetchOne(tid, ev.Item()))
	case clusters.UpdateSucceeded:
		d.Dispatch(resources.Clusters.FetchOne(tid, ev.Item()))
	}

	switch ev.Kind {
	case machines.CreateSucceeded, machines.DeleteSucceeded,
		volumes.CreateSucceeded, volumes.DeleteSucceeded,
		ips.CreateSucceeded, ips.DeleteSucceeded:
		d.Dispatch(resources.Quotas.FetchList(tid))
	}

	if r, name, ok := actionSucceeded(ev.Kind); ok {
		switch name {
		case resources.ActionStart, resources.ActionStop, resources.ActionRestart, resources.ActionPatch:
			d.Dispatch(r.FetchOne(tid, ev.Item()))
		case resources.ActionAttachVolume, resources.ActionDetachVolume:
			d.Dispatch(resources.Volumes.FetchList(tid))
			d.Dispatch(resources.Quotas.FetchList(tid))
			d.Dispatch(r.FetchOne(tid, ev.Item()))
		}
	}
}

func (e *Epic) fetchCreated(r slice.Resource, ev event.Event, tid string, d event.Dispatcher) {
	id := r.PayloadID(ev)
	if id == "" {
		return
	}
	d.Dispatch(r.FetchOne(tid, id))
}

func (e *Epic) externalIPs(ev event.Event, tid string, d event.Dispatcher) {
	machines := resources.Machines.Kinds()
	switch {
	case ev.Kind == resources.ExternalIPs.Kinds().UpdateSucceeded,
		ev.Kind == machines.DeleteSucceeded,
		ev.Kind == machines.FetchOneFailed && ev.FailedWith(http.StatusNotFound):
		d.Dispatch(resources.ExternalIPs.FetchList(tid))
	}
}

// actionSucceeded maps the success kind of a per-item action back to its
// resource and action name.
func actionSucceeded(kind event.Kind) (slice.Resource, string, bool) {
	for _, r := range []slice.Resource{resources.Machines, resources.Clusters} {
		for _, a := range r.Actions() {
			if a.Kinds.Succeeded == kind {
				return r, a.Name, true
			}
		}
	}
	return nil, "", false
}
