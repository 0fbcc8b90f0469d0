// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/ManuGH/cloudportal/internal/bus"
	"github.com/ManuGH/cloudportal/internal/event"
	"github.com/ManuGH/cloudportal/internal/portal"
	"github.com/ManuGH/cloudportal/internal/tenancy"
)

type command func(ctx context.Context, p *portal.Portal, opts options, out io.Writer) error

var commands = map[string]command{
	"login":     login,
	"logout":    logout,
	"tenancies": listTenancies,
	"show":      show,
	"act":       act,
	"watch":     watch,
}

func login(ctx context.Context, p *portal.Portal, opts options, out io.Writer) error {
	found, err := p.Initialise(ctx)
	if err != nil {
		return err
	}
	if found {
		fmt.Fprintf(out, "already signed in as %s\n", p.Guard().Username())
		return nil
	}
	if opts.user == "" || opts.password == "" {
		return errors.New("login needs a user name and a password")
	}
	if err := p.Login(ctx, opts.user, opts.password); err != nil {
		return err
	}
	fmt.Fprintf(out, "signed in as %s\n", p.Guard().Username())
	return nil
}

func logout(ctx context.Context, p *portal.Portal, _ options, out io.Writer) error {
	found, err := p.Initialise(ctx)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintln(out, "not signed in")
		return nil
	}
	if err := p.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "signed out")
	return nil
}

// requireSession restores the saved session and loads the tenancy list.
func requireSession(ctx context.Context, p *portal.Portal) (tenancy.State, error) {
	found, err := p.Initialise(ctx)
	if err != nil {
		return tenancy.State{}, err
	}
	if !found {
		return tenancy.State{}, fmt.Errorf("%w: run 'portal login' first", portal.ErrNotAuthenticated)
	}
	return p.Tenancies(ctx)
}

func listTenancies(ctx context.Context, p *portal.Portal, _ options, out io.Writer) error {
	s, err := requireSession(ctx, p)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, id := range slices.Sorted(maps.Keys(s.Data)) {
		fmt.Fprintf(tw, "%s\t%s\n", id, s.Data[id].Name)
	}
	return tw.Flush()
}

func show(ctx context.Context, p *portal.Portal, opts options, out io.Writer) error {
	if len(opts.args) != 1 {
		return errors.New("usage: portal show <tenancy>")
	}
	if _, err := requireSession(ctx, p); err != nil {
		return err
	}
	cur, err := p.Switch(ctx, opts.args[0])
	if err != nil {
		return err
	}
	printTenancy(out, cur)
	return nil
}

func act(ctx context.Context, p *portal.Portal, opts options, out io.Writer) error {
	if len(opts.args) < 4 {
		return errors.New("usage: portal act <tenancy> <resource> <action> <id> [arg...]")
	}
	if _, err := requireSession(ctx, p); err != nil {
		return err
	}
	if _, err := p.Switch(ctx, opts.args[0]); err != nil {
		return err
	}
	resource := strings.ToUpper(opts.args[1])
	action := strings.ToUpper(opts.args[2])
	id := opts.args[3]
	if err := p.Act(ctx, resource, action, id, opts.args[4:]...); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s: %s done\n", strings.ToLower(resource), id, strings.ToLower(action))
	return nil
}

func printTenancy(out io.Writer, cur *tenancy.Current) {
	r := cur.Resources
	fmt.Fprintf(out, "%s (%s)\n\n", cur.Name, cur.ID)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RESOURCE\tCOUNT")
	rows := []struct {
		name   string
		loaded bool
		n      int
	}{
		{"quotas", r.Quotas.Loaded(), len(r.Quotas.Data)},
		{"images", r.Images.Loaded(), len(r.Images.Data)},
		{"sizes", r.Sizes.Loaded(), len(r.Sizes.Data)},
		{"external ips", r.ExternalIPs.Loaded(), len(r.ExternalIPs.Data)},
		{"volumes", r.Volumes.Loaded(), len(r.Volumes.Data)},
		{"machines", r.Machines.Loaded(), len(r.Machines.Data)},
		{"cluster types", r.ClusterTypes.Loaded(), len(r.ClusterTypes.Data)},
		{"clusters", r.Clusters.Loaded(), len(r.Clusters.Data)},
	}
	for _, row := range rows {
		count := "-"
		if row.loaded {
			count = fmt.Sprint(row.n)
		}
		fmt.Fprintf(tw, "%s\t%s\n", row.name, count)
	}
	_ = tw.Flush()

	if len(r.Machines.Data) == 0 {
		return
	}
	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MACHINE\tNAME\tSTATUS\tPOWER\tEXTERNAL IP\tBUSY")
	for _, id := range r.Machines.IDs() {
		e, _ := r.Machines.Get(id)
		m := e.Item
		busy := "-"
		if e.Flags.Any() || m.IsActive() {
			busy = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Status.Name, m.PowerState, m.ExternalIP, busy)
	}
	_ = tw.Flush()
}

func watch(ctx context.Context, p *portal.Portal, opts options, out io.Writer) error {
	sub, err := p.Bus().Subscribe(ctx, bus.TopicEvents)
	if err != nil {
		return err
	}
	defer sub.Close()

	if _, err := requireSession(ctx, p); err != nil {
		return err
	}
	if len(opts.args) > 0 {
		if _, err := p.Switch(ctx, opts.args[0]); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub.C():
			if !ok {
				return nil
			}
			if ev, ok := msg.(event.Event); ok {
				printEvent(out, ev)
			}
		}
	}
}

func printEvent(out io.Writer, ev event.Event) {
	line := string(ev.Kind)
	if tid := ev.Tenancy(); tid != "" {
		line += " tenancy=" + tid
	}
	if id := ev.Item(); id != "" {
		line += " item=" + id
	}
	if ev.Error && ev.Err != nil {
		line += fmt.Sprintf(" status=%d error=%q", ev.Err.Status, ev.Err.Message)
	}
	fmt.Fprintln(out, line)
}
