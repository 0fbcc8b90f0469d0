// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package slice

import (
	"github.com/ManuGH/cloudportal/internal/event"
	xglog "github.com/ManuGH/cloudportal/internal/log"
)

// Reduce folds ev into s. It never fails: events of foreign kinds, events
// addressing unknown items and undecodable payloads leave s unchanged apart
// from the transient flags documented per kind.
func (d *Definition[T]) Reduce(s State[T], ev event.Event) State[T] {
	k := d.kinds
	switch ev.Kind {
	case k.FetchList:
		s.Fetching = true
		return s

	case k.FetchListSucceeded:
		s.Fetching = false
		var items []T
		if err := ev.Decode(&items); err != nil {
			d.warnDecode(ev, err)
			return s
		}
		data := make(map[string]Entry[T], len(items))
		for _, item := range items {
			item = d.Transform(item)
			id := d.id(item)
			entry := Entry[T]{Item: item}
			if prev, ok := s.Data[id]; ok {
				entry.Flags = prev.Flags
			}
			data[id] = entry
		}
		s.Data = data
		return s

	case k.FetchListFailed:
		s.Fetching = false
		return s

	case k.Create:
		s.Creating = true
		return s

	case k.CreateSucceeded:
		s.Creating = false
		item, ok := d.decodeItem(ev)
		if !ok {
			return s
		}
		return s.put(d.id(item), Entry[T]{Item: item})

	case k.CreateFailed:
		s.Creating = false
		return s

	case k.FetchOneSucceeded:
		item, ok := d.decodeItem(ev)
		if !ok {
			return s
		}
		id := d.id(item)
		prev, known := s.Data[id]
		if !known {
			return s
		}
		return s.put(id, Entry[T]{Item: item, Flags: prev.Flags})

	case k.Update:
		return d.setFlag(s, ev.Item(), FlagUpdating, true)

	case k.UpdateSucceeded:
		prev, known := s.Data[ev.Item()]
		if !known {
			return s
		}
		entry := Entry[T]{Item: prev.Item, Flags: prev.Flags.With(FlagUpdating, false)}
		if item, ok := d.decodeItem(ev); ok {
			entry.Item = item
		}
		return s.put(ev.Item(), entry)

	case k.UpdateFailed:
		return d.setFlag(s, ev.Item(), FlagUpdating, false)

	case k.Delete:
		return d.setFlag(s, ev.Item(), FlagDeleting, true)

	case k.DeleteSucceeded:
		if _, known := s.Data[ev.Item()]; !known {
			return s
		}
		return s.remove(ev.Item())

	case k.DeleteFailed:
		return d.setFlag(s, ev.Item(), FlagDeleting, false)
	}

	for _, a := range d.actions {
		switch ev.Kind {
		case a.Kinds.Request:
			return d.setFlag(s, ev.Item(), a.Flag, true)
		case a.Kinds.Succeeded:
			prev, known := s.Data[ev.Item()]
			if !known {
				return s
			}
			entry := Entry[T]{Item: prev.Item, Flags: prev.Flags.With(a.Flag, false)}
			if a.Merge {
				if item, ok := d.decodeItem(ev); ok {
					entry.Item = item
				}
			}
			return s.put(ev.Item(), entry)
		case a.Kinds.Failed:
			return d.setFlag(s, ev.Item(), a.Flag, false)
		}
	}
	return s
}

func (d *Definition[T]) setFlag(s State[T], id string, flag Flag, v bool) State[T] {
	prev, known := s.Data[id]
	if !known {
		return s
	}
	return s.put(id, Entry[T]{Item: prev.Item, Flags: prev.Flags.With(flag, v)})
}

func (d *Definition[T]) decodeItem(ev event.Event) (T, bool) {
	var item T
	if err := ev.Decode(&item); err != nil {
		d.warnDecode(ev, err)
		return item, false
	}
	return d.Transform(item), true
}

func (d *Definition[T]) warnDecode(ev event.Event, err error) {
	logger := xglog.WithComponent("slice")
	logger.Warn().
		Str("resource", d.name).
		Err(err).
		Str(xglog.FieldEvent, "slice.decode_failed").
		Str(xglog.FieldKind, string(ev.Kind)).
		Str(xglog.FieldTenancyID, ev.Tenancy()).
		Msg("ignoring undecodable payload")
}
