// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package tenancy owns the list of tenancies the user belongs to and the
// resource caches of the current one.
package tenancy

import (
	"net/http"

	"github.com/ManuGH/cloudportal/internal/event"
	xglog "github.com/ManuGH/cloudportal/internal/log"
	"github.com/ManuGH/cloudportal/internal/model"
	"github.com/ManuGH/cloudportal/internal/resources"
	"github.com/ManuGH/cloudportal/internal/session"
)

const (
	FetchList          event.Kind = "TENANCY/FETCH_LIST"
	FetchListSucceeded event.Kind = "TENANCY/FETCH_LIST_SUCCEEDED"
	FetchListFailed    event.Kind = "TENANCY/FETCH_LIST_FAILED"

	Switch event.Kind = "TENANCY/SWITCH"
)

const listPath = "/api/tenancies/"

// Current is the selected tenancy: its summary plus the eight resource
// caches, which exist only while it is current.
type Current struct {
	model.Tenancy
	Resources resources.Set `json:"resources"`
}

// State is the tenancy orchestrator state. A nil Data map means the list
// has never been fetched.
type State struct {
	Fetching bool                     `json:"fetching"`
	Data     map[string]model.Tenancy `json:"data"`
	Current  *Current                 `json:"current"`
}

// CurrentID returns the id of the current tenancy, or "".
func (s State) CurrentID() string {
	if s.Current == nil {
		return ""
	}
	return s.Current.ID
}

// NewFetchList asks for the user's tenancies.
func NewFetchList() event.Event {
	return event.Event{
		Kind: FetchList,
		Request: &event.Request{
			Method:    http.MethodGet,
			Path:      listPath,
			OnSuccess: FetchListSucceeded,
			OnFailure: FetchListFailed,
		},
	}
}

// NewSwitch makes tenancyID current. An empty id clears the selection.
func NewSwitch(tenancyID string) event.Event {
	return event.Event{Kind: Switch, TenancyID: tenancyID}
}

// Reduce folds ev into s. Events concerning the current tenancy are
// forwarded to its resource caches; events for any other tenancy are stale
// and dropped.
func Reduce(s State, ev event.Event) State {
	switch ev.Kind {
	case FetchList:
		s.Fetching = true
		return s

	case FetchListSucceeded:
		s.Fetching = false
		var list []model.Tenancy
		if err := ev.Decode(&list); err != nil {
			logger := xglog.WithComponent("tenancy")
			logger.Warn().
				Err(err).
				Str(xglog.FieldEvent, "tenancy.decode_failed").
				Msg("ignoring undecodable tenancy list")
			return s
		}
		data := make(map[string]model.Tenancy, len(list))
		for _, t := range list {
			data[t.ID] = t
		}
		s.Data = data
		if s.Current != nil {
			if summary, ok := data[s.Current.ID]; ok {
				s.Current = &Current{Tenancy: summary, Resources: s.Current.Resources}
			}
		}
		return s

	case FetchListFailed:
		s.Fetching = false
		return s

	case Switch:
		return reduceSwitch(s, ev.TenancyID)

	case session.Terminated:
		return State{}
	}

	if s.Current == nil || ev.Tenancy() != s.Current.ID {
		return s
	}
	s.Current = &Current{Tenancy: s.Current.Tenancy, Resources: s.Current.Resources.Reduce(ev)}
	return s
}

func reduceSwitch(s State, id string) State {
	if id == "" {
		if s.Current == nil {
			return s
		}
		s.Current = nil
		return s
	}
	if s.Current != nil && s.Current.ID == id {
		return s
	}
	summary, ok := s.Data[id]
	if !ok {
		logger := xglog.WithComponent("tenancy")
		logger.Debug().
			Str(xglog.FieldEvent, "tenancy.switch_unknown").
			Str(xglog.FieldTenancyID, id).
			Msg("ignoring switch to unknown tenancy")
		return s
	}
	s.Current = &Current{Tenancy: summary}
	return s
}
