// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package slice

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/ManuGH/cloudportal/internal/event"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

func newWidgets() *Definition[widget] {
	return New("WIDGET", "widgets",
		func(w widget) string { return w.ID },
		WithActive(func(w widget) bool { return w.Status == "BUSY" }),
		WithTransform(func(w widget) widget {
			w.Name = strings.TrimSpace(w.Name)
			return w
		}),
		WithAction[widget]("POKE", http.MethodPost, "poke/", FlagActionInProgress, true),
		WithAction[widget]("ATTACH", http.MethodPost, "things/", FlagAttachingVolume, false),
	)
}

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func succeed(t *testing.T, req event.Event, v any) event.Event {
	t.Helper()
	return event.Succeeded(req, payload(t, v))
}

func fail(req event.Event, status int) event.Event {
	return event.Failed(req, &event.APIError{Message: "boom", Status: status})
}

func reduceAll(d *Definition[widget], s State[widget], evs ...event.Event) State[widget] {
	for _, ev := range evs {
		s = d.Reduce(s, ev)
	}
	return s
}

func loaded(t *testing.T, d *Definition[widget], items ...widget) State[widget] {
	t.Helper()
	if items == nil {
		items = []widget{}
	}
	req := d.FetchList("t1")
	return reduceAll(d, State[widget]{}, req, succeed(t, req, items))
}

func TestKindsFollowPrefix(t *testing.T) {
	k := NewKinds("MACHINE")
	assert.Equal(t, event.Kind("MACHINE/FETCH_LIST"), k.FetchList)
	assert.Equal(t, event.Kind("MACHINE/FETCH_ONE_SUCCEEDED"), k.FetchOneSucceeded)
	assert.Equal(t, event.Kind("MACHINE/DELETE_FAILED"), k.DeleteFailed)
}

func TestRequestCreatorsBuildPathsAndCorrelation(t *testing.T) {
	d := newWidgets()

	list := d.FetchList("t1")
	require.True(t, list.IsRequest())
	assert.Equal(t, "/api/tenancies/t1/widgets/", list.Request.Path)
	assert.Equal(t, http.MethodGet, list.Request.Method)
	assert.Equal(t, d.Kinds().FetchListSucceeded, list.Request.OnSuccess)
	assert.Equal(t, d.Kinds().FetchListFailed, list.Request.OnFailure)
	assert.Equal(t, "t1", list.TenancyID)

	one := d.FetchOne("t1", "w1")
	assert.Equal(t, "/api/tenancies/t1/widgets/w1", one.Request.Path)
	assert.Equal(t, "w1", one.ItemID)

	del := d.Delete("t1", "w1")
	assert.Equal(t, http.MethodDelete, del.Request.Method)
	assert.Equal(t, "/api/tenancies/t1/widgets/w1/", del.Request.Path)

	upd := d.Update("t1", "w1", map[string]string{"machine_id": "m1"})
	assert.Equal(t, http.MethodPut, upd.Request.Method)
	assert.Equal(t, map[string]string{"machine_id": "m1"}, upd.Request.Body)

	act, ok := d.Act("ATTACH", "t1", "w1", nil, "v 1")
	require.True(t, ok)
	assert.Equal(t, "/api/tenancies/t1/widgets/w1/things/v%201/", act.Request.Path)
	assert.Equal(t, event.Kind("WIDGET/ATTACH_SUCCEEDED"), act.Request.OnSuccess)

	_, ok = d.Act("MISSING", "t1", "w1", nil)
	assert.False(t, ok)
}

func TestFetchListLifecycle(t *testing.T) {
	d := newWidgets()
	req := d.FetchList("t1")

	s := d.Reduce(State[widget]{}, req)
	assert.True(t, s.Fetching)
	assert.False(t, s.Loaded())

	s = d.Reduce(s, succeed(t, req, []widget{{ID: "a", Name: "  alpha "}}))
	assert.False(t, s.Fetching)
	require.True(t, s.Loaded())
	e, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "alpha", e.Item.Name, "transform applies on ingestion")
}

func TestFetchListThenEmptyListYieldsEmptyNotNil(t *testing.T) {
	d := newWidgets()
	req := d.FetchList("t1")
	s := reduceAll(d, State[widget]{},
		req, succeed(t, req, []widget{{ID: "a"}}),
		req, succeed(t, req, []widget{}),
	)
	require.NotNil(t, s.Data)
	assert.Empty(t, s.Data)
}

func TestFetchListFailurePreservesData(t *testing.T) {
	d := newWidgets()
	s := loaded(t, d, widget{ID: "a"})
	req := d.FetchList("t1")
	s = reduceAll(d, s, req, fail(req, http.StatusInternalServerError))
	assert.False(t, s.Fetching)
	assert.Equal(t, []string{"a"}, s.IDs())
}

func TestFetchListKeepsClientFlags(t *testing.T) {
	d := newWidgets()
	s := loaded(t, d, widget{ID: "a", Name: "old"}, widget{ID: "b"})
	s = d.Reduce(s, d.Update("t1", "a", nil))

	req := d.FetchList("t1")
	s = d.Reduce(s, succeed(t, req, []widget{{ID: "a", Name: "new"}, {ID: "c"}}))

	a, ok := s.Get("a")
	require.True(t, ok)
	assert.True(t, a.Flags.Updating, "in-flight update survives a concurrent list refresh")
	assert.Equal(t, "new", a.Item.Name)
	_, ok = s.Get("b")
	assert.False(t, ok, "list replaces data wholesale")
	c, _ := s.Get("c")
	assert.False(t, c.Flags.Any())
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	d := newWidgets()
	s := loaded(t, d, widget{ID: "a"})
	before := s

	upd := d.Update("t1", "ghost", nil)
	s = reduceAll(d, s, upd, succeed(t, upd, widget{ID: "ghost"}), fail(upd, http.StatusConflict))

	if diff := cmp.Diff(before, s); diff != "" {
		t.Fatalf("state changed for unknown id (-want +got):\n%s", diff)
	}
	_, ok := s.Get("ghost")
	assert.False(t, ok, "no phantom entry")
}

func TestUpdateLifecycle(t *testing.T) {
	d := newWidgets()
	s := loaded(t, d, widget{ID: "a", Name: "one"})
	upd := d.Update("t1", "a", map[string]string{"name": "two"})

	s = d.Reduce(s, upd)
	e, _ := s.Get("a")
	assert.True(t, e.Flags.Updating)

	s = d.Reduce(s, succeed(t, upd, widget{ID: "a", Name: "two"}))
	e, _ = s.Get("a")
	assert.False(t, e.Flags.Updating)
	assert.Equal(t, "two", e.Item.Name)

	s = reduceAll(d, s, upd, fail(upd, http.StatusBadRequest))
	e, _ = s.Get("a")
	assert.False(t, e.Flags.Updating)
	assert.Equal(t, "two", e.Item.Name)
}

func TestCreateThenDeleteLeavesEmpty(t *testing.T) {
	d := newWidgets()
	create := d.Create("t1", map[string]string{"name": "x"})

	s := d.Reduce(State[widget]{Data: map[string]Entry[widget]{}}, create)
	assert.True(t, s.Creating)
	s = d.Reduce(s, succeed(t, create, widget{ID: "x"}))
	assert.False(t, s.Creating)
	assert.Equal(t, []string{"x"}, s.IDs())

	del := d.Delete("t1", "x")
	s = d.Reduce(s, del)
	e, _ := s.Get("x")
	assert.True(t, e.Flags.Deleting)
	s = d.Reduce(s, succeed(t, del, nil))

	require.NotNil(t, s.Data)
	assert.Empty(t, s.Data)
}

func TestCreateFailedClearsCreatingOnly(t *testing.T) {
	d := newWidgets()
	s := loaded(t, d, widget{ID: "a"})
	create := d.Create("t1", nil)
	s = reduceAll(d, s, create, fail(create, http.StatusBadRequest))
	assert.False(t, s.Creating)
	assert.Equal(t, []string{"a"}, s.IDs())
}

func TestDeleteFailedClearsFlag(t *testing.T) {
	d := newWidgets()
	s := loaded(t, d, widget{ID: "a"})
	del := d.Delete("t1", "a")
	s = reduceAll(d, s, del, fail(del, http.StatusConflict))
	e, ok := s.Get("a")
	require.True(t, ok)
	assert.False(t, e.Flags.Deleting)
}

func TestFetchOneMergesKnownIgnoresUnknown(t *testing.T) {
	d := newWidgets()
	s := loaded(t, d, widget{ID: "a", Status: "BUSY"})
	s = d.Reduce(s, d.Delete("t1", "a"))

	one := d.FetchOne("t1", "a")
	s = d.Reduce(s, succeed(t, one, widget{ID: "a", Status: "IDLE"}))
	e, _ := s.Get("a")
	assert.Equal(t, "IDLE", e.Item.Status)
	assert.True(t, e.Flags.Deleting, "flags survive a single refresh")

	before := s
	ghost := d.FetchOne("t1", "gone")
	s = d.Reduce(s, succeed(t, ghost, widget{ID: "gone"}))
	assert.Equal(t, before, s)
}

func TestRefetchIsIdempotent(t *testing.T) {
	d := newWidgets()
	s := loaded(t, d, widget{ID: "a", Name: "x"})
	one := d.FetchOne("t1", "a")
	first := d.Reduce(s, succeed(t, one, widget{ID: "a", Name: "x"}))
	second := d.Reduce(first, succeed(t, one, widget{ID: "a", Name: "x"}))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("refetch changed state (-first +second):\n%s", diff)
	}
}

func TestActionsToggleFlags(t *testing.T) {
	d := newWidgets()
	s := loaded(t, d, widget{ID: "a", Status: "IDLE"})

	poke, _ := d.Act("POKE", "t1", "a", nil)
	s = d.Reduce(s, poke)
	e, _ := s.Get("a")
	assert.True(t, e.Flags.ActionInProgress)

	s = d.Reduce(s, succeed(t, poke, widget{ID: "a", Status: "BUSY"}))
	e, _ = s.Get("a")
	assert.False(t, e.Flags.ActionInProgress)
	assert.Equal(t, "BUSY", e.Item.Status, "merging action folds the response")

	attach, _ := d.Act("ATTACH", "t1", "a", map[string]int{"size": 10})
	s = d.Reduce(s, attach)
	e, _ = s.Get("a")
	assert.True(t, e.Flags.AttachingVolume)
	s = d.Reduce(s, succeed(t, attach, map[string]string{"id": "vol-1"}))
	e, _ = s.Get("a")
	assert.False(t, e.Flags.AttachingVolume)
	assert.Equal(t, "a", e.Item.ID, "non-merging action keeps the item")

	s = reduceAll(d, s, attach, fail(attach, http.StatusConflict))
	e, _ = s.Get("a")
	assert.False(t, e.Flags.AttachingVolume)
}

func TestForeignAndUndecodableEventsAreNoops(t *testing.T) {
	d := newWidgets()
	s := loaded(t, d, widget{ID: "a"})
	before := s

	s = d.Reduce(s, event.Event{Kind: "OTHER/FETCH_LIST_SUCCEEDED", Payload: json.RawMessage(`[]`)})
	assert.Equal(t, before, s)

	one := d.FetchOne("t1", "a")
	s = d.Reduce(s, event.Succeeded(one, json.RawMessage(`"not an object"`)))
	assert.Equal(t, before, s)

	list := d.FetchList("t1")
	s = reduceAll(d, s, list, event.Succeeded(list, json.RawMessage(`{`)))
	assert.False(t, s.Fetching)
	assert.Equal(t, before.Data, s.Data)
}

func TestReducerDoesNotMutatePreviousSnapshot(t *testing.T) {
	d := newWidgets()
	s := loaded(t, d, widget{ID: "a"})
	snapshot := s
	_ = d.Reduce(s, d.Update("t1", "a", nil))
	e, _ := snapshot.Get("a")
	assert.False(t, e.Flags.Updating)
}

func TestActiveHelpers(t *testing.T) {
	d := newWidgets()
	list := d.FetchList("t1")
	ev := succeed(t, list, []widget{{ID: "a", Status: "BUSY"}, {ID: "b"}, {ID: "c", Status: "BUSY"}})
	assert.Equal(t, []string{"a", "c"}, d.ActiveIDs(ev))

	one := d.FetchOne("t1", "a")
	id, active := d.ActiveItem(succeed(t, one, widget{ID: "a", Status: "IDLE"}))
	assert.Equal(t, "a", id)
	assert.False(t, active)

	assert.Equal(t, "z", d.PayloadID(succeed(t, one, widget{ID: "z"})))
	assert.Equal(t, "", d.PayloadID(event.Event{}))

	plain := New("PLAIN", "plain", func(w widget) string { return w.ID })
	assert.Nil(t, plain.ActiveIDs(ev))
}

func TestProbeFetchFailsSilently(t *testing.T) {
	d := New("PROBE", "probes", func(w widget) string { return w.ID }, AsProbe[widget]())
	assert.True(t, d.Probe())
	assert.True(t, d.FetchList("t1").Request.FailSilently)
	assert.False(t, newWidgets().FetchList("t1").Request.FailSilently)
}
