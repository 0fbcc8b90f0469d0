// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package notify

import (
	"context"
	"testing"

	"github.com/ManuGH/cloudportal/internal/event"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyDeduplicates(t *testing.T) {
	var s State
	s = Reduce(s, NewNotify("Upload failed", "danger"))
	s = Reduce(s, NewNotify("Upload failed", "danger"))

	want := State{{Message: "Upload failed", Context: "danger", Times: 2}}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("unexpected notifications (-want +got):\n%s", diff)
	}
}

func TestNotifyKeepsDistinctContexts(t *testing.T) {
	var s State
	s = Reduce(s, NewNotify("Upload failed", "danger"))
	s = Reduce(s, NewNotify("Upload failed", "info"))
	s = Reduce(s, NewNotify("Saved", "info"))

	want := State{
		{Message: "Upload failed", Context: "danger", Times: 1},
		{Message: "Upload failed", Context: "info", Times: 1},
		{Message: "Saved", Context: "info", Times: 1},
	}
	assert.Equal(t, want, s)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	before := Reduce(nil, NewNotify("a", "error"))
	after := Reduce(before, NewNotify("a", "error"))
	assert.Equal(t, 1, before[0].Times)
	assert.Equal(t, 2, after[0].Times)

	removed := Reduce(after, NewRemove(0))
	assert.Empty(t, removed)
	assert.Len(t, after, 1)
}

func TestRemove(t *testing.T) {
	s := State{{Message: "a", Context: "error", Times: 1}, {Message: "b", Context: "error", Times: 1}}

	got := Reduce(s, NewRemove(0))
	assert.Equal(t, State{{Message: "b", Context: "error", Times: 1}}, got)

	for _, idx := range []int{-1, 2, 10} {
		assert.Equal(t, s, Reduce(s, NewRemove(idx)), "index %d", idx)
	}
}

func TestClear(t *testing.T) {
	s := State{{Message: "a", Context: "error", Times: 3}}
	assert.Empty(t, Reduce(s, NewClear()))
	assert.Nil(t, Reduce(nil, NewClear()))
}

func TestEpicRaisesErrorNotifications(t *testing.T) {
	req := event.Event{Kind: "VOLUME/DELETE", Request: &event.Request{OnFailure: "VOLUME/DELETE_FAILED"}}

	var rec event.Recorder
	NewEpic().Handle(context.Background(), event.Failed(req, &event.APIError{Message: "Volume is attached", Status: 409}), &rec)
	require.Len(t, rec.Events(), 1)
	got := rec.Events()[0]
	assert.Equal(t, Notify, got.Kind)
	assert.Equal(t, Notification{Message: "Volume is attached", Context: ContextError}, got.Data)
}

func TestEpicSkipsSilentAndSuccessfulEvents(t *testing.T) {
	silent := event.Event{Kind: "CLUSTER/FETCH_LIST", Request: &event.Request{OnFailure: "CLUSTER/FETCH_LIST_FAILED", FailSilently: true}}

	var rec event.Recorder
	epic := NewEpic()
	epic.Handle(context.Background(), event.Failed(silent, &event.APIError{Message: "Not found", Status: 404}), &rec)
	epic.Handle(context.Background(), event.Event{Kind: "MACHINE/FETCH_LIST_SUCCEEDED"}, &rec)
	epic.Handle(context.Background(), NewNotify("x", ContextError), &rec)
	assert.Empty(t, rec.Events())
}

func TestEpicFallbackMessage(t *testing.T) {
	var rec event.Recorder
	NewEpic().Handle(context.Background(), event.Event{Kind: "X/FAILED", Error: true}, &rec)
	require.Len(t, rec.Events(), 1)
	assert.Equal(t, fallbackMessage, rec.Events()[0].Data.(Notification).Message)
}
