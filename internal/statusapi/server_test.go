// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package statusapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ManuGH/cloudportal/internal/event"
	"github.com/ManuGH/cloudportal/internal/health"
	"github.com/ManuGH/cloudportal/internal/model"
	"github.com/ManuGH/cloudportal/internal/notify"
	"github.com/ManuGH/cloudportal/internal/portal"
	"github.com/ManuGH/cloudportal/internal/session"
	"github.com/ManuGH/cloudportal/internal/tenancy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeCore struct {
	state portal.State
	event.Recorder
}

func (f *fakeCore) State() portal.State { return f.state }

func signedIn() portal.State {
	return portal.State{
		Session: session.State{Initialised: true, Username: "alice"},
		Notifications: notify.State{
			{Message: "Upload failed", Context: "danger", Times: 2},
			{Message: "boom", Context: notify.ContextError, Times: 1},
		},
		Tenancies: tenancy.State{
			Data:    map[string]model.Tenancy{"t1": {ID: "t1", Name: "Alpha"}},
			Current: &tenancy.Current{Tenancy: model.Tenancy{ID: "t1", Name: "Alpha"}},
		},
	}
}

func serve(t *testing.T, core Core, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	NewRouter(core, "test").ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(t, &fakeCore{state: signedIn()}, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))

	var h Health
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&h))
	assert.Equal(t, Health{Status: "ok", Session: "authenticated", User: "alice", Tenancy: "t1"}, h)
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "abc")
	rec := httptest.NewRecorder()
	NewRouter(&fakeCore{}, "test").ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(HeaderRequestID))
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name       string
		state      portal.State
		wantCode   int
		wantStatus health.Status
	}{
		{name: "uninitialised", wantCode: http.StatusServiceUnavailable, wantStatus: health.StatusUnhealthy},
		{name: "anonymous", state: portal.State{Session: session.State{Initialised: true}}, wantCode: http.StatusOK, wantStatus: health.StatusDegraded},
		{name: "signed in", state: signedIn(), wantCode: http.StatusOK, wantStatus: health.StatusHealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, &fakeCore{state: tt.state}, http.MethodGet, "/readyz")
			assert.Equal(t, tt.wantCode, rec.Code)

			var resp health.ReadinessResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, "test", resp.Version)
			assert.Contains(t, resp.Checks, "session")
			assert.Contains(t, resp.Checks, "tenancies")
		})
	}
}

func TestState(t *testing.T) {
	rec := serve(t, &fakeCore{state: signedIn()}, http.MethodGet, "/state")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Session struct {
			Username string `json:"username"`
		} `json:"session"`
		Tenancies struct {
			Current struct {
				ID string `json:"id"`
			} `json:"current"`
		} `json:"tenancies"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "alice", body.Session.Username)
	assert.Equal(t, "t1", body.Tenancies.Current.ID)
}

func TestCurrent(t *testing.T) {
	rec := serve(t, &fakeCore{}, http.MethodGet, "/state/current")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, &fakeCore{state: signedIn()}, http.MethodGet, "/state/current")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Alpha"`)
}

func TestNotifications(t *testing.T) {
	rec := serve(t, &fakeCore{}, http.MethodGet, "/notifications")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = serve(t, &fakeCore{state: signedIn()}, http.MethodGet, "/notifications")
	var list notify.State
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Equal(t, signedIn().Notifications, list)
}

func TestClearNotifications(t *testing.T) {
	core := &fakeCore{state: signedIn()}
	rec := serve(t, core, http.MethodDelete, "/notifications")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []event.Kind{notify.Clear}, core.Kinds())
}

func TestRemoveNotification(t *testing.T) {
	tests := []struct {
		name   string
		index  string
		status int
	}{
		{name: "valid", index: "1", status: http.StatusAccepted},
		{name: "out of range", index: "2", status: http.StatusNotFound},
		{name: "negative", index: "-1", status: http.StatusBadRequest},
		{name: "not a number", index: "x", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core := &fakeCore{state: signedIn()}
			rec := serve(t, core, http.MethodDelete, "/notifications/"+tt.index)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusAccepted {
				require.Len(t, core.Events(), 1)
				assert.Equal(t, notify.NewRemove(1), core.Events()[0])
			} else {
				assert.Empty(t, core.Events())
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	core := &fakeCore{}
	serve(t, core, http.MethodGet, "/healthz")
	rec := serve(t, core, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "portal_status_http_request_duration_seconds")
	assert.Contains(t, string(body), `route="/healthz"`)
}

type panicCore struct{ fakeCore }

func (*panicCore) State() portal.State { panic("boom") }

func TestPanicIsRecovered(t *testing.T) {
	rec := serve(t, &panicCore{}, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestServeStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", NewRouter(&fakeCore{}, "test")) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
