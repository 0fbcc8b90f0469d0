// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package statusapi serves the local ops endpoint: liveness, the cached
// state tree, the notification list and Prometheus metrics.
package statusapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ManuGH/cloudportal/internal/event"
	"github.com/ManuGH/cloudportal/internal/health"
	xglog "github.com/ManuGH/cloudportal/internal/log"
	"github.com/ManuGH/cloudportal/internal/notify"
	"github.com/ManuGH/cloudportal/internal/portal"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Core is the part of the portal the endpoint reads from and writes to.
type Core interface {
	State() portal.State
	Dispatch(ev event.Event)
}

// Health is the body of /healthz.
type Health struct {
	Status  string `json:"status"`
	Session string `json:"session"`
	User    string `json:"user,omitempty"`
	Tenancy string `json:"tenancy,omitempty"`
}

type handlers struct {
	core  Core
	ready *health.Manager
}

// NewRouter returns the status endpoint router. version is reported by
// /readyz.
func NewRouter(core Core, version string) chi.Router {
	h := &handlers{core: core, ready: readiness(core, version)}
	r := chi.NewRouter()
	r.Use(recoverer)
	r.Use(requestID)
	r.Use(tracing)
	r.Use(observe)

	r.Get("/healthz", h.health)
	r.Get("/readyz", h.readyz)
	r.Get("/state", h.state)
	r.Get("/state/current", h.current)
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.notifications)
		r.Delete("/", h.clearNotifications)
		r.Delete("/{index}", h.removeNotification)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	s := h.core.State()
	writeJSON(w, http.StatusOK, Health{
		Status:  "ok",
		Session: string(s.Session.Phase()),
		User:    s.Session.Username,
		Tenancy: s.Tenancies.CurrentID(),
	})
}

func (h *handlers) readyz(w http.ResponseWriter, r *http.Request) {
	resp := h.ready.Ready(r.Context())
	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.core.State())
}

func (h *handlers) current(w http.ResponseWriter, r *http.Request) {
	cur := h.core.State().Tenancies.Current
	if cur == nil {
		writeError(w, http.StatusNotFound, "no tenancy selected")
		return
	}
	writeJSON(w, http.StatusOK, cur)
}

func (h *handlers) notifications(w http.ResponseWriter, r *http.Request) {
	list := h.core.State().Notifications
	if list == nil {
		list = notify.State{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handlers) clearNotifications(w http.ResponseWriter, r *http.Request) {
	h.core.Dispatch(notify.NewClear())
	w.WriteHeader(http.StatusAccepted)
}

func (h *handlers) removeNotification(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || i < 0 {
		writeError(w, http.StatusBadRequest, "index must be a non-negative integer")
		return
	}
	if i >= len(h.core.State().Notifications) {
		writeError(w, http.StatusNotFound, "no such notification")
		return
	}
	h.core.Dispatch(notify.NewRemove(i))
	w.WriteHeader(http.StatusAccepted)
}

// Serve runs the status endpoint on addr until ctx is done, then shuts it
// down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	logger := xglog.WithComponent("statusapi")

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str(xglog.FieldEvent, "status.listening").Str("addr", addr).Msg("status endpoint listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
