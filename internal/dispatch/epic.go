// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package dispatch turns API request events into network calls and reports
// each outcome as exactly one success or failure event.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/ManuGH/cloudportal/internal/event"
	xglog "github.com/ManuGH/cloudportal/internal/log"
	"github.com/ManuGH/cloudportal/internal/metrics"
	"github.com/ManuGH/cloudportal/internal/telemetry"
	"github.com/ManuGH/cloudportal/internal/transport"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DefaultMaxInFlight bounds concurrent API calls so one slow list fetch
// cannot starve interactive requests.
const DefaultMaxInFlight = 2

// HeaderCSRF carries the CSRF token on mutating requests.
const HeaderCSRF = "X-CSRFToken"

// Transport performs one API call.
type Transport interface {
	Do(ctx context.Context, req transport.Request) (transport.Response, error)
}

// CookieSource reads client-side cookies.
type CookieSource interface {
	Cookie(name string) (string, bool)
}

// Config tunes the dispatch epic.
type Config struct {
	// MaxInFlight is the number of concurrent calls; <= 0 means
	// DefaultMaxInFlight.
	MaxInFlight int
	// RateLimit caps calls per second across all requests; 0 disables it.
	RateLimit float64
	// RateBurst is the token bucket size when RateLimit is set.
	RateBurst int
}

// Epic is the single chokepoint for network I/O.
type Epic struct {
	transport Transport
	cookies   CookieSource
	sem       *semaphore.Weighted
	limiter   *rate.Limiter
	tracer    trace.Tracer

	mu sync.Mutex
	// tail is closed once the most recently queued request has obtained a
	// slot or given up, so slots are granted in dispatch order.
	tail chan struct{}
	wg   sync.WaitGroup
}

// New creates a dispatch epic. cookies may be nil.
func New(t Transport, cookies CookieSource, cfg Config) *Epic {
	n := cfg.MaxInFlight
	if n <= 0 {
		n = DefaultMaxInFlight
	}
	e := &Epic{
		transport: t,
		cookies:   cookies,
		sem:       semaphore.NewWeighted(int64(n)),
		tracer:    telemetry.Tracer("github.com/ManuGH/cloudportal/internal/dispatch"),
	}
	if cfg.RateLimit > 0 {
		burst := max(cfg.RateBurst, 1)
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return e
}

// Handle starts the call for a request event and returns immediately. The
// terminal event is dispatched to d from another goroutine.
func (e *Epic) Handle(ctx context.Context, ev event.Event, d event.Dispatcher) {
	if !ev.IsRequest() {
		return
	}

	e.mu.Lock()
	prev := e.tail
	mine := make(chan struct{})
	e.tail = mine
	e.mu.Unlock()

	e.wg.Add(1)
	metrics.APIRequestsQueued.Inc()
	go e.run(ctx, ev, d, prev, mine)
}

// Wait blocks until every started request has emitted its terminal event.
func (e *Epic) Wait() {
	e.wg.Wait()
}

func (e *Epic) acquire(ctx context.Context, prev <-chan struct{}, mine chan<- struct{}) error {
	defer close(mine)
	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return e.sem.Acquire(ctx, 1)
}

func (e *Epic) run(ctx context.Context, ev event.Event, d event.Dispatcher, prev <-chan struct{}, mine chan<- struct{}) {
	defer e.wg.Done()

	req := ev.Request
	cid := uuid.NewString()
	ctx = xglog.ContextWithCorrelationID(ctx, cid)
	if tid := ev.Tenancy(); tid != "" {
		ctx = xglog.ContextWithTenancyID(ctx, tid)
	}
	logger := xglog.WithComponentFromContext(ctx, "dispatch")

	queued := time.Now()
	err := e.acquire(ctx, prev, mine)
	metrics.APIRequestsQueued.Dec()
	if err != nil {
		e.cancelled(ctx, ev, d)
		return
	}
	defer e.sem.Release(1)
	metrics.APIRequestQueueWait.Observe(time.Since(queued).Seconds())

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			e.cancelled(ctx, ev, d)
			return
		}
	}

	attrs := append(telemetry.RequestAttributes(string(ev.Kind), req.Method, req.Path, cid),
		telemetry.ScopeAttributes(ev.Tenancy(), ev.Item())...)
	ctx, span := e.tracer.Start(ctx, "portal.request "+string(ev.Kind), trace.WithAttributes(attrs...))
	defer span.End()

	metrics.APIRequestsInFlight.Inc()
	start := time.Now()
	resp, err := e.transport.Do(ctx, transport.Request{
		Method: req.Method,
		Path:   req.Path,
		Body:   req.Body,
		Header: e.headers(req),
	})
	elapsed := time.Since(start)
	metrics.APIRequestsInFlight.Dec()

	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			span.SetStatus(codes.Error, cancelledMessage)
			e.cancelled(ctx, ev, d)
			return
		}
		apiErr := DecodeError(err)
		class := transport.Classify(err)
		span.SetAttributes(telemetry.ErrorAttributes(class, apiErr.Status)...)
		span.SetStatus(codes.Error, apiErr.Message)
		metrics.RecordAPIRequest(string(ev.Kind), req.Method, metrics.OutcomeFailure, elapsed)

		logEv := logger.Warn()
		if req.FailSilently {
			logEv = logger.Debug()
		}
		logEv.
			Str(xglog.FieldEvent, "dispatch.failed").
			Str(xglog.FieldKind, string(ev.Kind)).
			Str(xglog.FieldMethod, req.Method).
			Str(xglog.FieldPath, req.Path).
			Int(xglog.FieldStatus, apiErr.Status).
			Str("error_class", class).
			Dur(xglog.FieldDuration, elapsed).
			Msg(apiErr.Message)

		d.Dispatch(event.Failed(ev, apiErr))
		return
	}

	span.SetAttributes(attribute.Int(telemetry.HTTPStatusCodeKey, resp.Status))
	metrics.RecordAPIRequest(string(ev.Kind), req.Method, metrics.OutcomeSuccess, elapsed)
	logger.Debug().
		Str(xglog.FieldEvent, "dispatch.succeeded").
		Str(xglog.FieldKind, string(ev.Kind)).
		Str(xglog.FieldMethod, req.Method).
		Str(xglog.FieldPath, req.Path).
		Int(xglog.FieldStatus, resp.Status).
		Dur(xglog.FieldDuration, elapsed).
		Msg("request succeeded")

	d.Dispatch(event.Succeeded(ev, payload(resp.Body)))
}

func (e *Epic) headers(req *event.Request) http.Header {
	if !req.Mutating() || e.cookies == nil {
		return nil
	}
	token, ok := e.cookies.Cookie(transport.CookieCSRF)
	if !ok || token == "" {
		return nil
	}
	h := http.Header{}
	h.Set(HeaderCSRF, token)
	return h
}

// cancelled emits the silent failure of a request that never completed.
// Shutdown still yields exactly one terminal event per request.
func (e *Epic) cancelled(ctx context.Context, ev event.Event, d event.Dispatcher) {
	metrics.RecordAPIRequest(string(ev.Kind), ev.Request.Method, metrics.OutcomeCancelled, 0)
	logger := xglog.WithComponentFromContext(ctx, "dispatch")
	logger.Debug().
		Str(xglog.FieldEvent, "dispatch.cancelled").
		Str(xglog.FieldKind, string(ev.Kind)).
		Msg(cancelledMessage)
	failed := event.Failed(ev, &event.APIError{Message: cancelledMessage})
	failed.Silent = true
	d.Dispatch(failed)
}

// payload keeps empty bodies (204 No Content) as nil so reducers treat them
// as "no item".
func payload(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	return body
}
