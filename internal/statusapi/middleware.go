// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package statusapi

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	xglog "github.com/ManuGH/cloudportal/internal/log"
	"github.com/ManuGH/cloudportal/internal/metrics"
	"github.com/ManuGH/cloudportal/internal/telemetry"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// HeaderRequestID carries the correlation id of a status request.
const HeaderRequestID = "X-Request-ID"

// requestID adds a correlation id to every request, reusing the caller's.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(xglog.ContextWithCorrelationID(r.Context(), id)))
	})
}

// recoverer turns a handler panic into a 500 JSON response.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			buf := make([]byte, 8192)
			n := runtime.Stack(buf, false)
			logger := xglog.WithComponentFromContext(r.Context(), "statusapi")
			logger.Error().
				Str(xglog.FieldEvent, "panic.recovered").
				Str(xglog.FieldMethod, r.Method).
				Str(xglog.FieldPath, r.URL.Path).
				Interface("panic_value", rec).
				Str("stack_trace", string(buf[:n])).
				Msg("panic recovered in status handler")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":     "Internal server error",
				"requestId": xglog.CorrelationIDFromContext(r.Context()),
			})
		}()
		next.ServeHTTP(w, r)
	})
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// observe records latency metrics and a debug log line per request.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.StatusHTTPRequestsInFlight.Inc()
		defer metrics.StatusHTTPRequestsInFlight.Dec()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		route := routePattern(r)
		metrics.ObserveStatusRequest(r.Method, route, status, d)
		logger := xglog.WithComponentFromContext(r.Context(), "statusapi")
		logger.Debug().
			Str(xglog.FieldEvent, "status.request").
			Str(xglog.FieldMethod, r.Method).
			Str(xglog.FieldPath, route).
			Int(xglog.FieldStatus, status).
			Dur(xglog.FieldDuration, d).
			Msg("status request served")
	})
}

// tracing wraps each request in a server span, continuing the caller's
// trace context when present.
func tracing(next http.Handler) http.Handler {
	tracer := telemetry.Tracer("github.com/ManuGH/cloudportal/internal/statusapi")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		// The route is only known once chi has matched it.
		route := routePattern(r)
		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			attribute.String(telemetry.HTTPMethodKey, r.Method),
			attribute.String(telemetry.HTTPRouteKey, route),
			attribute.Int(telemetry.HTTPStatusCodeKey, ww.Status()),
		)
		if ww.Status() >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(ww.Status()))
		}
	})
}
