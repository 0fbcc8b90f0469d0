// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrUnauthorized = errors.New("portal: not authenticated")
	ErrForbidden    = errors.New("portal: access forbidden")
	ErrNotFound     = errors.New("portal: resource not found")
	ErrClient       = errors.New("portal: request rejected")
	ErrServer       = errors.New("portal: internal error (5xx)")
	ErrUnavailable  = errors.New("portal: host unreachable or transport failure")
	ErrTimeout      = errors.New("portal: request timed out")
)

// StatusError is returned for every failed call. Status is 0 when no
// response was received.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   []byte
	Err    error // Nested lower-level error (e.g. net.Error)
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("portal: %s %s", e.Method, e.Path)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s: HTTP %d", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the sentinel class and the nested cause.
func (e *StatusError) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *StatusError) sentinel() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status >= 500:
		return ErrServer
	case e.Status >= 400:
		return ErrClient
	case isTimeout(e.Err):
		return ErrTimeout
	default:
		return ErrUnavailable
	}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Classify returns a low-cardinality label for err, suitable for metrics.
func Classify(err error) string {
	var se *StatusError
	if !errors.As(err, &se) {
		if errors.Is(err, context.Canceled) {
			return "cancelled"
		}
		return "error"
	}
	switch {
	case se.Status >= 500:
		return "http_5xx"
	case se.Status >= 400:
		return "http_4xx"
	case errors.Is(se.Err, context.Canceled):
		return "cancelled"
	case isTimeout(se.Err):
		return "timeout"
	default:
		return "network"
	}
}
