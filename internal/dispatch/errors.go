// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ManuGH/cloudportal/internal/event"
	"github.com/ManuGH/cloudportal/internal/transport"
)

const (
	communicationError = "Error communicating with server"
	cancelledMessage   = "request cancelled"
)

// DecodeError converts a failed call into the APIError carried by the
// failure event. The message is, in order of preference, the body's detail
// field, the compact serialised body, or a generic communication error.
func DecodeError(err error) *event.APIError {
	var se *transport.StatusError
	if !errors.As(err, &se) {
		return &event.APIError{Message: communicationError}
	}
	return &event.APIError{Message: errorMessage(se.Status, se.Body), Status: se.Status}
}

func errorMessage(status int, body []byte) string {
	fallback := communicationError
	if status > 0 {
		fallback = fmt.Sprintf("%s (HTTP %d)", communicationError, status)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || !json.Valid(body) {
		return fallback
	}

	var obj map[string]json.RawMessage
	if json.Unmarshal(body, &obj) == nil {
		if detail, ok := obj["detail"]; ok {
			var s string
			if json.Unmarshal(detail, &s) == nil {
				return s
			}
			return compact(detail, fallback)
		}
	}
	return compact(body, fallback)
}

func compact(raw []byte, fallback string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return fallback
	}
	return buf.String()
}
