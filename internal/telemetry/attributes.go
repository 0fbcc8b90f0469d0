// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by every portal span.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"

	EventKindKey     = "portal.event.kind"
	CorrelationIDKey = "portal.correlation_id"
	TenancyIDKey     = "portal.tenancy_id"
	ItemIDKey        = "portal.item_id"
	FailSilentlyKey  = "portal.fail_silently"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// RequestAttributes describes one API request event.
func RequestAttributes(kind, method, path, correlationID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(EventKindKey, kind),
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, path),
		attribute.String(CorrelationIDKey, correlationID),
	}
}

// ScopeAttributes carries the tenancy and item a request concerns, omitting
// empty values.
func ScopeAttributes(tenancyID, itemID string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if tenancyID != "" {
		attrs = append(attrs, attribute.String(TenancyIDKey, tenancyID))
	}
	if itemID != "" {
		attrs = append(attrs, attribute.String(ItemIDKey, itemID))
	}
	return attrs
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(errorType string, status int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
		attribute.Int(HTTPStatusCodeKey, status),
	}
}
