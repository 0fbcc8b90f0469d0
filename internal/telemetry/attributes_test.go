// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestRequestAttributes(t *testing.T) {
	attrs := RequestAttributes("MACHINE/START", "POST", "/api/tenancies/t1/machines/m1/start/", "cid")
	assert.Equal(t, []attribute.KeyValue{
		attribute.String(EventKindKey, "MACHINE/START"),
		attribute.String(HTTPMethodKey, "POST"),
		attribute.String(HTTPRouteKey, "/api/tenancies/t1/machines/m1/start/"),
		attribute.String(CorrelationIDKey, "cid"),
	}, attrs)
}

func TestScopeAttributesOmitsEmpty(t *testing.T) {
	assert.Empty(t, ScopeAttributes("", ""))
	assert.Equal(t, []attribute.KeyValue{attribute.String(TenancyIDKey, "t1")}, ScopeAttributes("t1", ""))
	assert.Len(t, ScopeAttributes("t1", "m1"), 2)
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes("http_4xx", 404)
	assert.Contains(t, attrs, attribute.Bool(ErrorKey, true))
	assert.Contains(t, attrs, attribute.String(ErrorTypeKey, "http_4xx"))
	assert.Contains(t, attrs, attribute.Int(HTTPStatusCodeKey, 404))
}
