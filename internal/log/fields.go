// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldCorrelationID = "correlation_id"
	FieldTenancyID     = "tenancy_id"
	FieldItemID        = "item_id"
	FieldUsername      = "username"

	// Event stream fields
	FieldEvent     = "event"
	FieldKind      = "kind"
	FieldCausedBy  = "caused_by"
	FieldComponent = "component"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Request fields
	FieldMethod   = "method"
	FieldPath     = "path"
	FieldStatus   = "status"
	FieldBaseURL  = "base_url"
	FieldDuration = "duration"
)
