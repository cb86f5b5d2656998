package logging

// Canonical field names for structured log entries.
const (
	FieldRunID     = "run_id"
	FieldComponent = "component"
	FieldEvent     = "event"
	FieldFile      = "file"
	FieldFormat    = "format"
	FieldStep      = "step"
	FieldKind      = "kind"
	FieldPath      = "path"
)
