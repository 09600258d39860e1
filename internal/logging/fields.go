package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError = "error"
	FieldPath  = "path"
	FieldFiles = "files"
	FieldInput = "input"

	// Parse fields.
	FieldBytes       = "bytes"
	FieldNodes       = "nodes"
	FieldTokens      = "tokens"
	FieldDiagnostics = "diagnostics"
	FieldCheckpoints = "checkpoints"
	FieldBoundary    = "boundary"
	FieldDuration    = "duration"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
