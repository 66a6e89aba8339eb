package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldError     = "error"

	FieldLocation = "location"
	FieldYear     = "year"
	FieldPeriod   = "period"
	FieldDocument = "document"
	FieldTab      = "tab"
	FieldRows     = "rows"
	FieldBackend  = "backend"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentNormalizer = "normalizer"
	ComponentSheets     = "sheets"
)
