package logger

// Standard field names for consistent structured logging across kagglemcp.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldRequestID = "request_id"

	// Components
	FieldComponent = "component"

	// Operations
	FieldOperation = "operation"
	FieldTool      = "tool"
	FieldResource  = "resource"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError     = "error"
	FieldErrorType = "error_type"

	// Counts and sizes
	FieldCount = "count"
	FieldSize  = "size"

	// Caching
	FieldCacheKey = "cache_key"
	FieldCacheHit = "cache_hit"

	// Domain
	FieldCompetition = "competition"
	FieldDataset     = "dataset"
	FieldModel       = "model"
	FieldPage        = "page"
	FieldPageSize    = "page_size"
	FieldPath        = "path"
	FieldFile        = "file"
)

// sensitiveParams are request parameter names that must never be logged.
var sensitiveParams = map[string]bool{
	"api_key":  true,
	"token":    true,
	"password": true,
	"key":      true,
}

// SafeParams returns a copy of params with sensitive entries removed,
// suitable for structured logging of tool invocations.
func SafeParams(params map[string]interface{}) map[string]interface{} {
	safe := make(map[string]interface{}, len(params))
	for k, v := range params {
		if sensitiveParams[k] {
			continue
		}
		safe[k] = v
	}
	return safe
}
