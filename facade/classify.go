package facade

import (
	"fmt"
	"strings"

	"github.com/quantfold/kagglemcp/errors"
)

// Kind is the stable error taxonomy exposed to callers. Values appear as the
// error_type field of error envelopes.
type Kind string

const (
	KindValidation     Kind = "validation_error"
	KindAuthentication Kind = "authentication_error"
	KindPermission     Kind = "permission_error"
	KindNotFound       Kind = "not_found_error"
	KindRateLimit      Kind = "rate_limit_error"
	KindTimeout        Kind = "timeout_error"
	KindUnknown        Kind = "unknown_error"
)

const (
	msgAuthentication = "Authentication failed. Please check your Kaggle API credentials."
	msgPermission     = "Access denied. You may not have permission to access this resource."
	msgNotFound       = "Resource not found. Please check the competition/dataset ID."
	msgRateLimit      = "Rate limit exceeded. Please wait before making more requests."
	msgTimeout        = "Request timed out. Please try again later."
)

// Classify maps an upstream failure to a Kind and a user-facing message.
// Sentinel identity wins when present; otherwise the error text is matched
// with ClassifyText. Raw upstream text is only surfaced for KindUnknown.
func Classify(err error) (Kind, string) {
	switch {
	case errors.Is(err, errors.ErrUnauthorized):
		return KindAuthentication, msgAuthentication
	case errors.Is(err, errors.ErrForbidden):
		return KindPermission, msgPermission
	case errors.Is(err, errors.ErrNotFound):
		return KindNotFound, msgNotFound
	case errors.Is(err, errors.ErrRateLimited):
		return KindRateLimit, msgRateLimit
	case errors.Is(err, errors.ErrTimeout):
		return KindTimeout, msgTimeout
	}
	return ClassifyText(err.Error())
}

// ClassifyText maps upstream failure text to a Kind and a user-facing
// message. Matching is best-effort and order-sensitive: text containing
// both "404" and "timeout" classifies as not_found because that rule is
// checked first.
func ClassifyText(errText string) (Kind, string) {
	lower := strings.ToLower(errText)

	switch {
	case strings.Contains(errText, "401") || strings.Contains(errText, "Unauthorized"):
		return KindAuthentication, msgAuthentication
	case strings.Contains(errText, "403") || strings.Contains(errText, "Forbidden"):
		return KindPermission, msgPermission
	case strings.Contains(errText, "404") || strings.Contains(errText, "Not Found"):
		return KindNotFound, msgNotFound
	case strings.Contains(errText, "429") || strings.Contains(lower, "rate limit"):
		return KindRateLimit, msgRateLimit
	case strings.Contains(lower, "timeout"):
		return KindTimeout, msgTimeout
	default:
		return KindUnknown, fmt.Sprintf("An unexpected error occurred: %s", errText)
	}
}
