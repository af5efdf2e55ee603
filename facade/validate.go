package facade

import (
	"fmt"
	"strings"
)

// ValidationResult reports whether a parameter check passed and, when it did
// not, a caller-facing message.
type ValidationResult struct {
	Valid   bool
	Message string
}

func valid() ValidationResult {
	return ValidationResult{Valid: true}
}

func invalid(msg string) ValidationResult {
	return ValidationResult{Valid: false, Message: msg}
}

// ValidatePagination checks pagination bounds before any upstream call.
func ValidatePagination(page, pageSize, maxPageSize int) ValidationResult {
	if page < 1 {
		return invalid("Page number must be 1 or greater")
	}
	if pageSize < 1 {
		return invalid("Page size must be 1 or greater")
	}
	if pageSize > maxPageSize {
		return invalid(fmt.Sprintf("Page size cannot exceed %d", maxPageSize))
	}
	return valid()
}

// ValidateRef checks an "owner/name" reference string and extracts its
// parts. owner and name are empty unless the result is valid.
func ValidateRef(ref string) (owner, name string, res ValidationResult) {
	if ref == "" {
		return "", "", invalid("Dataset reference cannot be empty")
	}
	if !strings.Contains(ref, "/") {
		return "", "", invalid("Dataset reference must be in format 'username/dataset-name'")
	}

	parts := strings.Split(ref, "/")
	if len(parts) != 2 {
		return "", "", invalid("Dataset reference must contain exactly one '/' separator")
	}
	if parts[0] == "" || parts[1] == "" {
		return "", "", invalid("Both username and dataset name must be non-empty")
	}
	return parts[0], parts[1], valid()
}
