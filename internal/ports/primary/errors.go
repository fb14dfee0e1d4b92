package primary

import (
	"errors"
	"fmt"
)

// Sentinel errors for genuinely exceptional conditions. Expected business
// denials (rate limits, duplicates, self/repeat verification) are returned
// as Decision values, never as errors.
var (
	// ErrNotFound indicates a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable indicates a transient storage failure.
	// Callers may retry with backoff; it is never a Conflict.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError reports malformed input. It is never auto-retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validationf builds a ValidationError for a field.
func Validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
