package registry

import (
	"fmt"

	"github.com/pkg/errors"
)

// ValidationError is returned when a run is configured with an id the
// registry does not know. The simulation is not started.
type ValidationError struct {
	Kind string
	ID   string
}

func newValidationError(kind, id string) *ValidationError {
	return &ValidationError{Kind: kind, ID: id}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.ID)
}

// IsValidation reports whether err, or the error it wraps, is a ValidationError.
func IsValidation(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// Invalid builds a ValidationError for configuration values that are not ids,
// such as a weather condition name.
func Invalid(kind, value string) error {
	return newValidationError(kind, value)
}
