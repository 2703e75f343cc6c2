package billing

import (
	"errors"
	"fmt"
)

var ErrUnknownBranch = errors.New("unknown branch")

// ValidationError rejects malformed input before any state is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// PolicyViolation rejects an action that is well formed but not permitted by
// a business rule. Reason is shown to staff as-is.
type PolicyViolation struct {
	Reason string
}

func (e *PolicyViolation) Error() string {
	return e.Reason
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsPolicyViolation(err error) bool {
	var target *PolicyViolation
	return errors.As(err, &target)
}

func invalid(field string, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
