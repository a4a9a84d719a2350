package remote

import (
	stderrors "errors"
	"strings"

	"github.com/c360/syndicate/errors"
)

// CKAN wraps every action error in an envelope carrying a "__type" marker and
// per-field message lists. The adapter translates those into the sentinel
// errors the reconciliation engine branches on, keeping a ValidationError's
// structured fields available for collision detection.

// ValidationError is a structured validation failure from the remote catalog.
type ValidationError struct {
	// Fields maps attribute names to their validation messages.
	Fields map[string][]string
	// Action is the remote action that failed.
	Action string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	for field, msgs := range e.Fields {
		parts = append(parts, field+": "+strings.Join(msgs, "; "))
	}
	return "remote validation failed on " + e.Action + ": " + strings.Join(parts, ", ")
}

// Unwrap lets errors.Is recognize a ValidationError as ErrRemoteValidation.
func (e *ValidationError) Unwrap() error {
	return errors.ErrRemoteValidation
}

// NameConflict reports whether the failure is the "name already in use"
// condition, inspected via the structured error field keyed by the name
// attribute.
func (e *ValidationError) NameConflict() bool {
	for _, msg := range e.Fields["name"] {
		if strings.Contains(msg, "already in use") {
			return true
		}
	}
	return false
}

// IsNameConflict reports whether err is a validation failure caused by a
// taken dataset name.
func IsNameConflict(err error) bool {
	var ve *ValidationError
	if !stderrors.As(err, &ve) {
		return false
	}
	return ve.NameConflict()
}

// AsValidationError extracts a ValidationError from an error chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := stderrors.As(err, &ve)
	return ve, ok
}
