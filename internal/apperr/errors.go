// Package apperr defines the error taxonomy shared by every layer of the
// service. All rejections carry enough context (phase index, field name) for
// a caller to correct the input without trial and error.
package apperr

import (
	"errors"
	"fmt"
)

// NoPhase marks an error that is not tied to a particular phase.
const NoPhase = -1

// ValidationError reports malformed input: a missing required field, a
// weight outside [0,100], an empty required set.
type ValidationError struct {
	Field      string
	PhaseIndex int
	Reason     string
}

func (e *ValidationError) Error() string {
	if e.PhaseIndex != NoPhase {
		return fmt.Sprintf("invalid %s at phase %d: %s", e.Field, e.PhaseIndex, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validation returns a ValidationError not tied to a phase.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, PhaseIndex: NoPhase, Reason: reason}
}

// ValidationAt returns a ValidationError for a specific phase index.
func ValidationAt(phase int, field, reason string) error {
	return &ValidationError{Field: field, PhaseIndex: phase, Reason: reason}
}

// InvariantError reports a violation of a structural business rule: the
// candidate subset constraint between adjacent phases, or an attempt to
// empty the phase chain. The engine rejects these, it never repairs them.
type InvariantError struct {
	PhaseIndex int
	Reason     string
}

func (e *InvariantError) Error() string {
	if e.PhaseIndex != NoPhase {
		return fmt.Sprintf("invariant violation at phase %d: %s", e.PhaseIndex, e.Reason)
	}
	return "invariant violation: " + e.Reason
}

// Invariant returns an InvariantError for a specific phase index.
func Invariant(phase int, reason string) error {
	return &InvariantError{PhaseIndex: phase, Reason: reason}
}

// ForbiddenError reports an authorization failure. Terminal for the request.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Reason
}

// Forbidden returns a ForbiddenError.
func Forbidden(reason string) error {
	return &ForbiddenError{Reason: reason}
}

// NotFoundError reports an unknown job, candidate or workflow identifier.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NotFound returns a NotFoundError for the given entity kind and id.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// TransportError wraps a failure of an external collaborator: email send,
// directory lookup, persistence. The underlying cause is preserved.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Transport wraps err as a TransportError for operation op.
func Transport(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInvariant reports whether err is (or wraps) an InvariantError.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
