// Package domain holds the pieces shared by every aggregate: the
// command contract and the error taxonomy surfaced to callers.
package domain

import (
	"errors"
	"fmt"
)

// CommandErrorCode categorizes command rejections.
type CommandErrorCode string

const (
	// CodeValidation marks malformed input: empty text, too few
	// options, duplicate option ids. Never retried automatically.
	CodeValidation CommandErrorCode = "VALIDATION"

	// CodeInvariant marks a state-incompatible command: updating a
	// displayed question, double response without multi-allow,
	// ordering out of bounds.
	CodeInvariant CommandErrorCode = "INVARIANT"

	// CodeNotFound marks a command or query against an unknown
	// aggregate, group, or question.
	CodeNotFound CommandErrorCode = "NOT_FOUND"

	// CodeConflict marks an optimistic version mismatch on append.
	// Callers must re-read and retry.
	CodeConflict CommandErrorCode = "CONFLICT"
)

// CommandError is a command rejection with a stable code.
type CommandError struct {
	Code    CommandErrorCode
	Message string
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError creates a CommandError for malformed input.
func NewValidationError(format string, args ...any) *CommandError {
	return &CommandError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NewInvariantViolation creates a CommandError for a command the
// current state cannot accept.
func NewInvariantViolation(format string, args ...any) *CommandError {
	return &CommandError{Code: CodeInvariant, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError creates a CommandError for an unknown target.
func NewNotFoundError(format string, args ...any) *CommandError {
	return &CommandError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewConflictError creates a CommandError for a version mismatch.
func NewConflictError(format string, args ...any) *CommandError {
	return &CommandError{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// codeIs reports whether err is a CommandError with the given code.
// Uses errors.As to handle wrapped errors.
func codeIs(err error, code CommandErrorCode) bool {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// IsValidation reports whether err is a validation rejection.
func IsValidation(err error) bool { return codeIs(err, CodeValidation) }

// IsInvariantViolation reports whether err is an invariant rejection.
func IsInvariantViolation(err error) bool { return codeIs(err, CodeInvariant) }

// IsNotFound reports whether err is a not-found rejection.
func IsNotFound(err error) bool { return codeIs(err, CodeNotFound) }

// IsConflict reports whether err is an optimistic-concurrency conflict.
func IsConflict(err error) bool { return codeIs(err, CodeConflict) }
