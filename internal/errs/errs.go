// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package errs defines the error taxonomy shared across costgate.
//
// Errors carry a Kind so callers can branch on the class of failure
// without string matching. Sandbox failures are sanitized before they
// reach this package; the generic message is all a caller ever sees.
package errs

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR KINDS
// =============================================================================

// Kind categorizes costgate errors for handling.
type Kind int

const (
	KindUnknown Kind = iota

	// KindValidation marks rejected input (allowlist, prompt cap).
	// A validation failure guarantees zero side effects occurred.
	KindValidation

	// KindExecutionTimeout marks a sandboxed run that exceeded its wait
	// bound and was terminated and reaped.
	KindExecutionTimeout

	// KindExecutionFailure marks a sandboxed run that failed for any other
	// reason. The message is generic; detail stays in internal logs.
	KindExecutionFailure

	// KindNotImplemented marks an operation the target provider does not
	// support, as opposed to one that was attempted and failed.
	KindNotImplemented

	// KindConfiguration marks a fatal construction-time error. It is never
	// raised after startup.
	KindConfiguration
)

// String returns the kind name for logs and CLI output.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindExecutionTimeout:
		return "execution_timeout"
	case KindExecutionFailure:
		return "execution_failure"
	case KindNotImplemented:
		return "not_implemented"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// =============================================================================
// ERROR TYPE
// =============================================================================

// Error is the concrete error type used across costgate packages.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "sandbox.execute"
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports kind equality so sentinel checks work through wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// =============================================================================
// SENTINELS
// =============================================================================

// Sentinel errors for errors.Is checks.
var (
	ErrValidation       = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrExecutionTimeout = &Error{Kind: KindExecutionTimeout, Message: "execution timed out"}
	ErrExecutionFailure = &Error{Kind: KindExecutionFailure, Message: "execution failed"}
	ErrNotImplemented   = &Error{Kind: KindNotImplemented, Message: "not implemented"}
	ErrConfiguration    = &Error{Kind: KindConfiguration, Message: "invalid configuration"}
)

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// Validation returns a validation error for the given operation.
func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Timeout returns an execution timeout error.
func Timeout(op string, cause error) *Error {
	return &Error{Kind: KindExecutionTimeout, Op: op, Message: "execution timed out", Cause: cause}
}

// ExecutionFailed returns a sanitized execution failure. The cause is NOT
// attached; callers receive only the generic message while the caller of
// this constructor is expected to have logged the detail internally.
func ExecutionFailed(op string) *Error {
	return &Error{Kind: KindExecutionFailure, Op: op, Message: "execution failed"}
}

// NotImplemented returns a not-implemented error for the given operation.
func NotImplemented(op, format string, args ...any) *Error {
	return &Error{Kind: KindNotImplemented, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Configuration returns a fatal configuration error.
func Configuration(op, format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an operation and kind to an underlying error.
func Wrap(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: kind.String(), Cause: cause}
}

// =============================================================================
// PREDICATES
// =============================================================================

// KindOf returns the kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsTimeout reports whether err is an execution timeout.
func IsTimeout(err error) bool { return KindOf(err) == KindExecutionTimeout }

// IsConfiguration reports whether err is a fatal configuration error.
func IsConfiguration(err error) bool { return KindOf(err) == KindConfiguration }
