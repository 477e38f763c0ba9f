// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import "fmt"

// ErrorKind classifies pipeline failures.
type ErrorKind int

const (
	// KindValidation marks a malformed request, rejected before any
	// processing.
	KindValidation ErrorKind = iota

	// KindInternal marks an unexpected pipeline failure, surfaced to
	// callers as a generic error without internal detail.
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInternal:
		return "internal"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is the pipeline's failure type. Detector unreachability and
// malformed detector responses are deliberately NOT errors: they
// downgrade the detector pass and surface as result metadata.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Kind.String() + " error: " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// NewValidationError builds a request-rejection error.
func NewValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewInternalError wraps an unexpected failure. The message is generic;
// the cause is kept only for logs.
func NewInternalError(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal processing error", cause: cause}
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == KindValidation
}
