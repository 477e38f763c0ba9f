// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package resilience provides error classification and bounded retry
// for the detector collaborator. The core pipeline never retries; any
// retry policy lives here, on the collaborator side.
package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// ErrorType classifies failures for retry decisions.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeTransient
	ErrorTypeTimeout
	ErrorTypePermanent
)

func (et ErrorType) String() string {
	switch et {
	case ErrorTypeTransient:
		return "Transient"
	case ErrorTypeTimeout:
		return "Timeout"
	case ErrorTypePermanent:
		return "Permanent"
	default:
		return "Unknown"
	}
}

// Classify maps an error to a retry class. Connection refusals and
// timeouts are worth retrying; context cancellation and everything
// else is not.
func Classify(err error) ErrorType {
	if err == nil {
		return ErrorTypeUnknown
	}
	if errors.Is(err, context.Canceled) {
		return ErrorTypePermanent
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorTypeTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return ErrorTypeTransient
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no such host") || strings.Contains(msg, "timeout") {
		return ErrorTypeTransient
	}
	return ErrorTypePermanent
}

// IsRetryable reports whether the error class should be retried.
func IsRetryable(err error) bool {
	switch Classify(err) {
	case ErrorTypeTransient, ErrorTypeTimeout:
		return true
	default:
		return false
	}
}
