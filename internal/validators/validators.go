// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package validators applies per-category heuristics to raw candidate
// spans, suppressing false positives before conflict resolution.
// Categories without a specific rule are accepted unconditionally.
package validators

import (
	"pii-redact/internal/categories"
	"pii-redact/internal/detector"
)

// Accept reports whether a raw candidate span should survive into
// conflict resolution.
func Accept(span detector.Span) bool {
	switch span.Category {
	case categories.Name:
		return validName(span.Text)
	case categories.CreditScore:
		return validCreditScore(span.Text)
	case categories.IPAddress:
		return validIPAddress(span.Text)
	case categories.Phone:
		return validPhone(span.Text)
	case categories.BankAccount:
		return validBankAccount(span.Text)
	default:
		return true
	}
}

// Filter returns the spans that pass validation.
func Filter(spans []detector.Span) []detector.Span {
	out := spans[:0:0]
	for _, s := range spans {
		if Accept(s) {
			out = append(out, s)
		}
	}
	return out
}
