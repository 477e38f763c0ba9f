// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package detector holds the core data model shared by the detection
// pipeline and the contract for the external generative-text detector.
package detector

import (
	"context"
	"errors"
	"sort"

	"pii-redact/internal/categories"
)

// Span is a located, categorized candidate redaction.
// Invariant: 0 <= Start < End <= len(text) for the text it was found in.
// Offsets are not portable across text transformations: detector-derived
// spans reference tag occurrences in the rewritten text, not verified
// original offsets.
type Span struct {
	Start       int
	End         int
	Text        string // source text covered by [Start,End)
	Category    categories.Category
	Replacement string  // tag substituted on apply
	Confidence  float64 // 1.0 for deterministic matches
}

// Overlaps reports whether the two spans' [Start,End) ranges intersect.
func (s Span) Overlaps(o Span) bool {
	return !(o.End <= s.Start || o.Start >= s.End)
}

// MatchSet is a conflict-free collection of spans ready for application.
// Invariant: no two spans overlap.
type MatchSet struct {
	Spans []Span
}

// Add appends the span if it does not overlap any accepted span.
// Returns whether the span was accepted.
func (ms *MatchSet) Add(s Span) bool {
	for _, existing := range ms.Spans {
		if existing.Overlaps(s) {
			return false
		}
	}
	ms.Spans = append(ms.Spans, s)
	return true
}

// SortDescending orders spans by descending start offset, the order
// required for offset-stable application.
func (ms *MatchSet) SortDescending() {
	sort.Slice(ms.Spans, func(i, j int) bool {
		return ms.Spans[i].Start > ms.Spans[j].Start
	})
}

// RedactionResult is the final outcome of a redaction request.
type RedactionResult struct {
	Original  string
	Redacted  string
	Counts    map[categories.Category]int
	Processed []categories.Category

	// Degraded is set when the external detector could not contribute
	// and only deterministic detection ran.
	Degraded       bool
	DetectorStatus string
}

// Client is the external generative-text detector contract. Every method
// may fail, time out, or return garbage; callers downgrade such failures
// instead of propagating them as fatal.
type Client interface {
	// CheckAvailable probes detector reachability.
	CheckAvailable(ctx context.Context) (bool, string)

	// Redact asks the detector to rewrite text with PII replaced by tags.
	Redact(ctx context.Context, text string, cats []categories.Category, tags map[categories.Category]string) (string, error)

	// Verify re-invokes the detector on already partially redacted text
	// with an explicit verification-only instruction.
	Verify(ctx context.Context, text string, cats []categories.Category, tags map[categories.Category]string) (string, error)

	// Analyze returns per-category occurrence counts without rewriting.
	Analyze(ctx context.Context, text string, cats []categories.Category) (map[categories.Category]int, error)
}

// ErrUnavailable indicates the detector could not be reached or timed
// out. ErrMalformed indicates it answered with an unparseable payload.
// Both downgrade the detector pass; neither aborts a request.
var (
	ErrUnavailable = errors.New("detector unavailable")
	ErrMalformed   = errors.New("malformed detector response")
)
