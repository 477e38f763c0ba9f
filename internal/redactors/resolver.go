// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package redactors merges span lists into a conflict-free plan and
// rewrites text by applying it.
package redactors

import (
	"sort"

	"pii-redact/internal/detector"
)

// Merge builds a MatchSet from deterministic (primary) and
// detector-derived (secondary) spans. Primary spans win every conflict:
// they are admitted first, in ascending start order with longer spans
// first, so overlapping candidates from two deterministic categories
// resolve to a single tag. Secondary spans are added only where they do
// not overlap anything already accepted. No confidence weighting is
// applied.
func Merge(primary, secondary []detector.Span) detector.MatchSet {
	ordered := make([]detector.Span, len(primary))
	copy(ordered, primary)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start < ordered[j].Start
		}
		return ordered[i].End > ordered[j].End
	})

	var ms detector.MatchSet
	for _, s := range ordered {
		ms.Add(s)
	}
	for _, s := range secondary {
		ms.Add(s)
	}
	return ms
}
