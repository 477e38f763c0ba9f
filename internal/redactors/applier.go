// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"regexp"
	"strings"

	"pii-redact/internal/detector"
)

// GenericTag replaces runs of adjacent duplicate tags. Two detectors
// tagging the same real-world entity with adjacent but distinct spans
// would otherwise leave visibly doubled redactions.
const GenericTag = "[REDACTED]"

var (
	// A run of two or more bracketed tags, possibly whitespace-separated.
	tagRunRe = regexp.MustCompile(`\[[A-Z][A-Z0-9_]*\](?:[ \t]*\[[A-Z][A-Z0-9_]*\])+`)

	// Horizontal whitespace squeezed around collapsed tags.
	spaceRunRe = regexp.MustCompile(`[ \t]{2,}`)
)

// Apply rewrites text by substituting every span in the set with its
// replacement tag. Spans are processed in descending start order so
// earlier offsets stay valid, then adjacent duplicate tags are
// collapsed.
func Apply(text string, ms detector.MatchSet) string {
	ms.SortDescending()

	out := text
	for _, s := range ms.Spans {
		if s.Start < 0 || s.End > len(out) || s.Start >= s.End {
			continue
		}
		out = out[:s.Start] + s.Replacement + out[s.End:]
	}
	return CollapseAdjacentTags(out)
}

// CollapseAdjacentTags folds runs of two or more adjacent bracketed
// tags into the generic marker and normalizes surrounding whitespace.
func CollapseAdjacentTags(text string) string {
	collapsed := tagRunRe.ReplaceAllString(text, GenericTag)
	if collapsed == text {
		return text
	}
	collapsed = spaceRunRe.ReplaceAllString(collapsed, " ")
	return strings.TrimRight(collapsed, " \t")
}
