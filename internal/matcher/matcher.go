// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package matcher runs the registry's deterministic patterns over text
// and produces raw candidate spans. It performs no validation and no
// conflict resolution; a single text position may legitimately yield
// candidates for several categories.
package matcher

import (
	"sort"
	"strings"

	"pii-redact/internal/categories"
	"pii-redact/internal/detector"
)

// Match scans text for every requested category that has registered
// patterns. Each pattern hit yields a candidate span with confidence
// 1.0. Output is sorted ascending by start offset; equal starts order
// longer spans first so downstream first-wins resolution prefers the
// most specific candidate.
func Match(text string, cats []categories.Category, tags map[categories.Category]string) []detector.Span {
	var spans []detector.Span

	for _, cat := range cats {
		def := categories.Lookup(cat)
		if len(def.Patterns) == 0 {
			continue
		}

		replacement := def.Tag
		if tag, ok := tags[cat]; ok {
			replacement = tag
		}

		if cat == categories.Name {
			spans = append(spans, matchNames(text, def, replacement)...)
			continue
		}

		for _, re := range def.Patterns {
			for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
				start, end := loc[0], loc[1]
				// Clue-anchored patterns capture the payload in group 1;
				// redact only that, not the label.
				if len(loc) >= 4 && loc[2] >= 0 {
					start, end = loc[2], loc[3]
				}
				spans = append(spans, detector.Span{
					Start:       start,
					End:         end,
					Text:        text[start:end],
					Category:    cat,
					Replacement: replacement,
					Confidence:  1.0,
				})
			}
		}
	}

	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})
	return spans
}

// matchNames expands each capitalized-token run into candidate windows
// of 2-4 tokens. A run like "Contact John Smith" produces windows the
// name validator can prune independently, so a rejected leading token
// does not sink the real name behind it. Longer windows sort first and
// win overlap resolution when they survive validation.
func matchNames(text string, def categories.Definition, replacement string) []detector.Span {
	var spans []detector.Span

	for _, loc := range def.Patterns[0].FindAllStringIndex(text, -1) {
		run := text[loc[0]:loc[1]]
		tokens := tokenizeRun(run, loc[0])

		for size := 4; size >= 2; size-- {
			for i := 0; i+size <= len(tokens); i++ {
				first, last := tokens[i], tokens[i+size-1]
				spans = append(spans, detector.Span{
					Start:       first.start,
					End:         last.end,
					Text:        text[first.start:last.end],
					Category:    categories.Name,
					Replacement: replacement,
					Confidence:  1.0,
				})
			}
		}
	}
	return spans
}

type runToken struct {
	start, end int
}

// tokenizeRun records absolute offsets for each whitespace-separated
// token in a matched run.
func tokenizeRun(run string, base int) []runToken {
	var tokens []runToken
	i := 0
	for i < len(run) {
		if run[i] == ' ' || run[i] == '\t' {
			i++
			continue
		}
		j := i
		for j < len(run) && run[j] != ' ' && run[j] != '\t' {
			j++
		}
		tokens = append(tokens, runToken{start: base + i, end: base + j})
		i = j
	}
	return tokens
}

// CountByCategory tallies spans per category.
func CountByCategory(spans []detector.Span) map[categories.Category]int {
	counts := make(map[categories.Category]int)
	for _, s := range spans {
		counts[s.Category]++
	}
	return counts
}

// TagFor resolves the replacement tag for a category, honoring
// per-request overrides.
func TagFor(cat categories.Category, tags map[categories.Category]string) string {
	if tag, ok := tags[cat]; ok {
		return tag
	}
	return cat.Tag()
}

// ContainsTag reports whether text already carries a bracketed
// redaction tag. Used to keep re-runs from re-tagging tag text.
func ContainsTag(text string) bool {
	return strings.Contains(text, "[REDACTED")
}
