// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package gapcheck is the second-pass validator. A prior pass may have
// returned a wholesale rewritten string with no offset information, so
// it first reconstructs which ranges of the new text are already
// redaction tags by aligning original and redacted text, then rescans
// the remainder for PII the first pass missed.
package gapcheck

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"pii-redact/internal/categories"
)

// Candidate is a potentially missed piece of PII found on the second
// pass. Only candidates at or above AutoApplyThreshold are ever applied
// automatically.
type Candidate struct {
	Category      categories.Category
	Text          string
	Start, End    int // offsets into the redacted text
	Confidence    float64
	Justification string
}

// AutoApplyThreshold gates automatic application of candidates.
const AutoApplyThreshold = 0.8

// Confidence levels per scan layer.
const (
	clueConfidence    = 0.8
	patternConfidence = 0.9
	idConfidence      = 0.6
)

// Stricter secondary patterns. Deliberately narrower than the primary
// registry set: they run over already-processed text where a false
// positive re-redacts something harmless, not something sensitive.
var validationPatterns = []struct {
	cat categories.Category
	re  *regexp.Regexp
}{
	{categories.Email, regexp.MustCompile(`\b[A-Za-z0-9._-]{2,}@[A-Za-z0-9.-]{2,}\.[A-Za-z]{2,}\b`)},
	{categories.Phone, regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)},
	{categories.SSN, regexp.MustCompile(`\b\d{3}[-.]?\d{2}[-.]?\d{4}\b`)},
	{categories.CreditCard, regexp.MustCompile(`\b(?:\d{4}[-\s]?){3}\d{4}\b`)},
	{categories.ZipCode, regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)},
	{categories.IPAddress, regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
	{categories.Date, regexp.MustCompile(`\b(?:0?[1-9]|1[0-2])[/-](?:0?[1-9]|[12]\d|3[01])[/-](?:19|20)?\d{2}\b`)},
}

// idTokenRe flags bare uppercase-alphanumeric tokens of suspicious
// length as possible identifiers.
var idTokenRe = regexp.MustCompile(`\b[A-Z0-9]{6,12}\b`)

// stoplist holds words that match the scans above but are never PII.
var stoplist = map[string]bool{
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
	"please": true, "thank": true, "thanks": true, "sincerely": true,
	"regards": true, "dear": true, "subject": true, "reference": true,
	"regarding": true, "hello": true,
	"company": true, "corporation": true, "incorporated": true,
	"department": true, "university": true, "college": true,
	"school": true, "hospital": true,
	"building": true, "street": true, "avenue": true, "boulevard": true,
	"product": true, "service": true, "model": true, "device": true,
	"system": true, "redacted": true,
}

// Range is a half-open [Start,End) byte range.
type Range struct {
	Start, End int
}

func (r Range) overlaps(start, end int) bool {
	return !(end <= r.Start || start >= r.End)
}

// AlignRedacted walks original and redacted text with two cursors,
// advancing both while characters match. A mismatch with the redacted
// cursor on '[' marks a tag start; the redacted cursor advances to and
// including the next ']' and the range is recorded. Any other mismatch
// consumes an original character, since a tag replaced more original
// text than the cursors have covered. After a tag the original cursor
// skips ahead until the texts resynchronize.
//
// This is heuristic resynchronization, not edit-distance alignment.
// Known limitation: a tag's literal text reoccurring in untouched
// content, or two redactions abutting with no separator, can misalign
// the recovered ranges.
func AlignRedacted(original, redacted string) []Range {
	var ranges []Range
	i, j := 0, 0
	for i < len(original) && j < len(redacted) {
		if original[i] == redacted[j] {
			i++
			j++
			continue
		}

		if redacted[j] != '[' {
			i++
			continue
		}

		tagStart := j
		for j < len(redacted) && redacted[j] != ']' {
			j++
		}
		if j < len(redacted) {
			j++ // include the closing bracket
		}
		ranges = append(ranges, Range{Start: tagStart, End: j})

		// Resynchronize the original cursor.
		for i < len(original) && (j >= len(redacted) || original[i] != redacted[j]) {
			i++
		}
	}
	return ranges
}

// Scan searches text for missed PII outside already-redacted ranges.
// Three layers: contextual clue phrases, stricter secondary patterns,
// and suspicious identifier-like tokens. Candidates come back sorted
// descending by start offset, ready for end-to-start application.
func Scan(text string, alreadyRedacted []Range) []Candidate {
	var out []Candidate
	lower := strings.ToLower(text)

	// Layer 1: contextual clues. The text from end-of-phrase to the
	// next newline is the candidate.
	for _, cat := range categories.All() {
		def := categories.Lookup(cat)
		for _, clue := range def.Clues {
			pos := strings.Index(lower, clue)
			if pos < 0 {
				continue
			}
			start := pos + len(clue)
			end := strings.IndexByte(text[start:], '\n')
			if end < 0 {
				end = len(text)
			} else {
				end += start
			}

			payload := strings.TrimSpace(text[start:end])
			if payload == "" || isTagText(payload) {
				continue
			}
			if overlapsAny(start, end, alreadyRedacted) {
				continue
			}
			out = append(out, Candidate{
				Category:      cat,
				Text:          payload,
				Start:         start,
				End:           end,
				Confidence:    clueConfidence,
				Justification: "found after contextual clue " + strconv.Quote(clue),
			})
		}
	}

	// Layer 2: stricter secondary patterns.
	for _, vp := range validationPatterns {
		for _, loc := range vp.re.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			if overlapsAny(start, end, alreadyRedacted) {
				continue
			}
			if stoplist[strings.ToLower(text[start:end])] {
				continue
			}
			out = append(out, Candidate{
				Category:      vp.cat,
				Text:          text[start:end],
				Start:         start,
				End:           end,
				Confidence:    patternConfidence,
				Justification: "matched secondary pattern for " + vp.cat.String(),
			})
		}
	}

	// Layer 3: suspicious identifier-shaped tokens, low confidence.
	for _, loc := range idTokenRe.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if overlapsAny(start, end, alreadyRedacted) {
			continue
		}
		if stoplist[strings.ToLower(text[start:end])] {
			continue
		}
		out = append(out, Candidate{
			Category:      categories.PossibleID,
			Text:          text[start:end],
			Start:         start,
			End:           end,
			Confidence:    idConfidence,
			Justification: "uppercase alphanumeric token of suspicious length",
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start > out[j].Start })
	return out
}

// Validate aligns the original/redacted pair and scans the redacted
// text for missed PII.
func Validate(original, redacted string) []Candidate {
	return Scan(redacted, AlignRedacted(original, redacted))
}

// ApplyCandidates substitutes every candidate at or above minConfidence
// with its category tag. Candidates arrive sorted descending by start,
// so substitution never shifts a pending offset; a candidate that
// overlaps one already applied is skipped.
func ApplyCandidates(text string, cands []Candidate, minConfidence float64) string {
	out := text
	var applied []Range
	for _, c := range cands {
		if c.Confidence < minConfidence {
			continue
		}
		if c.Start < 0 || c.End > len(text) || c.Start >= c.End {
			continue
		}
		if overlapsAny(c.Start, c.End, applied) {
			continue
		}
		out = out[:c.Start] + c.Category.Tag() + out[c.End:]
		applied = append(applied, Range{Start: c.Start, End: c.End})
	}
	return out
}

func overlapsAny(start, end int, ranges []Range) bool {
	for _, r := range ranges {
		if r.overlaps(start, end) {
			return true
		}
	}
	return false
}

// isTagText reports whether a clue payload is already a redaction tag.
func isTagText(s string) bool {
	return strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")
}
