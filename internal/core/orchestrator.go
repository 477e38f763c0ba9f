// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package core drives the hybrid redaction pipeline: deterministic
// pattern matching merged with external detector output, followed by
// optional gap validation and a detector verification re-pass.
package core

import (
	"context"
	"fmt"
	"strings"

	"pii-redact/internal/categories"
	"pii-redact/internal/detector"
	"pii-redact/internal/gapcheck"
	"pii-redact/internal/matcher"
	"pii-redact/internal/observability"
	"pii-redact/internal/redactors"
	"pii-redact/internal/validators"
)

// Options configures orchestrator policy.
type Options struct {
	// MultiPass enables gap validation and the detector verification
	// re-pass after the initial redaction.
	MultiPass bool

	// AutoDetectAll expands every request to cover all supported
	// categories in addition to those requested.
	AutoDetectAll bool
}

// Request is one redaction job.
type Request struct {
	Text       string
	Categories []categories.Category
	CustomTags map[categories.Category]string
}

// Orchestrator owns pipeline policy. It is immutable after construction
// and shared across concurrent requests; every request runs its own
// sequential pipeline instance.
type Orchestrator struct {
	client   detector.Client // nil when the detector is disabled
	observer *observability.Observer
	opts     Options
}

// New builds an orchestrator. A nil client permanently degrades to
// deterministic-only operation.
func New(client detector.Client, observer *observability.Observer, opts Options) *Orchestrator {
	return &Orchestrator{client: client, observer: observer, opts: opts}
}

// Redact runs the full pipeline over the request text.
//
// Stages: SPLIT -> DETERMINISTIC_PASS -> DETECTOR_PASS -> MERGE ->
// APPLY -> GAP_VALIDATE -> DETECTOR_VERIFY. Detector failure at any
// stage downgrades that pass and is reported via the result's Degraded
// flag and DetectorStatus; it never fails the request.
func (o *Orchestrator) Redact(ctx context.Context, req Request) (result *detector.RedactionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = NewInternalError(fmt.Errorf("pipeline panic: %v", r))
		}
	}()

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	finish := o.observer.StartTiming("orchestrator", "redact")

	cats := req.Categories
	if o.opts.AutoDetectAll {
		cats = expandToAll(cats)
	}

	// SPLIT + DETERMINISTIC_PASS.
	deterministicCats, _ := categories.Split(cats)
	primary := validators.Filter(matcher.Match(req.Text, deterministicCats, req.CustomTags))

	// DETECTOR_PASS. The detector returns a wholesale rewritten string
	// with no offsets; spans synthesized from its tag occurrences live
	// in that rewritten coordinate space and only approximate original
	// positions.
	var secondary []detector.Span
	var detectorCounts map[categories.Category]int
	degraded := true
	status := "detector disabled"

	if o.client != nil {
		available, probeStatus := o.client.CheckAvailable(ctx)
		status = probeStatus
		if available {
			rewritten, rerr := o.client.Redact(ctx, req.Text, cats, req.CustomTags)
			if rerr != nil {
				status = "detector pass failed: " + rerr.Error()
			} else {
				degraded = false
				secondary = extractDetectorSpans(rewritten, cats, req.CustomTags)
				if counts, aerr := o.client.Analyze(ctx, req.Text, cats); aerr == nil {
					detectorCounts = counts
				}
			}
		}
	}

	// MERGE + APPLY. Deterministic spans always win overlaps.
	merged := redactors.Merge(primary, secondary)
	redacted := redactors.Apply(req.Text, merged)

	counts := mergeCounts(cats, deterministicCounts(merged), detectorCounts)

	// GAP_VALIDATE + DETECTOR_VERIFY.
	if o.opts.MultiPass {
		redacted = o.secondPass(ctx, req.Text, redacted, cats, req.CustomTags, degraded)
	}

	finish(true, map[string]interface{}{
		"categories": len(cats),
		"degraded":   degraded,
	})

	return &detector.RedactionResult{
		Original:       req.Text,
		Redacted:       redacted,
		Counts:         counts,
		Processed:      cats,
		Degraded:       degraded,
		DetectorStatus: status,
	}, nil
}

// secondPass applies high-confidence gap candidates and, when the gap
// validator changed anything and the detector is reachable, runs one
// verification re-invocation. On verification failure the gap-enhanced
// text is kept.
func (o *Orchestrator) secondPass(ctx context.Context, original, redacted string, cats []categories.Category, tags map[categories.Category]string, degraded bool) string {
	candidates := gapcheck.Validate(original, redacted)
	enhanced := gapcheck.ApplyCandidates(redacted, candidates, gapcheck.AutoApplyThreshold)
	if enhanced == redacted {
		return redacted
	}

	o.observer.Log(observability.Record{
		Component: "gap_validator",
		Operation: "enhance",
		Success:   true,
		SpanCount: len(candidates),
	})

	if o.client == nil || degraded {
		return enhanced
	}
	verified, err := o.client.Verify(ctx, enhanced, cats, tags)
	if err != nil || strings.TrimSpace(verified) == "" {
		return enhanced
	}
	return verified
}

// Analyze counts PII occurrences without rewriting. Deterministic and
// detector counts merge recall-favoring (max per category); gap
// candidates at or above the auto-apply threshold add to the tally.
func (o *Orchestrator) Analyze(ctx context.Context, text string, cats []categories.Category) (counts map[categories.Category]int, degraded bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			counts, err = nil, NewInternalError(fmt.Errorf("pipeline panic: %v", r))
		}
	}()

	if err := validateRequest(Request{Text: text, Categories: cats}); err != nil {
		return nil, false, err
	}

	deterministicCats, _ := categories.Split(cats)
	primary := validators.Filter(matcher.Match(text, deterministicCats, nil))
	merged := redactors.Merge(primary, nil)

	var detectorCounts map[categories.Category]int
	degraded = true
	if o.client != nil {
		if available, _ := o.client.CheckAvailable(ctx); available {
			if c, aerr := o.client.Analyze(ctx, text, cats); aerr == nil {
				detectorCounts = c
				degraded = false
			}
		}
	}

	counts = mergeCounts(cats, deterministicCounts(merged), detectorCounts)

	// Gap candidates only add to the tally outside ranges the
	// deterministic pass already claimed.
	claimed := make([]gapcheck.Range, 0, len(merged.Spans))
	for _, s := range merged.Spans {
		claimed = append(claimed, gapcheck.Range{Start: s.Start, End: s.End})
	}

	requested := make(map[categories.Category]bool, len(cats))
	for _, c := range cats {
		requested[c] = true
	}
	for _, cand := range gapcheck.Scan(text, claimed) {
		if cand.Confidence >= gapcheck.AutoApplyThreshold && requested[cand.Category] {
			counts[cand.Category]++
		}
	}
	return counts, degraded, nil
}

// validateRequest rejects malformed requests before processing.
func validateRequest(req Request) error {
	if strings.TrimSpace(req.Text) == "" {
		return NewValidationError("text must not be empty")
	}
	if len(req.Categories) == 0 {
		return NewValidationError("at least one category is required")
	}

	requested := make(map[categories.Category]bool, len(req.Categories))
	for _, c := range req.Categories {
		if c == categories.Unknown || c == categories.PossibleID {
			return NewValidationError("unknown category in request")
		}
		requested[c] = true
	}
	for c := range req.CustomTags {
		if !requested[c] {
			return NewValidationError("custom tag for %q provided but category not requested", c.String())
		}
	}
	return nil
}

// expandToAll unions the requested categories with every supported one,
// preserving request order.
func expandToAll(cats []categories.Category) []categories.Category {
	seen := make(map[categories.Category]bool, len(cats))
	out := make([]categories.Category, 0, len(cats))
	for _, c := range cats {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, c := range categories.All() {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// extractDetectorSpans synthesizes spans from tag occurrences in the
// detector's rewritten output. Confidence is below deterministic so the
// provenance stays visible.
func extractDetectorSpans(rewritten string, cats []categories.Category, tags map[categories.Category]string) []detector.Span {
	var spans []detector.Span
	for _, cat := range cats {
		tag := matcher.TagFor(cat, tags)
		for idx := 0; ; {
			pos := strings.Index(rewritten[idx:], tag)
			if pos < 0 {
				break
			}
			start := idx + pos
			spans = append(spans, detector.Span{
				Start:       start,
				End:         start + len(tag),
				Text:        rewritten[start : start+len(tag)],
				Category:    cat,
				Replacement: tag,
				Confidence:  0.9,
			})
			idx = start + len(tag)
		}
	}
	return spans
}

// deterministicCounts tallies the deterministic spans that survived
// merging, keyed by category.
func deterministicCounts(ms detector.MatchSet) map[categories.Category]int {
	counts := make(map[categories.Category]int)
	for _, s := range ms.Spans {
		if s.Confidence == 1.0 {
			counts[s.Category]++
		}
	}
	return counts
}

// mergeCounts is recall-favoring: the two detectors share no coordinate
// space, so the final count per category is the maximum either reported.
// Every requested category is present, zero-valued when nothing hit.
func mergeCounts(cats []categories.Category, deterministic, fromDetector map[categories.Category]int) map[categories.Category]int {
	counts := make(map[categories.Category]int, len(cats))
	for _, c := range cats {
		n := deterministic[c]
		if d, ok := fromDetector[c]; ok && d > n {
			n = d
		}
		counts[c] = n
	}
	return counts
}
