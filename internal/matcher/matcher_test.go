// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package matcher

import (
	"testing"

	"pii-redact/internal/categories"
)

func TestMatchSSN(t *testing.T) {
	text := "My SSN is 123-45-6789 thanks"
	spans := Match(text, []categories.Category{categories.SSN}, nil)
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	s := spans[0]
	if s.Text != "123-45-6789" {
		t.Errorf("span text = %q", s.Text)
	}
	if text[s.Start:s.End] != s.Text {
		t.Error("span offsets do not cover span text")
	}
	if s.Confidence != 1.0 {
		t.Errorf("deterministic span confidence = %v, want 1.0", s.Confidence)
	}
	if s.Replacement != "[REDACTED_SSN]" {
		t.Errorf("replacement = %q", s.Replacement)
	}
}

func TestMatchCustomTag(t *testing.T) {
	tags := map[categories.Category]string{categories.Email: "[EMAIL_GONE]"}
	spans := Match("mail me at a@b.com", []categories.Category{categories.Email}, tags)
	if len(spans) != 1 || spans[0].Replacement != "[EMAIL_GONE]" {
		t.Fatalf("custom tag not honored: %+v", spans)
	}
}

func TestMatchSkipsDetectorOnlyCategories(t *testing.T) {
	spans := Match("passport X1234567", []categories.Category{categories.Passport}, nil)
	if len(spans) != 0 {
		t.Errorf("detector-only category produced %d spans", len(spans))
	}
}

func TestMatchMultipleCategoriesRetained(t *testing.T) {
	// One position can carry candidates for several categories; the
	// matcher must not resolve conflicts itself.
	text := "zip 12345-6789 area"
	spans := Match(text, []categories.Category{categories.ZipCode, categories.SSN}, nil)
	got := CountByCategory(spans)
	if got[categories.ZipCode] == 0 {
		t.Error("zip candidate missing")
	}
}

func TestMatchSortedAscending(t *testing.T) {
	text := "a@b.com then 192.168.1.1 then c@d.org"
	spans := Match(text, []categories.Category{categories.IPAddress, categories.Email}, nil)
	for i := 1; i < len(spans); i++ {
		if spans[i-1].Start > spans[i].Start {
			t.Fatalf("spans not sorted ascending: %+v", spans)
		}
	}
}

func TestMatchNamesWindows(t *testing.T) {
	text := "Contact John Smith about the invoice"
	spans := Match(text, []categories.Category{categories.Name}, nil)

	var texts []string
	for _, s := range spans {
		texts = append(texts, s.Text)
	}

	// The full run plus every 2-token window must be present so the
	// validator can prune the leading label without losing the name.
	for _, want := range []string{"Contact John Smith", "Contact John", "John Smith"} {
		if !containsString(texts, want) {
			t.Errorf("missing window %q in %v", want, texts)
		}
	}
}

func TestMatchNamesEqualStartLongestFirst(t *testing.T) {
	spans := Match("Contact John Smith now", []categories.Category{categories.Name}, nil)
	for i := 1; i < len(spans); i++ {
		if spans[i-1].Start == spans[i].Start && spans[i-1].End < spans[i].End {
			t.Fatalf("equal-start spans must order longest first: %+v", spans)
		}
	}
}

func TestMatchClueAnchoredCaptureGroup(t *testing.T) {
	text := "Her credit score is 720 today"
	spans := Match(text, []categories.Category{categories.CreditScore}, nil)
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	// Only the payload is redacted, the label survives.
	if spans[0].Text != "720" {
		t.Errorf("span text = %q, want payload only", spans[0].Text)
	}
	if text[spans[0].Start:spans[0].End] != "720" {
		t.Error("capture group offsets wrong")
	}
}

func TestTagFor(t *testing.T) {
	if got := TagFor(categories.Phone, nil); got != "[REDACTED_PHONE]" {
		t.Errorf("TagFor default = %q", got)
	}
	tags := map[categories.Category]string{categories.Phone: "[P]"}
	if got := TagFor(categories.Phone, tags); got != "[P]" {
		t.Errorf("TagFor override = %q", got)
	}
}

func TestContainsTag(t *testing.T) {
	if !ContainsTag("x [REDACTED_NAME] y") {
		t.Error("tag not detected")
	}
	if ContainsTag("nothing here") {
		t.Error("false positive")
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
