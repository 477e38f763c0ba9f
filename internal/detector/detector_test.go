// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"testing"

	"pii-redact/internal/categories"
)

func TestSpanOverlaps(t *testing.T) {
	a := Span{Start: 10, End: 20}
	cases := []struct {
		b    Span
		want bool
	}{
		{Span{Start: 0, End: 10}, false},  // abuts left
		{Span{Start: 20, End: 30}, false}, // abuts right
		{Span{Start: 0, End: 11}, true},
		{Span{Start: 19, End: 25}, true},
		{Span{Start: 12, End: 15}, true}, // contained
		{Span{Start: 5, End: 30}, true},  // containing
	}
	for _, tc := range cases {
		if got := a.Overlaps(tc.b); got != tc.want {
			t.Errorf("Overlaps(%+v) = %v, want %v", tc.b, got, tc.want)
		}
		if got := tc.b.Overlaps(a); got != tc.want {
			t.Errorf("Overlaps not symmetric for %+v", tc.b)
		}
	}
}

func TestMatchSetAddRejectsOverlap(t *testing.T) {
	var ms MatchSet
	if !ms.Add(Span{Start: 0, End: 5, Category: categories.Email}) {
		t.Fatal("first span rejected")
	}
	if ms.Add(Span{Start: 3, End: 8, Category: categories.Phone}) {
		t.Error("overlapping span accepted")
	}
	if !ms.Add(Span{Start: 5, End: 8, Category: categories.Phone}) {
		t.Error("abutting span rejected")
	}
	if len(ms.Spans) != 2 {
		t.Errorf("span count = %d", len(ms.Spans))
	}
}

func TestMatchSetSortDescending(t *testing.T) {
	ms := MatchSet{Spans: []Span{
		{Start: 5, End: 8},
		{Start: 20, End: 25},
		{Start: 0, End: 3},
	}}
	ms.SortDescending()
	for i := 1; i < len(ms.Spans); i++ {
		if ms.Spans[i-1].Start < ms.Spans[i].Start {
			t.Fatalf("not descending: %+v", ms.Spans)
		}
	}
}
