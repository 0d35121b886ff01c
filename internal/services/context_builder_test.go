package services

import (
	"context"
	"strings"
	"testing"
)

func TestExtractSearchTerm(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"about trigger with punctuation", "can you tell me about pothole on Main St.", "pothole on main st"},
		{"about trigger plain", "can you tell me about pothole on Main St", "pothole on main st"},
		{"no trigger", "hello there", ""},
		{"find trigger", "find broken lights", "broken lights"},
		{"search for trigger", "please search for noise complaints", "noise complaints"},
		{"looking for trigger", "I'm looking for bin collection", "bin collection"},
		{"empty message", "", ""},
		{"trigger at end", "tell me about ", ""},
		{"question mark stripped", "what do you know about flooding?", "flooding"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractSearchTerm(tc.message); got != tc.want {
				t.Errorf("ExtractSearchTerm(%q) = %q, want %q", tc.message, got, tc.want)
			}
		})
	}
}

// Trigger phrases are tried in list priority order, not in the order they
// appear in the message. "about " outranks "find " even when "find " comes
// first in the text.
func TestExtractSearchTermListOrderWins(t *testing.T) {
	got := ExtractSearchTerm("find the report about noise")
	if got != "noise" {
		t.Errorf("ExtractSearchTerm = %q, want %q (list-order trigger priority)", got, "noise")
	}
}

func TestBuildContextSectionOrder(t *testing.T) {
	db := newTestDB(t)
	insertComplaints(t, db, standardFixtures())
	builder := NewContextBuilder(NewSafeDataService(db))

	prompt, err := builder.BuildContext(context.Background(), "tell me about pothole", testNow)
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}

	sections := []string{
		"SYSTEM DATABASE SCHEMA",
		"CURRENT SYSTEM STATISTICS",
		"FOUND COMPLAINTS MATCHING 'pothole'",
		"RULES:",
		"USER QUESTION: tell me about pothole",
	}
	last := -1
	for _, section := range sections {
		idx := strings.Index(prompt, section)
		if idx == -1 {
			t.Fatalf("prompt missing section %q\nprompt:\n%s", section, prompt)
		}
		if idx < last {
			t.Errorf("section %q out of order (index %d < previous %d)", section, idx, last)
		}
		last = idx
	}
}

func TestBuildContextNoTriggerNoSearchBlock(t *testing.T) {
	db := newTestDB(t)
	insertComplaints(t, db, standardFixtures())
	builder := NewContextBuilder(NewSafeDataService(db))

	prompt, err := builder.BuildContext(context.Background(), "hello there", testNow)
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}
	if strings.Contains(prompt, "FOUND COMPLAINTS MATCHING") {
		t.Error("prompt should not contain a search block when no trigger matches")
	}
}

func TestBuildContextNoHitsNoSearchBlock(t *testing.T) {
	db := newTestDB(t)
	insertComplaints(t, db, standardFixtures())
	builder := NewContextBuilder(NewSafeDataService(db))

	prompt, err := builder.BuildContext(context.Background(), "tell me about spaceships", testNow)
	if err != nil {
		t.Fatalf("BuildContext failed: %v", err)
	}
	if strings.Contains(prompt, "FOUND COMPLAINTS MATCHING") {
		t.Error("prompt should not contain a search block when the term has no hits")
	}
}

// Two builds at the same captured instant over the same data must be
// byte-identical.
func TestBuildContextIdempotent(t *testing.T) {
	db := newTestDB(t)
	insertComplaints(t, db, standardFixtures())
	builder := NewContextBuilder(NewSafeDataService(db))

	first, err := builder.BuildContext(context.Background(), "tell me about pothole", testNow)
	if err != nil {
		t.Fatalf("first BuildContext failed: %v", err)
	}
	second, err := builder.BuildContext(context.Background(), "tell me about pothole", testNow)
	if err != nil {
		t.Fatalf("second BuildContext failed: %v", err)
	}
	if first != second {
		t.Error("BuildContext is not deterministic for identical inputs and a fixed now")
	}
}

func TestBuildContextEmptyDatabase(t *testing.T) {
	db := newTestDB(t)
	builder := NewContextBuilder(NewSafeDataService(db))

	prompt, err := builder.BuildContext(context.Background(), "how many complaints are there?", testNow)
	if err != nil {
		t.Fatalf("BuildContext on empty database should succeed: %v", err)
	}
	if !strings.Contains(prompt, "- Total Complaints Reported: 0") {
		t.Error("prompt should report zero totals for an empty store")
	}
	// Empty sub-aggregates disappear rather than erroring.
	if strings.Contains(prompt, "Daily Breakdown") {
		t.Error("prompt should omit the daily breakdown section when empty")
	}
	if strings.Contains(prompt, "Complaints by Department") {
		t.Error("prompt should omit the department section when empty")
	}
}
