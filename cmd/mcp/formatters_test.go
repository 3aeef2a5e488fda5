package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/omarkov/insight-session/internal/core/domain"
)

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten chars!", 18, "exactly ten chars!"},
		{"abcdef", 3, "abc…"},
		// "é" is two bytes; cutting at 4 would split it.
		{"caféteria", 4, "caf…"},
		{"日本語のテキスト", 5, "日…"},
	}
	for _, tc := range tests {
		got := truncate(tc.s, tc.n)
		if got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.s, tc.n, got, tc.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8: %q", tc.s, tc.n, got)
		}
	}
}

func TestFormatCardsTruncatesLongSnippets(t *testing.T) {
	cards := []domain.Card{{
		ID:         "c1",
		Heading:    "Heading",
		Snippet:    strings.Repeat("héllo ", 60),
		SourcePage: 3,
	}}
	out := formatCards(cards)
	if !utf8.ValidString(out) {
		t.Fatalf("formatted output contains invalid UTF-8")
	}
	if !strings.Contains(out, "…") {
		t.Errorf("expected truncated snippet marker in output")
	}
}
