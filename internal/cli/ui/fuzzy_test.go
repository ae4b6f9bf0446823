package ui

import (
	"reflect"
	"testing"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"dashboard", "dashboard", 0},
		{"dashbord", "dashboard", 1},
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"abc", "", 3},
		{"split", "single", 4},
	}
	for _, tt := range tests {
		if got := editDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("editDistance(%q, %q): got %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSuggest(t *testing.T) {
	presets := []string{"single", "split", "sidebar", "dashboard"}

	got := Suggest("dashbord", presets)
	if len(got) == 0 || got[0] != "dashboard" {
		t.Errorf("Suggest(dashbord): got %v", got)
	}

	if got := Suggest("zzzzzzzzzz", presets); len(got) != 0 {
		t.Errorf("expected no suggestions, got %v", got)
	}

	// Case-insensitive
	got = Suggest("SPLIT", presets)
	if !reflect.DeepEqual(got[:1], []string{"split"}) {
		t.Errorf("Suggest(SPLIT): got %v", got)
	}
}

func TestSuggest_CapsResults(t *testing.T) {
	candidates := []string{"aaa", "aab", "aba", "abb", "baa"}
	got := Suggest("aaa", candidates)
	if len(got) != 3 {
		t.Errorf("expected at most 3 suggestions, got %v", got)
	}
	if got[0] != "aaa" {
		t.Errorf("closest match first: got %v", got)
	}
}

func TestDidYouMean(t *testing.T) {
	hint := DidYouMean("dashbord", []string{"single", "dashboard"})
	if hint != `did you mean "dashboard"?` {
		t.Errorf("DidYouMean: got %q", hint)
	}

	if hint := DidYouMean("qqqqqqqq", []string{"single"}); hint != "" {
		t.Errorf("expected empty hint, got %q", hint)
	}
}
