package slug_test

import (
	"testing"

	"dojo/internal/platform/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"Age Calculator":     "age-calculator",
		"  CSV -- Cleaner!! ": "csv-cleaner",
		"???":                "untitled",
	}
	for in, want := range cases {
		if got := slug.Make(in); got != want {
			t.Fatalf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNextAvailable(t *testing.T) {
	t.Parallel()
	taken := map[string]bool{"coin-flip": true, "coin-flip-2": true}
	got := slug.NextAvailable("coin-flip", func(s string) bool { return taken[s] })
	if got != "coin-flip-3" {
		t.Fatalf("expected coin-flip-3, got %s", got)
	}
	if got := slug.NextAvailable("fresh", func(string) bool { return false }); got != "fresh" {
		t.Fatalf("expected base slug, got %s", got)
	}
}
