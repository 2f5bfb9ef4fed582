package slug

import (
	"regexp"
	"strings"
	"testing"
)

var slugShape = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestFromTitle(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Black Holes Explained!":     "black-holes-explained",
		"  --Hello,   World--  ":     "hello-world",
		"Ação e Reação":              "a-o-e-rea-o",
		"GPT-5 vs. Claude: 2025":     "gpt-5-vs-claude-2025",
		"already-a-slug":             "already-a-slug",
		"UPPER_case__with__scores":   "upper-case-with-scores",
	}

	for title, want := range cases {
		if got := FromTitle(title); got != want {
			t.Fatalf("FromTitle(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestFromTitleShape(t *testing.T) {
	t.Parallel()

	titles := []string{
		"",
		"!!!",
		"  ",
		strings.Repeat("very long title ", 20),
		strings.Repeat("a", 49) + " b",
		"Notícias de hoje: o que mudou?",
		"日本語のタイトル",
	}

	for _, title := range titles {
		got := FromTitle(title)
		if got == "" {
			t.Fatalf("FromTitle(%q) returned empty slug", title)
		}
		if len(got) > MaxLength {
			t.Fatalf("FromTitle(%q) = %q exceeds %d chars", title, got, MaxLength)
		}
		if !slugShape.MatchString(got) {
			t.Fatalf("FromTitle(%q) = %q has invalid shape", title, got)
		}
	}
}

func TestFromTitleEmptyIsUnique(t *testing.T) {
	t.Parallel()

	first := FromTitle("")
	second := FromTitle("")
	if first == second {
		t.Fatalf("expected distinct slugs for empty titles, got %q twice", first)
	}
}
