package slug

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// MaxLength caps the length of a derived slug.
const MaxLength = 50

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// FromTitle derives a filesystem-safe name from a human-readable title.
// An empty title is replaced by a fresh UUID before slugging.
func FromTitle(title string) string {
	if title == "" {
		title = uuid.NewString()
	}
	s := sanitize(title)
	if s == "" {
		// titles made only of symbols would otherwise produce ".txt"
		s = sanitize(uuid.NewString())
	}
	return s
}

func sanitize(value string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(value), "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxLength {
		s = strings.TrimRight(s[:MaxLength], "-")
	}
	return s
}
