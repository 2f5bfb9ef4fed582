package domain

import "fmt"

// Speaker is one of the voice identities a segment can be attributed to.
type Speaker string

const (
	SpeakerCody    Speaker = "Cody"
	SpeakerFelippe Speaker = "Felippe"
)

// Speakers lists every known voice identity in a stable order.
func Speakers() []Speaker {
	return []Speaker{SpeakerCody, SpeakerFelippe}
}

// Valid reports whether the speaker belongs to the closed set of voices.
func (s Speaker) Valid() bool {
	switch s {
	case SpeakerCody, SpeakerFelippe:
		return true
	default:
		return false
	}
}

// Segment is one spoken unit of narration.
type Segment struct {
	Speaker  Speaker `json:"speaker"`
	Text     string  `json:"text"`
	MediaSrc string  `json:"mediaSrc,omitempty"`
}

// Script is an ordered narration plus the artifacts attached to it.
type Script struct {
	Title    string    `json:"title"`
	Segments []Segment `json:"segments"`
	AudioSrc string    `json:"audioSrc,omitempty"`
}

// Validate checks the structural requirements of a decoded script.
func (s Script) Validate() error {
	if len(s.Segments) == 0 {
		return fmt.Errorf("script %q has no segments", s.Title)
	}
	for i, seg := range s.Segments {
		if !seg.Speaker.Valid() {
			return fmt.Errorf("segment %d: unknown speaker %q", i, seg.Speaker)
		}
		if isBlank(seg.Text) {
			return fmt.Errorf("segment %d: empty text", i)
		}
	}
	return nil
}

// Metadata accompanies a script when it is persisted.
type Metadata struct {
	Title       string
	Description string
	Hashtags    []string
	Tags        []string
}

// NewMetadata returns metadata carrying only the title; the rest are placeholders.
func NewMetadata(title string) Metadata {
	return Metadata{Title: title, Hashtags: []string{}, Tags: []string{}}
}

// Audio describes a synthesized narration file relative to the public directory.
type Audio struct {
	FileName string
	Duration float64
}

// SavedNotice summarizes a persisted script for operator channels.
type SavedNotice struct {
	Variant       string
	Title         string
	Segments      int
	Speakers      []Speaker
	AudioDuration float64
	Thumbnails    int
}

// NewSavedNotice lists speakers in order of first appearance.
func NewSavedNotice(variant string, script Script, audio Audio, thumbnails int) SavedNotice {
	seen := make(map[Speaker]bool, 2)
	speakers := []Speaker{}
	for _, seg := range script.Segments {
		if !seen[seg.Speaker] {
			seen[seg.Speaker] = true
			speakers = append(speakers, seg.Speaker)
		}
	}
	return SavedNotice{
		Variant:       variant,
		Title:         script.Title,
		Segments:      len(script.Segments),
		Speakers:      speakers,
		AudioDuration: audio.Duration,
		Thumbnails:    thumbnails,
	}
}

// Headline is a recently published item scanned from a news site.
type Headline struct {
	Title  string
	URL    string
	Source string
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
