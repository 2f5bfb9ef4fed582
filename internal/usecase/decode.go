package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"ScriptProducer/internal/domain"
)

// DecodeResult is the outcome of turning agent text into scripts.
// On success Scripts holds one or more validated scripts; on failure Err
// wraps ErrMalformedScript and Raw keeps the text that could not be decoded.
type DecodeResult struct {
	Scripts []domain.Script
	Raw     string
	Err     error
}

// OK reports whether decoding produced usable scripts.
func (r DecodeResult) OK() bool {
	return r.Err == nil
}

// DecodeScripts parses a JSON object or array of scripts out of agent text.
// A single object and a one-element list decode to the same value.
func DecodeScripts(text string) DecodeResult {
	body := stripCodeFence(text)

	var scripts []domain.Script
	if strings.HasPrefix(body, "[") {
		if err := json.Unmarshal([]byte(body), &scripts); err != nil {
			return malformed(text, err)
		}
	} else {
		var single domain.Script
		if err := json.Unmarshal([]byte(body), &single); err != nil {
			return malformed(text, err)
		}
		scripts = []domain.Script{single}
	}

	if len(scripts) == 0 {
		return malformed(text, errors.New("no scripts in payload"))
	}

	for i := range scripts {
		if err := scripts[i].Validate(); err != nil {
			return malformed(text, fmt.Errorf("script %d: %w", i, err))
		}
		// media references only come from the pipeline's own steps
		scripts[i].AudioSrc = ""
		for j := range scripts[i].Segments {
			scripts[i].Segments[j].MediaSrc = ""
		}
	}

	return DecodeResult{Scripts: scripts, Raw: text}
}

func malformed(raw string, cause error) DecodeResult {
	return DecodeResult{Raw: raw, Err: fmt.Errorf("%w: %w", ErrMalformedScript, cause)}
}

// stripCodeFence drops a surrounding ``` fence added by chat models, along with
// any language tag on the opening line.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// the tag is whatever word follows the backticks: json, JSON, javascript...
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
	})
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
