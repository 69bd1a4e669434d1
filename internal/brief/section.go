// Package brief splits generated brief text into titled sections and assembles
// sections back into the canonical flat text.
//
// A heading line is exactly one capitalized word followed by a colon ("Goals:").
// Multi-word headings such as "Budget Breakdown:" are deliberately not recognized:
// the generation prompt asks for single-word headings only.
package brief

import (
	"fmt"
	"regexp"
	"strings"
)

var headingRe = regexp.MustCompile(`^[A-Z][a-z]+:$`)

// Mode selects how section content whitespace is treated.
type Mode string

// Content modes.
const (
	// ModeTrimmed trims every content line, collapses runs of blank lines and trims
	// the assembled content. Parse(Assemble(s)) == s for normalized sections.
	ModeTrimmed Mode = "trimmed"

	// ModeRaw keeps every content line and its terminator exactly as received.
	ModeRaw Mode = "raw"
)

// ParseMode converts a configuration value into a Mode. Empty means ModeTrimmed.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeTrimmed:
		return ModeTrimmed, nil
	case ModeRaw:
		return ModeRaw, nil
	default:
		return "", fmt.Errorf("brief: unknown mode %q", s)
	}
}

// Section is a titled subdivision of a brief. Title keeps its trailing colon.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// IsHeading reports whether line starts a new section.
func IsHeading(line string) bool {
	return headingRe.MatchString(strings.TrimSpace(line))
}

// Parse splits text into sections in document order. Lines before the first
// heading have no section to belong to and are dropped. Text without any heading
// yields an empty, non-nil slice.
func Parse(text string, mode Mode) []Section {
	out := []Section{}
	if text == "" {
		return out
	}

	lines := strings.Split(text, "\n")
	if strings.HasSuffix(text, "\n") {
		lines = lines[:len(lines)-1]
	}

	var (
		title string
		body  strings.Builder
	)
	flush := func() {
		if title == "" {
			return
		}
		out = append(out, Section{Title: title, Content: Normalize(body.String(), mode)})
	}

	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if IsHeading(line) {
			flush()
			title = strings.TrimSpace(line)
			body.Reset()
			continue
		}
		if title == "" {
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()

	return out
}

// Normalize applies the content policy of mode to content. Edited and regenerated
// content goes through it so every stored section follows the same policy.
func Normalize(content string, mode Mode) string {
	if mode == ModeRaw {
		return content
	}
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		kept = append(kept, l)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
