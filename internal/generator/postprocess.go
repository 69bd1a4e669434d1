package generator

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var (
	htmlTagRe = regexp.MustCompile(`(?i)<(p|br|div|h[1-6]|ul|ol|li|strong|em|b|i|a)(\s[^>]*)?/?>`)
	// Output that opens with a block element is an HTML document, not text with
	// a stray tag.
	htmlDocRe    = regexp.MustCompile(`(?i)^<(!doctype|html|body|p|div|h[1-6]|ul|ol|section|article|table)[\s>]`)
	listPrefixRe = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+`)
	// Headings that picked up markdown decoration during HTML conversion.
	decoratedHeadingRe = regexp.MustCompile(`^(?:#{1,6}\s+|\*\*)([A-Z][a-z]+:)(?:\*\*)?$`)
)

// Clean applies the output post-processing shared by both generation calls.
func Clean(raw string) string {
	text := strings.TrimSpace(raw)
	text = stripFence(text)
	switch {
	case htmlDocRe.MatchString(text):
		text = fromHTML(text)
	case htmlTagRe.MatchString(text):
		text = inlineFromHTML(text)
	}
	return strings.TrimSpace(text)
}

// CleanSection is Clean plus dropping a leading line that echoes the target heading.
func CleanSection(raw, title string) string {
	text := Clean(raw)
	first, rest, _ := strings.Cut(text, "\n")
	first = strings.TrimSpace(first)
	name := strings.TrimSuffix(title, ":")
	if first == name || first == name+":" {
		text = strings.TrimSpace(rest)
	}
	return text
}

func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}
	body := strings.TrimSuffix(text, "```")
	_, body, found := strings.Cut(body, "\n")
	if !found {
		return text
	}
	return strings.TrimSpace(body)
}

func fromHTML(text string) string {
	md, err := htmltomarkdown.ConvertString(text)
	if err != nil {
		return text
	}
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		if m := decoratedHeadingRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			lines[i] = m[1]
		}
	}
	return strings.Join(lines, "\n")
}

// inlineFromHTML converts tagged lines one at a time so the line structure, and
// with it every heading, survives.
func inlineFromHTML(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !htmlTagRe.MatchString(line) {
			continue
		}
		prefix := listPrefixRe.FindString(line)
		md, err := htmltomarkdown.ConvertString(line[len(prefix):])
		if err != nil || strings.TrimSpace(md) == "" {
			continue
		}
		lines[i] = prefix + strings.Join(strings.Fields(md), " ")
	}
	return strings.Join(lines, "\n")
}
