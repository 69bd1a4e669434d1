package brief

import "strings"

// Assemble serializes sections into the canonical flat text: each section is its
// title line followed by its content, and sections are separated by a blank line.
// Content is used as stored.
func Assemble(sections []Section) string {
	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = s.Title + "\n" + s.Content
	}
	return strings.Join(parts, "\n\n")
}

// Index returns the position of the first section whose title equals title, or -1.
func Index(sections []Section, title string) int {
	for i, s := range sections {
		if s.Title == title {
			return i
		}
	}
	return -1
}

// Replace returns a copy of sections with the content of the first section titled
// title swapped for content. The input slice is never modified.
func Replace(sections []Section, title, content string) ([]Section, bool) {
	i := Index(sections, title)
	if i < 0 {
		return sections, false
	}
	out := make([]Section, len(sections))
	copy(out, sections)
	out[i] = Section{Title: out[i].Title, Content: content}
	return out, true
}

// ResolveTitle maps a user-supplied section name to a stored title. "Goals" and
// "Goals:" both resolve to "Goals:" when that section exists.
func ResolveTitle(sections []Section, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if Index(sections, name) >= 0 {
		return name, true
	}
	if !strings.HasSuffix(name, ":") && Index(sections, name+":") >= 0 {
		return name + ":", true
	}
	return "", false
}

// Titles lists section titles in order.
func Titles(sections []Section) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.Title
	}
	return out
}
