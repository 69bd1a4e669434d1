package generator

import (
	"context"
	"strings"
)

// MockLLM returns canned, well-formed briefs without calling any model.
type MockLLM struct{}

func (MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	if prompt.Section != "" {
		name := strings.TrimSuffix(prompt.Section, ":")
		return "A fresh take on the " + strings.ToLower(name) + " for this project.", nil
	}

	var sb strings.Builder
	sb.WriteString("Introduction:\n")
	sb.WriteString("We are looking for a partner to help shape a new project from the ground up.\n\n")
	sb.WriteString("Goals:\n")
	sb.WriteString("- Deliver a clear, polished result\n- Keep the process collaborative\n\n")
	sb.WriteString("Timeline:\n")
	sb.WriteString("We would like to wrap up within the agreed deadline.\n\n")
	sb.WriteString("Budget:\n")
	sb.WriteString("The budget covers design and delivery.\n\n")
	sb.WriteString("References:\n")
	refs := referenceLines(prompt.User)
	if len(refs) == 0 {
		sb.WriteString("No references were provided.\n\n")
	} else {
		sb.WriteString(strings.Join(refs, "\n"))
		sb.WriteString("\n\n")
	}
	sb.WriteString("Conclusion:\n")
	sb.WriteString("Thanks for taking a look. We are excited to get started.")
	return sb.String(), nil
}

// referenceLines echoes the reference lines of a brief prompt back as brief content.
func referenceLines(user string) []string {
	var out []string
	for _, line := range strings.Split(user, "\n") {
		switch {
		case strings.HasPrefix(line, "Link: "):
			out = append(out, "Take a look at "+strings.TrimPrefix(line, "Link: "))
		case strings.HasPrefix(line, "Image: "):
			out = append(out, "This image sets the mood: "+strings.TrimPrefix(line, "Image: "))
		}
	}
	return out
}
