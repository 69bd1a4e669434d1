package generator

import (
	"fmt"
	"strings"
)

// Output budgets for the two kinds of generation call.
const (
	BriefMaxTokens   = 1000
	SectionMaxTokens = 500
)

// RequiredSections are the headings the brief prompt asks for, in order.
var RequiredSections = []string{"Introduction", "Goals", "Timeline", "Budget", "References", "Conclusion"}

// Prompt is what gets sent to the model.
type Prompt struct {
	System    string
	User      string
	MaxTokens int
	// Section is the target title for a section regeneration, empty for a full brief.
	Section string
}

// BuildBriefPrompt renders the full-brief prompt for form.
func BuildBriefPrompt(form FormData) Prompt {
	form = form.WithDefaults()

	deadline := form.Deadline
	if deadline == "" {
		deadline = "Not specified"
	}

	var sb strings.Builder
	sb.WriteString("Generate a professional and casual project brief based on the following input. ")
	sb.WriteString("Avoid referencing the project name directly in the brief. Instead, provide a high-level summary ")
	sb.WriteString("of the project's purpose and goals in a natural style. Keep the tone approachable and avoid overly ")
	sb.WriteString("formal or robotic phrases. Here is the provided information:\n")
	fmt.Fprintf(&sb, "Project Type: %s\n", form.ProjectType)
	fmt.Fprintf(&sb, "Project Name: %s\n", form.ProjectName)
	fmt.Fprintf(&sb, "Goals: %s\n", form.Goals)
	fmt.Fprintf(&sb, "Deadline: %s\n", deadline)
	fmt.Fprintf(&sb, "Budget: $%s\n", form.Budget)
	sb.WriteString("Budget Breakdown:\n")
	sb.WriteString(FormatBudgetBreakdown(form.BudgetBreakdown))
	sb.WriteString("\nReferences:\n")
	sb.WriteString(FormatReferences(form.References))
	sb.WriteString("\n\nPlease follow these guidelines:\n")
	for i, rule := range briefRules() {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, rule)
	}
	sb.WriteString("\nThe tone should be professional yet comfortable and conversational.")

	return Prompt{
		System:    "You write project briefs. Output only the brief text, no preamble.",
		User:      sb.String(),
		MaxTokens: BriefMaxTokens,
	}
}

func briefRules() []string {
	headings := make([]string, 0, len(RequiredSections)-1)
	for _, s := range RequiredSections[1:] {
		headings = append(headings, fmt.Sprintf("%q", s+":"))
	}
	return []string{
		"Write the brief as if the client is describing their project requirements and expectations. " +
			"Use clear language, avoid jargon, and explain any technical terms in simple words.",
		`Start with an "Introduction:" section that outlines the project's purpose and main goals.`,
		"Include separate sections for " + strings.Join(headings, ", ") + ".",
		"Format each main section with a single capitalized word followed by a colon, on its own line " +
			`(e.g., "Introduction:", "Goals:"). Do not put anything else on a heading line.`,
		"Exclude 'Project Type:' from the project overview, it is redundant.",
		"Organize lists of goals, budget items or requirements clearly.",
		"For image references, mention each image URL and describe how it relates to the project.",
		"IMPORTANT: All links in the brief MUST be formatted as [link text](URL). Do not use any other format for links.",
		"Discuss the budget and its breakdown in a way that feels natural to the narrative.",
		`Incorporate the provided references only in the "References:" section.`,
		"Conclude with a closing statement that summarizes the project's importance and the client's expectations.",
	}
}

// BuildSectionPrompt renders the prompt that regenerates one section of brief.
func BuildSectionPrompt(brief, title string) Prompt {
	name := strings.TrimSuffix(title, ":")
	user := fmt.Sprintf("Given the following project brief, please regenerate only the content for the %q section. "+
		"Maintain the overall tone and context of the brief, but provide an alternate perspective for this section "+
		"while keeping it professional and comfortable. Do not include the section title in your response. "+
		"Do not make the response significantly longer than the original section. Here's the current brief:\n\n"+
		"%s\n\nPlease provide only the regenerated content for the %q section, without the section title.",
		name, brief, name)
	return Prompt{
		System:    "You edit project briefs. Output only the requested section content.",
		User:      user,
		MaxTokens: SectionMaxTokens,
		Section:   title,
	}
}

// FormatBudgetBreakdown renders one "item: $amount" line per breakdown entry.
func FormatBudgetBreakdown(items []BudgetItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Item) == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: $%s", it.Item, it.Amount))
	}
	return strings.Join(lines, "\n")
}

// FormatReferences renders links as "Link: [url](url)" and images as "Image: url".
func FormatReferences(refs []Reference) string {
	lines := make([]string, 0, len(refs))
	for _, r := range refs {
		v := strings.TrimSpace(r.Value)
		if v == "" {
			continue
		}
		switch r.Type {
		case ReferenceLink:
			lines = append(lines, fmt.Sprintf("Link: [%s](%s)", v, v))
		case ReferenceImage:
			lines = append(lines, "Image: "+v)
		}
	}
	return strings.Join(lines, "\n")
}
