// Package generator builds brief prompts from project form data and talks to the
// external text-generation model.
package generator

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultProjectType is used when a form arrives without a project type.
const DefaultProjectType = "design"

// Reference types.
const (
	ReferenceLink  = "link"
	ReferenceImage = "image"
)

// FormData is what the user tells us about the project.
type FormData struct {
	ProjectType     string       `json:"projectType" yaml:"projectType"`
	ProjectName     string       `json:"projectName" yaml:"projectName"`
	Goals           string       `json:"goals" yaml:"goals"`
	Deadline        string       `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	Budget          string       `json:"budget" yaml:"budget"`
	BudgetBreakdown []BudgetItem `json:"budgetBreakdown,omitempty" yaml:"budgetBreakdown,omitempty"`
	References      []Reference  `json:"references,omitempty" yaml:"references,omitempty"`
}

// Validate checks the fields the prompt cannot do without.
func (f FormData) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.ProjectName, validation.Required, validation.Length(1, 200)),
		validation.Field(&f.Goals, validation.Required),
		validation.Field(&f.Deadline, validation.Date("2006-01-02")),
		validation.Field(&f.BudgetBreakdown),
		validation.Field(&f.References),
	)
}

// WithDefaults fills in optional fields the original form never asked for.
func (f FormData) WithDefaults() FormData {
	if f.ProjectType == "" {
		f.ProjectType = DefaultProjectType
	}
	return f
}

// BudgetItem is one line of the budget breakdown.
type BudgetItem struct {
	Item   string `json:"item" yaml:"item"`
	Amount string `json:"amount" yaml:"amount"`
}

// Validate implements validation.Validatable. A fully blank row is the form's
// untouched default and passes; an amount needs an item name.
func (b BudgetItem) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Item, validation.When(strings.TrimSpace(b.Amount) != "", validation.Required)),
	)
}

// Reference is a link or image the brief should weave into its narrative.
// An image reference whose upload failed has an empty Value and is skipped.
type Reference struct {
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"`
}

// Validate implements validation.Validatable.
func (r Reference) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.In(ReferenceLink, ReferenceImage)),
	)
}
