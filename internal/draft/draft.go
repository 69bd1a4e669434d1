// Package draft holds the working copy of a brief between generation and publication.
package draft

import (
	"context"
	"fmt"
	"time"

	"github.com/bryanpdl/briefly/internal/apperr"
	"github.com/bryanpdl/briefly/internal/brief"
	"github.com/bryanpdl/briefly/internal/checksum"
	"github.com/bryanpdl/briefly/internal/generator"
)

// Draft is one editing session. Sections is always the parse of Text.
type Draft struct {
	ID        string             `json:"id"`
	Form      generator.FormData `json:"form"`
	Text      string             `json:"text"`
	Sections  []brief.Section    `json:"sections"`
	Mode      brief.Mode         `json:"mode"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// New creates a draft for freshly generated text.
func New(id string, form generator.FormData, text string, mode brief.Mode) *Draft {
	now := time.Now().UTC()
	d := &Draft{ID: id, Form: form, Mode: mode, CreatedAt: now, UpdatedAt: now}
	d.SetText(text)
	return d
}

// ETag identifies the current text for optimistic concurrency.
func (d *Draft) ETag() string {
	return checksum.Of(d.Text)
}

// SetText replaces the whole brief and re-derives its sections.
func (d *Draft) SetText(text string) {
	d.Text = text
	d.Sections = brief.Parse(text, d.Mode)
	d.UpdatedAt = time.Now().UTC()
}

// EditSection replaces the content of the section called title, leaving every other
// section as it was. The content is normalized with the draft's mode.
func (d *Draft) EditSection(title, content string) error {
	resolved, ok := brief.ResolveTitle(d.Sections, title)
	if !ok {
		return fmt.Errorf("%w: %q", apperr.ErrSectionNotFound, title)
	}
	next, _ := brief.Replace(d.Sections, resolved, brief.Normalize(content, d.Mode))
	// Sections stay authoritative: re-parsing the assembled text would grow the
	// trailing blank lines of raw-mode content on every edit.
	d.Sections = next
	d.Text = brief.Assemble(next)
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// Clone returns a deep copy safe to hand out of a store.
func (d *Draft) Clone() *Draft {
	c := *d
	c.Sections = append([]brief.Section(nil), d.Sections...)
	c.Form.BudgetBreakdown = append([]generator.BudgetItem(nil), d.Form.BudgetBreakdown...)
	c.Form.References = append([]generator.Reference(nil), d.Form.References...)
	return &c
}

// Store persists drafts. Update runs fn on the current draft and saves the result
// atomically with respect to other Update calls on the same store.
type Store interface {
	Create(ctx context.Context, d *Draft) error
	Load(ctx context.Context, id string) (*Draft, error)
	Update(ctx context.Context, id string, fn func(*Draft) error) (*Draft, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Draft, error)
}
