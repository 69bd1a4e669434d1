// Package regen coordinates replacing one section of a draft with freshly generated
// content. Each brief has a single regeneration slot: a request for a brief that is
// already regenerating is rejected, never queued.
package regen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/bryanpdl/briefly/internal/apperr"
	"github.com/bryanpdl/briefly/internal/brief"
	"github.com/bryanpdl/briefly/internal/draft"
)

// Event types emitted to listeners.
const (
	EventRegenerating = "section.regenerating"
	EventRegenerated  = "section.regenerated"
	EventFailed       = "section.failed"
)

// SectionGenerator produces a new body for one section of a brief.
type SectionGenerator interface {
	RegenerateSection(ctx context.Context, brief, title string) (string, error)
}

// State is a brief's regeneration state. The zero value is Idle.
type State struct {
	Regenerating bool   `json:"regenerating"`
	Section      string `json:"section,omitempty"`
}

// Idle reports whether no regeneration is in flight.
func (s State) Idle() bool { return !s.Regenerating }

func (s State) String() string {
	if s.Idle() {
		return "idle"
	}
	return "regenerating(" + s.Section + ")"
}

// Event describes a state transition.
type Event struct {
	Type    string `json:"type"`
	BriefID string `json:"brief_id"`
	Section string `json:"section"`
	Error   string `json:"error,omitempty"`
}

// Coordinator owns the per-brief regeneration slots.
type Coordinator struct {
	gen    SectionGenerator
	drafts draft.Store
	logger *slog.Logger

	mu        sync.Mutex
	active    map[string]string // brief id -> section title
	listeners []func(Event)
}

// New creates a Coordinator writing results through drafts.
func New(gen SectionGenerator, drafts draft.Store, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		gen:    gen,
		drafts: drafts,
		logger: logger,
		active: make(map[string]string),
	}
}

// OnChange registers fn to be called on every state transition.
func (c *Coordinator) OnChange(fn func(Event)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// State returns the current state for brief id.
func (c *Coordinator) State(id string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	title, ok := c.active[id]
	if !ok {
		return State{}
	}
	return State{Regenerating: true, Section: title}
}

// Regenerate replaces the content of section title in draft id and returns the
// updated draft. Other sections are left exactly as they were. On any failure the
// draft is untouched and the brief returns to Idle.
func (c *Coordinator) Regenerate(ctx context.Context, id, title string) (*draft.Draft, error) {
	if err := c.acquire(id, title); err != nil {
		return nil, err
	}
	defer c.release(id)

	d, err := c.drafts.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	resolved, ok := brief.ResolveTitle(d.Sections, title)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperr.ErrSectionNotFound, title)
	}
	c.setTitle(id, resolved)
	c.emit(Event{Type: EventRegenerating, BriefID: id, Section: resolved})

	content, err := c.gen.RegenerateSection(ctx, d.Text, resolved)
	if err != nil {
		c.logger.Error("regeneration failed",
			slog.String("brief_id", id),
			slog.String("section", resolved),
			slog.String("error", err.Error()))
		c.emit(Event{Type: EventFailed, BriefID: id, Section: resolved, Error: err.Error()})
		if !errors.Is(err, apperr.ErrGeneration) {
			err = fmt.Errorf("%w: %w", apperr.ErrGeneration, err)
		}
		return nil, err
	}

	updated, err := c.drafts.Update(ctx, id, func(cur *draft.Draft) error {
		if brief.Index(cur.Sections, resolved) < 0 {
			return fmt.Errorf("%w: section %q was removed during regeneration", apperr.ErrDiscarded, resolved)
		}
		return cur.EditSection(resolved, content)
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			err = fmt.Errorf("%w: draft %s was closed during regeneration", apperr.ErrDiscarded, id)
		}
		c.logger.Warn("regeneration result discarded",
			slog.String("brief_id", id),
			slog.String("section", resolved),
			slog.String("error", err.Error()))
		c.emit(Event{Type: EventFailed, BriefID: id, Section: resolved, Error: err.Error()})
		return nil, err
	}

	c.logger.Info("section regenerated", slog.String("brief_id", id), slog.String("section", resolved))
	c.emit(Event{Type: EventRegenerated, BriefID: id, Section: resolved})
	return updated, nil
}

func (c *Coordinator) acquire(id, title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, busy := c.active[id]; busy {
		return fmt.Errorf("%w: brief %s is regenerating %q", apperr.ErrBusy, id, cur)
	}
	c.active[id] = title
	return nil
}

func (c *Coordinator) setTitle(id, title string) {
	c.mu.Lock()
	c.active[id] = title
	c.mu.Unlock()
}

func (c *Coordinator) release(id string) {
	c.mu.Lock()
	delete(c.active, id)
	c.mu.Unlock()
}

func (c *Coordinator) emit(ev Event) {
	c.mu.Lock()
	ls := slices.Clone(c.listeners)
	c.mu.Unlock()
	for _, fn := range ls {
		fn(ev)
	}
}
