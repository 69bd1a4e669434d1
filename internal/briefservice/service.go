// Package briefservice runs the brief workflow: generate a draft, edit and
// regenerate it, then export, share or publish it.
package briefservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanpdl/briefly/internal/apperr"
	"github.com/bryanpdl/briefly/internal/brief"
	"github.com/bryanpdl/briefly/internal/checksum"
	"github.com/bryanpdl/briefly/internal/draft"
	"github.com/bryanpdl/briefly/internal/export"
	"github.com/bryanpdl/briefly/internal/generator"
	"github.com/bryanpdl/briefly/internal/identity"
	"github.com/bryanpdl/briefly/internal/inline"
	"github.com/bryanpdl/briefly/internal/publication"
	"github.com/bryanpdl/briefly/internal/regen"
	"github.com/bryanpdl/briefly/internal/sse"
)

// PublishedPathPrefix is where published briefs are readable without auth.
const PublishedPathPrefix = "/api/published/"

// BriefGenerator produces a brief from form data.
type BriefGenerator interface {
	Generate(ctx context.Context, form generator.FormData) (string, error)
}

// Notifier receives events for connected clients.
type Notifier interface {
	Publish(event sse.Event)
	PublishBriefEvent(kind, id string)
}

// Deps are the collaborators a Service is built from. Notifier and Logger are optional.
type Deps struct {
	Generator     BriefGenerator
	Coordinator   *regen.Coordinator
	Drafts        draft.Store
	Publications  publication.Store
	Notifier      Notifier
	Logger        *slog.Logger
	Mode          brief.Mode
	PublicBaseURL string
}

// Service coordinates drafts, generation, regeneration and publication.
type Service struct {
	gen     BriefGenerator
	coord   *regen.Coordinator
	drafts  draft.Store
	pubs    publication.Store
	notify  Notifier
	logger  *slog.Logger
	mode    brief.Mode
	baseURL string
}

// BriefDetail is a draft plus its regeneration state.
type BriefDetail struct {
	ID        string             `json:"id"`
	Form      generator.FormData `json:"form"`
	Text      string             `json:"text"`
	Sections  []brief.Section    `json:"sections"`
	ETag      string             `json:"etag"`
	State     regen.State        `json:"state"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// BriefListItem is a lightweight item in a draft listing.
type BriefListItem struct {
	ID          string    `json:"id"`
	ProjectName string    `json:"project_name"`
	Titles      []string  `json:"titles"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PublishResult is returned after publishing a draft.
type PublishResult struct {
	Slug string `json:"slug"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

// PublishedView is the public rendering of a published brief.
type PublishedView struct {
	Slug        string                   `json:"slug"`
	ProjectName string                   `json:"project_name"`
	ProjectType string                   `json:"project_type"`
	Sections    []inline.RenderedSection `json:"sections"`
	PoweredBy   bool                     `json:"powered_by"`
	CreatedAt   time.Time                `json:"created_at"`
}

// New creates a Service and subscribes it to regeneration events.
func New(d Deps) (*Service, error) {
	if d.Generator == nil || d.Coordinator == nil || d.Drafts == nil || d.Publications == nil {
		return nil, errors.New("briefservice: generator, coordinator, drafts and publications are required")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Mode == "" {
		d.Mode = brief.ModeTrimmed
	}
	s := &Service{
		gen:     d.Generator,
		coord:   d.Coordinator,
		drafts:  d.Drafts,
		pubs:    d.Publications,
		notify:  d.Notifier,
		logger:  d.Logger,
		mode:    d.Mode,
		baseURL: strings.TrimRight(d.PublicBaseURL, "/"),
	}
	s.coord.OnChange(s.onRegen)
	return s, nil
}

// Mode returns the section content mode drafts are created with.
func (s *Service) Mode() brief.Mode { return s.mode }

// Generate asks the model for a brief and opens a draft for it.
func (s *Service) Generate(ctx context.Context, form generator.FormData) (*BriefDetail, error) {
	form = form.WithDefaults()
	text, err := s.gen.Generate(ctx, form)
	if err != nil {
		return nil, err
	}
	d := draft.New(uuid.NewString(), form, text, s.mode)
	if err := s.drafts.Create(ctx, d); err != nil {
		return nil, err
	}
	s.logger.Info("draft created", slog.String("brief_id", d.ID), slog.Int("sections", len(d.Sections)))
	s.briefEvent("created", d.ID)
	return s.detail(d), nil
}

// Get returns a draft.
func (s *Service) Get(ctx context.Context, id string) (*BriefDetail, error) {
	d, err := s.drafts.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(d), nil
}

// List returns every open draft, newest first.
func (s *Service) List(ctx context.Context) ([]BriefListItem, error) {
	ds, err := s.drafts.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]BriefListItem, len(ds))
	for i, d := range ds {
		out[i] = BriefListItem{
			ID:          d.ID,
			ProjectName: d.Form.ProjectName,
			Titles:      brief.Titles(d.Sections),
			UpdatedAt:   d.UpdatedAt,
		}
	}
	return out, nil
}

// UpdateText replaces the whole brief. A non-empty ifMatch must equal the
// current ETag.
func (s *Service) UpdateText(ctx context.Context, id, text, ifMatch string) (*BriefDetail, error) {
	d, err := s.drafts.Update(ctx, id, func(cur *draft.Draft) error {
		if !checksum.Matches(ifMatch, cur.Text) {
			return fmt.Errorf("draft %s changed since %s: %w", id, ifMatch, apperr.ErrConflict)
		}
		cur.SetText(text)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.briefEvent("updated", id)
	return s.detail(d), nil
}

// EditSection replaces one section's content.
func (s *Service) EditSection(ctx context.Context, id, title, content, ifMatch string) (*BriefDetail, error) {
	d, err := s.drafts.Update(ctx, id, func(cur *draft.Draft) error {
		if !checksum.Matches(ifMatch, cur.Text) {
			return fmt.Errorf("draft %s changed since %s: %w", id, ifMatch, apperr.ErrConflict)
		}
		return cur.EditSection(title, content)
	})
	if err != nil {
		return nil, err
	}
	s.briefEvent("updated", id)
	return s.detail(d), nil
}

// Regenerate replaces one section with fresh model output. Paid only.
func (s *Service) Regenerate(ctx context.Context, p identity.Principal, id, title string) (*BriefDetail, error) {
	if err := p.RequirePaid("regenerate section"); err != nil {
		return nil, err
	}
	d, err := s.coord.Regenerate(ctx, id, title)
	if err != nil {
		return nil, err
	}
	return s.detail(d), nil
}

// Delete closes a draft. An in-flight regeneration for it is discarded.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.drafts.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("draft deleted", slog.String("brief_id", id))
	s.briefEvent("deleted", id)
	return nil
}

// Render returns the draft's sections with inline nodes.
func (s *Service) Render(ctx context.Context, id string) ([]inline.RenderedSection, error) {
	d, err := s.drafts.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return inline.RenderSections(d.Sections), nil
}

// Export renders the draft as a document. Paid only.
func (s *Service) Export(ctx context.Context, p identity.Principal, id string, f export.Format) (*export.Result, error) {
	if err := p.RequirePaid("export"); err != nil {
		return nil, err
	}
	d, err := s.drafts.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return export.Render(export.Document{ProjectName: d.Form.ProjectName, Sections: d.Sections}, f)
}

// Share returns a mailto link carrying the brief text. Paid only.
func (s *Service) Share(ctx context.Context, p identity.Principal, id string) (string, error) {
	if err := p.RequirePaid("share by e-mail"); err != nil {
		return "", err
	}
	d, err := s.drafts.Load(ctx, id)
	if err != nil {
		return "", err
	}
	return export.MailtoLink(d.Text), nil
}

// Publish stores the draft's current text under a new public slug. Paid only.
// The draft itself is never modified.
func (s *Service) Publish(ctx context.Context, p identity.Principal, id string) (*PublishResult, error) {
	if err := p.RequirePaid("publish"); err != nil {
		return nil, err
	}
	d, err := s.drafts.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	slug, err := s.pubs.Publish(ctx, publication.PublishInput{
		ProjectName: d.Form.ProjectName,
		ProjectType: d.Form.ProjectType,
		Content:     d.Text,
		IsPaidUser:  p.Paid,
	})
	if err != nil {
		s.logger.Error("publish failed", slog.String("brief_id", id), slog.String("error", err.Error()))
		return nil, err
	}
	res := &PublishResult{Slug: slug, Path: PublishedPathPrefix + slug, URL: s.baseURL + PublishedPathPrefix + slug}
	s.logger.Info("brief published", slog.String("brief_id", id), slog.String("slug", slug))
	if s.notify != nil {
		s.notify.Publish(sse.Event{Type: "brief.published", BriefID: id, Data: res})
	}
	return res, nil
}

// FetchPublished returns the public view of a published brief.
func (s *Service) FetchPublished(ctx context.Context, slug string) (*PublishedView, error) {
	rec, err := s.pubs.Fetch(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &PublishedView{
		Slug:        rec.Slug,
		ProjectName: rec.ProjectName,
		ProjectType: rec.ProjectType,
		Sections:    inline.RenderSections(brief.Parse(rec.Content, s.mode)),
		PoweredBy:   !rec.IsPaidUser,
		CreatedAt:   rec.CreatedAt,
	}, nil
}

// ListPublished filters published briefs by free-text query, or by project type
// when query is empty.
func (s *Service) ListPublished(ctx context.Context, projectType, query string, limit int) ([]publication.Summary, error) {
	if strings.TrimSpace(query) != "" {
		return s.pubs.Search(ctx, query, limit)
	}
	return s.pubs.List(ctx, projectType, limit)
}

// HandleExternalChange forwards out-of-band draft file changes to clients.
func (s *Service) HandleExternalChange(kind, id string) {
	s.logger.Info("draft changed on disk", slog.String("brief_id", id), slog.String("change", kind))
	s.briefEvent(kind, id)
}

func (s *Service) onRegen(ev regen.Event) {
	if s.notify == nil {
		return
	}
	s.notify.Publish(sse.Event{Type: ev.Type, BriefID: ev.BriefID, Data: ev})
	if ev.Type == regen.EventRegenerated {
		s.notify.PublishBriefEvent("updated", ev.BriefID)
	}
}

func (s *Service) briefEvent(kind, id string) {
	if s.notify != nil {
		s.notify.PublishBriefEvent(kind, id)
	}
}

func (s *Service) detail(d *draft.Draft) *BriefDetail {
	return &BriefDetail{
		ID:        d.ID,
		Form:      d.Form,
		Text:      d.Text,
		Sections:  nonNilSlice(d.Sections),
		ETag:      d.ETag(),
		State:     s.coord.State(d.ID),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
