package briefservice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/bryanpdl/briefly/internal/apperr"
	"github.com/bryanpdl/briefly/internal/brief"
	"github.com/bryanpdl/briefly/internal/checksum"
	"github.com/bryanpdl/briefly/internal/draft"
	"github.com/bryanpdl/briefly/internal/export"
	"github.com/bryanpdl/briefly/internal/generator"
	"github.com/bryanpdl/briefly/internal/identity"
	"github.com/bryanpdl/briefly/internal/regen"
	"github.com/bryanpdl/briefly/internal/sse"
	"github.com/bryanpdl/briefly/internal/testutil"
)

var (
	paid = identity.Principal{Subject: "ben", Paid: true}
	free = identity.Principal{Subject: "ana"}
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Publish(ev sse.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev.Type)
	r.mu.Unlock()
}

func (r *recorder) PublishBriefEvent(kind, id string) {
	r.mu.Lock()
	r.events = append(r.events, "brief."+kind)
	r.mu.Unlock()
}

func (r *recorder) has(e string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, got := range r.events {
		if got == e {
			return true
		}
	}
	return false
}

func newService(t *testing.T) (*Service, *recorder) {
	t.Helper()
	logger := testutil.Logger()
	gw, err := generator.NewGateway(generator.MockLLM{}, logger)
	if err != nil {
		t.Fatal(err)
	}
	drafts := draft.NewMemory()
	rec := &recorder{}
	svc, err := New(Deps{
		Generator:     gw,
		Coordinator:   regen.New(gw, drafts, logger),
		Drafts:        drafts,
		Publications:  testutil.TestDB(t),
		Notifier:      rec,
		Logger:        logger,
		Mode:          brief.ModeTrimmed,
		PublicBaseURL: "http://localhost:8080/",
	})
	if err != nil {
		t.Fatal(err)
	}
	return svc, rec
}

func sampleForm() generator.FormData {
	return generator.FormData{
		ProjectName: "Orchard",
		Goals:       "A calm landing page",
		Budget:      "1200",
		References:  []generator.Reference{{Type: generator.ReferenceImage, Value: "https://cdn.example.com/mood.png"}},
	}
}

func TestGenerateCreatesDraft(t *testing.T) {
	svc, rec := newService(t)
	d, err := svc.Generate(context.Background(), sampleForm())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if d.ID == "" || len(d.Sections) != 6 {
		t.Fatalf("detail = %+v", d)
	}
	if d.Form.ProjectType != generator.DefaultProjectType {
		t.Errorf("project type = %q", d.Form.ProjectType)
	}
	if d.ETag != checksum.Of(d.Text) || !d.State.Idle() {
		t.Errorf("etag/state = %q/%s", d.ETag, d.State)
	}
	if !rec.has("brief.created") {
		t.Error("no created event")
	}

	list, _ := svc.List(context.Background())
	if len(list) != 1 || list[0].ProjectName != "Orchard" {
		t.Errorf("list = %+v", list)
	}
}

func TestGenerateInvalidForm(t *testing.T) {
	svc, _ := newService(t)
	if _, err := svc.Generate(context.Background(), generator.FormData{}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestUpdateTextIfMatch(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	d, _ := svc.Generate(ctx, sampleForm())

	if _, err := svc.UpdateText(ctx, d.ID, "Goals:\nnew", "stale"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale err = %v, want ErrConflict", err)
	}
	updated, err := svc.UpdateText(ctx, d.ID, "Goals:\nnew", d.ETag)
	if err != nil {
		t.Fatalf("UpdateText: %v", err)
	}
	if len(updated.Sections) != 1 || updated.Sections[0].Content != "new" {
		t.Errorf("sections = %+v", updated.Sections)
	}
}

func TestEditSection(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()
	d, _ := svc.Generate(ctx, sampleForm())

	updated, err := svc.EditSection(ctx, d.ID, "Timeline", "Two weeks.", "")
	if err != nil {
		t.Fatalf("EditSection: %v", err)
	}
	if updated.Sections[2].Content != "Two weeks." {
		t.Errorf("timeline = %q", updated.Sections[2].Content)
	}
	for i, s := range updated.Sections {
		if i != 2 && s != d.Sections[i] {
			t.Errorf("section %d changed", i)
		}
	}
	if !rec.has("brief.updated") {
		t.Error("no updated event")
	}
	if _, err := svc.EditSection(ctx, d.ID, "Nope", "x", ""); !errors.Is(err, apperr.ErrSectionNotFound) {
		t.Errorf("err = %v, want ErrSectionNotFound", err)
	}
}

func TestPaidGates(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	d, _ := svc.Generate(ctx, sampleForm())

	if _, err := svc.Regenerate(ctx, free, d.ID, "Goals:"); !errors.Is(err, apperr.ErrPaymentRequired) {
		t.Errorf("regenerate err = %v", err)
	}
	if _, err := svc.Export(ctx, free, d.ID, export.FormatMarkdown); !errors.Is(err, apperr.ErrPaymentRequired) {
		t.Errorf("export err = %v", err)
	}
	if _, err := svc.Share(ctx, free, d.ID); !errors.Is(err, apperr.ErrPaymentRequired) {
		t.Errorf("share err = %v", err)
	}
	if _, err := svc.Publish(ctx, free, d.ID); !errors.Is(err, apperr.ErrPaymentRequired) {
		t.Errorf("publish err = %v", err)
	}
}

func TestRegenerate(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()
	d, _ := svc.Generate(ctx, sampleForm())

	updated, err := svc.Regenerate(ctx, paid, d.ID, "Goals")
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if updated.Sections[1].Content != "A fresh take on the goals for this project." {
		t.Errorf("goals = %q", updated.Sections[1].Content)
	}
	if updated.Sections[0] != d.Sections[0] {
		t.Error("introduction changed")
	}
	if !rec.has(regen.EventRegenerating) || !rec.has(regen.EventRegenerated) {
		t.Errorf("events = %v", rec.events)
	}
}

func TestExportAndShare(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	d, _ := svc.Generate(ctx, sampleForm())

	res, err := svc.Export(ctx, paid, d.ID, export.FormatMarkdown)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(string(res.Body), "![](https://cdn.example.com/mood.png)") {
		t.Errorf("export missing image markup:\n%s", res.Body)
	}

	link, err := svc.Share(ctx, paid, d.ID)
	if err != nil || !strings.HasPrefix(link, "mailto:?subject=Project%20Brief&body=") {
		t.Errorf("share = %q, %v", link, err)
	}
}

func TestPublishAndFetch(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()
	d, _ := svc.Generate(ctx, sampleForm())

	res, err := svc.Publish(ctx, paid, d.ID)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !strings.HasPrefix(res.Slug, "orchard-") || res.URL != "http://localhost:8080"+res.Path {
		t.Errorf("result = %+v", res)
	}
	if !rec.has("brief.published") {
		t.Error("no published event")
	}

	view, err := svc.FetchPublished(ctx, res.Slug)
	if err != nil {
		t.Fatalf("FetchPublished: %v", err)
	}
	if view.PoweredBy {
		t.Error("paid publisher shows powered-by marker")
	}
	if len(view.Sections) != 6 || view.Sections[0].Title != "Introduction:" {
		t.Errorf("sections = %+v", view.Sections)
	}

	// Republishing creates a second record; the draft is unchanged.
	again, _ := svc.Publish(ctx, paid, d.ID)
	if again.Slug == res.Slug {
		t.Error("republish reused slug")
	}
	after, _ := svc.Get(ctx, d.ID)
	if after.Text != d.Text {
		t.Error("publish modified draft")
	}

	list, err := svc.ListPublished(ctx, "design", "", 10)
	if err != nil || len(list) != 2 {
		t.Errorf("list = %d, %v", len(list), err)
	}
	hits, err := svc.ListPublished(ctx, "", "Orchard", 10)
	if err != nil || len(hits) != 2 {
		t.Errorf("search = %d, %v", len(hits), err)
	}
}

func TestDeleteDraft(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()
	d, _ := svc.Generate(ctx, sampleForm())

	if err := svc.Delete(ctx, d.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, d.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if !rec.has("brief.deleted") {
		t.Error("no deleted event")
	}
}
