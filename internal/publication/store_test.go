package publication

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/bryanpdl/briefly/internal/apperr"
	"github.com/bryanpdl/briefly/internal/brief"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "briefly-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM briefs`).Scan(&count); err != nil {
		t.Fatalf("briefs table missing: %v", err)
	}
}

func TestPublishAndFetch(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	slug, err := db.Publish(ctx, PublishInput{
		ProjectName: "Orchard Landing Page",
		ProjectType: "design",
		Content:     "Introduction:\nHello",
		IsPaidUser:  true,
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !strings.HasPrefix(slug, "orchard-landing-page-") || len(slug) != len("orchard-landing-page-")+8 {
		t.Errorf("slug = %q", slug)
	}

	rec, err := db.Fetch(ctx, slug)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if rec.Content != "Introduction:\nHello" || rec.ProjectName != "Orchard Landing Page" || !rec.IsPaidUser {
		t.Errorf("record = %+v", rec)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}

func TestFetchMissing(t *testing.T) {
	db := testDB(t)
	if _, err := db.Fetch(context.Background(), "nope-12345678"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRepublishCreatesNewRecord(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	in := PublishInput{ProjectName: "Same", Content: "Goals:\nx"}

	a, err := db.Publish(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	b, err := db.Publish(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("republish reused slug %q", a)
	}
}

func TestPublishRetriesOnCollision(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	suffixes := []string{"aaaaaaaa", "aaaaaaaa", "bbbbbbbb"}
	db.newSuffix = func() string {
		s := suffixes[0]
		suffixes = suffixes[1:]
		return s
	}

	first, err := db.Publish(ctx, PublishInput{ProjectName: "x", Content: "a"})
	if err != nil || first != "x-aaaaaaaa" {
		t.Fatalf("first = %q, %v", first, err)
	}
	second, err := db.Publish(ctx, PublishInput{ProjectName: "x", Content: "b"})
	if err != nil || second != "x-bbbbbbbb" {
		t.Fatalf("second = %q, %v", second, err)
	}
}

func TestPublishGivesUpAfterAttempts(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	db.newSuffix = func() string { return "cccccccc" }

	if _, err := db.Publish(ctx, PublishInput{ProjectName: "x", Content: "a"}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Publish(ctx, PublishInput{ProjectName: "x", Content: "b"}); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestPublishRequiresContent(t *testing.T) {
	db := testDB(t)
	if _, err := db.Publish(context.Background(), PublishInput{ProjectName: "x"}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestListFiltersByType(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_, _ = db.Publish(ctx, PublishInput{ProjectName: "one", ProjectType: "design", Content: "a"})
	_, _ = db.Publish(ctx, PublishInput{ProjectName: "two", ProjectType: "video", Content: "b"})
	_, _ = db.Publish(ctx, PublishInput{ProjectName: "three", ProjectType: "design", Content: "c"})

	all, err := db.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].ProjectName != "three" {
		t.Errorf("all = %+v", all)
	}

	design, _ := db.List(ctx, "design", 10)
	if len(design) != 2 {
		t.Errorf("design = %d, want 2", len(design))
	}

	limited, _ := db.List(ctx, "", 1)
	if len(limited) != 1 {
		t.Errorf("limited = %d, want 1", len(limited))
	}
}

func TestSearch(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_, _ = db.Publish(ctx, PublishInput{ProjectName: "Orchard", Content: "Goals:\nA calm landing page"})
	_, _ = db.Publish(ctx, PublishInput{ProjectName: "Harbor", Content: "Goals:\nA bold poster"})

	hits, err := db.Search(ctx, "landing", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ProjectName != "Orchard" {
		t.Errorf("hits = %+v", hits)
	}
	if hits[0].Snippet == "" {
		t.Error("expected snippet")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Orchard Landing Page": "orchard-landing-page",
		"  --Hello, World!-- ": "hello-world",
		"Café Ωmega 2":         "caf-mega-2",
		"":                     "brief",
		"!!!":                  "brief",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
	long := Slugify(strings.Repeat("abc ", 40))
	if len(long) > brief.MaxSlugLen || strings.HasSuffix(long, "-") {
		t.Errorf("long slug = %q", long)
	}
}
