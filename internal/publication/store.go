package publication

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mattn/go-sqlite3"

	"github.com/bryanpdl/briefly/internal/apperr"
)

const (
	maxSlugAttempts = 3
	defaultLimit    = 20
	maxLimit        = 100
)

// Store is the publication collaborator. There are no update or delete operations.
type Store interface {
	Publish(ctx context.Context, in PublishInput) (string, error)
	Fetch(ctx context.Context, slug string) (*Record, error)
	List(ctx context.Context, projectType string, limit int) ([]Summary, error)
	Search(ctx context.Context, query string, limit int) ([]Summary, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// PublishInput is what a caller hands over to publish a brief.
type PublishInput struct {
	ProjectName string
	ProjectType string
	Content     string
	IsPaidUser  bool
}

// Validate implements validation.Validatable.
func (in PublishInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Content, validation.Required),
		validation.Field(&in.ProjectName, validation.Length(0, 200)),
	)
}

// Record is one published brief.
type Record struct {
	Slug        string    `json:"slug"`
	ProjectName string    `json:"project_name"`
	ProjectType string    `json:"project_type"`
	Content     string    `json:"content"`
	IsPaidUser  bool      `json:"is_paid_user"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary is a listing or search hit without the full content.
type Summary struct {
	Slug        string    `json:"slug"`
	ProjectName string    `json:"project_name"`
	ProjectType string    `json:"project_type"`
	Snippet     string    `json:"snippet,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Publish stores a new record and returns its slug.
func (db *DB) Publish(ctx context.Context, in PublishInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	base := Slugify(in.ProjectName)
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug := base + "-" + db.newSuffix()
		err := db.insert(ctx, slug, in)
		if err == nil {
			return slug, nil
		}
		if !isUniqueViolation(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("publication: no free slug for %q after %d attempts: %w", base, maxSlugAttempts, apperr.ErrConflict)
}

func (db *DB) insert(ctx context.Context, slug string, in PublishInput) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("publication: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO briefs (slug, project_name, project_type, content, is_paid_user, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, slug, in.ProjectName, in.ProjectType, in.Content, in.IsPaidUser, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("publication: insert: %w", err)
	}
	if err := ftsInsert(ctx, tx, slug, in.ProjectName, in.Content); err != nil {
		return err
	}
	return tx.Commit()
}

// Fetch returns the record published under slug.
func (db *DB) Fetch(ctx context.Context, slug string) (*Record, error) {
	var r Record
	err := db.conn.QueryRowContext(ctx, `
		SELECT slug, project_name, project_type, content, is_paid_user, created_at
		FROM briefs WHERE slug = ?
	`, slug).Scan(&r.Slug, &r.ProjectName, &r.ProjectType, &r.Content, &r.IsPaidUser, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("published brief %s: %w", slug, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("publication: fetch: %w", err)
	}
	return &r, nil
}

// List returns the newest records, optionally only those of projectType.
func (db *DB) List(ctx context.Context, projectType string, limit int) ([]Summary, error) {
	limit = clampLimit(limit)
	rows, err := db.conn.QueryContext(ctx, `
		SELECT slug, project_name, project_type, created_at
		FROM briefs
		WHERE (? = '' OR project_type = ?)
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, projectType, projectType, limit)
	if err != nil {
		return nil, fmt.Errorf("publication: list: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.Slug, &s.ProjectName, &s.ProjectType, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint
	}
	return false
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
