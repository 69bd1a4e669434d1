//go:build sqlite_fts5

package publication

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS briefs_fts USING fts5(
			slug UNINDEXED,
			project_name,
			content,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(ctx context.Context, tx *sql.Tx, slug, name, content string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO briefs_fts (slug, project_name, content) VALUES (?, ?, ?)`,
		slug, name, content)
	if err != nil {
		return fmt.Errorf("publication: insert fts: %w", err)
	}
	return nil
}

// Search performs an FTS5 full-text search. The query is matched as a phrase.
func (db *DB) Search(ctx context.Context, query string, limit int) ([]Summary, error) {
	limit = clampLimit(limit)
	phrase := `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
	rows, err := db.conn.QueryContext(ctx, `
		SELECT b.slug,
		       b.project_name,
		       b.project_type,
		       snippet(briefs_fts, 2, '', '', '...', 32),
		       b.created_at
		FROM briefs_fts
		JOIN briefs b ON b.slug = briefs_fts.slug
		WHERE briefs_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, phrase, limit)
	if err != nil {
		return nil, fmt.Errorf("publication: search: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.Slug, &s.ProjectName, &s.ProjectType, &s.Snippet, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
