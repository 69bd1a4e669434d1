//go:build !sqlite_fts5

package publication

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over the briefs table.
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func ftsInsert(_ context.Context, _ *sql.Tx, _, _, _ string) error {
	return nil
}

// Search performs a LIKE-based search over project name and content.
func (db *DB) Search(ctx context.Context, query string, limit int) ([]Summary, error) {
	limit = clampLimit(limit)
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.QueryContext(ctx, `
		SELECT slug, project_name, project_type, substr(content, 1, 200), created_at
		FROM briefs
		WHERE project_name LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\'
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, like, like, limit)
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
