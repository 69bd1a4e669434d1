// Package publication stores published briefs in SQLite, keyed by a public slug.
// Records are immutable; publishing the same draft again creates a new record.
package publication

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS briefs (
	slug         TEXT PRIMARY KEY,
	project_name TEXT NOT NULL DEFAULT '',
	project_type TEXT NOT NULL DEFAULT '',
	content      TEXT NOT NULL,
	is_paid_user INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_briefs_type_created ON briefs(project_type, created_at);
CREATE INDEX IF NOT EXISTS idx_briefs_created ON briefs(created_at);
`

// DB is the SQLite-backed Store.
type DB struct {
	conn      *sql.DB
	newSuffix func() string
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("publication: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("publication: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("publication: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("publication: apply fts schema: %w", err)
	}
	return &DB{conn: conn, newSuffix: randomSuffix}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
