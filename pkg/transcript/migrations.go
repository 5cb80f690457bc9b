package transcript

import (
	"database/sql"
	"errors"
	"fmt"
)

// migration is one schema step.
type migration struct {
	version int
	up      string
}

var migrations = []migration{
	{
		version: 1,
		up: `
			CREATE TABLE sessions (
				id         TEXT PRIMARY KEY,
				project    TEXT NOT NULL DEFAULT '',
				provider   TEXT NOT NULL DEFAULT '',
				model      TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL
			);
			CREATE TABLE entries (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
				kind       TEXT NOT NULL,
				content    TEXT NOT NULL,
				created_at TEXT NOT NULL
			);
			CREATE INDEX idx_entries_session ON entries (session_id, id);
		`,
	},
	{
		version: 2,
		up:      `CREATE INDEX idx_sessions_project ON sessions (project, created_at DESC);`,
	},
}

// migrate brings the schema up to the latest version.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var current int
	err := db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return fmt.Errorf("insert initial schema version: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(`UPDATE schema_version SET version = ?`, m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("update schema version to %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}
	return nil
}
