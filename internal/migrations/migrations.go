package migrations

import (
	"database/sql"
	"errors"
	"fmt"
)

// Migration is one versioned schema change with its inverse
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// AllMigrations holds the submission store schema, oldest first
var AllMigrations = []Migration{
	{
		Version: 1,
		Name:    "Create submissions table",
		Up: `
			CREATE TABLE IF NOT EXISTS submissions (
				id TEXT PRIMARY KEY,
				timestamp TEXT NOT NULL,
				base_url TEXT NOT NULL,
				input TEXT NOT NULL,
				status INTEGER NOT NULL DEFAULT 0,
				error_kind TEXT,
				error TEXT,
				result TEXT,
				duration_ms INTEGER NOT NULL DEFAULT 0
			);
		`,
		Down: `DROP TABLE IF EXISTS submissions;`,
	},
	{
		Version: 2,
		Name:    "Index submissions for listing and failure lookups",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_submissions_timestamp ON submissions(timestamp DESC);
			CREATE INDEX IF NOT EXISTS idx_submissions_error_kind ON submissions(error_kind);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_submissions_timestamp;
			DROP INDEX IF EXISTS idx_submissions_error_kind;
		`,
	},
}

const createVersionTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
`

// Run applies every migration newer than the recorded version
func Run(db *sql.DB) error {
	if _, err := db.Exec(createVersionTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, err := GetCurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	for _, m := range AllMigrations {
		if m.Version <= current {
			continue
		}
		err := inTx(db, func(tx *sql.Tx) error {
			if _, err := tx.Exec(m.Up); err != nil {
				return err
			}
			_, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// Rollback reverts applied migrations newer than target, newest first
func Rollback(db *sql.DB, target int) error {
	current, err := GetCurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	for i := len(AllMigrations) - 1; i >= 0; i-- {
		m := AllMigrations[i]
		if m.Version <= target || m.Version > current {
			continue
		}
		err := inTx(db, func(tx *sql.Tx) error {
			if _, err := tx.Exec(m.Down); err != nil {
				return err
			}
			_, err := tx.Exec("DELETE FROM schema_migrations WHERE version = ?", m.Version)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to revert migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// GetCurrentVersion returns the highest applied version, 0 for a fresh database
func GetCurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	return version, nil
}

func inTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
