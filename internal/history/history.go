package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sahilm/fuzzy"
	"github.com/studiowebux/insightcli/internal/migrations"
	"github.com/studiowebux/insightcli/internal/types"
)

// timestampLayout is how timestamps are stored in SQLite (local time)
const timestampLayout = "2006-01-02 15:04:05"

type Manager struct {
	db *sql.DB
}

func NewManager(dbPath string) (*Manager, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// One connection keeps :memory: databases shared and serialises writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// Save stores a submission and returns it with ID and Timestamp filled in
func (m *Manager) Save(entry types.HistoryEntry) (types.HistoryEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().Local().Format(timestampLayout)
	}

	var result sql.NullString
	if !entry.Result.IsZero() {
		result = sql.NullString{String: entry.Result.String(), Valid: true}
	}

	query := `
		INSERT INTO submissions (
			id, timestamp, base_url, input, status, error_kind, error, result, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := m.db.Exec(query,
		entry.ID,
		entry.Timestamp,
		entry.BaseURL,
		entry.Input,
		entry.Status,
		nullIfEmpty(entry.ErrorKind),
		nullIfEmpty(entry.Error),
		result,
		entry.DurationMs,
	)
	if err != nil {
		return entry, fmt.Errorf("failed to save history entry: %w", err)
	}

	return entry, nil
}

// Load returns the most recent entries first; limit <= 0 means all
func (m *Manager) Load(limit int) ([]types.HistoryEntry, error) {
	query := `
		SELECT id, timestamp, base_url, input, status, error_kind, error, result, duration_ms
		FROM submissions
		ORDER BY timestamp DESC, rowid DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Get returns a single entry by ID
func (m *Manager) Get(id string) (types.HistoryEntry, error) {
	rows, err := m.db.Query(`
		SELECT id, timestamp, base_url, input, status, error_kind, error, result, duration_ms
		FROM submissions
		WHERE id = ?
	`, id)
	if err != nil {
		return types.HistoryEntry{}, fmt.Errorf("failed to load history entry: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return types.HistoryEntry{}, err
	}
	if len(entries) == 0 {
		return types.HistoryEntry{}, fmt.Errorf("history entry %s not found", id)
	}
	return entries[0], nil
}

// Search fuzzy-matches query against stored input text, best matches first.
// An empty query behaves like Load.
func (m *Manager) Search(query string, limit int) ([]types.HistoryEntry, error) {
	all, err := m.Load(0)
	if err != nil {
		return nil, err
	}
	matched := Filter(all, query)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Filter fuzzy-matches query against the input text of entries
func Filter(entries []types.HistoryEntry, query string) []types.HistoryEntry {
	if query == "" {
		return entries
	}
	matches := fuzzy.FindFrom(query, inputSource(entries))
	out := make([]types.HistoryEntry, 0, len(matches))
	for _, match := range matches {
		out = append(out, entries[match.Index])
	}
	return out
}

// inputSource adapts entries to fuzzy.Source
type inputSource []types.HistoryEntry

func (s inputSource) String(i int) string { return s[i].Input }
func (s inputSource) Len() int            { return len(s) }

func (m *Manager) Clear() error {
	if _, err := m.db.Exec("DELETE FROM submissions"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (m *Manager) Delete(id string) error {
	if _, err := m.db.Exec("DELETE FROM submissions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	return nil
}

func (m *Manager) GetCount() (int, error) {
	var count int
	if err := m.db.QueryRow("SELECT COUNT(*) FROM submissions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history entries: %w", err)
	}
	return count, nil
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]types.HistoryEntry, error) {
	var entries []types.HistoryEntry

	for rows.Next() {
		var entry types.HistoryEntry
		var errorKind, errText, result sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.Timestamp,
			&entry.BaseURL,
			&entry.Input,
			&entry.Status,
			&errorKind,
			&errText,
			&result,
			&entry.DurationMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entry.ErrorKind = errorKind.String
		entry.Error = errText.String
		if result.Valid {
			entry.Result = types.InsightResult(result.String)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history entries: %w", err)
	}
	return entries, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
