package migrations

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRun_AppliesAllMigrations(t *testing.T) {
	db := openTestDB(t)

	if err := Run(db); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	version, err := GetCurrentVersion(db)
	if err != nil {
		t.Fatalf("GetCurrentVersion() error: %v", err)
	}
	want := AllMigrations[len(AllMigrations)-1].Version
	if version != want {
		t.Errorf("version = %d, want %d", version, want)
	}
}

func TestRun_IsIdempotent(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 3; i++ {
		if err := Run(db); err != nil {
			t.Fatalf("Run() pass %d error: %v", i, err)
		}
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != len(AllMigrations) {
		t.Errorf("recorded migrations = %d, want %d", count, len(AllMigrations))
	}
}

func TestAllMigrations_Ordered(t *testing.T) {
	for i := 1; i < len(AllMigrations); i++ {
		if AllMigrations[i].Version <= AllMigrations[i-1].Version {
			t.Errorf("migration %d (%s) is not after version %d", AllMigrations[i].Version, AllMigrations[i].Name, AllMigrations[i-1].Version)
		}
	}
}

func TestRollback(t *testing.T) {
	db := openTestDB(t)
	if err := Run(db); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if err := Rollback(db, 1); err != nil {
		t.Fatalf("Rollback(1) error: %v", err)
	}
	version, _ := GetCurrentVersion(db)
	if version != 1 {
		t.Errorf("version after Rollback(1) = %d, want 1", version)
	}
	var indexes int
	db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name LIKE 'idx_submissions_%'").Scan(&indexes)
	if indexes != 0 {
		t.Errorf("indexes after rollback = %d, want 0", indexes)
	}

	if err := Rollback(db, 0); err != nil {
		t.Fatalf("Rollback(0) error: %v", err)
	}
	var tables int
	db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'submissions'").Scan(&tables)
	if tables != 0 {
		t.Error("submissions table should be dropped")
	}

	if err := Run(db); err != nil {
		t.Fatalf("Run() after rollback error: %v", err)
	}
	version, _ = GetCurrentVersion(db)
	if version != AllMigrations[len(AllMigrations)-1].Version {
		t.Errorf("version after re-run = %d", version)
	}
}
