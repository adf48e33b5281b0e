package db

import (
	"path/filepath"
	"testing"
)

func TestNew_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")

	database, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer database.Close()

	for _, table := range []string{"runs", "_migrations"} {
		var name string
		err := database.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestNew_WALEnabled(t *testing.T) {
	database, err := New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer database.Close()

	var journalMode string
	if err := database.Conn().QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("PRAGMA journal_mode error = %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}
}

func TestNew_MigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db1, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	db1.Close()

	db2, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("second New() error = %v", err)
	}
	defer db2.Close()

	var count int
	if err := db2.Conn().QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations error = %v", err)
	}
	if count != 2 {
		t.Errorf("migration count = %d, want 2", count)
	}
}

func TestMarkInterruptedRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db1, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = db1.Conn().Exec(`
		INSERT INTO runs (id, input_path, source_label, frame_rate, frame_start, handle_size, status, created_at, updated_at)
		VALUES ('run-1', '/edl/a.edl', 'Final', 24, 990, 10, 'running', datetime('now'), datetime('now'))
	`)
	if err != nil {
		t.Fatalf("insert run error = %v", err)
	}
	db1.Close()

	db2, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("second New() error = %v", err)
	}
	defer db2.Close()

	var status, errMsg string
	if err := db2.Conn().QueryRow("SELECT status, error FROM runs WHERE id = 'run-1'").Scan(&status, &errMsg); err != nil {
		t.Fatalf("query run error = %v", err)
	}
	if status != "failed" {
		t.Errorf("run status = %s, want failed", status)
	}
	if errMsg != "interrupted by restart" {
		t.Errorf("run error = %s, want 'interrupted by restart'", errMsg)
	}
}
