package db

import (
	"path/filepath"
	"testing"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	tables := []string{
		"expert_patterns", "corpus_entries", "generation_runs",
		"quality_history", "user_feedback",
	}
	for _, table := range tables {
		var count int
		if err := d.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "promptsuite.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer d.Close()
	if d.Path() != path {
		t.Errorf("Path() = %q, want %q", d.Path(), path)
	}
}

func TestFeedbackRatingConstraint(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	_, err = d.Exec(`INSERT INTO user_feedback (id, target_id, rating, usage_result, created_at)
		VALUES ('f1', 't1', 9, 'success', '2024-01-01T00:00:00Z')`)
	if err == nil {
		t.Error("expected rating outside 1..5 to be rejected")
	}
}

func TestCorpusDedupKeyUnique(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	insert := `INSERT OR IGNORE INTO corpus_entries (id, dedup_key, title, content) VALUES (?, ?, ?, ?)`
	if _, err := d.Exec(insert, "a", "k", "t", "c"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Exec(insert, "b", "k", "t", "c"); err != nil {
		t.Fatal(err)
	}
	var n int
	d.QueryRow("SELECT COUNT(*) FROM corpus_entries").Scan(&n)
	if n != 1 {
		t.Errorf("expected 1 row after duplicate insert, got %d", n)
	}
}
