package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeMigrations(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadMigrations_SortedAndFiltered(t *testing.T) {
	dir := writeMigrations(t, map[string]string{
		"010_reports.sql":  "SELECT 10;",
		"001_patients.sql": "CREATE TABLE patients (id UUID PRIMARY KEY);",
		"002_mar.sql":      "SELECT 2;",
		"readme.sql":       "-- no prefix",
		"notes.txt":        "ignored",
		"abc_invalid.sql":  "-- non-numeric",
	})

	migrations, err := NewMigrator(nil, dir).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	for i, want := range []int{1, 2, 10} {
		if migrations[i].Version != want {
			t.Errorf("migration[%d]: expected version %d, got %d", i, want, migrations[i].Version)
		}
	}
	if migrations[0].SQL != "CREATE TABLE patients (id UUID PRIMARY KEY);" {
		t.Errorf("unexpected SQL: %s", migrations[0].SQL)
	}
}

func TestLoadMigrations_DuplicateVersion(t *testing.T) {
	dir := writeMigrations(t, map[string]string{
		"001_a.sql":  "SELECT 1;",
		"0001_b.sql": "SELECT 1;",
	})
	if _, err := NewMigrator(nil, dir).LoadMigrations(); err == nil {
		t.Fatal("expected error for duplicate version")
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	if _, err := NewMigrator(nil, filepath.Join(t.TempDir(), "nope")).LoadMigrations(); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestPendingAndStatus(t *testing.T) {
	migrations := []Migration{
		{Version: 1, Name: "001_patients.sql"},
		{Version: 2, Name: "002_mar.sql"},
		{Version: 3, Name: "003_vitals.sql"},
	}
	applied := map[int]time.Time{1: time.Now()}

	pending := Pending(migrations, applied)
	if len(pending) != 2 || pending[0].Version != 2 {
		t.Fatalf("unexpected pending set %+v", pending)
	}

	status := BuildStatus(migrations, applied)
	if !status[0].Applied || status[0].AppliedAt == nil {
		t.Error("expected first migration applied")
	}
	if status[1].Applied || status[2].Applied {
		t.Error("expected later migrations pending")
	}
}
