package devotional

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const tableJSON = `[
  {"Datum": "31.12.2025", "Losungstext": "Altjahr", "Losungsvers": "Ps 1,1"},
  {"Datum": "01.01.2026", "Losungstext": "Neujahr", "Losungsvers": "Ps 2,2", "Lehrtext": "Lehre", "Lehrtextvers": "Joh 1,1"},
  {"Datum": "02.01.2026", "Losungstext": "Zweiter"}
]`

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "losungen.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write table: %v", err)
	}
	return path
}

func TestForDateMatch(t *testing.T) {
	tbl, err := LoadTable(writeTable(t, tableJSON))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}

	now := time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)
	e := tbl.ForDate(now)
	if e == nil {
		t.Fatal("expected entry for 01.01.2026, got nil")
	}
	if e.Datum != "01.01.2026" {
		t.Errorf("Datum: got %q, want %q", e.Datum, "01.01.2026")
	}
	if e.Losungstext != "Neujahr" {
		t.Errorf("Losungstext: got %q, want %q", e.Losungstext, "Neujahr")
	}
}

func TestForDateNoMatchReturnsNil(t *testing.T) {
	tbl, err := LoadTable(writeTable(t, tableJSON))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	if e := tbl.ForDate(now); e != nil {
		t.Errorf("expected nil for unlisted date, got %+v", e)
	}
}

func TestForDateRepeatedLookupsSameDay(t *testing.T) {
	tbl, err := LoadTable(writeTable(t, tableJSON))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}

	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	first := tbl.ForDate(now)
	second := tbl.ForDate(now.Add(6 * time.Hour))
	if first == nil || second == nil {
		t.Fatal("expected entries on both lookups")
	}
	if first.Losungstext != second.Losungstext {
		t.Errorf("lookups disagree: %q vs %q", first.Losungstext, second.Losungstext)
	}
}

func TestLoadTableMissingFile(t *testing.T) {
	if _, err := LoadTable(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing table file")
	}
}

func TestLoadTableBadJSON(t *testing.T) {
	if _, err := LoadTable(writeTable(t, "{not json")); err == nil {
		t.Error("expected error for malformed table")
	}
}

func TestNilTableIsSafe(t *testing.T) {
	var tbl *Table
	if e := tbl.ForDate(time.Now()); e != nil {
		t.Errorf("nil table lookup: got %+v, want nil", e)
	}
}
