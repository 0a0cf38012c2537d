package contact

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return rows
}

func TestCSVLogWritesHeaderOnce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "contact_info.csv")
	log, err := NewCSVLog(Config{Path: path})
	if err != nil {
		t.Fatalf("NewCSVLog() error = %v", err)
	}

	rec := Record{FullName: "Ada Lovelace", Email: "ada@example.com", Phone: "052-565-0674"}
	if err := log.Append(context.Background(), rec); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := log.Append(context.Background(), rec); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	rows := readAll(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 records, got %d rows", len(rows))
	}
	if rows[0][0] != "full_name" || rows[0][1] != "email" || rows[0][2] != "phone" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "Ada Lovelace" {
		t.Fatalf("unexpected record: %v", rows[1])
	}
}

func TestCSVLogAllowsDuplicatesAndAnyFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "contact_info.csv")
	log, err := NewCSVLog(Config{Path: path})
	if err != nil {
		t.Fatalf("NewCSVLog() error = %v", err)
	}

	// No field-format validation: garbage goes in verbatim.
	rec := Record{FullName: "x", Email: "not-an-email", Phone: "???"}
	for i := 0; i < 3; i++ {
		if err := log.Append(context.Background(), rec); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	rows := readAll(t, path)
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 records, got %d rows", len(rows))
	}
	for _, row := range rows[1:] {
		if row[1] != "not-an-email" {
			t.Fatalf("unexpected email column: %v", row)
		}
	}
}

func TestNewCSVLogEmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := NewCSVLog(Config{Path: "   "}); err == nil {
		t.Fatal("expected error for empty path")
	}
}
