package archive

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/RadioRCA/internal/schema"
)

func writeClean(t *testing.T, store *Store, category schema.Category, name, body string) string {
	t.Helper()
	path, err := store.Write(category, name, func(w io.Writer) error {
		_, err := io.WriteString(w, body)
		return err
	})
	if err != nil {
		t.Fatalf("Write(%q) error: %v", name, err)
	}
	return path
}

func TestCleanName(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	tests := []struct {
		name     string
		original string
		want     string
	}{
		{
			name:     "plain csv",
			original: "NR_cells.csv",
			want:     "clean_20250314T092653_NR_cells.csv",
		},
		{
			name:     "xlsx extension replaced",
			original: "dump.xlsx",
			want:     "clean_20250314T092653_dump.csv",
		},
		{
			name:     "path stripped and spaces sanitized",
			original: "/tmp/site database (v2).csv",
			want:     "clean_20250314T092653_site_database_v2.csv",
		},
		{
			name:     "empty base falls back",
			original: "...csv",
			want:     "clean_20250314T092653_table.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanName(tt.original, ts)
			if got != tt.want {
				t.Errorf("CleanName(%q) = %q, want %q", tt.original, got, tt.want)
			}
		})
	}
}

func TestWriteAndList(t *testing.T) {
	store := NewStore(t.TempDir())

	writeClean(t, store, schema.CategoryDatabase, "clean_20250101T000000_sites_LTE.csv", "a;b\n1;2\n")
	writeClean(t, store, schema.CategoryDatabase, "clean_20250102T000000_sites_NR.csv", "a;b\n3;4\n")
	writeClean(t, store, schema.CategoryCM, "clean_20250103T000000_params.csv", "x\n")

	files, err := store.List(schema.CategoryDatabase, "")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("List() returned %d files, want 2", len(files))
	}
	if files[0].Name != "clean_20250102T000000_sites_NR.csv" {
		t.Errorf("List()[0] = %q, want newest first", files[0].Name)
	}

	nr, err := store.List(schema.CategoryDatabase, "nr")
	if err != nil {
		t.Fatalf("List(tech=nr) error: %v", err)
	}
	if len(nr) != 1 || !strings.Contains(nr[0].Name, "NR") {
		t.Errorf("List(tech=nr) = %v, want the NR file only", nr)
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	store := NewStore(t.TempDir())
	dir := store.Dir(schema.CategoryRF)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "raw_dump.csv", "clean_20250101T000000_scan.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeClean(t, store, schema.CategoryRF, "clean_20250101T000000_scan.csv", "lat;rsrp\n")

	files, err := store.List(schema.CategoryRF, "")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(files) != 1 || files[0].Name != "clean_20250101T000000_scan.csv" {
		t.Errorf("List() = %v, want only the clean csv", files)
	}
}

func TestLatest(t *testing.T) {
	store := NewStore(t.TempDir())

	if _, ok := store.Latest(schema.CategoryDatabase, ""); ok {
		t.Error("Latest() on empty archive reported ok")
	}

	writeClean(t, store, schema.CategoryDatabase, "clean_20250101T000000_sites.csv", "old")
	writeClean(t, store, schema.CategoryDatabase, "clean_20250105T000000_sites.csv", "new")

	got, ok := store.Latest(schema.CategoryDatabase, "")
	if !ok {
		t.Fatal("Latest() reported no files after writes")
	}
	if got.Name != "clean_20250105T000000_sites.csv" {
		t.Errorf("Latest() = %q, want the 20250105 file", got.Name)
	}
}

func TestWritePublishesAtomically(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Write(schema.CategoryPM, "clean_x.csv", func(w io.Writer) error {
		return io.ErrUnexpectedEOF
	})
	if err == nil {
		t.Fatal("Write() with failing writer returned nil error")
	}

	entries, _ := os.ReadDir(store.Dir(schema.CategoryPM))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".clean-") {
			t.Errorf("temp file %q left behind after failed write", e.Name())
		}
		if e.Name() == "clean_x.csv" {
			t.Error("failed write still published the clean file")
		}
	}
}

func TestSweep(t *testing.T) {
	store := NewStore(t.TempDir())

	for _, name := range []string{
		"clean_20250101T000000_sites.csv",
		"clean_20250102T000000_sites.csv",
		"clean_20250103T000000_sites.csv",
		"clean_20250104T000000_sites.csv",
	} {
		writeClean(t, store, schema.CategoryDatabase, name, "x")
	}
	writeClean(t, store, schema.CategoryCM, "clean_20250101T000000_params.csv", "x")

	removed, err := store.Sweep(2)
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if removed != 2 {
		t.Errorf("Sweep(2) removed %d files, want 2", removed)
	}

	files, _ := store.List(schema.CategoryDatabase, "")
	if len(files) != 2 {
		t.Fatalf("after sweep, %d database files remain, want 2", len(files))
	}
	if files[0].Name != "clean_20250104T000000_sites.csv" || files[1].Name != "clean_20250103T000000_sites.csv" {
		t.Errorf("sweep kept %v, want the two newest", []string{files[0].Name, files[1].Name})
	}

	cm, _ := store.List(schema.CategoryCM, "")
	if len(cm) != 1 {
		t.Errorf("sweep touched a category under its keep limit: %d files", len(cm))
	}
}

func TestSummary(t *testing.T) {
	store := NewStore(t.TempDir())
	writeClean(t, store, schema.CategoryDatabase, "clean_20250101T000000_sites.csv", "x")

	sums, err := store.Summary()
	if err != nil {
		t.Fatalf("Summary() error: %v", err)
	}
	if len(sums) != len(schema.All()) {
		t.Fatalf("Summary() returned %d categories, want %d", len(sums), len(schema.All()))
	}
	for _, sum := range sums {
		switch sum.Category {
		case schema.CategoryDatabase:
			if sum.Files != 1 || sum.Latest == "" {
				t.Errorf("database summary = %+v, want 1 file with latest set", sum)
			}
		default:
			if sum.Files != 0 || sum.Latest != "" {
				t.Errorf("%s summary = %+v, want empty", sum.Category, sum)
			}
		}
	}
}
