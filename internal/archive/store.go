// Package archive manages the clean-table files everything else reads:
// locating the most recent table for a category and optional technology
// tag, listing archives, accepting freshly cleaned files, and pruning old
// ones. The analysis engine only ever reads from here; writers create new
// files and never rewrite existing ones, so concurrent reads are safe.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/JonMunkholm/RadioRCA/internal/schema"
)

// cleanPrefix marks files produced by the ingest pipeline. Anything else in
// the archive directory is ignored.
const cleanPrefix = "clean_"

// unsafeNameChars is replaced with '_' when deriving a clean-file name from
// an uploaded filename.
var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Store provides access to the archive tree under a data root:
// <root>/input/<category>/archive/clean_*.csv.
type Store struct {
	root string
}

// NewStore creates a store rooted at the given data directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Dir returns the archive directory for a category.
func (s *Store) Dir(category schema.Category) string {
	return filepath.Join(s.root, "input", string(category), "archive")
}

// CleanFile describes one archived clean table.
type CleanFile struct {
	Name    string    `json:"name"`
	Path    string    `json:"-"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// List returns the clean files for a category, newest first, optionally
// filtered by a technology tag matched case-insensitively against the file
// name. A missing archive directory is an empty archive, not an error.
func (s *Store) List(category schema.Category, tech string) ([]CleanFile, error) {
	dir := s.Dir(category)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read archive %s: %w", dir, err)
	}

	tech = strings.ToLower(tech)
	var files []CleanFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, cleanPrefix) || !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		if tech != "" && !strings.Contains(strings.ToLower(name), tech) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, CleanFile{
			Name:    name,
			Path:    filepath.Join(dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	// Clean-file names start with a UTC timestamp, so a descending name
	// sort is a descending time sort that survives file copies. Equal
	// names cannot happen within one directory.
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name > files[j].Name
	})
	return files, nil
}

// Latest returns the newest clean file matching the category and optional
// technology tag, or ok=false when the archive holds none.
func (s *Store) Latest(category schema.Category, tech string) (CleanFile, bool) {
	files, err := s.List(category, tech)
	if err != nil || len(files) == 0 {
		return CleanFile{}, false
	}
	return files[0], true
}

// CleanName derives the archive file name for an upload received at ts.
func CleanName(original string, ts time.Time) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_")
	if base == "" {
		base = "table"
	}
	return fmt.Sprintf("%s%s_%s.csv", cleanPrefix, ts.UTC().Format("20060102T150405"), base)
}

// Write stores a new clean file in the category's archive. The contents
// are written to a temporary file first and renamed into place so readers
// never observe a partial file. Returns the final path.
func (s *Store) Write(category schema.Category, name string, fn func(io.Writer) error) (string, error) {
	dir := s.Dir(category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".clean-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := fn(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	final := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, final); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("publish clean file: %w", err)
	}
	return final, nil
}

// CategorySummary reports the archive state of one category for listings.
type CategorySummary struct {
	Category schema.Category `json:"category"`
	Title    string          `json:"title"`
	Files    int             `json:"files"`
	Latest   string          `json:"latest,omitempty"`
}

// Summary returns the archive state of every category in display order.
func (s *Store) Summary() ([]CategorySummary, error) {
	defs := schema.All()
	out := make([]CategorySummary, 0, len(defs))
	for _, def := range defs {
		files, err := s.List(def.Key, "")
		if err != nil {
			return nil, err
		}
		sum := CategorySummary{Category: def.Key, Title: def.Title, Files: len(files)}
		if len(files) > 0 {
			sum.Latest = files[0].Name
		}
		out = append(out, sum)
	}
	return out, nil
}

// Sweep removes clean files beyond the keep most recent in each category.
// Returns how many files were removed. Failures on individual files are
// skipped; the sweep is retried on the next cycle anyway.
func (s *Store) Sweep(keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	removed := 0
	for _, def := range schema.All() {
		files, err := s.List(def.Key, "")
		if err != nil {
			return removed, err
		}
		for _, f := range files[min(keep, len(files)):] {
			if err := os.Remove(f.Path); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
