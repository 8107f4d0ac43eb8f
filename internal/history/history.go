// Package history keeps a short journal of recent analysis runs so the UI
// can re-offer them. It is a convenience log, not an audit trail: the file
// is capped, and a corrupt or missing file just means an empty journal.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	historyFile = "rca_history.json"

	// maxEntries bounds the journal; older runs fall off the end.
	maxEntries = 10
)

// Entry records one analysis run.
type Entry struct {
	RunID      uuid.UUID `json:"run_id"`
	Timestamp  time.Time `json:"timestamp"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	SiteLimit  int       `json:"site_limit"`
	Technology string    `json:"technology,omitempty"`
	Verdict    string    `json:"verdict"`
}

// Store persists the journal as a single JSON file under the data root.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a journal store rooted at dataRoot.
func NewStore(dataRoot string) *Store {
	return &Store{path: filepath.Join(dataRoot, historyFile)}
}

// Add prepends an entry and trims the journal to its cap.
func (s *Store) Add(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	entries = append([]Entry{entry}, entries...)
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	return s.save(entries)
}

// List returns the journal, newest first. A missing or unreadable file
// yields an empty journal rather than an error.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() []Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("history read failed", "path", s.path, "error", err)
		}
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("history file corrupt, starting fresh", "path", s.path, "error", err)
		return nil
	}
	return entries
}

func (s *Store) save(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("publish history: %w", err)
	}
	return nil
}
