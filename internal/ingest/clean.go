package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/RadioRCA/internal/apperr"
	"github.com/JonMunkholm/RadioRCA/internal/archive"
	"github.com/JonMunkholm/RadioRCA/internal/schema"
)

// Service runs the ingest pipeline: accept an uploaded table, detect its
// layout, validate the category's required roles, and publish a normalized
// clean CSV to the archive.
type Service struct {
	store   *archive.Store
	limiter *Limiter
}

// NewService creates an ingest service backed by the given archive store.
// A nil limiter gets the defaults.
func NewService(store *archive.Store, limiter *Limiter) *Service {
	if limiter == nil {
		limiter = NewLimiter(DefaultMaxConcurrentIngests, DefaultMaxWaitTime)
	}
	return &Service{store: store, limiter: limiter}
}

// Limiter exposes the concurrency limiter for status reporting.
func (s *Service) Limiter() *Limiter { return s.limiter }

// CleanResult summarizes one completed ingest run.
type CleanResult struct {
	RunID       uuid.UUID       `json:"run_id"`
	Category    schema.Category `json:"category"`
	SourceFile  string          `json:"source_file"`
	CleanFile   string          `json:"clean_file"`
	Rows        int             `json:"rows"`
	SkippedRows int             `json:"skipped_rows"`
	Layout      Layout          `json:"layout"`
	Roles       ColumnMapping   `json:"roles"`
	Notes       []string        `json:"notes,omitempty"`
}

// CleanUpload ingests one uploaded table into the category's archive. The
// raw bytes are spooled to a temporary file so layout detection can re-read
// them per encoding attempt. Returns the published result or an error that
// carries the failure kind.
func (s *Service) CleanUpload(ctx context.Context, category, filename string, src io.Reader) (*CleanResult, error) {
	const op = "ingest.CleanUpload"

	def, ok := schema.Get(category)
	if !ok {
		return nil, apperr.Newf(apperr.KindValidation, op, "unknown category %q", category)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("acquire ingest slot: %w", err)
	}
	defer s.limiter.Release()

	tmpPath, err := spoolUpload(filename, src)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDataUnavailable, op, "spool upload", err)
	}
	defer os.Remove(tmpPath)

	table, err := LoadTable(tmpPath, def.Anchors)
	if err != nil {
		return nil, err
	}
	table.Name = filepath.Base(filename)

	if err := table.RequireRoles(def.RequiredRoles...); err != nil {
		return nil, err
	}

	name := archive.CleanName(filename, time.Now())
	path, err := s.store.Write(def.Key, name, func(w io.Writer) error {
		return writeCleanCSV(w, table)
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDataUnavailable, op, "publish clean file", err)
	}

	res := &CleanResult{
		RunID:       uuid.New(),
		Category:    def.Key,
		SourceFile:  table.Name,
		CleanFile:   filepath.Base(path),
		Rows:        table.Len(),
		SkippedRows: table.SkippedRows,
		Layout:      table.Layout,
		Roles:       table.Roles,
		Notes:       table.Notes,
	}

	slog.Info("ingest complete",
		"run_id", res.RunID,
		"category", res.Category,
		"source", res.SourceFile,
		"clean", res.CleanFile,
		"rows", res.Rows,
		"skipped", res.SkippedRows,
		"encoding", res.Layout.Encoding,
		"delimiter", res.Layout.DelimiterName(),
	)
	return res, nil
}

// spoolUpload copies the raw upload to a temp file, preserving the
// extension so workbook files route correctly.
func spoolUpload(filename string, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	f, err := os.CreateTemp("", "ingest-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// writeCleanCSV emits the normalized table: UTF-8, semicolon-delimited,
// header first, cleaned cells.
func writeCleanCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
