package ingest

import (
	"github.com/JonMunkholm/RadioRCA/internal/schema"
)

// DefaultPreviewRows caps how many data rows a preview returns.
const DefaultPreviewRows = 10

// PreviewResult is a truncated view of an archived table, enough to verify
// the layout detection and column mapping without shipping the whole file.
type PreviewResult struct {
	File      string        `json:"file"`
	Layout    Layout        `json:"layout"`
	Headers   []string      `json:"headers"`
	Roles     ColumnMapping `json:"roles"`
	Rows      [][]string    `json:"rows"`
	TotalRows int           `json:"total_rows"`
	Notes     []string      `json:"notes,omitempty"`
}

// Preview loads a table and returns its first limit data rows. A limit of
// zero or less uses DefaultPreviewRows.
func Preview(path string, def schema.CategoryDef, limit int) (*PreviewResult, error) {
	if limit <= 0 {
		limit = DefaultPreviewRows
	}

	t, err := LoadTable(path, def.Anchors)
	if err != nil {
		return nil, err
	}

	rows := t.Rows
	if len(rows) > limit {
		rows = rows[:limit]
	}

	return &PreviewResult{
		File:      t.Name,
		Layout:    t.Layout,
		Headers:   t.Headers,
		Roles:     t.Roles,
		Rows:      rows,
		TotalRows: t.Len(),
		Notes:     t.Notes,
	}, nil
}
