package ingest

// table.go loads a raw export into a normalized table: lines decoded per
// the sniffed layout, header resolved to semantic roles, malformed rows
// skipped individually and counted rather than failing the load.

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/RadioRCA/internal/apperr"
	"github.com/JonMunkholm/RadioRCA/internal/schema"
)

// DefaultHeightM substitutes for a missing height column or cell. The
// classification thresholds downstream were tuned against this value.
const DefaultHeightM = 30.0

// Table is a normalized table: raw rows plus the role mapping resolved for
// this particular file. It records every degradation that occurred during
// the load so results never hide fabricated data.
type Table struct {
	Path    string
	Name    string
	Layout  Layout
	Headers []string
	Index   HeaderIndex
	Roles   ColumnMapping
	Rows    [][]string

	// SkippedRows counts records dropped because their fields could not
	// parse as a row at all. Empty lines are not counted.
	SkippedRows int

	// Notes lists human-readable degradations (default layout applied,
	// malformed rows skipped, roles missing).
	Notes []string
}

// LoadTable reads the file at path into a normalized table, sniffing the
// layout with the given anchor keywords. XLSX workbooks are read through
// their first sheet; everything else goes through the encoding ladder.
func LoadTable(path string, anchors []string) (*Table, error) {
	const op = "ingest.LoadTable"

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" || ext == ".xlsm" {
		return loadWorkbook(path, anchors)
	}

	layout, err := DetectLayout(path, anchors)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDataUnavailable, op, fmt.Sprintf("open %s", filepath.Base(path)), err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDataUnavailable, op, fmt.Sprintf("open %s", filepath.Base(path)), err)
	}
	defer f.Close()

	// Layout detection already validated the region up to the header; data
	// rows beyond it may still carry stray bytes. Sanitizing here keeps one
	// bad cell from leaking invalid UTF-8 into the clean output.
	var body io.Reader = DecodeReader(f, layout.Encoding)
	if layout.Encoding == EncodingUTF8 {
		body = NewUTF8SanitizingReader(body)
	}
	lines, err := readLines(body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDataUnavailable, op, fmt.Sprintf("read %s", filepath.Base(path)), err)
	}
	if layout.HeaderRow >= len(lines) {
		return nil, apperr.Newf(apperr.KindSchemaMismatch, op, "%s has no header row", filepath.Base(path))
	}

	t := newTable(path, layout)
	if layout.Degraded {
		t.Notes = append(t.Notes, "no encoding produced a recognizable header; default layout applied")
	}
	t.parseCSV(strings.Join(lines[layout.HeaderRow:], "\n"))
	t.resolve()
	return t, nil
}

// loadWorkbook reads the first sheet of an XLSX export. Encoding and
// delimiter do not apply; only the header row needs hunting.
func loadWorkbook(path string, anchors []string) (*Table, error) {
	const op = "ingest.LoadTable"

	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDataUnavailable, op, fmt.Sprintf("open workbook %s", filepath.Base(path)), err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Newf(apperr.KindSchemaMismatch, op, "%s has no sheets", filepath.Base(path))
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDataUnavailable, op, fmt.Sprintf("read sheet %s", sheets[0]), err)
	}
	if len(rows) == 0 {
		return nil, apperr.Newf(apperr.KindSchemaMismatch, op, "%s is empty", filepath.Base(path))
	}

	layout := Layout{HeaderRow: 0, Delimiter: ',', Encoding: EncodingUTF8}
	headerIdx := findHeaderRow(rows, anchors)
	if headerIdx < 0 {
		layout.Degraded = true
		headerIdx = 0
	}
	layout.HeaderRow = headerIdx

	t := newTable(path, layout)
	if layout.Degraded {
		t.Notes = append(t.Notes, "no sheet row matched an anchor keyword; first row assumed to be the header")
	}
	t.setHeader(rows[headerIdx])
	for _, row := range rows[headerIdx+1:] {
		if isEmptyRow(row) {
			continue
		}
		t.Rows = append(t.Rows, cleanRow(row))
	}
	t.resolve()
	return t, nil
}

func newTable(path string, layout Layout) *Table {
	return &Table{
		Path:   path,
		Name:   filepath.Base(path),
		Layout: layout,
	}
}

// parseCSV consumes the header line and data body. Records that fail CSV
// parsing are skipped individually and counted; a malformed row must never
// sink the whole load.
func (t *Table) parseCSV(body string) {
	r := csv.NewReader(strings.NewReader(body))
	r.Comma = t.Layout.Delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.SkippedRows++
			continue
		}
		if first {
			t.setHeader(record)
			first = false
			continue
		}
		if isEmptyRow(record) {
			continue
		}
		t.Rows = append(t.Rows, cleanRow(record))
	}

	if t.SkippedRows > 0 {
		t.Notes = append(t.Notes, fmt.Sprintf("%d malformed rows skipped", t.SkippedRows))
	}
}

func (t *Table) setHeader(record []string) {
	headers := make([]string, len(record))
	for i, h := range record {
		headers[i] = CleanCell(h)
	}
	t.Headers = headers
	t.Index = MakeHeaderIndex(headers)
}

// resolve builds the role mapping and records which optional roles are
// missing so downstream defaults are visible in the result.
func (t *Table) resolve() {
	t.Roles = MapColumns(t.Headers)
	for _, role := range []schema.Role{schema.RoleAzimuth, schema.RoleHeight, schema.RoleTilt} {
		if !t.Roles.Has(role) {
			t.Notes = append(t.Notes, fmt.Sprintf("no %s column mapped", role))
		}
	}
}

// RequireRoles returns a SchemaMismatch error naming the first role in
// want that did not resolve.
func (t *Table) RequireRoles(want ...schema.Role) error {
	for _, role := range want {
		if !t.Roles.Has(role) {
			return apperr.Newf(apperr.KindSchemaMismatch, "ingest.RequireRoles",
				"%s: no column matches role %q", t.Name, string(role))
		}
	}
	return nil
}

// Value returns the cleaned cell for a role in data row i. ok is false when
// the role is unmapped, the row is short, or the cell is blank.
func (t *Table) Value(i int, role schema.Role) (string, bool) {
	name, mapped := t.Roles[role]
	if !mapped || i < 0 || i >= len(t.Rows) {
		return "", false
	}
	pos, found := t.Index[strings.ToLower(name)]
	if !found || pos >= len(t.Rows[i]) {
		return "", false
	}
	v := t.Rows[i][pos]
	return v, v != ""
}

// Column returns the cleaned cell under the physical header name for data
// row i. Used for columns outside the role vocabulary, like the sector and
// band fields of configuration tables.
func (t *Table) Column(i int, header string) (string, bool) {
	pos, found := t.Index[strings.ToLower(header)]
	if !found || i < 0 || i >= len(t.Rows) || pos >= len(t.Rows[i]) {
		return "", false
	}
	v := t.Rows[i][pos]
	return v, v != ""
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// DesignRow is one geolocated antenna record extracted from a design table.
type DesignRow struct {
	Row     int
	SiteID  string
	CellID  string
	Lat     float64
	Lon     float64
	Azimuth *float64
	HeightM float64
	Channel string

	HeightDefaulted bool
}

// DesignRows extracts typed rows for geospatial use. Rows whose coordinates
// fail to parse are skipped and counted into the second return; callers
// must surface that count. Height falls back to DefaultHeightM, azimuth
// stays nil when unavailable.
func (t *Table) DesignRows() ([]DesignRow, int) {
	rows := make([]DesignRow, 0, len(t.Rows))
	malformed := 0

	for i := range t.Rows {
		latRaw, ok := t.Value(i, schema.RoleLatitude)
		if !ok {
			malformed++
			continue
		}
		lonRaw, ok := t.Value(i, schema.RoleLongitude)
		if !ok {
			malformed++
			continue
		}
		lat, err1 := ParseFloatCell(latRaw)
		lon, err2 := ParseFloatCell(lonRaw)
		if err1 != nil || err2 != nil {
			malformed++
			continue
		}

		row := DesignRow{Row: i, Lat: lat, Lon: lon, HeightM: DefaultHeightM, HeightDefaulted: true}

		site, _ := t.Value(i, schema.RoleSiteID)
		cell, _ := t.Value(i, schema.RoleCellID)
		switch {
		case site == "" && cell == "":
			site = fmt.Sprintf("row-%d", i+1)
			cell = site
		case site == "":
			site = cell
		case cell == "":
			cell = site
		}
		row.SiteID, row.CellID = site, cell

		if raw, ok := t.Value(i, schema.RoleAzimuth); ok {
			if az, err := ParseFloatCell(raw); err == nil {
				row.Azimuth = &az
			}
		}
		if raw, ok := t.Value(i, schema.RoleHeight); ok {
			if h, err := ParseFloatCell(raw); err == nil {
				row.HeightM = h
				row.HeightDefaulted = false
			}
		}
		if raw, ok := t.Value(i, schema.RoleChannel); ok {
			row.Channel = raw
		}

		rows = append(rows, row)
	}

	return rows, malformed
}

// ParseFloatCell parses a numeric cell, accepting the comma decimal
// separator European exports use.
func ParseFloatCell(s string) (float64, error) {
	s = strings.ReplaceAll(CleanCell(s), ",", ".")
	return strconv.ParseFloat(s, 64)
}

// readLines collects decoded lines, bounded per line by maxLineBytes.
func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// findHeaderRow scans the first MaxHeaderSearchRows sheet rows for one
// containing any anchor keyword, mirroring the text-file header hunt.
// Returns -1 when no row matches.
func findHeaderRow(rows [][]string, anchors []string) int {
	lowered := make([]string, len(anchors))
	for i, a := range anchors {
		lowered[i] = strings.ToLower(a)
	}

	limit := min(len(rows), MaxHeaderSearchRows)
	for i := 0; i < limit; i++ {
		joined := strings.ToLower(strings.Join(rows[i], " "))
		for _, anchor := range lowered {
			if strings.Contains(joined, anchor) {
				return i
			}
		}
	}
	return -1
}

func cleanRow(record []string) []string {
	row := make([]string, len(record))
	for i, cell := range record {
		row[i] = CleanCell(cell)
	}
	return row
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
