package rca

// resolver.go joins a cell's naming convention to the operator's physical
// parameters: the final character of a cell identifier encodes its sector
// group and band, and the latest configuration dump holds the electrical
// tilt actually set on that sector. Every failure mode here degrades to
// "unavailable"; a missing tilt must never sink an analysis.

import (
	"log/slog"
	"strings"

	"github.com/JonMunkholm/RadioRCA/internal/archive"
	"github.com/JonMunkholm/RadioRCA/internal/geo"
	"github.com/JonMunkholm/RadioRCA/internal/ingest"
	"github.com/JonMunkholm/RadioRCA/internal/schema"
)

// sectorBySuffix maps a cell identifier's final character to its sector
// group. Characters are matched upper-cased.
var sectorBySuffix = map[byte]int{
	'A': 1, 'O': 1, 'X': 1, 'R': 1,
	'B': 2, 'P': 2, 'Y': 2, 'S': 2,
	'C': 3, 'Q': 3, 'Z': 3, 'T': 3,
}

// bandBySuffix maps the same character to the band tag the naming
// convention encodes.
var bandBySuffix = map[byte]string{
	'A': "L2100", 'B': "L2100", 'C': "L2100", 'D': "L2100",
	'X': "L1800", 'Y': "L1800", 'Z': "L1800", 'L': "L1800",
	'O': "L800", 'P': "L800", 'Q': "L800", 'N': "L800",
	'R': "N700", 'S': "N700", 'T': "N700",
}

// bandByChannel maps LTE EARFCN and NR ARFCN values to band tags, for
// design tables that carry a frequency channel column.
var bandByChannel = map[int]string{
	6200:   "L800",
	1350:   "L1800",
	1375:   "L1800",
	251:    "L2100",
	276:    "L2100",
	361490: "N3500",
	361970: "N3500",
	647328: "N700",
	644056: "N700",
}

// SectorBand derives the sector group and band tag from a cell
// identifier's final character. ok is false when the character maps to
// neither table, a defined "unknown" rather than an error.
func SectorBand(cellID string) (sector int, band string, ok bool) {
	cellID = strings.TrimSpace(cellID)
	if cellID == "" {
		return 0, "", false
	}
	suffix := cellID[len(cellID)-1]
	if suffix >= 'a' && suffix <= 'z' {
		suffix -= 'a' - 'A'
	}

	sector, sectorOK := sectorBySuffix[suffix]
	band, bandOK := bandBySuffix[suffix]
	if !sectorOK && !bandOK {
		return 0, "", false
	}
	return sector, band, true
}

// BandForChannel maps a raw channel cell (EARFCN or NR-ARFCN) to a band
// tag. Unparseable or unmapped channels report false.
func BandForChannel(raw string) (string, bool) {
	v, err := ingest.ParseFloatCell(raw)
	if err != nil {
		return "", false
	}
	band, ok := bandByChannel[int(v)]
	return band, ok
}

// Keywords resolving the configuration-dump columns that sit outside the
// shared role vocabulary.
var (
	sectorKeywords = []string{"sector", "sect"}
	bandKeywords   = []string{"band", "carrier"}
)

// Resolver loads configuration dumps from the archive and answers
// per-cell operational tilt lookups against them.
type Resolver struct {
	store *archive.Store
}

// NewResolver creates a resolver reading from the given archive store.
func NewResolver(store *archive.Store) *Resolver {
	return &Resolver{store: store}
}

// TiltResult is one successful operational-tilt resolution.
type TiltResult struct {
	TiltDeg float64
	Band    string
}

// TiltTable is one loaded configuration dump indexed for lookups. A zero
// table (nothing loaded, columns unresolved) answers every lookup with
// "unavailable", which keeps the caller's degradation path uniform.
type TiltTable struct {
	table *ingest.Table
	name  string

	siteCol   string
	sectorCol string
	bandCol   string
	tiltCol   string
	usable    bool
}

// Name returns the clean file the table was loaded from, or "" when no
// table was available.
func (t *TiltTable) Name() string { return t.name }

// LoadTiltTable loads the latest configuration dump for the technology
// tag. Missing archives, unreadable files, and unresolvable columns all
// return a table that only answers "unavailable"; the conditions are
// logged once here instead of once per cell.
func (r *Resolver) LoadTiltTable(tech string) *TiltTable {
	file, ok := r.store.Latest(schema.CategoryCM, tech)
	if !ok {
		slog.Debug("no configuration dump in archive", "technology", tech)
		return &TiltTable{}
	}

	def, _ := schema.Get(string(schema.CategoryCM))
	table, err := ingest.LoadTable(file.Path, def.Anchors)
	if err != nil {
		slog.Warn("configuration dump unreadable, tilts will default", "file", file.Name, "error", err)
		return &TiltTable{name: file.Name}
	}

	tt := &TiltTable{table: table, name: file.Name}
	tt.siteCol = ingest.ResolveColumn(table.Headers, schema.RoleSiteID, "")
	tt.tiltCol = ingest.ResolveColumn(table.Headers, schema.RoleTilt, "")
	tt.sectorCol, _ = ingest.FindColumn(table.Headers, sectorKeywords)
	tt.bandCol, _ = ingest.FindColumn(table.Headers, bandKeywords)

	if tt.siteCol == "" || tt.tiltCol == "" || tt.sectorCol == "" || tt.bandCol == "" {
		slog.Warn("configuration dump missing lookup columns, tilts will default",
			"file", file.Name,
			"site", tt.siteCol, "sector", tt.sectorCol, "band", tt.bandCol, "tilt", tt.tiltCol)
		return tt
	}
	tt.usable = true
	return tt
}

// Lookup resolves the operational tilt and band for one cell. ok is false
// when the suffix is unmapped, no usable table is loaded, no row matches
// the site/sector/band filter, or the tilt field fails to parse.
func (t *TiltTable) Lookup(siteID, cellID string) (TiltResult, bool) {
	sector, band, ok := SectorBand(cellID)
	if !ok || !t.usable {
		return TiltResult{}, false
	}

	siteNeedle := strings.ToLower(strings.TrimSpace(siteID))
	bandNeedle := strings.ToLower(band)

	for i := 0; i < t.table.Len(); i++ {
		site, ok := t.table.Column(i, t.siteCol)
		if !ok || !strings.Contains(strings.ToLower(site), siteNeedle) {
			continue
		}

		sectorRaw, ok := t.table.Column(i, t.sectorCol)
		if !ok {
			continue
		}
		sectorVal, err := ingest.ParseFloatCell(sectorRaw)
		if err != nil || int(sectorVal) != sector {
			continue
		}

		bandRaw, ok := t.table.Column(i, t.bandCol)
		if !ok || !strings.Contains(strings.ToLower(bandRaw), bandNeedle) {
			continue
		}

		tiltRaw, ok := t.table.Column(i, t.tiltCol)
		if !ok {
			return TiltResult{}, false
		}
		tenths, err := ingest.ParseFloatCell(tiltRaw)
		if err != nil {
			return TiltResult{}, false
		}
		return TiltResult{TiltDeg: geo.Round1(tenths / 10), Band: band}, true
	}

	return TiltResult{}, false
}
