package rca

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/JonMunkholm/RadioRCA/internal/apperr"
	"github.com/JonMunkholm/RadioRCA/internal/archive"
	"github.com/JonMunkholm/RadioRCA/internal/geo"
	"github.com/JonMunkholm/RadioRCA/internal/ingest"
	"github.com/JonMunkholm/RadioRCA/internal/schema"
)

// DefaultSiteLimit applies when a caller leaves the limit unset.
const DefaultSiteLimit = 1

// Engine drives analysis requests through the pipeline stages. It is
// stateless across runs: every request loads its own table snapshot, so
// concurrent Analyze calls need no locking.
type Engine struct {
	store    *archive.Store
	resolver *Resolver
	validate *validator.Validate
}

// NewEngine creates an engine reading from the given archive store.
func NewEngine(store *archive.Store) *Engine {
	return &Engine{
		store:    store,
		resolver: NewResolver(store),
		validate: validator.New(),
	}
}

// Analyze runs one request to completion and returns the full diagnosis.
// Fatal conditions (no table, unmappable coordinates, invalid request)
// return a typed error; everything else degrades onto the result.
func (e *Engine) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	const op = "rca.Analyze"

	stage := StageLoading
	fail := func(err error) (*AnalysisResult, error) {
		slog.Error("analysis failed", "stage", string(stage), "error", err)
		stage = StageError
		return nil, err
	}

	if err := e.validate.StructCtx(ctx, req); err != nil {
		return fail(apperr.Wrap(apperr.KindValidation, op, "invalid analysis request", err))
	}

	file, ok := e.store.Latest(schema.CategoryDatabase, req.Technology)
	if !ok {
		if req.Technology != "" {
			return fail(apperr.Newf(apperr.KindDataUnavailable, op,
				"no design table in archive matching technology %q", req.Technology))
		}
		return fail(apperr.New(apperr.KindDataUnavailable, op, "no design table in archive"))
	}

	def, _ := schema.Get(string(schema.CategoryDatabase))
	table, err := ingest.LoadTable(file.Path, def.Anchors)
	if err != nil {
		return fail(err)
	}

	stage = StageMapping
	if err := table.RequireRoles(schema.RoleLatitude, schema.RoleLongitude); err != nil {
		return fail(err)
	}
	rows, malformed := table.DesignRows()
	if len(rows) == 0 {
		return fail(apperr.Newf(apperr.KindDataUnavailable, op, "%s has no usable rows", table.Name))
	}

	stage = StageComputing
	type measured struct {
		row  ingest.DesignRow
		dist float64
	}
	measures := make([]measured, len(rows))
	for i, row := range rows {
		measures[i] = measured{row: row, dist: geo.Haversine(req.Latitude, req.Longitude, row.Lat, row.Lon)}
	}

	// Nearest distinct sites in distance order; a stable sort keeps ties in
	// original row order.
	nearest := make([]measured, len(measures))
	copy(nearest, measures)
	sort.SliceStable(nearest, func(i, j int) bool { return nearest[i].dist < nearest[j].dist })

	selected := make([]string, 0, req.SiteLimit)
	chosen := make(map[string]bool, req.SiteLimit)
	for _, m := range nearest {
		if chosen[m.row.SiteID] {
			continue
		}
		chosen[m.row.SiteID] = true
		selected = append(selected, m.row.SiteID)
		if len(selected) == req.SiteLimit {
			break
		}
	}

	tilts := e.resolver.LoadTiltTable(req.Technology)

	var cells []Cell
	tiltDefaults := 0
	for _, siteID := range selected {
		for _, m := range measures {
			if m.row.SiteID != siteID {
				continue
			}
			cells = append(cells, buildCell(req, m.row, m.dist, tilts, &tiltDefaults))
		}
	}

	stage = StageClassifying
	for i := range cells {
		cells[i].HorizontalStatus = ClassifyHorizontal(cells[i].OffsetDeg)
		cells[i].VerticalStatus = ClassifyVertical(cells[i].RequiredTiltDeg, cells[i].OperationalTiltDeg)
	}

	stage = StageRanking
	topByDistance := topCellsByDistance(cells, 3)
	topByOffset := topCellsByOffset(cells, 3)

	stage = StageDone
	best := bestCell(cells)

	notes := append([]string(nil), table.Notes...)
	if malformed > 0 {
		notes = append(notes, fmt.Sprintf("%d rows skipped: unparseable coordinates", malformed))
	}
	if tiltDefaults > 0 {
		notes = append(notes, fmt.Sprintf("operational tilt defaulted to 0 for %d cells (no configuration match)", tiltDefaults))
	}

	res := &AnalysisResult{
		RunID:         uuid.New(),
		GeneratedAt:   time.Now().UTC(),
		Stage:         stage,
		UserCoords:    Coordinates{Latitude: req.Latitude, Longitude: req.Longitude},
		Technology:    req.Technology,
		SourceTable:   table.Name,
		Sites:         selected,
		Cells:         cells,
		TopByDistance: topByDistance,
		TopByOffset:   topByOffset,
		Verdict:       synthesizeVerdict(best),
		Insights:      deriveInsights(cells, best),
		Notes:         notes,
	}

	slog.Info("analysis complete",
		"run_id", res.RunID,
		"source", res.SourceTable,
		"sites", len(selected),
		"cells", len(cells),
		"skipped_rows", malformed,
	)
	return res, nil
}

// buildCell derives the geometry and parameter fields for one design row.
func buildCell(req AnalysisRequest, row ingest.DesignRow, dist float64, tilts *TiltTable, tiltDefaults *int) Cell {
	cell := Cell{
		SiteID:          row.SiteID,
		CellID:          row.CellID,
		Channel:         row.Channel,
		Latitude:        row.Lat,
		Longitude:       row.Lon,
		DistanceKm:      dist,
		BearingDeg:      geo.Bearing(req.Latitude, req.Longitude, row.Lat, row.Lon),
		HeightM:         row.HeightM,
		HeightDefaulted: row.HeightDefaulted,
	}

	if row.Azimuth != nil {
		az := *row.Azimuth
		off := geo.AngularOffset(az, cell.BearingDeg)
		cell.AzimuthDeg = &az
		cell.OffsetDeg = &off
	}
	cell.RequiredTiltDeg = geo.RequiredTilt(row.HeightM, dist)

	if res, ok := tilts.Lookup(row.SiteID, row.CellID); ok {
		cell.OperationalTiltDeg = res.TiltDeg
		cell.Band = res.Band
	} else {
		cell.TiltDefaulted = true
		*tiltDefaults++
	}

	// A mapped channel value beats the naming-convention heuristic.
	if band, ok := BandForChannel(row.Channel); ok {
		cell.Band = band
	} else if cell.Band == "" {
		if _, band, ok := SectorBand(row.CellID); ok {
			cell.Band = band
		}
	}

	return cell
}
