// Package export renders an analysis result as a downloadable report,
// either a multi-sheet XLSX workbook or a flat CSV of the per-cell records.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/RadioRCA/internal/rca"
)

// Sheet names in the report workbook.
const (
	sheetCells      = "Cells"
	sheetByDistance = "Top by distance"
	sheetByOffset   = "Top by offset"
	sheetVerdict    = "Verdict"
)

// cellHeader is the column order shared by the CSV export and the cell
// sheets of the workbook.
var cellHeader = []string{
	"site", "cell", "band", "channel",
	"latitude", "longitude",
	"distance_km", "bearing_deg", "azimuth_deg", "offset_deg",
	"height_m", "required_tilt_deg", "operational_tilt_deg",
	"horizontal_status", "vertical_status",
}

func cellRecord(c rca.Cell) []string {
	return []string{
		c.SiteID, c.CellID, c.Band, c.Channel,
		fmtFloat(c.Latitude), fmtFloat(c.Longitude),
		fmtFloat(c.DistanceKm), fmtFloat(c.BearingDeg),
		fmtFloatPtr(c.AzimuthDeg), fmtFloatPtr(c.OffsetDeg),
		fmtFloat(c.HeightM), fmtFloat(c.RequiredTiltDeg), fmtFloat(c.OperationalTiltDeg),
		string(c.HorizontalStatus), string(c.VerticalStatus),
	}
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func fmtFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return fmtFloat(*v)
}

// WriteCSV emits the per-cell records in the same dialect as the clean
// archive files. Unknown azimuth and offset render as empty fields.
func WriteCSV(w io.Writer, result *rca.AnalysisResult) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(cellHeader); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for _, c := range result.Cells {
		if err := cw.Write(cellRecord(c)); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteWorkbook emits the full report as an XLSX workbook with one sheet
// per ranking plus a verdict summary. The workbook opens on the verdict.
func WriteWorkbook(w io.Writer, result *rca.AnalysisResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeVerdictSheet(f, result); err != nil {
		return err
	}
	if err := writeCellSheet(f, sheetCells, result.Cells); err != nil {
		return err
	}
	if err := writeCellSheet(f, sheetByDistance, result.TopByDistance); err != nil {
		return err
	}
	if err := writeCellSheet(f, sheetByOffset, result.TopByOffset); err != nil {
		return err
	}

	idx, err := f.GetSheetIndex(sheetVerdict)
	if err != nil {
		return fmt.Errorf("locate verdict sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeCellSheet(f *excelize.File, name string, cells []rca.Cell) error {
	rows := make([][]string, 0, len(cells)+1)
	rows = append(rows, cellHeader)
	for _, c := range cells {
		rows = append(rows, cellRecord(c))
	}
	return fillSheet(f, name, rows)
}

func writeVerdictSheet(f *excelize.File, result *rca.AnalysisResult) error {
	tech := result.Technology
	if tech == "" {
		tech = "any"
	}
	rows := [][]string{
		{"Run", result.RunID.String()},
		{"Generated", result.GeneratedAt.Format(time.RFC3339)},
		{"Location", fmtFloat(result.UserCoords.Latitude) + ", " + fmtFloat(result.UserCoords.Longitude)},
		{"Technology", tech},
		{"Source table", result.SourceTable},
		{"Sites analyzed", strings.Join(result.Sites, ", ")},
		{"Verdict", result.Verdict},
	}
	for _, insight := range result.Insights {
		rows = append(rows, []string{"Insight", insight})
	}
	for _, note := range result.Notes {
		rows = append(rows, []string{"Note", note})
	}
	return fillSheet(f, sheetVerdict, rows)
}

func fillSheet(f *excelize.File, name string, rows [][]string) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("address %s row %d: %w", name, r+1, err)
			}
			if err := f.SetCellStr(name, cell, value); err != nil {
				return fmt.Errorf("fill %s!%s: %w", name, cell, err)
			}
		}
	}
	return nil
}
