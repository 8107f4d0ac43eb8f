// Package rca implements the coverage root-cause engine: it loads the
// latest design table, computes per-cell geometry toward a reported
// location, resolves each cell's operational tilt from configuration
// dumps, classifies antenna alignment, ranks candidates, and synthesizes
// a verdict naming the most plausible cause.
package rca

import (
	"time"

	"github.com/google/uuid"
)

// Stage names one step of the analysis pipeline. A request moves through
// the stages in order; ERROR is terminal and reachable from any of them.
type Stage string

const (
	StageLoading     Stage = "LOADING"
	StageMapping     Stage = "MAPPING"
	StageComputing   Stage = "COMPUTING"
	StageClassifying Stage = "CLASSIFYING"
	StageRanking     Stage = "RANKING"
	StageDone        Stage = "DONE"
	StageError       Stage = "ERROR"
)

// HorizontalStatus grades how far an antenna's boresight points away from
// the line to the reported location.
type HorizontalStatus string

const (
	HorizontalDirect  HorizontalStatus = "DIRECT"   // within the main lobe
	HorizontalSide    HorizontalStatus = "SIDE"     // side lobe territory
	HorizontalFarSide HorizontalStatus = "FAR_SIDE" // well off boresight
	HorizontalBack    HorizontalStatus = "BACK"     // behind the antenna
	HorizontalUnknown HorizontalStatus = "UNKNOWN"  // no azimuth data
)

// VerticalStatus grades the gap between required and operational downtilt.
type VerticalStatus string

const (
	VerticalOK     VerticalStatus = "V_OK"
	VerticalEdge   VerticalStatus = "EDGE"
	VerticalMissed VerticalStatus = "MISSED"
)

// AnalysisRequest describes one reported coverage problem. Immutable once
// submitted.
type AnalysisRequest struct {
	Latitude   float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude  float64 `json:"longitude" validate:"gte=-180,lte=180"`
	SiteLimit  int     `json:"site_limit" validate:"gte=1"`
	Technology string  `json:"technology,omitempty"`
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Cell is one design-table row enriched with derived geometry and
// classification. Built fresh per run, never persisted.
type Cell struct {
	SiteID  string `json:"site_id"`
	CellID  string `json:"cell_id"`
	Band    string `json:"band,omitempty"`
	Channel string `json:"channel,omitempty"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	DistanceKm float64  `json:"distance_km"`
	BearingDeg float64  `json:"bearing_deg"`
	AzimuthDeg *float64 `json:"azimuth_deg,omitempty"`
	OffsetDeg  *float64 `json:"offset_deg,omitempty"`

	HeightM            float64 `json:"height_m"`
	RequiredTiltDeg    float64 `json:"required_tilt_deg"`
	OperationalTiltDeg float64 `json:"operational_tilt_deg"`

	HorizontalStatus HorizontalStatus `json:"horizontal_status"`
	VerticalStatus   VerticalStatus   `json:"vertical_status"`

	// Defaulted flags record substitutions so the verdict is never silently
	// based on fabricated values.
	HeightDefaulted bool `json:"height_defaulted,omitempty"`
	TiltDefaulted   bool `json:"tilt_defaulted,omitempty"`
}

// AnalysisResult is the complete outcome of one run. The run id and
// timestamp are envelope metadata; everything else is deterministic for
// identical inputs.
type AnalysisResult struct {
	RunID       uuid.UUID   `json:"run_id"`
	GeneratedAt time.Time   `json:"generated_at"`
	Stage       Stage       `json:"stage"`
	UserCoords  Coordinates `json:"user_coords"`
	Technology  string      `json:"technology,omitempty"`
	SourceTable string      `json:"source_table"`

	Sites         []string `json:"sites_analyzed"`
	Cells         []Cell   `json:"cells"`
	TopByDistance []Cell   `json:"top_by_distance"`
	TopByOffset   []Cell   `json:"top_by_offset"`
	Verdict       string   `json:"verdict"`
	Insights      []string `json:"insights,omitempty"`
	Notes         []string `json:"notes,omitempty"`
}
