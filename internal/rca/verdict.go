package rca

import (
	"fmt"
	"math"
	"sort"
)

// Insight thresholds. Distances in km, offsets in degrees.
const (
	farBestThresholdKm     = 3.5
	nearCandidateKm        = 2.0
	nearCandidateOffsetDeg = 25.0
)

// offsetOrMax returns the cell's offset, or +Inf when the offset is
// undefined so those cells sort last.
func offsetOrMax(c Cell) float64 {
	if c.OffsetDeg == nil {
		return math.Inf(1)
	}
	return *c.OffsetDeg
}

func topCellsByDistance(cells []Cell, n int) []Cell {
	out := append([]Cell(nil), cells...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func topCellsByOffset(cells []Cell, n int) []Cell {
	out := append([]Cell(nil), cells...)
	sort.SliceStable(out, func(i, j int) bool { return offsetOrMax(out[i]) < offsetOrMax(out[j]) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// bestCell picks the cell the verdict is written about: smallest angular
// offset, ties broken by smallest distance, undefined offsets last.
func bestCell(cells []Cell) Cell {
	best := cells[0]
	for _, c := range cells[1:] {
		oc, ob := offsetOrMax(c), offsetOrMax(best)
		if oc < ob || (oc == ob && c.DistanceKm < best.DistanceKm) {
			best = c
		}
	}
	return best
}

// synthesizeVerdict writes the final diagnosis for the best cell. The
// precedence is inherited behavior and must not be reordered: a sweet spot
// requires both axes in tolerance, and a horizontal mismatch is reported
// before any vertical problem.
func synthesizeVerdict(best Cell) string {
	if best.OffsetDeg == nil {
		return fmt.Sprintf(
			"Offset unknown: the design table carries no azimuth data; nearest analyzed cell %s at site %s is %.1f km away.",
			best.CellID, best.SiteID, best.DistanceKm)
	}

	offset := *best.OffsetDeg
	switch {
	case offset <= directLimitDeg && best.VerticalStatus == VerticalOK:
		return fmt.Sprintf(
			"Sweet spot: cell %s at site %s covers the location (offset %.1f°, tilt within tolerance).",
			best.CellID, best.SiteID, offset)
	case offset > directLimitDeg:
		return fmt.Sprintf(
			"Horizontal mismatch: best cell %s at site %s points %.1f° away from the location; check azimuth before tilt.",
			best.CellID, best.SiteID, offset)
	default:
		return fmt.Sprintf(
			"Vertical mismatch: cell %s at site %s faces the location (offset %.1f°) but its tilt misses by %.1f° (required %.1f°, set %.1f°).",
			best.CellID, best.SiteID, offset,
			math.Abs(best.RequiredTiltDeg-best.OperationalTiltDeg),
			best.RequiredTiltDeg, best.OperationalTiltDeg)
	}
}

// deriveInsights adds context the verdict alone does not carry: plain
// distance as a cause, and a strong nearby candidate worth checking.
func deriveInsights(cells []Cell, best Cell) []string {
	var insights []string

	if best.DistanceKm > farBestThresholdKm {
		insights = append(insights, fmt.Sprintf(
			"Best candidate %s is %.1f km out; distance alone can explain weak coverage.",
			best.CellID, best.DistanceKm))
	}

	for _, c := range cells {
		if c.OffsetDeg != nil && c.DistanceKm < nearCandidateKm && *c.OffsetDeg < nearCandidateOffsetDeg {
			insights = append(insights, fmt.Sprintf(
				"Cell %s at site %s sits %.1f km away pointing within %.1f° of the location; it is the natural serving candidate.",
				c.CellID, c.SiteID, c.DistanceKm, *c.OffsetDeg))
			break
		}
	}

	return insights
}
