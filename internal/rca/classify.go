package rca

import "math"

// Horizontal tolerance bounds in degrees, inclusive upper edges.
const (
	directLimitDeg  = 30.0
	sideLimitDeg    = 70.0
	farSideLimitDeg = 120.0
)

// Vertical tolerance bounds in degrees on |required - operational|.
const (
	tiltOKLimitDeg   = 3.0
	tiltEdgeLimitDeg = 6.0
)

// ClassifyHorizontal grades an angular offset. A nil offset means the
// design table carried no azimuth for the cell.
func ClassifyHorizontal(offsetDeg *float64) HorizontalStatus {
	switch {
	case offsetDeg == nil:
		return HorizontalUnknown
	case *offsetDeg <= directLimitDeg:
		return HorizontalDirect
	case *offsetDeg <= sideLimitDeg:
		return HorizontalSide
	case *offsetDeg <= farSideLimitDeg:
		return HorizontalFarSide
	default:
		return HorizontalBack
	}
}

// ClassifyVertical grades the distance between the geometrically required
// downtilt and the configured one.
func ClassifyVertical(requiredDeg, operationalDeg float64) VerticalStatus {
	delta := math.Abs(requiredDeg - operationalDeg)
	switch {
	case delta <= tiltOKLimitDeg:
		return VerticalOK
	case delta <= tiltEdgeLimitDeg:
		return VerticalEdge
	default:
		return VerticalMissed
	}
}
