package rca

import "testing"

func fptr(v float64) *float64 { return &v }

func TestClassifyHorizontal(t *testing.T) {
	tests := []struct {
		name   string
		offset *float64
		want   HorizontalStatus
	}{
		{name: "zero offset", offset: fptr(0), want: HorizontalDirect},
		{name: "direct upper edge", offset: fptr(30), want: HorizontalDirect},
		{name: "just past direct", offset: fptr(30.1), want: HorizontalSide},
		{name: "side upper edge", offset: fptr(70), want: HorizontalSide},
		{name: "far side", offset: fptr(90), want: HorizontalFarSide},
		{name: "far side upper edge", offset: fptr(120), want: HorizontalFarSide},
		{name: "behind the antenna", offset: fptr(120.1), want: HorizontalBack},
		{name: "opposite direction", offset: fptr(180), want: HorizontalBack},
		{name: "no azimuth data", offset: nil, want: HorizontalUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyHorizontal(tt.offset)
			if got != tt.want {
				t.Errorf("ClassifyHorizontal(%v) = %v, want %v", tt.offset, got, tt.want)
			}
		})
	}
}

func TestClassifyVertical(t *testing.T) {
	tests := []struct {
		name        string
		required    float64
		operational float64
		want        VerticalStatus
	}{
		{name: "exact match", required: 4.0, operational: 4.0, want: VerticalOK},
		{name: "within tolerance", required: 5.0, operational: 2.5, want: VerticalOK},
		{name: "tolerance edge", required: 6.0, operational: 3.0, want: VerticalOK},
		{name: "edge band", required: 7.0, operational: 3.0, want: VerticalEdge},
		{name: "edge band upper", required: 9.0, operational: 3.0, want: VerticalEdge},
		{name: "missed", required: 9.1, operational: 3.0, want: VerticalMissed},
		{name: "sign does not matter", required: 1.0, operational: 8.0, want: VerticalMissed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyVertical(tt.required, tt.operational)
			if got != tt.want {
				t.Errorf("ClassifyVertical(%v, %v) = %v, want %v", tt.required, tt.operational, got, tt.want)
			}
		})
	}
}
