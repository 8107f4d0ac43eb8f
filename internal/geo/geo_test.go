package geo

import (
	"math"
	"testing"
)

func TestHaversineSelfDistance(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
	}{
		{"origin", 0, 0},
		{"mid latitude", 35.837097, 10.624853},
		{"southern hemisphere", -33.9, 18.4},
		{"date line", 64.2, 179.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Haversine(tt.lat, tt.lon, tt.lat, tt.lon); got != 0 {
				t.Errorf("Haversine(%v,%v,%v,%v) = %v, want 0", tt.lat, tt.lon, tt.lat, tt.lon, got)
			}
		})
	}
}

func TestHaversineSymmetry(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
	}{
		{"short hop", 35.837097, 10.624853, 35.842, 10.631},
		{"cross equator", -1.5, 30.0, 2.5, 31.5},
		{"long haul", 48.85, 2.35, 40.71, -74.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ab := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			ba := Haversine(tt.lat2, tt.lon2, tt.lat1, tt.lon1)
			if ab != ba {
				t.Errorf("Haversine not symmetric: %v vs %v", ab, ba)
			}
		})
	}
}

func TestHaversineKnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		// One degree of longitude on the equator is 2*pi*R/360.
		{"one degree equator", 0, 0, 0, 1, 111.2},
		{"one degree meridian", 0, 0, 1, 0, 111.2},
		{"half degree meridian", 0, 0, 0.5, 0, 55.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if got != tt.want {
				t.Errorf("Haversine(%v,%v,%v,%v) = %v, want %v", tt.lat1, tt.lon1, tt.lat2, tt.lon2, got, tt.want)
			}
		})
	}
}

func TestBearingCardinalDirections(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{"due north", 0, 0, 1, 0, 0},
		{"due east", 0, 0, 0, 1, 90},
		{"due south", 1, 0, 0, 0, 180},
		{"due west", 0, 1, 0, 0, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if got != tt.want {
				t.Errorf("Bearing(%v,%v,%v,%v) = %v, want %v", tt.lat1, tt.lon1, tt.lat2, tt.lon2, got, tt.want)
			}
		})
	}
}

func TestBearingRange(t *testing.T) {
	// Sweep point pairs around a center and verify the normalized range.
	center := [2]float64{35.837097, 10.624853}
	offsets := []float64{-0.02, -0.01, -0.005, 0.005, 0.01, 0.02}
	for _, dLat := range offsets {
		for _, dLon := range offsets {
			got := Bearing(center[0], center[1], center[0]+dLat, center[1]+dLon)
			if got < 0 || got >= 360 {
				t.Errorf("Bearing to (%v,%v) = %v, want value in [0,360)", center[0]+dLat, center[1]+dLon, got)
			}
		}
	}
}

func TestAngularOffset(t *testing.T) {
	tests := []struct {
		name             string
		azimuth, bearing float64
		want             float64
	}{
		{"identical headings", 120, 120, 0},
		{"identical at north", 0, 0, 0},
		{"opposite headings", 0, 180, 180},
		{"opposite wrapped", 270, 90, 180},
		{"wrap around north low", 350, 10, 20},
		{"wrap around north high", 10, 350, 20},
		{"quarter turn", 0, 90, 90},
		{"small clockwise", 45, 60, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AngularOffset(tt.azimuth, tt.bearing)
			if got != tt.want {
				t.Errorf("AngularOffset(%v, %v) = %v, want %v", tt.azimuth, tt.bearing, got, tt.want)
			}
		})
	}
}

func TestAngularOffsetRange(t *testing.T) {
	for az := 0.0; az < 360; az += 15 {
		for b := 0.0; b < 360; b += 15 {
			got := AngularOffset(az, b)
			if got < 0 || got > 180 {
				t.Errorf("AngularOffset(%v, %v) = %v, want value in [0,180]", az, b, got)
			}
		}
	}
}

func TestAngularOffsetSelfAndOpposite(t *testing.T) {
	for az := 0.0; az < 360; az += 30 {
		if got := AngularOffset(az, az); got != 0 {
			t.Errorf("AngularOffset(%v, %v) = %v, want 0", az, az, got)
		}
		opposite := math.Mod(az+180, 360)
		if got := AngularOffset(az, opposite); got != 180 {
			t.Errorf("AngularOffset(%v, %v) = %v, want 180", az, opposite, got)
		}
	}
}

func TestRequiredTilt(t *testing.T) {
	tests := []struct {
		name       string
		heightM    float64
		distanceKm float64
		want       float64
	}{
		{"zero distance clamps", 30, 0, 0},
		{"negative distance clamps", 30, -1, 0},
		{"30m at 1km", 30, 1, 1.7},
		{"30m at 500m", 30, 0.5, 3.4},
		{"30m at 100m", 30, 0.1, 16.7},
		{"tall mast close in", 60, 0.1, 31.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequiredTilt(tt.heightM, tt.distanceKm)
			if got != tt.want {
				t.Errorf("RequiredTilt(%v, %v) = %v, want %v", tt.heightM, tt.distanceKm, got, tt.want)
			}
		})
	}
}

func TestRequiredTiltDecreasesWithDistance(t *testing.T) {
	distances := []float64{0.1, 0.5, 1, 2, 5, 10}
	prev := math.Inf(1)
	for _, d := range distances {
		got := RequiredTilt(30, d)
		if got >= prev {
			t.Errorf("RequiredTilt(30, %v) = %v, want value below %v", d, got, prev)
		}
		prev = got
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{"rounds down", 1.24, 1.2},
		{"rounds up", 1.25, 1.3},
		{"negative", -2.35, -2.4},
		{"already rounded", 5.5, 5.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round1(tt.input); got != tt.want {
				t.Errorf("Round1(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
