// Package geo provides the pure geometry behind the coverage analysis
// engine: great-circle distance, initial compass bearing, angular offset
// between compass directions, and required-downtilt calculation.
//
// All functions are stateless, perform no I/O, and round results to one
// decimal place so repeated runs over identical inputs produce identical
// reports.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for great-circle math.
const EarthRadiusKm = 6371.0

// Round1 rounds v to one decimal place. All derived values in analysis
// reports pass through this so results are stable across runs.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Haversine returns the great-circle distance in kilometers between two
// coordinate pairs given in decimal degrees.
//
// Haversine(a, b, a, b) is always 0 and the function is symmetric in its
// two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return Round1(EarthRadiusKm * c)
}

// Bearing returns the initial compass bearing in degrees from point 1 to
// point 2, measured clockwise from north and normalized to [0, 360).
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dLambda := radians(lon2 - lon1)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)

	deg := math.Mod(degrees(math.Atan2(y, x))+360, 360)
	deg = Round1(deg)
	// Rounding 359.95..359.99 lands on 360.0, which is outside the range.
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// AngularOffset returns the minimal absolute angular difference in degrees
// between two compass directions, in [0, 180]. It measures how far an
// antenna boresight (azimuth) points away from the bearing to a target.
//
// Callers with an unknown azimuth must not call this; the offset is
// undefined in that case and the cell classifies as UNKNOWN instead.
func AngularOffset(azimuth, bearing float64) float64 {
	diff := math.Mod(math.Abs(azimuth-bearing), 360)
	if diff > 180 {
		diff = 360 - diff
	}
	return Round1(diff)
}

// RequiredTilt returns the downward antenna tilt in degrees whose main beam
// intersects ground level at distanceKm from an antenna heightM meters up.
// Non-positive distances clamp to 0.
func RequiredTilt(heightM, distanceKm float64) float64 {
	if distanceKm <= 0 {
		return 0
	}
	return Round1(degrees(math.Atan(heightM / (distanceKm * 1000))))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
