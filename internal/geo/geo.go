// Package geo holds the small set of geodetic primitives shared by the
// trajectory generator, the platform recommender and the exporters.
package geo

import "math"

const (
	// EarthRadiusM is the WGS84 semi-major axis, used for local offsets.
	EarthRadiusM = 6378137.0
	// MeanEarthRadiusM is the mean Earth radius, used for great-circle
	// distances.
	MeanEarthRadiusM = 6371000.0
)

// OffsetLatLng shifts a geodetic position by metric north/east distances on
// the local tangent plane. Accurate for the few kilometres a shot covers.
func OffsetLatLng(lat, lng, northM, eastM float64) (float64, float64) {
	latRad := lat * math.Pi / 180.0
	dLat := northM / EarthRadiusM
	dLng := eastM / (EarthRadiusM * math.Max(math.Cos(latRad), 1e-8))
	return lat + dLat*180.0/math.Pi, lng + dLng*180.0/math.Pi
}

// BearingDeg returns the initial great-circle bearing from point 1 to point 2
// in degrees, normalized to [0, 360).
func BearingDeg(lat1, lng1, lat2, lng2 float64) float64 {
	lat1R := lat1 * math.Pi / 180.0
	lat2R := lat2 * math.Pi / 180.0
	dLng := (lng2 - lng1) * math.Pi / 180.0
	y := math.Sin(dLng) * math.Cos(lat2R)
	x := math.Cos(lat1R)*math.Sin(lat2R) - math.Sin(lat1R)*math.Cos(lat2R)*math.Cos(dLng)
	return NormalizeHeadingDeg(math.Atan2(y, x) * 180.0 / math.Pi)
}

// HaversineM returns the great-circle ground distance between two geodetic
// points in metres.
func HaversineM(lat1, lng1, lat2, lng2 float64) float64 {
	lat1R := lat1 * math.Pi / 180.0
	lat2R := lat2 * math.Pi / 180.0
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLng := (lng2 - lng1) * math.Pi / 180.0
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1R)*math.Cos(lat2R)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * MeanEarthRadiusM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// LookAtTiltDeg returns the tilt angle that places the target at the centre
// of the frame from the given camera position and altitude.
func LookAtTiltDeg(camLat, camLng, camAlt, targetLat, targetLng float64) float64 {
	groundDist := HaversineM(camLat, camLng, targetLat, targetLng)
	return math.Atan2(camAlt, math.Max(groundDist, 1.0)) * 180.0 / math.Pi
}

// NormalizeHeadingDeg folds a heading into [0, 360).
func NormalizeHeadingDeg(deg float64) float64 {
	h := math.Mod(deg, 360.0)
	if h < 0 {
		h += 360.0
	}
	return h
}

// LerpAngleDeg interpolates between two headings along the shorter arc,
// returning a heading in [0, 360).
func LerpAngleDeg(a, b, t float64) float64 {
	delta := math.Mod(b-a+180.0, 360.0)
	if delta < 0 {
		delta += 360.0
	}
	delta -= 180.0
	return NormalizeHeadingDeg(a + delta*t)
}
