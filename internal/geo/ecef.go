package geo

import "math"

// WGS84 ellipsoid constants.
const (
	wgs84A  = 6378137.0
	wgs84F  = 1.0 / 298.257223563
	wgs84B  = wgs84A * (1.0 - wgs84F)
	wgs84E2 = 2.0*wgs84F - wgs84F*wgs84F
)

// Vec3 is an Earth-centred Earth-fixed vector in metres.
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// GeodeticToECEF converts a WGS84 geodetic position to ECEF metres.
func GeodeticToECEF(latDeg, lngDeg, altM float64) Vec3 {
	lat := latDeg * math.Pi / 180.0
	lng := lngDeg * math.Pi / 180.0
	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	n := wgs84A / math.Sqrt(1.0-wgs84E2*sinLat*sinLat)
	return Vec3{
		X: (n + altM) * cosLat * math.Cos(lng),
		Y: (n + altM) * cosLat * math.Sin(lng),
		Z: (n*(1.0-wgs84E2) + altM) * sinLat,
	}
}

// ECEFToGeodetic converts an ECEF position back to WGS84 geodetic
// coordinates using a fixed-point latitude iteration.
func ECEFToGeodetic(v Vec3) (latDeg, lngDeg, altM float64) {
	lng := math.Atan2(v.Y, v.X)
	p := math.Sqrt(v.X*v.X + v.Y*v.Y)
	lat := math.Atan2(v.Z, p*(1.0-wgs84E2))

	for i := 0; i < 12; i++ {
		sinLat := math.Sin(lat)
		n := wgs84A / math.Sqrt(1.0-wgs84E2*sinLat*sinLat)
		lat = math.Atan2(v.Z+wgs84E2*n*sinLat, p)
	}

	sinLat := math.Sin(lat)
	n := wgs84A / math.Sqrt(1.0-wgs84E2*sinLat*sinLat)

	cosLat := math.Cos(lat)
	var alt float64
	if math.Abs(cosLat) > 1e-10 {
		alt = p/cosLat - n
	} else {
		alt = math.Abs(v.Z) - wgs84B
	}

	return lat * 180.0 / math.Pi, lng * 180.0 / math.Pi, alt
}

// ENUFrame is a local east-north-up tangent plane anchored at a geodetic
// reference point. Exporters that need metric-scale offsets share this frame
// so that previews and renders line up exactly.
type ENUFrame struct {
	origin Vec3
	// rotation rows: east, north, up
	ex, ey         float64
	nx, ny, nz     float64
	ux, uy, uz     float64
}

// NewENUFrame anchors a tangent plane at the given geodetic point.
func NewENUFrame(latDeg, lngDeg, altM float64) ENUFrame {
	lat := latDeg * math.Pi / 180.0
	lng := lngDeg * math.Pi / 180.0
	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	sinLng, cosLng := math.Sin(lng), math.Cos(lng)
	return ENUFrame{
		origin: GeodeticToECEF(latDeg, lngDeg, altM),
		ex:     -sinLng, ey: cosLng,
		nx: -sinLat * cosLng, ny: -sinLat * sinLng, nz: cosLat,
		ux: cosLat * cosLng, uy: cosLat * sinLng, uz: sinLat,
	}
}

// ToENU converts a geodetic position into east/north/up metres relative to
// the frame's anchor.
func (f ENUFrame) ToENU(latDeg, lngDeg, altM float64) (east, north, up float64) {
	d := GeodeticToECEF(latDeg, lngDeg, altM).Sub(f.origin)
	east = f.ex*d.X + f.ey*d.Y
	north = f.nx*d.X + f.ny*d.Y + f.nz*d.Z
	up = f.ux*d.X + f.uy*d.Y + f.uz*d.Z
	return east, north, up
}
