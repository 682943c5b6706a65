package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsetLatLng(t *testing.T) {
	lat, lng := OffsetLatLng(40.7484, -73.9857, 1000, 0)

	// One kilometre north is roughly 0.009 degrees of latitude.
	assert.InDelta(t, 40.7484+0.008993, lat, 1e-4)
	assert.InDelta(t, -73.9857, lng, 1e-9)

	// Round trip via haversine.
	lat2, lng2 := OffsetLatLng(40.7484, -73.9857, 0, 500)
	dist := HaversineM(40.7484, -73.9857, lat2, lng2)
	assert.InDelta(t, 500, dist, 2.0)
}

func TestBearingDeg(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64
	}{
		{"due north", 0, 0, 1, 0, 0},
		{"due east", 0, 0, 0, 1, 90},
		{"due south", 1, 0, 0, 0, 180},
		{"due west", 0, 1, 0, 0, 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BearingDeg(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.InDelta(t, tt.want, got, 0.01)
		})
	}
}

func TestNormalizeHeadingDeg(t *testing.T) {
	assert.Equal(t, 0.0, NormalizeHeadingDeg(360))
	assert.Equal(t, 350.0, NormalizeHeadingDeg(-10))
	assert.Equal(t, 10.0, NormalizeHeadingDeg(730))
	assert.Equal(t, 0.0, NormalizeHeadingDeg(0))
}

func TestLerpAngleDeg(t *testing.T) {
	// Interpolation across the wrap must take the short way round.
	got := LerpAngleDeg(350, 10, 0.5)
	assert.InDelta(t, 0.0, got, 1e-9)

	got = LerpAngleDeg(10, 350, 0.5)
	assert.InDelta(t, 0.0, got, 1e-9)

	got = LerpAngleDeg(0, 180, 0.25)
	assert.InDelta(t, 45.0, got, 1e-9)
}

func TestECEFRoundTrip(t *testing.T) {
	points := []struct {
		lat, lng, alt float64
	}{
		{40.7484, -73.9857, 475},
		{-33.8568, 151.2153, 120},
		{0, 0, 0},
		{89.0, 10.0, 2000},
	}

	for _, p := range points {
		ecef := GeodeticToECEF(p.lat, p.lng, p.alt)
		lat, lng, alt := ECEFToGeodetic(ecef)
		assert.InDelta(t, p.lat, lat, 1e-7)
		assert.InDelta(t, p.lng, lng, 1e-7)
		assert.InDelta(t, p.alt, alt, 1e-3)
	}
}

func TestENUFrame(t *testing.T) {
	frame := NewENUFrame(40.7484, -73.9857, 0)

	// The anchor maps to the origin.
	e, n, u := frame.ToENU(40.7484, -73.9857, 0)
	assert.InDelta(t, 0, e, 1e-6)
	assert.InDelta(t, 0, n, 1e-6)
	assert.InDelta(t, 0, u, 1e-6)

	// A point offset 300 m north shows up as ~300 m of northing.
	lat, lng := OffsetLatLng(40.7484, -73.9857, 300, 0)
	e, n, _ = frame.ToENU(lat, lng, 0)
	require.InDelta(t, 300, n, 1.0)
	assert.InDelta(t, 0, e, 1.0)

	// Altitude maps straight onto up.
	_, _, u = frame.ToENU(40.7484, -73.9857, 150)
	assert.InDelta(t, 150, u, 1e-3)
}
