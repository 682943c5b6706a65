package preview

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avilov/skyshot/internal/trajectory"
)

func orbitPlan(t *testing.T) *trajectory.ShotPlan {
	t.Helper()
	params := trajectory.Params{
		TargetLat:        40.7484,
		TargetLng:        -73.9857,
		DurationSec:      8,
		RadiusStartM:     150,
		RadiusEndM:       150,
		AltStartM:        80,
		AltEndM:          80,
		SweepDeg:         360,
		GroundClearanceM: 2,
	}
	keyframes, err := trajectory.NewRegistry().Generate(trajectory.PresetOrbit, params, 32)
	require.NoError(t, err)
	return &trajectory.ShotPlan{
		ID:          "shot_01_orbit",
		Name:        "Aerial Orbit 01",
		Preset:      trajectory.PresetOrbit,
		DurationSec: 8,
		Params:      params,
		Keyframes:   keyframes,
	}
}

func TestRenderProducesPNG(t *testing.T) {
	data, err := Render(orbitPlan(t), Options{})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	def := DefaultOptions()
	assert.Equal(t, def.Width, img.Bounds().Dx())
	assert.Equal(t, def.Height, img.Bounds().Dy())
}

func TestRenderDrawsPath(t *testing.T) {
	data, err := Render(orbitPlan(t), Options{Width: 400, Height: 300, QRSize: 80})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	// The orbit ring must put path-colored pixels on the canvas.
	found := 0
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r>>8 == uint32(pathColor.R) && g>>8 == uint32(pathColor.G) && b>>8 == uint32(pathColor.B) {
				found++
			}
		}
	}
	assert.Greater(t, found, 50)
}

func TestRenderRejectsEmptyPlan(t *testing.T) {
	_, err := Render(nil, Options{})
	require.Error(t, err)

	_, err = Render(&trajectory.ShotPlan{ID: "shot_01_orbit"}, Options{})
	require.Error(t, err)
}

func TestMapsLink(t *testing.T) {
	link := MapsLink(40.7484, -73.9857)
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=40.748400,-73.985700", link)
}
