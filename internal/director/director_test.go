package director

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avilov/skyshot/internal/recommend"
	"github.com/avilov/skyshot/internal/trajectory"
)

const (
	midtownLat = 40.7484
	midtownLng = -73.9857
)

func newDirector() *Director {
	return New(trajectory.NewRegistry(), DefaultRanges(), 30)
}

// The stock three-shot batch: an orbit a drone can fly and a flyby that
// needs helicopter speed, both decided purely from the sampled kinematics.
func TestPlanThreeShotBatch(t *testing.T) {
	d := newDirector()

	plans, skipped, err := d.Plan(midtownLat, midtownLng, 3, 8, nil)
	require.NoError(t, err)
	require.Empty(t, skipped)
	require.Len(t, plans, 3)

	assert.Equal(t, trajectory.PresetOrbit, plans[0].Preset)
	assert.Equal(t, trajectory.PresetFlyby, plans[1].Preset)
	assert.Equal(t, trajectory.PresetDescent, plans[2].Preset)

	th := recommend.DefaultThresholds()
	for _, plan := range plans {
		assert.Len(t, plan.Keyframes, 240, "8s at 30 samples/s")
		assert.Equal(t, 8.0, plan.DurationSec)
		recommend.Annotate(plan, th)
		assert.NotZero(t, plan.Metadata.Confidence)
	}

	assert.Equal(t, recommend.PlatformDrone, plans[0].Metadata.Platform)
	assert.Equal(t, recommend.PlatformHelicopter, plans[1].Metadata.Platform)
}

func TestPlanDeterministic(t *testing.T) {
	d := newDirector()

	first, _, err := d.Plan(midtownLat, midtownLng, 5, 10, nil)
	require.NoError(t, err)
	second, _, err := d.Plan(midtownLat, midtownLng, 5, 10, nil)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Params, second[i].Params)
		assert.Equal(t, first[i].Keyframes, second[i].Keyframes)
	}
}

func TestPlanDifferentLocationsDiffer(t *testing.T) {
	d := newDirector()

	nyc, _, err := d.Plan(midtownLat, midtownLng, 1, 10, nil)
	require.NoError(t, err)
	paris, _, err := d.Plan(48.8584, 2.2945, 1, 10, nil)
	require.NoError(t, err)

	assert.NotEqual(t, nyc[0].Params.AzimuthStartDeg, paris[0].Params.AzimuthStartDeg)
}

func TestPlanCyclesPresets(t *testing.T) {
	d := newDirector()

	plans, skipped, err := d.Plan(midtownLat, midtownLng, len(trajectory.PresetCycle), 10, nil)
	require.NoError(t, err)
	require.Empty(t, skipped)
	require.Len(t, plans, len(trajectory.PresetCycle))

	for i, plan := range plans {
		assert.Equal(t, trajectory.PresetCycle[i], plan.Preset)
		if i > 0 {
			assert.NotEqual(t, plans[i-1].Preset, plan.Preset)
		}
	}
}

// Shot 0 and shot 10 repeat the orbit preset; their draws must land apart.
func TestPlanDiversityAcrossCycleRepeat(t *testing.T) {
	d := newDirector()

	count := len(trajectory.PresetCycle) + 1
	plans, skipped, err := d.Plan(midtownLat, midtownLng, count, 10, nil)
	require.NoError(t, err)
	require.Empty(t, skipped)

	first, repeat := plans[0], plans[len(trajectory.PresetCycle)]
	require.Equal(t, first.Preset, repeat.Preset)
	assert.True(t, d.diverseEnough(repeat.Preset, repeat.Params, []*trajectory.ShotPlan{first}),
		"repeated preset draw too close to shot 0")
}

func TestPlanValidation(t *testing.T) {
	cases := []struct {
		name     string
		lat, lng float64
		shots    int
		duration float64
		mutate   func(*Director)
	}{
		{name: "zero shots", lat: midtownLat, lng: midtownLng, shots: 0, duration: 10},
		{name: "negative duration", lat: midtownLat, lng: midtownLng, shots: 1, duration: -1},
		{name: "latitude out of range", lat: 91, lng: midtownLng, shots: 1, duration: 10},
		{name: "longitude out of range", lat: midtownLat, lng: 181, shots: 1, duration: 10},
		{name: "inverted radius range", lat: midtownLat, lng: midtownLng, shots: 1, duration: 10,
			mutate: func(d *Director) { d.Ranges.RadiusMinM, d.Ranges.RadiusMaxM = 200, 100 }},
		{name: "zero orbit rate", lat: midtownLat, lng: midtownLng, shots: 1, duration: 10,
			mutate: func(d *Director) { d.Ranges.OrbitRateDegPerSec = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newDirector()
			if tc.mutate != nil {
				tc.mutate(d)
			}
			_, _, err := d.Plan(tc.lat, tc.lng, tc.shots, tc.duration, nil)
			require.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestPlanOverrides(t *testing.T) {
	d := newDirector()

	overrides := map[int]Override{
		0: {Preset: trajectory.PresetCrane, DurationSec: 12, RadiusM: 80, AltM: 45, SpeedMps: 12},
	}
	plans, skipped, err := d.Plan(midtownLat, midtownLng, 2, 8, overrides)
	require.NoError(t, err)
	require.Empty(t, skipped)
	require.Len(t, plans, 2)

	assert.Equal(t, trajectory.PresetCrane, plans[0].Preset)
	assert.Equal(t, 12.0, plans[0].DurationSec)
	assert.Equal(t, 80.0, plans[0].Params.RadiusStartM)
	assert.Equal(t, 45.0, plans[0].Params.AltStartM)
	assert.Equal(t, 12.0, plans[0].Params.SpeedMps)
	assert.Equal(t, "shot_01_crane", plans[0].ID)

	// Untouched shots follow the cycle.
	assert.Equal(t, trajectory.PresetFlyby, plans[1].Preset)
	assert.Equal(t, 8.0, plans[1].DurationSec)
}

func TestPlanSkipsUnknownPresetOverride(t *testing.T) {
	d := newDirector()

	overrides := map[int]Override{
		1: {Preset: trajectory.Preset("barrel_roll")},
	}
	plans, skipped, err := d.Plan(midtownLat, midtownLng, 3, 8, overrides)
	require.NoError(t, err)

	require.Len(t, plans, 2)
	assert.Equal(t, "shot_01_orbit", plans[0].ID)
	assert.Equal(t, "shot_03_descent", plans[1].ID)

	require.Len(t, skipped, 1)
	assert.Equal(t, 1, skipped[0].Index)
	assert.ErrorIs(t, skipped[0].Err, trajectory.ErrUnsupportedPreset)
	assert.Contains(t, skipped[0].Error(), "barrel_roll")
}

func TestShotNaming(t *testing.T) {
	d := newDirector()

	plans, _, err := d.Plan(midtownLat, midtownLng, 2, 8, nil)
	require.NoError(t, err)

	assert.Equal(t, "shot_01_orbit", plans[0].ID)
	assert.Equal(t, "Aerial Orbit 01", plans[0].Name)
	assert.Equal(t, "shot_02_flyby", plans[1].ID)
	assert.Equal(t, "Aerial Flyby 02", plans[1].Name)
}

func TestAngleDiffDeg(t *testing.T) {
	assert.InDelta(t, 20, angleDiffDeg(350, 10), 1e-9)
	assert.InDelta(t, 180, angleDiffDeg(0, 180), 1e-9)
	assert.InDelta(t, 0, angleDiffDeg(720, 0), 1e-9)
}
