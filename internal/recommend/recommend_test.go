package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avilov/skyshot/internal/geo"
	"github.com/avilov/skyshot/internal/trajectory"
)

// straightPass builds keyframes moving due north at the given speed and
// altitude, one second apart.
func straightPass(speedMps, altM float64, samples int) []trajectory.Keyframe {
	keyframes := make([]trajectory.Keyframe, 0, samples)
	lat, lng := 40.7484, -73.9857
	for i := 0; i < samples; i++ {
		keyframes = append(keyframes, trajectory.Keyframe{
			T: float64(i), Lat: lat, Lng: lng, AltM: altM, HeadingDeg: 0, TiltDeg: 45,
		})
		lat, lng = geo.OffsetLatLng(lat, lng, speedMps, 0)
	}
	return keyframes
}

func TestProfile(t *testing.T) {
	k := Profile(straightPass(10, 80, 10))

	assert.InDelta(t, 10, k.AvgSpeedMps, 0.1)
	assert.InDelta(t, 10, k.MaxSpeedMps, 0.1)
	assert.InDelta(t, 0, k.MaxClimbMps, 1e-9)
	assert.Equal(t, 80.0, k.MinAltM)
	assert.Equal(t, 80.0, k.MaxAltM)
	assert.Equal(t, 9, k.SegmentCount)
}

func TestProfileClimb(t *testing.T) {
	keyframes := []trajectory.Keyframe{
		{T: 0, Lat: 40, Lng: -73, AltM: 100},
		{T: 1, Lat: 40, Lng: -73, AltM: 108},
		{T: 2, Lat: 40, Lng: -73, AltM: 104},
	}
	k := Profile(keyframes)
	assert.InDelta(t, 8, k.MaxClimbMps, 1e-9)
	assert.Equal(t, 100.0, k.MinAltM)
	assert.Equal(t, 108.0, k.MaxAltM)
}

func TestProfileEmpty(t *testing.T) {
	k := Profile(nil)
	assert.Equal(t, trajectory.Kinematics{}, k)
}

func TestRecommend(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name string
		k    trajectory.Kinematics
		want string
	}{
		{"slow and low is drone", trajectory.Kinematics{MaxAltM: 90, MaxSpeedMps: 10, MaxClimbMps: 2}, PlatformDrone},
		{"fast pass needs helicopter", trajectory.Kinematics{MaxAltM: 100, MaxSpeedMps: 45, MaxClimbMps: 2}, PlatformHelicopter},
		{"high altitude needs helicopter", trajectory.Kinematics{MaxAltM: 600, MaxSpeedMps: 10, MaxClimbMps: 2}, PlatformHelicopter},
		{"gray band is either", trajectory.Kinematics{MaxAltM: 180, MaxSpeedMps: 10, MaxClimbMps: 2}, PlatformEither},
		{"hard climb needs helicopter", trajectory.Kinematics{MaxAltM: 90, MaxSpeedMps: 10, MaxClimbMps: 14}, PlatformHelicopter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform, confidence := Recommend(tt.k, th)
			assert.Equal(t, tt.want, platform)
			assert.GreaterOrEqual(t, confidence, 0.0)
			assert.LessOrEqual(t, confidence, 1.0)
		})
	}
}

func TestRecommendDeterministic(t *testing.T) {
	th := DefaultThresholds()
	keyframes := straightPass(12, 95, 20)

	p1, c1 := Recommend(Profile(keyframes), th)
	p2, c2 := Recommend(Profile(keyframes), th)
	assert.Equal(t, p1, p2)
	assert.Equal(t, c1, c2)
}

func TestAnnotateLeavesKeyframesAlone(t *testing.T) {
	keyframes := straightPass(10, 80, 10)
	original := make([]trajectory.Keyframe, len(keyframes))
	copy(original, keyframes)

	plan := &trajectory.ShotPlan{ID: "s1", Preset: trajectory.PresetOrbit, Keyframes: keyframes}
	Annotate(plan, DefaultThresholds())

	require.Equal(t, original, plan.Keyframes)
	assert.Equal(t, PlatformDrone, plan.Metadata.Platform)
	assert.NotZero(t, plan.Metadata.Kinematics.AvgSpeedMps)
}
