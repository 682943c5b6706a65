// Package recommend derives a kinematic profile from a keyframe sequence and
// classifies which capture platform can actually fly it.
package recommend

import (
	"math"

	"github.com/avilov/skyshot/internal/geo"
	"github.com/avilov/skyshot/internal/trajectory"
)

// Platform classifications.
const (
	PlatformDrone      = "drone"
	PlatformHelicopter = "helicopter"
	PlatformEither     = "either"
)

// Thresholds separate drone-flyable shots from helicopter work. Values are
// product tuning constants; the defaults below are operational rules of
// thumb, not certification limits.
type Thresholds struct {
	DroneMaxAltM     float64 `yaml:"drone_max_alt_m" env:"SKYSHOT_DRONE_MAX_ALT_M"`
	DroneMaxSpeedMps float64 `yaml:"drone_max_speed_mps" env:"SKYSHOT_DRONE_MAX_SPEED_MPS"`
	DroneMaxClimbMps float64 `yaml:"drone_max_climb_mps" env:"SKYSHOT_DRONE_MAX_CLIMB_MPS"`

	// Beyond any of these the shot needs sustained performance only a
	// helicopter provides.
	HeliMinAltM     float64 `yaml:"heli_min_alt_m" env:"SKYSHOT_HELI_MIN_ALT_M"`
	HeliMinSpeedMps float64 `yaml:"heli_min_speed_mps" env:"SKYSHOT_HELI_MIN_SPEED_MPS"`
	HeliMinClimbMps float64 `yaml:"heli_min_climb_mps" env:"SKYSHOT_HELI_MIN_CLIMB_MPS"`
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DroneMaxAltM:     120,
		DroneMaxSpeedMps: 18,
		DroneMaxClimbMps: 6,
		HeliMinAltM:      250,
		HeliMinSpeedMps:  28,
		HeliMinClimbMps:  10,
	}
}

// Profile computes the kinematic summary of a keyframe sequence using
// great-circle ground distances between consecutive samples. It never
// mutates the sequence.
func Profile(keyframes []trajectory.Keyframe) trajectory.Kinematics {
	if len(keyframes) == 0 {
		return trajectory.Kinematics{}
	}

	k := trajectory.Kinematics{
		MinAltM:      keyframes[0].AltM,
		MaxAltM:      keyframes[0].AltM,
		SegmentCount: len(keyframes) - 1,
	}

	var speedSum float64
	for i := 0; i < len(keyframes)-1; i++ {
		a, b := keyframes[i], keyframes[i+1]
		dt := math.Max(b.T-a.T, 1e-6)

		speed := geo.HaversineM(a.Lat, a.Lng, b.Lat, b.Lng) / dt
		climb := math.Abs(b.AltM-a.AltM) / dt

		speedSum += speed
		if speed > k.MaxSpeedMps {
			k.MaxSpeedMps = speed
		}
		if climb > k.MaxClimbMps {
			k.MaxClimbMps = climb
		}
	}
	for _, kf := range keyframes {
		k.MinAltM = math.Min(k.MinAltM, kf.AltM)
		k.MaxAltM = math.Max(k.MaxAltM, kf.AltM)
	}
	if k.SegmentCount > 0 {
		k.AvgSpeedMps = speedSum / float64(k.SegmentCount)
	}
	return k
}

// Recommend classifies a kinematic profile. All three metrics within drone
// limits means drone; any metric past the helicopter extremes means
// helicopter; anything in between is either, with confidence expressed as
// the normalized distance from the nearest threshold boundary.
func Recommend(k trajectory.Kinematics, th Thresholds) (string, float64) {
	type metric struct {
		value, droneMax, heliMin float64
	}
	metrics := []metric{
		{k.MaxAltM, th.DroneMaxAltM, th.HeliMinAltM},
		{k.MaxSpeedMps, th.DroneMaxSpeedMps, th.HeliMinSpeedMps},
		{k.MaxClimbMps, th.DroneMaxClimbMps, th.HeliMinClimbMps},
	}

	allDrone := true
	anyHeli := false
	for _, m := range metrics {
		if m.value > m.droneMax {
			allDrone = false
		}
		if m.value > m.heliMin {
			anyHeli = true
		}
	}

	switch {
	case anyHeli:
		// Confidence grows with how far past the helicopter extreme the
		// worst metric is.
		conf := 0.0
		for _, m := range metrics {
			if m.value > m.heliMin && m.heliMin > 0 {
				conf = math.Max(conf, math.Min(1, (m.value-m.heliMin)/m.heliMin))
			}
		}
		return PlatformHelicopter, conf
	case allDrone:
		// Confidence is the smallest relative margin to a drone limit.
		conf := 1.0
		for _, m := range metrics {
			if m.droneMax > 0 {
				conf = math.Min(conf, (m.droneMax-m.value)/m.droneMax)
			}
		}
		return PlatformDrone, conf
	default:
		// Inside the gray band: distance to the closer boundary, scaled by
		// the half-band width of the metric that decides.
		conf := 1.0
		for _, m := range metrics {
			if m.value <= m.droneMax || m.value > m.heliMin {
				continue
			}
			band := m.heliMin - m.droneMax
			if band <= 0 {
				continue
			}
			nearest := math.Min(m.value-m.droneMax, m.heliMin-m.value)
			conf = math.Min(conf, nearest/(band/2))
		}
		return PlatformEither, conf
	}
}

// Annotate fills a plan's metadata in place: kinematic summary, platform and
// confidence. Keyframes are never rewritten.
func Annotate(plan *trajectory.ShotPlan, th Thresholds) {
	k := Profile(plan.Keyframes)
	platform, confidence := Recommend(k, th)
	plan.Metadata.Kinematics = k
	plan.Metadata.Platform = platform
	plan.Metadata.Confidence = confidence
}
