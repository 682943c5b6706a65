// Package director plans batches of aerial shots: it picks preset and
// parameter combinations for a location, enforces diversity between shots
// and invokes the trajectory registry for each.
package director

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/avilov/skyshot/internal/geo"
	"github.com/avilov/skyshot/internal/trajectory"
)

// ErrInvalidParameter reports out-of-range planner inputs.
var ErrInvalidParameter = errors.New("invalid parameter")

// Ranges bounds the pseudo-random parameter draws. All values are
// overridable configuration.
type Ranges struct {
	RadiusMinM  float64 `yaml:"radius_min_m" env:"SKYSHOT_RADIUS_MIN_M"`
	RadiusMaxM  float64 `yaml:"radius_max_m" env:"SKYSHOT_RADIUS_MAX_M"`
	AltMinM     float64 `yaml:"alt_min_m" env:"SKYSHOT_ALT_MIN_M"`
	AltMaxM     float64 `yaml:"alt_max_m" env:"SKYSHOT_ALT_MAX_M"`
	SpeedMinMps float64 `yaml:"speed_min_mps" env:"SKYSHOT_SPEED_MIN_MPS"`
	SpeedMaxMps float64 `yaml:"speed_max_mps" env:"SKYSHOT_SPEED_MAX_MPS"`

	// OrbitRateDegPerSec sets the angular rate of the orbital presets.
	OrbitRateDegPerSec float64 `yaml:"orbit_rate_deg_per_sec" env:"SKYSHOT_ORBIT_RATE"`

	// GroundClearanceM is the terrain-clearance altitude floor.
	GroundClearanceM float64 `yaml:"ground_clearance_m" env:"SKYSHOT_GROUND_CLEARANCE_M"`

	// DiversityMinDistance is the minimum normalized parameter-vector
	// distance between two accepted shots of the same preset.
	DiversityMinDistance float64 `yaml:"diversity_min_distance" env:"SKYSHOT_DIVERSITY_MIN_DISTANCE"`
}

// DefaultRanges returns the documented defaults: a close, drone-friendly
// orbit envelope and helicopter-speed linear passes.
func DefaultRanges() Ranges {
	return Ranges{
		RadiusMinM:           100,
		RadiusMaxM:           200,
		AltMinM:              60,
		AltMaxM:              110,
		SpeedMinMps:          30,
		SpeedMaxMps:          40,
		OrbitRateDegPerSec:   5,
		GroundClearanceM:     2,
		DiversityMinDistance: 0.15,
	}
}

func (r Ranges) validate() error {
	switch {
	case r.RadiusMinM < 0 || r.RadiusMaxM < r.RadiusMinM:
		return fmt.Errorf("%w: radius range [%.1f, %.1f]", ErrInvalidParameter, r.RadiusMinM, r.RadiusMaxM)
	case r.AltMinM < 0 || r.AltMaxM < r.AltMinM:
		return fmt.Errorf("%w: altitude range [%.1f, %.1f]", ErrInvalidParameter, r.AltMinM, r.AltMaxM)
	case r.SpeedMinMps < 0 || r.SpeedMaxMps < r.SpeedMinMps:
		return fmt.Errorf("%w: speed range [%.1f, %.1f]", ErrInvalidParameter, r.SpeedMinMps, r.SpeedMaxMps)
	case r.OrbitRateDegPerSec <= 0:
		return fmt.Errorf("%w: orbit rate %.2f", ErrInvalidParameter, r.OrbitRateDegPerSec)
	}
	return nil
}

// Override adjusts a single shot in a batch. Zero values mean "no override".
type Override struct {
	Preset      trajectory.Preset
	DurationSec float64
	RadiusM     float64
	AltM        float64
	SpeedMps    float64
}

// ShotError reports one skipped shot in an otherwise successful batch.
type ShotError struct {
	Index  int
	Preset trajectory.Preset
	Err    error
}

func (e ShotError) Error() string {
	return fmt.Sprintf("shot %d (%s): %v", e.Index, e.Preset, e.Err)
}

func (e ShotError) Unwrap() error { return e.Err }

// Director selects shot combinations for a location. It holds no mutable
// state across Plan calls; planning the same location twice yields the same
// batch.
type Director struct {
	Registry   *trajectory.Registry
	Ranges     Ranges
	SampleRate int

	// MaxResample bounds diversity resampling attempts per shot.
	MaxResample int
}

// New creates a Director with the given registry and ranges.
func New(registry *trajectory.Registry, ranges Ranges, sampleRate int) *Director {
	return &Director{
		Registry:    registry,
		Ranges:      ranges,
		SampleRate:  sampleRate,
		MaxResample: 8,
	}
}

// Plan produces shotCount ShotPlans around the target location. Adjacent
// shots never share a preset while shotCount does not exceed the preset
// count; invalid shots are skipped and reported, the rest of the batch
// proceeds.
func (d *Director) Plan(lat, lng float64, shotCount int, durationSec float64, overrides map[int]Override) ([]*trajectory.ShotPlan, []ShotError, error) {
	if shotCount < 1 {
		return nil, nil, fmt.Errorf("%w: shot count %d", ErrInvalidParameter, shotCount)
	}
	if durationSec <= 0 {
		return nil, nil, fmt.Errorf("%w: duration %.2fs", ErrInvalidParameter, durationSec)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, nil, fmt.Errorf("%w: location (%.4f, %.4f)", ErrInvalidParameter, lat, lng)
	}
	if err := d.Ranges.validate(); err != nil {
		return nil, nil, err
	}

	plans := make([]*trajectory.ShotPlan, 0, shotCount)
	var skipped []ShotError

	for i := 0; i < shotCount; i++ {
		preset := trajectory.PresetCycle[i%len(trajectory.PresetCycle)]
		duration := durationSec

		ov, hasOverride := overrides[i]
		if hasOverride && ov.Preset != "" {
			preset = ov.Preset
		}
		if hasOverride && ov.DurationSec > 0 {
			duration = ov.DurationSec
		}
		if !d.Registry.Has(preset) {
			skipped = append(skipped, ShotError{Index: i, Preset: preset,
				Err: fmt.Errorf("%w: %q", trajectory.ErrUnsupportedPreset, preset)})
			continue
		}
		if duration <= 0 {
			skipped = append(skipped, ShotError{Index: i, Preset: preset,
				Err: fmt.Errorf("%w: duration %.2fs", ErrInvalidParameter, duration)})
			continue
		}

		params, warning := d.drawParams(lat, lng, i, preset, duration, ov, plans)

		keyframes, err := d.Registry.Generate(preset, params, trajectory.SampleCount(duration, d.SampleRate))
		if err != nil {
			skipped = append(skipped, ShotError{Index: i, Preset: preset, Err: err})
			continue
		}

		plan := &trajectory.ShotPlan{
			ID:          fmt.Sprintf("shot_%02d_%s", i+1, preset),
			Name:        fmt.Sprintf("Aerial %s %02d", presetTitle(preset), i+1),
			Preset:      preset,
			DurationSec: duration,
			Params:      params,
			Keyframes:   keyframes,
		}
		if warning != "" {
			plan.Metadata.Warnings = append(plan.Metadata.Warnings, warning)
		}
		plans = append(plans, plan)
	}

	return plans, skipped, nil
}

// drawParams picks a parameter vector for shot i, resampling while it lands
// too close to an already accepted shot of the same preset.
func (d *Director) drawParams(lat, lng float64, index int, preset trajectory.Preset, duration float64, ov Override, accepted []*trajectory.ShotPlan) (trajectory.Params, string) {
	var params trajectory.Params
	for attempt := 0; ; attempt++ {
		rng := rand.New(rand.NewSource(shotSeed(lat, lng, index, attempt)))
		params = d.randomParams(rng, lat, lng, preset, duration)
		applyOverride(&params, ov)

		if attempt >= d.MaxResample {
			return params, "diversity threshold not met after resampling"
		}
		if d.diverseEnough(preset, params, accepted) {
			return params, ""
		}
	}
}

func applyOverride(p *trajectory.Params, ov Override) {
	if ov.RadiusM > 0 {
		scale := ov.RadiusM / math.Max(p.RadiusStartM, 1)
		p.RadiusStartM = ov.RadiusM
		p.RadiusEndM *= scale
	}
	if ov.AltM > 0 {
		scale := ov.AltM / math.Max(p.AltStartM, 1)
		p.AltStartM = ov.AltM
		p.AltEndM *= scale
	}
	if ov.SpeedMps > 0 {
		p.SpeedMps = ov.SpeedMps
	}
}

// randomParams draws the base vector and applies per-preset shaping.
func (d *Director) randomParams(rng *rand.Rand, lat, lng float64, preset trajectory.Preset, duration float64) trajectory.Params {
	r := d.Ranges
	uniform := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }

	radius := uniform(r.RadiusMinM, r.RadiusMaxM)
	alt := uniform(r.AltMinM, r.AltMaxM)
	azimuth := uniform(0, 360)
	speed := uniform(r.SpeedMinMps, r.SpeedMaxMps)
	sweep := math.Min(360, r.OrbitRateDegPerSec*duration)

	p := trajectory.Params{
		TargetLat:        lat,
		TargetLng:        lng,
		DurationSec:      duration,
		RadiusStartM:     radius,
		RadiusEndM:       radius,
		AltStartM:        alt,
		AltEndM:          alt,
		AzimuthStartDeg:  azimuth,
		SweepDeg:         sweep,
		SpeedMps:         speed,
		GroundClearanceM: r.GroundClearanceM,
	}

	switch preset {
	case trajectory.PresetOrbit:
		p.TiltOffsetDeg = -5
	case trajectory.PresetDescent:
		p.RadiusStartM = radius * 1.8
		p.AltStartM = alt * 2.5
		p.AltEndM = alt
	case trajectory.PresetAscent:
		p.AltEndM = alt * 2.5
		p.RadiusEndM = radius * 1.8
	case trajectory.PresetEstablishing:
		p.RadiusStartM = radius * 5
		p.RadiusEndM = radius * 5
		p.AltStartM = alt * 5
		p.AltEndM = alt * 5
		p.SweepDeg = math.Min(360, r.OrbitRateDegPerSec/2*duration)
	case trajectory.PresetPan:
		p.SweepDeg = math.Min(120, r.OrbitRateDegPerSec*4*duration)
	case trajectory.PresetCrane:
		p.RadiusStartM = radius * 0.6
		p.AltStartM = alt * 0.5
		p.AltEndM = alt * 1.8
	case trajectory.PresetFlythrough:
		p.RadiusStartM = radius * 0.6
		p.AltStartM = alt * 0.5
		p.AltEndM = alt * 0.5
		p.SpeedMps = speed * 0.8
	case trajectory.PresetReveal:
		p.AltStartM = alt * 0.6
		p.AltEndM = alt * 1.4
	}
	return p
}

// diverseEnough compares the candidate's parameter vector against accepted
// shots of the same preset, normalized by the configured ranges.
func (d *Director) diverseEnough(preset trajectory.Preset, p trajectory.Params, accepted []*trajectory.ShotPlan) bool {
	r := d.Ranges
	radiusSpan := math.Max(r.RadiusMaxM-r.RadiusMinM, 1)
	altSpan := math.Max(r.AltMaxM-r.AltMinM, 1)

	for _, other := range accepted {
		if other.Preset != preset {
			continue
		}
		o := other.Params
		dRadius := (p.RadiusStartM - o.RadiusStartM) / radiusSpan
		dAlt := (p.AltStartM - o.AltStartM) / altSpan
		dAz := angleDiffDeg(p.AzimuthStartDeg, o.AzimuthStartDeg) / 180.0
		dist := math.Sqrt(dRadius*dRadius + dAlt*dAlt + dAz*dAz)
		if dist < r.DiversityMinDistance {
			return false
		}
	}
	return true
}

func angleDiffDeg(a, b float64) float64 {
	diff := math.Abs(geo.NormalizeHeadingDeg(a) - geo.NormalizeHeadingDeg(b))
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// shotSeed derives a deterministic seed from the location, shot index and
// resample attempt. Each shot owns its generator, so parallel planning
// needs no shared state.
func shotSeed(lat, lng float64, index, attempt int) int64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(lat))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(lng))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(index))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(attempt))
	h.Write(buf[:])
	return int64(h.Sum64())
}

func presetTitle(p trajectory.Preset) string {
	switch p {
	case trajectory.PresetOrbit:
		return "Orbit"
	case trajectory.PresetFlyby:
		return "Flyby"
	case trajectory.PresetFlythrough:
		return "Flythrough"
	case trajectory.PresetDescent:
		return "Descent"
	case trajectory.PresetAscent:
		return "Ascent"
	case trajectory.PresetPan:
		return "Pan"
	case trajectory.PresetReveal:
		return "Reveal"
	case trajectory.PresetTiltReveal:
		return "Tilt Reveal"
	case trajectory.PresetEstablishing:
		return "Establishing"
	case trajectory.PresetCrane:
		return "Crane"
	default:
		return string(p)
	}
}
