package trajectory

import (
	"math"

	"github.com/avilov/skyshot/internal/geo"
)

const (
	minTiltDeg = 5.0
	maxTiltDeg = 89.0

	// orbitTiltOffsetDeg lifts the look-at tilt slightly so the target sits
	// below frame centre, leaving headroom for tall structures.
	orbitTiltOffsetDeg = -5.0

	forwardTiltDeg = 78.0

	// hoverRadiusM is the radius below which an orbital preset collapses to
	// a static hover instead of dividing through a vanishing circle.
	hoverRadiusM = 1e-6
)

// sampleAt returns the timestamp and normalized progress of sample i out of
// n. Timestamps are uniformly spaced at duration/n; progress spans [0, 1] so
// sweeps complete on the final sample.
func sampleAt(durationSec float64, i, n int) (t, progress float64) {
	t = float64(i) * durationSec / float64(n)
	progress = float64(i) / float64(n-1)
	return t, progress
}

func clampTilt(tilt float64) float64 {
	return clamp(tilt, minTiltDeg, maxTiltDeg)
}

func clampAlt(alt, clearance float64) float64 {
	if alt < clearance {
		return clearance
	}
	return alt
}

// orbitKeyframes traces an arc of the given sweep around the target, heading
// pointed at the target, tilt framing it. A zero radius collapses to a
// static hover with constant heading.
func orbitKeyframes(p Params, n int, ease func(float64) float64) []Keyframe {
	hover := math.Abs(p.RadiusStartM) < hoverRadiusM && math.Abs(p.RadiusEndM) < hoverRadiusM
	hoverHeading := geo.NormalizeHeadingDeg(p.AzimuthStartDeg + 180.0)

	keyframes := make([]Keyframe, 0, n)
	for i := 0; i < n; i++ {
		t, progress := sampleAt(p.DurationSec, i, n)
		pe := ease(progress)

		radius := lerp(p.RadiusStartM, p.RadiusEndM, pe)
		azimuth := (p.AzimuthStartDeg + p.SweepDeg*pe) * math.Pi / 180.0
		north := radius * math.Cos(azimuth)
		east := radius * math.Sin(azimuth)

		lat, lng := geo.OffsetLatLng(p.TargetLat, p.TargetLng, north, east)
		alt := clampAlt(lerp(p.AltStartM, p.AltEndM, pe), p.GroundClearanceM)

		heading := hoverHeading
		if !hover {
			heading = geo.BearingDeg(lat, lng, p.TargetLat, p.TargetLng)
		}
		tilt := clampTilt(geo.LookAtTiltDeg(lat, lng, alt, p.TargetLat, p.TargetLng) + p.TiltOffsetDeg)

		keyframes = append(keyframes, Keyframe{
			T: t, Lat: lat, Lng: lng, AltM: alt,
			HeadingDeg: heading, TiltDeg: tilt,
		})
	}
	return keyframes
}

// dollyKeyframes moves the camera along a straight pass defined by an
// approach azimuth, with optional lateral drift. When lookForward is set the
// heading follows the velocity vector, otherwise it stays on the target.
func dollyKeyframes(p Params, n int, distStart, distEnd, lateralStart, lateralEnd float64, lookForward bool, ease func(float64) float64) []Keyframe {
	forward := p.AzimuthStartDeg * math.Pi / 180.0
	right := (p.AzimuthStartDeg + 90.0) * math.Pi / 180.0

	type pos struct{ lat, lng, alt float64 }
	positions := make([]pos, 0, n)
	for i := 0; i < n; i++ {
		_, progress := sampleAt(p.DurationSec, i, n)
		pe := ease(progress)

		dist := lerp(distStart, distEnd, pe)
		lateral := lerp(lateralStart, lateralEnd, pe)
		north := dist*math.Cos(forward) + lateral*math.Cos(right)
		east := dist*math.Sin(forward) + lateral*math.Sin(right)

		lat, lng := geo.OffsetLatLng(p.TargetLat, p.TargetLng, north, east)
		alt := clampAlt(lerp(p.AltStartM, p.AltEndM, pe), p.GroundClearanceM)
		positions = append(positions, pos{lat, lng, alt})
	}

	keyframes := make([]Keyframe, 0, n)
	for i, cur := range positions {
		t, _ := sampleAt(p.DurationSec, i, n)

		var heading, tilt float64
		if lookForward {
			var nxt pos
			if i < len(positions)-1 {
				nxt = positions[i+1]
			} else {
				prv := positions[i-1]
				nxt = pos{lat: cur.lat + (cur.lat - prv.lat), lng: cur.lng + (cur.lng - prv.lng)}
			}
			heading = geo.BearingDeg(cur.lat, cur.lng, nxt.lat, nxt.lng)
			tilt = clampTilt(forwardTiltDeg)
		} else {
			heading = geo.BearingDeg(cur.lat, cur.lng, p.TargetLat, p.TargetLng)
			tilt = clampTilt(geo.LookAtTiltDeg(cur.lat, cur.lng, cur.alt, p.TargetLat, p.TargetLng) + p.TiltOffsetDeg)
		}

		keyframes = append(keyframes, Keyframe{
			T: t, Lat: cur.lat, Lng: cur.lng, AltM: cur.alt,
			HeadingDeg: heading, TiltDeg: tilt,
		})
	}
	return keyframes
}

// fixedKeyframes keeps the camera at one position while heading and tilt are
// supplied per sample. Used by the rotation-only presets.
func fixedKeyframes(p Params, n int, pose func(progress float64) (heading, tilt float64)) []Keyframe {
	azimuth := p.AzimuthStartDeg * math.Pi / 180.0
	north := p.RadiusStartM * math.Cos(azimuth)
	east := p.RadiusStartM * math.Sin(azimuth)
	lat, lng := geo.OffsetLatLng(p.TargetLat, p.TargetLng, north, east)

	keyframes := make([]Keyframe, 0, n)
	for i := 0; i < n; i++ {
		t, progress := sampleAt(p.DurationSec, i, n)
		alt := clampAlt(lerp(p.AltStartM, p.AltEndM, smoothStep(progress)), p.GroundClearanceM)
		heading, tilt := pose(progress)
		keyframes = append(keyframes, Keyframe{
			T: t, Lat: lat, Lng: lng, AltM: alt,
			HeadingDeg: geo.NormalizeHeadingDeg(heading), TiltDeg: clampTilt(tilt),
		})
	}
	return keyframes
}

func genOrbit(p Params, n int) ([]Keyframe, error) {
	// Constant angular rate keeps the tangential speed steady for the whole
	// revolution.
	return orbitKeyframes(p, n, func(t float64) float64 { return t }), nil
}

func genDescent(p Params, n int) ([]Keyframe, error) {
	if p.AltEndM >= p.AltStartM {
		p.AltEndM = math.Max(p.AltStartM*0.45, p.GroundClearanceM)
	}
	return orbitKeyframes(p, n, smoothStep), nil
}

func genAscent(p Params, n int) ([]Keyframe, error) {
	if p.AltEndM <= p.AltStartM {
		p.AltEndM = p.AltStartM * 2.2
	}
	return orbitKeyframes(p, n, smoothStep), nil
}

func genEstablishing(p Params, n int) ([]Keyframe, error) {
	return orbitKeyframes(p, n, func(t float64) float64 { return t }), nil
}

func genPan(p Params, n int) ([]Keyframe, error) {
	az := p.AzimuthStartDeg * math.Pi / 180.0
	lat, lng := geo.OffsetLatLng(p.TargetLat, p.TargetLng,
		p.RadiusStartM*math.Cos(az), p.RadiusStartM*math.Sin(az))
	base := geo.NormalizeHeadingDeg(p.AzimuthStartDeg + 180.0)
	if p.RadiusStartM >= hoverRadiusM {
		base = geo.BearingDeg(lat, lng, p.TargetLat, p.TargetLng)
	}
	sweep := p.SweepDeg
	tilt := clampTilt(geo.LookAtTiltDeg(lat, lng, p.AltStartM, p.TargetLat, p.TargetLng) + p.TiltOffsetDeg)
	return fixedKeyframes(p, n, func(progress float64) (float64, float64) {
		return base - sweep/2 + sweep*smoothStep(progress), tilt
	}), nil
}

func genTiltReveal(p Params, n int) ([]Keyframe, error) {
	az := p.AzimuthStartDeg * math.Pi / 180.0
	lat, lng := geo.OffsetLatLng(p.TargetLat, p.TargetLng,
		p.RadiusStartM*math.Cos(az), p.RadiusStartM*math.Sin(az))
	heading := geo.NormalizeHeadingDeg(p.AzimuthStartDeg + 180.0)
	if p.RadiusStartM >= hoverRadiusM {
		heading = geo.BearingDeg(lat, lng, p.TargetLat, p.TargetLng)
	}
	tiltEnd := clampTilt(geo.LookAtTiltDeg(lat, lng, p.AltStartM, p.TargetLat, p.TargetLng))
	tiltStart := clampTilt(tiltEnd + 40.0)
	// The cubic ease holds the high framing longer before committing to the
	// reveal.
	return fixedKeyframes(p, n, func(progress float64) (float64, float64) {
		return heading, lerp(tiltStart, tiltEnd, easeInOutCubic(progress))
	}), nil
}

func genCrane(p Params, n int) ([]Keyframe, error) {
	if p.AltEndM == p.AltStartM {
		p.AltEndM = p.AltStartM * 2.5
	}
	az := p.AzimuthStartDeg * math.Pi / 180.0
	lat, lng := geo.OffsetLatLng(p.TargetLat, p.TargetLng,
		p.RadiusStartM*math.Cos(az), p.RadiusStartM*math.Sin(az))
	heading := geo.NormalizeHeadingDeg(p.AzimuthStartDeg + 180.0)
	if p.RadiusStartM >= hoverRadiusM {
		heading = geo.BearingDeg(lat, lng, p.TargetLat, p.TargetLng)
	}
	altStart, altEnd := p.AltStartM, p.AltEndM
	return fixedKeyframes(p, n, func(progress float64) (float64, float64) {
		alt := lerp(altStart, altEnd, smoothStep(progress))
		return heading, geo.LookAtTiltDeg(lat, lng, alt, p.TargetLat, p.TargetLng)
	}), nil
}

func genFlyby(p Params, n int) ([]Keyframe, error) {
	travel := p.SpeedMps * p.DurationSec
	if travel < 1.0 {
		return nil, ErrDegenerateGeometry
	}
	return dollyKeyframes(p, n, p.RadiusStartM, p.RadiusStartM, -travel/2, travel/2, true, smoothStep), nil
}

func genFlythrough(p Params, n int) ([]Keyframe, error) {
	travel := p.SpeedMps * p.DurationSec
	if travel < 1.0 {
		return nil, ErrDegenerateGeometry
	}
	// Weave through the corridor: forward travel with a sinusoidal lateral
	// drift a quarter of the stand-off radius wide.
	forward := p.AzimuthStartDeg * math.Pi / 180.0
	right := (p.AzimuthStartDeg + 90.0) * math.Pi / 180.0
	amp := p.RadiusStartM * 0.25

	keyframes := make([]Keyframe, 0, n)
	type pos struct{ lat, lng, alt float64 }
	positions := make([]pos, 0, n)
	for i := 0; i < n; i++ {
		_, progress := sampleAt(p.DurationSec, i, n)
		pe := smoothStep(progress)
		dist := lerp(-travel/2, travel/2, pe)
		lateral := p.RadiusStartM + amp*math.Sin(2*math.Pi*pe)
		north := dist*math.Cos(forward) + lateral*math.Cos(right)
		east := dist*math.Sin(forward) + lateral*math.Sin(right)
		lat, lng := geo.OffsetLatLng(p.TargetLat, p.TargetLng, north, east)
		alt := clampAlt(lerp(p.AltStartM, p.AltEndM, pe), p.GroundClearanceM)
		positions = append(positions, pos{lat, lng, alt})
	}
	for i, cur := range positions {
		t, _ := sampleAt(p.DurationSec, i, n)
		var nxt pos
		if i < len(positions)-1 {
			nxt = positions[i+1]
		} else {
			prv := positions[i-1]
			nxt = pos{lat: cur.lat + (cur.lat - prv.lat), lng: cur.lng + (cur.lng - prv.lng)}
		}
		keyframes = append(keyframes, Keyframe{
			T: t, Lat: cur.lat, Lng: cur.lng, AltM: cur.alt,
			HeadingDeg: geo.BearingDeg(cur.lat, cur.lng, nxt.lat, nxt.lng),
			TiltDeg:    clampTilt(forwardTiltDeg),
		})
	}
	return keyframes, nil
}

func genReveal(p Params, n int) ([]Keyframe, error) {
	if p.RadiusStartM < hoverRadiusM {
		return nil, ErrDegenerateGeometry
	}
	// Pull back from a close framing to the full stand-off distance while
	// climbing, target locked.
	return dollyKeyframes(p, n, p.RadiusStartM*0.3, p.RadiusStartM, 0, 0, false, smoothStep), nil
}
