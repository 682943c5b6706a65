package export

import (
	"encoding/json"
	"fmt"

	"github.com/avilov/skyshot/internal/geo"
	"github.com/avilov/skyshot/internal/trajectory"
)

// The camera-track project format ("ESP"): a JSON envelope with a version
// header, viewer trackpoints in relative coordinates and per-frame ECEF
// camera poses. Only version 1.0 is understood; anything else fails the
// parse outright.
const (
	espType    = "skyshot_camera_track"
	espVersion = "1.0"
)

// Earth Studio relative-coordinate constants, from the target application.
const (
	espLatSpan = 179.9998
	espLatBias = 89.9999
	espAltSpan = 65117481.0
	espAltBias = 1.0
)

// ImportedTrack carries the raw fields of a parsed project file so an
// edited track can be written back without disturbing anything the internal
// model does not own.
type ImportedTrack struct {
	doc    map[string]json.RawMessage
	frames []map[string]json.RawMessage
}

type espVec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// renderESP serializes a plan into the track format. When track is non-nil
// (the editing flow) untouched fields of the original file are reproduced
// unchanged; position, rotation and timing are overwritten from the plan.
func renderESP(plan *trajectory.ShotPlan, track *ImportedTrack, opts Options) ([]byte, error) {
	doc := map[string]json.RawMessage{}
	if track != nil {
		for k, v := range track.doc {
			doc[k] = v
		}
	}

	setJSON(doc, "type", espType)
	setJSON(doc, "version", espVersion)
	setJSON(doc, "shotId", plan.ID)
	setJSON(doc, "name", plan.Name)
	setJSON(doc, "preset", string(plan.Preset))
	setJSON(doc, "fps", opts.FPS)
	setJSON(doc, "durationSec", plan.DurationSec)
	setJSON(doc, "target", map[string]float64{
		"lat": plan.Params.TargetLat,
		"lng": plan.Params.TargetLng,
	})

	targetECEF := geo.GeodeticToECEF(plan.Params.TargetLat, plan.Params.TargetLng, 0)
	setJSON(doc, "trackPoints", []any{map[string]any{
		"name":     "target",
		"position": espVec{targetECEF.X, targetECEF.Y, targetECEF.Z},
		"coordinate": map[string]any{
			"position": map[string]any{
				"attributes": []any{
					map[string]any{"value": map[string]float64{"relative": lngToRelative(plan.Params.TargetLng)}},
					map[string]any{"value": map[string]float64{"relative": latToRelative(plan.Params.TargetLat)}},
					map[string]any{"value": map[string]float64{"relative": altToRelative(0)}},
				},
			},
		},
	}})

	frames := make([]map[string]json.RawMessage, 0, len(plan.Keyframes))
	for i, kf := range plan.Keyframes {
		frame := map[string]json.RawMessage{}
		if track != nil && i < len(track.frames) {
			for k, v := range track.frames[i] {
				frame[k] = v
			}
		}

		ecef := geo.GeodeticToECEF(kf.Lat, kf.Lng, kf.AltM)
		setJSON(frame, "time", kf.T)
		setJSON(frame, "position", espVec{ecef.X, ecef.Y, ecef.Z})
		setJSON(frame, "rotation", espVec{-kf.TiltDeg, -kf.HeadingDeg, kf.RollDeg})

		interp := kf.Interpolation
		if interp == "" {
			if _, ok := frame["interpolation"]; !ok {
				interp = "linear"
			}
		}
		if interp != "" {
			setJSON(frame, "interpolation", interp)
		}
		frames = append(frames, frame)
	}
	setJSON(doc, "cameraFrames", frames)

	return json.MarshalIndent(doc, "", "  ")
}

// ParseESP parses a camera-track project file into the internal model. A
// corrupt or unrecognized-version file fails entirely; the model is never
// partially populated.
func ParseESP(data []byte, opts Options) (*trajectory.ShotPlan, *ImportedTrack, error) {
	opts = opts.withDefaults()

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTrackParse, err)
	}

	var version string
	if raw, ok := doc["version"]; ok {
		if err := json.Unmarshal(raw, &version); err != nil {
			return nil, nil, fmt.Errorf("%w: malformed version field", ErrTrackParse)
		}
	}
	if version != espVersion {
		return nil, nil, fmt.Errorf("%w: unsupported version %q", ErrTrackParse, version)
	}

	var rawFrames []json.RawMessage
	if raw, ok := doc["cameraFrames"]; ok {
		if err := json.Unmarshal(raw, &rawFrames); err != nil {
			return nil, nil, fmt.Errorf("%w: malformed cameraFrames", ErrTrackParse)
		}
	}
	if len(rawFrames) == 0 {
		return nil, nil, fmt.Errorf("%w: no camera frames", ErrTrackParse)
	}

	fps := float64(opts.FPS)
	if raw, ok := doc["fps"]; ok {
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil && f > 0 {
			fps = f
		}
	}

	frames := make([]map[string]json.RawMessage, 0, len(rawFrames))
	positions := make([]espVec, 0, len(rawFrames))
	for i, rawFrame := range rawFrames {
		var frame map[string]json.RawMessage
		if err := json.Unmarshal(rawFrame, &frame); err != nil {
			return nil, nil, fmt.Errorf("%w: frame %d is not an object", ErrTrackParse, i)
		}
		rawPos, ok := frame["position"]
		if !ok {
			return nil, nil, fmt.Errorf("%w: frame %d has no position", ErrTrackParse, i)
		}
		var pos espVec
		if err := json.Unmarshal(rawPos, &pos); err != nil {
			return nil, nil, fmt.Errorf("%w: frame %d position: %v", ErrTrackParse, i, err)
		}
		frames = append(frames, frame)
		positions = append(positions, pos)
	}

	scale, err := detectECEFScale(positions[0])
	if err != nil {
		return nil, nil, err
	}

	targetLat, targetLng, hasTarget := parseTrackpointTarget(doc)

	keyframes := make([]trajectory.Keyframe, 0, len(frames))
	var latSum, lngSum float64
	for i, pos := range positions {
		lat, lng, alt := geo.ECEFToGeodetic(geo.Vec3{X: pos.X * scale, Y: pos.Y * scale, Z: pos.Z * scale})
		latSum += lat
		lngSum += lng

		t := float64(i) / fps
		if raw, ok := frames[i]["time"]; ok {
			var ft float64
			if err := json.Unmarshal(raw, &ft); err == nil {
				t = ft
			}
		}

		interp := "linear"
		if raw, ok := frames[i]["interpolation"]; ok {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && s != "" {
				interp = s
			}
		}

		kf := trajectory.Keyframe{T: t, Lat: lat, Lng: lng, AltM: alt, Interpolation: interp}
		if raw, ok := frames[i]["rotation"]; ok {
			var rot espVec
			if err := json.Unmarshal(raw, &rot); err == nil {
				kf.TiltDeg = -rot.X
				kf.HeadingDeg = geo.NormalizeHeadingDeg(-rot.Y)
				kf.RollDeg = rot.Z
			}
		}
		keyframes = append(keyframes, kf)
	}

	if !hasTarget {
		targetLat = latSum / float64(len(keyframes))
		targetLng = lngSum / float64(len(keyframes))
	}

	// Frames without an explicit rotation get a look-at pose toward the
	// target, matching how the tracks are authored.
	for i := range keyframes {
		if _, ok := frames[i]["rotation"]; ok {
			continue
		}
		kf := &keyframes[i]
		kf.HeadingDeg = geo.BearingDeg(kf.Lat, kf.Lng, targetLat, targetLng)
		kf.TiltDeg = geo.LookAtTiltDeg(kf.Lat, kf.Lng, kf.AltM, targetLat, targetLng)
	}

	plan := &trajectory.ShotPlan{
		ID:          stringField(doc, "shotId", "imported_track"),
		Name:        stringField(doc, "name", "Imported Camera Track"),
		Preset:      trajectory.Preset(stringField(doc, "preset", "imported")),
		DurationSec: keyframes[len(keyframes)-1].T,
		Params: trajectory.Params{
			TargetLat: targetLat,
			TargetLng: targetLng,
		},
		Keyframes: keyframes,
	}

	return plan, &ImportedTrack{doc: doc, frames: frames}, nil
}

// ExportEditedESP writes a plan back over its imported track, preserving
// every field the internal model does not own.
func ExportEditedESP(plan *trajectory.ShotPlan, track *ImportedTrack, opts Options) ([]byte, error) {
	if plan == nil || len(plan.Keyframes) == 0 {
		return nil, fmt.Errorf("%w: empty shot plan", ErrFormat)
	}
	return renderESP(plan, track, opts.withDefaults())
}

// detectECEFScale recognizes metre and centimetre-scale position data by
// the magnitude of the first camera position.
func detectECEFScale(pos espVec) (float64, error) {
	mag := geo.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z}.Norm()
	if mag > 5e6 && mag < 8e6 {
		return 1.0, nil
	}
	if mag*100 > 5e6 && mag*100 < 8e6 {
		return 100.0, nil
	}
	return 0, fmt.Errorf("%w: camera positions are not ECEF-scaled", ErrTrackParse)
}

func parseTrackpointTarget(doc map[string]json.RawMessage) (lat, lng float64, ok bool) {
	raw, exists := doc["trackPoints"]
	if !exists {
		return 0, 0, false
	}
	var points []struct {
		Coordinate struct {
			Position struct {
				Attributes []struct {
					Value struct {
						Relative float64 `json:"relative"`
					} `json:"value"`
				} `json:"attributes"`
			} `json:"position"`
		} `json:"coordinate"`
	}
	if err := json.Unmarshal(raw, &points); err != nil || len(points) == 0 {
		return 0, 0, false
	}
	attrs := points[0].Coordinate.Position.Attributes
	if len(attrs) < 2 {
		return 0, 0, false
	}
	lng = 360.0*attrs[0].Value.Relative - 180.0
	lat = espLatSpan*attrs[1].Value.Relative - espLatBias
	return lat, lng, true
}

func latToRelative(lat float64) float64 { return (lat + espLatBias) / espLatSpan }
func lngToRelative(lng float64) float64 { return (lng + 180.0) / 360.0 }
func altToRelative(alt float64) float64 {
	rel := (alt - espAltBias) / espAltSpan
	if rel < 0 {
		return 0
	}
	return rel
}

func setJSON(m map[string]json.RawMessage, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	m[key] = raw
}

func stringField(doc map[string]json.RawMessage, key, fallback string) string {
	raw, ok := doc[key]
	if !ok {
		return fallback
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return fallback
	}
	return s
}
