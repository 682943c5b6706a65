// Package trajectory generates sampled camera keyframe sequences from named
// shot presets. Every generator is a pure function: identical inputs always
// produce identical keyframes.
package trajectory

import "errors"

// Preset names a parametric trajectory family.
type Preset string

const (
	PresetOrbit        Preset = "orbit"
	PresetFlyby        Preset = "flyby"
	PresetFlythrough   Preset = "flythrough"
	PresetDescent      Preset = "descent"
	PresetAscent       Preset = "ascent"
	PresetPan          Preset = "pan"
	PresetReveal       Preset = "reveal"
	PresetTiltReveal   Preset = "tilt_reveal"
	PresetEstablishing Preset = "establishing"
	PresetCrane        Preset = "crane"
)

// PresetCycle is the order the planner walks presets in. The first entries
// are the ones most batches want.
var PresetCycle = []Preset{
	PresetOrbit,
	PresetFlyby,
	PresetDescent,
	PresetEstablishing,
	PresetPan,
	PresetAscent,
	PresetFlythrough,
	PresetReveal,
	PresetCrane,
	PresetTiltReveal,
}

var (
	// ErrUnsupportedPreset reports an unknown preset tag.
	ErrUnsupportedPreset = errors.New("unsupported preset")
	// ErrDegenerateGeometry reports inputs a preset cannot tolerate even
	// after its documented special cases.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)

// Keyframe is a timestamped camera pose sample. Timestamps are seconds from
// shot start, altitude is metres above the WGS84 ellipsoid, heading is
// normalized to [0, 360).
type Keyframe struct {
	T          float64 `yaml:"t" json:"t"`
	Lat        float64 `yaml:"lat" json:"lat"`
	Lng        float64 `yaml:"lng" json:"lng"`
	AltM       float64 `yaml:"alt_m" json:"alt_m"`
	HeadingDeg float64 `yaml:"heading_deg" json:"heading_deg"`
	TiltDeg    float64 `yaml:"tilt_deg" json:"tilt_deg"`
	RollDeg    float64 `yaml:"roll_deg" json:"roll_deg"`
	// FOVDeg is optional; 0 means unset.
	FOVDeg float64 `yaml:"fov_deg,omitempty" json:"fov_deg,omitempty"`
	// Interpolation is carried through from imported project tracks. The
	// generator never sets it.
	Interpolation string `yaml:"interpolation,omitempty" json:"interpolation,omitempty"`
}

// Params fully parameterize one preset invocation. Not every preset reads
// every field.
type Params struct {
	TargetLat   float64 `yaml:"target_lat" json:"target_lat"`
	TargetLng   float64 `yaml:"target_lng" json:"target_lng"`
	DurationSec float64 `yaml:"duration_sec" json:"duration_sec"`

	RadiusStartM    float64 `yaml:"radius_start_m" json:"radius_start_m"`
	RadiusEndM      float64 `yaml:"radius_end_m" json:"radius_end_m"`
	AltStartM       float64 `yaml:"alt_start_m" json:"alt_start_m"`
	AltEndM         float64 `yaml:"alt_end_m" json:"alt_end_m"`
	AzimuthStartDeg float64 `yaml:"azimuth_start_deg" json:"azimuth_start_deg"`
	SweepDeg        float64 `yaml:"sweep_deg" json:"sweep_deg"`

	// SpeedMps is the average ground speed for the linear presets (flyby,
	// flythrough, reveal).
	SpeedMps float64 `yaml:"speed_mps,omitempty" json:"speed_mps,omitempty"`

	// GroundClearanceM is the documented terrain-clearance floor; generated
	// altitudes are never below it.
	GroundClearanceM float64 `yaml:"ground_clearance_m" json:"ground_clearance_m"`

	TiltOffsetDeg float64 `yaml:"tilt_offset_deg,omitempty" json:"tilt_offset_deg,omitempty"`
}

// ShotPlan is one concrete trajectory plus its metadata. The planner that
// creates it owns it until it is handed to an exporter; exporters read it
// without mutation and the recommender only fills in Metadata.
type ShotPlan struct {
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Preset      Preset     `yaml:"preset" json:"preset"`
	DurationSec float64    `yaml:"duration_sec" json:"duration_sec"`
	Params      Params     `yaml:"params" json:"params"`
	Keyframes   []Keyframe `yaml:"keyframes" json:"keyframes"`
	Notes       string     `yaml:"notes,omitempty" json:"notes,omitempty"`
	Metadata    Metadata   `yaml:"metadata" json:"metadata"`
}

// Metadata is the derived, recommender-attached part of a ShotPlan.
type Metadata struct {
	Kinematics Kinematics `yaml:"kinematics" json:"kinematics"`
	Platform   string     `yaml:"platform,omitempty" json:"platform,omitempty"`
	Confidence float64    `yaml:"confidence,omitempty" json:"confidence,omitempty"`
	Warnings   []string   `yaml:"warnings,omitempty" json:"warnings,omitempty"`
}

// Kinematics summarizes the motion of a keyframe sequence.
type Kinematics struct {
	AvgSpeedMps  float64 `yaml:"avg_speed_mps" json:"avg_speed_mps"`
	MaxSpeedMps  float64 `yaml:"max_speed_mps" json:"max_speed_mps"`
	MaxClimbMps  float64 `yaml:"max_climb_mps" json:"max_climb_mps"`
	MinAltM      float64 `yaml:"min_alt_m" json:"min_alt_m"`
	MaxAltM      float64 `yaml:"max_alt_m" json:"max_alt_m"`
	SegmentCount int     `yaml:"segment_count" json:"segment_count"`
}

// SampleCount derives the number of keyframe samples from a duration and a
// sampling rate, with a floor of two samples.
func SampleCount(durationSec float64, rate int) int {
	n := int(durationSec * float64(rate))
	if n < 2 {
		n = 2
	}
	return n
}
