package trajectory

import "fmt"

// Generator maps preset parameters onto a sampled keyframe sequence.
type Generator func(p Params, sampleCount int) ([]Keyframe, error)

// Registry is the immutable preset table. Build it once and pass it to the
// planner; there is no package-level mutable state.
type Registry struct {
	generators map[Preset]Generator
}

// NewRegistry constructs the registry with all built-in presets.
func NewRegistry() *Registry {
	return &Registry{generators: map[Preset]Generator{
		PresetOrbit:        genOrbit,
		PresetFlyby:        genFlyby,
		PresetFlythrough:   genFlythrough,
		PresetDescent:      genDescent,
		PresetAscent:       genAscent,
		PresetPan:          genPan,
		PresetReveal:       genReveal,
		PresetTiltReveal:   genTiltReveal,
		PresetEstablishing: genEstablishing,
		PresetCrane:        genCrane,
	}}
}

// Has reports whether the registry knows the preset.
func (r *Registry) Has(preset Preset) bool {
	_, ok := r.generators[preset]
	return ok
}

// Generate runs the preset's generator. The sample count is floored at two;
// unknown presets fail with ErrUnsupportedPreset.
func (r *Registry) Generate(preset Preset, p Params, sampleCount int) ([]Keyframe, error) {
	gen, ok := r.generators[preset]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPreset, preset)
	}
	if sampleCount < 2 {
		sampleCount = 2
	}
	keyframes, err := gen(p, sampleCount)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", preset, err)
	}
	return keyframes, nil
}
