package export

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/avilov/skyshot/internal/trajectory"
)

// renderMetadata dumps the full structured record of a shot for the
// downstream overlay/encoding tooling: preset tag, source parameters, the
// complete keyframe list and the kinematic summary with its platform
// recommendation.
func renderMetadata(plan *trajectory.ShotPlan) ([]byte, error) {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return data, nil
}
