package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSXScriptShape(t *testing.T) {
	plan := testPlan(t)

	artifact, err := Render(plan, FormatJSX, Options{FPS: 30, Width: 1280, Height: 720})
	require.NoError(t, err)
	assert.Equal(t, "shot_01_orbit.jsx", artifact.Name)

	script := string(artifact.Data)
	assert.Contains(t, script, `addComp("shot_01_orbit", 1280, 720, 1.0, 8.0000, 30)`)
	assert.Contains(t, script, "addCamera(")
	assert.Contains(t, script, "AutoOrientType.NO_AUTO_ORIENT")
	assert.Contains(t, script, "app.beginUndoGroup(")
	assert.Contains(t, script, "app.endUndoGroup();")

	// One position and three rotation keys per sample.
	assert.Equal(t, len(plan.Keyframes), strings.Count(script, "pos.setValueAtTime("))
	assert.Equal(t, len(plan.Keyframes), strings.Count(script, "xr.setValueAtTime("))
	assert.Equal(t, len(plan.Keyframes), strings.Count(script, "yr.setValueAtTime("))
	assert.Equal(t, len(plan.Keyframes), strings.Count(script, "zr.setValueAtTime("))
}

func TestJSXAnchorsFirstKeyframeAtOrigin(t *testing.T) {
	plan := testPlan(t)

	artifact, err := Render(plan, FormatJSX, Options{})
	require.NoError(t, err)

	// The first position key is the frame anchor, so all three components
	// collapse to zero.
	var line string
	for _, l := range strings.Split(string(artifact.Data), "\n") {
		if strings.HasPrefix(l, "pos.setValueAtTime(") {
			line = l
			break
		}
	}
	require.NotEmpty(t, line)
	assert.Contains(t, line, "[0.0000, ")
	assert.Contains(t, line, "0.0000]")
}

func TestJSXEscapesName(t *testing.T) {
	plan := testPlan(t)
	plan.Name = "Roof \"B\"\nBlock"

	artifact, err := Render(plan, FormatJSX, Options{})
	require.NoError(t, err)

	script := string(artifact.Data)
	assert.Contains(t, script, `Roof \"B\"\nBlock`)
	assert.NotContains(t, script, "Roof \"B\"\nBlock")
}
