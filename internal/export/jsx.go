package export

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/avilov/skyshot/internal/geo"
	"github.com/avilov/skyshot/internal/trajectory"
)

// renderJSX emits an After Effects ExtendScript that creates a composition,
// adds a camera and writes one keyframe per sample. Positions are converted
// into a metric east-north-up frame anchored at the shot's first keyframe —
// the same transform the preview pipeline uses, so both line up to the unit.
//
// Coordinate mapping: AE x = east, AE y = -up (screen y grows downward),
// AE z = north. Orientation: xRotation = tilt - 90, yRotation = heading,
// zRotation = roll. Timing snaps to the target project's frame grid.
func renderJSX(plan *trajectory.ShotPlan, opts Options) ([]byte, error) {
	first := plan.Keyframes[0]
	frame := geo.NewENUFrame(first.Lat, first.Lng, first.AltM)

	duration := plan.DurationSec
	if duration <= 0 {
		duration = plan.Keyframes[len(plan.Keyframes)-1].T
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: shot %s has no duration", ErrFormat, plan.ID)
	}

	var buf bytes.Buffer
	buf.WriteString("// Generated camera track: " + jsEscape(plan.Name) + "\n")
	buf.WriteString("app.beginUndoGroup(\"Import Camera Track\");\n")
	fmt.Fprintf(&buf, "var comp = app.project.items.addComp(\"%s\", %d, %d, 1.0, %.4f, %d);\n",
		jsEscape(plan.ID), opts.Width, opts.Height, duration, opts.FPS)
	buf.WriteString("comp.openInViewer();\n")
	buf.WriteString("var cam = comp.layers.addCamera(\"Camera\", [comp.width/2, comp.height/2]);\n")
	buf.WriteString("cam.autoOrient = AutoOrientType.NO_AUTO_ORIENT;\n")
	buf.WriteString("var pos = cam.property(\"Transform\").property(\"Position\");\n")
	buf.WriteString("var xr = cam.property(\"Transform\").property(\"X Rotation\");\n")
	buf.WriteString("var yr = cam.property(\"Transform\").property(\"Y Rotation\");\n")
	buf.WriteString("var zr = cam.property(\"Transform\").property(\"Z Rotation\");\n")

	fps := float64(opts.FPS)
	for _, kf := range plan.Keyframes {
		east, north, up := frame.ToENU(kf.Lat, kf.Lng, kf.AltM)
		// Snap to the project's frame grid.
		frameIndex := math.Round(kf.T * fps)
		t := frameIndex / fps

		fmt.Fprintf(&buf, "pos.setValueAtTime(%.6f, [%.4f, %.4f, %.4f]);\n", t, east, -up, north)
		fmt.Fprintf(&buf, "xr.setValueAtTime(%.6f, %.4f);\n", t, kf.TiltDeg-90.0)
		fmt.Fprintf(&buf, "yr.setValueAtTime(%.6f, %.4f);\n", t, kf.HeadingDeg)
		fmt.Fprintf(&buf, "zr.setValueAtTime(%.6f, %.4f);\n", t, kf.RollDeg)
	}

	buf.WriteString("app.endUndoGroup();\n")
	return buf.Bytes(), nil
}

func jsEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", ``)
	return r.Replace(s)
}
