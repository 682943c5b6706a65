package export

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/avilov/skyshot/internal/trajectory"
)

// renderKML produces a KML document with one gx:Tour per shot: an ordered
// fly-to step per keyframe, each waiting the interval since the previous
// one. Altitude mode is always absolute so the consuming viewer cannot
// reinterpret heights against its own terrain.
func renderKML(plan *trajectory.ShotPlan) ([]byte, error) {
	var buf bytes.Buffer

	name := xmlEscape(plan.Name)
	if name == "" {
		name = xmlEscape(plan.ID)
	}

	buf.WriteString(xml.Header)
	buf.WriteString(`<kml xmlns="http://www.opengis.net/kml/2.2" xmlns:gx="http://www.google.com/kml/ext/2.2">` + "\n")
	buf.WriteString("  <Document>\n")
	fmt.Fprintf(&buf, "    <name>%s</name>\n", name)
	if plan.Notes != "" {
		fmt.Fprintf(&buf, "    <description>%s</description>\n", xmlEscape(plan.Notes))
	}

	// Target placemark for orientation inside the viewer.
	buf.WriteString("    <Placemark>\n")
	buf.WriteString("      <name>Target</name>\n")
	fmt.Fprintf(&buf, "      <Point><coordinates>%.10f,%.10f,0</coordinates></Point>\n",
		plan.Params.TargetLng, plan.Params.TargetLat)
	buf.WriteString("    </Placemark>\n")

	buf.WriteString("    <gx:Tour>\n")
	fmt.Fprintf(&buf, "      <name>%s</name>\n", name)
	buf.WriteString("      <gx:Playlist>\n")

	for i, kf := range plan.Keyframes {
		wait := 0.0
		if i > 0 {
			wait = kf.T - plan.Keyframes[i-1].T
		}
		buf.WriteString("        <gx:FlyTo>\n")
		fmt.Fprintf(&buf, "          <gx:duration>%.4f</gx:duration>\n", wait)
		buf.WriteString("          <gx:flyToMode>smooth</gx:flyToMode>\n")
		buf.WriteString("          <Camera>\n")
		fmt.Fprintf(&buf, "            <longitude>%.10f</longitude>\n", kf.Lng)
		fmt.Fprintf(&buf, "            <latitude>%.10f</latitude>\n", kf.Lat)
		fmt.Fprintf(&buf, "            <altitude>%.4f</altitude>\n", kf.AltM)
		fmt.Fprintf(&buf, "            <heading>%.4f</heading>\n", kf.HeadingDeg)
		fmt.Fprintf(&buf, "            <tilt>%.4f</tilt>\n", kf.TiltDeg)
		fmt.Fprintf(&buf, "            <roll>%.4f</roll>\n", kf.RollDeg)
		buf.WriteString("            <altitudeMode>absolute</altitudeMode>\n")
		buf.WriteString("          </Camera>\n")
		buf.WriteString("        </gx:FlyTo>\n")
	}

	buf.WriteString("      </gx:Playlist>\n")
	buf.WriteString("    </gx:Tour>\n")
	buf.WriteString("  </Document>\n")
	buf.WriteString("</kml>\n")

	return buf.Bytes(), nil
}

// xmlEscape escapes markup-invalid characters instead of dropping them.
func xmlEscape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
