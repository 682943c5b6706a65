// Package preview renders a quick-look PNG for a shot plan: a top-down plot
// of the camera path around the target, with altitude and platform captions
// and a QR code that opens the target location in a maps client. The image
// is a planning aid for field crews, not a render of the shot itself.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/avilov/skyshot/internal/geo"
	"github.com/avilov/skyshot/internal/system"
	"github.com/avilov/skyshot/internal/trajectory"
)

// Options size the preview card. Zero values fall back to the defaults.
type Options struct {
	Width  int
	Height int
	QRSize int
}

// DefaultOptions returns the documented preview defaults.
func DefaultOptions() Options {
	return Options{Width: 800, Height: 600, QRSize: 120}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	if o.QRSize <= 0 {
		o.QRSize = def.QRSize
	}
	return o
}

var (
	backgroundColor = color.RGBA{R: 18, G: 24, B: 32, A: 255}
	gridColor       = color.RGBA{R: 40, G: 50, B: 62, A: 255}
	pathColor       = color.RGBA{R: 80, G: 200, B: 255, A: 255}
	targetColor     = color.RGBA{R: 255, G: 90, B: 90, A: 255}
	startColor      = color.RGBA{R: 120, G: 255, B: 140, A: 255}
	textColor       = color.RGBA{R: 220, G: 226, B: 232, A: 255}
)

// MapsLink builds a maps URL for the shot target, the payload of the QR code.
func MapsLink(lat, lng float64) string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%.6f,%.6f", lat, lng)
}

// Render draws the preview card for one shot plan and returns it PNG-encoded.
func Render(plan *trajectory.ShotPlan, opts Options) ([]byte, error) {
	if plan == nil || len(plan.Keyframes) == 0 {
		return nil, fmt.Errorf("preview: empty shot plan %q", planID(plan))
	}
	opts = opts.withDefaults()

	img := system.GetImage(image.Rect(0, 0, opts.Width, opts.Height))
	defer system.PutImage(img)
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	// Everything is plotted in the metric east-north plane anchored at the
	// target, north up.
	frame := geo.NewENUFrame(plan.Params.TargetLat, plan.Params.TargetLng, 0)
	points := make([][2]float64, len(plan.Keyframes))
	extent := 10.0
	for i, kf := range plan.Keyframes {
		east, north, _ := frame.ToENU(kf.Lat, kf.Lng, kf.AltM)
		points[i] = [2]float64{east, north}
		extent = math.Max(extent, math.Max(math.Abs(east), math.Abs(north)))
	}
	extent *= 1.15

	cx, cy := float64(opts.Width)/2, float64(opts.Height)/2
	scale := math.Min(cx, cy) / extent
	project := func(p [2]float64) (int, int) {
		return int(math.Round(cx + p[0]*scale)), int(math.Round(cy - p[1]*scale))
	}

	drawGrid(img, opts, scale)

	for i := 1; i < len(points); i++ {
		x0, y0 := project(points[i-1])
		x1, y1 := project(points[i])
		drawLine(img, x0, y0, x1, y1, pathColor)
	}

	tx, ty := project([2]float64{0, 0})
	drawCross(img, tx, ty, 8, targetColor)
	sx, sy := project(points[0])
	drawCross(img, sx, sy, 5, startColor)

	drawCaptions(img, plan, opts)

	if err := drawQR(img, plan, opts); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("preview: encode %s: %w", plan.ID, err)
	}
	return buf.Bytes(), nil
}

func planID(plan *trajectory.ShotPlan) string {
	if plan == nil {
		return ""
	}
	return plan.ID
}

// drawGrid draws 100 m reference rings as faint square outlines.
func drawGrid(img *image.RGBA, opts Options, scale float64) {
	cx, cy := opts.Width/2, opts.Height/2
	for ring := 1; ring <= 5; ring++ {
		r := int(math.Round(float64(ring) * 100 * scale))
		if r < 4 || r > opts.Width {
			continue
		}
		drawLine(img, cx-r, cy-r, cx+r, cy-r, gridColor)
		drawLine(img, cx+r, cy-r, cx+r, cy+r, gridColor)
		drawLine(img, cx+r, cy+r, cx-r, cy+r, gridColor)
		drawLine(img, cx-r, cy+r, cx-r, cy-r, gridColor)
	}
}

func drawCaptions(img *image.RGBA, plan *trajectory.ShotPlan, opts Options) {
	k := plan.Metadata.Kinematics
	lines := []string{
		plan.Name,
		fmt.Sprintf("preset %s  duration %.1fs  samples %d", plan.Preset, plan.DurationSec, len(plan.Keyframes)),
		fmt.Sprintf("alt %.0f-%.0fm  speed avg %.1f max %.1f m/s", k.MinAltM, k.MaxAltM, k.AvgSpeedMps, k.MaxSpeedMps),
	}
	if plan.Metadata.Platform != "" {
		lines = append(lines, fmt.Sprintf("platform %s (%.0f%%)", plan.Metadata.Platform, plan.Metadata.Confidence*100))
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		drawer.Dot = fixed.Point26_6{
			X: fixed.Int26_6(12 << 6),
			Y: fixed.Int26_6((20 + i*16) << 6),
		}
		drawer.DrawString(line)
	}
}

// drawQR composites the maps QR code into the bottom-right corner.
func drawQR(img *image.RGBA, plan *trajectory.ShotPlan, opts Options) error {
	code, err := qrcode.New(MapsLink(plan.Params.TargetLat, plan.Params.TargetLng), qrcode.Medium)
	if err != nil {
		return fmt.Errorf("preview: qr for %s: %w", plan.ID, err)
	}
	qrImg := code.Image(opts.QRSize)

	origin := image.Pt(opts.Width-opts.QRSize-10, opts.Height-opts.QRSize-10)
	rect := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(opts.QRSize, opts.QRSize))}
	draw.Draw(img, rect, qrImg, qrImg.Bounds().Min, draw.Src)
	return nil
}

// drawLine rasterizes a segment with the integer Bresenham walk.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if image.Pt(x0, y0).In(img.Bounds()) {
			img.SetRGBA(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func drawCross(img *image.RGBA, x, y, arm int, c color.RGBA) {
	drawLine(img, x-arm, y, x+arm, y, c)
	drawLine(img, x, y-arm, x, y+arm, c)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
