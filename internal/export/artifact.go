// Package export serializes shot plans into the external formats consumed by
// downstream tools: KML tours, After Effects camera scripts, camera-track
// project files and metadata dumps. The track codec also parses project
// files back into the internal model.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/avilov/skyshot/internal/trajectory"
)

var (
	// ErrFormat reports a value not representable in the target format.
	ErrFormat = errors.New("export format error")
	// ErrTrackParse reports corrupt or unrecognized camera-track input.
	ErrTrackParse = errors.New("track parse error")
)

// Format is the closed set of export targets. Adding one is a compile-time
// decision: every switch over Format handles all cases explicitly.
type Format int

const (
	FormatKML Format = iota
	FormatJSX
	FormatESP
	FormatMetadata
)

// Formats lists every supported format.
var Formats = []Format{FormatKML, FormatJSX, FormatESP, FormatMetadata}

func (f Format) String() string {
	switch f {
	case FormatKML:
		return "kml"
	case FormatJSX:
		return "jsx"
	case FormatESP:
		return "esp"
	case FormatMetadata:
		return "metadata"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

func (f Format) ext() string {
	switch f {
	case FormatKML:
		return ".kml"
	case FormatJSX:
		return ".jsx"
	case FormatESP:
		return ".esp"
	case FormatMetadata:
		return ".yaml"
	}
	return ""
}

// ParseFormat resolves a format name from config or flags.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "kml":
		return FormatKML, nil
	case "jsx":
		return FormatJSX, nil
	case "esp":
		return FormatESP, nil
	case "metadata", "meta", "yaml":
		return FormatMetadata, nil
	default:
		return 0, fmt.Errorf("%w: unknown format %q", ErrFormat, name)
	}
}

// Artifact is a named immutable payload produced from exactly one ShotPlan.
type Artifact struct {
	Name   string
	Format Format
	Data   []byte
}

// Options tune the exporters. Zero values fall back to DefaultOptions.
type Options struct {
	// FPS is the frame rate of the target project for the script and track
	// codecs.
	FPS int
	// Width, Height size the composition created by the script codec.
	Width, Height int
}

// DefaultOptions returns the documented exporter defaults.
func DefaultOptions() Options {
	return Options{FPS: 24, Width: 1920, Height: 1080}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.FPS <= 0 {
		o.FPS = def.FPS
	}
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	return o
}

// Render serializes one shot plan into one artifact. It reads the plan
// without mutation and is pure: no clocks, no I/O.
func Render(plan *trajectory.ShotPlan, format Format, opts Options) (Artifact, error) {
	if plan == nil || len(plan.Keyframes) == 0 {
		return Artifact{}, fmt.Errorf("%w: empty shot plan", ErrFormat)
	}
	opts = opts.withDefaults()

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatKML:
		data, err = renderKML(plan)
	case FormatJSX:
		data, err = renderJSX(plan, opts)
	case FormatESP:
		data, err = renderESP(plan, nil, opts)
	case FormatMetadata:
		data, err = renderMetadata(plan)
	default:
		return Artifact{}, fmt.Errorf("%w: unknown format %d", ErrFormat, int(format))
	}
	if err != nil {
		return Artifact{}, err
	}

	return Artifact{
		Name:   plan.ID + format.ext(),
		Format: format,
		Data:   data,
	}, nil
}

// WriteArtifact publishes an artifact under dir atomically: the payload goes
// to a temporary file first and is renamed into place only on full success,
// so a partially written artifact is never visible at its final path.
func WriteArtifact(dir string, artifact Artifact) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(artifact.Data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	final := filepath.Join(dir, artifact.Name)
	if err := os.Rename(tmpName, final); err != nil {
		return "", err
	}
	return final, nil
}
