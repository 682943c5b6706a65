// Package config resolves the runtime configuration from three layers:
// documented defaults, an optional YAML file and SKYSHOT_* environment
// variables, in that order. Command-line flags are applied on top by the
// caller.
package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/avilov/skyshot/internal/director"
	"github.com/avilov/skyshot/internal/recommend"
)

// Config is the full runtime configuration of a generation run.
type Config struct {
	// Target location.
	Lat float64 `yaml:"lat" env:"SKYSHOT_LAT"`
	Lng float64 `yaml:"lng" env:"SKYSHOT_LNG"`

	// Batch shape.
	ShotCount   int     `yaml:"shot_count" env:"SKYSHOT_SHOT_COUNT"`
	DurationSec float64 `yaml:"duration_sec" env:"SKYSHOT_DURATION_SEC"`
	SampleRate  int     `yaml:"sample_rate" env:"SKYSHOT_SAMPLE_RATE"`

	// Output.
	OutputDir string   `yaml:"output_dir" env:"SKYSHOT_OUTPUT_DIR"`
	Formats   []string `yaml:"formats" env:"SKYSHOT_FORMATS" envSeparator:","`
	Preview   bool     `yaml:"preview" env:"SKYSHOT_PREVIEW"`

	// Exporter targets.
	FPS    int `yaml:"fps" env:"SKYSHOT_FPS"`
	Width  int `yaml:"width" env:"SKYSHOT_WIDTH"`
	Height int `yaml:"height" env:"SKYSHOT_HEIGHT"`

	// Execution.
	Workers   int  `yaml:"workers" env:"SKYSHOT_WORKERS"`
	ShowStats bool `yaml:"show_stats" env:"SKYSHOT_SHOW_STATS"`

	// Logging.
	LogLevel  string `yaml:"log_level" env:"SKYSHOT_LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"SKYSHOT_LOG_FORMAT"`

	Ranges     director.Ranges      `yaml:"ranges"`
	Thresholds recommend.Thresholds `yaml:"thresholds"`
}

// Default returns the documented defaults. Location is deliberately left
// zero: the caller must supply one.
func Default() Config {
	return Config{
		ShotCount:   5,
		DurationSec: 10,
		SampleRate:  30,
		OutputDir:   "output",
		Formats:     []string{"kml", "jsx", "esp", "metadata"},
		FPS:         24,
		Width:       1920,
		Height:      1080,
		Workers:     runtime.NumCPU(),
		LogLevel:    "info",
		LogFormat:   "text",
		Ranges:      director.DefaultRanges(),
		Thresholds:  recommend.DefaultThresholds(),
	}
}

// Load resolves the configuration. path may be empty; a named file that
// does not exist is an error, so a typo never silently falls back to
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}
