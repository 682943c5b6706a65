package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avilov/skyshot/internal/config"
	"github.com/avilov/skyshot/internal/director"
	"github.com/avilov/skyshot/internal/export"
	"github.com/avilov/skyshot/internal/trajectory"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Lat = 40.7484
	cfg.Lng = -73.9857
	cfg.ShotCount = 2
	cfg.DurationSec = 6
	cfg.SampleRate = 10
	cfg.Workers = 2
	cfg.Formats = []string{"kml", "metadata"}
	cfg.OutputDir = t.TempDir()
	return cfg
}

func TestRunWritesArtifactsForEveryShot(t *testing.T) {
	eng, err := New(testConfig(t), nil)
	require.NoError(t, err)

	report, err := eng.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, 2, report.Exported())
	assert.Empty(t, report.Skipped)
	assert.NotEmpty(t, report.RunID)

	for _, res := range report.Results {
		require.NoError(t, res.Err)
		require.Len(t, res.Artifacts, 2)
		for _, path := range res.Artifacts {
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
			assert.Equal(t, report.OutputDir, filepath.Dir(path))
		}
		// Plans come back annotated.
		assert.NotEmpty(t, res.Plan.Metadata.Platform)
		assert.Greater(t, res.Plan.Metadata.Kinematics.SegmentCount, 0)
	}
}

func TestRunWritesPreviewWhenEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.ShotCount = 1
	cfg.Formats = []string{"kml"}
	cfg.Preview = true

	eng, err := New(cfg, nil)
	require.NoError(t, err)

	report, err := eng.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	require.NoError(t, report.Results[0].Err)

	require.Len(t, report.Results[0].Artifacts, 2)
	assert.Contains(t, report.Results[0].Artifacts[1], "_preview.png")
}

func TestRunRecordsSkippedShots(t *testing.T) {
	cfg := testConfig(t)
	eng, err := New(cfg, nil)
	require.NoError(t, err)

	overrides := map[int]director.Override{
		1: {Preset: trajectory.Preset("matrix_bullet_time")},
	}
	report, err := eng.Run(context.Background(), overrides)
	require.NoError(t, err)

	assert.Len(t, report.Results, 1)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 1, report.Skipped[0].Index)
	assert.ErrorIs(t, report.Skipped[0].Err, trajectory.ErrUnsupportedPreset)
}

func TestRunRejectsInvalidBatch(t *testing.T) {
	cfg := testConfig(t)
	cfg.ShotCount = 0

	eng, err := New(cfg, nil)
	require.NoError(t, err)

	_, err = eng.Run(context.Background(), nil)
	require.ErrorIs(t, err, director.ErrInvalidParameter)
}

func TestRunCancelledContext(t *testing.T) {
	eng, err := New(testConfig(t), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = eng.Run(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	cfg := testConfig(t)
	cfg.Formats = []string{"kml", "mp4"}

	_, err := New(cfg, nil)
	require.ErrorIs(t, err, export.ErrFormat)
}

func TestNewRejectsEmptyFormats(t *testing.T) {
	cfg := testConfig(t)
	cfg.Formats = nil

	_, err := New(cfg, nil)
	require.ErrorIs(t, err, export.ErrFormat)
}
