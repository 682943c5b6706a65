// Package engine runs a full generation batch: plan the shots, annotate
// each with its kinematic profile and platform recommendation, then fan the
// exports out over a bounded worker pool. One shot failing to export never
// takes the batch down; the report carries per-shot outcomes.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/avilov/skyshot/internal/config"
	"github.com/avilov/skyshot/internal/director"
	"github.com/avilov/skyshot/internal/export"
	"github.com/avilov/skyshot/internal/logging"
	"github.com/avilov/skyshot/internal/preview"
	"github.com/avilov/skyshot/internal/recommend"
	"github.com/avilov/skyshot/internal/trajectory"
)

// ShotResult is the outcome of one shot in a batch.
type ShotResult struct {
	Plan      *trajectory.ShotPlan
	Artifacts []string
	Err       error
}

// RunReport summarizes a finished batch.
type RunReport struct {
	RunID     string
	OutputDir string
	Results   []ShotResult
	Skipped   []director.ShotError
	Elapsed   time.Duration
}

// Exported counts the shots whose artifacts were all written.
func (r *RunReport) Exported() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

type Engine struct {
	cfg      config.Config
	director *director.Director
	formats  []export.Format
	log      logging.Logger
}

// New validates the configured formats and builds an engine. Planning
// parameters are validated later, per run.
func New(cfg config.Config, log logging.Logger) (*Engine, error) {
	if log == nil {
		log = logging.Noop()
	}

	formats := make([]export.Format, 0, len(cfg.Formats))
	for _, name := range cfg.Formats {
		format, err := export.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, format)
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("%w: no export formats configured", export.ErrFormat)
	}

	dir := director.New(trajectory.NewRegistry(), cfg.Ranges, cfg.SampleRate)
	return &Engine{cfg: cfg, director: dir, formats: formats, log: log}, nil
}

// Run executes one batch. The returned report is non-nil whenever planning
// succeeded, even if every export failed.
func (e *Engine) Run(ctx context.Context, overrides map[int]director.Override) (*RunReport, error) {
	start := time.Now()
	runID := uuid.NewString()

	plans, skipped, err := e.director.Plan(e.cfg.Lat, e.cfg.Lng, e.cfg.ShotCount, e.cfg.DurationSec, overrides)
	if err != nil {
		return nil, err
	}
	for _, skip := range skipped {
		e.log.Warn(ctx, "shot skipped",
			logging.Int("index", skip.Index),
			logging.String("preset", string(skip.Preset)),
			logging.Err(skip.Err))
	}

	runDir := filepath.Join(e.cfg.OutputDir, "run_"+start.Format("2006-01-02_15-04-05"))
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}

	e.log.Info(ctx, "batch started",
		logging.String("run_id", runID),
		logging.Int("shots", len(plans)),
		logging.String("output", runDir))

	opts := export.Options{FPS: e.cfg.FPS, Width: e.cfg.Width, Height: e.cfg.Height}
	results := make([]ShotResult, len(plans))

	g, gctx := errgroup.WithContext(ctx)
	workers := e.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, plan := range plans {
		i, plan := i, plan
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = ShotResult{Plan: plan, Err: err}
				return err
			}
			results[i] = e.exportShot(gctx, plan, runDir, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &RunReport{
		RunID:     runID,
		OutputDir: runDir,
		Results:   results,
		Skipped:   skipped,
		Elapsed:   time.Since(start),
	}
	e.log.Info(ctx, "batch finished",
		logging.String("run_id", runID),
		logging.Int("exported", report.Exported()),
		logging.Int("failed", len(results)-report.Exported()),
		logging.String("elapsed", report.Elapsed.Round(time.Millisecond).String()))
	return report, nil
}

// exportShot annotates one plan and writes all of its artifacts. The first
// failure stops this shot and is recorded on its result.
func (e *Engine) exportShot(ctx context.Context, plan *trajectory.ShotPlan, runDir string, opts export.Options) ShotResult {
	recommend.Annotate(plan, e.cfg.Thresholds)

	e.log.Debug(ctx, "shot planned",
		logging.String("shot", plan.ID),
		logging.String("preset", string(plan.Preset)),
		logging.String("platform", plan.Metadata.Platform),
		logging.Float("confidence", plan.Metadata.Confidence),
		logging.Float("max_speed_mps", plan.Metadata.Kinematics.MaxSpeedMps))

	result := ShotResult{Plan: plan}
	for _, format := range e.formats {
		artifact, err := export.Render(plan, format, opts)
		if err != nil {
			result.Err = fmt.Errorf("render %s as %s: %w", plan.ID, format, err)
			return result
		}
		path, err := export.WriteArtifact(runDir, artifact)
		if err != nil {
			result.Err = fmt.Errorf("write %s: %w", artifact.Name, err)
			return result
		}
		result.Artifacts = append(result.Artifacts, path)
	}

	if e.cfg.Preview {
		data, err := preview.Render(plan, preview.Options{})
		if err != nil {
			result.Err = fmt.Errorf("preview %s: %w", plan.ID, err)
			return result
		}
		path, err := export.WriteArtifact(runDir, export.Artifact{Name: plan.ID + "_preview.png", Data: data})
		if err != nil {
			result.Err = fmt.Errorf("write preview for %s: %w", plan.ID, err)
			return result
		}
		result.Artifacts = append(result.Artifacts, path)
	}

	return result
}
