package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/avilov/skyshot/internal/config"
	"github.com/avilov/skyshot/internal/engine"
	"github.com/avilov/skyshot/internal/export"
	"github.com/avilov/skyshot/internal/logging"
	"github.com/avilov/skyshot/internal/recommend"
	"github.com/avilov/skyshot/internal/system"
)

func main() {
	configPtr := flag.String("config", "", "Path to a YAML config file (optional)")
	latPtr := flag.Float64("lat", 0, "Target latitude")
	lngPtr := flag.Float64("lng", 0, "Target longitude")
	shotsPtr := flag.Int("shots", 0, "Number of shots in the batch")
	durationPtr := flag.Float64("duration", 0, "Duration of each shot in seconds")
	samplePtr := flag.Int("sample-rate", 0, "Keyframe samples per second")
	outputPtr := flag.String("output", "", "Output directory (a run_<timestamp> subdirectory is created)")
	formatsPtr := flag.String("formats", "", "Comma-separated export formats: kml, jsx, esp, metadata")
	workersPtr := flag.Int("workers", 0, "Parallel export workers")
	fpsPtr := flag.Int("fps", 0, "Frame rate for the script and track exporters")
	widthPtr := flag.Int("width", 0, "Composition width for the script exporter")
	heightPtr := flag.Int("height", 0, "Composition height for the script exporter")
	previewPtr := flag.Bool("preview", false, "Write a PNG path preview per shot")
	importPtr := flag.String("import", "", "Import an edited .esp track and re-export it instead of generating")
	statsPtr := flag.Bool("stats", false, "Print host and timing stats after the run")
	logLevelPtr := flag.String("log-level", "", "Log level: debug, info, warn, error")
	logFormatPtr := flag.String("log-format", "", "Log format: text, json")

	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[-] Config error: %v\n", err)
		os.Exit(1)
	}

	// Flags beat file and environment, but only the ones actually given.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lat":
			cfg.Lat = *latPtr
		case "lng":
			cfg.Lng = *lngPtr
		case "shots":
			cfg.ShotCount = *shotsPtr
		case "duration":
			cfg.DurationSec = *durationPtr
		case "sample-rate":
			cfg.SampleRate = *samplePtr
		case "output":
			cfg.OutputDir = *outputPtr
		case "formats":
			cfg.Formats = strings.Split(*formatsPtr, ",")
		case "workers":
			cfg.Workers = *workersPtr
		case "fps":
			cfg.FPS = *fpsPtr
		case "width":
			cfg.Width = *widthPtr
		case "height":
			cfg.Height = *heightPtr
		case "preview":
			cfg.Preview = *previewPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		case "log-level":
			cfg.LogLevel = *logLevelPtr
		case "log-format":
			cfg.LogFormat = *logFormatPtr
		}
	})

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	system.InitResourceLimits(ctx, log)

	if *importPtr != "" {
		if err := runImport(ctx, cfg, log, *importPtr); err != nil {
			log.Error(ctx, "import failed", logging.Err(err))
			os.Exit(1)
		}
		return
	}

	eng, err := engine.New(cfg, log)
	if err != nil {
		log.Error(ctx, "engine setup failed", logging.Err(err))
		os.Exit(1)
	}

	report, err := eng.Run(ctx, nil)
	if err != nil {
		log.Error(ctx, "batch failed", logging.Err(err))
		os.Exit(1)
	}

	for _, res := range report.Results {
		if res.Err != nil {
			log.Error(ctx, "shot failed", logging.String("shot", res.Plan.ID), logging.Err(res.Err))
			continue
		}
		fmt.Printf("[>] %s: %s (%s, %.0f%%) -> %d artifacts\n",
			res.Plan.ID, res.Plan.Name,
			res.Plan.Metadata.Platform, res.Plan.Metadata.Confidence*100,
			len(res.Artifacts))
	}
	fmt.Printf("[+] Run %s: %d/%d shots exported to %s\n",
		report.RunID, report.Exported(), len(report.Results), report.OutputDir)

	if cfg.ShowStats {
		host := system.CollectHostReport(ctx)
		fmt.Println("--- [RUN REPORT] ---")
		fmt.Printf("Host: %s\n", host)
		fmt.Printf("Total Time: %.2fs\n", report.Elapsed.Seconds())
		fmt.Printf("Shots: %d exported, %d failed, %d skipped\n",
			report.Exported(), len(report.Results)-report.Exported(), len(report.Skipped))
		fmt.Println("--------------------")
	}

	if report.Exported() < len(report.Results) {
		os.Exit(1)
	}
}

// runImport reads a track edited in the external animator and regenerates
// every configured artifact from it, writing the round-tripped track itself
// via the lossless path.
func runImport(ctx context.Context, cfg config.Config, log logging.Logger, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	opts := export.Options{FPS: cfg.FPS, Width: cfg.Width, Height: cfg.Height}
	plan, track, err := export.ParseESP(data, opts)
	if err != nil {
		return err
	}
	recommend.Annotate(plan, cfg.Thresholds)

	log.Info(ctx, "track imported",
		logging.String("shot", plan.ID),
		logging.Int("keyframes", len(plan.Keyframes)),
		logging.String("platform", plan.Metadata.Platform))

	outDir := filepath.Dir(path)
	written := 0
	for _, name := range cfg.Formats {
		format, err := export.ParseFormat(name)
		if err != nil {
			return err
		}

		var artifact export.Artifact
		if format == export.FormatESP {
			payload, err := export.ExportEditedESP(plan, track, opts)
			if err != nil {
				return err
			}
			artifact = export.Artifact{Name: plan.ID + "_reexport.esp", Format: format, Data: payload}
		} else {
			artifact, err = export.Render(plan, format, opts)
			if err != nil {
				return err
			}
		}

		full, err := export.WriteArtifact(outDir, artifact)
		if err != nil {
			return err
		}
		log.Info(ctx, "artifact written", logging.String("path", full))
		written++
	}

	fmt.Printf("[+] Imported %s: %d artifacts written to %s\n", plan.ID, written, outDir)
	return nil
}
