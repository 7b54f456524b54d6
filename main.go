package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/emfield/config"
	"github.com/pthm-cable/emfield/render"
	"github.com/pthm-cable/emfield/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Render without a window")
	inputCSV := flag.String("input", "", "Snapshot CSV to display (empty = generated scene)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config copy and saved frames")
	out := flag.String("out", "", "Headless: PNG file for the last frame")
	mode := flag.String("mode", "", "Sampling mode: auto, continuous or snapped (empty = use config)")
	backend := flag.String("backend", "", "Renderer backend: scalar or indexed (empty = use config)")
	frames := flag.Int("frames", 1, "Headless: number of frames to render")
	dt := flag.Float64("dt", 1.0/30, "Headless: seconds of pulse travel per frame")
	scale := flag.Int("scale", 0, "Upscale factor for saved PNGs (0 = window scale)")
	logFrames := flag.Bool("log-frames", false, "Output per-frame stats via slog")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	render.SetLogger(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *mode != "" {
		cfg.Render.Mode = *mode
	}
	if *backend != "" {
		cfg.Render.Backend = *backend
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid flags", "error", err)
		os.Exit(1)
	}

	opts := viewer.Options{
		InputCSV:  *inputCSV,
		OutputDir: *outputDir,
		Scale:     *scale,
		LogFrames: *logFrames || cfg.Telemetry.LogFrames,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, opts, *headless, *frames, float32(*dt), *out); err != nil {
		slog.Error("emfield failed", "error", err)
		os.Exit(1)
	}
}

// run builds the viewer and drives it headless or in a window. The viewer is
// created before any window opens, so a bad config or snapshot fails the
// same way in both modes.
func run(ctx context.Context, cfg *config.Config, opts viewer.Options, headless bool, frames int, dt float32, out string) (err error) {
	v, err := viewer.New(cfg, opts)
	if err != nil {
		return fmt.Errorf("starting viewer: %w", err)
	}
	closeViewer := func() {
		if cerr := v.Close(); err == nil {
			err = cerr
		}
	}

	if headless {
		// Headless mode - pure CPU rendering, no raylib needed
		defer closeViewer()
		if err := v.RunHeadless(ctx, frames, dt, out); err != nil {
			return fmt.Errorf("headless render: %w", err)
		}
		return nil
	}

	// Graphical mode
	w, h := viewer.WindowSize(cfg)
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(w, h, "EM Field")
	defer rl.CloseWindow()
	// Textures must be released while the window is still open.
	defer closeViewer()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	v.EnableWindow()

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		if err := v.Update(ctx); err != nil {
			return fmt.Errorf("frame %d: %w", v.Frame(), err)
		}
		v.Draw(ctx)
	}
	return nil
}
