// Field render tool - shades one snapshot to a PNG file for inspection.
//
// Usage: go run ./cmd/fieldrender -input snapshot.csv -out frame.png
//
// With -compare it writes both sampling variants and their absolute
// difference next to -out, and logs how far they diverge.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/emfield/config"
	"github.com/pthm-cable/emfield/field"
	"github.com/pthm-cable/emfield/render"
	"github.com/pthm-cable/emfield/scene"
	"github.com/pthm-cable/emfield/shader"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	inputCSV := flag.String("input", "", "Snapshot CSV (empty = generated scene)")
	outPath := flag.String("out", "field.png", "Output PNG path")
	width := flag.Int("width", 0, "Render width (0 = config screen width)")
	height := flag.Int("height", 0, "Render height (0 = config screen height)")
	mode := flag.String("mode", "", "Sampling mode: auto, continuous or snapped (empty = use config)")
	backend := flag.String("backend", "", "Renderer backend: scalar or indexed (empty = use config)")
	cellSize := flag.Float64("cell-size", 0, "Physical cell size (0 = config)")
	scale := flag.Int("scale", 1, "PNG upscale factor")
	compare := flag.Bool("compare", false, "Render both sampling variants and their difference")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)
	render.SetLogger(logger)

	if err := run(context.Background(), *configPath, *inputCSV, *outPath, *width, *height, *mode, *backend, *cellSize, *scale, *compare); err != nil {
		fmt.Fprintf(os.Stderr, "fieldrender: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, inputCSV, outPath string, width, height int, modeFlag, backendFlag string, cellSize float64, scale int, compare bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if modeFlag != "" {
		cfg.Render.Mode = modeFlag
	}
	if backendFlag != "" {
		cfg.Render.Backend = backendFlag
	}
	if width <= 0 {
		width = cfg.Screen.Width
	}
	if height <= 0 {
		height = cfg.Screen.Height
	}
	if cellSize <= 0 {
		cellSize = cfg.Grid.CellSize
	}

	var snap *field.Snapshot
	if inputCSV != "" {
		if snap, err = scene.LoadCSV(inputCSV); err != nil {
			return err
		}
	} else {
		snap = scene.Generate(cfg.Scene, cfg.Grid.Width, cfg.Grid.Height)
	}
	gw, gh := snap.Shape()
	grid := shader.Grid{Width: gw, Height: gh, CellSize: float32(cellSize)}

	r := render.New(render.OptionsFromConfig(cfg))
	defer r.Close()

	if compare {
		return renderComparison(ctx, r, snap, grid, width, height, outPath, scale)
	}

	b, err := render.ParseBackend(cfg.Render.Backend)
	if err != nil {
		return err
	}
	m, err := render.SelectMode(b, cfg.Render.Mode)
	if err != nil {
		return err
	}

	dst := render.NewRaster(width, height)
	if err := r.Render(ctx, snap, grid, dst, m); err != nil {
		return err
	}
	if err := dst.SavePNG(outPath, scale); err != nil {
		return err
	}
	fmt.Printf("Field rendered to: %s (%dx%d, %s)\n", outPath, width*max(scale, 1), height*max(scale, 1), m)
	return nil
}

// renderComparison writes <out>_continuous.png, <out>_snapped.png and
// <out>_diff.png.
func renderComparison(ctx context.Context, r *render.Renderer, snap *field.Snapshot, grid shader.Grid, width, height int, outPath string, scale int) error {
	cont := render.NewRaster(width, height)
	snapped := render.NewRaster(width, height)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.Render(gctx, snap, grid, cont, shader.ModeContinuous) })
	g.Go(func() error { return r.Render(gctx, snap, grid, snapped, shader.ModeSnapped) })
	if err := g.Wait(); err != nil {
		return err
	}

	base := strings.TrimSuffix(outPath, ".png")
	outputs := []struct {
		suffix string
		raster *render.Raster
	}{
		{"_continuous.png", cont},
		{"_snapped.png", snapped},
		{"_diff.png", render.AbsDiff(cont, snapped)},
	}
	for _, o := range outputs {
		if err := o.raster.SavePNG(base+o.suffix, scale); err != nil {
			return err
		}
	}

	d := render.DiffRasters(cont, snapped)
	slog.Info("sampling comparison",
		"pixels", d.Pixels,
		"differing", d.Differing,
		"max_abs", d.MaxAbs,
		"mean_abs", d.MeanAbs,
	)
	fmt.Printf("Comparison written to: %s_{continuous,snapped,diff}.png (%d/%d pixels differ)\n", base, d.Differing, d.Pixels)
	return nil
}
