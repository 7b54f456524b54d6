package main

import (
	"context"
	"fmt"
	"log/slog"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/emfield/config"
	"github.com/pthm-cable/emfield/field"
	"github.com/pthm-cable/emfield/render"
	"github.com/pthm-cable/emfield/renderer"
	"github.com/pthm-cable/emfield/scene"
	"github.com/pthm-cable/emfield/shader"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
)

// slider describes one tunable scene parameter.
type slider struct {
	label    string
	min, max float32
	get      func(*config.SceneConfig) float32
	set      func(*config.SceneConfig, float32)
	format   string
}

var sliders = []slider{
	{"Noise scale (features per grid width)", 1, 20,
		func(s *config.SceneConfig) float32 { return float32(s.ConductivityNoise.Scale) },
		func(s *config.SceneConfig, v float32) { s.ConductivityNoise.Scale = float64(v) }, "%.1f"},
	{"Noise octaves", 1, 6,
		func(s *config.SceneConfig) float32 { return float32(s.ConductivityNoise.Octaves) },
		func(s *config.SceneConfig, v float32) { s.ConductivityNoise.Octaves = int(v + 0.5) }, "%.0f"},
	{"Conductivity amplitude", 0, 1000,
		func(s *config.SceneConfig) float32 { return float32(s.ConductivityNoise.Amplitude) },
		func(s *config.SceneConfig, v float32) { s.ConductivityNoise.Amplitude = float64(v) }, "%.0f"},
	{"Pulse sigma (cells)", 1, 64,
		func(s *config.SceneConfig) float32 { return float32(s.Pulse.Sigma) },
		func(s *config.SceneConfig, v float32) { s.Pulse.Sigma = float64(v) }, "%.1f"},
	{"Pulse wavelength (cells)", 2, 64,
		func(s *config.SceneConfig) float32 { return float32(s.Pulse.Wavelength) },
		func(s *config.SceneConfig, v float32) { s.Pulse.Wavelength = float64(v) }, "%.1f"},
	{"Pulse angle (rad)", 0, 6.2832,
		func(s *config.SceneConfig) float32 { return float32(s.Pulse.Angle) },
		func(s *config.SceneConfig, v float32) { s.Pulse.Angle = float64(v) }, "%.2f"},
	{"Seed", 0, 99999,
		func(s *config.SceneConfig) float32 { return float32(s.Seed) },
		func(s *config.SceneConfig, v float32) { s.Seed = int64(v) }, "%.0f"},
}

// runPreview opens a window showing the shaded scene next to parameter
// sliders. Save writes the CSV to outPath; C copies the scene YAML.
func runPreview(cfg *config.Config, outPath string) {
	rl.InitWindow(windowWidth, windowHeight, "Scene Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	defaults := cfg.Scene
	r := render.New(render.OptionsFromConfig(cfg))
	defer r.Close()

	tex := renderer.NewFieldTexture()
	defer tex.Unload()

	raster := render.NewRaster(previewSize, previewSize)
	grid := shader.Grid{Width: cfg.Grid.Width, Height: cfg.Grid.Height, CellSize: cfg.Derived.CellSize32}
	mode := shader.ModeContinuous

	var snap *field.Snapshot
	needsRegen := true
	status := ""

	for !rl.WindowShouldClose() {
		if needsRegen {
			snap = generateScene(cfg)
			if err := r.Render(context.Background(), snap, grid, raster, mode); err != nil {
				slog.Error("render failed", "error", err)
			}
			tex.Update(raster)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		tex.Draw(rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize})
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		st := snap.Conductivity.Stats()
		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Conductivity min: %.1f  max: %.1f  mean: %.1f", st.Min, st.Max, st.Mean), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Grid: %dx%d  Mode: %s", grid.Width, grid.Height, mode), 15, statsY+20, 16, rl.DarkGray)
		if status != "" {
			rl.DrawText(status, 15, statsY+40, 16, rl.DarkGreen)
		}

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Scene Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		for _, s := range sliders {
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			cur := s.get(&cfg.Scene)
			next := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"", "",
				cur, s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, cur), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if next != cur {
				s.set(&cfg.Scene, next)
				needsRegen = true
			}
			panelY += 35
		}
		panelY += 10

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Toggle Mode") {
			if mode == shader.ModeContinuous {
				mode = shader.ModeSnapped
			} else {
				mode = shader.ModeContinuous
			}
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			cfg.Scene = defaults
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			cfg.Scene.Seed = int64(rl.GetRandomValue(0, 99999))
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Save CSV") {
			if err := generate(cfg, outPath); err != nil {
				status = err.Error()
			} else {
				status = "saved " + outPath
			}
		}

		rl.DrawText("Press C to copy scene YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			text, err := sceneYAML(cfg.Scene)
			if err != nil {
				status = err.Error()
			} else {
				rl.SetClipboardText(text)
				status = "scene yaml copied"
			}
		}

		rl.EndDrawing()
	}
}

func generateScene(cfg *config.Config) *field.Snapshot {
	return scene.Generate(cfg.Scene, cfg.Grid.Width, cfg.Grid.Height)
}

// sceneYAML renders the scene section as it would appear in config.yaml.
func sceneYAML(s config.SceneConfig) (string, error) {
	data, err := yaml.Marshal(map[string]config.SceneConfig{"scene": s})
	if err != nil {
		return "", fmt.Errorf("marshaling scene: %w", err)
	}
	return string(data), nil
}
