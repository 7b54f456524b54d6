package viewer

import (
	"context"
	"log/slog"
)

// RunHeadless renders frames without a window, advancing the pulse by dt
// per frame, then saves the last frame as a PNG named out (skipped when out
// is empty and no output directory is configured).
func (v *Viewer) RunHeadless(ctx context.Context, frames int, dt float32, out string) error {
	frames = max(frames, 1)

	slog.Info("starting headless render",
		"frames", frames,
		"mode", v.mode.String(),
		"output", out,
	)

	for i := 0; i < frames; i++ {
		if err := v.Step(ctx, dt); err != nil {
			return err
		}
	}

	perfStats := v.perfCollector.Stats()
	slog.Info("headless render done", "frames", v.frame, "perf", perfStats, "last", v.lastStats)

	if out == "" && v.outputManager == nil {
		return nil
	}
	_, err := v.SaveFrame(out)
	return err
}
