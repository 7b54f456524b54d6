package viewer

import (
	"log/slog"

	"github.com/pthm-cable/emfield/telemetry"
)

// recordFrame logs and writes per-frame stats, and flushes perf stats once
// per perf window.
func (v *Viewer) recordFrame(stats telemetry.FrameStats) {
	v.lastStats = stats

	if v.opts.LogFrames {
		slog.Info("frame", "stats", stats)
	}

	if v.outputManager != nil {
		if err := v.outputManager.WriteFrame(stats); err != nil {
			slog.Error("failed to write frame stats", "error", err)
		}
	}

	window := v.cfg.Telemetry.PerfWindow
	if window <= 0 || v.frame%window != 0 {
		return
	}

	perfStats := v.perfCollector.Stats()
	if v.opts.LogFrames {
		slog.Info("perf", "stats", perfStats)
	}
	if v.outputManager != nil {
		if err := v.outputManager.WritePerf(perfStats, v.frame); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
