package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate a few frames
	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseValidate)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseShade)
		time.Sleep(200 * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()

	// Verify we got timing data
	if stats.AvgFrameDuration <= 0 {
		t.Error("expected positive average frame duration")
	}

	if _, ok := stats.PhaseAvg[PhaseValidate]; !ok {
		t.Error("expected validate phase to be tracked")
	}

	if _, ok := stats.PhaseAvg[PhaseShade]; !ok {
		t.Error("expected shade phase to be tracked")
	}

	if _, ok := stats.PhaseAvg[PhaseEncode]; ok {
		t.Error("expected encode phase to be absent")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window

	// Fill window more than once
	for i := 0; i < 10; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseShade)
		time.Sleep(10 * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()

	if stats.AvgFrameDuration <= 0 {
		t.Error("expected positive average frame duration after window filled")
	}

	if stats.FramesPerSecond <= 0 {
		t.Error("expected positive frames per second")
	}

	if stats.MinFrameDuration > stats.AvgFrameDuration || stats.AvgFrameDuration > stats.MaxFrameDuration {
		t.Errorf("expected min <= avg <= max, got %v %v %v",
			stats.MinFrameDuration, stats.AvgFrameDuration, stats.MaxFrameDuration)
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate with uneven phase durations
	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseValidate)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseShade)
		time.Sleep(2 * time.Millisecond)
		pc.EndFrame()
	}

	stats := pc.Stats()

	validatePct := stats.PhasePct[PhaseValidate]
	shadePct := stats.PhasePct[PhaseShade]

	if shadePct <= validatePct {
		t.Errorf("expected shade phase (%v%%) > validate phase (%v%%)", shadePct, validatePct)
	}

	row := stats.ToCSV(7)
	if row.Frame != 7 || row.ShadePct != shadePct || row.ValidatePct != validatePct {
		t.Errorf("unexpected csv row %+v", row)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	// Empty collector should return zero values without panicking
	if stats.AvgFrameDuration != 0 {
		t.Error("expected zero avg frame duration for empty collector")
	}

	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}

	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_PresentTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// First call establishes baseline
	pc.RecordPresent()
	time.Sleep(16 * time.Millisecond) // ~60fps frame time
	// Second call measures duration
	pc.RecordPresent()

	stats := pc.Stats()

	if stats.PresentInterval < 15*time.Millisecond {
		t.Errorf("expected present interval >= 15ms, got %v", stats.PresentInterval)
	}

	if stats.FPS <= 0 {
		t.Error("expected positive FPS")
	}

	// Sleep only guarantees a lower bound
	if stats.FPS > 70 {
		t.Errorf("expected FPS at most ~60 with 16ms frames, got %v", stats.FPS)
	}
}
