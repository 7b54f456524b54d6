package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/emfield/config"
	"github.com/pthm-cable/emfield/scene"
)

func TestRunSingle(t *testing.T) {
	out := filepath.Join(t.TempDir(), "f.png")
	if err := run(context.Background(), "", "", out, 24, 16, "snapped", "", 0, 2, false); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected %s: %v", out, err)
	}

	if err := run(context.Background(), "", "", out, 24, 16, "continuous", "indexed", 0, 1, false); err == nil {
		t.Error("expected continuous sampling on the indexed backend to fail")
	}
}

func TestRunCompareFromCSV(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	in := filepath.Join(dir, "snap.csv")
	if err := scene.SaveCSV(in, scene.Generate(cfg.Scene, 10, 8)); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "cmp.png")
	if err := run(context.Background(), "", in, out, 30, 24, "", "", 0.01, 1, true); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, name := range []string{"cmp_continuous.png", "cmp_snapped.png", "cmp_diff.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}
