package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/emfield/config"
	"github.com/pthm-cable/emfield/scene"
)

func TestGenerateWritesCSV(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	applyFlags(cfg, 20, 14, 7)
	if cfg.Grid.Width != 20 || cfg.Grid.Height != 14 || cfg.Scene.Seed != 7 {
		t.Fatalf("flags not applied: %+v %d", cfg.Grid, cfg.Scene.Seed)
	}

	path := filepath.Join(t.TempDir(), "scene.csv")
	if err := generate(cfg, path); err != nil {
		t.Fatalf("generate: %v", err)
	}
	s, err := scene.LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if w, h := s.Shape(); w != 20 || h != 14 {
		t.Errorf("expected 20x14 snapshot, got %dx%d", w, h)
	}
}

func TestSceneYAML(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	text, err := sceneYAML(cfg.Scene)
	if err != nil {
		t.Fatalf("sceneYAML: %v", err)
	}
	for _, want := range []string{"scene:", "conductivity_noise:", "wavelength:"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in yaml:\n%s", want, text)
		}
	}
}
