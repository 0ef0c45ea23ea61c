package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/phaseportrait/internal/config"
)

func resetFlags() {
	configFile, preset, outDir, integrator, exportDir = "", "", ".", "rk45", ""
	dataDir = defaultDataDir
	dpi = config.DefaultDPI
	show = false
}

func TestLoadConfigDefaults(t *testing.T) {
	resetFlags()
	root := newRootCmd()
	if err := root.ParseFlags(nil); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(root)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Render.DPI != 600 || cfg.Output.Dir != "." || cfg.Integrator.Method != "rk45" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	resetFlags()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	file := config.DefaultConfig()
	file.Render.DPI = 150
	file.Integrator.Method = "euler"
	if err := config.Save(path, file); err != nil {
		t.Fatal(err)
	}

	root := newRootCmd()
	if err := root.ParseFlags([]string{"--config", path, "--integrator", "rk4"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(root)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Render.DPI != 150 {
		t.Errorf("dpi = %d, want value from file", cfg.Render.DPI)
	}
	if cfg.Integrator.Method != "rk4" {
		t.Errorf("integrator = %s, want flag value", cfg.Integrator.Method)
	}
}

func TestLoadConfigUnknownPreset(t *testing.T) {
	resetFlags()
	root := newRootCmd()
	if err := root.ParseFlags([]string{"--preset", "nope"}); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(root); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestRootWritesImages(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	root := newRootCmd()
	root.SetArgs([]string{"--out-dir", dir, "--preset", "draft", "--export", filepath.Join(dir, "runs")})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	for _, name := range []string{config.FieldFile, config.TrajectoryFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}

	runs, err := os.ReadDir(filepath.Join(dir, "runs"))
	if err != nil {
		t.Fatalf("read export dir: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("got %d exported runs, want 1", len(runs))
	}
}

func TestReplotStoredRun(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	runsDir := filepath.Join(dir, "runs")
	root := newRootCmd()
	root.SetArgs([]string{"--out-dir", dir, "--preset", "draft", "--export", runsDir})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	entries, err := os.ReadDir(runsDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one stored run, got %v (%v)", entries, err)
	}
	runID := entries[0].Name()

	resetFlags()
	list := newRootCmd()
	list.SetArgs([]string{"runs", "--dir", runsDir})
	if err := list.Execute(); err != nil {
		t.Fatalf("runs: %v", err)
	}

	resetFlags()
	outDir := filepath.Join(dir, "replot")
	replot := newRootCmd()
	replot.SetArgs([]string{"replot", runID, "--dir", runsDir, "--out-dir", outDir, "--preset", "draft"})
	if err := replot.Execute(); err != nil {
		t.Fatalf("replot: %v", err)
	}
	for _, name := range []string{config.FieldFile, config.TrajectoryFile} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("replot did not write %s: %v", name, err)
		}
	}

	resetFlags()
	missing := newRootCmd()
	missing.SetArgs([]string{"replot", "portrait_0", "--dir", runsDir})
	if err := missing.Execute(); err == nil {
		t.Error("expected error for unknown run")
	}
}
