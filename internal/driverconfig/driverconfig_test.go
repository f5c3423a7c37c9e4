package driverconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := cfg, Default(); got.DestinationDir != want.DestinationDir ||
		got.GeneratedDir != want.GeneratedDir || got.InvokeThreshold != want.InvokeThreshold ||
		len(got.SearchPath) != len(want.SearchPath) {
		t.Fatalf("expected Default(), got %+v", got)
	}
}

func TestLoadPartialFileFallsBackFieldByField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formc.yaml")
	contents := "destination_dir: build\n"
	if err := writeFile(path, contents); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DestinationDir != "build" {
		t.Fatalf("expected overridden destination_dir, got %q", cfg.DestinationDir)
	}
	def := Default()
	if cfg.GeneratedDir != def.GeneratedDir {
		t.Fatalf("expected default generated_dir, got %q", cfg.GeneratedDir)
	}
	if cfg.InvokeThreshold != def.InvokeThreshold {
		t.Fatalf("expected default invoke_threshold, got %d", cfg.InvokeThreshold)
	}
	if len(cfg.SearchPath) != 1 || cfg.SearchPath[0] != "src" {
		t.Fatalf("expected default search_path, got %v", cfg.SearchPath)
	}
}

func TestLoadFullFileOverridesEverything(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formc.yaml")
	contents := "search_path:\n  - src\n  - vendor\ndestination_dir: out\ngenerated_dir: gen2\ninvoke_threshold: 4\n"
	if err := writeFile(path, contents); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.SearchPath) != 2 || cfg.SearchPath[1] != "vendor" {
		t.Fatalf("expected overridden search_path, got %v", cfg.SearchPath)
	}
	if cfg.DestinationDir != "out" || cfg.GeneratedDir != "gen2" || cfg.InvokeThreshold != 4 {
		t.Fatalf("expected fully overridden config, got %+v", cfg)
	}
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
