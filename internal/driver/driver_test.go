package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/formlang/formc/internal/driverconfig"
)

func TestSegmentPathMangledsDashesAndDots(t *testing.T) {
	if got, want := segmentPath("app.core-utils.widget"), "app/core_utils/widget"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestCandidatesEnumeratesSearchPathAndExtensions(t *testing.T) {
	d := &Driver{Config: driverconfig.Config{SearchPath: []string{"src", "vendor"}}}
	got := d.candidates("app.core")
	want := []string{
		"src/app/core.frm", "src/app/core.frmx",
		"vendor/app/core.frm", "vendor/app/core.frmx",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidate %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestDestinationPathJoinsDirsAndExtension(t *testing.T) {
	d := &Driver{Config: driverconfig.Config{DestinationDir: "lib", GeneratedDir: "gen"}}
	if got, want := d.DestinationPath("app.core"), "lib/gen/app/core.dart"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

// TestResolvePicksFirstExistingInSearchPathOrder exercises the afs-backed
// Resolve against a real temp directory tree rather than a fake, since afs's
// local-disk backend needs no network and keeps this an exact rehearsal of
// production behavior (spec.md §6).
func TestResolvePicksFirstExistingInSearchPathOrder(t *testing.T) {
	root := t.TempDir()
	srcA := filepath.Join(root, "a")
	srcB := filepath.Join(root, "b")
	if err := os.MkdirAll(filepath.Join(srcA, "app"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(srcB, "app"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	// Only "b" has the file; "a" is declared first on the search path but
	// must not be picked since it doesn't exist there.
	if err := os.WriteFile(filepath.Join(srcB, "app", "core.frm"), []byte("(ns app.core)"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	d := New(driverconfig.Config{SearchPath: []string{srcA, srcB}})
	got, err := d.Resolve(context.Background(), "app.core")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(srcB, "app", "core.frm")
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestResolveReportsNotFound(t *testing.T) {
	root := t.TempDir()
	d := New(driverconfig.Config{SearchPath: []string{root}})
	if _, err := d.Resolve(context.Background(), "missing.ns"); err == nil {
		t.Fatal("expected an error for an unresolvable namespace")
	}
}

func TestWriteUploadsRenderedContent(t *testing.T) {
	root := t.TempDir()
	d := New(driverconfig.Config{DestinationDir: root, GeneratedDir: "gen"})
	if err := d.Write(context.Background(), "app.core", "final x = 1;\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "gen", "app", "core.dart"))
	if err != nil {
		t.Fatalf("expected generated file to exist: %v", err)
	}
	if string(data) != "final x = 1;\n" {
		t.Fatalf("unexpected content: %q", data)
	}
}
