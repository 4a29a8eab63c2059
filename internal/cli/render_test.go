package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmylchreest/atrium/internal/engine"
)

func TestRenderCommandDryRun(t *testing.T) {
	rootCmd.SetArgs([]string{
		"render", "--preset", "sunny",
		"--width", "64", "--height", "36", "--supersample", "1",
		"--frames", "2", "--seed", "7", "--dry-run",
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("render command failed: %v", err)
	}

	if _, err := os.Stat("atrium.png"); err == nil {
		t.Error("Dry run should not write the output file")
	}
}

func TestSaveSceneState(t *testing.T) {
	mgr, err := engine.NewSceneManager(engine.Config{Theme: "dark", Seed: 1})
	if err != nil {
		t.Fatalf("NewSceneManager failed: %v", err)
	}
	defer mgr.Dispose()

	dir := t.TempDir()

	plainPath := filepath.Join(dir, "state.json")
	if err := saveSceneState(mgr, plainPath, false); err != nil {
		t.Fatalf("saveSceneState failed: %v", err)
	}
	data, err := os.ReadFile(plainPath)
	if err != nil {
		t.Fatalf("Expected state file: %v", err)
	}
	var states []engine.ModelState
	if err := json.Unmarshal(bytes.TrimSpace(data), &states); err != nil {
		t.Fatalf("State file should be valid JSON: %v", err)
	}

	xzPath := filepath.Join(dir, "state.json.xz")
	if err := saveSceneState(mgr, xzPath, false); err != nil {
		t.Fatalf("saveSceneState with .xz failed: %v", err)
	}
	xzData, err := os.ReadFile(xzPath)
	if err != nil {
		t.Fatalf("Expected compressed state file: %v", err)
	}
	xzMagic := []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	if !bytes.HasPrefix(xzData, xzMagic) {
		t.Errorf("Expected xz magic bytes, got % x", xzData[:min(len(xzData), 6)])
	}

	// Dry run leaves no file behind
	dryPath := filepath.Join(dir, "dry.json")
	if err := saveSceneState(mgr, dryPath, true); err != nil {
		t.Fatalf("Dry-run saveSceneState failed: %v", err)
	}
	if _, err := os.Stat(dryPath); err == nil {
		t.Error("Dry run should not write the state file")
	}
}
