package assetcli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmylchreest/atrium/internal/assetpack"
)

func runAddCmd(t *testing.T, args ...string) error {
	t.Helper()
	cmd := AddCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestAddLocalFile(t *testing.T) {
	glb := testGLB(t)
	dir := t.TempDir()
	local := filepath.Join(dir, "atrium-pack-props-bench_1.0.0.glb")
	if err := os.WriteFile(local, glb, 0o644); err != nil {
		t.Fatalf("WriteFile() returned error: %v", err)
	}
	manifestPath := filepath.Join(dir, "packs.json")

	if err := runAddCmd(t, "--file", local, "--manifest", manifestPath); err != nil {
		t.Fatalf("add returned error: %v", err)
	}

	mgr, err := assetpack.LoadManifest(manifestPath)
	if err != nil {
		t.Fatalf("LoadManifest() returned error: %v", err)
	}

	pack, ok := mgr.GetManifest().Packs["props-bench"]
	if !ok {
		t.Fatal("Expected pack name parsed from file name")
	}
	if pack.Category != "props" {
		t.Errorf("Expected inferred category props, got %s", pack.Category)
	}

	file := findFile(mgr.GetManifest(), "props-bench", "1.0.0", "standard")
	if file == nil {
		t.Fatal("Expected standard variant artifact")
	}
	if file.Digest != assetpack.DigestBytes(glb) {
		t.Errorf("Expected digest of local payload, got %s", file.Digest)
	}
	if !filepath.IsAbs(file.URL) {
		t.Errorf("Expected absolute source path, got %s", file.URL)
	}
	if !file.Available {
		t.Error("Expected local artifact to be marked available")
	}
}

func TestAddExplicitMetadata(t *testing.T) {
	glb := testGLB(t)
	dir := t.TempDir()
	local := filepath.Join(dir, "model.glb")
	if err := os.WriteFile(local, glb, 0o644); err != nil {
		t.Fatalf("WriteFile() returned error: %v", err)
	}
	manifestPath := filepath.Join(dir, "packs.json")

	err := runAddCmd(t,
		"--file", local,
		"--manifest", manifestPath,
		"--pack", "gallery-annex",
		"--version", "2.0.0",
		"--variant", "HD",
		"--category", "gallery",
		"--description", "Annex wing",
		"--tags", "indoor,wing",
	)
	if err != nil {
		t.Fatalf("add returned error: %v", err)
	}

	mgr, err := assetpack.LoadManifest(manifestPath)
	if err != nil {
		t.Fatalf("LoadManifest() returned error: %v", err)
	}

	pack := mgr.GetManifest().Packs["gallery-annex"]
	if pack == nil {
		t.Fatal("Expected gallery-annex pack")
	}
	if pack.Description != "Annex wing" {
		t.Errorf("Expected description, got %s", pack.Description)
	}
	if len(pack.Tags) != 2 || pack.Tags[0] != "indoor" || pack.Tags[1] != "wing" {
		t.Errorf("Expected tags [indoor wing], got %v", pack.Tags)
	}

	if findFile(mgr.GetManifest(), "gallery-annex", "2.0.0", "high") == nil {
		t.Error("Expected HD alias to normalize to high variant")
	}
}

func TestAddArgumentValidation(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "model.glb")
	if err := os.WriteFile(local, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() returned error: %v", err)
	}
	manifestPath := filepath.Join(dir, "packs.json")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "no source",
			args:    []string{"--manifest", manifestPath},
			wantErr: "either --file or --url",
		},
		{
			name:    "both sources",
			args:    []string{"--file", local, "--url", "https://example.com/a.glb", "--manifest", manifestPath},
			wantErr: "cannot specify both",
		},
		{
			name:    "missing file",
			args:    []string{"--file", filepath.Join(dir, "absent.glb"), "--manifest", manifestPath},
			wantErr: "file not found",
		},
		{
			name:    "unparseable name needs pack",
			args:    []string{"--file", local, "--manifest", manifestPath},
			wantErr: "--pack is required",
		},
		{
			name:    "unparseable name needs version",
			args:    []string{"--file", local, "--pack", "props-bench", "--manifest", manifestPath},
			wantErr: "--version is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runAddCmd(t, tt.args...)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAddDryRun(t *testing.T) {
	glb := testGLB(t)
	dir := t.TempDir()
	local := filepath.Join(dir, "atrium-pack-props-bench_1.0.0.glb")
	if err := os.WriteFile(local, glb, 0o644); err != nil {
		t.Fatalf("WriteFile() returned error: %v", err)
	}
	manifestPath := filepath.Join(dir, "packs.json")

	if err := runAddCmd(t, "--file", local, "--manifest", manifestPath, "--dry-run"); err != nil {
		t.Fatalf("add returned error: %v", err)
	}

	mgr, err := assetpack.LoadManifest(manifestPath)
	if err != nil {
		t.Fatalf("LoadManifest() returned error: %v", err)
	}
	if len(mgr.GetManifest().Packs) != 0 {
		t.Error("Expected dry run to record nothing")
	}
}
