package assetcli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jmylchreest/atrium/internal/assetpack"
)

func runRemoveCmd(t *testing.T, args ...string) error {
	t.Helper()
	cmd := RemoveCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestRemoveVersion(t *testing.T) {
	mgr, path := newTestManifest(t)
	seedArtifact(t, mgr, "gallery", "1.0.0", "high", "https://example.com/atrium-pack-gallery_1.0.0_high.glb")
	seedArtifact(t, mgr, "gallery", "2.0.0", "high", "https://example.com/atrium-pack-gallery_2.0.0_high.glb")
	if err := mgr.Save(); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	if err := runRemoveCmd(t, "--manifest", path, "--pack", "gallery", "--version", "1.0.0"); err != nil {
		t.Fatalf("remove returned error: %v", err)
	}

	reloaded, err := assetpack.LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() returned error: %v", err)
	}
	pack := reloaded.GetManifest().Packs["gallery"]
	if pack == nil {
		t.Fatal("Expected pack to survive removal of one version")
	}
	if len(pack.Versions) != 1 || pack.Versions[0].Version != "2.0.0" {
		t.Errorf("Expected only version 2.0.0 to remain, got %+v", pack.Versions)
	}
}

func TestRemoveAllVersions(t *testing.T) {
	mgr, path := newTestManifest(t)
	seedArtifact(t, mgr, "gallery", "1.0.0", "high", "https://example.com/atrium-pack-gallery_1.0.0_high.glb")
	seedArtifact(t, mgr, "gallery", "2.0.0", "high", "https://example.com/atrium-pack-gallery_2.0.0_high.glb")
	if err := mgr.Save(); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	if err := runRemoveCmd(t, "--manifest", path, "--pack", "gallery", "--all-versions"); err != nil {
		t.Fatalf("remove returned error: %v", err)
	}

	reloaded, err := assetpack.LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() returned error: %v", err)
	}
	if _, ok := reloaded.GetManifest().Packs["gallery"]; ok {
		t.Error("Expected pack to be removed entirely")
	}
}

func TestRemoveDryRun(t *testing.T) {
	mgr, path := newTestManifest(t)
	seedArtifact(t, mgr, "gallery", "1.0.0", "high", "https://example.com/atrium-pack-gallery_1.0.0_high.glb")
	if err := mgr.Save(); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	if err := runRemoveCmd(t, "--manifest", path, "--pack", "gallery", "--all-versions", "--dry-run"); err != nil {
		t.Fatalf("remove returned error: %v", err)
	}

	reloaded, err := assetpack.LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() returned error: %v", err)
	}
	if _, ok := reloaded.GetManifest().Packs["gallery"]; !ok {
		t.Error("Expected dry run to leave pack in place")
	}
}

func TestRemoveArgumentValidation(t *testing.T) {
	mgr, path := newTestManifest(t)
	seedArtifact(t, mgr, "gallery", "1.0.0", "high", "https://example.com/atrium-pack-gallery_1.0.0_high.glb")
	if err := mgr.Save(); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing pack",
			args:    []string{"--manifest", path},
			wantErr: "--pack is required",
		},
		{
			name:    "missing version selector",
			args:    []string{"--manifest", path, "--pack", "gallery"},
			wantErr: "either --version or --all-versions",
		},
		{
			name:    "unknown pack",
			args:    []string{"--manifest", path, "--pack", "ghost", "--all-versions"},
			wantErr: "not found",
		},
		{
			name:    "unknown version",
			args:    []string{"--manifest", path, "--pack", "gallery", "--version", "9.9.9"},
			wantErr: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runRemoveCmd(t, tt.args...)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
