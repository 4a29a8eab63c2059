package assetcli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/atrium/internal/assetpack"
)

func seedArtifact(t *testing.T, mgr *assetpack.ManifestManager, pack, version, variant, url string) *assetpack.File {
	t.Helper()
	file := &assetpack.File{URL: url, Digest: assetpack.DigestBytes([]byte(url)), Available: true}
	err := mgr.AddOrUpdatePackVersion(pack, &assetpack.Version{
		Version:  version,
		Released: time.Now(),
		Files:    map[string]*assetpack.File{variant: file},
	})
	if err != nil {
		t.Fatalf("AddOrUpdatePackVersion() returned error: %v", err)
	}
	return findFile(mgr.GetManifest(), pack, version, variant)
}

func TestPruneManifestMarksUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok.glb" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	mgr, _ := newTestManifest(t)
	seedArtifact(t, mgr, "gallery", "1.0.0", "high", server.URL+"/ok.glb")
	seedArtifact(t, mgr, "gallery", "1.0.0", "low", server.URL+"/gone.glb")

	stats := PruneManifest(context.Background(), mgr, 720*time.Hour, false, false)

	if stats.Checked != 2 {
		t.Errorf("Expected 2 checked, got %d", stats.Checked)
	}
	if stats.Unavailable != 1 {
		t.Errorf("Expected 1 unavailable, got %d", stats.Unavailable)
	}
	if stats.Removed != 0 {
		t.Errorf("Expected 0 removed, got %d", stats.Removed)
	}

	ok := findFile(mgr.GetManifest(), "gallery", "1.0.0", "high")
	if !ok.Available {
		t.Error("Expected reachable artifact to stay available")
	}
	if ok.LastVerified == nil {
		t.Error("Expected LastVerified to be set on reachable artifact")
	}

	gone := findFile(mgr.GetManifest(), "gallery", "1.0.0", "low")
	if gone.Available {
		t.Error("Expected missing artifact to be marked unavailable")
	}
	if gone.UnavailableSince == nil {
		t.Fatal("Expected UnavailableSince to be set")
	}
	if !strings.Contains(gone.UnavailableReason, "404") {
		t.Errorf("Expected reason to mention 404, got %q", gone.UnavailableReason)
	}

	// A second pass keeps the original outage timestamp.
	firstSeen := *gone.UnavailableSince
	PruneManifest(context.Background(), mgr, 720*time.Hour, false, false)
	if !gone.UnavailableSince.Equal(firstSeen) {
		t.Error("Expected UnavailableSince to be preserved across passes")
	}
}

func TestPruneManifestRemovesAfterThreshold(t *testing.T) {
	mgr, _ := newTestManifest(t)
	file := seedArtifact(t, mgr, "gallery", "1.0.0", "high", "https://example.invalid/atrium-pack-gallery_1.0.0_high.glb")

	downSince := time.Now().Add(-60 * 24 * time.Hour)
	file.Available = false
	file.UnavailableSince = &downSince

	stats := PruneManifest(context.Background(), mgr, 720*time.Hour, false, false)

	if stats.Removed != 1 {
		t.Errorf("Expected 1 removed, got %d", stats.Removed)
	}
	if _, ok := mgr.GetManifest().Packs["gallery"]; ok {
		t.Error("Expected pack to be removed with its last artifact")
	}
}

func TestPruneManifestKeepsRecentOutages(t *testing.T) {
	mgr, _ := newTestManifest(t)
	missing := filepath.Join(t.TempDir(), "atrium-pack-gallery_1.0.0_high.glb")
	file := seedArtifact(t, mgr, "gallery", "1.0.0", "high", missing)

	downSince := time.Now().Add(-time.Hour)
	file.Available = false
	file.UnavailableSince = &downSince

	stats := PruneManifest(context.Background(), mgr, 720*time.Hour, false, false)

	if stats.Removed != 0 {
		t.Errorf("Expected 0 removed, got %d", stats.Removed)
	}
	if stats.Unavailable != 1 {
		t.Errorf("Expected 1 unavailable, got %d", stats.Unavailable)
	}
	if findFile(mgr.GetManifest(), "gallery", "1.0.0", "high") == nil {
		t.Error("Expected artifact inside the removal window to survive")
	}
}

func TestPruneManifestDryRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	mgr, _ := newTestManifest(t)
	file := seedArtifact(t, mgr, "gallery", "1.0.0", "high", server.URL+"/gone.glb")

	stats := PruneManifest(context.Background(), mgr, 720*time.Hour, true, false)

	if stats.Unavailable != 1 {
		t.Errorf("Expected 1 unavailable, got %d", stats.Unavailable)
	}
	if !file.Available {
		t.Error("Expected dry run to leave availability untouched")
	}
	if file.UnavailableSince != nil {
		t.Error("Expected dry run to leave UnavailableSince unset")
	}
}

func TestCheckAvailableLocal(t *testing.T) {
	verifier := assetpack.NewVerifier()

	path := filepath.Join(t.TempDir(), "atrium-pack-props_1.0.0.glb")
	if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatalf("WriteFile() returned error: %v", err)
	}

	available, reason := checkAvailable(context.Background(), verifier, path)
	if !available {
		t.Errorf("Expected local file to be available, got reason %q", reason)
	}

	available, reason = checkAvailable(context.Background(), verifier, filepath.Join(t.TempDir(), "absent.glb"))
	if available {
		t.Error("Expected missing local file to be unavailable")
	}
	if !strings.Contains(reason, "file missing") {
		t.Errorf("Expected file missing reason, got %q", reason)
	}
}
