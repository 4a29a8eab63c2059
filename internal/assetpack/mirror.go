package assetpack

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/atrium/internal/assets"
)

// FetchPayload returns the inflated payload bytes of an artifact. Compressed
// .xz and .gz layers are removed before hashing or inspection, so digests
// stay stable however the artifact is served. Remote fetches use a throwaway
// cache so the result always reflects the upstream copy.
func FetchPayload(ctx context.Context, source string) ([]byte, error) {
	if !assets.IsRemote(source) {
		return assets.Fetch(ctx, source, assets.Options{})
	}

	tmpDir, err := os.MkdirTemp("", "atrium-assetpack-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	return assets.Fetch(ctx, source, assets.Options{CacheDir: tmpDir})
}

// MirrorFilename returns the local filename an artifact is mirrored under:
// the URL basename with query noise and any compression suffix stripped,
// matching the inflated payload that gets written.
func MirrorFilename(url string) string {
	name := url
	if idx := strings.IndexByte(name, '?'); idx != -1 {
		name = name[:idx]
	}
	if idx := strings.IndexByte(name, '#'); idx != -1 {
		name = name[:idx]
	}
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, ".xz")
	name = strings.TrimSuffix(name, ".gz")
	return name
}

// Materialize writes an artifact payload into the mirror directory and
// returns the written path.
func Materialize(dir, url string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - Mirror directory needs standard permissions
		return "", fmt.Errorf("failed to create mirror directory: %w", err)
	}

	path := filepath.Join(dir, MirrorFilename(url))
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 - Mirrored packs need standard read permissions
		return "", fmt.Errorf("failed to write mirror file: %w", err)
	}

	return path, nil
}

// PruneDir removes mirror files no manifest entry references and returns the
// removed filenames. The manifest file itself is never removed even when it
// lives inside the mirror directory.
func PruneDir(manifest *Manifest, dir, manifestPath string, dryRun bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read mirror directory: %w", err)
	}

	referenced := make(map[string]bool)
	for _, pack := range manifest.Packs {
		for _, version := range pack.Versions {
			for _, file := range version.Files {
				referenced[MirrorFilename(file.URL)] = true
			}
		}
	}

	keepPath := ""
	if manifestPath != "" {
		if abs, err := filepath.Abs(manifestPath); err == nil {
			keepPath = abs
		}
	}

	var removed []string
	for _, entry := range entries {
		if entry.IsDir() || referenced[entry.Name()] {
			continue
		}
		full := filepath.Join(dir, entry.Name())
		if abs, err := filepath.Abs(full); err == nil && abs == keepPath {
			continue
		}
		if !dryRun {
			if err := os.Remove(full); err != nil {
				return removed, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
			}
		}
		removed = append(removed, entry.Name())
	}

	return removed, nil
}
