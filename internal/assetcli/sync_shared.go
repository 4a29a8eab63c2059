// Package assetcli provides CLI commands for the pack repository manager tool.
package assetcli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmylchreest/atrium/internal/assetpack"
)

// syncOptions carries the settings shared by every sync source.
type syncOptions struct {
	MirrorDir   string
	SkipInspect bool
	DryRun      bool
	Verbose     bool
}

// artifactSpec identifies one artifact to record in the manifest.
type artifactSpec struct {
	PackName   string
	Version    string
	Variant    string
	URL        string
	Released   time.Time
	ReleaseURL string
	Category   string
}

// ProcessGitHubSource scans GitHub releases for pack assets and records the
// matching ones in the manifest. Returns counts of added, skipped and
// errored assets.
func ProcessGitHubSource(
	ctx context.Context,
	source *assetpack.SyncSource,
	client *assetpack.GitHubClient,
	mgr *assetpack.ManifestManager,
	opts syncOptions,
) (added, skipped, errors int) {
	owner, repo, err := assetpack.ParseGitHubRepo(source.Repo)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		return 0, 0, 1
	}

	versionSpec := source.Version
	if versionSpec == "" {
		versionSpec = "latest"
	}

	fmt.Printf("  Fetching releases from %s (%s)\n", source.Repo, versionSpec)

	releases, err := client.GetReleases(ctx, owner, repo, versionSpec)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		return 0, 0, 1
	}

	filter := assetpack.NewFilter(source.Filter, source.Exclude)

	for _, release := range releases {
		if opts.Verbose {
			fmt.Printf("  Release %s (%d assets)\n", release.TagName, len(release.Assets))
		}

		for _, asset := range release.Assets {
			if !assetpack.IsPackAsset(asset.Name) {
				continue
			}
			if !filter.Match(asset.Name) {
				if opts.Verbose {
					fmt.Printf("    Skipping %s (filtered)\n", asset.Name)
				}
				skipped++
				continue
			}

			packName, packVersion, variant, err := assetpack.ParseAssetName(asset.Name)
			if err != nil {
				fmt.Printf("    Error: %v\n", err)
				errors++
				continue
			}

			recorded, err := recordArtifact(ctx, mgr, artifactSpec{
				PackName:   packName,
				Version:    packVersion,
				Variant:    variant,
				URL:        asset.DownloadURL,
				Released:   release.PublishedAt,
				ReleaseURL: release.HTMLURL,
			}, opts)
			if err != nil {
				fmt.Printf("    Error: %s: %v\n", asset.Name, err)
				errors++
				continue
			}
			if recorded {
				added++
			}
		}
	}

	return added, skipped, errors
}

// ProcessURLSource records a single artifact named by URL. Pack name,
// version and variant fall back to the URL basename when the source leaves
// them unset.
func ProcessURLSource(
	ctx context.Context,
	source *assetpack.SyncSource,
	mgr *assetpack.ManifestManager,
	opts syncOptions,
) (added, errors int) {
	packName, packVersion, variant := source.Pack, source.Version, source.Variant

	if packName == "" || packVersion == "" || variant == "" {
		name, ver, vnt, err := assetpack.ParseAssetName(assetpack.MirrorFilename(source.URL))
		if err != nil {
			if packName == "" || packVersion == "" {
				fmt.Printf("  Error: %v\n", err)
				return 0, 1
			}
		} else {
			if packName == "" {
				packName = name
			}
			if packVersion == "" {
				packVersion = ver
			}
			if variant == "" {
				variant = vnt
			}
		}
	}

	if variant == "" {
		variant = assetpack.VariantDefault
	}
	variant = assetpack.NormalizeVariant(variant)

	fmt.Printf("  Recording %s %s (%s)\n", packName, packVersion, variant)

	recorded, err := recordArtifact(ctx, mgr, artifactSpec{
		PackName: packName,
		Version:  packVersion,
		Variant:  variant,
		URL:      source.URL,
		Category: source.Category,
	}, opts)
	if err != nil {
		fmt.Printf("    Error: %v\n", err)
		return 0, 1
	}
	if recorded {
		return 1, 0
	}
	return 0, 0
}

// recordArtifact downloads one artifact, digests and inspects the payload,
// mirrors it when a mirror directory is set, and records the result in the
// manifest. The download is skipped entirely when the manifest and mirror
// already hold this artifact. Returns whether anything was recorded.
func recordArtifact(ctx context.Context, mgr *assetpack.ManifestManager, spec artifactSpec, opts syncOptions) (bool, error) {
	existing := findFile(mgr.GetManifest(), spec.PackName, spec.Version, spec.Variant)

	needPayload := existing == nil || existing.URL != spec.URL || existing.Digest == ""
	if !needPayload && opts.MirrorDir != "" {
		if _, err := os.Stat(filepath.Join(opts.MirrorDir, assetpack.MirrorFilename(spec.URL))); err != nil {
			needPayload = true
		}
	}
	if !needPayload {
		if opts.Verbose {
			fmt.Printf("    %s %s (%s) already recorded\n", spec.PackName, spec.Version, spec.Variant)
		}
		return false, nil
	}

	data, err := assetpack.FetchPayload(ctx, spec.URL)
	if err != nil {
		return false, fmt.Errorf("download failed: %w", err)
	}

	digest := assetpack.DigestBytes(data)
	if existing != nil && existing.URL == spec.URL && existing.Digest != "" && existing.Digest != digest {
		return false, fmt.Errorf("digest mismatch: manifest has %s, upstream is %s", existing.Digest, digest)
	}

	var info *assetpack.PackInfo
	if !opts.SkipInspect {
		info, err = assetpack.InspectData(assetpack.MirrorFilename(spec.URL), data)
		if err != nil {
			return false, fmt.Errorf("inspection failed: %w", err)
		}
	}

	if opts.DryRun {
		fmt.Printf("    Would add %s %s (%s)\n", spec.PackName, spec.Version, spec.Variant)
		return true, nil
	}

	if opts.MirrorDir != "" {
		if _, err := assetpack.Materialize(opts.MirrorDir, spec.URL, data); err != nil {
			return false, err
		}
	}

	released := spec.Released
	if released.IsZero() {
		released = time.Now()
	}

	now := time.Now()
	file := &assetpack.File{
		URL:          spec.URL,
		Digest:       digest,
		Size:         int64(len(data)),
		Available:    true,
		LastVerified: &now,
	}
	version := &assetpack.Version{
		Version:    spec.Version,
		Released:   released,
		ReleaseURL: spec.ReleaseURL,
		Files:      map[string]*assetpack.File{spec.Variant: file},
	}
	if info != nil {
		file.Models = info.Models
		version.GLTFVersion = info.GLTFVersion
	}

	if err := mgr.AddOrUpdatePackVersion(spec.PackName, version); err != nil {
		return false, err
	}

	category := spec.Category
	if category == "" {
		category = assetpack.InferCategory(spec.PackName)
	}
	meta := &assetpack.PackMetadata{Category: category}
	if info != nil {
		meta.License = info.Copyright
	}
	mgr.SetPackMetadata(spec.PackName, meta)

	fmt.Printf("    ✓ Added %s %s (%s)\n", spec.PackName, spec.Version, spec.Variant)
	return true, nil
}

// findFile looks up an existing artifact entry by pack, version and variant.
func findFile(manifest *assetpack.Manifest, packName, version, variant string) *assetpack.File {
	pack, ok := manifest.Packs[packName]
	if !ok {
		return nil
	}
	for i := range pack.Versions {
		if pack.Versions[i].Version == version {
			return pack.Versions[i].Files[variant]
		}
	}
	return nil
}
