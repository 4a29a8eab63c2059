package assetcli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmylchreest/atrium/internal/assetpack"
	"github.com/jmylchreest/atrium/internal/assets"
)

// PruneStats tracks pruning statistics.
type PruneStats struct {
	Checked     int
	Unavailable int
	Removed     int
}

// PruneManifest verifies every artifact source, marks unavailable entries
// with a timestamp, and removes entries that have stayed unavailable past
// removeAfter. Versions and packs are cleaned up as their last artifacts go.
func PruneManifest(
	ctx context.Context,
	mgr *assetpack.ManifestManager,
	removeAfter time.Duration,
	dryRun bool,
	verbose bool,
) *PruneStats {
	manifest := mgr.GetManifest()
	verifier := assetpack.NewVerifier()

	stats := &PruneStats{}

	for packName, pack := range manifest.Packs {
		for vi := len(pack.Versions) - 1; vi >= 0; vi-- {
			version := &pack.Versions[vi]

			variantsToRemove := []string{}

			for variant, file := range version.Files {
				stats.Checked++

				// Step 1: Remove entries already unavailable past the threshold.
				if removeAfter > 0 && file.UnavailableSince != nil {
					downFor := time.Since(*file.UnavailableSince)
					if downFor > removeAfter {
						if verbose {
							fmt.Printf("  Removing: %s %s (%s) - unavailable for %v\n",
								packName, version.Version, variant, downFor.Round(time.Hour))
						}
						variantsToRemove = append(variantsToRemove, variant)
						stats.Removed++
						continue
					}
				}

				// Step 2: Verify the source is still reachable.
				available, reason := checkAvailable(ctx, verifier, file.URL)

				if !available {
					stats.Unavailable++
					if verbose {
						fmt.Printf("  ✗ Unavailable: %s %s (%s) - %s\n",
							packName, version.Version, variant, reason)
					}

					if !dryRun {
						file.Available = false
						now := time.Now()
						if file.UnavailableSince == nil {
							file.UnavailableSince = &now
						}
						file.UnavailableReason = reason
						mgr.MarkDirty()
					}
				} else if !dryRun {
					file.Available = true
					now := time.Now()
					file.LastVerified = &now
					file.UnavailableSince = nil
					file.UnavailableReason = ""
					mgr.MarkDirty()
				}
			}

			if !dryRun {
				for _, variant := range variantsToRemove {
					delete(version.Files, variant)
				}

				// Clean up versions with no artifacts
				if len(version.Files) == 0 {
					pack.Versions = append(pack.Versions[:vi], pack.Versions[vi+1:]...)
					mgr.MarkDirty()
					if verbose {
						fmt.Printf("  Removed version %s (no artifacts left)\n", version.Version)
					}
				}
			}
		}

		// Clean up packs with no versions
		if !dryRun && len(pack.Versions) == 0 {
			delete(manifest.Packs, packName)
			mgr.MarkDirty()
			if verbose {
				fmt.Printf("  Removed pack %s (no versions left)\n", packName)
			}
		}
	}

	return stats
}

// checkAvailable verifies one artifact source: remote URLs get a HEAD
// request, local paths a stat.
func checkAvailable(ctx context.Context, verifier *assetpack.Verifier, source string) (bool, string) {
	if !assets.IsRemote(source) {
		if _, err := os.Stat(source); err != nil {
			return false, fmt.Sprintf("file missing: %v", err)
		}
		return true, ""
	}
	return verifier.VerifyURL(ctx, source)
}
