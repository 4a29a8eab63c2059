package assetcli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jmylchreest/atrium/internal/assetpack"
	"github.com/spf13/cobra"
)

// VerifyCmd returns the verify command.
func VerifyCmd() *cobra.Command {
	var (
		manifestPath string
		mirrorDir    string
		packName     string
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify recorded digests against artifact content",
		Long: `Verify that every artifact still matches its recorded sha256 digest.

With --dir, mirrored files are hashed directly without touching the
network; otherwise each artifact is downloaded through the asset fetcher.
Digests cover the inflated payload, so compressed artifacts verify
identically however they are served.

Exits non-zero when any artifact fails verification.

Examples:
  # Verify everything against upstream
  atrium-assetpack verify

  # Verify a local mirror
  atrium-assetpack verify --dir ./mirror

  # Verify one pack
  atrium-assetpack verify --pack gallery
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			mgr, err := assetpack.LoadManifest(manifestPath)
			if err != nil {
				return fmt.Errorf("failed to load manifest: %w", err)
			}
			manifest := mgr.GetManifest()

			packNames := make([]string, 0, len(manifest.Packs))
			for name := range manifest.Packs {
				packNames = append(packNames, name)
			}
			sort.Strings(packNames)

			checked := 0
			failed := 0

			for _, name := range packNames {
				if packName != "" && name != packName {
					continue
				}

				pack := manifest.Packs[name]
				for _, version := range pack.Versions {
					for _, variant := range sortedVariants(version.Files) {
						file := version.Files[variant]
						checked++

						actual, err := artifactDigest(ctx, file.URL, mirrorDir)
						if err != nil {
							failed++
							fmt.Printf("  ✗ %s %s (%s): %v\n", name, version.Version, variant, err)
							continue
						}

						if actual != file.Digest {
							failed++
							fmt.Printf("  ✗ %s %s (%s): digest mismatch\n", name, version.Version, variant)
							if verbose {
								fmt.Printf("      recorded: %s\n", file.Digest)
								fmt.Printf("      actual:   %s\n", actual)
							}
							continue
						}

						if verbose {
							fmt.Printf("  ✓ %s %s (%s)\n", name, version.Version, variant)
						}
					}
				}
			}

			fmt.Printf("\nChecked: %d\n", checked)
			if failed > 0 {
				return fmt.Errorf("verification failed for %d artifact(s)", failed)
			}

			fmt.Println("✓ All digests verified")
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "packs.json", "Path to manifest")
	cmd.Flags().StringVar(&mirrorDir, "dir", "", "Verify mirrored files in this directory")
	cmd.Flags().StringVar(&packName, "pack", "", "Verify only this pack")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	return cmd
}

// artifactDigest hashes the mirrored copy when a mirror directory is given,
// the fetched payload otherwise.
func artifactDigest(ctx context.Context, url, mirrorDir string) (string, error) {
	if mirrorDir != "" {
		path := filepath.Join(mirrorDir, assetpack.MirrorFilename(url))
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("missing from mirror")
		}
		digest, _, err := assetpack.DigestFile(path)
		return digest, err
	}

	data, err := assetpack.FetchPayload(ctx, url)
	if err != nil {
		return "", err
	}
	return assetpack.DigestBytes(data), nil
}

// sortedVariants returns a version's variant keys in stable order.
func sortedVariants(files map[string]*assetpack.File) []string {
	variants := make([]string, 0, len(files))
	for variant := range files {
		variants = append(variants, variant)
	}
	sort.Strings(variants)
	return variants
}
