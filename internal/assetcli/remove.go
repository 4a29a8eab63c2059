package assetcli

import (
	"fmt"

	"github.com/jmylchreest/atrium/internal/assetpack"
	"github.com/spf13/cobra"
)

// RemoveCmd returns the remove command.
func RemoveCmd() *cobra.Command {
	var (
		packName     string
		version      string
		allVersions  bool
		manifestPath string
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a pack or version from the manifest",
		Long: `Remove a pack or a specific version from the manifest.

Examples:
  # Remove specific version
  atrium-assetpack remove --pack gallery --version 1.0.0

  # Remove all versions of a pack
  atrium-assetpack remove --pack old-pack --all-versions
`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if packName == "" {
				return fmt.Errorf("--pack is required")
			}
			if !allVersions && version == "" {
				return fmt.Errorf("either --version or --all-versions must be specified")
			}

			// Load manifest
			mgr, err := assetpack.LoadManifest(manifestPath)
			if err != nil {
				return fmt.Errorf("failed to load manifest: %w", err)
			}

			if allVersions {
				fmt.Printf("Removing pack '%s' (all versions)...\n", packName)
				if !dryRun {
					if err := mgr.RemovePack(packName); err != nil {
						return fmt.Errorf("failed to remove pack: %w", err)
					}
				}
			} else {
				fmt.Printf("Removing pack '%s' version %s...\n", packName, version)
				if !dryRun {
					if err := mgr.RemovePackVersion(packName, version); err != nil {
						return fmt.Errorf("failed to remove version: %w", err)
					}
				}
			}

			// Save manifest
			if !dryRun {
				if err := mgr.Save(); err != nil {
					return fmt.Errorf("failed to save manifest: %w", err)
				}
				fmt.Printf("✓ Manifest saved: %s\n", manifestPath)
			} else {
				fmt.Println("(Dry run - no changes saved)")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&packName, "pack", "", "Pack name")
	cmd.Flags().StringVar(&version, "version", "", "Version to remove")
	cmd.Flags().BoolVar(&allVersions, "all-versions", false, "Remove all versions")
	cmd.Flags().StringVar(&manifestPath, "manifest", "packs.json", "Path to manifest")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without saving")

	return cmd
}
