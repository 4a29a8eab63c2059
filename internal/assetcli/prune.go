package assetcli

import (
	"fmt"
	"time"

	"github.com/jmylchreest/atrium/internal/assetpack"
	"github.com/spf13/cobra"
)

// PruneCmd returns the prune command.
func PruneCmd() *cobra.Command {
	var (
		manifestPath string
		mirrorDir    string
		removeAfter  string
		dryRun       bool
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Verify sources and prune unavailable entries",
		Long: `Verify artifact sources and prune entries that are gone.

Unreachable artifacts are marked unavailable with a timestamp; entries
unavailable past --remove-after are removed, along with versions and
packs left empty. With --dir, mirror files no manifest entry references
are removed too.

The same pruning runs as part of 'sync --prune'.

Examples:
  # Mark unavailable entries and drop those dead for 30+ days
  atrium-assetpack prune --remove-after 720h

  # Preview, including mirror cleanup
  atrium-assetpack prune --dir ./mirror --dry-run
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			// Load manifest
			mgr, err := assetpack.LoadManifest(manifestPath)
			if err != nil {
				return fmt.Errorf("failed to load manifest: %w", err)
			}

			var removeAfterDuration time.Duration
			if removeAfter != "" {
				removeAfterDuration, err = time.ParseDuration(removeAfter)
				if err != nil {
					return fmt.Errorf("invalid duration: %w", err)
				}
			}

			fmt.Println("Pruning pack manifest...")
			if dryRun {
				fmt.Println("(Dry run mode)")
			}
			fmt.Println()

			stats := PruneManifest(ctx, mgr, removeAfterDuration, dryRun, verbose)

			if mirrorDir != "" {
				removed, err := assetpack.PruneDir(mgr.GetManifest(), mirrorDir, manifestPath, dryRun)
				if err != nil {
					return fmt.Errorf("failed to prune mirror: %w", err)
				}
				for _, name := range removed {
					fmt.Printf("  Removed mirror file: %s\n", name)
				}
			}

			fmt.Printf("\n=== Summary ===\n")
			fmt.Printf("Checked: %d\n", stats.Checked)
			fmt.Printf("Unavailable: %d\n", stats.Unavailable)
			if stats.Removed > 0 {
				fmt.Printf("Removed: %d\n", stats.Removed)
			}

			// Save manifest
			if !dryRun && stats.Checked > 0 {
				if stats.Removed > 0 {
					now := time.Now()
					mgr.GetManifest().LastPruned = &now
					mgr.MarkDirty()
				}
				if err := mgr.Save(); err != nil {
					return fmt.Errorf("failed to save manifest: %w", err)
				}
				fmt.Printf("\n✓ Manifest saved: %s\n", manifestPath)
			} else if dryRun {
				fmt.Println("\n(Dry run - no changes saved)")
			} else {
				fmt.Println("\n(No changes to save)")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "packs.json", "Path to manifest")
	cmd.Flags().StringVar(&mirrorDir, "dir", "", "Also prune unreferenced files from this mirror directory")
	cmd.Flags().StringVar(&removeAfter, "remove-after", "", "Remove entries unavailable for duration (e.g., 720h)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without saving")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	return cmd
}
