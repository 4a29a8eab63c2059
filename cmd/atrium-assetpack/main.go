// Package main provides the atrium-assetpack CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/jmylchreest/atrium/internal/assetcli"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "atrium-assetpack",
		Short: "Manage Atrium model pack manifests",
		Long: `Pack repository manager for Atrium scene assets.

Manage model pack manifests with support for:
  - Syncing packs from GitHub releases or URL sources
  - Mirroring artifacts with sha256 digest tracking
  - Adding/removing packs and versions
  - Verifying recorded digests against upstream or a mirror
  - Validating manifest structure
  - Listing packs with availability status

Used to maintain the asset catalogue the scene loader resolves
models from.

Examples:
  # Sync from configuration file (recommended)
  atrium-assetpack sync --config sync-config.jsonl --prune

  # Sync the latest release of a pack repository
  atrium-assetpack sync --github jmylchreest/atrium-packs --dir ./mirror

  # Add a locally built pack
  atrium-assetpack add --file atrium-pack-gallery_1.0.0_high.glb

  # List all packs
  atrium-assetpack list`,
		Version: version,
	}

	// Add commands from assetcli package
	rootCmd.AddCommand(
		assetcli.SyncCmd(),
		assetcli.AddCmd(),
		assetcli.RemoveCmd(),
		assetcli.VerifyCmd(),
		assetcli.PruneCmd(),
		assetcli.ValidateCmd(),
		assetcli.ListCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
