package assetcli

import (
	"context"
	"fmt"
	"time"

	"github.com/jmylchreest/atrium/internal/assetpack"
	"github.com/spf13/cobra"
)

// SyncCmd returns the sync command.
func SyncCmd() *cobra.Command {
	var (
		configPath       string
		githubRepo       string
		version          string
		packFilter       []string
		exclude          []string
		manifestPath     string
		mirrorDir        string
		skipInspect      bool
		dryRun           bool
		verbose          bool
		prune            bool
		pruneRemoveAfter string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync packs from GitHub releases or a config file",
		Long: `Sync model packs from GitHub release(s) or a configuration file.

Each artifact is downloaded once: its sha256 digest is recorded, its glTF
content is inspected, and (with --dir) the inflated payload is mirrored
locally. Digests cover the inflated payload, so a pack served as .glb.xz
and the same pack served as .glb record the same digest.

Mode 1: GitHub sync (requires --github)
  Version specifiers:
    - latest: Latest non-prerelease (default)
    - all: All non-prerelease versions
    - v1.2.3: Specific version tag

Mode 2: Config file sync (requires --config)
  Uses a JSONL configuration file to define all sync sources.

Pruning:
  Use --prune to verify and clean up unavailable entries after sync.
  Use --prune-remove-after to remove entries unavailable for a duration
  (e.g., 720h = 30 days).

Examples:
  # Sync from config file (recommended)
  atrium-assetpack sync --config sync-config.jsonl --prune

  # Sync the latest release of a pack repository
  atrium-assetpack sync --github jmylchreest/atrium-packs

  # Mirror every release into a local directory
  atrium-assetpack sync --github jmylchreest/atrium-packs --version all --dir ./mirror
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Validate mode selection
			if configPath == "" && githubRepo == "" {
				return fmt.Errorf("must specify either --config or --github")
			}

			opts := syncOptions{
				MirrorDir:   mirrorDir,
				SkipInspect: skipInspect,
				DryRun:      dryRun,
				Verbose:     verbose,
			}

			// If config is specified, delegate to config-based sync
			if configPath != "" {
				return syncFromConfig(ctx, configPath, manifestPath, opts, prune, pruneRemoveAfter)
			}

			client := assetpack.NewGitHubClient()

			mgr, err := assetpack.LoadManifest(manifestPath)
			if err != nil {
				return fmt.Errorf("failed to load manifest: %w", err)
			}

			// Synthetic source for the shared processing function
			source := &assetpack.SyncSource{
				Type:    assetpack.SyncSourceGitHub,
				Repo:    githubRepo,
				Version: version,
				Filter:  packFilter,
				Exclude: exclude,
			}

			added, skipped, errors := ProcessGitHubSource(ctx, source, client, mgr, opts)

			fmt.Printf("\n=== Sync Summary ===\n")
			fmt.Printf("Added: %d\n", added)
			if skipped > 0 {
				fmt.Printf("Skipped: %d\n", skipped)
			}
			if errors > 0 {
				fmt.Printf("Errors: %d\n", errors)
			}

			return finishSync(ctx, mgr, manifestPath, opts, prune, pruneRemoveAfter, added)
		},
	}

	// Mode selection flags
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to sync configuration file (JSONL)")
	cmd.Flags().StringVar(&githubRepo, "github", "", "GitHub repository (owner/repo)")

	// GitHub mode flags
	cmd.Flags().StringVar(&version, "version", "latest", "Release version/tag (or 'latest'/'all')")
	cmd.Flags().StringSliceVar(&packFilter, "pack-filter", []string{}, "Pack patterns to include")
	cmd.Flags().StringSliceVar(&exclude, "exclude", []string{}, "Patterns to exclude")

	// Common flags
	cmd.Flags().StringVar(&manifestPath, "manifest", "packs.json", "Path to manifest")
	cmd.Flags().StringVar(&mirrorDir, "dir", "", "Mirror downloaded packs into this directory")
	cmd.Flags().BoolVar(&skipInspect, "skip-inspect", false, "Skip inspecting glTF content")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without saving")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.Flags().BoolVar(&prune, "prune", false, "Verify and prune unavailable entries after sync")
	cmd.Flags().StringVar(&pruneRemoveAfter, "prune-remove-after", "720h", "Remove entries unavailable for duration (e.g., 720h)")

	// Make flags mutually exclusive (either --config OR --github)
	cmd.MarkFlagsMutuallyExclusive("config", "github")

	return cmd
}

// syncFromConfig handles syncing from a configuration file.
func syncFromConfig(
	ctx context.Context,
	configPath string,
	manifestPath string,
	opts syncOptions,
	prune bool,
	pruneRemoveAfter string,
) error {
	fmt.Printf("Loading sync configuration from: %s\n", configPath)
	sources, err := assetpack.LoadSyncConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("Found %d sync source(s)\n\n", len(sources))

	mgr, err := assetpack.LoadManifest(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	// GitHub client reused for all GitHub sources
	client := assetpack.NewGitHubClient()

	totalAdded := 0
	totalSkipped := 0
	totalErrors := 0

	for i, source := range sources {
		fmt.Printf("[%d/%d] Processing %s source\n", i+1, len(sources), source.Type)

		switch source.Type {
		case assetpack.SyncSourceGitHub:
			added, skipped, errors := ProcessGitHubSource(ctx, &source, client, mgr, opts)
			totalAdded += added
			totalSkipped += skipped
			totalErrors += errors

		case assetpack.SyncSourceURL:
			added, errors := ProcessURLSource(ctx, &source, mgr, opts)
			totalAdded += added
			totalErrors += errors

		default:
			fmt.Printf("  Error: unknown source type: %s\n", source.Type)
			totalErrors++
		}

		fmt.Println()
	}

	fmt.Printf("=== Sync Summary ===\n")
	fmt.Printf("Added: %d\n", totalAdded)
	if totalSkipped > 0 {
		fmt.Printf("Skipped: %d\n", totalSkipped)
	}
	if totalErrors > 0 {
		fmt.Printf("Errors: %d\n", totalErrors)
	}

	return finishSync(ctx, mgr, manifestPath, opts, prune, pruneRemoveAfter, totalAdded)
}

// finishSync runs optional pruning and persists the manifest. Both sync
// modes end here.
func finishSync(
	ctx context.Context,
	mgr *assetpack.ManifestManager,
	manifestPath string,
	opts syncOptions,
	prune bool,
	pruneRemoveAfter string,
	added int,
) error {
	var pruneStats *PruneStats

	if prune {
		fmt.Printf("\n=== Pruning ===\n")

		var removeAfter time.Duration
		if pruneRemoveAfter != "" {
			var err error
			removeAfter, err = time.ParseDuration(pruneRemoveAfter)
			if err != nil {
				return fmt.Errorf("invalid prune-remove-after duration: %w", err)
			}
		}

		pruneStats = PruneManifest(ctx, mgr, removeAfter, opts.DryRun, opts.Verbose)

		if opts.MirrorDir != "" {
			removed, err := assetpack.PruneDir(mgr.GetManifest(), opts.MirrorDir, manifestPath, opts.DryRun)
			if err != nil {
				return fmt.Errorf("failed to prune mirror: %w", err)
			}
			for _, name := range removed {
				fmt.Printf("  Removed mirror file: %s\n", name)
			}
		}

		fmt.Printf("\n=== Prune Summary ===\n")
		fmt.Printf("Checked: %d\n", pruneStats.Checked)
		fmt.Printf("Unavailable: %d\n", pruneStats.Unavailable)
		if pruneStats.Removed > 0 {
			fmt.Printf("Removed: %d\n", pruneStats.Removed)
		}
	}

	saveNeeded := added > 0 || (pruneStats != nil && pruneStats.Checked > 0)

	if !opts.DryRun && saveNeeded {
		// LastPruned only advances when entries actually left the manifest.
		if pruneStats != nil && pruneStats.Removed > 0 {
			now := time.Now()
			mgr.GetManifest().LastPruned = &now
			mgr.MarkDirty()
		}

		if err := mgr.Save(); err != nil {
			return fmt.Errorf("failed to save manifest: %w", err)
		}
		fmt.Printf("\n✓ Manifest saved: %s\n", manifestPath)
	} else if opts.DryRun {
		fmt.Println("\n(Dry run - no changes saved)")
	} else {
		fmt.Println("\n(No changes to save)")
	}

	return nil
}
