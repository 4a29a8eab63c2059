package assetcli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmylchreest/atrium/internal/assetpack"
	"github.com/spf13/cobra"
)

// AddCmd returns the add command.
func AddCmd() *cobra.Command {
	var (
		packName     string
		category     string
		packVersion  string
		variant      string
		filePath     string
		url          string
		description  string
		license      string
		tags         []string
		manifestPath string
		mirrorDir    string
		skipInspect  bool
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a pack artifact manually to the manifest",
		Long: `Add a pack version manually to the manifest.

Can add from:
  - Local file (a .glb, optionally compressed, or an archive of models)
  - URL

The artifact is read, digested and inspected exactly as sync would do.
Pack name, version and variant are parsed from a conventional
atrium-pack-NAME_VERSION[_VARIANT] filename when the flags are omitted.

Examples:
  # Add a local model pack
  atrium-assetpack add --file ./atrium-pack-gallery_1.2.0_high.glb

  # Add a remote archive with explicit naming
  atrium-assetpack add --pack props --category props --version 0.5.0 \
    --url "https://example.com/downloads/props-bundle.tar.xz"
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			// Validate inputs
			if filePath == "" && url == "" {
				return fmt.Errorf("either --file or --url must be specified")
			}
			if filePath != "" && url != "" {
				return fmt.Errorf("cannot specify both --file and --url")
			}

			source := url
			if filePath != "" {
				absPath, err := filepath.Abs(filePath)
				if err != nil {
					return fmt.Errorf("invalid file path: %w", err)
				}
				if _, err := os.Stat(absPath); err != nil {
					return fmt.Errorf("file not found: %w", err)
				}
				source = absPath
			}

			// Fill gaps from the artifact filename
			if packName == "" || packVersion == "" || variant == "" {
				name, ver, vnt, err := assetpack.ParseAssetName(assetpack.MirrorFilename(source))
				if err == nil {
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
			if packName == "" {
				return fmt.Errorf("--pack is required")
			}
			if packVersion == "" {
				return fmt.Errorf("--version is required")
			}
			if variant == "" {
				variant = assetpack.VariantDefault
			}
			variant = assetpack.NormalizeVariant(variant)

			// Load manifest
			mgr, err := assetpack.LoadManifest(manifestPath)
			if err != nil {
				return fmt.Errorf("failed to load manifest: %w", err)
			}

			recorded, err := recordArtifact(ctx, mgr, artifactSpec{
				PackName: packName,
				Version:  packVersion,
				Variant:  variant,
				URL:      source,
				Category: category,
			}, syncOptions{
				MirrorDir:   mirrorDir,
				SkipInspect: skipInspect,
				DryRun:      dryRun,
				Verbose:     true,
			})
			if err != nil {
				return fmt.Errorf("failed to add pack: %w", err)
			}

			mgr.SetPackMetadata(packName, &assetpack.PackMetadata{
				Category:    category,
				Description: description,
				License:     license,
				Tags:        tags,
			})

			if dryRun {
				fmt.Println("\n(Dry run - no changes saved)")
				return nil
			}

			if err := mgr.Save(); err != nil {
				return fmt.Errorf("failed to save manifest: %w", err)
			}

			if recorded {
				fmt.Printf("\n✓ Added %s %s (%s) to manifest\n", packName, packVersion, variant)
			}
			fmt.Printf("✓ Manifest saved: %s\n", manifestPath)

			return nil
		},
	}

	cmd.Flags().StringVar(&packName, "pack", "", "Pack name")
	cmd.Flags().StringVar(&category, "category", "", "Pack category (e.g. gallery, water, props)")
	cmd.Flags().StringVar(&packVersion, "version", "", "Pack version")
	cmd.Flags().StringVar(&variant, "variant", "", "Detail variant (e.g. high, low)")
	cmd.Flags().StringVar(&filePath, "file", "", "Local file path")
	cmd.Flags().StringVar(&url, "url", "", "Download URL")
	cmd.Flags().StringVar(&description, "description", "", "Pack description")
	cmd.Flags().StringVar(&license, "license", "", "Pack license")
	cmd.Flags().StringSliceVar(&tags, "tags", []string{}, "Pack tags")
	cmd.Flags().StringVar(&manifestPath, "manifest", "packs.json", "Path to manifest")
	cmd.Flags().StringVar(&mirrorDir, "dir", "", "Mirror the artifact into this directory")
	cmd.Flags().BoolVar(&skipInspect, "skip-inspect", false, "Skip inspecting glTF content")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without saving")

	return cmd
}
