package assetcli

import (
	"fmt"
	"os"
	"sort"

	"github.com/jmylchreest/atrium/internal/assetpack"
	"github.com/spf13/cobra"
)

// ValidateCmd returns the validate command.
func ValidateCmd() *cobra.Command {
	var (
		manifestPath string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the pack manifest",
		Long: `Validate the pack manifest structure and contents.

Checks:
  - JSON syntax
  - Required fields
  - Pack categories
  - Digest format (sha256:<64 hex chars>)

Examples:
  atrium-assetpack validate
  atrium-assetpack validate --manifest /path/to/packs.json
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Validating manifest: %s\n\n", manifestPath)

			// LoadManifest scaffolds missing files, which a validator
			// must not do.
			if _, err := os.Stat(manifestPath); err != nil {
				return fmt.Errorf("✗ Manifest not found: %s", manifestPath)
			}

			// Load manifest (this validates JSON syntax)
			mgr, err := assetpack.LoadManifest(manifestPath)
			if err != nil {
				return fmt.Errorf("✗ Invalid manifest: %w", err)
			}

			manifest := mgr.GetManifest()

			var errors []string
			var warnings []string

			// Check manifest metadata
			if manifest.Name == "" {
				errors = append(errors, "manifest.name is required")
			}
			if manifest.Version == "" {
				errors = append(errors, "manifest.version is required")
			}
			if manifest.Description == "" {
				warnings = append(warnings, "manifest.description is empty")
			}
			if manifest.URL == "" {
				warnings = append(warnings, "manifest.url is empty")
			}

			// Check packs
			if len(manifest.Packs) == 0 {
				warnings = append(warnings, "no packs in manifest")
			}

			packNames := make([]string, 0, len(manifest.Packs))
			for name := range manifest.Packs {
				packNames = append(packNames, name)
			}
			sort.Strings(packNames)

			packCount := 0
			artifactCount := 0

			for _, packName := range packNames {
				pack := manifest.Packs[packName]
				packCount++

				// Check pack metadata
				if pack.Name == "" {
					errors = append(errors, fmt.Sprintf("pack '%s': name is required", packName))
				} else if pack.Name != packName {
					errors = append(errors, fmt.Sprintf("pack '%s': name mismatch (got '%s')", packName, pack.Name))
				}

				if pack.Category == "" {
					errors = append(errors, fmt.Sprintf("pack '%s': category is required", packName))
				} else if !assetpack.KnownCategory(pack.Category) {
					warnings = append(warnings, fmt.Sprintf("pack '%s': unknown category '%s'", packName, pack.Category))
				}

				if pack.Description == "" {
					warnings = append(warnings, fmt.Sprintf("pack '%s': description is empty", packName))
				}

				// Check versions
				if len(pack.Versions) == 0 {
					errors = append(errors, fmt.Sprintf("pack '%s': no versions", packName))
				}

				for _, version := range pack.Versions {
					if version.Version == "" {
						errors = append(errors, fmt.Sprintf("pack '%s': version string is required", packName))
					}

					// Check artifacts
					if len(version.Files) == 0 {
						errors = append(errors, fmt.Sprintf("pack '%s' version %s: no artifacts", packName, version.Version))
					}

					for _, variant := range sortedVariants(version.Files) {
						file := version.Files[variant]
						artifactCount++

						if file.URL == "" {
							errors = append(errors, fmt.Sprintf("pack '%s' version %s (%s): URL is required", packName, version.Version, variant))
						}
						if file.Digest == "" {
							errors = append(errors, fmt.Sprintf("pack '%s' version %s (%s): digest is required", packName, version.Version, variant))
						} else if !assetpack.ValidDigest(file.Digest) {
							errors = append(errors, fmt.Sprintf("pack '%s' version %s (%s): malformed digest '%s'", packName, version.Version, variant, file.Digest))
						}
						if file.Size == 0 {
							warnings = append(warnings, fmt.Sprintf("pack '%s' version %s (%s): size is 0", packName, version.Version, variant))
						}
					}
				}
			}

			// Print results
			fmt.Fprintf(out, "Packs: %d\n", packCount)
			fmt.Fprintf(out, "Artifacts: %d\n", artifactCount)
			fmt.Fprintln(out)

			if len(warnings) > 0 {
				fmt.Fprintf(out, "Warnings (%d):\n", len(warnings))
				for _, w := range warnings {
					fmt.Fprintf(out, "  ⚠ %s\n", w)
				}
				fmt.Fprintln(out)
			}

			if len(errors) > 0 {
				fmt.Fprintf(out, "Errors (%d):\n", len(errors))
				for _, e := range errors {
					fmt.Fprintf(out, "  ✗ %s\n", e)
				}
				fmt.Fprintln(out)
				return fmt.Errorf("validation failed with %d error(s)", len(errors))
			}

			fmt.Fprintln(out, "✓ Manifest is valid")
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "packs.json", "Path to manifest")

	return cmd
}
