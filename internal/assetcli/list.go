package assetcli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jmylchreest/atrium/internal/assetpack"
	"github.com/spf13/cobra"
)

// Status values reported by list --format json.
const (
	statusAvailable   = "available"
	statusPartial     = "partial"
	statusUnavailable = "unavailable"
)

// listFilter narrows which packs and artifacts list shows.
type listFilter struct {
	AvailableOnly bool
	Category      string
	Tag           string
	Variant       string
}

// listEntry is one pack version in list output.
type listEntry struct {
	Pack     string   `json:"pack"`
	Category string   `json:"category,omitempty"`
	Version  string   `json:"version"`
	Variants []string `json:"variants"`
	Tags     []string `json:"tags,omitempty"`
	Models   int      `json:"models,omitempty"`
	Status   string   `json:"status"`
}

// ListCmd returns the list command.
func ListCmd() *cobra.Command {
	var (
		manifestPath  string
		availableOnly bool
		category      string
		tag           string
		variant       string
		format        string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List packs in the manifest",
		Long: `List all packs and versions in the manifest.

Examples:
  # List all packs
  atrium-assetpack list

  # List only available artifacts
  atrium-assetpack list --available-only

  # List water packs carrying the "calm" tag
  atrium-assetpack list --category water --tag calm

  # Output as JSON
  atrium-assetpack list --format json
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if format != "table" && format != "json" {
				return fmt.Errorf("unknown format '%s' (must be 'table' or 'json')", format)
			}

			// Load manifest
			mgr, err := assetpack.LoadManifest(manifestPath)
			if err != nil {
				return fmt.Errorf("failed to load manifest: %w", err)
			}
			manifest := mgr.GetManifest()

			entries := collectListEntries(manifest, listFilter{
				AvailableOnly: availableOnly,
				Category:      category,
				Tag:           tag,
				Variant:       variant,
			})

			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			// Table format
			fmt.Fprintf(out, "Repository: %s\n", manifest.Name)
			if manifest.Description != "" {
				fmt.Fprintf(out, "Description: %s\n", manifest.Description)
			}
			fmt.Fprintf(out, "Packs: %d\n\n", len(manifest.Packs))

			fmt.Fprintf(out, "%-20s %-10s %-10s %-20s %s\n", "PACK", "CATEGORY", "VERSION", "VARIANTS", "STATUS")
			fmt.Fprintln(out, strings.Repeat("-", 80))

			for _, entry := range entries {
				variantStr := strings.Join(entry.Variants, ", ")
				if len(variantStr) > 20 {
					variantStr = variantStr[:17] + "..."
				}

				status := "✓"
				switch entry.Status {
				case statusPartial:
					status = "⚠"
				case statusUnavailable:
					status = "✗"
				}

				fmt.Fprintf(out, "%-20s %-10s %-10s %-20s %s\n",
					entry.Pack, entry.Category, entry.Version, variantStr, status)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Status: ✓ = all available, ⚠ = partial, ✗ = unavailable")

			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "packs.json", "Path to manifest")
	cmd.Flags().BoolVar(&availableOnly, "available-only", false, "Show only available artifacts")
	cmd.Flags().StringVar(&category, "category", "", "Show only packs in this category")
	cmd.Flags().StringVar(&tag, "tag", "", "Show only packs carrying this tag")
	cmd.Flags().StringVar(&variant, "variant", "", "Show only this detail variant")
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table, json)")

	return cmd
}

// collectListEntries flattens the manifest into display rows, applying
// filters and computing per-version availability status.
func collectListEntries(manifest *assetpack.Manifest, filter listFilter) []listEntry {
	packNames := make([]string, 0, len(manifest.Packs))
	for name := range manifest.Packs {
		packNames = append(packNames, name)
	}
	sort.Strings(packNames)

	entries := []listEntry{}
	for _, packName := range packNames {
		pack := manifest.Packs[packName]

		if filter.Category != "" && pack.Category != filter.Category {
			continue
		}
		if filter.Tag != "" && !hasTag(pack.Tags, filter.Tag) {
			continue
		}

		for _, version := range pack.Versions {
			variants := []string{}
			models := 0
			allAvailable := true
			someAvailable := false

			for _, variant := range sortedVariants(version.Files) {
				file := version.Files[variant]

				if filter.Variant != "" && variant != filter.Variant {
					continue
				}
				if filter.AvailableOnly && !file.Available {
					continue
				}

				variants = append(variants, variant)
				models += file.Models
				if file.Available {
					someAvailable = true
				} else {
					allAvailable = false
				}
			}

			if len(variants) == 0 {
				continue
			}

			status := statusAvailable
			if !allAvailable && someAvailable {
				status = statusPartial
			} else if !someAvailable {
				status = statusUnavailable
			}

			entries = append(entries, listEntry{
				Pack:     packName,
				Category: pack.Category,
				Version:  version.Version,
				Variants: variants,
				Tags:     pack.Tags,
				Models:   models,
				Status:   status,
			})
		}
	}

	return entries
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
