package assetpack

import (
	"fmt"
	"path/filepath"
	"strings"
)

// AssetPrefix is the naming prefix release artifacts must carry to be
// considered pack assets.
const AssetPrefix = "atrium-pack-"

// VariantDefault is the variant assigned to assets that don't name one.
const VariantDefault = "standard"

// packSuffixes lists recognised pack artifact extensions, longest first so
// compound extensions are stripped whole.
var packSuffixes = []string{
	".tar.bz2",
	".tar.gz",
	".tar.xz",
	".glb.gz",
	".glb.xz",
	".tgz",
	".txz",
	".tar",
	".zip",
	".glb",
}

// Filter matches pack names against include/exclude glob patterns.
type Filter struct {
	includePatterns []string
	excludePatterns []string
}

// NewFilter creates a filter. Empty include patterns match everything.
func NewFilter(include, exclude []string) *Filter {
	return &Filter{
		includePatterns: include,
		excludePatterns: exclude,
	}
}

// Match reports whether a release asset should be synced.
// Exclusions take precedence over inclusions.
func (f *Filter) Match(assetName string) bool {
	if !IsPackAsset(assetName) {
		return false
	}

	packName := extractPackName(assetName)

	for _, pattern := range f.excludePatterns {
		if matchesPattern(packName, pattern) {
			return false
		}
	}

	if len(f.includePatterns) == 0 {
		return true
	}

	for _, pattern := range f.includePatterns {
		if matchesPattern(packName, pattern) {
			return true
		}
	}

	return false
}

// matchesPattern matches a pack name against a glob pattern.
func matchesPattern(name, pattern string) bool {
	matched, err := filepath.Match(pattern, name)
	if err != nil {
		// Invalid patterns never match
		return false
	}
	return matched
}

// IsPackAsset reports whether a release asset looks like a model pack
// artifact. Sidecar files (checksums, SBOMs, signatures) are rejected.
func IsPackAsset(assetName string) bool {
	if !strings.HasPrefix(assetName, AssetPrefix) {
		return false
	}

	lower := strings.ToLower(assetName)
	for _, marker := range []string{"checksum", "sbom", "provenance", "metadata"} {
		if strings.Contains(lower, marker) {
			return false
		}
	}

	for _, suffix := range packSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}

	return false
}

// extractPackName extracts the pack name from an asset filename.
func extractPackName(assetName string) string {
	base := trimPackSuffix(assetName)
	parts := strings.Split(base, "_")
	return strings.TrimPrefix(parts[0], AssetPrefix)
}

// trimPackSuffix removes the artifact extension from an asset name.
func trimPackSuffix(assetName string) string {
	lower := strings.ToLower(assetName)
	for _, suffix := range packSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return assetName[:len(assetName)-len(suffix)]
		}
	}
	return assetName
}

// ParseAssetName splits a pack asset filename into its components.
// Expected format: atrium-pack-NAME_VERSION_VARIANT.ext, with the variant
// segment optional.
func ParseAssetName(assetName string) (name, version, variant string, err error) {
	base := trimPackSuffix(assetName)

	parts := strings.Split(base, "_")
	if len(parts) < 2 {
		return "", "", "", fmt.Errorf("asset name '%s' does not match NAME_VERSION[_VARIANT] format", assetName)
	}

	name = strings.TrimPrefix(parts[0], AssetPrefix)
	if name == "" {
		return "", "", "", fmt.Errorf("asset name '%s' has an empty pack name", assetName)
	}

	version = strings.TrimPrefix(parts[1], "v")
	if version == "" {
		return "", "", "", fmt.Errorf("asset name '%s' has an empty version", assetName)
	}

	if len(parts) >= 3 {
		variant = NormalizeVariant(strings.Join(parts[2:], "_"))
	} else {
		variant = VariantDefault
	}

	return name, version, variant, nil
}

// NormalizeVariant maps variant aliases to canonical names.
func NormalizeVariant(variant string) string {
	switch strings.ToLower(variant) {
	case "hi", "hd":
		return "high"
	case "lo", "sd":
		return "low"
	case "med", "mid":
		return "medium"
	default:
		return strings.ToLower(variant)
	}
}
