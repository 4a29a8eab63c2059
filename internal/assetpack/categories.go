package assetpack

import "strings"

// KnownCategories lists the pack categories the scene loader understands.
// Categories are free form, but packs outside this set won't be placed
// automatically by scene presets.
var KnownCategories = []string{
	"gallery",
	"island",
	"audience",
	"water",
	"effects",
	"props",
}

// KnownCategory reports whether a category is one the scene loader places.
func KnownCategory(category string) bool {
	for _, known := range KnownCategories {
		if category == known {
			return true
		}
	}
	return false
}

// InferCategory derives a category from a pack name when its leading
// hyphen-separated segment names a known category, e.g. "water-calm"
// infers "water". Returns "" when nothing can be inferred.
func InferCategory(packName string) string {
	if KnownCategory(packName) {
		return packName
	}
	if idx := strings.IndexByte(packName, '-'); idx > 0 {
		if prefix := packName[:idx]; KnownCategory(prefix) {
			return prefix
		}
	}
	return ""
}
