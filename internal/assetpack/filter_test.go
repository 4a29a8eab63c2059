package assetpack

import "testing"

func TestIsPackAsset(t *testing.T) {
	tests := []struct {
		name     string
		asset    string
		expected bool
	}{
		{"bare glb", "atrium-pack-gallery_1.2.0_high.glb", true},
		{"xz compressed glb", "atrium-pack-gallery_1.2.0_high.glb.xz", true},
		{"tar archive", "atrium-pack-props_0.5.0.tar.gz", true},
		{"zip archive", "atrium-pack-island_2.0.0.zip", true},
		{"wrong prefix", "gallery_1.2.0_high.glb", false},
		{"checksums sidecar", "atrium-pack-gallery_1.2.0_checksums.txt", false},
		{"sbom sidecar", "atrium-pack-gallery_1.2.0.sbom.json", false},
		{"source tarball", "source.tar.gz", false},
		{"no recognised suffix", "atrium-pack-gallery_1.2.0.sig", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPackAsset(tt.asset); got != tt.expected {
				t.Errorf("Expected IsPackAsset(%s) = %v, got %v", tt.asset, tt.expected, got)
			}
		})
	}
}

func TestFilterMatch(t *testing.T) {
	tests := []struct {
		name     string
		include  []string
		exclude  []string
		asset    string
		expected bool
	}{
		{"no patterns match all packs", nil, nil, "atrium-pack-gallery_1.0.0.glb", true},
		{"include exact", []string{"gallery"}, nil, "atrium-pack-gallery_1.0.0.glb", true},
		{"include miss", []string{"island"}, nil, "atrium-pack-gallery_1.0.0.glb", false},
		{"include glob", []string{"water*"}, nil, "atrium-pack-water-calm_1.0.0.glb", true},
		{"exclude wins over include", []string{"*"}, []string{"gallery"}, "atrium-pack-gallery_1.0.0.glb", false},
		{"exclude glob", nil, []string{"*-beta"}, "atrium-pack-island-beta_1.0.0.glb", false},
		{"non-pack asset never matches", []string{"*"}, nil, "checksums.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter(tt.include, tt.exclude)
			if got := f.Match(tt.asset); got != tt.expected {
				t.Errorf("Expected Match(%s) = %v, got %v", tt.asset, tt.expected, got)
			}
		})
	}
}

func TestParseAssetName(t *testing.T) {
	tests := []struct {
		name        string
		asset       string
		wantName    string
		wantVersion string
		wantVariant string
		wantErr     bool
	}{
		{"full form", "atrium-pack-gallery_1.2.0_high.glb", "gallery", "1.2.0", "high", false},
		{"no variant", "atrium-pack-water_0.3.1.tar.xz", "water", "0.3.1", VariantDefault, false},
		{"v prefix trimmed", "atrium-pack-island_v2.0.0_low.glb.gz", "island", "2.0.0", "low", false},
		{"variant alias hd", "atrium-pack-island_2.0.0_HD.glb", "island", "2.0.0", "high", false},
		{"variant alias sd", "atrium-pack-island_2.0.0_sd.zip", "island", "2.0.0", "low", false},
		{"multi segment variant", "atrium-pack-props_1.0.0_high_draco.glb", "props", "1.0.0", "high_draco", false},
		{"missing version", "atrium-pack-gallery.glb", "", "", "", true},
		{"empty name", "atrium-pack-_1.0.0.glb", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, version, variant, err := ParseAssetName(tt.asset)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %s, got none", tt.asset)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAssetName(%s) returned error: %v", tt.asset, err)
			}
			if name != tt.wantName {
				t.Errorf("Expected name %s, got %s", tt.wantName, name)
			}
			if version != tt.wantVersion {
				t.Errorf("Expected version %s, got %s", tt.wantVersion, version)
			}
			if variant != tt.wantVariant {
				t.Errorf("Expected variant %s, got %s", tt.wantVariant, variant)
			}
		})
	}
}
