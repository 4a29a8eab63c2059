package assetpack

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/jmylchreest/atrium/internal/compression"
)

// PackInfo summarises the glTF content of a pack artifact.
type PackInfo struct {
	GLTFVersion string `json:"gltf_version"`
	Generator   string `json:"generator,omitempty"`
	Copyright   string `json:"copyright,omitempty"`
	Models      int    `json:"models"`
	Nodes       int    `json:"nodes"`
	Meshes      int    `json:"meshes"`
	Materials   int    `json:"materials"`
}

// glbMagic opens every binary glTF payload.
var glbMagic = []byte("glTF")

// IsGLB reports whether a payload is a binary glTF container.
func IsGLB(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], glbMagic)
}

// InspectData decodes a pack payload and returns its glTF summary. A bare
// GLB is decoded in memory; archives are unpacked to a scratch directory and
// every .glb member is decoded. The name should be the inflated artifact
// filename so the archive format can be detected.
func InspectData(name string, data []byte) (*PackInfo, error) {
	if IsGLB(data) {
		doc, err := decodeGLB(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", name, err)
		}
		info := &PackInfo{Models: 1}
		mergeDocument(info, doc)
		return info, nil
	}

	tmpDir, err := os.MkdirTemp("", "atrium-inspect-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	result, err := compression.ExtractAll(data, name, tmpDir, "", false)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", name, err)
	}
	if !result.WasArchive {
		return nil, fmt.Errorf("%s is neither a GLB nor a recognised archive", name)
	}

	info := &PackInfo{}
	walkErr := filepath.WalkDir(tmpDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".glb") {
			return nil
		}

		memberData, err := os.ReadFile(path) // #nosec G304 - Path comes from our own scratch extraction
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", d.Name(), err)
		}

		doc, err := decodeGLB(memberData)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", d.Name(), err)
		}

		info.Models++
		mergeDocument(info, doc)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	if info.Models == 0 {
		return nil, fmt.Errorf("%s contains no .glb models", name)
	}

	return info, nil
}

// decodeGLB parses a binary glTF payload.
func decodeGLB(data []byte) (*gltf.Document, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// mergeDocument folds one model's counts and asset metadata into the
// summary. The first non-empty metadata value wins.
func mergeDocument(info *PackInfo, doc *gltf.Document) {
	info.Nodes += len(doc.Nodes)
	info.Meshes += len(doc.Meshes)
	info.Materials += len(doc.Materials)

	if info.GLTFVersion == "" {
		info.GLTFVersion = doc.Asset.Version
	}
	if info.Generator == "" {
		info.Generator = doc.Asset.Generator
	}
	if info.Copyright == "" {
		info.Copyright = doc.Asset.Copyright
	}
}
