// Package assetpack provides model pack manifest management functionality.
//
// A pack manifest is a JSON catalogue of GLB model packs: each pack carries
// versioned artifacts keyed by variant (detail level), with a sha256 digest
// per artifact so downloads can be verified.
package assetpack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// DigestPrefix precedes every digest value stored in a manifest.
const DigestPrefix = "sha256:"

// Manifest represents a model pack manifest.
type Manifest struct {
	Version      string           `json:"version"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	URL          string           `json:"url"`
	MaintainedBy string           `json:"maintained_by,omitempty"`
	LastUpdated  time.Time        `json:"last_updated"`
	LastPruned   *time.Time       `json:"last_pruned,omitempty"`
	Packs        map[string]*Pack `json:"packs"`
}

// Pack represents a model pack in the manifest.
type Pack struct {
	Name        string    `json:"name"`
	Category    string    `json:"category"` // e.g. "gallery", "island", "props"
	Description string    `json:"description,omitempty"`
	Repository  string    `json:"repository,omitempty"`
	License     string    `json:"license,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Versions    []Version `json:"versions"`
}

// Version represents a specific release of a pack.
type Version struct {
	Version     string           `json:"version"`
	Released    time.Time        `json:"released"`
	GLTFVersion string           `json:"gltf_version,omitempty"` // e.g. "2.0"
	ReleaseURL  string           `json:"release_url,omitempty"`
	Files       map[string]*File `json:"files"` // keyed by variant
}

// File describes one downloadable artifact of a pack version: a bare .glb,
// a compressed model, or an archive holding several models.
type File struct {
	URL               string     `json:"url"`
	Digest            string     `json:"digest"` // Format: "sha256:..."
	Size              int64      `json:"size,omitempty"`
	Models            int        `json:"models,omitempty"` // .glb count inside the artifact
	Available         bool       `json:"available"`
	LastVerified      *time.Time `json:"last_verified,omitempty"`
	UnavailableSince  *time.Time `json:"unavailable_since,omitempty"`
	UnavailableReason string     `json:"unavailable_reason,omitempty"`
}

// ManifestManager handles pack manifest operations.
type ManifestManager struct {
	manifest *Manifest
	path     string
	dirty    bool // Tracks if manifest has been modified
}

// LoadManifest loads a manifest from disk or creates a new one if it doesn't exist.
func LoadManifest(path string) (*ManifestManager, error) {
	data, err := os.ReadFile(path) // #nosec G304 - Manifest path is operator-supplied
	if err != nil {
		if os.IsNotExist(err) {
			// Create new manifest with placeholder metadata
			mgr := &ManifestManager{
				manifest: &Manifest{
					Version:     "1.0",
					Name:        "New Model Pack Repository",
					Description: "A new Atrium model pack repository",
					URL:         "https://example.com/packs.json",
					Packs:       make(map[string]*Pack),
					LastUpdated: time.Now(),
				},
				path:  path,
				dirty: true,
			}
			if err := mgr.Save(); err != nil {
				return nil, fmt.Errorf("failed to save new manifest: %w", err)
			}
			return mgr, nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if manifest.Packs == nil {
		manifest.Packs = make(map[string]*Pack)
	}

	return &ManifestManager{
		manifest: &manifest,
		path:     path,
	}, nil
}

// Save writes the manifest to disk. Writes are skipped while the manifest is
// unchanged so repeated runs leave the file's timestamp alone.
func (m *ManifestManager) Save() error {
	if !m.dirty {
		return nil
	}

	m.manifest.LastUpdated = time.Now()

	// SetEscapeHTML(false) keeps URLs with query strings readable.
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(m.manifest); err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(m.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	m.dirty = false

	return nil
}

// AddOrUpdatePackVersion adds or updates a pack version. Files of an
// existing version are merged by variant; only real changes mark the
// manifest dirty.
func (m *ManifestManager) AddOrUpdatePackVersion(packName string, version *Version) error {
	pack, exists := m.manifest.Packs[packName]
	if !exists {
		pack = &Pack{
			Name:     packName,
			Versions: []Version{},
		}
		m.manifest.Packs[packName] = pack
		m.dirty = true
	}

	if pack.Versions == nil {
		pack.Versions = []Version{}
	}

	versionExists := false
	for i, v := range pack.Versions {
		if v.Version == version.Version {
			if version.Files != nil {
				if v.Files == nil {
					pack.Versions[i].Files = version.Files
					m.dirty = true
				} else {
					// Merge variant artifacts; only new variants or changed
					// payloads count as modifications.
					for variant, file := range version.Files {
						existing, ok := v.Files[variant]
						if !ok || existing.URL != file.URL || existing.Digest != file.Digest {
							v.Files[variant] = file
							m.dirty = true
						}
					}
					pack.Versions[i].Files = v.Files
				}
			}

			if version.GLTFVersion != "" && pack.Versions[i].GLTFVersion != version.GLTFVersion {
				pack.Versions[i].GLTFVersion = version.GLTFVersion
				m.dirty = true
			}
			if version.ReleaseURL != "" && pack.Versions[i].ReleaseURL != version.ReleaseURL {
				pack.Versions[i].ReleaseURL = version.ReleaseURL
				m.dirty = true
			}

			versionExists = true
			break
		}
	}

	if !versionExists {
		if version.Files == nil {
			version.Files = make(map[string]*File)
		}
		pack.Versions = append(pack.Versions, *version)
		sortVersionsNewestFirst(pack.Versions)
		m.dirty = true
	}

	return nil
}

// sortVersionsNewestFirst sorts versions by release date, newest first.
func sortVersionsNewestFirst(versions []Version) {
	sort.Slice(versions, func(i, j int) bool {
		// If dates are equal, compare version strings
		if versions[i].Released.Equal(versions[j].Released) {
			return CompareVersions(versions[i].Version, versions[j].Version) > 0
		}
		return versions[i].Released.After(versions[j].Released)
	})
}

// CompareVersions compares semantic versions (returns 1 if a > b, -1 if a < b, 0 if equal).
func CompareVersions(a, b string) int {
	aParts := strings.Split(strings.TrimPrefix(a, "v"), ".")
	bParts := strings.Split(strings.TrimPrefix(b, "v"), ".")

	maxLen := max(len(bParts), len(aParts))

	for i := range maxLen {
		var aNum, bNum int

		if i < len(aParts) {
			// Invalid numbers default to 0
			//nolint:errcheck // Intentionally ignoring error - invalid numbers default to 0
			fmt.Sscanf(aParts[i], "%d", &aNum)
		}
		if i < len(bParts) {
			//nolint:errcheck // Intentionally ignoring error - invalid numbers default to 0
			fmt.Sscanf(bParts[i], "%d", &bNum)
		}

		if aNum > bNum {
			return 1
		} else if aNum < bNum {
			return -1
		}
	}

	return 0
}

// RemovePackVersion removes a specific version of a pack. The pack itself is
// removed once its last version goes.
func (m *ManifestManager) RemovePackVersion(packName, version string) error {
	pack, exists := m.manifest.Packs[packName]
	if !exists {
		return fmt.Errorf("pack '%s' not found", packName)
	}

	found := false
	for i, v := range pack.Versions {
		if v.Version == version {
			pack.Versions = append(pack.Versions[:i], pack.Versions[i+1:]...)
			found = true
			m.dirty = true
			break
		}
	}

	if !found {
		return fmt.Errorf("version '%s' not found for pack '%s'", version, packName)
	}

	if len(pack.Versions) == 0 {
		delete(m.manifest.Packs, packName)
		m.dirty = true
	}

	return nil
}

// RemovePack removes a pack and all its versions.
func (m *ManifestManager) RemovePack(packName string) error {
	if _, exists := m.manifest.Packs[packName]; !exists {
		return fmt.Errorf("pack '%s' not found", packName)
	}

	delete(m.manifest.Packs, packName)
	m.dirty = true
	return nil
}

// GetManifest returns the underlying manifest.
func (m *ManifestManager) GetManifest() *Manifest {
	return m.manifest
}

// MarkDirty marks the manifest as modified.
// This should be called when external code directly modifies the manifest.
func (m *ManifestManager) MarkDirty() {
	m.dirty = true
}

// PackMetadata carries descriptive pack fields supplied alongside a sync or
// add operation. Empty fields leave existing values untouched.
type PackMetadata struct {
	Category    string
	Description string
	Repository  string
	License     string
	Tags        []string
}

// SetPackMetadata updates pack metadata (category, license, tags, etc.).
func (m *ManifestManager) SetPackMetadata(packName string, metadata *PackMetadata) {
	pack, exists := m.manifest.Packs[packName]
	if !exists {
		pack = &Pack{
			Name:     packName,
			Versions: []Version{},
		}
		m.manifest.Packs[packName] = pack
		m.dirty = true
	}

	if metadata.Category != "" && pack.Category != metadata.Category {
		pack.Category = metadata.Category
		m.dirty = true
	}
	if metadata.Description != "" && pack.Description != metadata.Description {
		pack.Description = metadata.Description
		m.dirty = true
	}
	if metadata.Repository != "" && pack.Repository != metadata.Repository {
		pack.Repository = metadata.Repository
		m.dirty = true
	}
	if metadata.License != "" && pack.License != metadata.License {
		pack.License = metadata.License
		m.dirty = true
	}
	if len(metadata.Tags) > 0 {
		tagsChanged := len(pack.Tags) != len(metadata.Tags)
		if !tagsChanged {
			for i, tag := range metadata.Tags {
				if i >= len(pack.Tags) || pack.Tags[i] != tag {
					tagsChanged = true
					break
				}
			}
		}
		if tagsChanged {
			pack.Tags = metadata.Tags
			m.dirty = true
		}
	}
}

// SetManifestMetadata updates top-level manifest metadata.
func (m *ManifestManager) SetManifestMetadata(name, description, url, maintainedBy string) {
	if name != "" && m.manifest.Name != name {
		m.manifest.Name = name
		m.dirty = true
	}
	if description != "" && m.manifest.Description != description {
		m.manifest.Description = description
		m.dirty = true
	}
	if url != "" && m.manifest.URL != url {
		m.manifest.URL = url
		m.dirty = true
	}
	if maintainedBy != "" && m.manifest.MaintainedBy != maintainedBy {
		m.manifest.MaintainedBy = maintainedBy
		m.dirty = true
	}
}
