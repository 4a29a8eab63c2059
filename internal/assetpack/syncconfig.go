package assetpack

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Sync source types.
const (
	SyncSourceGitHub = "github"
	SyncSourceURL    = "url"
)

// SyncSource describes one entry of a sync configuration file.
// The file is JSONL: one JSON object per line, with # comment lines and
// blank lines ignored.
type SyncSource struct {
	Type string `json:"type"` // "github" or "url"

	// GitHub source fields
	Repo    string   `json:"repo,omitempty"`    // "owner/repo"
	Filter  []string `json:"filter,omitempty"`  // include patterns
	Exclude []string `json:"exclude,omitempty"` // exclude patterns

	// URL source fields
	URL      string `json:"url,omitempty"`
	Pack     string `json:"pack,omitempty"`
	Category string `json:"category,omitempty"`
	Variant  string `json:"variant,omitempty"`

	// Version selects releases for github sources ("latest", "all", or a
	// tag) and names the pack version for url sources.
	Version string `json:"version,omitempty"`
}

// LoadSyncConfig reads and validates a sync configuration file.
func LoadSyncConfig(path string) ([]SyncSource, error) {
	file, err := os.Open(path) // #nosec G304 - Config path is operator-supplied
	if err != nil {
		return nil, fmt.Errorf("failed to open sync config: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []SyncSource
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip blank lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var source SyncSource
		if err := json.Unmarshal([]byte(line), &source); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", lineNum, err)
		}

		if err := validateSyncSource(&source, lineNum); err != nil {
			return nil, err
		}

		sources = append(sources, source)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sync config: %w", err)
	}

	return sources, nil
}

// validateSyncSource checks that a source has the fields its type needs.
func validateSyncSource(source *SyncSource, lineNum int) error {
	switch source.Type {
	case SyncSourceGitHub:
		if source.Repo == "" {
			return fmt.Errorf("line %d: github source requires 'repo'", lineNum)
		}
		if _, _, err := ParseGitHubRepo(source.Repo); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}

	case SyncSourceURL:
		if source.URL == "" {
			return fmt.Errorf("line %d: url source requires 'url'", lineNum)
		}
		// Pack and version may be omitted when the URL basename follows the
		// NAME_VERSION[_VARIANT] convention.
		if source.Pack == "" || source.Version == "" {
			if _, _, _, err := ParseAssetName(MirrorFilename(source.URL)); err != nil {
				return fmt.Errorf("line %d: url source needs 'pack' and 'version', or a conventional filename: %w", lineNum, err)
			}
		}

	case "":
		return fmt.Errorf("line %d: source requires 'type'", lineNum)

	default:
		return fmt.Errorf("line %d: unknown source type '%s'", lineNum, source.Type)
	}

	return nil
}
