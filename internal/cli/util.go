package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// writeFile writes content to a file, creating directories as needed.
// An existing file is renamed to <path>.backup first.
func writeFile(path string, content []byte) error {
	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Check if file exists and create backup
	if _, err := os.Stat(path); err == nil {
		backupPath := path + ".backup"
		if err := os.Rename(path, backupPath); err != nil {
			// If backup fails, continue anyway
			fmt.Fprintf(os.Stderr, "  ⚠ Could not create backup: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "  ℹ Created backup: %s\n", backupPath)
		}
	}

	// #nosec G306 - Generated output files are not sensitive
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
