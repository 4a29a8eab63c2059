package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/atrium/internal/provider/protocol"
)

// providerAction represents the type of action being performed on a provider.
type providerAction string

const (
	providerActionAdd       providerAction = "add"
	providerActionUpgrade   providerAction = "upgrade"
	providerActionDowngrade providerAction = "downgrade"
	providerActionOverwrite providerAction = "overwrite"
)

// resolveProviderSource resolves a provider source path and determines if it's
// already installed. Returns: (sourcePath, isAlreadyInstalled, error).
func resolveProviderSource(source, providerDir, forcedSourceType string, verbose bool) (string, bool, error) {
	// For local files, resolve to absolute path
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") && !strings.HasSuffix(source, ".git") {
		absSource, err := filepath.Abs(source)
		if err != nil {
			return "", false, fmt.Errorf("failed to resolve source path: %w", err)
		}

		// Check if file exists
		if _, err := os.Stat(absSource); err != nil {
			return "", false, fmt.Errorf("source file not found: %w", err)
		}

		// Check if source is already in the provider directory
		absProviderDir, err := filepath.Abs(providerDir)
		if err != nil {
			return "", false, fmt.Errorf("failed to resolve provider directory: %w", err)
		}

		if filepath.Dir(absSource) == absProviderDir {
			return absSource, true, nil
		}

		return absSource, false, nil
	}

	// For remote sources, download first to a temp location so metadata can
	// be queried before installing
	tmpDir, err := os.MkdirTemp("", "atrium-provider-*")
	if err != nil {
		return "", false, fmt.Errorf("failed to create temp directory: %w", err)
	}

	tmpPath, err := installProviderFromSource(source, "", tmpDir, forcedSourceType, verbose)
	if err != nil {
		os.RemoveAll(tmpDir)
		return "", false, err
	}

	return tmpPath, false, nil
}

// checkProtocolCompatibility verifies the provider's protocol version is
// compatible with this atrium build. Providers that predate the protocol
// version field are assumed compatible.
func checkProtocolCompatibility(protocolVersion string, verbose bool) error {
	if protocolVersion == "" {
		if verbose {
			fmt.Fprintf(os.Stderr, "Provider did not report a protocol version; assuming compatible\n")
		}
		return nil
	}

	compatible, err := protocol.IsCompatible(protocolVersion)
	if err != nil {
		return fmt.Errorf("protocol compatibility check failed: %w", err)
	}

	if !compatible {
		return fmt.Errorf("provider protocol version %s is not compatible with atrium (requires %s, min %s)",
			protocolVersion, protocol.ProtocolVersion, protocol.MinCompatibleVersion)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Protocol version %s is compatible\n", protocolVersion)
	}

	return nil
}

// determineProviderAction determines what action to take based on existing
// provider state.
func determineProviderAction(lock *ProviderLock, name, newVersion string, force bool) (providerAction, *ExternalProviderMeta, error) {
	existingMeta, exists := lock.ExternalProviders[name]
	if !exists {
		return providerActionAdd, nil, nil
	}

	// Provider already exists - determine version relationship
	if existingMeta.Version == "" || newVersion == "" {
		// Can't determine version relationship - require --force
		if !force {
			return "", existingMeta, fmt.Errorf("provider '%s' already exists (use --force to overwrite)", name)
		}
		return providerActionOverwrite, existingMeta, nil
	}

	cmp, err := compareVersions(newVersion, existingMeta.Version)
	if err != nil {
		// Invalid version format - require --force
		if !force {
			return "", existingMeta, fmt.Errorf("provider '%s' already exists with unparseable version (use --force to overwrite)", name)
		}
		return providerActionOverwrite, existingMeta, nil
	}

	switch {
	case cmp > 0:
		// Upgrade: newer version, allow without --force
		return providerActionUpgrade, existingMeta, nil
	case cmp < 0:
		// Downgrade: older version, require --force
		if !force {
			return "", existingMeta, fmt.Errorf("provider '%s' downgrade detected (%s to %s), use --force to downgrade",
				name, existingMeta.Version, newVersion)
		}
		return providerActionDowngrade, existingMeta, nil
	default:
		// Same version: require --force
		if !force {
			return "", existingMeta, fmt.Errorf("provider '%s' version %s is already installed (use --force to reinstall)",
				name, newVersion)
		}
		return providerActionOverwrite, existingMeta, nil
	}
}

// compareVersions compares two semantic version strings.
// Returns: >0 if v1 > v2, <0 if v1 < v2, 0 if equal.
func compareVersions(v1, v2 string) (int, error) {
	ver1, err := protocol.Parse(v1)
	if err != nil {
		return 0, fmt.Errorf("invalid version %s: %w", v1, err)
	}

	ver2, err := protocol.Parse(v2)
	if err != nil {
		return 0, fmt.Errorf("invalid version %s: %w", v2, err)
	}

	if ver1.Major != ver2.Major {
		return ver1.Major - ver2.Major, nil
	}
	if ver1.Minor != ver2.Minor {
		return ver1.Minor - ver2.Minor, nil
	}
	return ver1.Patch - ver2.Patch, nil
}

// installProvider copies a provider executable to its final location.
func installProvider(sourcePath, destPath string, verbose bool) error {
	if verbose {
		fmt.Fprintf(os.Stderr, "Installing provider to %s\n", destPath)
	}

	if err := copyFile(sourcePath, destPath); err != nil {
		return fmt.Errorf("failed to copy provider: %w", err)
	}

	if err := os.Chmod(destPath, 0o755); err != nil { // #nosec G302 - Provider executable needs execute permission
		return fmt.Errorf("failed to make provider executable: %w", err)
	}

	return nil
}

// printProviderAddSuccess prints a success message based on the action performed.
func printProviderAddSuccess(info protocol.ProviderInfo, action providerAction, existingMeta *ExternalProviderMeta, finalPath string) {
	switch action {
	case providerActionAdd:
		fmt.Printf("Provider '%s' added successfully\n", info.Name)
	case providerActionUpgrade:
		fmt.Printf("Provider '%s' upgraded from %s to %s\n", info.Name, existingMeta.Version, info.Version)
	case providerActionDowngrade:
		fmt.Printf("Provider '%s' downgraded from %s to %s\n", info.Name, existingMeta.Version, info.Version)
	case providerActionOverwrite:
		fmt.Printf("Provider '%s' overwritten\n", info.Name)
	}

	if info.Description != "" {
		fmt.Printf("Description: %s\n", info.Description)
	}
	if info.Version != "" {
		fmt.Printf("Version: %s\n", info.Version)
	}
	if info.ProtocolVersion != "" {
		fmt.Printf("Protocol: %s\n", info.ProtocolVersion)
	}
	fmt.Printf("Path: %s\n", finalPath)
}
