package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jmylchreest/atrium/internal/provider/protocol"
)

// getProviderDir returns the provider directory path.
func getProviderDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "atrium", "providers"), nil
}

// queryProviderMetadata queries a provider executable for its metadata via
// the --plugin-info handshake.
func queryProviderMetadata(providerPath string) (protocol.ProviderInfo, error) {
	cmd := exec.Command(providerPath, "--plugin-info") // #nosec G204 - Provider path validated by caller
	output, err := cmd.Output()
	if err != nil {
		return protocol.ProviderInfo{}, fmt.Errorf("failed to execute provider --plugin-info: %w", err)
	}

	var info protocol.ProviderInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return protocol.ProviderInfo{}, fmt.Errorf("failed to parse provider info: %w", err)
	}

	if info.Name == "" {
		return protocol.ProviderInfo{}, fmt.Errorf("provider did not return a name")
	}

	return info, nil
}
