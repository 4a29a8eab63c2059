// Package protocol defines the provider plugin protocol version and compatibility checking.
package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/jmylchreest/atrium/pkg/provider"
)

// DetectorResult contains information about a detected provider protocol.
type DetectorResult struct {
	// Type indicates which protocol the provider uses.
	Type PluginType

	// SupportsGoPlugin indicates if the provider binary has go-plugin support.
	SupportsGoPlugin bool

	// ProviderInfo contains metadata from --plugin-info.
	ProviderInfo ProviderInfo
}

// ProviderInfo is a type alias to the public provider.ProviderInfo type.
// External providers should import github.com/jmylchreest/atrium/pkg/provider directly.
type ProviderInfo = provider.ProviderInfo

// FlagHelp is a type alias to the public provider.FlagHelp type.
type FlagHelp = provider.FlagHelp

// DetectProtocol detects which protocol a provider uses by querying it.
func DetectProtocol(providerPath string) (*DetectorResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Query provider info.
	cmd := exec.CommandContext(ctx, providerPath, "--plugin-info")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to query provider: %w", err)
	}

	var info ProviderInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("failed to parse provider info: %w", err)
	}

	result := &DetectorResult{
		ProviderInfo: info,
	}

	// Determine protocol type from plugin_protocol field.
	switch info.PluginProtocol {
	case "go-plugin":
		result.Type = PluginTypeGoPlugin
		result.SupportsGoPlugin = true
	case "json-stdio", "":
		// Empty defaults to json-stdio for backward compatibility.
		result.Type = PluginTypeJSON
		result.SupportsGoPlugin = false
	default:
		return nil, fmt.Errorf("unknown plugin_protocol: %s", info.PluginProtocol)
	}

	return result, nil
}
