// Package provider provides the public API for atrium weather providers.
// External providers should import this package instead of internal packages.
package provider

// FlagHelp represents help information for a single provider flag.
// This type is part of the provider protocol and is used by both internal and external providers.
type FlagHelp struct {
	Name        string `json:"name"`        // Flag name (e.g., "prompt", "model")
	Shorthand   string `json:"shorthand"`   // Short flag (e.g., "p")
	Type        string `json:"type"`        // Type (e.g., "string", "int", "bool")
	Default     string `json:"default"`     // Default value as string
	Description string `json:"description"` // Help text
	Required    bool   `json:"required"`    // Is this flag required?
}

// ProviderInfo contains metadata about a provider.
type ProviderInfo struct {
	Name            string `json:"name"`
	Type            string `json:"type"` // "weather"
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocol_version"`
	Description     string `json:"description"`
	PluginProtocol  string `json:"plugin_protocol"` // "json-stdio" or "go-plugin"
}
