// Package provider provides the public API for atrium weather providers.
package provider

import (
	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion defines the current provider API version.
	// Format: MAJOR.MINOR.PATCH.
	// - Increment MAJOR for breaking changes (incompatible API changes).
	// - Increment MINOR for backward-compatible additions.
	// - Increment PATCH for backward-compatible bug fixes.
	ProtocolVersion = "0.0.1"

	// MinCompatibleVersion is the oldest protocol version this atrium version can work with.
	MinCompatibleVersion = "0.0.1"
)

// Handshake is the handshake configuration for go-plugin protocol.
// This ensures that providers using go-plugin can only connect to compatible hosts.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  0, // Major version from ProtocolVersion
	MagicCookieKey:   "ATRIUM_PROVIDER",
	MagicCookieValue: "atrium_weather_provider",
}

// PluginType defines the type of provider communication protocol.
type PluginType string

const (
	// PluginTypeGoPlugin indicates the provider uses HashiCorp go-plugin RPC protocol.
	PluginTypeGoPlugin PluginType = "go-plugin"

	// PluginTypeJSON indicates the provider uses simple JSON over stdin/stdout.
	PluginTypeJSON PluginType = "json-stdio"
)
