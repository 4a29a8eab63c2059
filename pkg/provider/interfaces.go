// Package provider provides the public API for atrium weather providers.
package provider

import (
	"context"
)

// WeatherProvider is the interface that weather providers must implement for go-plugin RPC.
type WeatherProvider interface {
	// Derive produces weather parameters from provider-specific inputs.
	Derive(ctx context.Context, opts DeriveOptions) (WeatherData, error)

	// GetMetadata returns provider metadata.
	GetMetadata() ProviderInfo

	// SeedHint returns a layout seed derived from the provider's source, if available.
	// Returns 0 if the provider has no stable source to seed from.
	SeedHint() int64

	// GetFlagHelp returns help information for provider flags.
	GetFlagHelp() []FlagHelp
}
