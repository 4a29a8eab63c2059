// Package provider provides the interface and base types for weather providers.
package provider

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/atrium/internal/weather"
)

// DeriveOptions holds options passed to weather providers during derivation.
type DeriveOptions struct {
	// Verbose enables verbose output
	Verbose bool

	// Now is the reference time for time-of-day banding.
	// The zero value means the current wall clock.
	Now time.Time

	// ProviderArgs are custom arguments for this provider
	ProviderArgs map[string]any
}

// At returns the reference time, falling back to the wall clock.
func (o DeriveOptions) At() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// SeedHinter is an optional interface that weather providers can implement
// to suggest a deterministic layout seed to the scene builder.
// This is purely advisory - the caller makes the final decision.
type SeedHinter interface {
	// SeedHint returns a suggested layout seed based on the provider's source.
	// Returns 0 for no hint.
	SeedHint() int64
}

// Provider represents a weather provider that derives scene weather parameters.
type Provider interface {
	// Name returns the provider's name (e.g., "rules", "file").
	Name() string

	// Description returns a human-readable description of the provider.
	Description() string

	// Derive produces weather parameters from provider-specific inputs.
	// opts contains flags and arguments passed from the CLI.
	// Returns normalized parameters - scene application happens separately.
	Derive(ctx context.Context, opts DeriveOptions) (weather.Params, error)

	// RegisterFlags registers provider-specific flags with cobra command.
	RegisterFlags(cmd *cobra.Command)

	// Validate checks if the provider has all required inputs configured.
	Validate() error
}

// Registry holds all registered weather providers.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates a new weather provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// List returns all registered provider names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// All returns all registered providers (including disabled ones).
func (r *Registry) All() map[string]Provider {
	// Return a copy to prevent external modification
	providers := make(map[string]Provider, len(r.providers))
	for name, p := range r.providers {
		providers[name] = p
	}
	return providers
}
