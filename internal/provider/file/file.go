// Package file provides a weather provider loading parameters or market snapshots from files.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/atrium/internal/market"
	"github.com/jmylchreest/atrium/internal/provider"
	"github.com/jmylchreest/atrium/internal/provider/shared/seed"
	"github.com/jmylchreest/atrium/internal/weather"
)

// Provider implements the provider.Provider interface for file-based weather loading.
type Provider struct {
	path string
}

// New creates a new file weather provider.
func New() *Provider {
	return &Provider{}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "file"
}

// Description returns the provider description.
func (p *Provider) Description() string {
	return "Load weather parameters or a market snapshot from a JSON file"
}

// RegisterFlags registers provider-specific flags with the cobra command.
func (p *Provider) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.path, "file.path", "", "Path to a parameter set or market snapshot JSON file (required)")
}

// Validate checks if the provider has all required inputs configured.
func (p *Provider) Validate() error {
	if p.path == "" {
		return fmt.Errorf("--file.path is required")
	}
	return nil
}

// SeedHint returns a layout seed derived from the file path, so the same
// file always produces the same scene.
func (p *Provider) SeedHint() int64 {
	s, err := seed.CalculateSourceSeed(p.path)
	if err != nil {
		return 0
	}
	return s
}

// Derive loads weather from the configured file. A saved parameter set is
// used as-is after normalization; a market snapshot runs through the full
// derivation pipeline.
func (p *Provider) Derive(_ context.Context, opts provider.DeriveOptions) (weather.Params, error) {
	if opts.Verbose {
		fmt.Printf("→ Loading weather from: %s\n", p.path)
	}

	data, err := os.ReadFile(p.path) // #nosec G304 - User-specified input file, intended to be read
	if err != nil {
		return weather.Params{}, fmt.Errorf("failed to load weather file: %w", err)
	}

	params, form, err := Parse(data, opts.At())
	if err != nil {
		return weather.Params{}, err
	}

	if opts.Verbose {
		fmt.Printf("   Detected: %s\n", form)
	}

	return params, nil
}

// Parse interprets data as either a saved parameter set or a market
// snapshot, preferring the parameter form. The returned string names the
// detected form for diagnostics.
func Parse(data []byte, now time.Time) (weather.Params, string, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return weather.Params{}, "", fmt.Errorf("failed to parse weather file: %w", err)
	}

	if _, ok := probe["weatherType"]; ok {
		var params weather.Params
		if err := json.Unmarshal(data, &params); err != nil {
			return weather.Params{}, "", fmt.Errorf("failed to parse parameter set: %w", err)
		}
		if params.Timestamp.IsZero() {
			params.Timestamp = now
		}
		params.Normalize()
		return params, "parameter set", nil
	}

	for _, key := range []string{"btc", "eth", "sui", "wal"} {
		if _, ok := probe[key]; ok {
			var snap market.Snapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				return weather.Params{}, "", fmt.Errorf("failed to parse market snapshot: %w", err)
			}
			return weather.Derive(&snap, now), "market snapshot", nil
		}
	}

	return weather.Params{}, "", fmt.Errorf("file contains neither weather parameters nor a market snapshot")
}
