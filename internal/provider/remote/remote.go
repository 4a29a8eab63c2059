// Package remote provides a weather provider fetching parameters from a weather API endpoint.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/atrium/internal/provider"
	"github.com/jmylchreest/atrium/internal/provider/shared/seed"
	httputil "github.com/jmylchreest/atrium/internal/util/httpx"
	"github.com/jmylchreest/atrium/internal/weather"
)

// Provider implements the provider.Provider interface for remote weather fetching.
type Provider struct {
	url     string
	timeout time.Duration
}

// envelope mirrors the weather API response shape: the parameter set plus
// cache metadata about how it was served.
type envelope struct {
	Weather  *weather.Params `json:"weather"`
	Cached   bool            `json:"cached"`
	CacheAge float64         `json:"cacheAge"`
	Stale    bool            `json:"stale"`
}

// New creates a new remote weather provider.
func New() *Provider {
	return &Provider{
		timeout: 10 * time.Second,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "remote"
}

// Description returns the provider description.
func (p *Provider) Description() string {
	return "Fetch weather parameters from a remote weather API endpoint"
}

// RegisterFlags registers provider-specific flags with the cobra command.
func (p *Provider) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.url, "remote.url", "", "URL of the weather endpoint (required)")
	cmd.Flags().DurationVar(&p.timeout, "remote.timeout", 10*time.Second, "HTTP timeout")
}

// Validate checks if the provider has all required inputs configured.
func (p *Provider) Validate() error {
	if p.url == "" {
		return fmt.Errorf("--remote.url is required")
	}

	// Basic URL validation
	if !strings.HasPrefix(p.url, "http://") && !strings.HasPrefix(p.url, "https://") {
		return fmt.Errorf("URL must start with http:// or https://")
	}

	return nil
}

// SeedHint returns a layout seed derived from the endpoint URL.
func (p *Provider) SeedHint() int64 {
	s, err := seed.CalculateSourceSeed(p.url)
	if err != nil {
		return 0
	}
	return s
}

// Derive fetches and parses remote weather parameters. Both the enveloped
// API response and a bare parameter set are accepted.
func (p *Provider) Derive(ctx context.Context, opts provider.DeriveOptions) (weather.Params, error) {
	if opts.Verbose {
		fmt.Printf("→ Fetching weather from: %s\n", p.url)
	}

	content, err := httputil.Fetch(ctx, p.url, httputil.FetchOptions{Timeout: p.timeout})
	if err != nil {
		return weather.Params{}, fmt.Errorf("failed to fetch weather: %w", err)
	}

	if opts.Verbose {
		fmt.Printf("   Size: %d bytes\n", len(content))
	}

	params, env, err := parseResponse(content)
	if err != nil {
		return weather.Params{}, fmt.Errorf("failed to parse weather response: %w", err)
	}

	if opts.Verbose && env != nil {
		fmt.Printf("   Served from cache: %v (age %.1fs, stale %v)\n", env.Cached, env.CacheAge, env.Stale)
	}

	if params.Timestamp.IsZero() {
		params.Timestamp = opts.At()
	}
	params.Normalize()
	return params, nil
}

// parseResponse interprets content as the enveloped API shape or as a bare
// parameter set. The envelope is returned when present so callers can
// report cache metadata.
func parseResponse(content []byte) (weather.Params, *envelope, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(content, &probe); err != nil {
		return weather.Params{}, nil, err
	}

	if _, ok := probe["weather"]; ok {
		var env envelope
		if err := json.Unmarshal(content, &env); err != nil {
			return weather.Params{}, nil, err
		}
		if env.Weather == nil {
			return weather.Params{}, nil, fmt.Errorf("envelope has no weather object")
		}
		return *env.Weather, &env, nil
	}

	if _, ok := probe["weatherType"]; ok {
		var params weather.Params
		if err := json.Unmarshal(content, &params); err != nil {
			return weather.Params{}, nil, err
		}
		return params, nil, nil
	}

	return weather.Params{}, nil, fmt.Errorf("response contains no weather parameters")
}
