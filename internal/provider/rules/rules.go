// Package rules provides a weather provider deriving parameters from live market statistics.
package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/atrium/internal/market"
	"github.com/jmylchreest/atrium/internal/provider"
	httputil "github.com/jmylchreest/atrium/internal/util/httpx"
	"github.com/jmylchreest/atrium/internal/weather"
)

// Provider implements the provider.Provider interface for rule-based weather derivation.
type Provider struct {
	url     string
	timeout time.Duration
	ttl     time.Duration

	source market.Source
	cache  *market.Cache
}

// New creates a new rules weather provider.
func New() *Provider {
	return &Provider{
		timeout: 10 * time.Second,
		ttl:     time.Minute,
	}
}

// NewWithSource creates a rules provider over an injected snapshot source.
// The URL flag is ignored when a source is provided.
func NewWithSource(src market.Source, ttl time.Duration) *Provider {
	return &Provider{
		timeout: 10 * time.Second,
		ttl:     ttl,
		source:  src,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "rules"
}

// Description returns the provider description.
func (p *Provider) Description() string {
	return "Derive weather from market statistics using the fixed rule table"
}

// RegisterFlags registers provider-specific flags with the cobra command.
func (p *Provider) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.url, "rules.url", "", "URL of the market statistics endpoint (required)")
	cmd.Flags().DurationVar(&p.timeout, "rules.timeout", 10*time.Second, "HTTP timeout")
	cmd.Flags().DurationVar(&p.ttl, "rules.ttl", time.Minute, "Snapshot cache time-to-live")
}

// Validate checks if the provider has all required inputs configured.
func (p *Provider) Validate() error {
	if p.source != nil {
		return nil
	}

	if p.url == "" {
		return fmt.Errorf("--rules.url is required")
	}

	// Basic URL validation
	if !strings.HasPrefix(p.url, "http://") && !strings.HasPrefix(p.url, "https://") {
		return fmt.Errorf("URL must start with http:// or https://")
	}

	return nil
}

// Derive fetches a market snapshot and runs the full derivation pipeline,
// including the time-of-day override layer for the reference hour.
func (p *Provider) Derive(ctx context.Context, opts provider.DeriveOptions) (weather.Params, error) {
	if p.cache == nil {
		p.cache = market.NewCache(p.snapshotSource(), p.ttl)
	}

	if opts.Verbose && p.url != "" {
		fmt.Printf("→ Fetching market snapshot from: %s\n", p.url)
	}

	snap, info, err := p.cache.Get(ctx)
	if err != nil {
		return weather.Params{}, fmt.Errorf("failed to fetch market snapshot: %w", err)
	}

	if opts.Verbose {
		if info.Cached {
			fmt.Printf("   Cache: hit (age %s, stale %v)\n", info.Age.Round(time.Second), info.Stale)
		}
		agg := snap.Aggregated
		fmt.Printf("   Average change: %+.2f%%, volatility: %.2f, sentiment: %s\n",
			agg.AverageChange, agg.Volatility, agg.MarketSentiment)
	}

	return weather.Derive(snap, opts.At()), nil
}

// ClearCache drops the cached snapshot so the next derivation refreshes.
func (p *Provider) ClearCache() {
	if p.cache != nil {
		p.cache.ClearCache()
	}
}

// snapshotSource returns the injected source, or an HTTP source over the
// configured URL.
func (p *Provider) snapshotSource() market.Source {
	if p.source != nil {
		return p.source
	}
	return market.SourceFunc(func(ctx context.Context) (*market.Snapshot, error) {
		content, err := httputil.Fetch(ctx, p.url, httputil.FetchOptions{Timeout: p.timeout})
		if err != nil {
			return nil, err
		}

		var snap market.Snapshot
		if err := json.Unmarshal(content, &snap); err != nil {
			return nil, fmt.Errorf("failed to parse market statistics: %w", err)
		}
		return &snap, nil
	})
}
