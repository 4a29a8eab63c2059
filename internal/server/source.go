package server

import (
	"context"
	"sync"
	"time"

	"github.com/jmylchreest/atrium/internal/provider"
	"github.com/jmylchreest/atrium/internal/weather"
)

// Info reports how a parameter set was served.
type Info struct {
	Cached bool          // served from cache rather than a fresh derivation
	Age    time.Duration // time since the parameters were derived
	Stale  bool          // older than the TTL (served because refresh failed)
}

// WeatherSource supplies the current weather parameters plus serving metadata.
type WeatherSource interface {
	Current(ctx context.Context) (weather.Params, Info, error)
}

// ProviderSource adapts a weather provider into a WeatherSource with a
// time-to-live. Within the TTL it serves the last derivation from memory;
// past it, a refresh failure serves the stale parameters instead of an
// error. Safe for concurrent use.
type ProviderSource struct {
	mu    sync.Mutex
	prov  provider.Provider
	opts  provider.DeriveOptions
	ttl   time.Duration
	now   func() time.Time
	have  bool
	cur   weather.Params
	since time.Time
}

// SourceOption customizes a ProviderSource.
type SourceOption func(*ProviderSource)

// WithNow overrides the clock used for TTL decisions. Tests use this.
func WithNow(now func() time.Time) SourceOption {
	return func(s *ProviderSource) { s.now = now }
}

// WithDeriveOptions sets the options passed to every derivation.
func WithDeriveOptions(opts provider.DeriveOptions) SourceOption {
	return func(s *ProviderSource) { s.opts = opts }
}

// NewProviderSource creates a source over p refreshing at most every ttl.
func NewProviderSource(p provider.Provider, ttl time.Duration, opts ...SourceOption) *ProviderSource {
	s := &ProviderSource{
		prov: p,
		ttl:  ttl,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the cached parameters when fresh, otherwise derives anew.
func (s *ProviderSource) Current(ctx context.Context) (weather.Params, Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.have {
		age := now.Sub(s.since)
		if age < s.ttl {
			return s.cur, Info{Cached: true, Age: age}, nil
		}
	}

	params, err := s.prov.Derive(ctx, s.opts)
	if err != nil {
		if s.have {
			return s.cur, Info{Cached: true, Age: now.Sub(s.since), Stale: true}, nil
		}
		return weather.Params{}, Info{}, err
	}

	s.cur = params
	s.since = now
	s.have = true
	return s.cur, Info{}, nil
}

// ClearCache drops the cached parameters, forcing the next Current to derive.
func (s *ProviderSource) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.have = false
	s.cur = weather.Params{}
	s.since = time.Time{}
}
