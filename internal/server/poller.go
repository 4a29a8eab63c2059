package server

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/atrium/internal/weather"
)

// Poller periodically refreshes weather from a source and hands each
// successful result to OnUpdate. Refresh failures are logged and the
// previous parameters stay in effect.
type Poller struct {
	Source   WeatherSource
	Interval time.Duration
	OnUpdate func(weather.Params)
	Logger   hclog.Logger
}

// Run refreshes immediately, then on every tick until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	logger := p.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	p.refresh(ctx, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx, logger)
		}
	}
}

func (p *Poller) refresh(ctx context.Context, logger hclog.Logger) {
	params, info, err := p.Source.Current(ctx)
	if err != nil {
		logger.Warn("weather refresh failed", "error", err)
		return
	}

	logger.Debug("weather refreshed",
		"type", string(params.WeatherType),
		"mood", string(params.Mood),
		"cached", info.Cached,
		"stale", info.Stale,
	)

	if p.OnUpdate != nil {
		p.OnUpdate(params)
	}
}
