// Package market defines the market-data snapshot consumed by the weather
// derivation pipeline, plus an injected TTL cache around a snapshot source.
package market

import (
	"math"
)

// AssetStats holds the per-asset figures of one snapshot.
type AssetStats struct {
	Price          float64 `json:"price"`
	PriceChange24h float64 `json:"priceChange24h"`
	Volume24h      float64 `json:"volume24h"`
	MarketCap      float64 `json:"marketCap"`
}

// Aggregated holds the cross-asset metrics derived from the four assets.
type Aggregated struct {
	AverageChange    float64 `json:"averageChange"`
	Volatility       float64 `json:"volatility"`
	MarketSentiment  string  `json:"marketSentiment"`
	MarketActivity   float64 `json:"marketActivity"`
	TrendingStrength float64 `json:"trendingStrength"`
}

// Snapshot is one observation of the tracked markets. Aggregated may arrive
// precomputed from a backend or be filled locally via Normalize.
type Snapshot struct {
	BTC        AssetStats `json:"btc"`
	ETH        AssetStats `json:"eth"`
	SUI        AssetStats `json:"sui"`
	WAL        AssetStats `json:"wal"`
	Aggregated Aggregated `json:"aggregatedMetrics"`
}

// Assets returns the four asset entries in fixed order.
func (s *Snapshot) Assets() [4]AssetStats {
	return [4]AssetStats{s.BTC, s.ETH, s.SUI, s.WAL}
}

// TotalVolume24h sums the 24h volumes across all assets.
func (s *Snapshot) TotalVolume24h() float64 {
	var total float64
	for _, a := range s.Assets() {
		total += a.Volume24h
	}
	return total
}

// Aggregate computes the cross-asset metrics from the raw asset stats.
// AverageChange is market-cap weighted, falling back to an equal-weight mean
// when no caps are present. Volatility is the population standard deviation
// of the four 24h changes.
func Aggregate(s *Snapshot) Aggregated {
	assets := s.Assets()

	var capSum float64
	for _, a := range assets {
		capSum += a.MarketCap
	}

	var avg float64
	if capSum > 0 {
		for _, a := range assets {
			avg += a.PriceChange24h * (a.MarketCap / capSum)
		}
	} else {
		for _, a := range assets {
			avg += a.PriceChange24h
		}
		avg /= float64(len(assets))
	}

	var mean float64
	for _, a := range assets {
		mean += a.PriceChange24h
	}
	mean /= float64(len(assets))

	var variance float64
	for _, a := range assets {
		d := a.PriceChange24h - mean
		variance += d * d
	}
	variance /= float64(len(assets))

	var trending float64
	for _, a := range assets {
		trending += math.Abs(a.PriceChange24h)
	}
	trending /= float64(len(assets))

	return Aggregated{
		AverageChange:    avg,
		Volatility:       math.Sqrt(variance),
		MarketSentiment:  sentiment(avg),
		MarketActivity:   s.TotalVolume24h() / 1e9,
		TrendingStrength: trending,
	}
}

// Normalize fills in Aggregated when the snapshot arrived without it.
func (s *Snapshot) Normalize() {
	if s.Aggregated == (Aggregated{}) {
		s.Aggregated = Aggregate(s)
	}
}

func sentiment(avgChange float64) string {
	switch {
	case avgChange > 2:
		return "bullish"
	case avgChange < -2:
		return "bearish"
	default:
		return "neutral"
	}
}
