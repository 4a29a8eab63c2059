package market

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		BTC: AssetStats{Price: 60000, PriceChange24h: 8, Volume24h: 20e9, MarketCap: 1200e9},
		ETH: AssetStats{Price: 3000, PriceChange24h: 6, Volume24h: 12e9, MarketCap: 360e9},
		SUI: AssetStats{Price: 1.5, PriceChange24h: 7, Volume24h: 5e9, MarketCap: 4e9},
		WAL: AssetStats{Price: 0.5, PriceChange24h: 7, Volume24h: 3e9, MarketCap: 1e9},
	}
}

func TestAggregate(t *testing.T) {
	s := sampleSnapshot()
	agg := Aggregate(s)

	// Cap-weighted average sits between the extremes and close to BTC's.
	if agg.AverageChange < 6 || agg.AverageChange > 8 {
		t.Errorf("Expected weighted average in (6, 8), got %f", agg.AverageChange)
	}
	if agg.MarketSentiment != "bullish" {
		t.Errorf("Expected bullish sentiment, got %s", agg.MarketSentiment)
	}
	if agg.MarketActivity != 40 {
		t.Errorf("Expected 40B market activity, got %f", agg.MarketActivity)
	}
	// Changes 8, 6, 7, 7: mean 7, population stddev sqrt(0.5).
	want := math.Sqrt(0.5)
	if math.Abs(agg.Volatility-want) > 1e-9 {
		t.Errorf("Expected volatility %f, got %f", want, agg.Volatility)
	}
	if agg.TrendingStrength != 7 {
		t.Errorf("Expected trending strength 7, got %f", agg.TrendingStrength)
	}
}

func TestAggregateEqualWeightFallback(t *testing.T) {
	s := &Snapshot{
		BTC: AssetStats{PriceChange24h: 4},
		ETH: AssetStats{PriceChange24h: -4},
		SUI: AssetStats{PriceChange24h: 2},
		WAL: AssetStats{PriceChange24h: -2},
	}
	agg := Aggregate(s)
	if agg.AverageChange != 0 {
		t.Errorf("Expected equal-weight average 0, got %f", agg.AverageChange)
	}
	if agg.MarketSentiment != "neutral" {
		t.Errorf("Expected neutral sentiment, got %s", agg.MarketSentiment)
	}
}

func TestNormalizeFillsAggregates(t *testing.T) {
	s := sampleSnapshot()
	s.Normalize()
	if s.Aggregated.Volatility == 0 && s.Aggregated.AverageChange == 0 {
		t.Errorf("Expected Normalize to fill aggregates")
	}

	// Precomputed metrics are kept as-is.
	s2 := sampleSnapshot()
	s2.Aggregated = Aggregated{AverageChange: 99, Volatility: 1}
	s2.Normalize()
	if s2.Aggregated.AverageChange != 99 {
		t.Errorf("Expected precomputed aggregates preserved, got %f", s2.Aggregated.AverageChange)
	}
}

func TestCacheFreshAndExpired(t *testing.T) {
	fetches := 0
	src := SourceFunc(func(ctx context.Context) (*Snapshot, error) {
		fetches++
		return sampleSnapshot(), nil
	})

	now := time.Unix(1000, 0)
	cache := NewCache(src, 30*time.Second, WithNow(func() time.Time { return now }))

	_, info, err := cache.Get(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info.Cached {
		t.Errorf("Expected first Get to be a fresh fetch")
	}

	now = now.Add(10 * time.Second)
	_, info, _ = cache.Get(context.Background())
	if !info.Cached || info.Stale {
		t.Errorf("Expected fresh cache hit, got %+v", info)
	}
	if info.Age != 10*time.Second {
		t.Errorf("Expected age 10s, got %v", info.Age)
	}
	if fetches != 1 {
		t.Errorf("Expected 1 fetch, got %d", fetches)
	}

	now = now.Add(time.Minute)
	_, info, _ = cache.Get(context.Background())
	if info.Cached {
		t.Errorf("Expected refetch after TTL, got %+v", info)
	}
	if fetches != 2 {
		t.Errorf("Expected 2 fetches, got %d", fetches)
	}
}

func TestCacheServesStaleOnError(t *testing.T) {
	healthy := true
	src := SourceFunc(func(ctx context.Context) (*Snapshot, error) {
		if !healthy {
			return nil, errors.New("upstream down")
		}
		return sampleSnapshot(), nil
	})

	now := time.Unix(2000, 0)
	cache := NewCache(src, time.Second, WithNow(func() time.Time { return now }))

	if _, _, err := cache.Get(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	healthy = false
	now = now.Add(time.Minute)
	snap, info, err := cache.Get(context.Background())
	if err != nil {
		t.Fatalf("Expected stale snapshot, got error: %v", err)
	}
	if snap == nil || !info.Stale {
		t.Errorf("Expected stale cache hit, got %+v", info)
	}

	// With nothing cached, the error surfaces.
	cache.ClearCache()
	if _, _, err := cache.Get(context.Background()); err == nil {
		t.Errorf("Expected error when source fails with empty cache")
	}
}
