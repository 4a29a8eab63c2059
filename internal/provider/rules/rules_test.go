package rules

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmylchreest/atrium/internal/market"
	"github.com/jmylchreest/atrium/internal/provider"
	"github.com/jmylchreest/atrium/internal/weather"
)

const snapshotJSON = `{
	"btc": {"price": 60000, "priceChange24h": 7, "volume24h": 10000000000},
	"eth": {"price": 3000, "priceChange24h": 7, "volume24h": 10000000000},
	"sui": {"price": 1.5, "priceChange24h": 7, "volume24h": 10000000000},
	"wal": {"price": 0.5, "priceChange24h": 7, "volume24h": 10000000000}
}`

func TestDeriveFromServer(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, snapshotJSON)
	}))
	defer server.Close()

	p := New()
	p.url = server.URL

	opts := provider.DeriveOptions{Now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	params, err := p.Derive(context.Background(), opts)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	if params.WeatherType != weather.Sunny {
		t.Errorf("Expected sunny weather for +7%% change, got %s", params.WeatherType)
	}
	if params.Mood != weather.Energetic {
		t.Errorf("Expected energetic mood, got %s", params.Mood)
	}
	if params.FishCount != 20 {
		t.Errorf("Expected 20 fish at 40B volume, got %d", params.FishCount)
	}

	// A second derivation inside the TTL is served from cache.
	if _, err := p.Derive(context.Background(), opts); err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if requests != 1 {
		t.Errorf("Expected 1 upstream request, got %d", requests)
	}
}

func TestDeriveServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	defer server.Close()

	p := New()
	p.url = server.URL

	if _, err := p.Derive(context.Background(), provider.DeriveOptions{}); err == nil {
		t.Error("Expected error for failing endpoint, got nil")
	}
}

func TestDeriveInjectedSource(t *testing.T) {
	src := market.SourceFunc(func(ctx context.Context) (*market.Snapshot, error) {
		return &market.Snapshot{
			BTC: market.AssetStats{PriceChange24h: -14, Volume24h: 4e9},
			ETH: market.AssetStats{PriceChange24h: -14, Volume24h: 4e9},
			SUI: market.AssetStats{PriceChange24h: -14, Volume24h: 4e9},
			WAL: market.AssetStats{PriceChange24h: -14, Volume24h: 4e9},
		}, nil
	})

	p := NewWithSource(src, time.Minute)
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate failed for injected source: %v", err)
	}

	params, err := p.Derive(context.Background(), provider.DeriveOptions{
		Now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	if params.WeatherType != weather.Stormy {
		t.Errorf("Expected stormy weather for -14%% change, got %s", params.WeatherType)
	}
	if params.IslandState != weather.IslandBurning {
		t.Errorf("Expected burning island below -12%%, got %s", params.IslandState)
	}
	if !params.HasEvent(weather.EventMeteorShower) {
		t.Error("Expected meteor shower event for a crash")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "missing url", url: "", wantErr: true},
		{name: "unsupported scheme", url: "ftp://example.com/stats", wantErr: true},
		{name: "http url", url: "http://localhost:8080/stats", wantErr: false},
		{name: "https url", url: "https://example.com/stats", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New()
			p.url = tt.url
			err := p.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestClearCacheForcesRefresh(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, snapshotJSON)
	}))
	defer server.Close()

	p := New()
	p.url = server.URL

	if _, err := p.Derive(context.Background(), provider.DeriveOptions{}); err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	p.ClearCache()
	if _, err := p.Derive(context.Background(), provider.DeriveOptions{}); err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	if requests != 2 {
		t.Errorf("Expected 2 upstream requests after ClearCache, got %d", requests)
	}
}
