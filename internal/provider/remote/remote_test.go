// Package remote provides tests for the remote weather provider.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmylchreest/atrium/internal/provider"
	"github.com/jmylchreest/atrium/internal/weather"
)

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDeriveEnvelope(t *testing.T) {
	server := newServer(t, http.StatusOK, `{
		"weather": {
			"weatherType": "rainy",
			"mood": "melancholic",
			"fishCount": 8,
			"particleIntensity": 0.6
		},
		"cached": true,
		"cacheAge": 42.5,
		"stale": false
	}`)

	p := New()
	p.url = server.URL

	params, err := p.Derive(context.Background(), provider.DeriveOptions{
		Now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	if params.WeatherType != weather.Rainy {
		t.Errorf("Expected rainy weather, got %s", params.WeatherType)
	}
	if params.Mood != weather.Melancholic {
		t.Errorf("Expected melancholic mood, got %s", params.Mood)
	}
	if params.FishCount != 8 {
		t.Errorf("Expected 8 fish, got %d", params.FishCount)
	}
	if params.Timestamp.IsZero() {
		t.Error("Expected timestamp to be filled")
	}
}

func TestDeriveBareParams(t *testing.T) {
	server := newServer(t, http.StatusOK, `{
		"weatherType": "foggy",
		"fogDensity": 4.0,
		"floatingOrbCount": 2
	}`)

	p := New()
	p.url = server.URL

	params, err := p.Derive(context.Background(), provider.DeriveOptions{})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	if params.WeatherType != weather.Foggy {
		t.Errorf("Expected foggy weather, got %s", params.WeatherType)
	}
	if params.FogDensity != 1 {
		t.Errorf("Expected fog density clamped to 1, got %v", params.FogDensity)
	}
	if params.FloatingOrbCount != 5 {
		t.Errorf("Expected orb count raised to 5, got %d", params.FloatingOrbCount)
	}
}

func TestDeriveErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "http error", status: http.StatusNotFound, body: `not found`},
		{name: "invalid json", status: http.StatusOK, body: `{]`},
		{name: "no weather keys", status: http.StatusOK, body: `{"hello": "world"}`},
		{name: "null weather in envelope", status: http.StatusOK, body: `{"weather": null, "cached": false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newServer(t, tt.status, tt.body)

			p := New()
			p.url = server.URL

			if _, err := p.Derive(context.Background(), provider.DeriveOptions{}); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "missing url", url: "", wantErr: true},
		{name: "unsupported scheme", url: "ftp://example.com/weather", wantErr: true},
		{name: "relative path", url: "/api/ai-weather", wantErr: true},
		{name: "http url", url: "http://localhost:3000/api/ai-weather", wantErr: false},
		{name: "https url", url: "https://example.com/api/ai-weather", wantErr: false},
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
