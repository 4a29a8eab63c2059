package googlegenai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/atrium/internal/provider"
	"github.com/jmylchreest/atrium/internal/weather"
)

// TestNew tests creating a new provider with defaults.
func TestNew(t *testing.T) {
	p := New()

	if p == nil {
		t.Fatal("New() returned nil")
	}

	if p.Name() != "google-genai" {
		t.Errorf("Expected name 'google-genai', got '%s'", p.Name())
	}

	if p.model != defaultModel {
		t.Errorf("Expected default model '%s', got '%s'", defaultModel, p.model)
	}

	if p.backend != defaultBackend {
		t.Errorf("Expected default backend '%s', got '%s'", defaultBackend, p.backend)
	}

	if !p.cacheEnabled {
		t.Error("Expected cacheEnabled to be true by default")
	}

	if p.cacheOverwrite {
		t.Error("Expected cacheOverwrite to be false by default")
	}

	if p.cacheMaxAge != 15*time.Minute {
		t.Errorf("Expected default cache max age 15m, got %s", p.cacheMaxAge)
	}
}

// TestVersion tests the Version method.
func TestVersion(t *testing.T) {
	p := New()
	version := p.Version()
	if version == "" {
		t.Error("Version should not be empty")
	}
	// Check it matches semver format (X.Y.Z)
	matched, _ := regexp.MatchString(`^\d+\.\d+\.\d+$`, version)
	if !matched {
		t.Errorf("Version '%s' does not follow semver format (X.Y.Z)", version)
	}
}

// TestRegisterFlags tests flag registration.
func TestRegisterFlags(t *testing.T) {
	p := New()
	cmd := &cobra.Command{
		Use: "test",
	}

	p.RegisterFlags(cmd)

	flags := []string{
		"prompt",
		"model",
		"genai-backend",
		"market-url",
		"cache",
		"cache-dir",
		"cache-max-age",
		"cache-overwrite",
		"list-models",
	}

	for _, flagName := range flags {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			t.Errorf("Flag '%s' not registered", flagName)
		}
	}
}

// TestValidate tests input validation.
func TestValidate(t *testing.T) {
	p := New()
	if err := p.Validate(); err == nil {
		t.Error("Expected error without prompt or market URL")
	}

	p = New()
	p.prompt = "a serene evening over a calm market"
	if err := p.Validate(); err != nil {
		t.Errorf("Validation should pass with prompt, got error: %v", err)
	}

	p = New()
	p.marketURL = "https://example.com/stats"
	if err := p.Validate(); err != nil {
		t.Errorf("Validation should pass with market URL, got error: %v", err)
	}

	p = New()
	p.listModels = true
	if err := p.Validate(); err != nil {
		t.Errorf("Validation should pass when listing models, got error: %v", err)
	}
}

// TestStripFences tests markdown fence removal.
func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain json",
			input: `{"weatherType": "sunny"}`,
			want:  `{"weatherType": "sunny"}`,
		},
		{
			name:  "json fence",
			input: "```json\n{\"weatherType\": \"sunny\"}\n```",
			want:  `{"weatherType": "sunny"}`,
		},
		{
			name:  "bare fence",
			input: "```\n{\"weatherType\": \"sunny\"}\n```",
			want:  `{"weatherType": "sunny"}`,
		},
		{
			name:  "surrounding whitespace",
			input: "  \n{\"weatherType\": \"sunny\"}\n  ",
			want:  `{"weatherType": "sunny"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripFences(tt.input)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestParseParams tests response parsing and normalization.
func TestParseParams(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	params, err := parseParams([]byte(`{
		"weatherType": "stormy",
		"mood": "chaotic",
		"windSpeed": 25,
		"fishCount": -3,
		"reasoning": "markets are crashing"
	}`), now)
	if err != nil {
		t.Fatalf("parseParams failed: %v", err)
	}

	if params.WeatherType != weather.Stormy {
		t.Errorf("Expected stormy weather, got %s", params.WeatherType)
	}
	if params.WindSpeed != 10 {
		t.Errorf("Expected wind speed clamped to 10, got %v", params.WindSpeed)
	}
	if params.FishCount != 0 {
		t.Errorf("Expected fish count raised to 0, got %d", params.FishCount)
	}
	if params.Reasoning != "markets are crashing" {
		t.Errorf("Unexpected reasoning: %s", params.Reasoning)
	}
	if !params.Timestamp.Equal(now) {
		t.Errorf("Expected timestamp %s, got %s", now, params.Timestamp)
	}

	if _, err := parseParams([]byte(`{"mood": "calm"}`), now); err == nil {
		t.Error("Expected error for response without weatherType")
	}

	if _, err := parseParams([]byte(`not json`), now); err == nil {
		t.Error("Expected error for non-JSON response")
	}
}

// TestBuildPromptWithMarketContext tests prompt assembly from a live endpoint.
func TestBuildPromptWithMarketContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"btc": {"priceChange24h": 7, "volume24h": 10000000000},
			"eth": {"priceChange24h": 7, "volume24h": 10000000000},
			"sui": {"priceChange24h": 7, "volume24h": 10000000000},
			"wal": {"priceChange24h": 7, "volume24h": 10000000000}
		}`)
	}))
	defer server.Close()

	p := New()
	p.marketURL = server.URL
	p.prompt = "make it dramatic"

	prompt, err := p.buildPrompt(context.Background(), false)
	if err != nil {
		t.Fatalf("buildPrompt failed: %v", err)
	}

	if !strings.Contains(prompt, "+7.00%") {
		t.Error("Expected prompt to contain the average change")
	}
	if !strings.Contains(prompt, "bullish") {
		t.Error("Expected prompt to contain the sentiment")
	}
	if !strings.Contains(prompt, "Creative direction: make it dramatic") {
		t.Error("Expected prompt to contain the creative direction")
	}
	if !strings.Contains(prompt, "weatherType") {
		t.Error("Expected prompt to contain the schema briefing")
	}
}

// TestCacheUsable tests cache freshness checks.
func TestCacheUsable(t *testing.T) {
	p := New()
	p.cacheDir = t.TempDir()

	path := filepath.Join(p.cacheDir, "genai-test.json")

	if p.cacheUsable(path) {
		t.Error("Expected missing cache file to be unusable")
	}

	if err := os.WriteFile(path, []byte(`{"weatherType": "sunny"}`), 0o600); err != nil {
		t.Fatalf("Failed to write cache file: %v", err)
	}
	if !p.cacheUsable(path) {
		t.Error("Expected fresh cache file to be usable")
	}

	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("Failed to backdate cache file: %v", err)
	}
	if p.cacheUsable(path) {
		t.Error("Expected expired cache file to be unusable")
	}

	p.cacheMaxAge = 0
	if !p.cacheUsable(path) {
		t.Error("Expected cache to be usable with no max age")
	}

	p.cacheEnabled = false
	if p.cacheUsable(path) {
		t.Error("Expected cache to be unusable when disabled")
	}
}

// TestIsWeatherModel tests model filtering.
func TestIsWeatherModel(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "models/gemini-2.5-flash", want: true},
		{name: "models/gemini-2.5-pro", want: true},
		{name: "models/gemini-2.5-flash-image", want: false},
		{name: "models/imagen-4.0-generate-001", want: false},
		{name: "models/text-embedding-004", want: false},
		{name: "models/gemini-2.5-flash-tts", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isWeatherModel(tt.name); got != tt.want {
				t.Errorf("Expected %v for %s, got %v", tt.want, tt.name, got)
			}
		})
	}
}

// TestDeriveRequiresAPIKey tests that Derive requires an API key.
func TestDeriveRequiresAPIKey(t *testing.T) {
	// Skip if API key is set (to avoid actual API calls)
	if os.Getenv("GOOGLE_API_KEY") != "" {
		t.Skip("Skipping test because GOOGLE_API_KEY is set")
	}

	p := New()
	p.prompt = "test"
	p.backend = "gemini-api"
	p.cacheDir = t.TempDir()

	_, err := p.Derive(context.Background(), provider.DeriveOptions{})
	if err == nil {
		t.Error("Expected error when API key is not set")
	}
}

// TestDeriveUsesCachedParams tests that a fresh cache short-circuits generation.
func TestDeriveUsesCachedParams(t *testing.T) {
	p := New()
	p.prompt = "test"
	p.cacheDir = t.TempDir()

	path, err := p.getParamsPath()
	if err != nil {
		t.Fatalf("getParamsPath failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(`{"weatherType": "snowy", "mood": "calm"}`), 0o600); err != nil {
		t.Fatalf("Failed to seed cache: %v", err)
	}

	params, err := p.Derive(context.Background(), provider.DeriveOptions{
		Now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	if params.WeatherType != weather.Snowy {
		t.Errorf("Expected snowy weather from cache, got %s", params.WeatherType)
	}
}
