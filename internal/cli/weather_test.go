package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/atrium/internal/weather"
)

func TestParseReferenceTime(t *testing.T) {
	// Empty defaults to the wall clock
	now, err := parseReferenceTime("")
	if err != nil {
		t.Fatalf("Unexpected error for empty time: %v", err)
	}
	if now.IsZero() {
		t.Error("Expected non-zero time for empty input")
	}

	// RFC3339 parses exactly
	got, err := parseReferenceTime("2026-01-01T21:00:00Z")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := time.Date(2026, 1, 1, 21, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	// Garbage is rejected
	if _, err := parseReferenceTime("yesterday"); err == nil {
		t.Error("Expected error for invalid time, got nil")
	}
}

func TestMarshalWeatherParams(t *testing.T) {
	params, err := weather.Preset("sunny", time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Preset failed: %v", err)
	}

	compact, err := marshalWeatherParams(params, false)
	if err != nil {
		t.Fatalf("Compact marshal failed: %v", err)
	}
	if strings.Contains(string(compact), "\n") {
		t.Error("Compact output should not contain newlines")
	}

	pretty, err := marshalWeatherParams(params, true)
	if err != nil {
		t.Fatalf("Pretty marshal failed: %v", err)
	}
	if !strings.Contains(string(pretty), "\n  \"") {
		t.Error("Pretty output should be indented")
	}

	var decoded weather.Params
	if err := json.Unmarshal(pretty, &decoded); err != nil {
		t.Fatalf("Pretty output should unmarshal: %v", err)
	}
	if decoded.WeatherType != params.WeatherType {
		t.Errorf("Expected weather type %s, got %s", params.WeatherType, decoded.WeatherType)
	}
}

func TestProviderArgsFor(t *testing.T) {
	// No args for the provider
	if got := providerArgsFor(nil, "rules", false); got != nil {
		t.Errorf("Expected nil for missing args, got %v", got)
	}
	if got := providerArgsFor(map[string]string{"other": "{}"}, "rules", false); got != nil {
		t.Errorf("Expected nil for args addressed to another provider, got %v", got)
	}

	// Valid JSON parses
	got := providerArgsFor(map[string]string{"rules": `{"region":"eu","limit":3}`}, "rules", false)
	if got == nil {
		t.Fatal("Expected parsed args, got nil")
	}
	if got["region"] != "eu" {
		t.Errorf("Expected region 'eu', got %v", got["region"])
	}

	// Invalid JSON is dropped
	if got := providerArgsFor(map[string]string{"rules": "{broken"}, "rules", false); got != nil {
		t.Errorf("Expected nil for invalid JSON, got %v", got)
	}
}

func TestWeatherCommandPreset(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "weather.json")

	rootCmd.SetArgs([]string{"weather", "--preset", "stormy", "--at", "2026-01-01T21:00:00Z", "-o", outPath})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("weather command failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Expected output file: %v", err)
	}

	var params weather.Params
	if err := json.Unmarshal(data, &params); err != nil {
		t.Fatalf("Output should be valid JSON: %v", err)
	}
	if params.WeatherType != weather.Stormy {
		t.Errorf("Expected stormy weather, got %s", params.WeatherType)
	}
	want := time.Date(2026, 1, 1, 21, 0, 0, 0, time.UTC)
	if !params.Timestamp.Equal(want) {
		t.Errorf("Expected timestamp %v, got %v", want, params.Timestamp)
	}
}

func TestWeatherCommandUnknownPreset(t *testing.T) {
	rootCmd.SetArgs([]string{"weather", "--preset", "volcanic"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("Expected error for unknown preset, got none")
	}
	if !strings.Contains(err.Error(), "unknown preset: volcanic") {
		t.Errorf("Expected unknown preset error, got: %v", err)
	}
}
