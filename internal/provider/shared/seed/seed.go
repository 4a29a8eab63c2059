// Package seed provides utilities for deterministic seed generation for gallery layout.
// This is used by the scene builder and by weather providers to ensure reproducible
// seat placement and effect positioning across runs.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/jmylchreest/atrium/internal/weather"
)

// Mode determines how the layout seed for the gallery scene is generated.
type Mode string

const (
	// ModeWeather generates seed from the derived weather parameters (default, deterministic by conditions).
	ModeWeather Mode = "weather"
	// ModeDaily generates seed from the calendar date (deterministic per day).
	ModeDaily Mode = "daily"
	// ModeManual uses a user-provided seed value.
	ModeManual Mode = "manual"
	// ModeRandom uses non-deterministic random seed (varies each run).
	ModeRandom Mode = "random"
)

// Config holds configuration for seed generation.
type Config struct {
	Mode  Mode   // Seed mode
	Value *int64 // Seed value (only used when Mode is ModeManual)
}

// Calculate determines the seed value based on the seed mode.
// params: the derived weather parameters (required for ModeWeather)
// now: the reference time (required for ModeDaily)
// config: seed configuration
func Calculate(params *weather.Params, now time.Time, config Config) (int64, error) {
	switch config.Mode {
	case ModeWeather:
		if params == nil {
			return 0, fmt.Errorf("weather parameters are required for weather-based seed mode")
		}
		return CalculateWeatherSeed(params)
	case ModeDaily:
		if now.IsZero() {
			return 0, fmt.Errorf("reference time is required for daily seed mode")
		}
		return CalculateDailySeed(now), nil
	case ModeManual:
		if config.Value == nil {
			return 0, fmt.Errorf("seed value is required for manual seed mode")
		}
		return *config.Value, nil
	case ModeRandom:
		return GenerateRandomSeed(), nil
	default:
		return 0, fmt.Errorf("unknown seed mode: %s", config.Mode)
	}
}

// CalculateWeatherSeed generates a deterministic seed from weather parameters.
// This hashes the layout-shaping fields to create a seed that's consistent for
// the same conditions, so identical weather always yields identical scenes.
func CalculateWeatherSeed(p *weather.Params) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("weather parameters cannot be nil")
	}

	hasher := sha256.New()

	writeString := func(s string) {
		hasher.Write([]byte(s))
		hasher.Write([]byte{0})
	}

	writeString(string(p.WeatherType))
	writeString(string(p.Mood))
	writeString(string(p.IslandState))
	writeString(string(p.WaterEffect))
	for _, e := range p.SpecialEvents {
		writeString(string(e))
	}
	for _, e := range p.AmbientEffects {
		writeString(string(e))
	}

	countBytes := make([]byte, 8)
	binary.LittleEndian.PutUint32(countBytes[0:4], uint32(p.FishCount))        // #nosec G115 -- counts are clamped to small ranges
	binary.LittleEndian.PutUint32(countBytes[4:8], uint32(p.FloatingOrbCount)) // #nosec G115 -- counts are clamped to small ranges
	hasher.Write(countBytes)

	floatBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(floatBytes, math.Float64bits(p.ParticleIntensity))
	hasher.Write(floatBytes)
	binary.LittleEndian.PutUint64(floatBytes, math.Float64bits(p.EffectIntensity))
	hasher.Write(floatBytes)

	// Convert hash to int64 seed
	hash := hasher.Sum(nil)
	seed := int64(binary.LittleEndian.Uint64(hash[:8])) // #nosec G115 -- hash conversion is safe
	return seed, nil
}

// CalculateDailySeed generates a deterministic seed from the calendar date.
// The date is taken in UTC so every viewer sees the same layout on a given day.
func CalculateDailySeed(now time.Time) int64 {
	hasher := sha256.New()
	hasher.Write([]byte(now.UTC().Format("2006-01-02")))
	hash := hasher.Sum(nil)
	return int64(binary.LittleEndian.Uint64(hash[:8])) // #nosec G115 -- hash conversion is safe
}

// CalculateSourceSeed generates a deterministic seed from a provider source
// identifier (a file path or URL). Paths are resolved to absolute form so the
// same file produces the same seed regardless of working directory.
func CalculateSourceSeed(source string) (int64, error) {
	if source == "" {
		return 0, fmt.Errorf("source cannot be empty")
	}

	// Resolve to absolute path
	absPath, err := filepath.Abs(source)
	if err != nil {
		// If we can't resolve absolute path, use the source as-is
		absPath = source
	}

	// For URLs, just use the URL as-is
	if isURL(source) {
		absPath = source
	}

	hasher := sha256.New()
	hasher.Write([]byte(absPath))
	hash := hasher.Sum(nil)
	seed := int64(binary.LittleEndian.Uint64(hash[:8])) // #nosec G115 -- hash conversion is safe
	return seed, nil
}

// GenerateRandomSeed generates a non-deterministic random seed.
func GenerateRandomSeed() int64 {
	// #nosec G404 -- Random seed generation is intentionally non-deterministic
	return time.Now().UnixNano() + int64(rand.Intn(1000000))
}

// isURL checks if a path is an HTTP/HTTPS URL.
func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// ValidModes returns a list of valid seed modes.
func ValidModes() []Mode {
	return []Mode{ModeWeather, ModeDaily, ModeManual, ModeRandom}
}

// ParseMode converts a string to a Mode.
// Returns an error if the string is not a valid mode.
func ParseMode(s string) (Mode, error) {
	mode := Mode(s)
	if slices.Contains(ValidModes(), mode) {
		return mode, nil
	}
	return "", fmt.Errorf("invalid seed mode: %s (valid: weather, daily, manual, random)", s)
}
