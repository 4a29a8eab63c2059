// random - Random Weather Generator (Atrium Weather Provider)
//
// Generates plausible random weather parameter sets with configurable seed.
// Uses the go-plugin RPC protocol for better performance and process isolation.
//
// Features:
// - Random but internally consistent weather (colours follow the condition)
// - Deterministic generation with seed support for reproducibility
// - Optional forced condition via provider args
// - Layout seed hint so scene layout follows the weather seed
//
// Build:
//   go build -o random
//
// Usage:
//   atrium providers add ./random
//   atrium serve --provider random
//
// Provider Args:
//   seed: Random seed for reproducible generation
//   condition: Force a weather condition (sunny, cloudy, rainy, stormy, foggy, snowy)
//
// Author: Atrium Contributors
// License: MIT

package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	mathrand "math/rand/v2"
	"os"
	"time"

	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/atrium/pkg/provider"
)

// conditionBaseline holds the anchor values for one weather condition.
// Derive jitters around these so repeated runs stay recognisable but not
// identical.
type conditionBaseline struct {
	skyColor     string
	fogColor     string
	sunColor     string
	waterColor   string
	sunIntensity float64
	fogDensity   float64
	particles    float64
	windSpeed    float64
	waterEffect  string
	moods        []string
}

var baselines = map[string]conditionBaseline{
	"sunny": {
		skyColor: "#87ceeb", fogColor: "#e0f6ff", sunColor: "#ffd700", waterColor: "#4a90d9",
		sunIntensity: 1.0, fogDensity: 0.002, particles: 0, windSpeed: 0.3,
		waterEffect: "calm", moods: []string{"calm", "energetic"},
	},
	"cloudy": {
		skyColor: "#b0c4de", fogColor: "#d3d3d3", sunColor: "#f5f5dc", waterColor: "#5f84a2",
		sunIntensity: 0.6, fogDensity: 0.008, particles: 0, windSpeed: 0.5,
		waterEffect: "ripples", moods: []string{"calm", "melancholic"},
	},
	"rainy": {
		skyColor: "#708090", fogColor: "#a9a9a9", sunColor: "#d3d3d3", waterColor: "#3a5f7d",
		sunIntensity: 0.4, fogDensity: 0.015, particles: 0.6, windSpeed: 0.8,
		waterEffect: "waves", moods: []string{"melancholic", "mysterious"},
	},
	"stormy": {
		skyColor: "#2f4f4f", fogColor: "#696969", sunColor: "#808080", waterColor: "#1e3a52",
		sunIntensity: 0.25, fogDensity: 0.02, particles: 0.9, windSpeed: 1.5,
		waterEffect: "turbulent", moods: []string{"chaotic", "mysterious"},
	},
	"foggy": {
		skyColor: "#c0c0c0", fogColor: "#dcdcdc", sunColor: "#fffacd", waterColor: "#7d8e9e",
		sunIntensity: 0.35, fogDensity: 0.04, particles: 0.1, windSpeed: 0.2,
		waterEffect: "calm", moods: []string{"mysterious", "calm"},
	},
	"snowy": {
		skyColor: "#e6e6fa", fogColor: "#f0f8ff", sunColor: "#fffaf0", waterColor: "#a5c8dd",
		sunIntensity: 0.5, fogDensity: 0.012, particles: 0.7, windSpeed: 0.4,
		waterEffect: "frozen", moods: []string{"calm", "melancholic"},
	},
}

// conditionOrder keeps random selection deterministic for a given seed.
var conditionOrder = []string{"sunny", "cloudy", "rainy", "stormy", "foggy", "snowy"}

// RandomProvider implements the provider.WeatherProvider interface.
type RandomProvider struct {
	seed int64
}

// Derive creates a random weather parameter set.
func (p *RandomProvider) Derive(_ context.Context, opts provider.DeriveOptions) (provider.WeatherData, error) {
	seed := uint64(0)
	if seedArg, ok := opts.ProviderArgs["seed"].(float64); ok {
		seed = uint64(seedArg)
	} else {
		// Generate a truly random seed from crypto/rand
		var randomBytes [8]byte
		if _, err := rand.Read(randomBytes[:]); err == nil {
			seed = binary.LittleEndian.Uint64(randomBytes[:])
		}
	}
	p.seed = int64(seed) // #nosec G115 -- hint is an opaque value, wraparound is fine

	var seedArray [32]byte
	binary.LittleEndian.PutUint64(seedArray[:8], seed)
	// #nosec G404 -- Using math/rand intentionally for deterministic weather generation, not cryptography
	rng := mathrand.New(mathrand.NewChaCha8(seedArray))

	condition := conditionOrder[rng.IntN(len(conditionOrder))]
	if forced, ok := opts.ProviderArgs["condition"].(string); ok {
		if _, known := baselines[forced]; !known {
			return provider.WeatherData{}, fmt.Errorf("unknown condition: %s", forced)
		}
		condition = forced
	}
	base := baselines[condition]

	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "Generating %s weather (seed: %d)\n", condition, seed)
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	data := provider.WeatherData{
		SkyColor:          base.skyColor,
		FogColor:          base.fogColor,
		SunColor:          base.sunColor,
		WaterColor:        base.waterColor,
		WeatherType:       condition,
		Mood:              base.moods[rng.IntN(len(base.moods))],
		SunIntensity:      jitter(rng, base.sunIntensity, 0.1),
		AmbientIntensity:  jitter(rng, base.sunIntensity*0.6, 0.05),
		FogDensity:        jitter(rng, base.fogDensity, base.fogDensity*0.25),
		ParticleIntensity: jitter(rng, base.particles, 0.1),
		WindSpeed:         jitter(rng, base.windSpeed, 0.2),
		CloudSpeed:        jitter(rng, base.windSpeed*0.5, 0.1),
		WaterEffect:       base.waterEffect,
		IslandState:       "normal",
		EffectIntensity:   jitter(rng, 0.3, 0.2),
		FishCount:         rng.IntN(9),
		FloatingOrbCount:  rng.IntN(6),
		SpecialEvents:     []string{},
		AmbientEffects:    []string{},
		Reasoning:         fmt.Sprintf("random %s weather, seed %d", condition, seed),
		Timestamp:         now,
	}

	// Occasional set dressing so demos show the effect systems too.
	if condition == "snowy" {
		data.AmbientEffects = append(data.AmbientEffects, "snowfall")
	}
	if condition == "stormy" && rng.IntN(2) == 0 {
		data.SpecialEvents = append(data.SpecialEvents, "lightning")
	}
	if condition == "sunny" && rng.IntN(3) == 0 {
		data.AmbientEffects = append(data.AmbientEffects, "birds")
	}

	return data, nil
}

// GetMetadata returns provider metadata.
func (p *RandomProvider) GetMetadata() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:            "random",
		Type:            "weather",
		Version:         "0.0.1",
		ProtocolVersion: provider.ProtocolVersion,
		Description:     "Generate random but plausible weather parameter sets",
		PluginProtocol:  "go-plugin",
	}
}

// SeedHint returns the weather seed so scene layout can follow it.
func (p *RandomProvider) SeedHint() int64 {
	return p.seed
}

// GetFlagHelp returns help information for provider flags.
func (p *RandomProvider) GetFlagHelp() []provider.FlagHelp {
	return []provider.FlagHelp{
		{
			Name:        "seed",
			Type:        "uint64",
			Default:     "random",
			Description: "Random seed for reproducible generation",
			Required:    false,
		},
		{
			Name:        "condition",
			Type:        "string",
			Default:     "random",
			Description: "Force a weather condition (sunny, cloudy, rainy, stormy, foggy, snowy)",
			Required:    false,
		},
	}
}

// jitter returns base +/- spread, uniformly distributed, floored at zero.
func jitter(rng *mathrand.Rand, base, spread float64) float64 {
	v := base + (rng.Float64()*2-1)*spread
	if v < 0 {
		return 0
	}
	return v
}

func main() {
	// Handle --plugin-info flag
	if len(os.Args) > 1 && os.Args[1] == "--plugin-info" {
		p := &RandomProvider{}
		info := p.GetMetadata()

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(info); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding provider info: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Serve the provider using go-plugin
	goplugin.Serve(&goplugin.ServeConfig{
		HandshakeConfig: provider.Handshake,
		Plugins: map[string]goplugin.Plugin{
			"provider": &provider.WeatherProviderRPC{
				Impl: &RandomProvider{},
			},
		},
	})
}
