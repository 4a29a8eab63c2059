// Package provider provides the public API for atrium weather providers.
package provider

import "time"

// DeriveOptions holds options for provider derivation.
type DeriveOptions struct {
	Verbose      bool           `json:"verbose"`
	Now          time.Time      `json:"now,omitempty"`
	ProviderArgs map[string]any `json:"provider_args,omitempty"`
}

// WeatherData is the weather parameter set a provider returns.
// The JSON shape matches the host's weather parameter type, so a provider
// can also emit it directly over json-stdio.
type WeatherData struct {
	SkyColor   string  `json:"skyColor"`
	FogDensity float64 `json:"fogDensity"`
	FogColor   string  `json:"fogColor"`

	SunIntensity     float64 `json:"sunIntensity"`
	SunColor         string  `json:"sunColor"`
	AmbientIntensity float64 `json:"ambientIntensity"`

	WeatherType       string  `json:"weatherType"`
	ParticleIntensity float64 `json:"particleIntensity"`

	WindSpeed  float64 `json:"windSpeed"`
	CloudSpeed float64 `json:"cloudSpeed"`

	Mood string `json:"mood"`

	WaterEffect string `json:"waterEffect"`
	WaterColor  string `json:"waterColor"`

	SpecialEvents  []string `json:"specialEvents"`
	IslandState    string   `json:"islandState"`
	AmbientEffects []string `json:"ambientEffects"`

	EffectIntensity float64 `json:"effectIntensity"`

	FishCount           int     `json:"fishCount"`
	FloatingOrbCount    int     `json:"floatingOrbCount"`
	EnergyBeamIntensity float64 `json:"energyBeamIntensity"`

	Reasoning string    `json:"reasoning,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
