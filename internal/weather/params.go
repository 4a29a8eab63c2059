// Package weather defines the full visual-state descriptor driving the
// gallery scene (sky, lighting, particles, water, special effects, island
// state) and the pure pipeline deriving it from market data with
// time-of-day overrides.
package weather

import (
	"slices"
	"time"
)

// Condition is the coarse weather category.
type Condition string

const (
	Sunny  Condition = "sunny"
	Cloudy Condition = "cloudy"
	Rainy  Condition = "rainy"
	Stormy Condition = "stormy"
	Foggy  Condition = "foggy"
	Snowy  Condition = "snowy"
)

// Mood scales light intensity and animation speed multipliers.
type Mood string

const (
	Calm        Mood = "calm"
	Energetic   Mood = "energetic"
	Melancholic Mood = "melancholic"
	Mysterious  Mood = "mysterious"
	Chaotic     Mood = "chaotic"
)

// WaterState selects the water surface's animated state.
type WaterState string

const (
	WaterCalm      WaterState = "calm"
	WaterRipples   WaterState = "ripples"
	WaterWaves     WaterState = "waves"
	WaterTurbulent WaterState = "turbulent"
	WaterFrozen    WaterState = "frozen"
)

// IslandState is the mutually exclusive visual state of the base platform.
type IslandState string

const (
	IslandNormal  IslandState = "normal"
	IslandGlowing IslandState = "glowing"
	IslandSmoking IslandState = "smoking"
	IslandFrozen  IslandState = "frozen"
	IslandBurning IslandState = "burning"
)

// Event is a heavyweight special effect set-piece.
type Event string

const (
	EventMeteorShower Event = "meteor_shower"
	EventShootingStar Event = "shooting_star"
	EventFireball     Event = "fireball"
	EventFireRing     Event = "fire_ring"
	EventAurora       Event = "aurora"
	EventLightning    Event = "lightning"
	EventNone         Event = "none"
)

// AmbientEffect is a lightweight, possibly-concurrent decoration.
type AmbientEffect string

const (
	AmbientBirds     AmbientEffect = "birds"
	AmbientEmbers    AmbientEffect = "embers"
	AmbientSparkles  AmbientEffect = "sparkles"
	AmbientSnowfall  AmbientEffect = "snowfall"
	AmbientFireflies AmbientEffect = "fireflies"
)

// Params is the complete weather/visual-state descriptor. It is always
// fully specified: consumers replace their entire weather-dependent state
// from it, never patch a subset. The JSON shape is shared with the HTTP
// API.
type Params struct {
	SkyColor   string  `json:"skyColor"`
	FogDensity float64 `json:"fogDensity"`
	FogColor   string  `json:"fogColor"`

	SunIntensity     float64 `json:"sunIntensity"`
	SunColor         string  `json:"sunColor"`
	AmbientIntensity float64 `json:"ambientIntensity"`

	WeatherType       Condition `json:"weatherType"`
	ParticleIntensity float64   `json:"particleIntensity"`

	WindSpeed  float64 `json:"windSpeed"`
	CloudSpeed float64 `json:"cloudSpeed"`

	Mood Mood `json:"mood"`

	WaterEffect WaterState `json:"waterEffect"`
	WaterColor  string     `json:"waterColor"`

	SpecialEvents  []Event         `json:"specialEvents"`
	IslandState    IslandState     `json:"islandState"`
	AmbientEffects []AmbientEffect `json:"ambientEffects"`

	EffectIntensity float64 `json:"effectIntensity"`

	FishCount           int     `json:"fishCount"`
	FloatingOrbCount    int     `json:"floatingOrbCount"`
	EnergyBeamIntensity float64 `json:"energyBeamIntensity"`

	Reasoning string    `json:"reasoning,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HasEvent reports whether the event set names e.
func (p *Params) HasEvent(e Event) bool {
	return slices.Contains(p.SpecialEvents, e)
}

// HasAmbient reports whether the ambient set names e.
func (p *Params) HasAmbient(e AmbientEffect) bool {
	return slices.Contains(p.AmbientEffects, e)
}

// Normalize clamps every numeric field to its documented range and fills
// empty enum fields with safe defaults. Providers run it over anything
// produced outside this package (remote JSON, model output) so the
// orchestrator always sees a fully specified value.
func (p *Params) Normalize() {
	p.FogDensity = clamp(p.FogDensity, 0, 1)
	p.SunIntensity = clamp(p.SunIntensity, 0, 2)
	p.AmbientIntensity = clamp(p.AmbientIntensity, 0, 1)
	p.ParticleIntensity = clamp(p.ParticleIntensity, 0, 1)
	p.WindSpeed = clamp(p.WindSpeed, 0, 10)
	p.CloudSpeed = clamp(p.CloudSpeed, 0, 5)
	p.EffectIntensity = clamp(p.EffectIntensity, 0, 1)
	p.EnergyBeamIntensity = clamp(p.EnergyBeamIntensity, 0, 1)

	if p.FishCount < 0 {
		p.FishCount = 0
	}
	if p.FishCount > 100 {
		p.FishCount = 100
	}
	if p.FloatingOrbCount < 5 {
		p.FloatingOrbCount = 5
	}
	if p.FloatingOrbCount > 30 {
		p.FloatingOrbCount = 30
	}

	if p.WeatherType == "" {
		p.WeatherType = Cloudy
	}
	if p.Mood == "" {
		p.Mood = Calm
	}
	if p.WaterEffect == "" {
		p.WaterEffect = WaterCalm
	}
	if p.IslandState == "" {
		p.IslandState = IslandNormal
	}
	if p.SkyColor == "" {
		p.SkyColor = "#87ceeb"
	}
	if p.FogColor == "" {
		p.FogColor = p.SkyColor
	}
	if p.SunColor == "" {
		p.SunColor = "#ffffff"
	}
	if p.WaterColor == "" {
		p.WaterColor = "#1a6b8a"
	}

	// "none" is a placeholder, not an effect.
	events := p.SpecialEvents[:0]
	for _, e := range p.SpecialEvents {
		if e != EventNone && e != "" {
			events = append(events, e)
		}
	}
	p.SpecialEvents = events
}

// MoodLightFactor returns the light-intensity multiplier for a mood.
func MoodLightFactor(m Mood) float64 {
	switch m {
	case Energetic:
		return 1.2
	case Chaotic:
		return 1.3
	case Melancholic:
		return 0.75
	case Mysterious:
		return 0.85
	default:
		return 1
	}
}

// MoodSpeedFactor returns the animation-speed multiplier for a mood.
func MoodSpeedFactor(m Mood) float64 {
	switch m {
	case Energetic:
		return 1.5
	case Chaotic:
		return 2
	case Melancholic:
		return 0.6
	case Mysterious:
		return 0.8
	default:
		return 1
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
