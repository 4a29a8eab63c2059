package weather

import (
	"fmt"
	"math"
	"time"

	"github.com/jmylchreest/atrium/internal/market"
)

// DeriveMarket maps a market snapshot to a full parameter set using the
// rule table on weighted average 24h change and cross-asset volatility.
// Volatility dominates: an erratic market reads foggy and mysterious
// whatever its direction.
func DeriveMarket(s *market.Snapshot, now time.Time) Params {
	s.Normalize()
	agg := s.Aggregated
	change := agg.AverageChange
	vol := agg.Volatility

	var p Params
	switch {
	case vol > 8:
		p = foggyParams(change, vol)
	case change > 5:
		p = sunnyParams(change, vol)
	case change >= 0:
		p = cloudyParams(change, vol)
	case change >= -5:
		p = rainyParams(change, vol)
	default:
		p = stormyParams(change, vol)
	}

	p.EffectIntensity = clamp(vol/10+math.Abs(change)/20, 0.2, 1)
	p.FishCount = fishCountFromVolume(s.TotalVolume24h())
	p.FloatingOrbCount = orbCountFromTrending(agg.TrendingStrength)
	p.EnergyBeamIntensity = math.Min(1, math.Abs(change)/10)

	applyExtremes(&p, change, vol)

	p.Reasoning = fmt.Sprintf(
		"avg change %+.2f%%, volatility %.2f, volume %.1fB -> %s/%s",
		change, vol, s.TotalVolume24h()/1e9, p.WeatherType, p.Mood,
	)
	p.Timestamp = now
	p.Normalize()
	return p
}

// Derive runs the full pipeline: market rules followed by the time-of-day
// override layer for the hour of now.
func Derive(s *market.Snapshot, now time.Time) Params {
	p := DeriveMarket(s, now)
	return ApplyTimeOverrides(p, now.Hour())
}

func sunnyParams(change, vol float64) Params {
	return Params{
		SkyColor:          "#87ceeb",
		FogDensity:        0.05,
		FogColor:          "#cfeaff",
		SunIntensity:      1.4,
		SunColor:          "#fff2cc",
		AmbientIntensity:  0.7,
		WeatherType:       Sunny,
		ParticleIntensity: 0.1,
		WindSpeed:         2,
		CloudSpeed:        1,
		Mood:              Energetic,
		WaterEffect:       WaterRipples,
		WaterColor:        "#2a9fd8",
		IslandState:       IslandNormal,
		AmbientEffects:    []AmbientEffect{AmbientBirds, AmbientSparkles},
	}
}

func cloudyParams(change, vol float64) Params {
	return Params{
		SkyColor:          "#9fb4c8",
		FogDensity:        0.15,
		FogColor:          "#b8c6d4",
		SunIntensity:      0.8,
		SunColor:          "#e8eef4",
		AmbientIntensity:  0.55,
		WeatherType:       Cloudy,
		ParticleIntensity: 0.1,
		WindSpeed:         3,
		CloudSpeed:        1.5,
		Mood:              Calm,
		WaterEffect:       WaterCalm,
		WaterColor:        "#3a7a9a",
		IslandState:       IslandNormal,
		AmbientEffects:    []AmbientEffect{AmbientBirds},
	}
}

func rainyParams(change, vol float64) Params {
	return Params{
		SkyColor:          "#5a6a7a",
		FogDensity:        0.3,
		FogColor:          "#6a7a88",
		SunIntensity:      0.45,
		SunColor:          "#aab8c4",
		AmbientIntensity:  0.4,
		WeatherType:       Rainy,
		ParticleIntensity: 0.7,
		WindSpeed:         5,
		CloudSpeed:        2.5,
		Mood:              Melancholic,
		WaterEffect:       WaterWaves,
		WaterColor:        "#28506a",
		IslandState:       IslandNormal,
	}
}

func stormyParams(change, vol float64) Params {
	return Params{
		SkyColor:          "#2a3038",
		FogDensity:        0.45,
		FogColor:          "#3a4048",
		SunIntensity:      0.3,
		SunColor:          "#8890a0",
		AmbientIntensity:  0.3,
		WeatherType:       Stormy,
		ParticleIntensity: 1,
		WindSpeed:         8,
		CloudSpeed:        4,
		Mood:              Chaotic,
		WaterEffect:       WaterTurbulent,
		WaterColor:        "#1a3448",
		IslandState:       IslandNormal,
		SpecialEvents:     []Event{EventLightning},
	}
}

func foggyParams(change, vol float64) Params {
	return Params{
		SkyColor:          "#6a7088",
		FogDensity:        0.7,
		FogColor:          "#8088a0",
		SunIntensity:      0.5,
		SunColor:          "#b8bcd0",
		AmbientIntensity:  0.45,
		WeatherType:       Foggy,
		ParticleIntensity: 0.3,
		WindSpeed:         1,
		CloudSpeed:        0.5,
		Mood:              Mysterious,
		WaterEffect:       WaterCalm,
		WaterColor:        "#3a4a66",
		IslandState:       IslandNormal,
		AmbientEffects:    []AmbientEffect{AmbientFireflies},
		SpecialEvents:     []Event{EventShootingStar},
	}
}

func snowyParams(change, vol float64) Params {
	return Params{
		SkyColor:          "#c8d8e8",
		FogDensity:        0.25,
		FogColor:          "#dce8f2",
		SunIntensity:      0.6,
		SunColor:          "#e8f2ff",
		AmbientIntensity:  0.6,
		WeatherType:       Snowy,
		ParticleIntensity: 0.8,
		WindSpeed:         1.5,
		CloudSpeed:        0.8,
		Mood:              Calm,
		WaterEffect:       WaterFrozen,
		WaterColor:        "#9fd0e8",
		IslandState:       IslandFrozen,
		AmbientEffects:    []AmbientEffect{AmbientSnowfall},
	}
}

// applyExtremes layers set-pieces and island states for outsized moves on
// top of the base band.
func applyExtremes(p *Params, change, vol float64) {
	switch {
	case change > 12:
		p.SpecialEvents = appendEvent(p.SpecialEvents, EventFireRing, EventShootingStar)
		p.IslandState = IslandGlowing
	case change > 8:
		p.SpecialEvents = appendEvent(p.SpecialEvents, EventAurora)
		p.IslandState = IslandGlowing
	case change < -12:
		p.SpecialEvents = appendEvent(p.SpecialEvents, EventMeteorShower, EventFireball)
		p.IslandState = IslandBurning
		p.AmbientEffects = appendAmbient(p.AmbientEffects, AmbientEmbers)
	case change < -8:
		p.IslandState = IslandSmoking
		p.AmbientEffects = appendAmbient(p.AmbientEffects, AmbientEmbers)
	}
	if vol > 12 && p.IslandState == IslandNormal {
		p.IslandState = IslandSmoking
	}
}

// fishCountFromVolume sizes the fish school from aggregate 24h volume:
// one fish per two billion, capped at 100.
func fishCountFromVolume(totalVolume float64) int {
	n := int(totalVolume / 1e9 / 2)
	if n < 0 {
		n = 0
	}
	if n > 100 {
		n = 100
	}
	return n
}

// orbCountFromTrending sizes the floating-orb pool from trending strength,
// clamped to [5, 30].
func orbCountFromTrending(trending float64) int {
	n := int(math.Round(5 + trending*2.5))
	if n < 5 {
		n = 5
	}
	if n > 30 {
		n = 30
	}
	return n
}

func appendEvent(events []Event, add ...Event) []Event {
	for _, e := range add {
		present := false
		for _, have := range events {
			if have == e {
				present = true
				break
			}
		}
		if !present {
			events = append(events, e)
		}
	}
	return events
}

func appendAmbient(effects []AmbientEffect, add ...AmbientEffect) []AmbientEffect {
	for _, e := range add {
		present := false
		for _, have := range effects {
			if have == e {
				present = true
				break
			}
		}
		if !present {
			effects = append(effects, e)
		}
	}
	return effects
}
