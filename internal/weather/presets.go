package weather

import (
	"fmt"
	"time"
)

// Preset returns the canonical parameter set for a named weather condition,
// independent of market data. Presets back the CLI preview path and give
// alternate sources (AI, fixtures) a reference shape for every condition,
// including the snowy/frozen look the market rule table never produces.
func Preset(name string, now time.Time) (Params, error) {
	var p Params
	switch Condition(name) {
	case Sunny:
		p = sunnyParams(6, 2)
	case Cloudy:
		p = cloudyParams(2, 2)
	case Rainy:
		p = rainyParams(-3, 3)
	case Stormy:
		p = stormyParams(-8, 6)
	case Foggy:
		p = foggyParams(0, 9)
	case Snowy:
		p = snowyParams(0, 0.2)
	default:
		return Params{}, fmt.Errorf("unknown weather preset: %s", name)
	}

	p.EffectIntensity = 0.5
	p.FishCount = 20
	p.FloatingOrbCount = 12
	p.EnergyBeamIntensity = 0.4
	p.Reasoning = fmt.Sprintf("preset %s", name)
	p.Timestamp = now
	p.Normalize()
	return p, nil
}

// PresetNames lists the available preset names.
func PresetNames() []string {
	return []string{
		string(Sunny), string(Cloudy), string(Rainy),
		string(Stormy), string(Foggy), string(Snowy),
	}
}
