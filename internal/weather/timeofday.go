package weather

// Time-of-day bands. Each fixes sun intensity, ambient intensity, sun
// colour and sky colour for its hours.
type timeBand struct {
	sunIntensity     float64
	ambientIntensity float64
	sunColor         string
	skyColor         string
}

var (
	bandDeepNight = timeBand{0.15, 0.25, "#223148", "#0a0e1a"}
	bandDawn      = timeBand{0.6, 0.45, "#ffb36b", "#e8956b"}
	bandDay       = timeBand{1.2, 0.65, "#fff4d6", "#87ceeb"}
	bandDusk      = timeBand{0.7, 0.4, "#ff8c5a", "#3a2b5e"}
)

// bandForHour selects the circadian band for an hour of day (0-23).
func bandForHour(hour int) timeBand {
	switch {
	case hour >= 22 || hour < 5:
		return bandDeepNight
	case hour < 8:
		return bandDawn
	case hour < 17:
		return bandDay
	default:
		return bandDusk
	}
}

// ApplyTimeOverrides blends circadian lighting into market-derived params.
// Adverse weather wins: for rainy, stormy and foggy conditions the
// market-derived sky and lighting are returned untouched, whatever the
// hour.
func ApplyTimeOverrides(p Params, hour int) Params {
	switch p.WeatherType {
	case Rainy, Stormy, Foggy:
		return p
	}

	band := bandForHour(hour)
	p.SunIntensity = band.sunIntensity
	p.AmbientIntensity = band.ambientIntensity
	p.SunColor = band.sunColor
	p.SkyColor = band.skyColor
	return p
}

// IsNightHour reports whether the hour falls in the deep-night band. The
// orchestrator uses it to pick day or night accents on persistent objects.
func IsNightHour(hour int) bool {
	return hour >= 22 || hour < 5
}
