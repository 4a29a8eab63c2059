package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/term"

	"github.com/jmylchreest/atrium/internal/weather"
)

// ANSI escape codes for terminal colour swatches.
const (
	ansiReset    = "\033[0m"
	ansiBgPrefix = "\033[48;2;"
	ansiSuffix   = "m"
	swatchWidth  = 8
)

// stderrIsTerminal reports whether stderr is attached to a terminal.
// Swatches degrade to plain text when it is not.
func stderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// colourSwatch returns a solid ANSI background block for a hex colour.
// Uses background colour with spaces for a solid block. Falls back to a
// plain placeholder when colour output is off or the hex fails to parse.
func colourSwatch(hex string, colour bool) string {
	c, err := colorful.Hex(hex)
	if !colour || err != nil {
		return strings.Repeat("·", swatchWidth)
	}

	r, g, b := c.RGB255()
	bgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, r, g, b, ansiSuffix)
	return bgColour + strings.Repeat(" ", swatchWidth) + ansiReset
}

// weatherPreviewString renders a swatch-and-value summary of a parameter
// set for terminal display.
func weatherPreviewString(p weather.Params) string {
	colour := stderrIsTerminal()

	var b strings.Builder
	fmt.Fprintf(&b, "%s weather, %s mood\n\n", p.WeatherType, p.Mood)

	swatchLine(&b, "sky", p.SkyColor, colour)
	swatchLine(&b, "fog", p.FogColor, colour)
	swatchLine(&b, "sun", p.SunColor, colour)
	swatchLine(&b, "water", p.WaterColor, colour)

	fmt.Fprintf(&b, "\nsun %.2f  ambient %.2f  fog density %.4f\n", p.SunIntensity, p.AmbientIntensity, p.FogDensity)
	fmt.Fprintf(&b, "wind %.2f  clouds %.2f  particles %.2f\n", p.WindSpeed, p.CloudSpeed, p.ParticleIntensity)
	fmt.Fprintf(&b, "water %s  island %s  effects %.2f\n", p.WaterEffect, p.IslandState, p.EffectIntensity)
	fmt.Fprintf(&b, "fish %d  orbs %d  beams %.2f\n", p.FishCount, p.FloatingOrbCount, p.EnergyBeamIntensity)

	if len(p.SpecialEvents) > 0 {
		names := make([]string, len(p.SpecialEvents))
		for i, e := range p.SpecialEvents {
			names[i] = string(e)
		}
		fmt.Fprintf(&b, "events: %s\n", strings.Join(names, ", "))
	}
	if len(p.AmbientEffects) > 0 {
		names := make([]string, len(p.AmbientEffects))
		for i, e := range p.AmbientEffects {
			names[i] = string(e)
		}
		fmt.Fprintf(&b, "ambient: %s\n", strings.Join(names, ", "))
	}
	if p.Reasoning != "" {
		fmt.Fprintf(&b, "reasoning: %s\n", p.Reasoning)
	}

	return b.String()
}

// swatchLine writes a single colour row with its label and hex value.
func swatchLine(b *strings.Builder, label, hex string, colour bool) {
	fmt.Fprintf(b, "%s  %-8s %s\n", colourSwatch(hex, colour), label, hex)
}
