// Package theme defines the named visual themes consumed by every geometry
// builder: colours, material parameters, light definitions and particle
// palettes. Two canonical themes exist, light and dark; they are plain data
// and are never mutated after construction.
package theme

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/jmylchreest/atrium/internal/scene"
)

// LightDef describes one scene light.
type LightDef struct {
	Color     scene.Color
	Intensity float32
}

// MaterialDef describes a surface material.
type MaterialDef struct {
	Color     scene.Color
	Roughness float32
	Metalness float32
	Opacity   float32
}

// ParticleDef describes the ambient particle field.
type ParticleDef struct {
	Count    int
	Palette  []scene.Color
	Opacity  float32
	Additive bool
}

// Lights holds the five fixed light definitions of the gallery.
type Lights struct {
	Ambient    LightDef
	Sun        LightDef
	Accent     LightDef // central point light
	StageLeft  LightDef // spot
	StageRight LightDef // spot
}

// Config is one complete immutable theme.
type Config struct {
	Name       string
	Background scene.Color
	Fog        scene.Color

	Platform MaterialDef

	RimColor   scene.Color
	RimOpacity float32

	GridPrimary   scene.Color
	GridSecondary scene.Color
	GridOpacity   float32

	Lights    Lights
	Particles ParticleDef

	LoadingPrimary   scene.Color
	LoadingSecondary scene.Color
}

// Light is the daytime theme.
var Light = Config{
	Name:       "light",
	Background: hex("#bfe3f5"),
	Fog:        hex("#d8ecf7"),
	Platform: MaterialDef{
		Color:     hex("#e8ecf2"),
		Roughness: 0.55,
		Metalness: 0.25,
		Opacity:   1,
	},
	RimColor:      hex("#58b8d6"),
	RimOpacity:    0.65,
	GridPrimary:   hex("#7fd4e8"),
	GridSecondary: hex("#b8e8f4"),
	GridOpacity:   0.35,
	Lights: Lights{
		Ambient:    LightDef{Color: hex("#ffffff"), Intensity: 0.6},
		Sun:        LightDef{Color: hex("#fff4d6"), Intensity: 1.1},
		Accent:     LightDef{Color: hex("#8fd8ff"), Intensity: 0.8},
		StageLeft:  LightDef{Color: hex("#cfeeff"), Intensity: 0.7},
		StageRight: LightDef{Color: hex("#ffe9c9"), Intensity: 0.7},
	},
	Particles: ParticleDef{
		Count: 180,
		Palette: []scene.Color{
			hex("#ffffff"), hex("#dff3ff"), hex("#ffeec9"),
		},
		Opacity:  0.45,
		Additive: true,
	},
	LoadingPrimary:   hex("#3ba7cc"),
	LoadingSecondary: hex("#dff3ff"),
}

// Dark is the nighttime theme.
var Dark = Config{
	Name:       "dark",
	Background: hex("#0a0e1a"),
	Fog:        hex("#121a2e"),
	Platform: MaterialDef{
		Color:     hex("#1b2440"),
		Roughness: 0.4,
		Metalness: 0.55,
		Opacity:   1,
	},
	RimColor:      hex("#35e0d6"),
	RimOpacity:    0.8,
	GridPrimary:   hex("#1ec8ff"),
	GridSecondary: hex("#0f6a8a"),
	GridOpacity:   0.45,
	Lights: Lights{
		Ambient:    LightDef{Color: hex("#2a3558"), Intensity: 0.35},
		Sun:        LightDef{Color: hex("#9db8ff"), Intensity: 0.7},
		Accent:     LightDef{Color: hex("#35e0d6"), Intensity: 1.1},
		StageLeft:  LightDef{Color: hex("#7a5cff"), Intensity: 0.9},
		StageRight: LightDef{Color: hex("#ff5ca8"), Intensity: 0.9},
	},
	Particles: ParticleDef{
		Count: 260,
		Palette: []scene.Color{
			hex("#35e0d6"), hex("#7a5cff"), hex("#1ec8ff"), hex("#ff5ca8"),
		},
		Opacity:  0.6,
		Additive: true,
	},
	LoadingPrimary:   hex("#35e0d6"),
	LoadingSecondary: hex("#1b2440"),
}

// ByName returns the theme with the given name ("light" or "dark").
func ByName(name string) (Config, error) {
	switch name {
	case "light":
		return Light, nil
	case "dark":
		return Dark, nil
	default:
		return Config{}, fmt.Errorf("unknown theme: %s (available: light, dark)", name)
	}
}

// Names lists the available theme names.
func Names() []string {
	return []string{"light", "dark"}
}

// hex parses a colour literal at package init; the literals above are fixed.
func hex(s string) scene.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("theme: bad colour literal %q: %v", s, err))
	}
	return c
}
