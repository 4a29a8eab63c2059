package scene

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Color is the colour type used by materials, lights and the scene
// background. It aliases colorful.Color so the full blending/space toolkit
// is available wherever colours are handled.
type Color = colorful.Color

// RGB constructs a colour from 0-1 components.
func RGB(r, g, b float64) Color {
	return colorful.Color{R: r, G: g, B: b}
}

// Grey constructs an achromatic colour of the given brightness.
func Grey(v float64) Color {
	return colorful.Color{R: v, G: v, B: v}
}

// Hex parses a "#rrggbb" colour string, returning fallback when the
// string does not parse.
func Hex(s string, fallback Color) Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	return c
}

// ScaleColor multiplies colour components by s, clamped to [0, 1].
func ScaleColor(c Color, s float64) Color {
	return colorful.Color{
		R: clamp01f64(c.R * s),
		G: clamp01f64(c.G * s),
		B: clamp01f64(c.B * s),
	}
}

func clamp01f64(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
