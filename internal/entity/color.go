package entity

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSV builds a Color from hue in degrees and saturation/value in [0,1].
func HSV(h, s, v float64) Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := colorful.Hsv(h, Clamp01(s), Clamp01(v)).Clamped()
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}
}

// Boost adds delta to every channel, saturating at 255.
func (c Color) Boost(delta float64) Color {
	return Color{
		R: Channel(float64(c.R) + delta),
		G: Channel(float64(c.G) + delta),
		B: Channel(float64(c.B) + delta),
	}
}

// Scale multiplies every channel by k, saturating at 255.
func (c Color) Scale(k float64) Color {
	return Color{
		R: Channel(float64(c.R) * k),
		G: Channel(float64(c.G) * k),
		B: Channel(float64(c.B) * k),
	}
}

// Channel converts a float channel value to a byte, clamped to [0,255].
func Channel(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// Clamp01 bounds v to [0,1]; NaN maps to 0.
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Clamp bounds v to [lo,hi]; NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if !(v > lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}
