package entity

import "math"

// Kind tags the visual shape an Entity stands for.
type Kind uint8

const (
	KindBar Kind = iota
	KindOrb
	KindParticle
	KindTextCopy
	KindWaveLine
	KindRadialBar
	KindSpiralPoint
)

var kindNames = [...]string{
	KindBar:         "bar",
	KindOrb:         "orb",
	KindParticle:    "particle",
	KindTextCopy:    "text",
	KindWaveLine:    "wave",
	KindRadialBar:   "radial",
	KindSpiralPoint: "spiral",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Canvas minimums substituted for degenerate dimensions.
const (
	MinWidth  = 100.0
	MinHeight = 60.0
)

// Color is an 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

// Point is a vertex of a WaveLine polyline.
type Point struct {
	X, Y float64
}

// Entity is the render-facing state of a single visual element.
//
// X,Y is the top-left corner of the bounding box, except for KindRadialBar
// where it is the base the bar rotates around. Rotation is in degrees.
type Entity struct {
	Kind     Kind
	X, Y     float64
	W, H     float64
	Opacity  float64
	Color    Color
	Rotation float64

	// StrokeWidth and Points are only set for KindWaveLine.
	StrokeWidth float64
	Points      []Point

	// Text, FontSize and FontWeight are only set for KindTextCopy.
	Text       string
	FontSize   float64
	FontWeight int
}

// Size is a canvas size in pixels.
type Size struct {
	W, H float64
}

// Normalize substitutes the documented minimums for undersized or
// non-finite dimensions so that placement math never divides by zero.
func (s Size) Normalize() Size {
	if !(s.W >= MinWidth) || math.IsInf(s.W, 0) {
		s.W = MinWidth
	}
	if !(s.H >= MinHeight) || math.IsInf(s.H, 0) {
		s.H = MinHeight
	}
	return s
}

// Center returns the canvas midpoint.
func (s Size) Center() (float64, float64) {
	return s.W / 2, s.H / 2
}

// MinSide returns the shorter canvas dimension.
func (s Size) MinSide() float64 {
	return math.Min(s.W, s.H)
}

// Frame is the per-tick snapshot handed to presenters. Entities is reused on
// the next tick; presenters must copy what they need before returning.
type Frame struct {
	Tick      uint64
	Preset    int
	Name      string
	Phase     float64
	Amplitude float64
	Canvas    Size
	Entities  []Entity
}

// Clone returns a frame that owns its entity and point storage.
func (f Frame) Clone() Frame {
	out := f
	out.Entities = make([]Entity, len(f.Entities))
	copy(out.Entities, f.Entities)
	for i := range out.Entities {
		if pts := out.Entities[i].Points; pts != nil {
			cp := make([]Point, len(pts))
			copy(cp, pts)
			out.Entities[i].Points = cp
		}
	}
	return out
}

// Tip returns the far end of a RadialBar: H pixels from its base along
// Rotation.
func (e Entity) Tip() (float64, float64) {
	s, c := math.Sincos(e.Rotation * math.Pi / 180)
	return e.X + c*e.H, e.Y + s*e.H
}
