package entity

import (
	"math"
	"testing"
)

func TestSizeNormalize(t *testing.T) {
	cases := map[Size]Size{
		{}:                    {MinWidth, MinHeight},
		{-5, -5}:              {MinWidth, MinHeight},
		{800, 600}:            {800, 600},
		{50, 600}:             {MinWidth, 600},
		{800, 10}:             {800, MinHeight},
		{math.Inf(1), 200}:    {MinWidth, 200},
		{200, math.NaN()}:     {200, MinHeight},
		{MinWidth, MinHeight}: {MinWidth, MinHeight},
	}
	for in, want := range cases {
		if got := in.Normalize(); got != want {
			t.Fatalf("Normalize(%v)=%v want=%v", in, got, want)
		}
	}
}

func TestColorBoostSaturates(t *testing.T) {
	c := Color{R: 200, G: 10, B: 0}.Boost(150)
	if c.R != 255 || c.G != 160 || c.B != 150 {
		t.Fatalf("boost=%v", c)
	}
}

func TestChannelBounds(t *testing.T) {
	if Channel(-3) != 0 || Channel(math.NaN()) != 0 || Channel(400) != 255 || Channel(12.7) != 12 {
		t.Fatalf("channel conversion out of bounds")
	}
}

func TestHSVPrimaries(t *testing.T) {
	if c := HSV(0, 1, 1); c != (Color{255, 0, 0}) {
		t.Fatalf("red=%v", c)
	}
	if c := HSV(480, 1, 1); c != (Color{0, 255, 0}) {
		t.Fatalf("wrapped green=%v", c)
	}
	if c := HSV(-120, 1, 1); c != (Color{0, 0, 255}) {
		t.Fatalf("negative hue blue=%v", c)
	}
}

func TestFrameCloneOwnsPoints(t *testing.T) {
	f := Frame{Entities: []Entity{{Kind: KindWaveLine, Points: []Point{{1, 2}}}}}
	c := f.Clone()
	f.Entities[0].Points[0].X = 99
	f.Entities[0].Opacity = 1
	if c.Entities[0].Points[0].X != 1 || c.Entities[0].Opacity != 0 {
		t.Fatalf("clone shares storage with source")
	}
}

func TestColorHex(t *testing.T) {
	if got := (Color{255, 16, 0}).Hex(); got != "#ff1000" {
		t.Fatalf("got=%s want=#ff1000", got)
	}
}

func TestRadialTip(t *testing.T) {
	x, y := Entity{Kind: KindRadialBar, X: 10, Y: 10, H: 5, Rotation: 90}.Tip()
	if math.Abs(x-10) > 1e-9 || math.Abs(y-15) > 1e-9 {
		t.Fatalf("tip=(%f,%f) want=(10,15)", x, y)
	}
}
