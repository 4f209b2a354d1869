package preset

import (
	"math"
	"math/rand"

	"github.com/guidoenr/pulsar/internal/entity"
)

const (
	radialCount    = 280
	radialBarWidth = 2.0
	radialStep     = 360.0 / radialCount
)

func radialMaxRadius(c entity.Size) float64 {
	return math.Max(10, c.MinSide()/2-20)
}

func layoutRadialBars(c entity.Size, rng *rand.Rand) *Store {
	st := &Store{Entities: make([]entity.Entity, radialCount)}
	cx, cy := c.Center()
	maxR := radialMaxRadius(c)
	for i := range st.Entities {
		st.Entities[i] = entity.Entity{
			Kind:     entity.KindRadialBar,
			X:        cx,
			Y:        cy,
			W:        radialBarWidth,
			H:        maxR * 0.6,
			Opacity:  0.3,
			Rotation: float64(i) * radialStep,
			Color:    radialColor(float64(i)),
		}
	}
	return st
}

func updateRadialBars(st *Store, phase, a float64, c entity.Size, rng *rand.Rand) {
	cx, cy := c.Center()
	maxR := radialMaxRadius(c)
	opacity := entity.Clamp01(0.3 + 0.7*a)
	for i := range st.Entities {
		fi := float64(i)
		length := maxR*0.6 + a*maxR*0.4 + math.Sin(phase+fi*0.3)*maxR*0.1
		e := &st.Entities[i]
		e.X, e.Y = cx, cy
		e.W = radialBarWidth
		e.H = entity.Clamp(length, 0, maxR*1.1)
		e.Rotation = math.Mod(fi*radialStep+phase*10, 360)
		e.Color = radialColor(fi + phase)
		e.Opacity = opacity
	}
}

func radialColor(t float64) entity.Color {
	return entity.Color{
		R: entity.Channel(127.5 + 127.5*math.Sin(t)),
		G: entity.Channel(127.5 + 127.5*math.Cos(t)),
		B: entity.Channel(127.5 + 127.5*math.Sin(t+2)),
	}
}
