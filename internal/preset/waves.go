package preset

import (
	"math"
	"math/rand"

	"github.com/guidoenr/pulsar/internal/entity"
)

const (
	waveLayers = 50
	wavePoints = 64
)

func layoutWaveLines(c entity.Size, rng *rand.Rand) *Store {
	st := &Store{
		Entities: make([]entity.Entity, waveLayers),
		Waves:    make([]WaveState, waveLayers),
	}
	_, midY := c.Center()
	step := c.W / (wavePoints - 1)
	for i := range st.Waves {
		pts := make([]entity.Point, wavePoints)
		for k := range pts {
			pts[k] = entity.Point{X: float64(k) * step, Y: midY}
		}
		st.Waves[i] = WaveState{Layer: i, Points: pts}
		st.Entities[i] = entity.Entity{
			Kind:        entity.KindWaveLine,
			W:           c.W,
			H:           c.H,
			Opacity:     0.3,
			StrokeWidth: 1.5,
			Color:       waveColor(i, 0),
			Points:      pts,
		}
	}
	return st
}

func updateWaveLines(st *Store, phase, a float64, c entity.Size, rng *rand.Rand) {
	_, midY := c.Center()
	step := c.W / (wavePoints - 1)
	opacity := entity.Clamp01(0.3 + 0.7*a)
	stroke := 1.5 + 3*a
	for i := range st.Waves {
		w := &st.Waves[i]
		layer := float64(w.Layer)
		layerAmp := 20 + 5*layer
		speedMul := 0.5 + 0.1*layer
		for k := range w.Points {
			x := float64(k)
			y := midY +
				math.Sin(x*0.2+phase*speedMul+layer)*layerAmp*a +
				math.Cos(phase*0.1+x*0.3)*10*a +
				(rng.Float64()-0.5)*2*a
			w.Points[k] = entity.Point{X: x * step, Y: entity.Clamp(y, 0, c.H)}
		}

		e := &st.Entities[i]
		e.W, e.H = c.W, c.H
		e.Points = w.Points
		e.Opacity = opacity
		e.StrokeWidth = stroke
		e.Color = waveColor(w.Layer, phase)
	}
}

func waveColor(layer int, phase float64) entity.Color {
	l := float64(layer)
	return entity.Color{
		R: entity.Channel(128 + 127*math.Sin(phase+l*0.2)),
		G: entity.Channel(128 + 127*math.Cos(phase*0.7+l*0.2)),
		B: entity.Channel(128 + 127*math.Sin(phase*0.5+l*0.3+2)),
	}
}
