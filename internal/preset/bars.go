package preset

import (
	"math/rand"

	"github.com/guidoenr/pulsar/internal/entity"
)

const (
	barCount      = 40
	barRestHeight = 20.0
	barLerp       = 0.2
)

func barsPreset(name string, mirror bool) Preset {
	return Preset{
		Name:      name,
		Increment: 0.05,
		layout: func(c entity.Size, rng *rand.Rand) *Store {
			return layoutBars(c, mirror)
		},
		update: func(st *Store, phase, amp float64, c entity.Size, rng *rand.Rand) {
			updateBars(st, amp, c, rng, mirror)
		},
	}
}

func layoutBars(c entity.Size, mirror bool) *Store {
	n := barCount
	if mirror {
		n *= 2
	}
	st := &Store{
		Entities: make([]entity.Entity, n),
		Bars:     make([]BarState, barCount),
	}
	for i := range st.Bars {
		st.Bars[i] = BarState{
			Height: barRestHeight,
			Base:   entity.HSV(float64(i)*360/barCount, 0.75, 0.6),
		}
		placeBar(&st.Entities[i], i, st.Bars[i].Height, c, false)
		st.Entities[i].Color = st.Bars[i].Base
		st.Entities[i].Opacity = 0.3
		if mirror {
			st.Entities[barCount+i] = st.Entities[i]
			placeBar(&st.Entities[barCount+i], i, st.Bars[i].Height, c, true)
		}
	}
	return st
}

func placeBar(e *entity.Entity, i int, height float64, c entity.Size, top bool) {
	slot := c.W / barCount
	e.Kind = entity.KindBar
	e.W = slot * 0.8
	e.X = float64(i)*slot + slot*0.1
	e.H = height
	if top {
		e.Y = 0
	} else {
		e.Y = c.H - height
	}
}

func updateBars(st *Store, a float64, c entity.Size, rng *rand.Rand, mirror bool) {
	opacity := entity.Clamp01(0.3 + 0.7*a)
	for i := range st.Bars {
		b := &st.Bars[i]
		target := barRestHeight + 200*a*(0.5+rng.Float64())
		b.Height += (target - b.Height) * barLerp
		b.Height = entity.Clamp(b.Height, 0, c.H)

		color := b.Base.Boost(a * 150)
		e := &st.Entities[i]
		placeBar(e, i, b.Height, c, false)
		e.Opacity = opacity
		e.Color = color
		if mirror {
			m := &st.Entities[barCount+i]
			placeBar(m, i, b.Height, c, true)
			m.Opacity = opacity
			m.Color = color
		}
	}
}
