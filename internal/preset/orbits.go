package preset

import (
	"math"
	"math/rand"

	"github.com/guidoenr/pulsar/internal/entity"
)

const (
	tau = 2 * math.Pi

	circleCount       = 80
	circularWaveCount = 90
	randomCircleCount = 62
	spiralCount       = 100
)

func newOrb(kind entity.Kind, size float64, color entity.Color) entity.Entity {
	return entity.Entity{Kind: kind, W: size, H: size, Opacity: 1, Color: color}
}

// centerOn places e so that its bounding box is centered on (x,y).
func centerOn(e *entity.Entity, x, y, size float64) {
	e.W, e.H = size, size
	e.X = x - size/2
	e.Y = y - size/2
}

// orbOpacity pulses with the orbit angle and gets busier with amplitude.
func orbOpacity(angle, a float64) float64 {
	return entity.Clamp01(0.5 + 0.5*math.Abs(math.Sin(2*angle+5*a)))
}

func layoutCircles(c entity.Size, rng *rand.Rand) *Store {
	st := &Store{
		Entities: make([]entity.Entity, circleCount),
		Orbs:     make([]OrbState, circleCount),
	}
	m := c.MinSide()
	cx, cy := c.Center()
	for i := range st.Orbs {
		dir := 1.0
		if rng.Intn(2) == 0 {
			dir = -1
		}
		o := OrbState{
			Angle:     rng.Float64() * tau,
			Radius:    m * (0.1 + 0.35*rng.Float64()),
			Speed:     0.005 + 0.025*rng.Float64(),
			Direction: dir,
			BaseSize:  5 + 15*rng.Float64(),
		}
		o.BaseRadius = o.Radius
		st.Orbs[i] = o
		st.Entities[i] = newOrb(entity.KindOrb, o.BaseSize, entity.HSV(rng.Float64()*360, 0.7, 1))
		centerOn(&st.Entities[i], cx+math.Cos(o.Angle)*o.Radius, cy+math.Sin(o.Angle)*o.Radius, o.BaseSize)
		st.Entities[i].Opacity = orbOpacity(o.Angle, 0)
	}
	return st
}

func updateCircles(st *Store, phase, a float64, c entity.Size, rng *rand.Rand) {
	cx, cy := c.Center()
	maxSize := c.MinSide()
	for i := range st.Orbs {
		o := &st.Orbs[i]
		o.Angle = math.Mod(o.Angle+o.Speed*o.Direction*(1+2*a), tau)
		size := entity.Clamp(o.BaseSize*(1+1.5*a), 0, maxSize)
		e := &st.Entities[i]
		centerOn(e, cx+math.Cos(o.Angle)*o.Radius, cy+math.Sin(o.Angle)*o.Radius, size)
		e.Opacity = orbOpacity(o.Angle, a)
	}
}

func layoutCircularWave(c entity.Size, rng *rand.Rand) *Store {
	st := &Store{
		Entities: make([]entity.Entity, circularWaveCount),
		Orbs:     make([]OrbState, circularWaveCount),
	}
	cx, cy := c.Center()
	step := math.Max(0.5, (c.MinSide()/2-40)/circularWaveCount)
	for i := range st.Orbs {
		o := OrbState{
			Angle:      rng.Float64() * tau,
			BaseRadius: 20 + float64(i)*step,
			BaseSize:   4 + 6*rng.Float64(),
		}
		o.Radius = o.BaseRadius
		st.Orbs[i] = o
		st.Entities[i] = newOrb(entity.KindOrb, o.BaseSize, entity.HSV(float64(i)*4, 0.8, 1))
		centerOn(&st.Entities[i], cx+math.Cos(o.Angle)*o.Radius, cy+math.Sin(o.Angle)*o.Radius, o.BaseSize)
		st.Entities[i].Opacity = 0.4
	}
	return st
}

func updateCircularWave(st *Store, phase, a float64, c entity.Size, rng *rand.Rand) {
	cx, cy := c.Center()
	maxSize := c.MinSide()
	opacity := entity.Clamp01(0.4 + 0.6*a)
	for i := range st.Orbs {
		o := &st.Orbs[i]
		o.Radius = o.BaseRadius + math.Sin(phase+o.Angle)*20*(0.5+a)
		theta := o.Angle + phase
		size := entity.Clamp(o.BaseSize+8*a, 0, maxSize)
		e := &st.Entities[i]
		centerOn(e, cx+math.Cos(theta)*o.Radius, cy+math.Sin(theta)*o.Radius, size)
		e.Opacity = opacity
	}
}

func layoutRandomizedCircles(c entity.Size, rng *rand.Rand) *Store {
	st := &Store{
		Entities: make([]entity.Entity, randomCircleCount),
		Orbs:     make([]OrbState, randomCircleCount),
	}
	for i := range st.Orbs {
		o := OrbState{
			Angle:    rng.Float64() * tau,
			BaseSize: 5 + 10*rng.Float64(),
		}
		st.Orbs[i] = o
		e := newOrb(entity.KindOrb, o.BaseSize, entity.HSV(rng.Float64()*360, 0.6, 1))
		e.X = rng.Float64() * math.Max(0, c.W-o.BaseSize)
		e.Y = rng.Float64() * math.Max(0, c.H-o.BaseSize)
		e.Opacity = 0.3
		st.Entities[i] = e
	}
	return st
}

func updateRandomizedCircles(st *Store, phase, a float64, c entity.Size, rng *rand.Rand) {
	maxSize := c.MinSide()
	opacity := entity.Clamp01(0.3 + 0.7*a)
	for i := range st.Orbs {
		o := &st.Orbs[i]
		e := &st.Entities[i]
		size := entity.Clamp(o.BaseSize+8*a, 0, maxSize)
		e.W, e.H = size, size
		e.X = entity.Clamp(e.X+math.Cos(phase+o.Angle)*5*a, 0, math.Max(0, c.W-size))
		e.Y = entity.Clamp(e.Y+math.Sin(phase+o.Angle)*5*a, 0, math.Max(0, c.H-size))
		e.Opacity = opacity
	}
}

func layoutSpiral(c entity.Size, rng *rand.Rand) *Store {
	st := &Store{
		Entities: make([]entity.Entity, spiralCount),
		Orbs:     make([]OrbState, spiralCount),
	}
	cx, cy := c.Center()
	limit, lo, hi := spiralBounds(c)
	for i := range st.Orbs {
		o := OrbState{
			Angle:    float64(i) * 0.2,
			Radius:   float64(i) * 2,
			BaseSize: 3 + 5*rng.Float64(),
		}
		if o.Radius > limit {
			o.Radius = lo + rng.Float64()*(hi-lo)
		}
		o.BaseRadius = o.Radius
		st.Orbs[i] = o
		st.Entities[i] = newOrb(entity.KindSpiralPoint, o.BaseSize, entity.HSV(float64(i)*3.6, 0.8, 1))
		centerOn(&st.Entities[i], cx+math.Cos(o.Angle)*o.Radius, cy+math.Sin(o.Angle)*o.Radius, o.BaseSize)
		st.Entities[i].Opacity = orbOpacity(o.Angle, 0)
	}
	return st
}

// spiralBounds returns the radius ceiling and the [lo,hi) range a point is
// thrown back into once it passes the ceiling.
func spiralBounds(c entity.Size) (limit, lo, hi float64) {
	limit = c.MinSide()/2 - 20
	lo, hi = 20, 50
	if hi > limit {
		lo, hi = limit/2, limit
	}
	return limit, lo, hi
}

func updateSpiral(st *Store, phase, a float64, c entity.Size, rng *rand.Rand) {
	cx, cy := c.Center()
	maxSize := c.MinSide()
	limit, lo, hi := spiralBounds(c)
	for i := range st.Orbs {
		o := &st.Orbs[i]
		o.Radius += 0.1 + a
		if o.Radius > limit {
			o.Radius = lo + rng.Float64()*(hi-lo)
		}
		o.Angle += 0.01 + 0.05*a
		theta := o.Angle + phase
		size := entity.Clamp(o.BaseSize*(1+1.5*a), 0, maxSize)
		e := &st.Entities[i]
		centerOn(e, cx+math.Cos(theta)*o.Radius, cy+math.Sin(theta)*o.Radius, size)
		e.Opacity = orbOpacity(o.Angle, a)
	}
}
