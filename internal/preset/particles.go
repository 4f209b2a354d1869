package preset

import (
	"math"
	"math/rand"

	"github.com/guidoenr/pulsar/internal/entity"
)

const (
	particleCount    = 600
	particleBaseSize = 2.0
)

func layoutParticles(c entity.Size, rng *rand.Rand) *Store {
	st := &Store{
		Entities:  make([]entity.Entity, particleCount),
		Particles: make([]ParticleState, particleCount),
	}
	cx, cy := c.Center()
	for i := range st.Particles {
		base := entity.HSV(rng.Float64()*360, 0.9, 1)
		st.Particles[i] = ParticleState{Base: base}
		e := newOrb(entity.KindParticle, particleBaseSize, base.Scale(0.5))
		centerOn(&e, cx, cy, particleBaseSize)
		st.Entities[i] = e
	}
	return st
}

func updateParticles(st *Store, phase, a float64, c entity.Size, rng *rand.Rand) {
	size := entity.Clamp(2+4*a, 0, c.MinSide())
	speed := 1 + 10*a
	maxX := math.Max(0, c.W-size)
	maxY := math.Max(0, c.H-size)
	tint := 0.5 + a/2
	for i := range st.Particles {
		p := &st.Particles[i]
		if !p.Moving {
			theta := rng.Float64() * tau
			p.VX, p.VY = math.Cos(theta), math.Sin(theta)
			p.Moving = true
		}
		e := &st.Entities[i]
		e.W, e.H = size, size
		e.X += p.VX * speed
		e.Y += p.VY * speed
		e.X, p.VX = bounce(e.X, p.VX, maxX)
		e.Y, p.VY = bounce(e.Y, p.VY, maxY)
		e.Color = p.Base.Scale(tint)
	}
}

// bounce keeps pos inside [0,hi] and points the velocity back inside when
// the position crossed an edge.
func bounce(pos, vel, hi float64) (float64, float64) {
	switch {
	case pos < 0:
		return 0, math.Abs(vel)
	case pos > hi:
		return hi, -math.Abs(vel)
	}
	return pos, vel
}
