package preset

import "github.com/guidoenr/pulsar/internal/entity"

// Store is the entity population of the active preset. The typed state
// slices are indexed like Entities; only the ones a preset needs are set.
type Store struct {
	Preset    string
	Entities  []entity.Entity
	Bars      []BarState
	Orbs      []OrbState
	Particles []ParticleState
	Texts     []TextState
	Waves     []WaveState
}

// Len returns the entity count; a nil store has none.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entities)
}

// BarState drives one bar column. Mirrored bars share the state of the
// bottom bar they reflect.
type BarState struct {
	Height float64
	Base   entity.Color
}

// OrbState is the orbit of an orb or spiral point.
type OrbState struct {
	Angle      float64
	Radius     float64
	BaseRadius float64
	Speed      float64
	Direction  float64
	BaseSize   float64
}

// ParticleState is a particle's motion. Velocity is picked on the first
// update, not at layout time.
type ParticleState struct {
	VX, VY float64
	Base   entity.Color
	Moving bool
}

// TextState is a bouncing word copy.
type TextState struct {
	VX, VY       float64
	BaseFontSize float64
	Weight       int
}

// WaveState owns the polyline of one wave layer.
type WaveState struct {
	Layer  int
	Points []entity.Point
}
