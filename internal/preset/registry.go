package preset

import (
	"math/rand"
	"strings"

	"github.com/guidoenr/pulsar/internal/entity"
)

// Preset indices in registry order.
const (
	Bars = iota
	MirroredBars
	WaveLines
	Circles
	RadialBars
	Particles
	CircularWave
	RandomizedCircles
	CenterName
	Spiral

	Count
)

type layoutFunc func(c entity.Size, rng *rand.Rand) *Store

type updateFunc func(st *Store, phase, amp float64, c entity.Size, rng *rand.Rand)

// Preset is one selectable visual: a fixed entity layout plus the per-tick
// transform applied to it.
type Preset struct {
	Name      string
	Increment float64
	layout    layoutFunc
	update    updateFunc
}

// Layout builds the preset's entity set for the canvas. Undersized canvases
// are replaced by the documented minimums first.
func (p Preset) Layout(c entity.Size, rng *rand.Rand) *Store {
	st := p.layout(c.Normalize(), rng)
	st.Preset = p.Name
	return st
}

// Update advances every entity one tick. Empty stores are left untouched.
func (p Preset) Update(st *Store, phase, amp float64, c entity.Size, rng *rand.Rand) {
	if st.Len() == 0 {
		return
	}
	p.update(st, phase, entity.Clamp01(amp), c.Normalize(), rng)
}

// Options tunes layout inputs that are not visual constants.
type Options struct {
	// Words are the three words the center-name preset bounces around.
	Words []string
}

// DefaultWords feed the center-name preset when Options.Words is empty.
var DefaultWords = []string{"FEEL", "THE", "BEAT"}

// Registry holds the ten presets in index order.
type Registry struct {
	presets []Preset
}

// NewRegistry builds the registry.
func NewRegistry(opts Options) *Registry {
	words := normalizeWords(opts.Words)
	return &Registry{presets: []Preset{
		Bars:              barsPreset("bars", false),
		MirroredBars:      barsPreset("mirrored-bars", true),
		WaveLines:         {Name: "wave-lines", Increment: 0.1, layout: layoutWaveLines, update: updateWaveLines},
		Circles:           {Name: "circles", Increment: 0.05, layout: layoutCircles, update: updateCircles},
		RadialBars:        {Name: "radial-bars", Increment: 0.08, layout: layoutRadialBars, update: updateRadialBars},
		Particles:         {Name: "particles", Increment: 0.05, layout: layoutParticles, update: updateParticles},
		CircularWave:      {Name: "circular-wave", Increment: 0.12, layout: layoutCircularWave, update: updateCircularWave},
		RandomizedCircles: {Name: "randomized-circles", Increment: 0.06, layout: layoutRandomizedCircles, update: updateRandomizedCircles},
		CenterName:        centerNamePreset(words),
		Spiral:            {Name: "spiral", Increment: 0.1, layout: layoutSpiral, update: updateSpiral},
	}}
}

// Len returns the number of presets.
func (r *Registry) Len() int { return len(r.presets) }

// Clamp bounds an index to [0, Len()-1].
func (r *Registry) Clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(r.presets) {
		return len(r.presets) - 1
	}
	return i
}

// At returns the preset at the clamped index.
func (r *Registry) At(i int) Preset {
	return r.presets[r.Clamp(i)]
}

// Names returns the preset names in index order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.presets))
	for i, p := range r.presets {
		names[i] = p.Name
	}
	return names
}

// Lookup finds a preset index by name or decimal index.
func (r *Registry) Lookup(name string) (int, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, p := range r.presets {
		if p.Name == key {
			return i, true
		}
	}
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return r.Clamp(int(key[0] - '0')), true
	}
	return 0, false
}

func normalizeWords(words []string) []string {
	out := make([]string, 0, len(DefaultWords))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
		if len(out) == len(DefaultWords) {
			return out
		}
	}
	for len(out) < len(DefaultWords) {
		out = append(out, DefaultWords[len(out)])
	}
	return out
}
