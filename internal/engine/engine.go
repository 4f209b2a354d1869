package engine

import (
	"context"
	"log"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guidoenr/pulsar/internal/amplitude"
	"github.com/guidoenr/pulsar/internal/entity"
	"github.com/guidoenr/pulsar/internal/preset"
)

// DefaultPeriod is the tick interval used when Config.Period is unset (25 Hz).
const DefaultPeriod = 40 * time.Millisecond

// State is the run state of an Engine.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Config configures an Engine.
type Config struct {
	Period time.Duration
	Canvas entity.Size
	Preset int
	// Seed feeds the layout and update RNG; zero picks a time based seed.
	Seed      int64
	Words     []string
	Amplitude amplitude.Config
	// ExternalClock disables the internal ticker; the caller drives ticks
	// with Step, e.g. from a window event loop.
	ExternalClock bool
	Presenter     Presenter
	Log           *log.Logger
}

// Engine owns the active preset's entities and advances them on a fixed
// tick, reading the latest amplitude pushed by a capture collaborator.
type Engine struct {
	cfg       Config
	registry  *preset.Registry
	amp       *amplitude.Processor
	presenter Presenter
	log       *log.Logger

	// ctl serializes Start, Stop, SetPreset and SetCanvas.
	ctl sync.Mutex

	// mu guards everything below; it is held for the whole tick.
	mu      sync.Mutex
	running atomic.Bool
	index   int
	store   *preset.Store
	phase   float64
	ticks   uint64
	canvas  entity.Size
	rng     *rand.Rand
	frame   []entity.Entity
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a stopped Engine.
func New(cfg Config) *Engine {
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Log == nil {
		cfg.Log = log.New(os.Stderr, "[engine] ", log.LstdFlags)
	}

	registry := preset.NewRegistry(preset.Options{Words: cfg.Words})
	amp := amplitude.New(cfg.Amplitude)
	amp.Detach()

	return &Engine{
		cfg:       cfg,
		registry:  registry,
		amp:       amp,
		presenter: cfg.Presenter,
		log:       cfg.Log,
		index:     registry.Clamp(cfg.Preset),
		canvas:    cfg.Canvas.Normalize(),
		rng:       rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Start lays out the active preset, resets the phase and begins ticking.
// It is a no-op when already running.
func (e *Engine) Start() {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	if e.running.Load() {
		return
	}

	e.mu.Lock()
	e.store = e.registry.At(e.index).Layout(e.canvas, e.rng)
	e.phase = 0
	e.frame = e.frame[:0]
	e.amp.Reset()
	e.amp.Attach()
	e.running.Store(true)
	n := e.store.Len()
	e.mu.Unlock()

	if !e.cfg.ExternalClock {
		ctx, cancel := context.WithCancel(context.Background())
		e.cancel = cancel
		e.done = make(chan struct{})
		go e.loop(ctx, e.cfg.Period, e.done)
	}

	e.log.Printf("started preset=%s entities=%d period=%s", e.registry.At(e.index).Name, n, e.cfg.Period)
}

// Stop halts ticking, detaches the amplitude input and discards entities.
// When Stop returns no tick is in flight and none will run until Start.
func (e *Engine) Stop() {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	if !e.running.Load() {
		return
	}

	e.amp.Detach()

	e.mu.Lock()
	e.running.Store(false)
	e.mu.Unlock()

	if e.cancel != nil {
		e.cancel()
		<-e.done
		e.cancel = nil
		e.done = nil
	}

	e.mu.Lock()
	e.store = nil
	e.frame = e.frame[:0]
	e.phase = 0
	e.amp.Reset()
	e.mu.Unlock()

	e.log.Printf("stopped after %d ticks", e.Ticks())
}

// SetPreset switches to the preset at i, clamped to the valid range, and
// lays it out. The run state is unchanged. It returns the applied index.
func (e *Engine) SetPreset(i int) int {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	idx := e.registry.Clamp(i)
	p := e.registry.At(idx)

	e.mu.Lock()
	e.index = idx
	e.store = nil
	e.store = p.Layout(e.canvas, e.rng)
	e.frame = e.frame[:0]
	e.mu.Unlock()

	e.log.Printf("preset -> %d (%s)", idx, p.Name)
	return idx
}

// SetCanvas changes the canvas size and re-lays out existing entities.
func (e *Engine) SetCanvas(size entity.Size) {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	size = size.Normalize()

	e.mu.Lock()
	defer e.mu.Unlock()
	if size == e.canvas {
		return
	}
	e.canvas = size
	if e.store != nil {
		e.store = e.registry.At(e.index).Layout(e.canvas, e.rng)
		e.frame = e.frame[:0]
	}
}

// SetAmplitude records the latest raw loudness reading. Safe to call from
// the capture callback; it never blocks on the tick.
func (e *Engine) SetAmplitude(raw float64) {
	e.amp.SetAmplitude(raw)
}

// Step runs a single tick when the engine is running and reports whether
// it did.
func (e *Engine) Step() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running.Load() {
		return false
	}
	e.tick()
	return true
}

func (e *Engine) loop(ctx context.Context, period time.Duration, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Step()
		}
	}
}

func (e *Engine) tick() {
	defer func() {
		if r := recover(); r != nil {
			e.log.Printf("tick %d dropped: %v", e.ticks, r)
		}
	}()

	p := e.registry.At(e.index)
	e.phase += p.Increment
	amp := e.amp.Tick()
	p.Update(e.store, e.phase, amp, e.canvas, e.rng)
	e.ticks++

	if e.store != nil {
		e.frame = append(e.frame[:0], e.store.Entities...)
	}
	if e.presenter == nil {
		return
	}
	e.presenter.Present(entity.Frame{
		Tick:      e.ticks,
		Preset:    e.index,
		Name:      p.Name,
		Phase:     e.phase,
		Amplitude: amp,
		Canvas:    e.canvas,
		Entities:  e.frame,
	})
}

// Snapshot returns a copy of the current entity state that the caller owns.
func (e *Engine) Snapshot() entity.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()

	f := entity.Frame{
		Tick:      e.ticks,
		Preset:    e.index,
		Name:      e.registry.At(e.index).Name,
		Phase:     e.phase,
		Amplitude: e.amp.Smoothed(),
		Canvas:    e.canvas,
	}
	if e.store != nil {
		f.Entities = e.store.Entities
	}
	return f.Clone()
}

// IsRunning reports whether the engine is ticking.
func (e *Engine) IsRunning() bool { return e.running.Load() }

// State returns the run state.
func (e *Engine) State() State {
	if e.running.Load() {
		return Running
	}
	return Stopped
}

// Preset returns the active preset index.
func (e *Engine) Preset() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

// PresetName returns the active preset name.
func (e *Engine) PresetName() string {
	return e.registry.At(e.Preset()).Name
}

// PresetNames lists every preset in index order.
func (e *Engine) PresetNames() []string {
	return e.registry.Names()
}

// PresetCount returns the number of presets.
func (e *Engine) PresetCount() int {
	return e.registry.Len()
}

// Phase returns the animation clock.
func (e *Engine) Phase() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Amplitude returns the smoothed amplitude used by the last tick.
func (e *Engine) Amplitude() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.amp.Smoothed()
}

// Ticks returns how many ticks ran since the engine was created.
func (e *Engine) Ticks() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

// Canvas returns the normalized canvas size.
func (e *Engine) Canvas() entity.Size {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canvas
}

// EntityCount returns the size of the active entity store.
func (e *Engine) EntityCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Len()
}
