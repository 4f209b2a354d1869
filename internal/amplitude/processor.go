package amplitude

import (
	"math"
	"sync/atomic"
	"time"
)

const (
	// Gain amplifies the square-rooted reading so quiet rooms still move.
	Gain = 3.0
	// DefaultAlpha is the exponential smoothing weight of the newest reading.
	DefaultAlpha = 0.3
	// DefaultStaleAfter is how long a pushed reading stays valid.
	DefaultStaleAfter = 500 * time.Millisecond
)

// Config controls Processor behavior.
type Config struct {
	// Alpha is the smoothing weight in (0,1]; zero selects DefaultAlpha.
	Alpha float64
	// StaleAfter treats the latest reading as silence once it is older than
	// this. Zero selects DefaultStaleAfter, a negative value disables it.
	StaleAfter time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Processor turns raw loudness readings pushed from a capture callback into a
// bounded, smoothed signal read once per animation tick.
//
// SetAmplitude may be called from any goroutine. Tick, Smooth, Smoothed and
// Reset belong to the tick goroutine.
type Processor struct {
	raw      atomic.Uint64 // math.Float64bits of the latest reading
	pushedAt atomic.Int64  // unix nanos of the latest reading, 0 if none
	detached atomic.Bool

	alpha      float64
	staleAfter time.Duration
	now        func() time.Time

	smoothed float64
}

// New creates a Processor.
func New(cfg Config) *Processor {
	if !(cfg.Alpha > 0) || cfg.Alpha > 1 {
		cfg.Alpha = DefaultAlpha
	}
	if cfg.StaleAfter == 0 {
		cfg.StaleAfter = DefaultStaleAfter
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Processor{
		alpha:      cfg.Alpha,
		staleAfter: cfg.StaleAfter,
		now:        cfg.Now,
	}
}

// Normalize maps a raw reading into [0,1] with a square-root curve and gain.
func Normalize(raw float64) float64 {
	if !(raw > 0) {
		return 0
	}
	v := math.Sqrt(raw) * Gain
	if v > 1 {
		return 1
	}
	return v
}

// SetAmplitude stores the latest raw reading. It never blocks.
func (p *Processor) SetAmplitude(raw float64) {
	if p.detached.Load() {
		return
	}
	p.raw.Store(math.Float64bits(raw))
	p.pushedAt.Store(p.now().UnixNano())
}

// Latest returns the most recent raw reading, or 0 when nothing was pushed,
// the processor is detached, or the reading went stale.
func (p *Processor) Latest() float64 {
	if p.detached.Load() {
		return 0
	}
	at := p.pushedAt.Load()
	if at == 0 {
		return 0
	}
	if p.staleAfter > 0 && p.now().UnixNano()-at > int64(p.staleAfter) {
		return 0
	}
	return math.Float64frombits(p.raw.Load())
}

// Smooth folds a normalized value into the running average and returns it.
func (p *Processor) Smooth(normalized float64) float64 {
	normalized = clamp01(normalized)
	p.smoothed = clamp01(p.alpha*normalized + (1-p.alpha)*p.smoothed)
	return p.smoothed
}

// Tick normalizes the latest reading and advances the smoothed value once.
func (p *Processor) Tick() float64 {
	return p.Smooth(Normalize(p.Latest()))
}

// Smoothed returns the current smoothed amplitude without advancing it.
func (p *Processor) Smoothed() float64 {
	return p.smoothed
}

// Attach resumes accepting readings.
func (p *Processor) Attach() {
	p.detached.Store(false)
}

// Detach drops every reading until Attach is called again.
func (p *Processor) Detach() {
	p.detached.Store(true)
}

// Attached reports whether readings are accepted.
func (p *Processor) Attached() bool {
	return !p.detached.Load()
}

// Reset forgets the stored reading and the smoothed value.
func (p *Processor) Reset() {
	p.raw.Store(0)
	p.pushedAt.Store(0)
	p.smoothed = 0
}

func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
