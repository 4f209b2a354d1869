package app

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/guidoenr/pulsar/internal/engine"
	"github.com/guidoenr/pulsar/internal/entity"
)

// profiler wraps a presenter and appends per-tick timings as CSV rows.
type profiler struct {
	mu     sync.Mutex
	out    io.Writer
	closer io.Closer
	next   engine.Presenter
	now    func() time.Time
	last   time.Time
}

func newProfiler(path string, next engine.Presenter, logger *log.Logger) *profiler {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		if logger != nil {
			logger.Printf("profiler disabled: %v", err)
		}
		return nil
	}
	p := newProfilerWriter(f, next, time.Now)
	p.closer = f
	return p
}

func newProfilerWriter(w io.Writer, next engine.Presenter, now func() time.Time) *profiler {
	p := &profiler{out: w, next: next, now: now}
	fmt.Fprintln(p.out, "timestamp,tick,preset,section,delta_ms")
	return p
}

// Present forwards f and records the gap since the previous tick and the
// time spent in the wrapped presenter.
func (p *profiler) Present(f entity.Frame) {
	start := p.now()
	gap := 0.0
	if !p.last.IsZero() {
		gap = start.Sub(p.last).Seconds() * 1000
	}
	p.last = start

	if p.next != nil {
		p.next.Present(f)
	}
	present := p.now().Sub(start).Seconds() * 1000

	p.log(start, f, "tick_gap", gap)
	p.log(start, f, "present", present)
}

func (p *profiler) Close() error {
	if p == nil || p.closer == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.closer.Close()
	p.closer = nil
	p.out = io.Discard
	return err
}

func (p *profiler) log(at time.Time, f entity.Frame, section string, deltaMs float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s,%d,%s,%s,%.3f\n", at.Format(time.RFC3339Nano), f.Tick, f.Name, section, deltaMs)
}
