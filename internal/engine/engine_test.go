package engine

import (
	"io"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guidoenr/pulsar/internal/amplitude"
	"github.com/guidoenr/pulsar/internal/entity"
	"github.com/guidoenr/pulsar/internal/preset"
)

var quiet = log.New(io.Discard, "", 0)

func newManual(t *testing.T, p int, presenter Presenter) *Engine {
	t.Helper()
	return New(Config{
		Canvas:        entity.Size{W: 800, H: 600},
		Preset:        p,
		Seed:          1,
		Amplitude:     amplitude.Config{StaleAfter: -1},
		ExternalClock: true,
		Presenter:     presenter,
		Log:           quiet,
	})
}

func TestPresetCountsAfterStart(t *testing.T) {
	want := []int{40, 80, 50, 80, 280, 600, 90, 62, 30, 100}
	for i, n := range want {
		e := newManual(t, 0, nil)
		if got := e.SetPreset(i); got != i {
			t.Fatalf("SetPreset(%d) applied %d", i, got)
		}
		e.Start()
		if got := e.EntityCount(); got != n {
			t.Fatalf("preset %d (%s): entities=%d want=%d", i, e.PresetName(), got, n)
		}
		e.Step()
		if got := len(e.Snapshot().Entities); got != n {
			t.Fatalf("preset %d after tick: entities=%d want=%d", i, got, n)
		}
		e.Stop()
	}
}

func TestSetPresetClampsAndKeepsState(t *testing.T) {
	e := newManual(t, 0, nil)
	if got := e.SetPreset(-3); got != 0 {
		t.Fatalf("SetPreset(-3)=%d want=0", got)
	}
	if e.IsRunning() {
		t.Fatalf("SetPreset started the engine")
	}
	e.Start()
	if got := e.SetPreset(42); got != preset.Spiral {
		t.Fatalf("SetPreset(42)=%d want=%d", got, preset.Spiral)
	}
	if !e.IsRunning() || e.State() != Running {
		t.Fatalf("SetPreset stopped the engine")
	}
	if e.EntityCount() != 100 {
		t.Fatalf("spiral entities=%d", e.EntityCount())
	}
}

func TestPhaseAdvancesByPresetIncrement(t *testing.T) {
	e := newManual(t, preset.CircularWave, nil)
	e.Start()
	for i := 0; i < 10; i++ {
		e.Step()
	}
	if got := e.Phase(); math.Abs(got-1.2) > 1e-9 {
		t.Fatalf("phase=%f want=1.2", got)
	}
	e.Stop()
	if e.Phase() != 0 || e.EntityCount() != 0 || e.State() != Stopped {
		t.Fatalf("stop did not reset phase/entities")
	}
	if e.Step() {
		t.Fatalf("Step ran while stopped")
	}
}

func TestBarsConvergeToRestHeightInSilence(t *testing.T) {
	e := newManual(t, preset.Bars, nil)
	e.Start()
	for i := 0; i < 100; i++ {
		e.SetAmplitude(0)
		e.Step()
	}
	f := e.Snapshot()
	if len(f.Entities) != 40 {
		t.Fatalf("bars=%d", len(f.Entities))
	}
	for i, b := range f.Entities {
		if math.Abs(b.H-20) > 1 {
			t.Fatalf("bar %d height=%f want≈20", i, b.H)
		}
	}
}

func TestCirclesConvergeToFullSize(t *testing.T) {
	e := newManual(t, preset.Circles, nil)
	e.Start()
	for i := 0; i < 100; i++ {
		e.SetAmplitude(1)
		e.Step()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, o := range e.store.Orbs {
		want := o.BaseSize * 2.5
		if got := e.store.Entities[i].W; math.Abs(got-want) > want*0.01 {
			t.Fatalf("orb %d size=%f want=%f", i, got, want)
		}
	}
}

func TestSpiralRadiusResetsBelowLimit(t *testing.T) {
	e := newManual(t, 0, nil)
	e.SetPreset(9)
	e.Start()
	resets := 0
	for i := 0; i < 1000; i++ {
		e.SetAmplitude(0.5)
		e.mu.Lock()
		prev := make([]float64, len(e.store.Orbs))
		for j, o := range e.store.Orbs {
			prev[j] = o.Radius
		}
		e.mu.Unlock()

		e.Step()

		e.mu.Lock()
		for j, o := range e.store.Orbs {
			if o.Radius > 280 {
				e.mu.Unlock()
				t.Fatalf("tick %d point %d radius=%f", i, j, o.Radius)
			}
			if o.Radius < prev[j] {
				resets++
				if o.Radius < 20 || o.Radius >= 50 {
					e.mu.Unlock()
					t.Fatalf("reset radius=%f outside [20,50)", o.Radius)
				}
			}
		}
		e.mu.Unlock()
	}
	if resets == 0 {
		t.Fatalf("no reset observed")
	}
}

type countingPresenter struct {
	frames atomic.Int64
	last   atomic.Int64
}

func (c *countingPresenter) Present(f entity.Frame) {
	c.frames.Add(1)
	c.last.Store(int64(len(f.Entities)))
}

func TestStopIsSynchronous(t *testing.T) {
	cp := &countingPresenter{}
	e := New(Config{
		Period:    2 * time.Millisecond,
		Canvas:    entity.Size{W: 400, H: 300},
		Preset:    preset.Particles,
		Seed:      3,
		Presenter: cp,
		Log:       quiet,
	})
	e.Start()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				e.SetAmplitude(0.3)
			}
		}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for cp.frames.Load() < 5 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if cp.frames.Load() < 5 {
		t.Fatalf("ticker produced %d frames", cp.frames.Load())
	}

	e.Stop()
	after := cp.frames.Load()
	e.SetAmplitude(1)
	time.Sleep(20 * time.Millisecond)
	close(stop)
	wg.Wait()

	if got := cp.frames.Load(); got != after {
		t.Fatalf("frames after stop: %d -> %d", after, got)
	}
	if e.EntityCount() != 0 || e.Amplitude() != 0 || e.Phase() != 0 {
		t.Fatalf("state survived stop")
	}
	if len(e.Snapshot().Entities) != 0 {
		t.Fatalf("snapshot has entities after stop")
	}
}

func TestAmplitudeAfterStopIsIgnored(t *testing.T) {
	e := newManual(t, preset.Bars, nil)
	e.Start()
	e.Step()
	e.Stop()
	e.SetAmplitude(1)
	if e.Step() {
		t.Fatalf("tick ran after stop")
	}
	e.Start()
	e.Step()
	if got := e.Amplitude(); got != 0 {
		t.Fatalf("amplitude pushed while stopped leaked: %f", got)
	}
}

func TestPresenterPanicIsRecovered(t *testing.T) {
	calls := 0
	e := newManual(t, preset.Bars, PresenterFunc(func(entity.Frame) {
		calls++
		panic("boom")
	}))
	e.Start()
	for i := 0; i < 3; i++ {
		if !e.Step() {
			t.Fatalf("step %d did not run", i)
		}
	}
	if calls != 3 || e.Ticks() != 3 {
		t.Fatalf("calls=%d ticks=%d", calls, e.Ticks())
	}
}

func TestPresenterReceivesTickFrames(t *testing.T) {
	var got entity.Frame
	e := newManual(t, preset.Particles, PresenterFunc(func(f entity.Frame) {
		got = f.Clone()
	}))
	e.Start()
	e.SetAmplitude(0.8)
	e.Step()
	if got.Tick != 1 || got.Name != "particles" || len(got.Entities) != 600 {
		t.Fatalf("frame tick=%d name=%s entities=%d", got.Tick, got.Name, len(got.Entities))
	}
	if math.Abs(got.Phase-0.05) > 1e-12 || got.Amplitude <= 0 {
		t.Fatalf("phase=%f amp=%f", got.Phase, got.Amplitude)
	}
	x := got.Entities[0].X
	e.Step()
	if got.Entities[0].X == x {
		t.Fatalf("second tick did not move particle 0")
	}
}

func TestSetCanvasNormalizesAndRelays(t *testing.T) {
	e := newManual(t, preset.Bars, nil)
	e.SetCanvas(entity.Size{})
	if c := e.Canvas(); c.W != entity.MinWidth || c.H != entity.MinHeight {
		t.Fatalf("canvas=%v", c)
	}
	e.Start()
	e.SetCanvas(entity.Size{W: 1000, H: 500})
	e.Step()
	f := e.Snapshot()
	last := f.Entities[len(f.Entities)-1]
	if last.X+last.W > 1000 || last.X < 900 {
		t.Fatalf("last bar not laid out on new canvas: x=%f w=%f", last.X, last.W)
	}
}

func TestPresetNames(t *testing.T) {
	e := newManual(t, 0, nil)
	names := e.PresetNames()
	if len(names) != e.PresetCount() || names[0] != "bars" || names[9] != "spiral" {
		t.Fatalf("names=%v", names)
	}
}
