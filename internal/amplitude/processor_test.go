package amplitude

import (
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestProcessor() (*Processor, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	return New(Config{Now: clock.Now}), clock
}

func TestNormalizeBounds(t *testing.T) {
	cases := map[float64]float64{
		0:       0,
		-1:      0,
		0.01:    0.3,
		0.04:    0.6,
		1.0 / 9: 1,
		1:       1,
		250:     1,
	}
	for raw, want := range cases {
		if got := Normalize(raw); math.Abs(got-want) > 1e-9 {
			t.Fatalf("Normalize(%f)=%f want=%f", raw, got, want)
		}
	}
	for _, raw := range []float64{math.NaN(), math.Inf(-1)} {
		if got := Normalize(raw); got != 0 {
			t.Fatalf("Normalize(%f)=%f want=0", raw, got)
		}
	}
	if got := Normalize(math.Inf(1)); got != 1 {
		t.Fatalf("Normalize(+Inf)=%f want=1", got)
	}
}

func TestNormalizeRandomInputsStayInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10000; i++ {
		raw := (rng.Float64() - 0.5) * math.Pow(10, float64(rng.Intn(12)-6))
		if got := Normalize(raw); got < 0 || got > 1 {
			t.Fatalf("Normalize(%g)=%f out of range", raw, got)
		}
	}
}

func TestSmoothIsContraction(t *testing.T) {
	p, _ := newTestProcessor()
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 2000; i++ {
		prev := p.Smoothed()
		n := Normalize(rng.Float64() * 2)
		got := p.Smooth(n)
		if math.Abs(got-prev) > DefaultAlpha*math.Abs(n-prev)+1e-12 {
			t.Fatalf("step %d: |%f-%f| exceeds alpha*|%f-%f|", i, got, prev, n, prev)
		}
		if got < 0 || got > 1 {
			t.Fatalf("smoothed=%f out of range", got)
		}
	}
}

func TestTickConvergesGeometrically(t *testing.T) {
	p, _ := newTestProcessor()
	p.SetAmplitude(0.04)
	target := Normalize(0.04)
	prevErr := math.Abs(target - p.Smoothed())
	for i := 0; i < 30; i++ {
		p.Tick()
		err := math.Abs(target - p.Smoothed())
		if math.Abs(err-prevErr*0.7) > 1e-9 {
			t.Fatalf("tick %d: err=%g want=%g", i, err, prevErr*0.7)
		}
		prevErr = err
	}
}

func TestTickWithoutReadingIsSilent(t *testing.T) {
	p, _ := newTestProcessor()
	for i := 0; i < 5; i++ {
		if got := p.Tick(); got != 0 {
			t.Fatalf("tick without reading=%f want=0", got)
		}
	}
}

func TestStaleReadingDecaysToSilence(t *testing.T) {
	p, clock := newTestProcessor()
	p.SetAmplitude(1)
	if got := p.Latest(); got != 1 {
		t.Fatalf("latest=%f want=1", got)
	}
	clock.Advance(DefaultStaleAfter + time.Millisecond)
	if got := p.Latest(); got != 0 {
		t.Fatalf("stale latest=%f want=0", got)
	}
}

func TestStaleDisabled(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	p := New(Config{StaleAfter: -1, Now: clock.Now})
	p.SetAmplitude(0.5)
	clock.Advance(time.Hour)
	if got := p.Latest(); got != 0.5 {
		t.Fatalf("latest=%f want=0.5", got)
	}
}

func TestDetachDropsReadings(t *testing.T) {
	p, _ := newTestProcessor()
	p.Detach()
	p.SetAmplitude(1)
	if got := p.Tick(); got != 0 {
		t.Fatalf("detached tick=%f want=0", got)
	}
	p.Attach()
	p.SetAmplitude(1)
	if got := p.Tick(); got <= 0 {
		t.Fatalf("attached tick=%f want>0", got)
	}
	p.Reset()
	if p.Smoothed() != 0 || p.Latest() != 0 {
		t.Fatalf("reset left state behind")
	}
}

func TestConcurrentWritersAndTicker(t *testing.T) {
	p := New(Config{})
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < 5000; i++ {
				p.SetAmplitude(rng.Float64())
			}
		}(int64(w))
	}
	for i := 0; i < 5000; i++ {
		if got := p.Tick(); got < 0 || got > 1 {
			t.Fatalf("tick=%f out of range", got)
		}
	}
	wg.Wait()
}
