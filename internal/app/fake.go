package app

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/guidoenr/pulsar/internal/loudness"
)

// fakeGenerator synthesises a raw loudness signal with a slow swell and a
// periodic kick, for running without an audio device.
type fakeGenerator struct {
	rng       *rand.Rand
	phaseBody float64
	phaseKick float64
}

func newFakeGenerator(seed int64) *fakeGenerator {
	return &fakeGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Next advances the generator by delta seconds and returns a raw RMS level.
func (f *fakeGenerator) Next(delta float64) float64 {
	f.phaseBody += delta * 0.7
	f.phaseKick += delta * 2 * math.Pi * 2

	body := 0.02 + 0.02*math.Sin(f.phaseBody)
	kick := math.Max(0, math.Sin(f.phaseKick))
	kick *= kick * kick
	if f.rng.Float64() < 0.01 {
		kick = 1
	}
	return body + kick*0.05 + f.rng.Float64()*0.005
}

// Run pushes one reading every period until ctx is done.
func (f *fakeGenerator) Run(ctx context.Context, sink loudness.Sink, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			sink.SetAmplitude(0)
			return
		case <-ticker.C:
			sink.SetAmplitude(f.Next(period.Seconds()))
		}
	}
}
