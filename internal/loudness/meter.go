package loudness

import (
	"math"

	"github.com/mjibson/go-dsp/window"
)

// Sink receives one raw loudness reading per audio buffer.
type Sink interface {
	SetAmplitude(raw float64)
}

// Meter computes a Hann-weighted RMS level over one buffer at a time. The
// window is rebuilt only when the buffer length changes, so callers feeding
// fixed-length buffers do not allocate.
type Meter struct {
	window []float64
	weight float64
}

// NewMeter creates a Meter.
func NewMeter() *Meter {
	return &Meter{}
}

func (m *Meter) ensure(frames int) {
	if len(m.window) == frames {
		return
	}
	if frames < 2 {
		m.window = []float64{1}[:frames]
		m.weight = float64(frames)
		return
	}
	m.window = window.Hann(frames)
	m.weight = 0
	for _, w := range m.window {
		m.weight += w
	}
}

// Interleaved returns the level of interleaved float32 samples, downmixing
// channels to mono first.
func (m *Meter) Interleaved(in []float32, channels int) float64 {
	if channels <= 0 {
		channels = 1
	}
	frames := len(in) / channels
	if frames == 0 {
		return 0
	}
	m.ensure(frames)
	if m.weight <= 0 {
		return 0
	}

	inv := 1.0 / float64(channels)
	sum := 0.0
	for i := 0; i < frames; i++ {
		mono := 0.0
		base := i * channels
		for ch := 0; ch < channels; ch++ {
			mono += float64(in[base+ch])
		}
		mono *= inv
		sum += m.window[i] * mono * mono
	}
	return math.Sqrt(sum / m.weight)
}

// Stereo returns the level of beep-style stereo frames.
func (m *Meter) Stereo(in [][2]float64) float64 {
	frames := len(in)
	if frames == 0 {
		return 0
	}
	m.ensure(frames)
	if m.weight <= 0 {
		return 0
	}

	sum := 0.0
	for i, s := range in {
		mono := (s[0] + s[1]) / 2
		sum += m.window[i] * mono * mono
	}
	return math.Sqrt(sum / m.weight)
}
