package loudness

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

const defaultChunk = 20 * time.Millisecond

// ReplayConfig controls a Replay.
type ReplayConfig struct {
	Path string
	Loop bool
	// Chunk is the audio duration metered per reading.
	Chunk time.Duration
	Log   *log.Logger
}

// Replay decodes a WAV file and feeds its loudness to a Sink at real-time
// pace, standing in for a capture device. Nothing is played back.
type Replay struct {
	cfg    ReplayConfig
	sink   Sink
	meter  *Meter
	format beep.Format
}

// NewReplay validates the file header and returns a Replay for it.
func NewReplay(cfg ReplayConfig, sink Sink) (*Replay, error) {
	if cfg.Chunk <= 0 {
		cfg.Chunk = defaultChunk
	}
	if cfg.Log == nil {
		cfg.Log = log.New(os.Stderr, "", log.LstdFlags)
	}
	if sink == nil {
		return nil, errors.New("replay: nil sink")
	}

	streamer, format, err := open(cfg.Path)
	if err != nil {
		return nil, err
	}
	_ = streamer.Close()

	return &Replay{cfg: cfg, sink: sink, meter: NewMeter(), format: format}, nil
}

// Format returns the decoded stream format.
func (r *Replay) Format() beep.Format {
	return r.format
}

func open(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("open %s: %w", path, err)
	}
	streamer, format, err := wav.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return streamer, format, nil
}

// Run streams the file until it ends (or forever with Loop) or ctx is done.
// A finished replay pushes a final zero so the visuals fall silent.
func (r *Replay) Run(ctx context.Context) error {
	streamer, format, err := open(r.cfg.Path)
	if err != nil {
		return err
	}
	defer streamer.Close()

	frames := format.SampleRate.N(r.cfg.Chunk)
	if frames < 1 {
		frames = 1
	}
	buf := make([][2]float64, frames)

	ticker := time.NewTicker(format.SampleRate.D(frames))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		n, ok := streamer.Stream(buf)
		if n > 0 {
			r.sink.SetAmplitude(r.meter.Stereo(buf[:n]))
		}
		if ok {
			continue
		}
		if err := streamer.Err(); err != nil {
			r.sink.SetAmplitude(0)
			return fmt.Errorf("stream %s: %w", r.cfg.Path, err)
		}
		if !r.cfg.Loop {
			r.sink.SetAmplitude(0)
			return nil
		}
		if err := streamer.Seek(0); err != nil {
			r.sink.SetAmplitude(0)
			return fmt.Errorf("rewind %s: %w", r.cfg.Path, err)
		}
		r.cfg.Log.Printf("replay looped %s", r.cfg.Path)
	}
}
