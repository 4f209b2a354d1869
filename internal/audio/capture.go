package audio

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"

	"github.com/guidoenr/pulsar/internal/loudness"
)

// Capture meters a PortAudio input stream and pushes one loudness reading
// per buffer into a Sink. The callback never allocates or blocks.
type Capture struct {
	stream     *portaudio.Stream
	sampleRate float64
	channels   int
	device     *portaudio.DeviceInfo

	sink    loudness.Sink
	meter   *loudness.Meter
	buffers atomic.Uint64
}

// Config controls how a Capture instance is created.
type Config struct {
	DeviceName string
	// BufferSize is the number of samples per callback across all channels.
	BufferSize int
	Channels   int
}

const (
	defaultBufferSize = 1024
	minBufferFrames   = 64
)

// NewCapture opens and starts an input stream that feeds sink.
func NewCapture(cfg Config, sink loudness.Sink) (*Capture, error) {
	if sink == nil {
		return nil, fmt.Errorf("capture: nil sink")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}

	device, err := findDevice(cfg.DeviceName)
	if err != nil {
		return nil, err
	}

	channels := cfg.Channels
	if channels <= 0 {
		channels = 1
	}
	if channels > device.MaxInputChannels {
		channels = device.MaxInputChannels
	}

	c := &Capture{
		sampleRate: device.DefaultSampleRate,
		channels:   channels,
		device:     device,
		sink:       sink,
		meter:      loudness.NewMeter(),
	}

	framesPerBuffer := bufferFrames(cfg.BufferSize, channels)

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: channels,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      c.sampleRate,
		FramesPerBuffer: framesPerBuffer,
	}, c.process)
	if err != nil {
		return nil, fmt.Errorf("open stream on %q: %w", device.Name, err)
	}
	c.stream = stream

	if err := c.stream.Start(); err != nil {
		_ = c.stream.Close()
		return nil, fmt.Errorf("start stream: %w", err)
	}
	return c, nil
}

// Close stops the stream and pushes a final zero so visuals fall silent.
func (c *Capture) Close() error {
	if c.stream == nil {
		return nil
	}
	defer c.sink.SetAmplitude(0)
	if err := c.stream.Stop(); err != nil && !isInvalidStreamState(err) {
		return fmt.Errorf("stop stream: %w", err)
	}
	return c.stream.Close()
}

// SampleRate returns the stream sample rate.
func (c *Capture) SampleRate() float64 {
	return c.sampleRate
}

// Device returns the PortAudio device the stream was opened on.
func (c *Capture) Device() *portaudio.DeviceInfo {
	return c.device
}

// Buffers returns how many callbacks have been metered.
func (c *Capture) Buffers() uint64 {
	return c.buffers.Load()
}

func (c *Capture) process(in []float32) {
	c.sink.SetAmplitude(c.meter.Interleaved(in, c.channels))
	c.buffers.Add(1)
}

// isInvalidStreamState reports errors from stopping an already stopped stream.
func isInvalidStreamState(err error) bool {
	return err != nil && strings.Contains(err.Error(), "PaErrorCode -9986")
}

// bufferFrames is the fixed callback length requested from PortAudio. A
// fixed length keeps the meter window from being rebuilt in the callback.
func bufferFrames(bufferSize, channels int) int {
	if channels < 1 {
		channels = 1
	}
	frames := bufferSize / channels
	if frames < minBufferFrames {
		frames = minBufferFrames
	}
	return frames
}
