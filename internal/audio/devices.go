package audio

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// Device describes a PortAudio device in a Go-friendly way.
type Device struct {
	Name            string
	MaxInput        int
	DefaultSampleHz float64
	HostAPI         string
	IsDefaultInput  bool
	Score           int
}

// loopbackHints mark devices that carry system playback rather than a mic.
var loopbackHints = []string{"monitor", "loopback", "stereo mix", "what u hear", "blackhole"}

// ListInputs returns every capture-capable device, best candidate first.
func ListInputs() ([]Device, error) {
	hosts, err := portaudio.HostApis()
	if err != nil {
		return nil, fmt.Errorf("host apis: %w", err)
	}
	defIdx := defaultInputIndex()

	var out []Device
	for _, host := range hosts {
		for _, d := range host.Devices {
			if d == nil || d.MaxInputChannels <= 0 {
				continue
			}
			out = append(out, Device{
				Name:            d.Name,
				MaxInput:        d.MaxInputChannels,
				DefaultSampleHz: d.DefaultSampleRate,
				HostAPI:         host.Name,
				IsDefaultInput:  d.Index == defIdx,
				Score:           score(d, defIdx),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		}
		return out[i].Score > out[j].Score
	})
	return out, nil
}

func defaultInputIndex() int {
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		return def.Index
	}
	return -1
}

// score prefers loopback sources, then the default input.
func score(d *portaudio.DeviceInfo, defIdx int) int {
	s := d.MaxInputChannels
	if d.Index == defIdx {
		s += 50
	}
	lower := strings.ToLower(d.Name)
	for _, kw := range loopbackHints {
		if strings.Contains(lower, kw) {
			s += 60
			break
		}
	}
	if strings.Contains(lower, "default") {
		s += 10
	}
	return s
}

func findDevice(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list audio devices: %w", err)
	}

	if name != "" {
		want := strings.ToLower(name)
		for _, d := range devices {
			if d != nil && d.MaxInputChannels > 0 && strings.Contains(strings.ToLower(d.Name), want) {
				return d, nil
			}
		}
		return nil, fmt.Errorf("audio device %q not found", name)
	}

	defIdx := defaultInputIndex()
	var best *portaudio.DeviceInfo
	bestScore := -1
	for _, d := range devices {
		if d == nil || d.MaxInputChannels <= 0 {
			continue
		}
		if s := score(d, defIdx); s > bestScore {
			best, bestScore = d, s
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no audio input device found")
	}
	return best, nil
}
