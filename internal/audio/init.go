package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

var (
	mu   sync.Mutex
	refs int
)

// Initialize brings PortAudio up. Calls are reference counted and must be
// balanced with Terminate.
func Initialize() error {
	mu.Lock()
	defer mu.Unlock()
	if refs == 0 {
		if err := portaudio.Initialize(); err != nil {
			return fmt.Errorf("portaudio init: %w", err)
		}
	}
	refs++
	return nil
}

// Terminate releases one Initialize reference.
func Terminate() {
	mu.Lock()
	defer mu.Unlock()
	if refs == 0 {
		return
	}
	refs--
	if refs == 0 {
		_ = portaudio.Terminate()
	}
}
