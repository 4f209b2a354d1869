//go:build !sdl

package render

import (
	"errors"

	"github.com/guidoenr/pulsar/internal/entity"
)

// Window is unavailable without the sdl build tag.
type Window struct{}

func OpenWindow(title string, width, height int) (*Window, error) {
	return nil, errors.New("SDL backend not enabled; rebuild with -tags sdl")
}

func (w *Window) Present(entity.Frame) {}

func (w *Window) Poll() WindowEvents { return WindowEvents{Quit: true} }

func (w *Window) SetTitle(string) {}

func (w *Window) Size() entity.Size { return entity.Size{} }

func (w *Window) Close() error { return nil }

func SupportsSDL() bool { return false }
