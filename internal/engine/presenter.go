package engine

import "github.com/guidoenr/pulsar/internal/entity"

// Presenter receives one frame per tick on the tick goroutine. The frame's
// entity slice is reused by the next tick, so implementations copy what they
// keep. Present must not call back into the Engine's control methods.
type Presenter interface {
	Present(frame entity.Frame)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(frame entity.Frame)

func (f PresenterFunc) Present(frame entity.Frame) { f(frame) }

// Presenters fans a frame out to several presenters in order.
type Presenters []Presenter

func (ps Presenters) Present(frame entity.Frame) {
	for _, p := range ps {
		if p != nil {
			p.Present(frame)
		}
	}
}
