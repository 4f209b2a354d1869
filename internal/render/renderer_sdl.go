//go:build sdl

package render

import (
	"fmt"
	"math"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/guidoenr/pulsar/internal/entity"
)

// Window presents frames in an SDL window. Every method must run on the
// goroutine that called OpenWindow.
type Window struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	title    string
	points   []sdl.Point
	events   WindowEvents
}

// OpenWindow initialises SDL video and opens a resizable window.
func OpenWindow(title string, width, height int) (*Window, error) {
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sdl init: %w", err)
	}
	window, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(width), int32(height),
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
	)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		return nil, fmt.Errorf("create window: %w", err)
	}
	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	_ = renderer.SetDrawBlendMode(sdl.BLENDMODE_BLEND)

	return &Window{window: window, renderer: renderer, title: title}, nil
}

// Present draws f with one SDL primitive per entity.
func (w *Window) Present(f entity.Frame) {
	size := w.Size()
	canvas := f.Canvas.Normalize()
	sx, sy := size.W/canvas.W, size.H/canvas.H

	_ = w.renderer.SetDrawColor(0, 0, 0, 255)
	_ = w.renderer.Clear()

	for i := range f.Entities {
		e := &f.Entities[i]
		if e.Opacity <= 0 {
			continue
		}
		alpha := entity.Channel(e.Opacity * 255)
		_ = w.renderer.SetDrawColor(e.Color.R, e.Color.G, e.Color.B, alpha)

		switch e.Kind {
		case entity.KindOrb, entity.KindSpiralPoint:
			w.fillCircle((e.X+e.W/2)*sx, (e.Y+e.H/2)*sy, e.W/2*sx)
		case entity.KindWaveLine:
			w.points = w.points[:0]
			for _, p := range e.Points {
				w.points = append(w.points, sdl.Point{X: int32(p.X * sx), Y: int32(p.Y * sy)})
			}
			if len(w.points) > 1 {
				_ = w.renderer.DrawLines(w.points)
			}
		case entity.KindRadialBar:
			tx, ty := e.Tip()
			_ = w.renderer.DrawLine(int32(e.X*sx), int32(e.Y*sy), int32(tx*sx), int32(ty*sy))
		case entity.KindTextCopy:
			_ = w.renderer.DrawRect(rect(e.X*sx, e.Y*sy, e.W*sx, e.H*sy))
		default:
			_ = w.renderer.FillRect(rect(e.X*sx, e.Y*sy, e.W*sx, e.H*sy))
		}
	}
	w.renderer.Present()
}

func (w *Window) fillCircle(cx, cy, radius float64) {
	if radius < 1 {
		_ = w.renderer.DrawPoint(int32(cx), int32(cy))
		return
	}
	for dy := -radius; dy <= radius; dy++ {
		half := math.Sqrt(radius*radius - dy*dy)
		y := int32(cy + dy)
		_ = w.renderer.DrawLine(int32(cx-half), y, int32(cx+half), y)
	}
}

func rect(x, y, w, h float64) *sdl.Rect {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &sdl.Rect{X: int32(x), Y: int32(y), W: int32(w), H: int32(h)}
}

// Poll drains pending SDL events.
func (w *Window) Poll() WindowEvents {
	w.events = WindowEvents{Keys: w.events.Keys[:0]}
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			w.events.Quit = true
		case *sdl.KeyboardEvent:
			if ev.Type != sdl.KEYDOWN {
				continue
			}
			switch sym := ev.Keysym.Sym; {
			case sym == sdl.K_ESCAPE:
				w.events.Keys = append(w.events.Keys, 'q')
			case sym >= 32 && sym < 127:
				w.events.Keys = append(w.events.Keys, rune(sym))
			}
		case *sdl.WindowEvent:
			if ev.Event == sdl.WINDOWEVENT_RESIZED || ev.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				w.events.Resized = true
				w.events.Width = int(ev.Data1)
				w.events.Height = int(ev.Data2)
			}
		}
	}
	return w.events
}

// SetTitle updates the window title when it changed.
func (w *Window) SetTitle(title string) {
	if title == "" || title == w.title {
		return
	}
	w.window.SetTitle(title)
	w.title = title
}

// Size returns the drawable size in pixels.
func (w *Window) Size() entity.Size {
	width, height := w.window.GetSize()
	return entity.Size{W: float64(width), H: float64(height)}
}

// Close releases the window and the video subsystem.
func (w *Window) Close() error {
	if w.renderer != nil {
		w.renderer.Destroy()
		w.renderer = nil
	}
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	sdl.QuitSubSystem(sdl.INIT_VIDEO)
	return nil
}

func SupportsSDL() bool { return true }
