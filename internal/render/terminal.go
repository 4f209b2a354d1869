package render

import (
	"bytes"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/guidoenr/pulsar/internal/entity"
)

// TerminalConfig controls a Terminal presenter.
type TerminalConfig struct {
	Out        io.Writer
	ShowStatus bool
	// Label is appended to the status line, e.g. the capture device.
	Label string
	Now   func() time.Time
}

// Terminal presents engine frames on an ANSI terminal by redrawing the
// screen from the home position every tick.
type Terminal struct {
	renderer   *Renderer
	out        io.Writer
	showStatus bool
	label      string
	now        func() time.Time

	last time.Time
	fps  float64
	buf  bytes.Buffer
}

// NewTerminal wraps r in a presenter writing to cfg.Out (stdout by default).
func NewTerminal(r *Renderer, cfg TerminalConfig) *Terminal {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Terminal{
		renderer:   r,
		out:        cfg.Out,
		showStatus: cfg.ShowStatus,
		label:      cfg.Label,
		now:        cfg.Now,
	}
}

// SetLabel replaces the status suffix. Call it before the engine starts.
func (t *Terminal) SetLabel(label string) {
	t.label = label
}

// Present draws one frame. It runs on the engine tick goroutine.
func (t *Terminal) Present(f entity.Frame) {
	now := t.now()
	if !t.last.IsZero() {
		if delta := now.Sub(t.last).Seconds(); delta > 0 {
			inst := 1 / delta
			if t.fps == 0 {
				t.fps = inst
			} else {
				t.fps += (inst - t.fps) * 0.1
			}
		}
	}
	t.last = now

	frame := t.renderer.Render(f, t.fps)
	cols, _ := t.renderer.Grid()

	t.buf.Reset()
	t.buf.WriteString("\x1b[H")
	for _, line := range frame.Lines {
		t.buf.WriteString(line)
		t.buf.WriteByte('\n')
	}
	if t.showStatus {
		status := frame.Status
		if t.label != "" {
			status += " | " + t.label
		}
		t.buf.WriteString(statusBar(status, cols))
	}
	_, _ = t.out.Write(t.buf.Bytes())
}

// Enter switches to the alternate screen and hides the cursor.
func (t *Terminal) Enter() {
	io.WriteString(t.out, "\x1b[?1049h\x1b[2J\x1b[H\x1b[?25l")
}

// Leave restores the cursor and the primary screen.
func (t *Terminal) Leave() {
	io.WriteString(t.out, "\x1b[?25h\x1b[?1049l\x1b[0m")
}

// Grid returns the cell dimensions.
func (r *Renderer) Grid() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cols, r.rows
}

func statusBar(text string, width int) string {
	if width <= 0 {
		return text
	}
	n := utf8.RuneCountInString(text)
	if n >= width {
		return string([]rune(text)[:width])
	}
	return text + strings.Repeat(" ", width-n)
}
