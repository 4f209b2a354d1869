package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/guidoenr/pulsar/internal/entity"
)

func newTestRenderer(t *testing.T, ansi bool) *Renderer {
	t.Helper()
	r, err := New(Config{Cols: 20, Rows: 10, Palette: "default", UseANSI: ansi})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func cell(lines []string, x, y int) rune {
	return []rune(lines[y])[x]
}

func TestNewRejectsEmptyGrid(t *testing.T) {
	if _, err := New(Config{Cols: 0, Rows: 10}); err == nil {
		t.Fatalf("zero cols accepted")
	}
}

func TestCanvasFollowsGrid(t *testing.T) {
	r := newTestRenderer(t, false)
	if c := r.Canvas(); c.W != 160 || c.H != 160 {
		t.Fatalf("canvas=%v want=160x160", c)
	}
	r.Resize(40, 5)
	if c := r.Canvas(); c.W != 320 || c.H != 80 {
		t.Fatalf("canvas=%v want=320x80", c)
	}
	r.Resize(-1, 3)
	if cols, rows := r.Grid(); cols != 40 || rows != 5 {
		t.Fatalf("invalid resize applied: %dx%d", cols, rows)
	}
}

func TestRenderBar(t *testing.T) {
	r := newTestRenderer(t, false)
	f := entity.Frame{
		Canvas: r.Canvas(),
		Entities: []entity.Entity{
			{Kind: entity.KindBar, X: 0, Y: 80, W: 16, H: 80, Opacity: 1, Color: entity.Color{R: 255}},
		},
	}
	out := r.Render(f, 25)
	if len(out.Lines) != 10 {
		t.Fatalf("lines=%d want=10", len(out.Lines))
	}
	if got := cell(out.Lines, 0, 9); got != '@' {
		t.Fatalf("bar cell got=%q want='@'", got)
	}
	if got := cell(out.Lines, 1, 5); got != '@' {
		t.Fatalf("bar top cell got=%q want='@'", got)
	}
	if got := cell(out.Lines, 0, 4); got != ' ' {
		t.Fatalf("above bar got=%q want=' '", got)
	}
	if got := cell(out.Lines, 2, 9); got != ' ' {
		t.Fatalf("right of bar got=%q want=' '", got)
	}
}

func TestOpaqueEntityWinsCell(t *testing.T) {
	r := newTestRenderer(t, false)
	f := entity.Frame{
		Canvas: r.Canvas(),
		Entities: []entity.Entity{
			{Kind: entity.KindParticle, X: 0, Y: 0, W: 8, H: 16, Opacity: 1},
			{Kind: entity.KindParticle, X: 0, Y: 0, W: 8, H: 16, Opacity: 0.1},
		},
	}
	if got := cell(r.Render(f, 0).Lines, 0, 0); got != '@' {
		t.Fatalf("faint entity overwrote opaque one: %q", got)
	}
}

func TestRenderRadialBarAndText(t *testing.T) {
	r := newTestRenderer(t, false)
	f := entity.Frame{
		Canvas: r.Canvas(),
		Entities: []entity.Entity{
			{Kind: entity.KindRadialBar, X: 80, Y: 84, W: 2, H: 70, Opacity: 1},
			{Kind: entity.KindTextCopy, X: 40, Y: 16, W: 20, H: 32, Opacity: 1, Text: "HI"},
		},
	}
	out := r.Render(f, 0)
	for x := 10; x <= 18; x++ {
		if cell(out.Lines, x, 5) == ' ' {
			t.Fatalf("radial bar missing at col %d: %q", x, out.Lines[5])
		}
	}
	if cell(out.Lines, 9, 5) != ' ' {
		t.Fatalf("radial bar drawn behind its base")
	}
	if got := string([]rune(out.Lines[2])[5:7]); got != "HI" {
		t.Fatalf("text got=%q want=HI", got)
	}
}

func TestRenderWaveLine(t *testing.T) {
	r := newTestRenderer(t, false)
	f := entity.Frame{
		Canvas: r.Canvas(),
		Entities: []entity.Entity{{
			Kind:    entity.KindWaveLine,
			Opacity: 0.5,
			Points:  []entity.Point{{X: 0, Y: 8}, {X: 159, Y: 8}},
		}},
	}
	out := r.Render(f, 0)
	if strings.Count(out.Lines[0], " ") != 0 {
		t.Fatalf("wave row has gaps: %q", out.Lines[0])
	}
}

func TestRenderScalesStaleCanvas(t *testing.T) {
	r := newTestRenderer(t, false)
	f := entity.Frame{
		Canvas:   entity.Size{W: 320, H: 320},
		Entities: []entity.Entity{{Kind: entity.KindBar, X: 300, Y: 300, W: 20, H: 20, Opacity: 1}},
	}
	out := r.Render(f, 0)
	if got := cell(out.Lines, 19, 9); got != '@' {
		t.Fatalf("scaled corner got=%q want='@'", got)
	}
}

func TestRenderANSIColors(t *testing.T) {
	r := newTestRenderer(t, true)
	f := entity.Frame{
		Canvas:   r.Canvas(),
		Entities: []entity.Entity{{Kind: entity.KindBar, W: 8, H: 16, Opacity: 1, Color: entity.Color{R: 255}}},
	}
	line := r.Render(f, 0).Lines[0]
	if !strings.HasPrefix(line, "\x1b[38;5;196m@") {
		t.Fatalf("line=%q missing red code", line)
	}
	if !strings.HasSuffix(line, resetANSI) {
		t.Fatalf("line=%q missing reset", line)
	}
}

func TestRGBToANSI(t *testing.T) {
	cases := map[[3]float64]int{
		{1, 0, 0}: 196,
		{0, 0, 1}: 21,
		{0, 0, 0}: 232,
		{1, 1, 1}: 255,
	}
	for in, want := range cases {
		if got := rgbToANSI(in[0], in[1], in[2]); got != want {
			t.Fatalf("rgb=%v got=%d want=%d", in, got, want)
		}
	}
}

func TestStatusLine(t *testing.T) {
	r := newTestRenderer(t, false)
	f := entity.Frame{Name: "bars", Preset: 0, Amplitude: 0.5, Phase: 1.25, Entities: make([]entity.Entity, 40)}
	status := r.Render(f, 24.96).Status
	for _, want := range []string{"BARS [0]", "amp 0.50", "phase 1.25", "entities 40", "fps 25.0"} {
		if !strings.Contains(status, want) {
			t.Fatalf("status=%q missing %q", status, want)
		}
	}
}

func TestStatusBar(t *testing.T) {
	if got := statusBar("abc", 5); got != "abc  " {
		t.Fatalf("got=%q want=%q", got, "abc  ")
	}
	if got := statusBar("abcdef", 3); got != "abc" {
		t.Fatalf("got=%q want=abc", got)
	}
}

func TestPaletteFallback(t *testing.T) {
	if string(Palette("nope")) != string(Palette("default")) {
		t.Fatalf("unknown palette did not fall back")
	}
	names := PaletteNames()
	if len(names) != 4 || names[0] != "ascii" {
		t.Fatalf("names=%v", names)
	}
	if g := glyphFor(Palette("blocks"), 0); g == ' ' {
		t.Fatalf("visible entity got blank glyph")
	}
}

func TestTerminalPresent(t *testing.T) {
	r, err := New(Config{Cols: 120, Rows: 4})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	var out bytes.Buffer
	now := time.Unix(0, 0)
	term := NewTerminal(r, TerminalConfig{
		Out:        &out,
		ShowStatus: true,
		Label:      "mic=test",
		Now: func() time.Time {
			now = now.Add(40 * time.Millisecond)
			return now
		},
	})
	f := entity.Frame{Name: "spiral", Preset: 9, Canvas: r.Canvas()}
	term.Present(f)
	term.Present(f)

	s := out.String()
	if !strings.HasPrefix(s, "\x1b[H") {
		t.Fatalf("frame does not start at home")
	}
	if !strings.Contains(s, "SPIRAL [9]") || !strings.Contains(s, "mic=test") {
		t.Fatalf("status missing: %q", s)
	}
	if !strings.Contains(s, "fps 25.0") {
		t.Fatalf("fps not tracked: %q", s)
	}
}
