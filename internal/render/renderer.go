package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/guidoenr/pulsar/internal/entity"
)

// Default pixel size of one terminal cell; used to map a cell grid onto the
// engine's pixel canvas.
const (
	DefaultCellWidth  = 8.0
	DefaultCellHeight = 16.0
)

// Config controls a Renderer.
type Config struct {
	Cols, Rows int
	CellWidth  float64
	CellHeight float64
	Palette    string
	UseANSI    bool
}

// Renderer rasterises engine frames into a grid of colored glyphs.
type Renderer struct {
	mu          sync.Mutex
	cols, rows  int
	cellW       float64
	cellH       float64
	palette     []rune
	paletteName string
	useANSI     bool

	glyphs  []rune
	colors  []int
	weights []float64

	statusBuilder strings.Builder
}

// Frame contains the rendered lines and status text.
type Frame struct {
	Lines  []string
	Status string
}

var (
	resetANSI       = "\x1b[0m"
	precomputedANSI [256]string
)

func init() {
	for i := range precomputedANSI {
		precomputedANSI[i] = "\x1b[38;5;" + strconv.Itoa(i) + "m"
	}
}

// New creates a Renderer.
func New(cfg Config) (*Renderer, error) {
	if cfg.Cols <= 0 || cfg.Rows <= 0 {
		return nil, fmt.Errorf("invalid dimensions: cols=%d rows=%d", cfg.Cols, cfg.Rows)
	}
	if cfg.CellWidth <= 0 {
		cfg.CellWidth = DefaultCellWidth
	}
	if cfg.CellHeight <= 0 {
		cfg.CellHeight = DefaultCellHeight
	}
	if cfg.Palette == "" {
		cfg.Palette = "default"
	}

	r := &Renderer{
		cellW:       cfg.CellWidth,
		cellH:       cfg.CellHeight,
		palette:     Palette(cfg.Palette),
		paletteName: cfg.Palette,
		useANSI:     cfg.UseANSI,
	}
	r.resize(cfg.Cols, cfg.Rows)
	return r, nil
}

// Resize updates the cell grid dimensions.
func (r *Renderer) Resize(cols, rows int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resize(cols, rows)
}

func (r *Renderer) resize(cols, rows int) {
	if cols <= 0 || rows <= 0 || (cols == r.cols && rows == r.rows) {
		return
	}
	r.cols = cols
	r.rows = rows
	n := cols * rows
	r.glyphs = make([]rune, n)
	r.colors = make([]int, n)
	r.weights = make([]float64, n)
}

// Canvas returns the pixel canvas the grid covers.
func (r *Renderer) Canvas() entity.Size {
	r.mu.Lock()
	defer r.mu.Unlock()
	return entity.Size{W: float64(r.cols) * r.cellW, H: float64(r.rows) * r.cellH}
}

// SetPalette switches the glyph ramp.
func (r *Renderer) SetPalette(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.palette = Palette(name)
	r.paletteName = name
}

func (r *Renderer) PaletteName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paletteName
}

// Render rasterises f into lines. The frame's canvas is scaled onto the grid,
// so frames laid out for a stale canvas still fit.
func (r *Renderer) Render(f entity.Frame, fps float64) Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cols <= 0 || r.rows <= 0 {
		return Frame{}
	}
	for i := range r.glyphs {
		r.glyphs[i] = ' '
		r.colors[i] = -1
		r.weights[i] = -1
	}

	canvas := f.Canvas.Normalize()
	sx := float64(r.cols) / canvas.W
	sy := float64(r.rows) / canvas.H

	for i := range f.Entities {
		r.draw(&f.Entities[i], sx, sy)
	}

	lines := make([]string, r.rows)
	var builder strings.Builder
	for y := 0; y < r.rows; y++ {
		builder.Reset()
		builder.Grow(r.cols * 8)
		lastColor := -1
		row := y * r.cols
		for x := 0; x < r.cols; x++ {
			i := row + x
			if r.useANSI && r.colors[i] >= 0 && r.colors[i] != lastColor {
				builder.WriteString(colorCode(r.colors[i]))
				lastColor = r.colors[i]
			}
			builder.WriteRune(r.glyphs[i])
		}
		if r.useANSI {
			builder.WriteString(resetANSI)
		}
		lines[y] = builder.String()
	}

	return Frame{
		Lines:  lines,
		Status: r.buildStatus(f, fps),
	}
}

func (r *Renderer) draw(e *entity.Entity, sx, sy float64) {
	if e.Opacity <= 0 {
		return
	}
	color := rgbToANSI(float64(e.Color.R)/255, float64(e.Color.G)/255, float64(e.Color.B)/255)
	glyph := glyphFor(r.palette, e.Opacity)

	switch e.Kind {
	case entity.KindOrb, entity.KindSpiralPoint:
		r.fillEllipse(e.X*sx, e.Y*sy, e.W*sx, e.H*sy, glyph, color, e.Opacity)
	case entity.KindWaveLine:
		for j := 1; j < len(e.Points); j++ {
			a, b := e.Points[j-1], e.Points[j]
			r.line(a.X*sx, a.Y*sy, b.X*sx, b.Y*sy, glyph, color, e.Opacity)
		}
	case entity.KindRadialBar:
		tx, ty := e.Tip()
		r.line(e.X*sx, e.Y*sy, tx*sx, ty*sy, glyph, color, e.Opacity)
	case entity.KindTextCopy:
		r.text(e, sx, sy, color)
	default:
		r.fillRect(e.X*sx, e.Y*sy, e.W*sx, e.H*sy, glyph, color, e.Opacity)
	}
}

// plot keeps the most opaque entity per cell.
func (r *Renderer) plot(x, y int, glyph rune, color int, weight float64) {
	if x < 0 || y < 0 || x >= r.cols || y >= r.rows {
		return
	}
	i := y*r.cols + x
	if weight < r.weights[i] {
		return
	}
	r.glyphs[i] = glyph
	r.colors[i] = color
	r.weights[i] = weight
}

func (r *Renderer) fillRect(x, y, w, h float64, glyph rune, color int, weight float64) {
	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	x1, y1 := int(math.Ceil(x+w)), int(math.Ceil(y+h))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	for cy := y0; cy < y1; cy++ {
		for cx := x0; cx < x1; cx++ {
			r.plot(cx, cy, glyph, color, weight)
		}
	}
}

func (r *Renderer) fillEllipse(x, y, w, h float64, glyph rune, color int, weight float64) {
	cx, cy := x+w/2, y+h/2
	rx, ry := w/2, h/2
	if rx < 0.5 || ry < 0.5 {
		r.plot(int(math.Floor(cx)), int(math.Floor(cy)), glyph, color, weight)
		return
	}
	for py := int(math.Floor(y)); py <= int(math.Ceil(y+h)); py++ {
		dy := (float64(py) + 0.5 - cy) / ry
		for px := int(math.Floor(x)); px <= int(math.Ceil(x+w)); px++ {
			dx := (float64(px) + 0.5 - cx) / rx
			if dx*dx+dy*dy <= 1 {
				r.plot(px, py, glyph, color, weight)
			}
		}
	}
}

func (r *Renderer) line(x0, y0, x1, y1 float64, glyph rune, color int, weight float64) {
	steps := int(math.Ceil(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))))
	if steps < 1 {
		steps = 1
	}
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		r.plot(int(math.Floor(x0+(x1-x0)*t)), int(math.Floor(y0+(y1-y0)*t)), glyph, color, weight)
	}
}

func (r *Renderer) text(e *entity.Entity, sx, sy float64, color int) {
	row := int(math.Floor((e.Y + e.H/2) * sy))
	col := int(math.Floor(e.X * sx))
	for _, ch := range e.Text {
		r.plot(col, row, ch, color, e.Opacity)
		col++
	}
}

func colorCode(index int) string {
	if index < 0 {
		index = 0
	} else if index >= len(precomputedANSI) {
		index = len(precomputedANSI) - 1
	}
	return precomputedANSI[index]
}

func rgbToANSI(r, g, b float64) int {
	r = clamp01(r)
	g = clamp01(g)
	b = clamp01(b)

	// Grayscale ramp for near-neutral colors
	if math.Abs(r-g) < 0.02 && math.Abs(g-b) < 0.02 {
		gray := int(clampFloat(math.Round(r*23), 0, 23))
		return 232 + gray
	}

	ri := int(clampFloat(r*5+0.5, 0, 5))
	gi := int(clampFloat(g*5+0.5, 0, 5))
	bi := int(clampFloat(b*5+0.5, 0, 5))

	return 16 + 36*ri + 6*gi + bi
}

func clamp01(v float64) float64 {
	return clampFloat(v, 0, 1)
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func (r *Renderer) buildStatus(f entity.Frame, fps float64) string {
	builder := &r.statusBuilder
	builder.Reset()
	builder.Grow(128)
	builder.WriteString(strings.ToUpper(f.Name))
	builder.WriteString(" [")
	builder.WriteString(strconv.Itoa(f.Preset))
	builder.WriteString("] | amp ")
	appendFloat(builder, f.Amplitude, 2)
	builder.WriteString(" phase ")
	appendFloat(builder, f.Phase, 2)
	builder.WriteString(" | entities ")
	builder.WriteString(strconv.Itoa(len(f.Entities)))
	builder.WriteString(" | palette=")
	builder.WriteString(r.paletteName)
	builder.WriteString(" fps ")
	appendFloat(builder, fps, 1)
	return builder.String()
}

func appendFloat(builder *strings.Builder, value float64, precision int) {
	var buf [32]byte
	b := strconv.AppendFloat(buf[:0], value, 'f', precision, 64)
	builder.Write(b)
}
