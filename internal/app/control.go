package app

import (
	"log"
	"math/rand"
	"strings"

	"github.com/guidoenr/pulsar/internal/engine"
	"github.com/guidoenr/pulsar/internal/render"
)

// controller maps key presses onto engine control calls. It is shared by the
// terminal keyboard listener and the SDL event loop.
type controller struct {
	engine   *engine.Engine
	renderer *render.Renderer
	rng      *rand.Rand
	log      *log.Logger
}

// handleKey applies one key and reports whether the app should quit.
func (c *controller) handleKey(ch rune) bool {
	switch {
	case ch >= '0' && ch <= '9':
		c.engine.SetPreset(int(ch - '0'))
	case ch == 'n' || ch == 'N':
		c.engine.SetPreset((c.engine.Preset() + 1) % c.engine.PresetCount())
	case ch == 'p' || ch == 'P':
		n := c.engine.PresetCount()
		c.engine.SetPreset((c.engine.Preset() - 1 + n) % n)
	case ch == ' ':
		if c.engine.IsRunning() {
			c.engine.Stop()
		} else {
			c.engine.Start()
		}
	case ch == 'r' || ch == 'R':
		c.randomize()
	case ch == 'q' || ch == 'Q':
		return true
	}
	return false
}

func (c *controller) randomize() {
	names := c.engine.PresetNames()
	name := pickRandom(names, c.engine.PresetName(), c.rng)
	for i, n := range names {
		if n == name {
			c.engine.SetPreset(i)
			break
		}
	}
	palette := ""
	if c.renderer != nil {
		palette = pickRandom(render.PaletteNames(), c.renderer.PaletteName(), c.rng)
		c.renderer.SetPalette(palette)
	}
	c.log.Printf("randomize -> preset=%s palette=%s", name, palette)
}

func pickRandom(options []string, current string, rng *rand.Rand) string {
	if len(options) == 0 {
		return current
	}
	if len(options) == 1 {
		return options[0]
	}
	for attempts := 0; attempts < 4; attempts++ {
		choice := options[rng.Intn(len(options))]
		if !strings.EqualFold(choice, current) {
			return choice
		}
	}
	for _, choice := range options {
		if !strings.EqualFold(choice, current) {
			return choice
		}
	}
	return current
}
