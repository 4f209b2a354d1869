package render

import "sort"

// Glyph ramps ordered from faint to solid. Index 0 is never drawn for a
// visible entity.
var palettes = map[string][]rune{
	"default": []rune(" .:-=+*#%@"),
	"blocks":  []rune(" ░▒▓█"),
	"dots":    []rune(" ·•●"),
	"ascii":   []rune(" .oO@"),
}

// Palette returns the glyph ramp for name, falling back to "default".
func Palette(name string) []rune {
	if p, ok := palettes[name]; ok {
		return p
	}
	return palettes["default"]
}

// PaletteNames returns all palette identifiers.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// glyphFor picks the ramp glyph for an opacity, never the blank slot.
func glyphFor(palette []rune, opacity float64) rune {
	if len(palette) < 2 {
		return '#'
	}
	idx := 1 + int(clamp01(opacity)*float64(len(palette)-2)+0.5)
	if idx >= len(palette) {
		idx = len(palette) - 1
	}
	return palette[idx]
}
