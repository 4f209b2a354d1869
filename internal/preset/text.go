package preset

import (
	"math"
	"math/rand"
	"unicode/utf8"

	"github.com/guidoenr/pulsar/internal/entity"
)

const textCopies = 10

var fontWeights = []int{400, 600, 700, 900}

func centerNamePreset(words []string) Preset {
	return Preset{
		Name:      "center-name",
		Increment: 0.05,
		layout: func(c entity.Size, rng *rand.Rand) *Store {
			return layoutCenterName(c, rng, words)
		},
		update: updateCenterName,
	}
}

// textExtent estimates the rendered box of a word at a font size.
func textExtent(text string, fontSize float64) (float64, float64) {
	return fontSize * 0.6 * float64(utf8.RuneCountInString(text)), fontSize * 1.2
}

func layoutCenterName(c entity.Size, rng *rand.Rand, words []string) *Store {
	n := len(words) * textCopies
	st := &Store{
		Entities: make([]entity.Entity, 0, n),
		Texts:    make([]TextState, 0, n),
	}
	cx, cy := c.Center()
	for _, word := range words {
		for k := 0; k < textCopies; k++ {
			fontSize := 24 + 48*rng.Float64()
			theta := rng.Float64() * tau
			speed := 1 + 3*rng.Float64()
			ts := TextState{
				VX:           math.Cos(theta) * speed,
				VY:           math.Sin(theta) * speed,
				BaseFontSize: fontSize,
				Weight:       fontWeights[rng.Intn(len(fontWeights))],
			}
			w, h := textExtent(word, fontSize)
			st.Texts = append(st.Texts, ts)
			st.Entities = append(st.Entities, entity.Entity{
				Kind:       entity.KindTextCopy,
				X:          cx - w/2,
				Y:          cy - h/2,
				W:          w,
				H:          h,
				Opacity:    1,
				Color:      entity.HSV(rng.Float64()*360, 0.75, 1),
				Text:       word,
				FontSize:   fontSize,
				FontWeight: ts.Weight,
			})
		}
	}
	return st
}

func updateCenterName(st *Store, phase, a float64, c entity.Size, rng *rand.Rand) {
	for i := range st.Texts {
		t := &st.Texts[i]
		e := &st.Entities[i]
		e.FontSize = t.BaseFontSize
		e.W, e.H = textExtent(e.Text, t.BaseFontSize)
		e.X += t.VX * 2 * a
		e.Y += t.VY * 2 * a
		e.X, t.VX = bounce(e.X, t.VX, math.Max(0, c.W-e.W))
		e.Y, t.VY = bounce(e.Y, t.VY, math.Max(0, c.H-e.H))
		e.Rotation = (rng.Float64() - 0.5) * 10 * a
	}
}
