package web

import "github.com/guidoenr/pulsar/internal/entity"

// wireFrame is the JSON shape pushed over /ws.
type wireFrame struct {
	Tick      uint64       `json:"tick"`
	Preset    int          `json:"preset"`
	Name      string       `json:"name"`
	Phase     float64      `json:"phase"`
	Amplitude float64      `json:"amplitude"`
	Width     float64      `json:"width"`
	Height    float64      `json:"height"`
	Entities  []wireEntity `json:"entities"`
}

type wireEntity struct {
	Kind       string       `json:"kind"`
	X          float64      `json:"x"`
	Y          float64      `json:"y"`
	W          float64      `json:"w"`
	H          float64      `json:"h"`
	Opacity    float64      `json:"opacity"`
	Color      string       `json:"color"`
	Rotation   float64      `json:"rotation,omitempty"`
	Stroke     float64      `json:"stroke,omitempty"`
	Points     [][2]float64 `json:"points,omitempty"`
	Text       string       `json:"text,omitempty"`
	FontSize   float64      `json:"fontSize,omitempty"`
	FontWeight int          `json:"fontWeight,omitempty"`
}

// fill copies f into w, reusing w's entity and point storage.
func (w *wireFrame) fill(f entity.Frame) {
	w.Tick = f.Tick
	w.Preset = f.Preset
	w.Name = f.Name
	w.Phase = f.Phase
	w.Amplitude = f.Amplitude
	w.Width = f.Canvas.W
	w.Height = f.Canvas.H

	if cap(w.Entities) < len(f.Entities) {
		w.Entities = make([]wireEntity, len(f.Entities))
	}
	w.Entities = w.Entities[:len(f.Entities)]

	for i := range f.Entities {
		e := &f.Entities[i]
		out := &w.Entities[i]
		pts := out.Points[:0]
		*out = wireEntity{
			Kind:       e.Kind.String(),
			X:          e.X,
			Y:          e.Y,
			W:          e.W,
			H:          e.H,
			Opacity:    e.Opacity,
			Color:      e.Color.Hex(),
			Rotation:   e.Rotation,
			Stroke:     e.StrokeWidth,
			Text:       e.Text,
			FontSize:   e.FontSize,
			FontWeight: e.FontWeight,
		}
		for _, p := range e.Points {
			pts = append(pts, [2]float64{p.X, p.Y})
		}
		if len(pts) > 0 {
			out.Points = pts
		}
	}
}
