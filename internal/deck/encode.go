package deck

import (
	"encoding/json"
)

type deckJSON struct {
	Width  int64       `json:"width"`
	Height int64       `json:"height"`
	Slides []slideJSON `json:"slides"`
}

type slideJSON struct {
	Layout int         `json:"layout"`
	Shapes []shapeJSON `json:"shapes"`
}

type shapeJSON struct {
	Kind       ShapeKind    `json:"kind"`
	Name       string       `json:"name"`
	Box        Box          `json:"box"`
	Role       string       `json:"role,omitempty"`
	Index      int          `json:"idx,omitempty"`
	Path       string       `json:"path,omitempty"`
	Fill       *Color       `json:"fill,omitempty"`
	Paragraphs []*Paragraph `json:"paragraphs,omitempty"`
}

// MarshalJSON encodes the deck with shapes in insertion order, so equal
// decks always produce identical bytes.
func (d *Deck) MarshalJSON() ([]byte, error) {
	out := deckJSON{Width: d.Width, Height: d.Height, Slides: make([]slideJSON, 0, len(d.Slides))}
	for _, s := range d.Slides {
		sj := slideJSON{Layout: s.Layout, Shapes: make([]shapeJSON, 0, len(s.Shapes))}
		for _, sh := range s.Shapes {
			sj.Shapes = append(sj.Shapes, encodeShape(sh))
		}
		out.Slides = append(out.Slides, sj)
	}
	return json.Marshal(out)
}

func encodeShape(sh Shape) shapeJSON {
	js := shapeJSON{Kind: sh.Kind(), Name: sh.Name(), Box: sh.Bounds()}
	switch v := sh.(type) {
	case *TextBox:
		js.Paragraphs = v.Frame.Paragraphs
	case *Picture:
		js.Path = v.Path
	case *Rectangle:
		fill := v.Fill
		js.Fill = &fill
	case *Placeholder:
		js.Role = string(v.Role)
		js.Index = v.Index
		js.Path = v.ImagePath
		js.Paragraphs = v.Frame.Paragraphs
	}
	return js
}
