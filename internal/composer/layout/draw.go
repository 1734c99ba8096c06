package layout

import (
	"slide-composer/internal/composer/fitter"
	"slide-composer/internal/composer/template"
	"slide-composer/internal/deck"
)

// Draw builds a detached deck slide from the resolved elements. The
// background is painted first, covering the whole canvas.
func (s *Slide) Draw(d *deck.Deck) *deck.Slide {
	slide, _ := d.NewSlide(deck.BlankLayout)
	if s.Background != nil {
		slide.AddRectangle("background", d.CanvasBox(), *s.Background)
	}
	for _, el := range s.Elements {
		box := toBox(el.Frame)
		switch el.Kind {
		case template.ElementTextBox:
			tb := slide.AddTextBox(el.Name, box)
			for _, p := range el.Paragraphs {
				tb.AddParagraph(p)
			}
		case template.ElementImage:
			slide.AddPicture(el.Name, el.ImagePath, box)
		case template.ElementShape:
			slide.AddRectangle(el.Name, box, el.Fill)
		}
	}
	return slide
}

func toBox(r fitter.Rect) deck.Box {
	return deck.BoxFromInches(r.Left, r.Top, r.Width, r.Height)
}
