package deck

// BlankLayout selects a layout without placeholders.
const BlankLayout = -1

// Deck is the presentation object graph produced by the deck backend.
type Deck struct {
	Width   int64
	Height  int64
	Layouts []*Layout
	Slides  []*Slide
}

// Layout is a master layout; its placeholders are copied onto new slides.
type Layout struct {
	Name         string
	Placeholders []PlaceholderSpec
}

type PlaceholderSpec struct {
	Role  PlaceholderRole
	Index int
	Box   Box
}

// New creates an empty deck with the given canvas size in inches and a
// single blank layout.
func New(widthIn, heightIn float64) *Deck {
	return &Deck{
		Width:   Inch(widthIn),
		Height:  Inch(heightIn),
		Layouts: []*Layout{{Name: "Blank"}},
	}
}

// CanvasBox covers the whole slide.
func (d *Deck) CanvasBox() Box {
	return Box{W: d.Width, H: d.Height}
}

// NewSlide builds a detached slide from a layout. An index outside the
// layout list falls back to layout 0 and reports ok=false. BlankLayout
// yields a slide without placeholders.
func (d *Deck) NewSlide(layoutIndex int) (s *Slide, ok bool) {
	if layoutIndex == BlankLayout {
		return &Slide{Layout: BlankLayout}, true
	}
	ok = true
	if layoutIndex < 0 || layoutIndex >= len(d.Layouts) {
		layoutIndex = 0
		ok = false
	}
	s = &Slide{Layout: layoutIndex}
	if len(d.Layouts) == 0 {
		return s, false
	}
	for _, spec := range d.Layouts[layoutIndex].Placeholders {
		s.Shapes = append(s.Shapes, &Placeholder{
			baseShape: baseShape{name: string(spec.Role), box: spec.Box},
			Role:      spec.Role,
			Index:     spec.Index,
		})
	}
	return s, ok
}

// Append attaches a finished slide to the deck.
func (d *Deck) Append(s *Slide) {
	d.Slides = append(d.Slides, s)
}

type Slide struct {
	Layout int
	Shapes []Shape
}

func (s *Slide) AddTextBox(name string, box Box) *TextBox {
	tb := &TextBox{baseShape: baseShape{name: name, box: box}}
	s.Shapes = append(s.Shapes, tb)
	return tb
}

func (s *Slide) AddPicture(name, path string, box Box) *Picture {
	p := &Picture{baseShape: baseShape{name: name, box: box}, Path: path}
	s.Shapes = append(s.Shapes, p)
	return p
}

func (s *Slide) AddRectangle(name string, box Box, fill Color) *Rectangle {
	r := &Rectangle{baseShape: baseShape{name: name, box: box}, Fill: fill}
	s.Shapes = append(s.Shapes, r)
	return r
}

// Placeholders returns the slide's placeholders in shape order.
func (s *Slide) Placeholders() []*Placeholder {
	var out []*Placeholder
	for _, sh := range s.Shapes {
		if p, ok := sh.(*Placeholder); ok {
			out = append(out, p)
		}
	}
	return out
}

// TextBoxes returns the slide's text boxes in shape order.
func (s *Slide) TextBoxes() []*TextBox {
	var out []*TextBox
	for _, sh := range s.Shapes {
		if tb, ok := sh.(*TextBox); ok {
			out = append(out, tb)
		}
	}
	return out
}

// Pictures returns the slide's pictures in shape order.
func (s *Slide) Pictures() []*Picture {
	var out []*Picture
	for _, sh := range s.Shapes {
		if p, ok := sh.(*Picture); ok {
			out = append(out, p)
		}
	}
	return out
}
