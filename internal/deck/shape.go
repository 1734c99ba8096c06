package deck

import "strings"

// ShapeKind identifies the concrete shape type.
type ShapeKind string

const (
	KindTextBox     ShapeKind = "textbox"
	KindPicture     ShapeKind = "picture"
	KindRectangle   ShapeKind = "rectangle"
	KindPlaceholder ShapeKind = "placeholder"
)

// Shape is implemented by every element placed on a slide.
type Shape interface {
	Kind() ShapeKind
	Name() string
	Bounds() Box
}

type baseShape struct {
	name string
	box  Box
}

func (b *baseShape) Name() string { return b.name }
func (b *baseShape) Bounds() Box  { return b.box }

type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

// ParseAlignment maps a template alignment keyword, defaulting to left.
func ParseAlignment(s string) Alignment {
	switch Alignment(strings.ToLower(strings.TrimSpace(s))) {
	case AlignCenter:
		return AlignCenter
	case AlignRight:
		return AlignRight
	case AlignJustify:
		return AlignJustify
	default:
		return AlignLeft
	}
}

// Font sizes are in points.
type Font struct {
	Size   float64 `json:"size"`
	Bold   bool    `json:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty"`
	Color  Color   `json:"color"`
}

type Run struct {
	Text string `json:"text"`
	Font Font   `json:"font"`
}

// Paragraph spacing: LineSpacing is a multiplier, SpaceAfter is in points.
type Paragraph struct {
	Runs        []Run     `json:"runs"`
	Align       Alignment `json:"align"`
	Level       int       `json:"level,omitempty"`
	LineSpacing float64   `json:"lineSpacing,omitempty"`
	SpaceAfter  float64   `json:"spaceAfter,omitempty"`
}

// Text concatenates the paragraph's runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

type TextFrame struct {
	Paragraphs []*Paragraph `json:"paragraphs"`
}

// Text joins paragraph texts with newlines.
func (f *TextFrame) Text() string {
	lines := make([]string, len(f.Paragraphs))
	for i, p := range f.Paragraphs {
		lines[i] = p.Text()
	}
	return strings.Join(lines, "\n")
}

type TextBox struct {
	baseShape
	Frame TextFrame
}

func (t *TextBox) Kind() ShapeKind { return KindTextBox }

// AddParagraph appends a paragraph and returns it.
func (t *TextBox) AddParagraph(p *Paragraph) *Paragraph {
	t.Frame.Paragraphs = append(t.Frame.Paragraphs, p)
	return p
}

type Picture struct {
	baseShape
	Path string
}

func (p *Picture) Kind() ShapeKind { return KindPicture }

type Rectangle struct {
	baseShape
	Fill Color
}

func (r *Rectangle) Kind() ShapeKind { return KindRectangle }

// PlaceholderRole mirrors the native placeholder types of a layout.
type PlaceholderRole string

const (
	RoleTitle    PlaceholderRole = "title"
	RoleCtrTitle PlaceholderRole = "ctrTitle"
	RoleSubTitle PlaceholderRole = "subTitle"
	RoleBody     PlaceholderRole = "body"
	RoleObject   PlaceholderRole = "obj"
	RolePicture  PlaceholderRole = "pic"
	RoleDate     PlaceholderRole = "dt"
	RoleFooter   PlaceholderRole = "ftr"
	RoleSlideNum PlaceholderRole = "sldNum"
)

// IsTitle reports whether the role receives the slide title.
func (r PlaceholderRole) IsTitle() bool { return r == RoleTitle || r == RoleCtrTitle }

func (r PlaceholderRole) IsSubtitle() bool { return r == RoleSubTitle }

// IsBody reports whether the role receives body content.
func (r PlaceholderRole) IsBody() bool { return r == RoleBody || r == RoleObject }

func (r PlaceholderRole) IsPicture() bool { return r == RolePicture }

func (r PlaceholderRole) Valid() bool {
	switch r {
	case RoleTitle, RoleCtrTitle, RoleSubTitle, RoleBody, RoleObject, RolePicture, RoleDate, RoleFooter, RoleSlideNum:
		return true
	default:
		return false
	}
}

// Placeholder is a native layout placeholder instantiated on a slide.
type Placeholder struct {
	baseShape
	Role      PlaceholderRole
	Index     int
	Frame     TextFrame
	ImagePath string
}

func (p *Placeholder) Kind() ShapeKind { return KindPlaceholder }

// SetParagraphs replaces the placeholder text.
func (p *Placeholder) SetParagraphs(paragraphs []*Paragraph) {
	p.Frame.Paragraphs = paragraphs
}

// SetPicture places an image into a picture placeholder.
func (p *Placeholder) SetPicture(path string) {
	p.ImagePath = path
}

// Filled reports whether the placeholder carries any content.
func (p *Placeholder) Filled() bool {
	return p.ImagePath != "" || len(p.Frame.Paragraphs) > 0
}
