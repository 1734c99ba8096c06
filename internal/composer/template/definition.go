// Package template holds typed slide type definitions, either loaded from a
// template document or the code-defined built-in set.
package template

import (
	"fmt"

	"slide-composer/internal/composer/fitter"
	"slide-composer/internal/deck"
	"slide-composer/internal/models"
)

const (
	DefaultTypeID       = "text_content"
	DefaultCanvasWidth  = 10.0
	DefaultCanvasHeight = 7.5
)

type ElementKind string

const (
	ElementTextBox ElementKind = "textbox"
	ElementImage   ElementKind = "image"
	ElementShape   ElementKind = "shape"
)

type BackgroundKind string

const (
	BackgroundNone     BackgroundKind = ""
	BackgroundSolid    BackgroundKind = "solid"
	BackgroundGradient BackgroundKind = "gradient"
)

type Background struct {
	Kind  BackgroundKind
	Color deck.Color
	Start deck.Color
	End   deck.Color
}

// Fill returns the single color painted for the background. Gradients are
// approximated by the midpoint of their two endpoints.
func (b Background) Fill() (deck.Color, bool) {
	switch b.Kind {
	case BackgroundSolid:
		return b.Color, true
	case BackgroundGradient:
		return deck.Midpoint(b.Start, b.End), true
	default:
		return deck.Color{}, false
	}
}

// BulletLevel styles one list level: the glyph run and the text run.
// A zero TextSize defers to the bullet tier.
type BulletLevel struct {
	Glyph      string
	GlyphSize  float64
	GlyphColor deck.Color
	TextSize   float64
	TextColor  deck.Color
}

type ShrinkRule struct {
	Over        int
	FontSize    float64
	LineSpacing float64
	Orientation models.Orientation
}

type Style struct {
	Alignment          deck.Alignment
	FontSize           float64
	FontSizeHorizontal float64
	FontSizeVertical   float64
	Bold               bool
	Italic             bool
	Color              deck.Color
	LineSpacing        float64
	Fill               deck.Color
	Primary            BulletLevel
	Indent             BulletLevel
	Shrink             []ShrinkRule
}

// Steps returns the shrink rules that apply to an orientation, in order.
func (s Style) Steps(o models.Orientation) []fitter.Step {
	var out []fitter.Step
	for _, r := range s.Shrink {
		if r.Orientation != "" && r.Orientation != o {
			continue
		}
		out = append(out, fitter.Step{Over: r.Over, FontSize: r.FontSize, LineSpacing: r.LineSpacing})
	}
	return out
}

type Shift struct {
	Field string
	Over  int
	DY    float64
}

// Element is one declared visual element. Field names the record field it
// renders; image elements always read image_id.
type Element struct {
	Kind       ElementKind
	Field      string
	Position   *fitter.Rect
	Horizontal *fitter.Rect
	Vertical   *fitter.Rect
	Style      Style
	ShapeKind  string
	Requires   string
	Default    string
	Shift      *Shift
}

// PositionFor picks the frame for an orientation. The orientation-specific
// frame is only used when both variants are declared; otherwise the
// horizontal one wins, then the vertical one, then the generic position.
func (e Element) PositionFor(o models.Orientation) (fitter.Rect, bool) {
	if e.Horizontal != nil && e.Vertical != nil {
		if o == models.OrientationVertical {
			return *e.Vertical, true
		}
		return *e.Horizontal, true
	}
	for _, p := range []*fitter.Rect{e.Horizontal, e.Vertical, e.Position} {
		if p != nil {
			return *p, true
		}
	}
	return fitter.Rect{}, false
}

type SlideTypeDefinition struct {
	TypeID        string
	Name          string
	Description   string
	Instruction   string
	SchemaExample map[string]interface{}
	LayoutIndex   int
	Background    Background
	Elements      []Element
}

// TemplateDefinition is an immutable, ordered set of slide type definitions
// plus the canvas size in inches.
type TemplateDefinition struct {
	Name    string
	Version string
	Width   float64
	Height  float64
	types   []*SlideTypeDefinition
	index   map[string]*SlideTypeDefinition
}

func NewTemplateDefinition(name, version string, width, height float64, types []*SlideTypeDefinition) (*TemplateDefinition, error) {
	if width <= 0 {
		width = DefaultCanvasWidth
	}
	if height <= 0 {
		height = DefaultCanvasHeight
	}
	t := &TemplateDefinition{
		Name:    name,
		Version: version,
		Width:   width,
		Height:  height,
		types:   make([]*SlideTypeDefinition, 0, len(types)),
		index:   make(map[string]*SlideTypeDefinition, len(types)),
	}
	for _, def := range types {
		if def.TypeID == "" {
			return nil, fmt.Errorf("slide type without type_id")
		}
		if _, dup := t.index[def.TypeID]; dup {
			return nil, fmt.Errorf("duplicate type_id %q", def.TypeID)
		}
		t.types = append(t.types, def)
		t.index[def.TypeID] = def
	}
	return t, nil
}

// Definition returns the slide type registered under typeID.
func (t *TemplateDefinition) Definition(typeID string) (*SlideTypeDefinition, bool) {
	def, ok := t.index[typeID]
	return def, ok
}

// Types returns the definitions in declaration order.
func (t *TemplateDefinition) Types() []*SlideTypeDefinition {
	out := make([]*SlideTypeDefinition, len(t.types))
	copy(out, t.types)
	return out
}

func (t *TemplateDefinition) TypeIDs() []string {
	out := make([]string, len(t.types))
	for i, def := range t.types {
		out[i] = def.TypeID
	}
	return out
}

// Canvas returns the full-slide frame in inches.
func (t *TemplateDefinition) Canvas() fitter.Rect {
	return fitter.Rect{Width: t.Width, Height: t.Height}
}
