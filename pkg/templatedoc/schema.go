// pkg/templatedoc/schema.go
package templatedoc

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Document struct {
	TemplateInfo TemplateInfo `json:"template_info"`
	SlideTypes   []SlideType  `json:"slide_types"`
}

type TemplateInfo struct {
	Name        string  `json:"name"`
	Version     string  `json:"version"`
	SlideWidth  float64 `json:"slide_width,omitempty"`
	SlideHeight float64 `json:"slide_height,omitempty"`
}

type SlideType struct {
	TypeID         string                 `json:"type_id"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	LLMInstruction string                 `json:"llm_instruction"`
	JSONSchema     map[string]interface{} `json:"json_schema"`
	Layout         *Layout                `json:"layout,omitempty"`
	PPTXLayout     *Layout                `json:"pptx_layout,omitempty"`
}

// EffectiveLayout returns the layout block, accepting the legacy
// pptx_layout key when layout is absent. A type with neither uses
// DefaultLayoutIndex.
func (s SlideType) EffectiveLayout() Layout {
	switch {
	case s.Layout != nil:
		return *s.Layout
	case s.PPTXLayout != nil:
		return *s.PPTXLayout
	default:
		return Layout{LayoutIndex: DefaultLayoutIndex}
	}
}

type Layout struct {
	LayoutIndex LayoutIndex `json:"layout_index"`
	Background  *Background `json:"background,omitempty"`
	Elements    []Element   `json:"elements"`
}

func (l *Layout) UnmarshalJSON(data []byte) error {
	type plain Layout
	out := plain{LayoutIndex: DefaultLayoutIndex}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*l = Layout(out)
	return nil
}

const (
	// BlankIndex is the layout index meaning "no master layout".
	BlankIndex LayoutIndex = -1
	// DefaultLayoutIndex applies when layout_index is omitted: the blank
	// slide of a standard master. Skeletons with fewer layouts fall back to
	// layout 0.
	DefaultLayoutIndex LayoutIndex = 6
)

// LayoutIndex is an integer or the string "blank".
type LayoutIndex int

func (i LayoutIndex) MarshalJSON() ([]byte, error) {
	if i == BlankIndex {
		return []byte(`"blank"`), nil
	}
	return json.Marshal(int(i))
}

func (i *LayoutIndex) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if strings.EqualFold(s, "blank") {
			*i = BlankIndex
			return nil
		}
		return fmt.Errorf("layout_index: unsupported value %q", s)
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("layout_index: %w", err)
	}
	*i = LayoutIndex(n)
	return nil
}

type Background struct {
	Type       string `json:"type"`
	Color      string `json:"color,omitempty"`
	ColorStart string `json:"color_start,omitempty"`
	ColorEnd   string `json:"color_end,omitempty"`
}

type Element struct {
	Type               string    `json:"type"`
	Name               string    `json:"name"`
	Position           *Position `json:"position,omitempty"`
	PositionHorizontal *Position `json:"position_horizontal,omitempty"`
	PositionVertical   *Position `json:"position_vertical,omitempty"`
	Style              *Style    `json:"style,omitempty"`
	ShapeType          string    `json:"shape_type,omitempty"`
	Requires           string    `json:"requires,omitempty"`
	Default            string    `json:"default,omitempty"`
	Shift              *Shift    `json:"shift,omitempty"`
}

// Position is in inches. max_width and max_height stand in for width and
// height when those are absent.
type Position struct {
	Left      float64 `json:"left"`
	Top       float64 `json:"top"`
	Width     float64 `json:"width,omitempty"`
	Height    float64 `json:"height,omitempty"`
	MaxWidth  float64 `json:"max_width,omitempty"`
	MaxHeight float64 `json:"max_height,omitempty"`
}

func (p Position) EffectiveWidth() float64 {
	if p.Width > 0 {
		return p.Width
	}
	return p.MaxWidth
}

func (p Position) EffectiveHeight() float64 {
	if p.Height > 0 {
		return p.Height
	}
	return p.MaxHeight
}

// Shift moves an element down by DY inches when Field is longer than Over
// characters.
type Shift struct {
	Field string  `json:"field"`
	Over  int     `json:"over"`
	DY    float64 `json:"dy"`
}

type Style struct {
	Alignment          string       `json:"alignment,omitempty"`
	FontSize           float64      `json:"font_size,omitempty"`
	FontSizeHorizontal float64      `json:"font_size_horizontal,omitempty"`
	FontSizeVertical   float64      `json:"font_size_vertical,omitempty"`
	FontBold           bool         `json:"font_bold,omitempty"`
	FontItalic         bool         `json:"font_italic,omitempty"`
	FontColor          string       `json:"font_color,omitempty"`
	LineSpacing        float64      `json:"line_spacing,omitempty"`
	FillColor          string       `json:"fill_color,omitempty"`
	BulletSymbolBase   string       `json:"bullet_symbol_base,omitempty"`
	BulletSymbolIndent string       `json:"bullet_symbol_indent,omitempty"`
	BulletSizeBase     float64      `json:"bullet_size_base,omitempty"`
	BulletSizeIndent   float64      `json:"bullet_size_indent,omitempty"`
	BulletColorBase    string       `json:"bullet_color_base,omitempty"`
	BulletColorIndent  string       `json:"bullet_color_indent,omitempty"`
	FontSizeBase       float64      `json:"font_size_base,omitempty"`
	FontSizeIndent     float64      `json:"font_size_indent,omitempty"`
	FontColorBase      string       `json:"font_color_base,omitempty"`
	FontColorIndent    string       `json:"font_color_indent,omitempty"`
	Shrink             []ShrinkRule `json:"shrink,omitempty"`
}

// ShrinkRule applies when the text is longer than Over characters.
// An empty Layout matches both orientations; Over -1 always matches.
type ShrinkRule struct {
	Over        int     `json:"over"`
	FontSize    float64 `json:"font_size"`
	LineSpacing float64 `json:"line_spacing,omitempty"`
	Layout      string  `json:"layout,omitempty"`
}
