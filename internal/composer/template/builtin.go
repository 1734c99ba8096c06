package template

import (
	"sync"

	"slide-composer/internal/composer/fitter"
	"slide-composer/internal/deck"
	"slide-composer/internal/models"
)

// Built-in slide kinds.
const (
	TypeOpening        = "opening"
	TypeSectionDivider = "section_divider"
	TypeTextContent    = "text_content"
	TypeImageWithText  = "image_with_text"
	TypeFullImage      = "full_image"
	TypeClosing        = "closing"
)

var (
	colorHeading = deck.Color{R: 0x2c, G: 0x3e, B: 0x50}
	colorAccent  = deck.Color{R: 0x46, G: 0x82, B: 0xb4}
	colorCaption = deck.Color{R: 0x7f, G: 0x8c, B: 0x8d}
)

var (
	builtinOnce sync.Once
	builtin     *TemplateDefinition
)

// Builtin returns the code-defined template holding the six built-in kinds.
// The returned value is shared and must not be modified.
func Builtin() *TemplateDefinition {
	builtinOnce.Do(func() {
		t, err := NewTemplateDefinition("builtin", "1.0", DefaultCanvasWidth, DefaultCanvasHeight, builtinTypes())
		if err != nil {
			panic(err)
		}
		builtin = t
	})
	return builtin
}

func rect(left, top, width, height float64) *fitter.Rect {
	return &fitter.Rect{Left: left, Top: top, Width: width, Height: height}
}

func gradient(start, end string) Background {
	return Background{Kind: BackgroundGradient, Start: mustColor(start), End: mustColor(end)}
}

func mustColor(s string) deck.Color {
	c, err := deck.ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// fitted turns a one-notch size threshold into a style.
func fitted(f fitter.TextFit, align deck.Alignment, bold bool, color deck.Color) Style {
	return Style{
		Alignment: align,
		FontSize:  f.Base,
		Bold:      bold,
		Color:     color,
		Shrink:    []ShrinkRule{{Over: f.Threshold, FontSize: f.Reduced}},
		Primary:   defaultPrimary,
		Indent:    defaultIndent,
	}
}

func builtinTypes() []*SlideTypeDefinition {
	return []*SlideTypeDefinition{
		{
			TypeID:        TypeOpening,
			Name:          "Opening",
			Description:   "Opening slide (gradient background)",
			Instruction:   "Use once, as the first slide, for the presentation title and subtitle.",
			SchemaExample: map[string]interface{}{"slide_type": TypeOpening, "title": "Main title", "subtitle": "Subtitle"},
			LayoutIndex:   deck.BlankLayout,
			Background:    gradient("#667eea", "#764ba2"),
			Elements: []Element{
				{Kind: ElementTextBox, Field: models.FieldTitle, Position: rect(0.5, 2.5, 9, 1.5),
					Style: fitted(fitter.OpeningTitle, deck.AlignCenter, true, deck.White)},
				{Kind: ElementTextBox, Field: models.FieldSubtitle, Position: rect(0.5, 4.5, 9, 1.2),
					Style: fitted(fitter.OpeningSubtitle, deck.AlignCenter, false, deck.White)},
			},
		},
		{
			TypeID:        TypeSectionDivider,
			Name:          "Section divider",
			Description:   "Section divider (gradient background)",
			Instruction:   "Use before each major topic with a short section title.",
			SchemaExample: map[string]interface{}{"slide_type": TypeSectionDivider, "section_title": "Section title"},
			LayoutIndex:   deck.BlankLayout,
			Background:    gradient("#4682b4", "#2c5f8d"),
			Elements: []Element{
				{Kind: ElementShape, Field: "decoration_top", ShapeKind: "rectangle", Position: rect(4, 2.6, 2, 0.04),
					Requires: models.FieldSectionTitle, Style: Style{Fill: deck.White}},
				{Kind: ElementTextBox, Field: models.FieldSectionTitle, Position: rect(0.8, 2.8, 8.4, 1.8),
					Style: fitted(fitter.SectionTitle, deck.AlignCenter, true, deck.White)},
				{Kind: ElementShape, Field: "decoration_bottom", ShapeKind: "rectangle", Position: rect(4, 4.0, 2, 0.04),
					Requires: models.FieldSectionTitle, Style: Style{Fill: deck.White},
					Shift: &Shift{Field: models.FieldSectionTitle, Over: 11, DY: 0.9}},
			},
		},
		{
			TypeID:      TypeTextContent,
			Name:        "Text content",
			Description: "Text slide with a bullet list (indent_levels: 0 = main point, 1 = sub point); keep to five bullets and split longer lists",
			Instruction: "Use for explanations and key points.",
			SchemaExample: map[string]interface{}{
				"slide_type":    TypeTextContent,
				"title":         "Slide title",
				"bullets":       []interface{}{"Point 1", "Point 2", "Point 3"},
				"indent_levels": []interface{}{0, 0, 1},
			},
			LayoutIndex: deck.BlankLayout,
			Elements: []Element{
				{Kind: ElementTextBox, Field: models.FieldTitle, Position: rect(0.6, 0.6, 8.8, 0.8),
					Style: Style{Alignment: deck.AlignCenter, FontSize: fitter.ContentTitleSize, Bold: true, Color: colorHeading}},
				{Kind: ElementShape, Field: "title_underline", ShapeKind: "rectangle", Position: rect(0.6, 1.35, 8.8, 0.05),
					Requires: models.FieldTitle, Style: Style{Fill: colorAccent},
					Shift: &Shift{Field: models.FieldTitle, Over: 16, DY: 0.6}},
				{Kind: ElementTextBox, Field: models.FieldBullets, Position: rect(1.0, 1.8, 8.0, 5.4),
					Style: Style{Alignment: deck.AlignLeft, Primary: defaultPrimary, Indent: defaultIndent},
					Shift: &Shift{Field: models.FieldTitle, Over: 16, DY: 0.6}},
			},
		},
		{
			TypeID:      TypeImageWithText,
			Name:        "Image with text",
			Description: "Image with explanatory text (layout: horizontal = image left, text right; vertical = image above text)",
			Instruction: "Use when an image needs a paragraph of explanation.",
			SchemaExample: map[string]interface{}{
				"slide_type": TypeImageWithText,
				"title":      "Title",
				"image_id":   "img_01",
				"text":       "Explanatory text",
				"layout":     "horizontal",
			},
			LayoutIndex: deck.BlankLayout,
			Elements: []Element{
				{Kind: ElementTextBox, Field: models.FieldTitle, Position: rect(0.6, 0.5, 8.8, 0.75),
					Style: fitted(fitter.ImageTitle, deck.AlignCenter, true, colorHeading)},
				{Kind: ElementImage, Field: "image", Horizontal: rect(0.7, 2.5, 4.4, 5.0), Vertical: rect(1.0, 2.5, 8.0, 3.2)},
				{Kind: ElementTextBox, Field: models.FieldText, Horizontal: rect(5.35, 2.2, 4.0, 5.0), Vertical: rect(1, 5.5, 8, 1.7),
					Style: Style{
						Alignment:          deck.AlignLeft,
						FontSizeHorizontal: 21,
						FontSizeVertical:   19,
						Color:              colorHeading,
						Shrink: []ShrinkRule{
							{Over: 200, FontSize: 19, LineSpacing: 1.5, Orientation: models.OrientationHorizontal},
							{Over: 150, FontSize: 20, LineSpacing: 1.55, Orientation: models.OrientationHorizontal},
							{Over: -1, FontSize: 21, LineSpacing: 1.6, Orientation: models.OrientationHorizontal},
							{Over: 150, FontSize: 18, LineSpacing: 1.4, Orientation: models.OrientationVertical},
							{Over: -1, FontSize: 19, LineSpacing: 1.5, Orientation: models.OrientationVertical},
						},
					}},
			},
		},
		{
			TypeID:      TypeFullImage,
			Name:        "Full image",
			Description: "Large image with a caption",
			Instruction: "Use to showcase a single important image.",
			SchemaExample: map[string]interface{}{
				"slide_type": TypeFullImage,
				"title":      "Title",
				"image_id":   "img_02",
				"caption":    "Image caption",
			},
			LayoutIndex: deck.BlankLayout,
			Elements: []Element{
				{Kind: ElementTextBox, Field: models.FieldTitle, Position: rect(1, 0.5, 8, 0.75),
					Style: fitted(fitter.ImageTitle, deck.AlignCenter, true, colorHeading)},
				{Kind: ElementImage, Field: "image", Position: rect(1.25, 1.9, 7.5, 4.2)},
				{Kind: ElementTextBox, Field: models.FieldCaption, Position: rect(0.8, 6.5, 8.4, 0.7),
					Style: fitted(fitter.Caption, deck.AlignCenter, false, colorCaption)},
			},
		},
		{
			TypeID:        TypeClosing,
			Name:          "Closing",
			Description:   "Closing slide (gradient background)",
			Instruction:   "Use once, as the last slide.",
			SchemaExample: map[string]interface{}{"slide_type": TypeClosing, "closing_text": "Thank You", "subtext": ""},
			LayoutIndex:   deck.BlankLayout,
			Background:    gradient("#f093fb", "#f5576c"),
			Elements: []Element{
				{Kind: ElementTextBox, Field: models.FieldClosingText, Default: "Thank You", Position: rect(0.5, 2.5, 9, 1.8),
					Style: fitted(fitter.ClosingText, deck.AlignCenter, true, deck.White)},
				{Kind: ElementTextBox, Field: models.FieldSubtext, Position: rect(0.5, 4.5, 9, 1.0),
					Style: fitted(fitter.ClosingSubtext, deck.AlignCenter, false, deck.White)},
			},
		},
	}
}
