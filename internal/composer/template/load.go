package template

import (
	"errors"
	"fmt"
	"os"
	"strings"

	apperrors "slide-composer/internal/common/errors"
	"slide-composer/internal/composer/fitter"
	"slide-composer/internal/deck"
	"slide-composer/internal/models"
	"slide-composer/pkg/templatedoc"
)

const epsilon = 1e-9

// Default bullet glyphs used when a template does not declare its own.
var (
	defaultPrimary = BulletLevel{
		Glyph:      "▶",
		GlyphSize:  26,
		GlyphColor: deck.Color{R: 0x46, G: 0x82, B: 0xB4},
		TextColor:  deck.Color{R: 0x34, G: 0x49, B: 0x5E},
	}
	defaultIndent = BulletLevel{
		Glyph:      "▸",
		GlyphSize:  20,
		GlyphColor: deck.Color{R: 0x64, G: 0x64, B: 0x64},
		TextColor:  deck.Color{R: 0x55, G: 0x55, B: 0x55},
	}
)

// Load reads a template document. A missing source or a structurally invalid
// document yields a fatal configuration error.
func Load(path string) (*TemplateDefinition, error) {
	doc, err := templatedoc.LoadDocument(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewTemplateNotFoundError(path, err)
		}
		return nil, apperrors.NewTemplateInvalidError(path, err.Error())
	}
	return FromDocument(path, doc)
}

// Parse decodes a template document held in memory.
func Parse(source string, data []byte) (*TemplateDefinition, error) {
	doc, err := templatedoc.ParseDocument(data)
	if err != nil {
		return nil, apperrors.NewTemplateInvalidError(source, err.Error())
	}
	return FromDocument(source, doc)
}

// FromDocument types a validated document. Missing canvas dimensions fall
// back to 10 x 7.5 inches.
func FromDocument(source string, doc *templatedoc.Document) (*TemplateDefinition, error) {
	width := doc.TemplateInfo.SlideWidth
	if width <= 0 {
		width = DefaultCanvasWidth
	}
	height := doc.TemplateInfo.SlideHeight
	if height <= 0 {
		height = DefaultCanvasHeight
	}

	types := make([]*SlideTypeDefinition, 0, len(doc.SlideTypes))
	for i, st := range doc.SlideTypes {
		def, err := convertSlideType(st, width, height)
		if err != nil {
			return nil, apperrors.NewTemplateInvalidError(source, fmt.Sprintf("slide_types[%d] (%s): %v", i, st.TypeID, err))
		}
		types = append(types, def)
	}

	name := doc.TemplateInfo.Name
	if name == "" {
		name = "Unknown"
	}
	t, err := NewTemplateDefinition(name, doc.TemplateInfo.Version, width, height, types)
	if err != nil {
		return nil, apperrors.NewTemplateInvalidError(source, err.Error())
	}
	return t, nil
}

func convertSlideType(st templatedoc.SlideType, width, height float64) (*SlideTypeDefinition, error) {
	layout := st.EffectiveLayout()

	def := &SlideTypeDefinition{
		TypeID:        st.TypeID,
		Name:          st.Name,
		Description:   st.Description,
		Instruction:   st.LLMInstruction,
		SchemaExample: st.JSONSchema,
		LayoutIndex:   int(layout.LayoutIndex),
	}
	if layout.LayoutIndex == templatedoc.BlankIndex {
		def.LayoutIndex = deck.BlankLayout
	}
	if def.Name == "" {
		def.Name = st.TypeID
	}

	if layout.Background != nil {
		bg, err := convertBackground(*layout.Background)
		if err != nil {
			return nil, err
		}
		def.Background = bg
	}

	for j, el := range layout.Elements {
		converted, err := convertElement(el, width, height)
		if err != nil {
			return nil, fmt.Errorf("elements[%d] (%s): %w", j, el.Name, err)
		}
		def.Elements = append(def.Elements, converted)
	}
	return def, nil
}

func convertBackground(bg templatedoc.Background) (Background, error) {
	switch BackgroundKind(bg.Type) {
	case BackgroundSolid:
		c, err := colorOr(bg.Color, deck.White)
		if err != nil {
			return Background{}, fmt.Errorf("background color: %w", err)
		}
		return Background{Kind: BackgroundSolid, Color: c}, nil
	case BackgroundGradient:
		start, err := colorOr(bg.ColorStart, deck.White)
		if err != nil {
			return Background{}, fmt.Errorf("background color_start: %w", err)
		}
		end, err := colorOr(bg.ColorEnd, deck.White)
		if err != nil {
			return Background{}, fmt.Errorf("background color_end: %w", err)
		}
		return Background{Kind: BackgroundGradient, Start: start, End: end}, nil
	default:
		return Background{}, fmt.Errorf("unsupported background type %q", bg.Type)
	}
}

func convertElement(el templatedoc.Element, width, height float64) (Element, error) {
	out := Element{
		Kind:      ElementKind(el.Type),
		Field:     el.Name,
		ShapeKind: el.ShapeType,
		Requires:  el.Requires,
		Default:   el.Default,
	}

	var err error
	if out.Position, err = convertPosition(el.Position, width, height); err != nil {
		return Element{}, fmt.Errorf("position: %w", err)
	}
	if out.Horizontal, err = convertPosition(el.PositionHorizontal, width, height); err != nil {
		return Element{}, fmt.Errorf("position_horizontal: %w", err)
	}
	if out.Vertical, err = convertPosition(el.PositionVertical, width, height); err != nil {
		return Element{}, fmt.Errorf("position_vertical: %w", err)
	}
	if out.Kind == ElementShape && out.ShapeKind == "" {
		out.ShapeKind = "rectangle"
	}

	style := templatedoc.Style{}
	if el.Style != nil {
		style = *el.Style
	}
	if out.Style, err = convertStyle(style); err != nil {
		return Element{}, fmt.Errorf("style: %w", err)
	}

	if el.Shift != nil {
		out.Shift = &Shift{Field: el.Shift.Field, Over: el.Shift.Over, DY: el.Shift.DY}
	}
	return out, nil
}

func convertPosition(p *templatedoc.Position, width, height float64) (*fitter.Rect, error) {
	if p == nil {
		return nil, nil
	}
	r := fitter.Rect{Left: p.Left, Top: p.Top, Width: p.EffectiveWidth(), Height: p.EffectiveHeight()}
	if r.Left < 0 || r.Top < 0 || r.Width < 0 || r.Height < 0 {
		return nil, fmt.Errorf("negative geometry %+v", r)
	}
	if r.Left+r.Width > width+epsilon || r.Top+r.Height > height+epsilon {
		return nil, fmt.Errorf("frame %+v exceeds canvas %gx%g", r, width, height)
	}
	return &r, nil
}

func convertStyle(s templatedoc.Style) (Style, error) {
	out := Style{
		Alignment:          deck.ParseAlignment(s.Alignment),
		FontSize:           s.FontSize,
		FontSizeHorizontal: s.FontSizeHorizontal,
		FontSizeVertical:   s.FontSizeVertical,
		Bold:               s.FontBold,
		Italic:             s.FontItalic,
		LineSpacing:        s.LineSpacing,
		Primary:            defaultPrimary,
		Indent:             defaultIndent,
	}

	colors := []struct {
		raw string
		dst *deck.Color
		def deck.Color
	}{
		{s.FontColor, &out.Color, deck.Black},
		{s.FillColor, &out.Fill, deck.White},
		{s.BulletColorBase, &out.Primary.GlyphColor, defaultPrimary.GlyphColor},
		{s.BulletColorIndent, &out.Indent.GlyphColor, defaultIndent.GlyphColor},
		{s.FontColorBase, &out.Primary.TextColor, defaultPrimary.TextColor},
		{s.FontColorIndent, &out.Indent.TextColor, defaultIndent.TextColor},
	}
	for _, c := range colors {
		v, err := colorOr(c.raw, c.def)
		if err != nil {
			return Style{}, err
		}
		*c.dst = v
	}

	if s.BulletSymbolBase != "" {
		out.Primary.Glyph = s.BulletSymbolBase
	}
	if s.BulletSymbolIndent != "" {
		out.Indent.Glyph = s.BulletSymbolIndent
	}
	if s.BulletSizeBase > 0 {
		out.Primary.GlyphSize = s.BulletSizeBase
	}
	if s.BulletSizeIndent > 0 {
		out.Indent.GlyphSize = s.BulletSizeIndent
	}
	out.Primary.TextSize = s.FontSizeBase
	out.Indent.TextSize = s.FontSizeIndent

	for _, r := range s.Shrink {
		o := models.Orientation(strings.ToLower(r.Layout))
		if o != "" && o != models.OrientationHorizontal && o != models.OrientationVertical {
			return Style{}, fmt.Errorf("shrink layout %q", r.Layout)
		}
		out.Shrink = append(out.Shrink, ShrinkRule{Over: r.Over, FontSize: r.FontSize, LineSpacing: r.LineSpacing, Orientation: o})
	}
	return out, nil
}

func colorOr(raw string, def deck.Color) (deck.Color, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return deck.ParseColor(raw)
}
