// Package layout resolves a slide type definition against one slide record
// into positioned, styled elements, independent of the output backend.
package layout

import (
	"math"

	apperrors "slide-composer/internal/common/errors"
	"slide-composer/internal/common/logger"
	"slide-composer/internal/composer/fitter"
	"slide-composer/internal/composer/imageres"
	"slide-composer/internal/composer/template"
	"slide-composer/internal/deck"
	"slide-composer/internal/models"
)

// Element is a resolved element. Only the fields matching Kind are set.
type Element struct {
	Kind       template.ElementKind
	Name       string
	Frame      fitter.Rect
	Paragraphs []*deck.Paragraph
	ImagePath  string
	Fill       deck.Color
	Bullets    bool
}

// Slide is a fully resolved slide, ready to be drawn or rendered as markup.
type Slide struct {
	TypeID      string
	Canvas      fitter.Rect
	Background  *deck.Color
	Orientation models.Orientation
	Elements    []Element
}

type Resolver struct {
	canvas fitter.Rect
	tiers  fitter.TierTable
	images *imageres.Resolver
	logger logger.Logger
}

func NewResolver(canvas fitter.Rect, tiers fitter.TierTable, images *imageres.Resolver, log logger.Logger) *Resolver {
	if images == nil {
		images = imageres.NewResolver(nil, log)
	}
	return &Resolver{
		canvas: canvas,
		tiers:  tiers,
		images: images,
		logger: log.WithFields(map[string]interface{}{"component": "layout-resolver"}),
	}
}

// Resolve lays out every declared element of def for rec. Elements bound to
// empty fields are left out. The record is never modified.
func (r *Resolver) Resolve(def *template.SlideTypeDefinition, rec models.SlideRecord) *Slide {
	out := &Slide{
		TypeID:      def.TypeID,
		Canvas:      r.canvas,
		Orientation: rec.Orientation(),
	}
	if c, ok := def.Background.Fill(); ok {
		out.Background = &c
	}

	for _, el := range def.Elements {
		frame, ok := el.PositionFor(out.Orientation)
		if !ok {
			continue
		}
		frame = r.clamp(shifted(el, rec, frame))

		var resolved *Element
		switch el.Kind {
		case template.ElementTextBox:
			resolved = r.textBox(el, rec, out.Orientation, frame)
		case template.ElementImage:
			resolved = r.image(el, rec, frame)
		case template.ElementShape:
			resolved = r.shape(el, rec, frame)
		}
		if resolved != nil {
			out.Elements = append(out.Elements, *resolved)
		}
	}
	return out
}

// IsBulletField reports whether an element bound to field renders the
// record's bullet list.
func IsBulletField(field string, rec models.SlideRecord) bool {
	if field == models.FieldBullets {
		return true
	}
	_, hasBullets := rec[models.FieldBullets]
	return field == models.FieldContent && hasBullets
}

func (r *Resolver) textBox(el template.Element, rec models.SlideRecord, o models.Orientation, frame fitter.Rect) *Element {
	if IsBulletField(el.Field, rec) {
		paragraphs := r.bulletParagraphs(el.Style, rec.Bullets())
		if len(paragraphs) == 0 {
			return nil
		}
		return &Element{Kind: template.ElementTextBox, Name: el.Field, Frame: frame, Paragraphs: paragraphs, Bullets: true}
	}

	text := models.StripEmphasis(rec.String(el.Field))
	if len(models.Lines(text)) == 0 {
		text = el.Default
	}
	lines := models.Lines(text)
	if len(lines) == 0 {
		r.logger.Debug("field empty, element skipped", map[string]interface{}{
			"slideType": rec.Type(),
			"field":     el.Field,
		})
		return nil
	}

	size, spacing := fontFor(el.Style, o, text)
	paragraphs := make([]*deck.Paragraph, len(lines))
	for i, line := range lines {
		paragraphs[i] = &deck.Paragraph{
			Runs: []deck.Run{{
				Text: line,
				Font: deck.Font{Size: size, Bold: el.Style.Bold, Italic: el.Style.Italic, Color: el.Style.Color},
			}},
			Align:       el.Style.Alignment,
			LineSpacing: spacing,
		}
	}
	return &Element{Kind: template.ElementTextBox, Name: el.Field, Frame: frame, Paragraphs: paragraphs}
}

// fontFor picks the font size and line spacing: the generic size, then the
// orientation-specific size, then the first matching shrink rule.
func fontFor(s template.Style, o models.Orientation, text string) (float64, float64) {
	size, spacing := s.FontSize, s.LineSpacing
	switch {
	case o == models.OrientationVertical && s.FontSizeVertical > 0:
		size = s.FontSizeVertical
	case o == models.OrientationHorizontal && s.FontSizeHorizontal > 0:
		size = s.FontSizeHorizontal
	}
	if step, ok := fitter.PickStep(s.Steps(o), text); ok {
		size = step.FontSize
		if step.LineSpacing > 0 {
			spacing = step.LineSpacing
		}
	}
	return size, spacing
}

func (r *Resolver) bulletParagraphs(s template.Style, bullets []models.Bullet) []*deck.Paragraph {
	texts := make([]string, 0, len(bullets))
	for _, b := range bullets {
		texts = append(texts, models.StripEmphasis(b.Text))
	}
	if len(texts) == 0 {
		return nil
	}

	tier := r.tiers.ForBullets(texts)
	lineSpacing := tier.LineSpacing
	if s.LineSpacing > 0 {
		lineSpacing = s.LineSpacing
	}

	out := make([]*deck.Paragraph, len(bullets))
	for i, b := range bullets {
		level, size, after := s.Primary, tier.PrimarySize, tier.PrimarySpacing
		if b.Level > 0 {
			level, size, after = s.Indent, tier.SecondarySize, tier.SecondarySpacing
		}
		if level.TextSize > 0 {
			size = level.TextSize
		}
		out[i] = &deck.Paragraph{
			Runs: []deck.Run{
				{Text: level.Glyph + " ", Font: deck.Font{Size: level.GlyphSize, Color: level.GlyphColor}},
				{Text: texts[i], Font: deck.Font{Size: size, Color: level.TextColor}},
			},
			Align:       s.Alignment,
			Level:       b.Level,
			LineSpacing: lineSpacing,
			SpaceAfter:  after,
		}
	}
	return out
}

func (r *Resolver) image(el template.Element, rec models.SlideRecord, frame fitter.Rect) *Element {
	imageID := rec.String(models.FieldImageID)
	if imageID == "" {
		r.logger.Warn("image field missing, picture skipped",
			apperrors.NewMissingFieldError(rec.Type(), models.FieldImageID).LogFields())
		return nil
	}
	path, fitted, err := r.images.Fit(imageID, frame)
	if err != nil {
		return nil
	}
	return &Element{Kind: template.ElementImage, Name: el.Field, Frame: fitted, ImagePath: path}
}

func (r *Resolver) shape(el template.Element, rec models.SlideRecord, frame fitter.Rect) *Element {
	if el.Requires != "" && !rec.Has(el.Requires) {
		return nil
	}
	if el.ShapeKind != "rectangle" {
		r.logger.Warn("unsupported shape kind, element skipped", map[string]interface{}{
			"slideType": rec.Type(),
			"shapeType": el.ShapeKind,
		})
		return nil
	}
	return &Element{Kind: template.ElementShape, Name: el.Field, Frame: frame, Fill: el.Style.Fill}
}

func shifted(el template.Element, rec models.SlideRecord, frame fitter.Rect) fitter.Rect {
	if el.Shift == nil {
		return frame
	}
	if fitter.TextLength(rec.String(el.Shift.Field)) > el.Shift.Over {
		frame.Top += el.Shift.DY
	}
	return frame
}

// clamp keeps a frame inside the canvas by trimming its far edges.
func (r *Resolver) clamp(f fitter.Rect) fitter.Rect {
	f.Left = math.Min(math.Max(f.Left, 0), r.canvas.Width)
	f.Top = math.Min(math.Max(f.Top, 0), r.canvas.Height)
	f.Width = math.Max(math.Min(f.Width, r.canvas.Width-f.Left), 0)
	f.Height = math.Max(math.Min(f.Height, r.canvas.Height-f.Top), 0)
	return f
}
