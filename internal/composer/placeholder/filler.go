// Package placeholder fills the native placeholders of a skeleton layout
// from slide record fields instead of drawing new shapes.
package placeholder

import (
	"fmt"

	"slide-composer/internal/common/logger"
	"slide-composer/internal/common/metrics"
	"slide-composer/internal/composer/imageres"
	"slide-composer/internal/deck"
	"slide-composer/internal/models"
)

// contentFields are consumed in this order by body placeholders.
var contentFields = []string{
	models.FieldContent,
	models.FieldText,
	models.FieldClosingText,
	models.FieldContent1,
	models.FieldContent2,
}

// Stats counts the content-bearing placeholders of one slide.
type Stats struct {
	Filled   int `json:"filled"`
	Unfilled int `json:"unfilled"`
}

func (s *Stats) Add(o Stats) {
	s.Filled += o.Filled
	s.Unfilled += o.Unfilled
}

type Filler struct {
	images *imageres.Resolver
	logger logger.Logger
}

func NewFiller(images *imageres.Resolver, log logger.Logger) *Filler {
	if images == nil {
		images = imageres.NewResolver(nil, log)
	}
	return &Filler{
		images: images,
		logger: log.WithFields(map[string]interface{}{"component": "placeholder-filler"}),
	}
}

// state tracks what a slide's record still has to offer. Each value is
// handed out at most once.
type state struct {
	title    string
	subtitle string
	bullets  []models.Bullet
	contents []string
	imageID  string
}

func newState(rec models.SlideRecord) *state {
	st := &state{
		title:    firstOf(rec, models.FieldTitle, models.FieldSectionTitle),
		subtitle: firstOf(rec, models.FieldSubtitle, models.FieldSubtext),
		bullets:  rec.Bullets(),
		imageID:  rec.String(models.FieldImageID),
	}
	for _, field := range contentFields {
		if rec.Has(field) {
			st.contents = append(st.contents, rec.String(field))
		}
	}
	return st
}

func firstOf(rec models.SlideRecord, fields ...string) string {
	for _, f := range fields {
		if rec.Has(f) {
			return rec.String(f)
		}
	}
	return ""
}

// Fill walks the slide's placeholders in shape order. A failure on one
// placeholder is logged and leaves the others untouched.
func (f *Filler) Fill(slide *deck.Slide, rec models.SlideRecord, slideIndex int) Stats {
	log := f.logger.WithFields(map[string]interface{}{
		"slideIndex": slideIndex,
		"slideType":  rec.Type(),
	})
	st := newState(rec)

	var stats Stats
	for _, ph := range slide.Placeholders() {
		if !fillable(ph.Role) {
			continue
		}
		filled, err := f.fillOne(ph, st)
		if err != nil {
			log.Warn("placeholder fill failed", map[string]interface{}{
				"role":  string(ph.Role),
				"idx":   ph.Index,
				"error": err.Error(),
			})
		}
		outcome := "unfilled"
		if filled {
			outcome = "filled"
			stats.Filled++
		} else {
			stats.Unfilled++
		}
		metrics.PlaceholdersFilled.WithLabelValues(string(ph.Role), outcome).Inc()
	}

	fields := map[string]interface{}{"filled": stats.Filled, "unfilled": stats.Unfilled}
	if stats.Filled == 0 {
		log.Warn("no placeholder filled, check the skeleton layout for this slide type", fields)
	} else {
		log.Info("placeholders filled", fields)
	}
	return stats
}

func fillable(r deck.PlaceholderRole) bool {
	return r.IsTitle() || r.IsSubtitle() || r.IsBody() || r.IsPicture()
}

func (f *Filler) fillOne(ph *deck.Placeholder, st *state) (filled bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			filled, err = false, fmt.Errorf("panic: %v", r)
		}
	}()

	switch {
	case ph.Role.IsTitle():
		if st.title == "" {
			return false, nil
		}
		ph.SetParagraphs(textParagraphs(st.title))
		st.title = ""
		return true, nil

	case ph.Role.IsSubtitle():
		if st.subtitle == "" {
			return false, nil
		}
		ph.SetParagraphs(textParagraphs(st.subtitle))
		st.subtitle = ""
		return true, nil

	case ph.Role.IsBody():
		switch {
		case len(st.bullets) > 0:
			ph.SetParagraphs(bulletParagraphs(st.bullets))
			st.bullets = nil
			return true, nil
		case len(st.contents) > 0:
			ph.SetParagraphs(textParagraphs(models.StripEmphasis(st.contents[0])))
			st.contents = st.contents[1:]
			return true, nil
		case ph.Role == deck.RoleBody && st.subtitle != "":
			ph.SetParagraphs(textParagraphs(st.subtitle))
			st.subtitle = ""
			return true, nil
		}
		return false, nil

	case ph.Role.IsPicture():
		if st.imageID == "" {
			return false, nil
		}
		path, err := f.images.Path(st.imageID)
		if err != nil {
			return false, fmt.Errorf("image %s: %w", st.imageID, err)
		}
		ph.SetPicture(path)
		st.imageID = ""
		return true, nil
	}
	return false, nil
}

func textParagraphs(text string) []*deck.Paragraph {
	lines := models.Lines(text)
	out := make([]*deck.Paragraph, len(lines))
	for i, line := range lines {
		out[i] = &deck.Paragraph{Runs: []deck.Run{{Text: line}}}
	}
	return out
}

func bulletParagraphs(bullets []models.Bullet) []*deck.Paragraph {
	out := make([]*deck.Paragraph, len(bullets))
	for i, b := range bullets {
		out[i] = &deck.Paragraph{Runs: []deck.Run{{Text: b.Text}}, Level: b.Level}
	}
	return out
}
