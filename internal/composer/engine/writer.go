package engine

import (
	"fmt"

	"slide-composer/internal/composer/registry"
	"slide-composer/internal/deck"
	"slide-composer/internal/models"
)

// deckWriter produces deck slides for one mode. Slides are returned
// detached; the run appends them once they are complete.
type deckWriter interface {
	mode() Mode
	newDeck(width, height float64) *deck.Deck
	write(r *run, index int, rec models.SlideRecord, s registry.Strategy) (*deck.Slide, error)
}

// freeformWriter draws every element declared by the slide kind.
type freeformWriter struct{}

func (freeformWriter) mode() Mode { return ModeFreeform }

func (freeformWriter) newDeck(width, height float64) *deck.Deck {
	return deck.New(width, height)
}

func (freeformWriter) write(r *run, _ int, rec models.SlideRecord, s registry.Strategy) (*deck.Slide, error) {
	return s.RenderDeck(rec, r.deck, r.ctx)
}

// skeletonWriter instantiates the skeleton layout for the slide kind and
// fills its placeholders. Nothing else is drawn.
type skeletonWriter struct {
	skeleton *deck.Skeleton
}

func (skeletonWriter) mode() Mode { return ModeSkeleton }

func (w skeletonWriter) newDeck(width, height float64) *deck.Deck {
	return w.skeleton.NewDeck(width, height)
}

func (w skeletonWriter) write(r *run, index int, rec models.SlideRecord, s registry.Strategy) (*deck.Slide, error) {
	typeID, declared := rec.Type(), deck.BlankLayout
	if d, ok := s.(registry.Defined); ok {
		typeID, declared = d.Definition().TypeID, d.Definition().LayoutIndex
	}

	idx, mapped := w.skeleton.LayoutFor(typeID)
	if !mapped {
		idx = declared
	}
	if idx == deck.BlankLayout {
		r.log.Warn("no skeleton layout for slide type, using layout 0", map[string]interface{}{
			"slideIndex": index,
			"slideType":  typeID,
		})
		idx = 0
	}

	slide, ok := r.deck.NewSlide(idx)
	if !ok {
		r.log.Warn("layout index out of range, using layout 0", map[string]interface{}{
			"slideIndex":  index,
			"slideType":   typeID,
			"layoutIndex": idx,
			"layouts":     len(r.deck.Layouts),
		})
	}
	if slide == nil {
		return nil, fmt.Errorf("skeleton has no layout for %s", typeID)
	}

	r.result.Placeholders.Add(r.filler.Fill(slide, rec, index))
	return slide, nil
}
