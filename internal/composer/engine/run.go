package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	apperrors "slide-composer/internal/common/errors"
	"slide-composer/internal/common/logger"
	"slide-composer/internal/common/metrics"
	"slide-composer/internal/composer/fitter"
	"slide-composer/internal/composer/imageres"
	"slide-composer/internal/composer/layout"
	"slide-composer/internal/composer/placeholder"
	"slide-composer/internal/composer/registry"
	"slide-composer/internal/deck"
	"slide-composer/internal/models"
)

// run holds the state owned by a single composition.
type run struct {
	backend   Backend
	collector *logger.Collector
	log       logger.Logger
	registry  *registry.Registry
	ctx       *registry.Context
	filler    *placeholder.Filler
	deck      *deck.Deck
	result    *Result
}

func (e *Engine) newRun(backend Backend, in *Input) *run {
	id := uuid.New()
	collector := logger.NewCollector(e.logger.WithFields(map[string]interface{}{
		"runId":   id.String(),
		"backend": string(backend),
	}))

	images := imageres.NewResolver(in.Images, collector)
	canvas := fitter.Rect{Width: e.opts.CanvasWidth, Height: e.opts.CanvasHeight}

	return &run{
		backend:   backend,
		collector: collector,
		log:       collector,
		registry:  e.registry.WithLogger(collector).WithBackend(string(backend)),
		ctx: &registry.Context{
			Images: images,
			Layout: layout.NewResolver(canvas, e.opts.Tiers, images, collector),
			Logger: collector,
		},
		filler: placeholder.NewFiller(images, collector),
		result: &Result{
			RunID:   id,
			Backend: backend,
			Total:   len(in.Records),
		},
	}
}

// ComposeMarkup renders every record as a markup fragment and wraps them in
// a navigable document. Records are processed in order; a record that fails
// is skipped and reported in the result.
func (e *Engine) ComposeMarkup(ctx context.Context, in *Input) (*Result, error) {
	if in == nil {
		return nil, apperrors.NewInputInvalidError("input is required")
	}
	start := time.Now()
	r := e.newRun(BackendMarkup, in)

	fragments := make([]string, 0, len(in.Records))
	err := e.each(ctx, r, in.Records, func(i int, rec models.SlideRecord, s registry.Strategy) error {
		fragment, err := s.RenderMarkup(rec, r.ctx)
		if err != nil {
			return err
		}
		fragments = append(fragments, fragment)
		return nil
	})

	r.result.Fragments = fragments
	if err == nil {
		title := in.Title
		if title == "" {
			title = e.opts.DocumentTitle
		}
		r.result.Markup, err = registry.Document(title, fragments)
	}
	return e.finish(ctx, r, start), err
}

// ComposeDeck builds a deck in the engine's mode. Each slide is attached
// only once it is complete, so a failed slide leaves no partial shapes.
func (e *Engine) ComposeDeck(ctx context.Context, in *Input) (*Result, error) {
	if in == nil {
		return nil, apperrors.NewInputInvalidError("input is required")
	}
	start := time.Now()
	r := e.newRun(BackendDeck, in)
	r.deck = e.writer.newDeck(e.opts.CanvasWidth, e.opts.CanvasHeight)
	r.result.Mode = e.writer.mode()
	r.result.Deck = r.deck

	err := e.each(ctx, r, in.Records, func(i int, rec models.SlideRecord, s registry.Strategy) error {
		slide, err := e.writer.write(r, i, rec, s)
		if err != nil {
			return err
		}
		if slide == nil {
			return errors.New("strategy returned no slide")
		}
		r.deck.Append(slide)
		return nil
	})
	return e.finish(ctx, r, start), err
}

type renderFunc func(index int, rec models.SlideRecord, s registry.Strategy) error

// each drives the per-slide loop. Cancellation is checked between slides;
// the slides already rendered are kept.
func (e *Engine) each(ctx context.Context, r *run, records []models.SlideRecord, render renderFunc) error {
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			r.log.Warn("composition cancelled", map[string]interface{}{
				"slideIndex": i,
				"remaining":  len(records) - i,
			})
			return err
		}

		s, fellBack := r.registry.Resolve(rec.Type())
		if fellBack {
			r.result.Fallbacks++
		}
		slideType := typeOf(s, rec)

		if err := safeRender(i, rec, s, render); err != nil {
			r.skip(i, slideType, err)
			continue
		}
		r.result.Rendered++
		metrics.SlidesRendered.WithLabelValues(string(r.backend), slideType).Inc()
	}
	return nil
}

// safeRender converts a panic inside a strategy into an error so one bad
// record cannot abort the batch.
func safeRender(i int, rec models.SlideRecord, s registry.Strategy, render renderFunc) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &panicError{value: p, stack: debug.Stack()}
		}
	}()
	return render(i, rec, s)
}

type panicError struct {
	value interface{}
	stack []byte
}

func (p *panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

func (r *run) skip(index int, slideType string, cause error) {
	stdErr := apperrors.NewRenderFailedError(index, slideType, cause)

	fields := map[string]interface{}{
		"slideIndex": index,
		"slideType":  slideType,
		"error":      cause.Error(),
	}
	if p, ok := cause.(*panicError); ok {
		fields["stack"] = string(p.stack)
	}
	r.log.Error("slide skipped", fields)

	r.result.Skipped++
	r.result.Failures = append(r.result.Failures, Failure{
		Index:     index,
		SlideType: slideType,
		Code:      stdErr.Code,
		Cause:     cause.Error(),
	})
	metrics.SlidesSkipped.WithLabelValues(string(r.backend), string(stdErr.Code)).Inc()
}

func (e *Engine) finish(ctx context.Context, r *run, start time.Time) *Result {
	res := r.result
	res.Duration = time.Since(start)
	res.Warnings = r.collector.Warnings()
	res.Errors = r.collector.Errors()
	res.Events = r.collector.Events()

	mode := string(res.Mode)
	if mode == "" {
		mode = "none"
	}
	metrics.RunDuration.WithLabelValues(string(r.backend), mode).Observe(res.Duration.Seconds())
	e.telemetry.RecordRun(ctx, string(r.backend), res.Status(), res.Duration)
	e.telemetry.RecordSlides(ctx, string(r.backend), res.Rendered, res.Skipped)

	e.logger.Info("composition finished", map[string]interface{}{
		"runId":     res.RunID.String(),
		"backend":   string(res.Backend),
		"mode":      mode,
		"total":     res.Total,
		"rendered":  res.Rendered,
		"skipped":   res.Skipped,
		"fallbacks": res.Fallbacks,
		"warnings":  res.Warnings,
		"duration":  res.Duration.String(),
	})
	return res
}

// typeOf names the kind a record was rendered as.
func typeOf(s registry.Strategy, rec models.SlideRecord) string {
	if d, ok := s.(registry.Defined); ok {
		return d.Definition().TypeID
	}
	return rec.Type()
}
