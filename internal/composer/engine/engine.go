// Package engine orchestrates a composition run: it walks the slide records
// in order, resolves each record's kind and renders it with the markup or
// deck backend, isolating failures to the slide that caused them.
package engine

import (
	"slide-composer/internal/common/config"
	"slide-composer/internal/common/logger"
	"slide-composer/internal/common/observability"
	"slide-composer/internal/composer/fitter"
	"slide-composer/internal/composer/registry"
	"slide-composer/internal/composer/template"
	"slide-composer/internal/deck"
)

type Backend string

const (
	BackendMarkup Backend = "markup"
	BackendDeck   Backend = "deck"
)

// Mode is how deck slides are produced, chosen once per engine.
type Mode string

const (
	ModeFreeform Mode = "freeform"
	ModeSkeleton Mode = "skeleton"
)

type Options struct {
	DefaultSlideType string
	DocumentTitle    string
	CanvasWidth      float64
	CanvasHeight     float64
	Tiers            fitter.TierTable
}

func DefaultOptions() Options {
	return Options{
		DefaultSlideType: template.DefaultTypeID,
		DocumentTitle:    registry.DefaultDocumentTitle,
		CanvasWidth:      template.DefaultCanvasWidth,
		CanvasHeight:     template.DefaultCanvasHeight,
		Tiers:            fitter.DefaultTierTable(),
	}
}

func OptionsFromConfig(c config.ComposerConfig) Options {
	opts := DefaultOptions()
	if c.DefaultSlideType != "" {
		opts.DefaultSlideType = c.DefaultSlideType
	}
	if c.DocumentTitle != "" {
		opts.DocumentTitle = c.DocumentTitle
	}
	if c.Canvas.Width > 0 {
		opts.CanvasWidth = c.Canvas.Width
	}
	if c.Canvas.Height > 0 {
		opts.CanvasHeight = c.Canvas.Height
	}
	opts.Tiers = fitter.TierTableFromConfig(c.BulletTiers)
	return opts
}

type Config struct {
	// Template is nil for the built-in kinds.
	Template *template.TemplateDefinition
	// Skeleton selects skeleton mode for the deck backend when set.
	Skeleton  *deck.Skeleton
	Options   Options
	Telemetry *observability.Observability
}

// Engine is safe for concurrent runs; each run owns its own deck, logger
// collector and image resolver.
type Engine struct {
	template  *template.TemplateDefinition
	registry  *registry.Registry
	writer    deckWriter
	opts      Options
	telemetry *observability.Observability
	logger    logger.Logger
}

func New(cfg Config, log logger.Logger) (*Engine, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	opts := cfg.Options
	if opts.DefaultSlideType == "" {
		opts.DefaultSlideType = template.DefaultTypeID
	}
	if opts.DocumentTitle == "" {
		opts.DocumentTitle = registry.DefaultDocumentTitle
	}
	if opts.Tiers == (fitter.TierTable{}) {
		opts.Tiers = fitter.DefaultTierTable()
	}

	tmpl := cfg.Template
	if tmpl == nil {
		tmpl = template.Builtin()
		if opts.CanvasWidth <= 0 {
			opts.CanvasWidth = tmpl.Width
		}
		if opts.CanvasHeight <= 0 {
			opts.CanvasHeight = tmpl.Height
		}
	} else {
		opts.CanvasWidth, opts.CanvasHeight = tmpl.Width, tmpl.Height
	}

	reg, err := registry.FromTemplate(tmpl, log)
	if err != nil {
		return nil, err
	}
	if err := reg.SetDefault(opts.DefaultSlideType); err != nil {
		return nil, err
	}

	var writer deckWriter = freeformWriter{}
	if cfg.Skeleton != nil {
		writer = skeletonWriter{skeleton: cfg.Skeleton}
	}

	telemetry := cfg.Telemetry
	if telemetry == nil {
		telemetry = observability.NewNoop()
	}

	return &Engine{
		template:  tmpl,
		registry:  reg,
		writer:    writer,
		opts:      opts,
		telemetry: telemetry,
		logger:    log,
	}, nil
}

// FromConfig loads the template and skeleton named by the composer
// configuration. A missing or invalid source is a fatal error.
func FromConfig(c config.ComposerConfig, telemetry *observability.Observability, log logger.Logger) (*Engine, error) {
	cfg := Config{Options: OptionsFromConfig(c), Telemetry: telemetry}
	if c.TemplatePath != "" {
		t, err := template.Load(c.TemplatePath)
		if err != nil {
			return nil, err
		}
		cfg.Template = t
	}
	if c.SkeletonPath != "" {
		sk, err := deck.LoadSkeleton(c.SkeletonPath)
		if err != nil {
			return nil, err
		}
		cfg.Skeleton = sk
	}
	return New(cfg, log)
}

// Registry exposes the kind table, e.g. for prompt building.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

func (e *Engine) Template() *template.TemplateDefinition {
	return e.template
}

func (e *Engine) Mode() Mode {
	return e.writer.mode()
}
