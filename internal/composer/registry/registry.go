// Package registry maps slide kind tags to rendering strategies.
package registry

import (
	"fmt"

	apperrors "slide-composer/internal/common/errors"
	"slide-composer/internal/common/logger"
	"slide-composer/internal/common/metrics"
	"slide-composer/internal/composer/imageres"
	"slide-composer/internal/composer/layout"
	"slide-composer/internal/composer/template"
	"slide-composer/internal/deck"
	"slide-composer/internal/models"
)

// Context is the read-only state shared by every strategy call of a run.
type Context struct {
	Images *imageres.Resolver
	Layout *layout.Resolver
	Logger logger.Logger
}

// Strategy renders one slide kind for both backends and describes it to the
// content generator.
type Strategy interface {
	RenderMarkup(rec models.SlideRecord, ctx *Context) (string, error)
	RenderDeck(rec models.SlideRecord, d *deck.Deck, ctx *Context) (*deck.Slide, error)
	SchemaExample() map[string]interface{}
	Description() string
}

// Defined is implemented by strategies backed by a slide type definition.
type Defined interface {
	Definition() *template.SlideTypeDefinition
}

// Registry is built once at startup and only read afterwards.
type Registry struct {
	defaultTag string
	order      []string
	strategies map[string]Strategy
	backend    string
	logger     logger.Logger
}

func New(defaultTag string, log logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Registry{
		defaultTag: defaultTag,
		strategies: make(map[string]Strategy),
		logger:     log,
	}
}

// WithLogger returns a view of the registry that logs to log. The strategy
// table is shared.
func (r *Registry) WithLogger(log logger.Logger) *Registry {
	view := *r
	view.logger = log
	return &view
}

// WithBackend labels fallback metrics with the output backend.
func (r *Registry) WithBackend(backend string) *Registry {
	view := *r
	view.backend = backend
	return &view
}

func (r *Registry) Register(tag string, s Strategy) error {
	if tag == "" {
		return fmt.Errorf("register: empty tag")
	}
	if _, dup := r.strategies[tag]; dup {
		return fmt.Errorf("register: tag %q already bound", tag)
	}
	r.strategies[tag] = s
	r.order = append(r.order, tag)
	return nil
}

// Lookup returns the strategy bound to tag without falling back.
func (r *Registry) Lookup(tag string) (Strategy, bool) {
	s, ok := r.strategies[tag]
	return s, ok
}

// Resolve returns the strategy for tag. Unknown tags resolve to the default
// strategy with a warning; fellBack reports that substitution.
func (r *Registry) Resolve(tag string) (s Strategy, fellBack bool) {
	if s, ok := r.strategies[tag]; ok {
		return s, false
	}
	metrics.SlideTypeFallbacks.WithLabelValues(r.backend).Inc()
	r.logger.Warn("unknown slide type, using default",
		apperrors.NewUnknownSlideTypeError(tag, r.defaultTag).LogFields())
	return r.strategies[r.defaultTag], true
}

func (r *Registry) DefaultTag() string {
	return r.defaultTag
}

// Tags returns the registered tags in registration order.
func (r *Registry) Tags() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Entry describes one registered kind for the content generator.
type Entry struct {
	Tag         string                 `json:"type_id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Instruction string                 `json:"llm_instruction,omitempty"`
	Example     map[string]interface{} `json:"json_schema"`
}

// Entries lists every registered kind in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, tag := range r.order {
		s := r.strategies[tag]
		e := Entry{Tag: tag, Name: tag, Description: s.Description(), Example: s.SchemaExample()}
		if d, ok := s.(Defined); ok {
			def := d.Definition()
			e.Name = def.Name
			e.Instruction = def.Instruction
		}
		out = append(out, e)
	}
	return out
}

// NewBuiltin registers the six built-in kinds, defaulting to text_content.
func NewBuiltin(log logger.Logger) *Registry {
	r, err := FromTemplate(template.Builtin(), log)
	if err != nil {
		panic(err)
	}
	return r
}

// FromTemplate registers one strategy per slide type of t. Built-in kinds
// keep their markup fragments. When t has no text_content type the built-in
// one is registered as the default.
func FromTemplate(t *template.TemplateDefinition, log logger.Logger) (*Registry, error) {
	r := New(template.DefaultTypeID, log)
	for _, def := range t.Types() {
		if err := r.Register(def.TypeID, NewDefinitionStrategy(def)); err != nil {
			return nil, err
		}
	}
	if _, ok := r.strategies[template.DefaultTypeID]; !ok {
		def, _ := template.Builtin().Definition(template.DefaultTypeID)
		if err := r.Register(template.DefaultTypeID, NewDefinitionStrategy(def)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// SetDefault changes the fallback tag. The tag must already be registered.
func (r *Registry) SetDefault(tag string) error {
	if _, ok := r.strategies[tag]; !ok {
		return fmt.Errorf("default slide type %q is not registered", tag)
	}
	r.defaultTag = tag
	return nil
}
