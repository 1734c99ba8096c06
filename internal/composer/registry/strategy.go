package registry

import (
	"fmt"

	"slide-composer/internal/composer/template"
	"slide-composer/internal/deck"
	"slide-composer/internal/models"
)

// DefinitionStrategy renders a slide type definition. Deck output goes
// through the layout resolver; markup uses the kind's fragment when it is a
// built-in kind, otherwise positioned generic markup.
type DefinitionStrategy struct {
	def    *template.SlideTypeDefinition
	markup markupFunc
}

func NewDefinitionStrategy(def *template.SlideTypeDefinition) *DefinitionStrategy {
	m, ok := builtinMarkup[def.TypeID]
	if !ok {
		m = genericMarkup
	}
	return &DefinitionStrategy{def: def, markup: m}
}

func (s *DefinitionStrategy) Definition() *template.SlideTypeDefinition {
	return s.def
}

func (s *DefinitionStrategy) RenderMarkup(rec models.SlideRecord, ctx *Context) (string, error) {
	return s.markup(s.def, rec, ctx)
}

func (s *DefinitionStrategy) RenderDeck(rec models.SlideRecord, d *deck.Deck, ctx *Context) (*deck.Slide, error) {
	if ctx == nil || ctx.Layout == nil {
		return nil, fmt.Errorf("render %s: no layout resolver in context", s.def.TypeID)
	}
	return ctx.Layout.Resolve(s.def, rec).Draw(d), nil
}

// SchemaExample returns a copy of the example record.
func (s *DefinitionStrategy) SchemaExample() map[string]interface{} {
	out := make(map[string]interface{}, len(s.def.SchemaExample)+1)
	for k, v := range s.def.SchemaExample {
		out[k] = v
	}
	if _, ok := out[models.FieldSlideType]; !ok {
		out[models.FieldSlideType] = s.def.TypeID
	}
	return out
}

func (s *DefinitionStrategy) Description() string {
	return s.def.Description
}
