package registry

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slide-composer/internal/common/logger"
	"slide-composer/internal/common/metrics"
	"slide-composer/internal/composer/fitter"
	"slide-composer/internal/composer/imageres"
	"slide-composer/internal/composer/layout"
	"slide-composer/internal/composer/template"
	"slide-composer/internal/deck"
	"slide-composer/internal/models"
)

func newContext(t *testing.T, canvas fitter.Rect, images models.ImageMetadata) (*Context, *logger.Collector) {
	t.Helper()
	collector := logger.NewCollector(logger.NewTestLogger(t))
	res := imageres.NewResolver(images, collector)
	return &Context{
		Images: res,
		Layout: layout.NewResolver(canvas, fitter.DefaultTierTable(), res, collector),
		Logger: collector,
	}, collector
}

func TestRegistry_Resolve(t *testing.T) {
	collector := logger.NewCollector(logger.NewTestLogger(t))
	reg := NewBuiltin(logger.NewNoOpLogger()).WithLogger(collector)

	s, fellBack := reg.Resolve(template.TypeOpening)
	require.NotNil(t, s)
	assert.False(t, fellBack)
	assert.Equal(t, 0, collector.Warnings())

	s, fellBack = reg.Resolve("timeline")
	require.NotNil(t, s)
	assert.True(t, fellBack)
	assert.Equal(t, template.TypeTextContent, s.(Defined).Definition().TypeID)
	assert.Equal(t, 1, collector.Warnings())
	event := collector.Events()[0]
	assert.Equal(t, "UNKNOWN_SLIDE_TYPE", event.Fields["code"])
	assert.Equal(t, "timeline", event.Fields["slideType"])
	assert.Equal(t, template.TypeTextContent, event.Fields["fallback"])

	s, fellBack = reg.Resolve("")
	assert.True(t, fellBack)
	assert.NotNil(t, s)
}

func TestRegistry_ResolveCountsFallbacks(t *testing.T) {
	reg := NewBuiltin(nil).WithBackend("registry-test")
	counter := metrics.SlideTypeFallbacks.WithLabelValues("registry-test")
	before := testutil.ToFloat64(counter)

	reg.Resolve("timeline")
	reg.Resolve("agenda")
	reg.Resolve(template.TypeClosing)

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestRegistry_Register(t *testing.T) {
	reg := New("a", nil)
	def := &template.SlideTypeDefinition{TypeID: "a", Description: "first"}

	require.NoError(t, reg.Register("a", NewDefinitionStrategy(def)))
	assert.Error(t, reg.Register("a", NewDefinitionStrategy(def)))
	assert.Error(t, reg.Register("", NewDefinitionStrategy(def)))

	assert.Error(t, reg.SetDefault("missing"))
	assert.NoError(t, reg.SetDefault("a"))
	assert.Equal(t, "a", reg.DefaultTag())

	_, ok := reg.Lookup("b")
	assert.False(t, ok)
}

func TestRegistry_Entries(t *testing.T) {
	reg := NewBuiltin(nil)

	assert.Equal(t, []string{
		template.TypeOpening, template.TypeSectionDivider, template.TypeTextContent,
		template.TypeImageWithText, template.TypeFullImage, template.TypeClosing,
	}, reg.Tags())

	entries := reg.Entries()
	require.Len(t, entries, 6)
	for _, e := range entries {
		assert.Equal(t, e.Tag, e.Example[models.FieldSlideType])
		assert.NotEmpty(t, e.Description)
		assert.NotEmpty(t, e.Instruction)
	}

	example := entries[0].Example
	example["title"] = "mutated"
	fresh, _ := reg.Lookup(template.TypeOpening)
	assert.Equal(t, "Main title", fresh.SchemaExample()["title"], "examples are copies")
}

func TestFromTemplate_AddsDefaultKind(t *testing.T) {
	def, err := template.Parse("inline", []byte(`{"slide_types": [{"type_id": "quote", "description": "Quote"}]}`))
	require.NoError(t, err)

	reg, err := FromTemplate(def, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"quote", template.TypeTextContent}, reg.Tags())

	s, fellBack := reg.Resolve("unknown")
	assert.True(t, fellBack)
	assert.Equal(t, "text_content", s.(Defined).Definition().TypeID)
}

func TestBuiltinMarkup_Opening(t *testing.T) {
	ctx, _ := newContext(t, template.Builtin().Canvas(), nil)
	reg := NewBuiltin(nil)
	s, _ := reg.Resolve(template.TypeOpening)

	out, err := s.RenderMarkup(models.SlideRecord{"slide_type": "opening", "title": "Hello", "subtitle": "World"}, ctx)
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="slide slide-opening">`)
	assert.Contains(t, out, `<h1 class="main-title">Hello</h1>`)
	assert.Contains(t, out, `<p class="subtitle">World</p>`)

	out, err = s.RenderMarkup(models.SlideRecord{"slide_type": "opening", "title": "<b>x</b>"}, ctx)
	require.NoError(t, err)
	assert.Contains(t, out, "&lt;b&gt;x&lt;/b&gt;")
	assert.NotContains(t, out, "subtitle")
}

func TestBuiltinMarkup_Kinds(t *testing.T) {
	ctx, collector := newContext(t, template.Builtin().Canvas(), nil)
	reg := NewBuiltin(nil)

	tests := []struct {
		name     string
		rec      models.SlideRecord
		validate func(t *testing.T, out string)
	}{
		{
			name: "text content",
			rec: models.SlideRecord{"slide_type": "text_content", "title": "T",
				"bullets": []interface{}{"a", "b"}, "indent_levels": []interface{}{0, 1}},
			validate: func(t *testing.T, out string) {
				assert.Contains(t, out, `<ul class="bullet-list">`)
				assert.Contains(t, out, `<li>a</li>`)
				assert.Contains(t, out, `<li class="indent-1">b</li>`)
			},
		},
		{
			name: "section divider",
			rec:  models.SlideRecord{"slide_type": "section_divider", "section_title": "Part 1"},
			validate: func(t *testing.T, out string) {
				assert.Contains(t, out, `<h2 class="section-title">Part 1</h2>`)
				assert.Contains(t, out, "decoration-line")
			},
		},
		{
			name: "image with text vertical",
			rec: models.SlideRecord{"slide_type": "image_with_text", "title": "I",
				"text": "one\ntwo", "layout": "vertical"},
			validate: func(t *testing.T, out string) {
				assert.Contains(t, out, "image-text-container layout-vertical")
				assert.Contains(t, out, "<p>one<br>two</p>")
				assert.NotContains(t, out, "<img")
			},
		},
		{
			name: "full image missing picture",
			rec:  models.SlideRecord{"slide_type": "full_image", "title": "F", "image_id": "img_09", "caption": "Cap"},
			validate: func(t *testing.T, out string) {
				assert.Contains(t, out, "full-image-container")
				assert.Contains(t, out, `<p class="caption">Cap</p>`)
				assert.NotContains(t, out, "<img")
			},
		},
		{
			name: "closing default",
			rec:  models.SlideRecord{"slide_type": "closing"},
			validate: func(t *testing.T, out string) {
				assert.Contains(t, out, `<h1 class="closing-title">Thank You</h1>`)
				assert.NotContains(t, out, "closing-subtext")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, fellBack := reg.Resolve(tt.rec.Type())
			require.False(t, fellBack)
			out, err := s.RenderMarkup(tt.rec, ctx)
			require.NoError(t, err)
			tt.validate(t, out)
		})
	}

	assert.Equal(t, 1, collector.Warnings(), "unresolved image is reported once")
	events := collector.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "IMAGE_RESOLUTION_FAILED", events[0].Fields["code"])
	assert.Equal(t, "img_09", events[0].Fields["imageId"])
}

func TestFileURL(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/srv/images/chart 1.png", "file:///srv/images/chart%201.png"},
		{"C:/decks/images/img.png", "file:///C:/decks/images/img.png"},
		{"images/team.png", "images/team.png"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, string(fileURL(tt.path)))
		})
	}
}

func TestBuiltinMarkup_DriveLetterImage(t *testing.T) {
	out, err := execute("full_image", fragmentData{Title: "F", ImageSrc: fileURL("C:/decks/img.png")})
	require.NoError(t, err)
	assert.Contains(t, out, `src="file:///C:/decks/img.png"`)
	assert.NotContains(t, out, "ZgotmplZ")
}

func TestBuiltinDeck_Opening(t *testing.T) {
	ctx, _ := newContext(t, template.Builtin().Canvas(), nil)
	s, _ := NewBuiltin(nil).Resolve(template.TypeOpening)

	d := deck.New(10, 7.5)
	slide, err := s.RenderDeck(models.SlideRecord{"slide_type": "opening", "title": "Hello", "subtitle": "World"}, d, ctx)
	require.NoError(t, err)

	boxes := slide.TextBoxes()
	require.Len(t, boxes, 2)
	assert.Equal(t, "Hello", boxes[0].Frame.Text())
	assert.Equal(t, "World", boxes[1].Frame.Text())
}

func TestGenericMarkup(t *testing.T) {
	def, err := template.Parse("inline", []byte(`{"slide_types": [{"type_id": "quote", "layout": {
		"background": {"type": "solid", "color": "#102030"},
		"elements": [
			{"type": "textbox", "name": "text", "position": {"left": 1, "top": 1, "width": 8, "height": 2},
			 "style": {"font_size": 30, "font_bold": true, "alignment": "center"}},
			{"type": "shape", "name": "bar", "position": {"left": 0, "top": 7, "width": 10, "height": 0.5},
			 "style": {"fill_color": "#ff0000"}}
		]}}]}`))
	require.NoError(t, err)
	reg, err := FromTemplate(def, nil)
	require.NoError(t, err)
	ctx, _ := newContext(t, def.Canvas(), nil)

	s, _ := reg.Resolve("quote")
	out, err := s.RenderMarkup(models.SlideRecord{"slide_type": "quote", "text": "To be"}, ctx)
	require.NoError(t, err)

	assert.Contains(t, out, `class="slide slide-quote"`)
	assert.Contains(t, out, "background:#102030")
	assert.Contains(t, out, "left:10.00%")
	assert.Contains(t, out, "font-size:30pt")
	assert.Contains(t, out, ">To be</p>")
	assert.Contains(t, out, "background:#FF0000")
}

func TestDocument(t *testing.T) {
	out, err := Document("", []string{`<div class="slide">one</div>`, `<div class="slide">two</div>`})
	require.NoError(t, err)
	assert.Contains(t, out, "<title>Presentation</title>")
	assert.Contains(t, out, `<div class="slide">one</div>`)
	assert.Equal(t, 1, strings.Count(out, `<div class="slide">two</div>`))
	assert.Contains(t, out, "ArrowRight")

	out, err = Document("Q3 <Review>", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "<title>Q3 &lt;Review&gt;</title>")
}
