package registry

import (
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"path/filepath"
	"strings"

	apperrors "slide-composer/internal/common/errors"
	"slide-composer/internal/composer/layout"
	"slide-composer/internal/composer/template"
	"slide-composer/internal/deck"
	"slide-composer/internal/models"
)

type markupFunc func(def *template.SlideTypeDefinition, rec models.SlideRecord, ctx *Context) (string, error)

var builtinMarkup = map[string]markupFunc{
	template.TypeOpening:        fragment("opening"),
	template.TypeSectionDivider: fragment("section_divider"),
	template.TypeTextContent:    fragment("text_content"),
	template.TypeImageWithText:  fragment("image_with_text"),
	template.TypeFullImage:      fragment("full_image"),
	template.TypeClosing:        fragment("closing"),
}

var fragments = htmltemplate.Must(htmltemplate.New("fragments").Parse(`
{{- define "opening"}}<div class="slide slide-opening">
    <div class="slide-content">
        <h1 class="main-title">{{.Title}}</h1>
        {{- if .Subtitle}}
        <p class="subtitle">{{.Subtitle}}</p>
        {{- end}}
    </div>
</div>{{end}}

{{- define "section_divider"}}<div class="slide slide-section">
    <div class="slide-content">
        <h2 class="section-title">{{.SectionTitle}}</h2>
        <div class="decoration-line"></div>
    </div>
</div>{{end}}

{{- define "text_content"}}<div class="slide slide-content">
    <div class="slide-content">
        <h2 class="slide-title">{{.Title}}</h2>
        <ul class="bullet-list">
        {{- range .Bullets}}
            <li{{if gt .Level 0}} class="indent-{{.Level}}"{{end}}>{{.Text}}</li>
        {{- end}}
        </ul>
    </div>
</div>{{end}}

{{- define "image_with_text"}}<div class="slide slide-content">
    <div class="slide-content">
        <h2 class="slide-title">{{.Title}}</h2>
        <div class="image-text-container {{if .Vertical}}layout-vertical{{else}}layout-horizontal{{end}}">
            <div class="image-box">
                {{- if .ImageSrc}}
                <img src="{{.ImageSrc}}" alt="">
                {{- end}}
            </div>
            <div class="text-box">
                <p>{{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
            </div>
        </div>
    </div>
</div>{{end}}

{{- define "full_image"}}<div class="slide slide-content">
    <div class="slide-content">
        <h2 class="slide-title">{{.Title}}</h2>
        <div class="full-image-container">
            {{- if .ImageSrc}}
            <img src="{{.ImageSrc}}" alt="">
            {{- end}}
            {{- if .Caption}}
            <p class="caption">{{.Caption}}</p>
            {{- end}}
        </div>
    </div>
</div>{{end}}

{{- define "closing"}}<div class="slide slide-closing">
    <div class="slide-content">
        <h1 class="closing-title">{{.ClosingText}}</h1>
        {{- if .Subtext}}
        <p class="closing-subtext">{{.Subtext}}</p>
        {{- end}}
    </div>
</div>{{end}}

{{- define "generic"}}<div class="slide slide-{{.TypeID}}"{{with .Style}} style="{{.}}"{{end}}>
{{- range .Elements}}
    <div class="element element-{{.Kind}}" style="{{.Style}}">
    {{- if .ImageSrc}}
        <img src="{{.ImageSrc}}" alt="">
    {{- else if .Items}}
        <ul class="bullet-list">
        {{- range .Items}}
            <li{{if gt .Level 0}} class="indent-{{.Level}}"{{end}}>{{.Text}}</li>
        {{- end}}
        </ul>
    {{- else}}
        {{- range .Paragraphs}}
        <p style="{{.Style}}">{{.Text}}</p>
        {{- end}}
    {{- end}}
    </div>
{{- end}}
</div>{{end}}
`))

type fragmentData struct {
	Title        string
	Subtitle     string
	SectionTitle string
	Caption      string
	ClosingText  string
	Subtext      string
	Lines        []string
	Bullets      []models.Bullet
	ImageSrc     htmltemplate.URL
	Vertical     bool
}

func fragment(name string) markupFunc {
	return func(def *template.SlideTypeDefinition, rec models.SlideRecord, ctx *Context) (string, error) {
		data := fragmentData{
			Title:        rec.String(models.FieldTitle),
			Subtitle:     rec.String(models.FieldSubtitle),
			SectionTitle: rec.String(models.FieldSectionTitle),
			Caption:      rec.String(models.FieldCaption),
			ClosingText:  withDefault(def, rec, models.FieldClosingText),
			Subtext:      rec.String(models.FieldSubtext),
			Lines:        strings.Split(rec.String(models.FieldText), "\n"),
			Bullets:      rec.Bullets(),
			Vertical:     rec.Orientation() == models.OrientationVertical,
		}
		if rec.Has(models.FieldImageID) {
			data.ImageSrc = imageSource(rec.String(models.FieldImageID), ctx)
		}
		return execute(name, data)
	}
}

// withDefault returns the field value, or the default declared by the
// element bound to it.
func withDefault(def *template.SlideTypeDefinition, rec models.SlideRecord, field string) string {
	if rec.Has(field) {
		return rec.String(field)
	}
	for _, el := range def.Elements {
		if el.Field == field {
			return el.Default
		}
	}
	return ""
}

func imageSource(imageID string, ctx *Context) htmltemplate.URL {
	if ctx == nil || ctx.Images == nil {
		return ""
	}
	path, err := ctx.Images.Path(imageID)
	if err != nil {
		if ctx.Logger != nil {
			ctx.Logger.Warn("image not resolved, omitted from markup",
				apperrors.NewImageResolutionError(imageID, err).LogFields())
		}
		return ""
	}
	return fileURL(path)
}

// fileURL turns a resolved image path into a src value. Absolute and
// drive-letter paths become file URLs; relative paths stay relative to the
// markup document.
func fileURL(path string) htmltemplate.URL {
	p := filepath.ToSlash(path)
	if hasDriveLetter(p) {
		p = "/" + p
	}
	u := &url.URL{Path: p}
	if strings.HasPrefix(p, "/") {
		u.Scheme = "file"
	}
	return htmltemplate.URL(u.String())
}

func hasDriveLetter(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

type genericSlide struct {
	TypeID   string
	Style    htmltemplate.CSS
	Elements []genericElement
}

type genericElement struct {
	Kind       string
	Style      htmltemplate.CSS
	ImageSrc   htmltemplate.URL
	Items      []models.Bullet
	Paragraphs []genericParagraph
}

type genericParagraph struct {
	Text  string
	Style htmltemplate.CSS
}

// genericMarkup renders a template-only kind as absolutely positioned
// elements, in percent of the canvas.
func genericMarkup(def *template.SlideTypeDefinition, rec models.SlideRecord, ctx *Context) (string, error) {
	if ctx == nil || ctx.Layout == nil {
		return "", fmt.Errorf("render %s: no layout resolver in context", def.TypeID)
	}
	resolved := ctx.Layout.Resolve(def, rec)

	data := genericSlide{TypeID: def.TypeID}
	if resolved.Background != nil {
		data.Style = htmltemplate.CSS("background:" + resolved.Background.Hex())
	}
	for _, el := range resolved.Elements {
		data.Elements = append(data.Elements, genericFrom(el, resolved))
	}
	return execute("generic", data)
}

func genericFrom(el layout.Element, s *layout.Slide) genericElement {
	out := genericElement{
		Kind: string(el.Kind),
		Style: htmltemplate.CSS(fmt.Sprintf("position:absolute;left:%s%%;top:%s%%;width:%s%%;height:%s%%",
			percent(el.Frame.Left, s.Canvas.Width), percent(el.Frame.Top, s.Canvas.Height),
			percent(el.Frame.Width, s.Canvas.Width), percent(el.Frame.Height, s.Canvas.Height))),
	}
	switch {
	case el.ImagePath != "":
		out.ImageSrc = fileURL(el.ImagePath)
	case el.Bullets:
		for _, p := range el.Paragraphs {
			text := p.Text()
			if len(p.Runs) > 1 {
				text = p.Runs[len(p.Runs)-1].Text
			}
			out.Items = append(out.Items, models.Bullet{Text: text, Level: p.Level})
		}
	case len(el.Paragraphs) > 0:
		for _, p := range el.Paragraphs {
			out.Paragraphs = append(out.Paragraphs, genericParagraph{Text: p.Text(), Style: paragraphCSS(p.Runs, string(p.Align), p.LineSpacing)})
		}
	default:
		out.Style += htmltemplate.CSS(";background:" + el.Fill.Hex())
	}
	return out
}

func paragraphCSS(runs []deck.Run, align string, lineSpacing float64) htmltemplate.CSS {
	var parts []string
	if align != "" {
		parts = append(parts, "text-align:"+align)
	}
	if lineSpacing > 0 {
		parts = append(parts, fmt.Sprintf("line-height:%g", lineSpacing))
	}
	if len(runs) > 0 {
		f := runs[0].Font
		if f.Size > 0 {
			parts = append(parts, fmt.Sprintf("font-size:%gpt", f.Size))
		}
		if f.Bold {
			parts = append(parts, "font-weight:bold")
		}
		if f.Italic {
			parts = append(parts, "font-style:italic")
		}
		parts = append(parts, "color:"+f.Color.Hex())
	}
	return htmltemplate.CSS(strings.Join(parts, ";"))
}

func percent(v, total float64) string {
	if total <= 0 {
		return "0"
	}
	return fmt.Sprintf("%.2f", v/total*100)
}

func execute(name string, data interface{}) (string, error) {
	var sb strings.Builder
	if err := fragments.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render %s markup: %w", name, err)
	}
	return sb.String(), nil
}
