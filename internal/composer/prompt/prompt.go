// Package prompt assembles the instructions handed to the content generator:
// the catalogue of slide kinds with their example records and the images it
// may reference.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"slide-composer/internal/composer/registry"
	"slide-composer/internal/models"
)

const noImages = "No images available (text-only presentation)"

const generationTemplate = `Analyse the following content and produce a structured presentation.
{{- if .UserPrompt}}

**User request**
{{.UserPrompt}}
{{- end}}

**Available images**:
{{- if .Images}}
{{- range .Images}}
- {{.ID}}: {{.Filename}}
{{- end}}
{{- else}}
{{noImages}}
{{- end}}

**Output JSON format**:
{
  "title": "Presentation title",
  "topic": "Presentation topic",
  "slides": [
    {{join .Examples ",\n    "}}
  ]
}

**Available slide types**:
{{- range .Entries}}
- {{.Tag}}: {{.Name}}{{if .Instruction}} - {{.Instruction}}{{else if .Description}} - {{.Description}}{{end}}
{{- end}}

**Requirements**:
1. Identify 2-4 themes in the content
2. Open each theme with a section divider
3. Place images where they support the text (if any)
4. Produce 10-15 slides in total
5. Follow the JSON format above exactly
6. Do not use markdown formatting
`

var generation = template.Must(template.New("generation").Funcs(template.FuncMap{
	"join":     strings.Join,
	"noImages": func() string { return noImages },
}).Parse(generationTemplate))

type imageLine struct {
	ID       string
	Filename string
}

type data struct {
	UserPrompt string
	Images     []imageLine
	Examples   []string
	Entries    []registry.Entry
}

// Build renders the generation prompt for the given kinds and images. Images
// are listed by identifier in sorted order.
func Build(entries []registry.Entry, images models.ImageMetadata, userPrompt string) (string, error) {
	d := data{
		UserPrompt: strings.TrimSpace(userPrompt),
		Entries:    entries,
	}
	for _, id := range images.IDs() {
		d.Images = append(d.Images, imageLine{ID: id, Filename: images[id].Filename})
	}

	for _, e := range entries {
		example, err := Example(e)
		if err != nil {
			return "", err
		}
		d.Examples = append(d.Examples, strings.ReplaceAll(example, "\n", "\n    "))
	}

	var sb strings.Builder
	if err := generation.Execute(&sb, d); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return sb.String(), nil
}

// Example renders one kind's example record as indented JSON.
func Example(e registry.Entry) (string, error) {
	out, err := json.MarshalIndent(e.Example, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode example for %s: %w", e.Tag, err)
	}
	return string(out), nil
}
