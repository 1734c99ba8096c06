package prompt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slide-composer/internal/composer/registry"
	"slide-composer/internal/models"
)

func TestBuild(t *testing.T) {
	entries := registry.NewBuiltin(nil).Entries()

	tests := []struct {
		name       string
		images     models.ImageMetadata
		userPrompt string
		validate   func(t *testing.T, out string)
	}{
		{
			name: "with images and request",
			images: models.ImageMetadata{
				"img_02": {Filename: "team.jpg"},
				"img_01": {Filename: "chart.png"},
			},
			userPrompt: "  Quarterly review for the board  ",
			validate: func(t *testing.T, out string) {
				assert.Contains(t, out, "**User request**\nQuarterly review for the board\n")
				first := strings.Index(out, "- img_01: chart.png")
				second := strings.Index(out, "- img_02: team.jpg")
				require.NotEqual(t, -1, first)
				assert.Greater(t, second, first)
				assert.NotContains(t, out, noImages)
			},
		},
		{
			name: "text only",
			validate: func(t *testing.T, out string) {
				assert.Contains(t, out, noImages)
				assert.NotContains(t, out, "User request")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Build(entries, tt.images, tt.userPrompt)
			require.NoError(t, err)

			for _, e := range entries {
				assert.Contains(t, out, "- "+e.Tag+": "+e.Name+" - "+e.Instruction)
				assert.Contains(t, out, `"slide_type": "`+e.Tag+`"`)
			}
			tt.validate(t, out)
		})
	}
}

func TestBuild_ExamplesFormValidJSON(t *testing.T) {
	entries := registry.NewBuiltin(nil).Entries()
	out, err := Build(entries, nil, "")
	require.NoError(t, err)

	start := strings.Index(out, "{\n  \"title\"")
	end := strings.Index(out, "\n**Available slide types**")
	require.True(t, start >= 0 && end > start)

	var doc models.Presentation
	require.NoError(t, json.Unmarshal([]byte(out[start:end]), &doc))
	assert.Len(t, doc.Slides, len(entries))
	assert.Equal(t, "opening", doc.Slides[0].Type())
}

func TestBuild_FallsBackToDescription(t *testing.T) {
	out, err := Build([]registry.Entry{{Tag: "quote", Name: "Quote", Description: "A single quotation"}}, nil, "")
	require.NoError(t, err)
	assert.Contains(t, out, "- quote: Quote - A single quotation")
	assert.Contains(t, out, "null")
}
