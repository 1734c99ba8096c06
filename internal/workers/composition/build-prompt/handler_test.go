package buildprompt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slide-composer/internal/common/logger"
	"slide-composer/internal/composer/registry"
	"slide-composer/internal/models"
)

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(&Config{Timeout: time.Second}, registry.NewBuiltin(nil), logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{
		UserPrompt: "Product launch",
		Images:     models.ImageMetadata{"img_01": {Filename: "hero.jpg"}},
	})
	require.NoError(t, err)

	assert.Contains(t, output.Prompt, "Product launch")
	assert.Contains(t, output.Prompt, "- img_01: hero.jpg")
	assert.Equal(t, []string{"opening", "section_divider", "text_content", "image_with_text", "full_image", "closing"}, output.SlideTypes)
}
