// internal/workers/composition/build-prompt/models.go
package buildprompt

import "slide-composer/internal/models"

type Input struct {
	UserPrompt string               `json:"userPrompt,omitempty"`
	Images     models.ImageMetadata `json:"images,omitempty"`
}

type Output struct {
	Prompt     string   `json:"prompt"`
	SlideTypes []string `json:"slideTypes"`
}
