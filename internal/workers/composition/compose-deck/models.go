// internal/workers/composition/compose-deck/models.go
package composedeck

import "slide-composer/internal/models"

// Input is read from the job variables.
type Input struct {
	RequestId string               `json:"requestId"`
	Title     string               `json:"title,omitempty"`
	Slides    []models.SlideRecord `json:"slides"`
	Images    models.ImageMetadata `json:"images,omitempty"`
	Format    string               `json:"format,omitempty"`
}

type Output struct {
	Composition Composition `json:"composition"`
}

type Composition struct {
	RequestId string       `json:"requestId"`
	Status    string       `json:"status"` // ok, partial or failed
	Runs      []RunSummary `json:"runs"`
}

type RunSummary struct {
	RunId     string         `json:"runId"`
	Backend   string         `json:"backend"`
	Mode      string         `json:"mode,omitempty"`
	Total     int            `json:"total"`
	Rendered  int            `json:"rendered"`
	Skipped   int            `json:"skipped"`
	Fallbacks int            `json:"fallbacks"`
	Warnings  int            `json:"warnings"`
	Failures  []SlideFailure `json:"failures,omitempty"`
	Keys      []string       `json:"keys,omitempty"`
}

type SlideFailure struct {
	Index     int    `json:"index"`
	SlideType string `json:"slideType"`
	Code      string `json:"code"`
}
