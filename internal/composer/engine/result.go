package engine

import (
	"time"

	"github.com/google/uuid"

	apperrors "slide-composer/internal/common/errors"
	"slide-composer/internal/common/logger"
	"slide-composer/internal/composer/placeholder"
	"slide-composer/internal/deck"
	"slide-composer/internal/models"
)

// Input is one composition request. Records and Images are only read.
type Input struct {
	Records []models.SlideRecord
	Images  models.ImageMetadata
	// Title overrides the configured document title for markup output.
	Title string
}

// Failure describes a slide that was skipped.
type Failure struct {
	Index     int                 `json:"index"`
	SlideType string              `json:"slideType"`
	Code      apperrors.ErrorCode `json:"code"`
	Cause     string              `json:"cause"`
}

// Result is the outcome of one run. Markup is set by ComposeMarkup and Deck
// by ComposeDeck.
type Result struct {
	RunID        uuid.UUID         `json:"runId"`
	Backend      Backend           `json:"backend"`
	Mode         Mode              `json:"mode,omitempty"`
	Total        int               `json:"total"`
	Rendered     int               `json:"rendered"`
	Skipped      int               `json:"skipped"`
	Fallbacks    int               `json:"fallbacks"`
	Warnings     int               `json:"warnings"`
	Errors       int               `json:"errors"`
	Failures     []Failure         `json:"failures,omitempty"`
	Placeholders placeholder.Stats `json:"placeholders"`
	Events       []logger.Event    `json:"events,omitempty"`
	Duration     time.Duration     `json:"duration"`

	Markup    string     `json:"-"`
	Fragments []string   `json:"-"`
	Deck      *deck.Deck `json:"-"`
}

// Status summarizes the run for metrics: "ok", "partial" when some slides
// were skipped, or "failed" when none rendered.
func (r *Result) Status() string {
	switch {
	case r.Skipped == 0:
		return "ok"
	case r.Rendered == 0:
		return "failed"
	default:
		return "partial"
	}
}
