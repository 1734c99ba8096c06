// Package fitter holds the pure sizing heuristics used when laying out
// slide content: bullet tiers, length-based font steps and image aspect fit.
package fitter

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// TextLength counts characters after NFC normalisation, so a decomposed
// accent counts once.
func TextLength(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}

// AverageLength is the mean TextLength of the items, 0 for an empty list.
func AverageLength(items []string) float64 {
	if len(items) == 0 {
		return 0
	}
	total := 0
	for _, item := range items {
		total += TextLength(item)
	}
	return float64(total) / float64(len(items))
}

// TextFit steps a font size down one notch when text is longer than Threshold.
type TextFit struct {
	Threshold int
	Base      float64
	Reduced   float64
}

func (f TextFit) Size(text string) float64 {
	if TextLength(text) > f.Threshold {
		return f.Reduced
	}
	return f.Base
}

// Per-kind sizing constants, in points.
var (
	OpeningTitle    = TextFit{Threshold: 15, Base: 58, Reduced: 52}
	OpeningSubtitle = TextFit{Threshold: 25, Base: 28, Reduced: 26}
	SectionTitle    = TextFit{Threshold: 20, Base: 50, Reduced: 46}
	ImageTitle      = TextFit{Threshold: 20, Base: 36, Reduced: 34}
	Caption         = TextFit{Threshold: 60, Base: 16, Reduced: 15}
	ClosingText     = TextFit{Threshold: 25, Base: 50, Reduced: 46}
	ClosingSubtext  = TextFit{Threshold: 20, Base: 26, Reduced: 24}
)

// ContentTitleSize is the fixed title size of text slides.
const ContentTitleSize = 38.0

// Step is one entry of a multi-threshold size table.
type Step struct {
	Over        int
	FontSize    float64
	LineSpacing float64
}

// PickStep returns the first step whose Over is exceeded by the text length.
// Steps are evaluated in the order given; an Over of -1 always matches.
func PickStep(steps []Step, text string) (Step, bool) {
	n := TextLength(text)
	for _, s := range steps {
		if n > s.Over {
			return s, true
		}
	}
	return Step{}, false
}
