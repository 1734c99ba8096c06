package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Slide record field names.
const (
	FieldSlideType    = "slide_type"
	FieldTitle        = "title"
	FieldSubtitle     = "subtitle"
	FieldSectionTitle = "section_title"
	FieldBullets      = "bullets"
	FieldIndentLevels = "indent_levels"
	FieldText         = "text"
	FieldImageID      = "image_id"
	FieldLayout       = "layout"
	FieldCaption      = "caption"
	FieldClosingText  = "closing_text"
	FieldSubtext      = "subtext"
	FieldContent      = "content"
	FieldContent1     = "content_1"
	FieldContent2     = "content_2"
)

type Orientation string

const (
	OrientationHorizontal Orientation = "horizontal"
	OrientationVertical   Orientation = "vertical"
)

// SlideRecord is one loosely typed slide description. The engine only reads it.
type SlideRecord map[string]interface{}

// Bullet is one list item paired with its indent level.
type Bullet struct {
	Text  string
	Level int
}

// Presentation is the document produced by the content generator.
type Presentation struct {
	Title  string        `json:"title,omitempty"`
	Topic  string        `json:"topic,omitempty"`
	Slides []SlideRecord `json:"slides"`
}

func (r SlideRecord) Type() string {
	return r.String(FieldSlideType)
}

// String returns the field rendered as text, or "" when absent.
func (r SlideRecord) String(field string) string {
	return stringify(r[field])
}

// Has reports whether the field is present and non-blank.
func (r SlideRecord) Has(field string) bool {
	switch v := r[field].(type) {
	case nil:
		return false
	case []interface{}:
		return len(v) > 0
	case []string:
		return len(v) > 0
	default:
		return strings.TrimSpace(stringify(v)) != ""
	}
}

// Strings returns a list field. A plain string is split into lines.
func (r SlideRecord) Strings(field string) []string {
	switch v := r[field].(type) {
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, stringify(item))
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return strings.Split(v, "\n")
	default:
		return nil
	}
}

// Ints returns an integer list field; non-numeric items read as 0.
func (r SlideRecord) Ints(field string) []int {
	switch v := r[field].(type) {
	case []int:
		return append([]int(nil), v...)
	case []interface{}:
		out := make([]int, len(v))
		for i, item := range v {
			out[i] = toInt(item)
		}
		return out
	default:
		return nil
	}
}

// Bullets pairs bullets with indent_levels. Missing levels default to 0.
func (r SlideRecord) Bullets() []Bullet {
	texts := r.Strings(FieldBullets)
	levels := r.Ints(FieldIndentLevels)
	out := make([]Bullet, len(texts))
	for i, text := range texts {
		level := 0
		if i < len(levels) && levels[i] > 0 {
			level = levels[i]
		}
		out[i] = Bullet{Text: text, Level: level}
	}
	return out
}

// Orientation returns the record layout, defaulting to horizontal.
func (r SlideRecord) Orientation() Orientation {
	if strings.EqualFold(strings.TrimSpace(r.String(FieldLayout)), string(OrientationVertical)) {
		return OrientationVertical
	}
	return OrientationHorizontal
}

// DeclaresOrientation reports whether the record names a valid layout.
func (r SlideRecord) DeclaresOrientation() bool {
	switch Orientation(strings.ToLower(strings.TrimSpace(r.String(FieldLayout)))) {
	case OrientationHorizontal, OrientationVertical:
		return true
	default:
		return false
	}
}

// ParsePresentation accepts either a bare array of slide records or an
// object carrying them under "slides".
func ParsePresentation(data []byte) (*Presentation, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var slides []SlideRecord
		if err := json.Unmarshal(data, &slides); err != nil {
			return nil, fmt.Errorf("parse slide records: %w", err)
		}
		return &Presentation{Slides: slides}, nil
	}

	var p Presentation
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse presentation: %w", err)
	}
	if p.Slides == nil {
		return nil, fmt.Errorf("parse presentation: no slides array")
	}
	return &p, nil
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, "\n")
	case []string:
		return strings.Join(t, "\n")
	default:
		return fmt.Sprint(t)
	}
}

func toInt(v interface{}) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case json.Number:
		n, _ := t.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(t))
		return n
	default:
		return 0
	}
}
