package deck

import (
	"encoding/json"
	"fmt"
	"os"

	apperrors "slide-composer/internal/common/errors"
)

// Skeleton is a pre-authored deck description whose layouts carry native
// placeholders. Sizes and positions are in inches.
type Skeleton struct {
	Width       float64          `json:"slide_width"`
	Height      float64          `json:"slide_height"`
	Layouts     []SkeletonLayout `json:"layouts"`
	TypeLayouts map[string]int   `json:"type_layouts,omitempty"`
}

type SkeletonLayout struct {
	Name         string                `json:"name"`
	Placeholders []SkeletonPlaceholder `json:"placeholders"`
}

type SkeletonPlaceholder struct {
	Role     string           `json:"role"`
	Index    int              `json:"idx"`
	Position SkeletonPosition `json:"position"`
}

type SkeletonPosition struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LoadSkeleton reads and validates a skeleton document.
func LoadSkeleton(path string) (*Skeleton, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewSkeletonInvalidError(path, err.Error())
	}
	return ParseSkeleton(path, data)
}

func ParseSkeleton(source string, data []byte) (*Skeleton, error) {
	var sk Skeleton
	if err := json.Unmarshal(data, &sk); err != nil {
		return nil, apperrors.NewSkeletonInvalidError(source, fmt.Sprintf("parse: %v", err))
	}
	if len(sk.Layouts) == 0 {
		return nil, apperrors.NewSkeletonInvalidError(source, "at least one layout is required")
	}
	for i, l := range sk.Layouts {
		for j, ph := range l.Placeholders {
			if !PlaceholderRole(ph.Role).Valid() {
				return nil, apperrors.NewSkeletonInvalidError(source,
					fmt.Sprintf("layouts[%d].placeholders[%d]: unknown role %q", i, j, ph.Role))
			}
		}
	}
	for typeID, idx := range sk.TypeLayouts {
		if idx < 0 || idx >= len(sk.Layouts) {
			return nil, apperrors.NewSkeletonInvalidError(source,
				fmt.Sprintf("type_layouts[%s]: layout %d out of range", typeID, idx))
		}
	}
	return &sk, nil
}

// NewDeck instantiates an empty deck carrying the skeleton's layouts.
// Missing canvas dimensions fall back to the given defaults.
func (s *Skeleton) NewDeck(defaultWidth, defaultHeight float64) *Deck {
	w, h := s.Width, s.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	d := &Deck{Width: Inch(w), Height: Inch(h)}
	for _, l := range s.Layouts {
		layout := &Layout{Name: l.Name}
		for _, ph := range l.Placeholders {
			layout.Placeholders = append(layout.Placeholders, PlaceholderSpec{
				Role:  PlaceholderRole(ph.Role),
				Index: ph.Index,
				Box:   BoxFromInches(ph.Position.Left, ph.Position.Top, ph.Position.Width, ph.Position.Height),
			})
		}
		d.Layouts = append(d.Layouts, layout)
	}
	return d
}

// LayoutFor returns the layout mapped to a slide type, if any.
func (s *Skeleton) LayoutFor(typeID string) (int, bool) {
	idx, ok := s.TypeLayouts[typeID]
	return idx, ok
}
