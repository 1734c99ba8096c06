package fitter

import "math"

// Rect is a frame in canvas units (inches).
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// AspectFit scales an image of the given natural size to fit box while
// keeping its aspect ratio, then centres it on the axis left unused.
// A non-positive natural size fills the box unchanged.
func AspectFit(imgWidth, imgHeight float64, box Rect) Rect {
	if imgWidth <= 0 || imgHeight <= 0 || box.Width <= 0 || box.Height <= 0 {
		return box
	}

	aspect := imgWidth / imgHeight
	w, h := box.Width, box.Width/aspect
	if h > box.Height {
		w, h = math.Min(box.Height*aspect, box.Width), box.Height
	}

	return Rect{
		Left:   box.Left + (box.Width-w)/2,
		Top:    box.Top + (box.Height-h)/2,
		Width:  w,
		Height: h,
	}
}
