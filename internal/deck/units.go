package deck

import "math"

// EMU (English Metric Units): 1 inch = 914400 EMU, 1 point = 12700 EMU.
const (
	emuPerInch  = 914400
	emuPerPoint = 12700
)

// Inch converts inches to EMU.
func Inch(n float64) int64 {
	return int64(math.Round(n * emuPerInch))
}

// Point converts points to EMU.
func Point(n float64) int64 {
	return int64(math.Round(n * emuPerPoint))
}

// EMUToInch converts EMU to inches.
func EMUToInch(emu int64) float64 {
	return float64(emu) / emuPerInch
}

// Box is a shape frame in EMU.
type Box struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
	W int64 `json:"w"`
	H int64 `json:"h"`
}

// BoxFromInches builds a Box from inch coordinates.
func BoxFromInches(left, top, width, height float64) Box {
	return Box{X: Inch(left), Y: Inch(top), W: Inch(width), H: Inch(height)}
}
