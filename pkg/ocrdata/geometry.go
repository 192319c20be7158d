package ocrdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGeometry is returned when bounding box coordinates are negative,
// non-finite, or inverted.
var ErrInvalidGeometry = errors.New("ocrdata: invalid geometry")

// BoundingBox is an axis-aligned rectangle in pixel coordinates with the
// origin in the top-left corner. X1 >= X0 and Y1 >= Y0 always hold for a
// validated box; a zero-area box is valid but contributes nothing visible.
type BoundingBox struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

// NewBoundingBox validates and creates a bounding box. Coordinates must be
// finite and non-negative, and the box must not be inverted. Degenerate
// (zero-width or zero-height) boxes are accepted.
func NewBoundingBox(x0, y0, x1, y1 float64) (BoundingBox, error) {
	for _, c := range [4]float64{x0, y0, x1, y1} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return BoundingBox{}, fmt.Errorf("%w: non-finite coordinate %v", ErrInvalidGeometry, c)
		}
		if c < 0 {
			return BoundingBox{}, fmt.Errorf("%w: negative coordinate %v", ErrInvalidGeometry, c)
		}
	}
	if x1 < x0 || y1 < y0 {
		return BoundingBox{}, fmt.Errorf("%w: inverted box [%v %v %v %v]", ErrInvalidGeometry, x0, y0, x1, y1)
	}
	return BoundingBox{X0: x0, Y0: y0, X1: x1, Y1: y1}, nil
}

// Width returns x1-x0.
func (b BoundingBox) Width() float64 { return b.X1 - b.X0 }

// Height returns y1-y0.
func (b BoundingBox) Height() float64 { return b.Y1 - b.Y0 }

// Area returns width*height.
func (b BoundingBox) Area() float64 { return b.Width() * b.Height() }

// Center returns the midpoint of the box.
func (b BoundingBox) Center() (x, y float64) {
	return (b.X0 + b.X1) / 2, (b.Y0 + b.Y1) / 2
}

// Intersection returns the overlapping region of two boxes and whether a
// non-empty overlap exists.
func (b BoundingBox) Intersection(other BoundingBox) (BoundingBox, bool) {
	x0 := math.Max(b.X0, other.X0)
	y0 := math.Max(b.Y0, other.Y0)
	x1 := math.Min(b.X1, other.X1)
	y1 := math.Min(b.Y1, other.Y1)
	if x0 >= x1 || y0 >= y1 {
		return BoundingBox{}, false
	}
	return BoundingBox{X0: x0, Y0: y0, X1: x1, Y1: y1}, true
}

// IntersectionArea returns the area of the overlap with another box,
// or 0 when the boxes are disjoint.
func (b BoundingBox) IntersectionArea(other BoundingBox) float64 {
	in, ok := b.Intersection(other)
	if !ok {
		return 0
	}
	return in.Area()
}

// OverlapRatio returns the share of this box's own area that is covered by
// the other box. A degenerate box reports 0.
func (b BoundingBox) OverlapRatio(other BoundingBox) float64 {
	if b.Area() == 0 {
		return 0
	}
	return b.IntersectionArea(other) / b.Area()
}

// MarshalJSON encodes the box as the 4-element array [x0, y0, x1, y1].
func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X0, b.Y0, b.X1, b.Y1})
}

// UnmarshalJSON decodes and validates the [x0, y0, x1, y1] array form.
func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return err
	}
	if len(coords) != 4 {
		return fmt.Errorf("%w: bbox needs 4 coordinates, got %d", ErrInvalidGeometry, len(coords))
	}
	box, err := NewBoundingBox(coords[0], coords[1], coords[2], coords[3])
	if err != nil {
		return err
	}
	*b = box
	return nil
}
