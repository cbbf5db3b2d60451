package geometry

import (
	"math"
)

// BoundingBox represents an axis-aligned box in image space.
// X and Y are the center coordinates; units are pixels, either normalized
// to a model's input resolution or absolute, depending on pipeline stage.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewBoundingBox creates a new center-based BoundingBox.
func NewBoundingBox(x, y, width, height float64) BoundingBox {
	return BoundingBox{X: x, Y: y, Width: width, Height: height}
}

// Center returns the box center as a point in the image plane (Z=0).
func (b BoundingBox) Center() (float64, float64) {
	return b.X, b.Y
}

// Area returns the box area. Negative extents contribute zero.
func (b BoundingBox) Area() float64 {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

// Left returns the minimum X edge.
func (b BoundingBox) Left() float64 { return b.X - b.Width/2 }

// Right returns the maximum X edge.
func (b BoundingBox) Right() float64 { return b.X + b.Width/2 }

// Top returns the minimum Y edge.
func (b BoundingBox) Top() float64 { return b.Y - b.Height/2 }

// Bottom returns the maximum Y edge.
func (b BoundingBox) Bottom() float64 { return b.Y + b.Height/2 }

// Intersection returns the overlap area with another box.
func (b BoundingBox) Intersection(other BoundingBox) float64 {
	w := math.Min(b.Right(), other.Right()) - math.Max(b.Left(), other.Left())
	h := math.Min(b.Bottom(), other.Bottom()) - math.Max(b.Top(), other.Top())
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// IoU returns the Intersection-over-Union ratio with another box.
// Returns 0 when the union area is zero.
func (b BoundingBox) IoU(other BoundingBox) float64 {
	inter := b.Intersection(other)
	union := b.Area() + other.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
