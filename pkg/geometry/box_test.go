package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundingBoxEdges(t *testing.T) {
	b := NewBoundingBox(10, 20, 4, 6)
	assert.Equal(t, 8.0, b.Left())
	assert.Equal(t, 12.0, b.Right())
	assert.Equal(t, 17.0, b.Top())
	assert.Equal(t, 23.0, b.Bottom())
	assert.Equal(t, 24.0, b.Area())
}

func TestIoUIdentical(t *testing.T) {
	b := NewBoundingBox(5, 5, 10, 10)
	assert.InDelta(t, 1.0, b.IoU(b), 1e-12)
}

func TestIoUDisjoint(t *testing.T) {
	a := NewBoundingBox(0, 0, 2, 2)
	b := NewBoundingBox(100, 100, 2, 2)
	assert.Equal(t, 0.0, a.IoU(b))
}

func TestIoUPartialOverlap(t *testing.T) {
	// Two 10x10 boxes offset by 5 in X: intersection 50, union 150.
	a := NewBoundingBox(5, 5, 10, 10)
	b := NewBoundingBox(10, 5, 10, 10)
	assert.InDelta(t, 50.0/150.0, a.IoU(b), 1e-12)
}

func TestIoUSymmetric(t *testing.T) {
	cases := []struct {
		a, b BoundingBox
	}{
		{NewBoundingBox(0, 0, 4, 4), NewBoundingBox(1, 1, 4, 4)},
		{NewBoundingBox(2, 3, 5, 1), NewBoundingBox(2, 3, 1, 5)},
		{NewBoundingBox(0, 0, 0, 0), NewBoundingBox(1, 1, 2, 2)},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.a.IoU(tc.b), tc.b.IoU(tc.a))
	}
}

func TestIoUZeroUnion(t *testing.T) {
	// Degenerate boxes with no area must not divide by zero.
	a := NewBoundingBox(1, 1, 0, 0)
	assert.Equal(t, 0.0, a.IoU(a))
}
