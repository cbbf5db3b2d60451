// Package tooth provides dental domain types: FDI tooth notation, arch
// positions, and the per-frame detection result consumed by placement.
package tooth

import (
	"fmt"
	"strconv"
)

// Quadrant identifies one quarter of the dental arches in FDI notation.
// 1 = upper right, 2 = upper left, 3 = lower left, 4 = lower right,
// always from the patient's point of view.
type Quadrant int

const (
	UpperRight Quadrant = 1
	UpperLeft  Quadrant = 2
	LowerLeft  Quadrant = 3
	LowerRight Quadrant = 4
)

func (q Quadrant) String() string {
	switch q {
	case UpperRight:
		return "upper-right"
	case UpperLeft:
		return "upper-left"
	case LowerLeft:
		return "lower-left"
	case LowerRight:
		return "lower-right"
	default:
		return "unknown"
	}
}

// IsUpper reports whether the quadrant belongs to the upper arch.
func (q Quadrant) IsUpper() bool {
	return q == UpperRight || q == UpperLeft
}

// ArchPosition is a tooth's place in the dental arches, parsed from an FDI
// label. Index counts from the arch midline: 1 is the central incisor,
// 8 the third molar.
type ArchPosition struct {
	Quadrant Quadrant
	Index    int
}

// ParseFDI parses a two-digit FDI notation label (e.g. "11", "36") into an
// ArchPosition.
func ParseFDI(label string) (ArchPosition, error) {
	if len(label) != 2 {
		return ArchPosition{}, fmt.Errorf("invalid FDI label %q: expected two digits", label)
	}
	n, err := strconv.Atoi(label)
	if err != nil {
		return ArchPosition{}, fmt.Errorf("invalid FDI label %q: %w", label, err)
	}
	q := Quadrant(n / 10)
	idx := n % 10
	if q < UpperRight || q > LowerRight || idx < 1 || idx > 8 {
		return ArchPosition{}, fmt.Errorf("invalid FDI label %q: quadrant 1-4 and index 1-8 required", label)
	}
	return ArchPosition{Quadrant: q, Index: idx}, nil
}

// Label returns the two-digit FDI notation string.
func (p ArchPosition) Label() string {
	return strconv.Itoa(int(p.Quadrant)*10 + p.Index)
}

// MidlineDistance returns how far the tooth sits from the arch midline,
// from 1 (central incisor) to 8 (third molar).
func (p ArchPosition) MidlineDistance() int {
	return p.Index
}

// IsLeftSide reports whether the tooth is on the patient's left.
func (p ArchPosition) IsLeftSide() bool {
	return p.Quadrant == UpperLeft || p.Quadrant == LowerLeft
}

// PositionLabel assigns an FDI label from a detection's center position in
// the frame. This is the default labeling policy for detectors whose class
// output does not carry tooth identity: the upper half of the frame maps to
// the upper arch, and horizontal position maps to an index walking the arch
// from the patient's right to the patient's left.
//
// The mapping is a heuristic, not an anatomical truth; callers with a
// trained multi-class model should label from the class index instead.
func PositionLabel(centerX, centerY, frameWidth, frameHeight float64) string {
	if frameWidth <= 0 || frameHeight <= 0 {
		return ArchPosition{Quadrant: UpperRight, Index: 1}.Label()
	}

	upper := centerY < frameHeight/2

	// Walk the visible arch left-to-right in image space. Image left is the
	// patient's right, so the first half counts down quadrant 1 (or 4) and
	// the second half counts up quadrant 2 (or 3).
	rel := centerX / frameWidth
	if rel < 0 {
		rel = 0
	}
	if rel >= 1 {
		rel = 0.999
	}

	// 10 visible slots across the frame: indices 5..1 then 1..5.
	slot := int(rel * 10)
	var pos ArchPosition
	if slot < 5 {
		pos.Index = 5 - slot
		if upper {
			pos.Quadrant = UpperRight
		} else {
			pos.Quadrant = LowerRight
		}
	} else {
		pos.Index = slot - 4
		if upper {
			pos.Quadrant = UpperLeft
		} else {
			pos.Quadrant = LowerLeft
		}
	}
	return pos.Label()
}
