// Package guidance scores a placed bracket against its ideal position and
// turns the offset into human-readable directions.
package guidance

import (
	"fmt"
	"math"
	"strings"

	"bracket-guide/pkg/geometry"
)

// Quality is a tolerance bucket for placement accuracy.
type Quality int

const (
	Perfect Quality = iota
	Good
	Acceptable
	NeedsAdjustment
)

func (q Quality) String() string {
	switch q {
	case Perfect:
		return "perfect"
	case Good:
		return "good"
	case Acceptable:
		return "acceptable"
	case NeedsAdjustment:
		return "needs_adjustment"
	default:
		return "unknown"
	}
}

// Bucket bounds in millimeters. Upper bounds are inclusive: a distance of
// exactly PerfectMaxMm is still Perfect.
const (
	PerfectMaxMm    = 0.3
	GoodMaxMm       = 0.5
	AcceptableMaxMm = 1.0

	// AxisGuidanceMm is the per-axis offset below which no directional
	// suggestion is produced for that axis.
	AxisGuidanceMm = 0.2
)

const (
	perfectText  = "Perfect placement, hold steady."
	almostText   = "Almost there, make tiny adjustments."
	maxDirection = 2 // suggestions joined into one guidance string
)

// Feedback is the derived accuracy report for one fixture. It is stateless:
// recomputed on demand from a live transform and a target, never stored.
type Feedback struct {
	DistanceMm float64          `json:"distance_mm"`
	Quality    Quality          `json:"quality"`
	Guidance   string           `json:"guidance"`
	OffsetMm   geometry.Vector3 `json:"offset_mm"`
}

// Evaluate compares a fixture's current position to its target (both in
// meters) and produces graded, directional feedback. It never fails; when no
// single axis stands out the guidance falls back to a generic message.
func Evaluate(current, target geometry.Vector3) Feedback {
	offsetMm := current.Sub(target).Scale(1000)
	distanceMm := offsetMm.Magnitude()
	quality := Classify(distanceMm)

	return Feedback{
		DistanceMm: distanceMm,
		Quality:    quality,
		Guidance:   directions(offsetMm, quality),
		OffsetMm:   offsetMm,
	}
}

// Classify buckets a distance in millimeters into a Quality level.
func Classify(distanceMm float64) Quality {
	switch {
	case distanceMm <= PerfectMaxMm:
		return Perfect
	case distanceMm <= GoodMaxMm:
		return Good
	case distanceMm <= AcceptableMaxMm:
		return Acceptable
	default:
		return NeedsAdjustment
	}
}

// axisSuggestion is one per-axis correction candidate.
type axisSuggestion struct {
	text      string
	magnitude float64
}

// directions builds the guidance string. Axes are always evaluated in X, Y,
// Z order and suggestions are emitted in that order; when more than
// maxDirection axes exceed the guidance threshold, the smallest-magnitude
// ones are dropped but the axis order of the survivors is preserved.
func directions(offsetMm geometry.Vector3, quality Quality) string {
	if quality == Perfect {
		return perfectText
	}

	axes := []struct {
		value    float64
		positive string
		negative string
	}{
		{offsetMm.X, "left", "right"},
		{offsetMm.Y, "down", "up"},
		{offsetMm.Z, "back", "forward"},
	}

	var suggestions []axisSuggestion
	for _, a := range axes {
		mag := math.Abs(a.value)
		if mag <= AxisGuidanceMm {
			continue
		}
		word := a.positive
		if a.value < 0 {
			word = a.negative
		}
		suggestions = append(suggestions, axisSuggestion{
			text:      fmt.Sprintf("move %s %.1fmm", word, mag),
			magnitude: mag,
		})
	}

	if len(suggestions) == 0 {
		return almostText
	}

	for len(suggestions) > maxDirection {
		smallest := 0
		for i, s := range suggestions {
			if s.magnitude < suggestions[smallest].magnitude {
				smallest = i
			}
		}
		suggestions = append(suggestions[:smallest], suggestions[smallest+1:]...)
	}

	parts := make([]string, len(suggestions))
	for i, s := range suggestions {
		parts[i] = s.text
	}
	return strings.Join(parts, ", ")
}
