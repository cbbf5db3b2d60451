package detect

import (
	"sort"
)

// DefaultIoUThreshold is the overlap ratio above which two detections are
// considered duplicates of the same tooth.
const DefaultIoUThreshold = 0.45

// Suppress removes overlapping duplicate detections by greedy non-maximum
// suppression: the highest-confidence remaining candidate is accepted and
// every other candidate overlapping it with IoU above the threshold is
// discarded, until the candidate list is exhausted.
//
// The sort is stable, so equal confidences keep their input order and the
// same input always yields the same output. Running Suppress on its own
// output returns it unchanged.
func Suppress(detections []RawDetection, iouThreshold float64) []RawDetection {
	if len(detections) <= 1 {
		return detections
	}

	candidates := make([]RawDetection, len(detections))
	copy(candidates, detections)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	kept := make([]RawDetection, 0, len(candidates))
	for len(candidates) > 0 {
		best := candidates[0]
		kept = append(kept, best)

		remaining := candidates[:0]
		for _, c := range candidates[1:] {
			if best.Box.IoU(c.Box) <= iouThreshold {
				remaining = append(remaining, c)
			}
		}
		candidates = remaining
	}
	return kept
}
