// Package detect turns raw object-detector output into labeled, de-duplicated
// tooth candidates.
package detect

import (
	"errors"
	"fmt"

	"bracket-guide/internal/tooth"
	"bracket-guide/pkg/geometry"
)

// ErrShortBuffer reports a detector output buffer smaller than its declared
// shape. The whole decode is aborted; partial slots are never read.
var ErrShortBuffer = errors.New("detector output buffer shorter than declared shape")

// RawDetection is one candidate box from a single detection pass. It exists
// only between the decoder and the suppressor and is never persisted.
type RawDetection struct {
	ClassIndex int
	Confidence float64
	Label      string
	Box        geometry.BoundingBox
}

// Labeler assigns a tooth ID to a decoded detection. The box is in source
// image pixels. Labeling is a policy, not pipeline structure: swap in a
// class-index labeler once a trained multi-class model carries identity.
type Labeler func(classIndex int, box geometry.BoundingBox, frameWidth, frameHeight float64) string

// PositionLabeler labels detections from their position in the frame using
// the default arch-walking heuristic.
func PositionLabeler(_ int, box geometry.BoundingBox, frameWidth, frameHeight float64) string {
	return tooth.PositionLabel(box.X, box.Y, frameWidth, frameHeight)
}

// DecodeOptions configures detector output decoding.
type DecodeOptions struct {
	NumClasses          int     // per-slot class score count C
	InputSize           float64 // model's square input resolution in pixels
	ConfidenceThreshold float64 // slots below this score are dropped
	Labeler             Labeler
}

// DefaultDecodeOptions returns decode options for the standard model.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{
		NumClasses:          1,
		InputSize:           640,
		ConfidenceThreshold: 0.5,
		Labeler:             PositionLabeler,
	}
}

// Decode parses a flat detector output buffer of slots slots, each holding
// 4 geometry values (center-x, center-y, width, height, normalized to the
// model input square) followed by NumClasses confidence scores. Geometry is
// de-normalized into source image pixels of frameWidth x frameHeight.
//
// For each slot the class with the maximum score wins; slots scoring below
// the confidence threshold are dropped (at-threshold is kept). A buffer too
// short for the declared slot count fails the whole call with ErrShortBuffer.
// Zero surviving slots is a normal empty result, not an error.
func Decode(buffer []float32, slots int, frameWidth, frameHeight float64, opts DecodeOptions) ([]RawDetection, error) {
	if opts.NumClasses < 1 {
		return nil, fmt.Errorf("decode: need at least one class, got %d", opts.NumClasses)
	}
	if opts.InputSize <= 0 {
		return nil, fmt.Errorf("decode: invalid model input size %v", opts.InputSize)
	}

	stride := 4 + opts.NumClasses
	if len(buffer) < slots*stride {
		return nil, fmt.Errorf("%w: have %d values, declared %d slots x %d", ErrShortBuffer, len(buffer), slots, stride)
	}

	labeler := opts.Labeler
	if labeler == nil {
		labeler = PositionLabeler
	}

	scaleX := frameWidth / opts.InputSize
	scaleY := frameHeight / opts.InputSize

	var out []RawDetection
	for i := 0; i < slots; i++ {
		slot := buffer[i*stride : (i+1)*stride]

		// Argmax over the class scores.
		best := 0
		bestScore := slot[4]
		for c := 1; c < opts.NumClasses; c++ {
			if slot[4+c] > bestScore {
				best = c
				bestScore = slot[4+c]
			}
		}
		if float64(bestScore) < opts.ConfidenceThreshold {
			continue
		}

		box := geometry.BoundingBox{
			X:      float64(slot[0]) * scaleX,
			Y:      float64(slot[1]) * scaleY,
			Width:  float64(slot[2]) * scaleX,
			Height: float64(slot[3]) * scaleY,
		}

		out = append(out, RawDetection{
			ClassIndex: best,
			Confidence: float64(bestScore),
			Label:      labeler(best, box, frameWidth, frameHeight),
			Box:        box,
		})
	}
	return out, nil
}
