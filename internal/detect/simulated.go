package detect

import (
	"image"
)

// SimulatedDetector produces a fixed synthetic arch of tooth detections in
// the same tensor format as the DNN runtime. It stands in for the real model
// during development and on machines without a model file; output is fully
// deterministic so downstream stages can be tested against it.
type SimulatedDetector struct {
	inputSize int
	classes   int
}

// NewSimulatedDetector creates a simulated detector emitting numClasses
// class scores per slot.
func NewSimulatedDetector(inputSize, numClasses int) *SimulatedDetector {
	if inputSize <= 0 {
		inputSize = 640
	}
	if numClasses < 1 {
		numClasses = 1
	}
	return &SimulatedDetector{inputSize: inputSize, classes: numClasses}
}

// Infer ignores the frame content and returns a synthetic two-arch layout:
// six upper and six lower front teeth spread across the input square, with
// confidences tapering away from the midline.
func (d *SimulatedDetector) Infer(_ image.Image) (Output, error) {
	const perArch = 6
	size := float64(d.inputSize)
	stride := 4 + d.classes

	toothW := size / 10
	toothH := size / 8

	buffer := make([]float32, 0, 2*perArch*stride)
	slots := 0
	for arch := 0; arch < 2; arch++ {
		centerY := size * 0.35
		if arch == 1 {
			centerY = size * 0.65
		}
		for i := 0; i < perArch; i++ {
			centerX := size * (float64(i) + 2.0) / 9.0

			// Teeth near the midline score highest.
			midlineDist := float64(i) - float64(perArch-1)/2
			if midlineDist < 0 {
				midlineDist = -midlineDist
			}
			conf := 0.95 - 0.05*midlineDist

			slot := make([]float32, stride)
			slot[0] = float32(centerX)
			slot[1] = float32(centerY)
			slot[2] = float32(toothW)
			slot[3] = float32(toothH)
			slot[4] = float32(conf)
			buffer = append(buffer, slot...)
			slots++
		}
	}

	return Output{Buffer: buffer, Slots: slots, Classes: d.classes}, nil
}

// InputSize returns the simulated model's square input resolution.
func (d *SimulatedDetector) InputSize() int { return d.inputSize }

// Close is a no-op; the simulated detector holds no resources.
func (d *SimulatedDetector) Close() error { return nil }
