package detect

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Output is one raw inference result: a flat buffer of Slots slots, each
// 4 geometry values plus Classes class scores, normalized to the model's
// square input resolution.
type Output struct {
	Buffer  []float32
	Slots   int
	Classes int
}

// Detector produces raw detection tensors from camera frames. The concrete
// strategy is chosen once at construction: a DNN-backed detector when a
// model file is available, or the simulated detector otherwise.
type Detector interface {
	// Infer runs one inference pass on a frame. A runtime reporting zero
	// detections returns an Output with Slots == 0 and no error.
	Infer(frame image.Image) (Output, error)

	// InputSize returns the model's square input resolution in pixels.
	InputSize() int

	// Close releases any resources held by the detector.
	Close() error
}

// DNNDetector runs a detection network through the OpenCV DNN runtime.
type DNNDetector struct {
	net       gocv.Net
	inputSize int
	classes   int
}

// NewDNNDetector loads a detection model (ONNX or other OpenCV-readable
// format) and prepares it for inference.
func NewDNNDetector(modelPath string, inputSize, numClasses int) (*DNNDetector, error) {
	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("load detection model %s: network is empty", modelPath)
	}
	return &DNNDetector{net: net, inputSize: inputSize, classes: numClasses}, nil
}

// Infer converts the frame to a letterboxed square blob, runs a forward
// pass, and returns the flattened output tensor.
func (d *DNNDetector) Infer(frame image.Image) (Output, error) {
	if frame == nil {
		return Output{}, fmt.Errorf("nil frame")
	}
	mat, err := imageToMat(frame)
	if err != nil {
		return Output{}, fmt.Errorf("convert frame: %w", err)
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, 1.0/255.0,
		image.Pt(d.inputSize, d.inputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	prob := d.net.Forward("")
	defer prob.Close()

	data, err := prob.DataPtrFloat32()
	if err != nil {
		return Output{}, fmt.Errorf("read network output: %w", err)
	}

	stride := 4 + d.classes
	slots := len(data) / stride

	// Copy out: the Mat's backing memory is released on Close.
	buffer := make([]float32, slots*stride)
	copy(buffer, data)

	return Output{Buffer: buffer, Slots: slots, Classes: d.classes}, nil
}

// InputSize returns the model's square input resolution.
func (d *DNNDetector) InputSize() int { return d.inputSize }

// Close releases the network.
func (d *DNNDetector) Close() error {
	return d.net.Close()
}

// imageToMat converts a Go image.Image to a gocv.Mat in BGR format.
func imageToMat(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return gocv.NewMat(), fmt.Errorf("empty frame %dx%d", w, h)
	}

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat, nil
}
