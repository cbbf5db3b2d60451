package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bracket-guide/internal/tooth"
	"bracket-guide/pkg/geometry"
)

// slot builds one buffer slot: normalized geometry plus class scores.
func slot(cx, cy, w, h float32, scores ...float32) []float32 {
	return append([]float32{cx, cy, w, h}, scores...)
}

func TestDecodeDenormalizesGeometry(t *testing.T) {
	opts := DefaultDecodeOptions()
	opts.InputSize = 640

	// 1280x960 frame: scale 2.0 in X, 1.5 in Y.
	buf := slot(320, 320, 64, 64, 0.9)
	dets, err := Decode(buf, 1, 1280, 960, opts)
	require.NoError(t, err)
	require.Len(t, dets, 1)

	assert.InDelta(t, 640.0, dets[0].Box.X, 1e-9)
	assert.InDelta(t, 480.0, dets[0].Box.Y, 1e-9)
	assert.InDelta(t, 128.0, dets[0].Box.Width, 1e-9)
	assert.InDelta(t, 96.0, dets[0].Box.Height, 1e-9)
	assert.InDelta(t, 0.9, dets[0].Confidence, 1e-6)
}

func TestDecodeArgmaxClass(t *testing.T) {
	opts := DefaultDecodeOptions()
	opts.NumClasses = 3

	buf := slot(100, 100, 10, 10, 0.2, 0.8, 0.3)
	dets, err := Decode(buf, 1, 640, 640, opts)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, 1, dets[0].ClassIndex)
	assert.InDelta(t, 0.8, dets[0].Confidence, 1e-6)
}

func TestDecodeConfidenceThreshold(t *testing.T) {
	opts := DefaultDecodeOptions()
	opts.ConfidenceThreshold = 0.5

	buf := append(slot(100, 100, 10, 10, 0.49), slot(200, 200, 10, 10, 0.5)...)
	dets, err := Decode(buf, 2, 640, 640, opts)
	require.NoError(t, err)

	// Below threshold dropped, at threshold kept.
	require.Len(t, dets, 1)
	assert.InDelta(t, 0.5, dets[0].Confidence, 1e-6)
}

func TestDecodeMaxThresholdYieldsEmpty(t *testing.T) {
	opts := DefaultDecodeOptions()
	opts.ConfidenceThreshold = 1.0

	buf := append(slot(100, 100, 10, 10, 0.99), slot(200, 200, 10, 10, 0.7)...)
	dets, err := Decode(buf, 2, 640, 640, opts)
	require.NoError(t, err)
	assert.Empty(t, dets)
}

func TestDecodeShortBuffer(t *testing.T) {
	opts := DefaultDecodeOptions()

	// Two slots declared, only one and a half present.
	buf := append(slot(100, 100, 10, 10, 0.9), 50, 50)
	dets, err := Decode(buf, 2, 640, 640, opts)
	assert.ErrorIs(t, err, ErrShortBuffer)
	assert.Nil(t, dets)
}

func TestDecodeZeroSlots(t *testing.T) {
	dets, err := Decode(nil, 0, 640, 640, DefaultDecodeOptions())
	assert.NoError(t, err)
	assert.Empty(t, dets)
}

func TestDecodeAssignsParseableLabels(t *testing.T) {
	dets, err := Decode(slot(320, 100, 50, 50, 0.9), 1, 640, 640, DefaultDecodeOptions())
	require.NoError(t, err)
	require.Len(t, dets, 1)

	_, err = tooth.ParseFDI(dets[0].Label)
	assert.NoError(t, err)
}

func TestDecodeCustomLabeler(t *testing.T) {
	opts := DefaultDecodeOptions()
	opts.Labeler = func(classIndex int, _ geometry.BoundingBox, _, _ float64) string {
		return "11"
	}

	dets, err := Decode(slot(10, 10, 5, 5, 0.9), 1, 640, 640, opts)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "11", dets[0].Label)
}
