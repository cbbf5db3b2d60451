// Package pose approximates 3D tooth poses from 2D detections using a
// monocular size-based depth model.
package pose

import (
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"

	"bracket-guide/internal/detect"
	"bracket-guide/internal/tooth"
	"bracket-guide/pkg/geometry"
)

// ErrNoIntrinsics reports estimation attempted before valid camera
// intrinsics were supplied.
var ErrNoIntrinsics = errors.New("camera intrinsics not set")

// ErrDegenerateBox reports a detection box too small to infer depth from.
var ErrDegenerateBox = errors.New("degenerate bounding box")

// Intrinsics holds pinhole camera parameters in pixels.
type Intrinsics struct {
	Fx float64 `json:"fx"`
	Fy float64 `json:"fy"`
	Cx float64 `json:"cx"`
	Cy float64 `json:"cy"`
}

// Valid reports whether the intrinsics can be used for back-projection.
func (in Intrinsics) Valid() bool {
	return in.Fx > 0 && in.Fy > 0
}

// matrix returns the 3x3 camera matrix K.
func (in Intrinsics) matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		in.Fx, 0, in.Cx,
		0, in.Fy, in.Cy,
		0, 0, 1,
	})
}

// Options configures pose estimation.
type Options struct {
	// ReferenceToothWidthMm is the assumed physical tooth width used for
	// depth recovery. A single constant for all teeth is a deliberate
	// approximation: depth accuracy is only as good as this assumption.
	ReferenceToothWidthMm float64

	// LandmarkOffsetMm is the distance from the tooth center to each of
	// the four directional landmarks.
	LandmarkOffsetMm float64

	// AttachmentOffsetMm is how far outside the estimated surface, along
	// its normal, the optimal bracket position sits.
	AttachmentOffsetMm float64
}

// DefaultOptions returns standard estimation options.
func DefaultOptions() Options {
	return Options{
		ReferenceToothWidthMm: 8.0,
		LandmarkOffsetMm:      2.0,
		AttachmentOffsetMm:    1.0,
	}
}

// Estimator converts accepted 2D detections into approximate 3D tooth poses.
// Intrinsics may arrive after construction and change over the session;
// updates are safe against concurrent estimation.
type Estimator struct {
	opts Options

	mu   sync.RWMutex
	intr Intrinsics
	kInv *mat.Dense
}

// NewEstimator creates an Estimator with no intrinsics set.
func NewEstimator(opts Options) *Estimator {
	if opts.ReferenceToothWidthMm <= 0 {
		opts = DefaultOptions()
	}
	return &Estimator{opts: opts}
}

// SetIntrinsics installs or replaces the camera intrinsics. Invalid
// intrinsics (zero focal length) clear the estimator instead of poisoning
// later math.
func (e *Estimator) SetIntrinsics(in Intrinsics) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !in.Valid() {
		e.intr = Intrinsics{}
		e.kInv = nil
		return
	}

	var inv mat.Dense
	if err := inv.Inverse(in.matrix()); err != nil {
		e.intr = Intrinsics{}
		e.kInv = nil
		return
	}
	e.intr = in
	e.kInv = &inv
}

// Intrinsics returns the currently installed intrinsics.
func (e *Estimator) Intrinsics() Intrinsics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.intr
}

// Estimate converts one detection into a localized DetectedTooth.
//
// Depth follows the monocular size prior: z_mm = refWidth * fx / boxWidth,
// so a wider apparent box means a closer tooth. The pixel center is then
// back-projected through K^-1 and scaled by that depth. Positions are
// stored in meters.
func (e *Estimator) Estimate(d detect.RawDetection) (tooth.DetectedTooth, error) {
	e.mu.RLock()
	intr := e.intr
	kInv := e.kInv
	e.mu.RUnlock()

	if kInv == nil || !intr.Valid() {
		return tooth.DetectedTooth{}, ErrNoIntrinsics
	}
	if d.Box.Width <= 0 {
		return tooth.DetectedTooth{}, fmt.Errorf("%w: width %v", ErrDegenerateBox, d.Box.Width)
	}

	pos, err := tooth.ParseFDI(d.Label)
	if err != nil {
		return tooth.DetectedTooth{}, fmt.Errorf("pose estimation: %w", err)
	}

	depthMm := e.opts.ReferenceToothWidthMm * intr.Fx / d.Box.Width

	// Back-project the box center: world = depth * K^-1 * [u v 1]^T.
	var ray mat.VecDense
	ray.MulVec(kInv, mat.NewVecDense(3, []float64{d.Box.X, d.Box.Y, 1}))
	centerMm := geometry.Vector3{
		X: ray.AtVec(0) * depthMm,
		Y: ray.AtVec(1) * depthMm,
		Z: ray.AtVec(2) * depthMm,
	}
	if !centerMm.IsFinite() {
		return tooth.DetectedTooth{}, fmt.Errorf("%w: non-finite projection", ErrDegenerateBox)
	}

	normal := SurfaceNormal(pos)
	centerM := centerMm.Scale(1e-3)

	return tooth.DetectedTooth{
		ID:                d.Label,
		Confidence:        d.Confidence,
		BoundingBox:       d.Box,
		Pose:              tooth.Pose{Position: centerM},
		SurfaceNormal:     normal,
		Landmarks:         e.landmarks(centerMm, pos),
		OptimalAttachment: centerM.Add(normal.Scale(e.opts.AttachmentOffsetMm * 1e-3)),
	}, nil
}

// EstimateAll estimates every detection, dropping the ones that fail:
// a singular estimate excludes only its own detection, never the batch.
// The second return value is how many detections were excluded.
func (e *Estimator) EstimateAll(dets []detect.RawDetection) ([]tooth.DetectedTooth, int) {
	out := make([]tooth.DetectedTooth, 0, len(dets))
	dropped := 0
	for _, d := range dets {
		tt, err := e.Estimate(d)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, tt)
	}
	return out, dropped
}

// landmarks returns the five fixed landmarks in semantic order: center,
// incisal, gingival, mesial, distal. Offsets are along local axes from the
// estimated center in mm; output is in meters.
func (e *Estimator) landmarks(centerMm geometry.Vector3, pos tooth.ArchPosition) []geometry.Vector3 {
	off := e.opts.LandmarkOffsetMm

	// Vertical: the incisal (biting) edge is below the center for upper
	// teeth and above it for lower teeth. Lateral: mesial faces the arch
	// midline, distal faces away.
	incisalY := -off
	if !pos.Quadrant.IsUpper() {
		incisalY = off
	}
	mesialX := off
	if pos.IsLeftSide() {
		mesialX = -off
	}

	marks := [tooth.LandmarkCount]geometry.Vector3{
		tooth.LandmarkCenter:   centerMm,
		tooth.LandmarkIncisal:  centerMm.Add(geometry.Vector3{Y: incisalY}),
		tooth.LandmarkGingival: centerMm.Add(geometry.Vector3{Y: -incisalY}),
		tooth.LandmarkMesial:   centerMm.Add(geometry.Vector3{X: mesialX}),
		tooth.LandmarkDistal:   centerMm.Add(geometry.Vector3{X: -mesialX}),
	}

	out := make([]geometry.Vector3, tooth.LandmarkCount)
	for i, m := range marks {
		out[i] = m.Scale(1e-3)
	}
	return out
}

// SurfaceNormal derives a unit surface normal purely from arch position:
// upper teeth point up along Y, lower teeth down, and the lateral component
// grows with distance from the arch midline. This is a deliberate
// simplification of the labial surface, not a reconstruction of it.
func SurfaceNormal(pos tooth.ArchPosition) geometry.Vector3 {
	y := 1.0
	if !pos.Quadrant.IsUpper() {
		y = -1.0
	}

	lateral := 0.15 * float64(pos.MidlineDistance())
	x := -lateral
	if pos.IsLeftSide() {
		x = lateral
	}

	return geometry.Vector3{X: x, Y: y}.Normalize()
}
