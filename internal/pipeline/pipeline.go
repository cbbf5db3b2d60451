// Package pipeline wires the detection stages together: decoder, suppressor,
// and pose estimator run to completion per frame before results publish.
package pipeline

import (
	"context"
	"errors"
	"image"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"bracket-guide/internal/detect"
	"bracket-guide/internal/pose"
	"bracket-guide/internal/tooth"
)

// ErrPassInFlight reports a detection request arriving while another pass is
// still running. The request is dropped, never queued; the caller should
// retry with a newer frame.
var ErrPassInFlight = errors.New("detection pass already in flight")

// Options configures a Pipeline.
type Options struct {
	Decode       detect.DecodeOptions
	IoUThreshold float64
	Pose         pose.Options
}

// DefaultOptions returns standard pipeline options.
func DefaultOptions() Options {
	return Options{
		Decode:       detect.DefaultDecodeOptions(),
		IoUThreshold: detect.DefaultIoUThreshold,
		Pose:         pose.DefaultOptions(),
	}
}

// Pipeline runs the full detection-to-localization pass over camera frames.
// The detector strategy is fixed at construction; camera intrinsics may
// arrive and change at any time afterwards.
type Pipeline struct {
	detector  detect.Detector
	estimator *pose.Estimator
	opts      Options
	inflight  *semaphore.Weighted
	log       *zap.Logger
}

// New creates a Pipeline around the given detector strategy.
func New(detector detect.Detector, opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.IoUThreshold <= 0 {
		opts.IoUThreshold = detect.DefaultIoUThreshold
	}
	opts.Decode.InputSize = float64(detector.InputSize())

	return &Pipeline{
		detector:  detector,
		estimator: pose.NewEstimator(opts.Pose),
		opts:      opts,
		inflight:  semaphore.NewWeighted(1),
		log:       logger.Named("pipeline"),
	}
}

// SetIntrinsics installs or replaces the camera intrinsics.
func (p *Pipeline) SetIntrinsics(in pose.Intrinsics) {
	p.estimator.SetIntrinsics(in)
	p.log.Debug("intrinsics updated",
		zap.Float64("fx", in.Fx), zap.Float64("fy", in.Fy),
		zap.Float64("cx", in.Cx), zap.Float64("cy", in.Cy))
}

// Intrinsics returns the currently installed intrinsics.
func (p *Pipeline) Intrinsics() pose.Intrinsics {
	return p.estimator.Intrinsics()
}

// Detect runs one full detection pass over a camera frame and returns the
// localized teeth. At most one pass runs at a time: a call overlapping a
// running pass returns ErrPassInFlight immediately. Throttling to every Nth
// frame is the caller's scheduling policy, not the pipeline's.
func (p *Pipeline) Detect(ctx context.Context, frame image.Image, width, height int) ([]tooth.DetectedTooth, error) {
	if !p.inflight.TryAcquire(1) {
		return nil, ErrPassInFlight
	}
	defer p.inflight.Release(1)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := p.detector.Infer(frame)
	if err != nil {
		p.log.Error("inference failed", zap.Error(err))
		return nil, err
	}

	teeth, err := p.process(out, float64(width), float64(height), start)
	if err != nil {
		return nil, err
	}
	return teeth, nil
}

// Process consumes a raw detector output produced by an external inference
// runtime, bypassing the built-in detector strategy. An output with an
// unexpected shape yields an empty result and a decode error rather than a
// partial read.
func (p *Pipeline) Process(out detect.Output, width, height int) ([]tooth.DetectedTooth, error) {
	if !p.inflight.TryAcquire(1) {
		return nil, ErrPassInFlight
	}
	defer p.inflight.Release(1)

	return p.process(out, float64(width), float64(height), time.Now())
}

func (p *Pipeline) process(out detect.Output, width, height float64, start time.Time) ([]tooth.DetectedTooth, error) {
	decodeOpts := p.opts.Decode
	if out.Classes > 0 {
		decodeOpts.NumClasses = out.Classes
	}

	raw, err := detect.Decode(out.Buffer, out.Slots, width, height, decodeOpts)
	if err != nil {
		p.log.Error("decode failed", zap.Int("slots", out.Slots), zap.Error(err))
		return nil, err
	}

	kept := detect.Suppress(raw, p.opts.IoUThreshold)
	teeth, dropped := p.estimator.EstimateAll(kept)

	p.log.Debug("detection pass complete",
		zap.Int("slots", out.Slots),
		zap.Int("decoded", len(raw)),
		zap.Int("suppressed", len(raw)-len(kept)),
		zap.Int("pose_dropped", dropped),
		zap.Int("teeth", len(teeth)),
		zap.Duration("elapsed", time.Since(start)))
	return teeth, nil
}

// Close releases the underlying detector.
func (p *Pipeline) Close() error {
	return p.detector.Close()
}
