// Command detect runs one detection pass on a still frame and prints the
// localized teeth.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"bracket-guide/internal/config"
	"bracket-guide/internal/detect"
	"bracket-guide/internal/logging"
	"bracket-guide/internal/pipeline"
	"bracket-guide/internal/pose"
)

func main() {
	imagePath := flag.String("image", "", "Path to a frame image (PNG, JPEG, TIFF, or BMP)")
	configPath := flag.String("config", "", "Path to a YAML config file")
	modelPath := flag.String("model", "", "Detection model path (overrides config; empty uses the simulated detector)")
	fx := flag.Float64("fx", 0, "Focal length X in pixels (overrides config)")
	fy := flag.Float64("fy", 0, "Focal length Y in pixels (overrides config)")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: detect -image <path> [-config <path>] [-model <path>] [-fx N] [-fy N]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *modelPath != "" {
		cfg.Model.Path = *modelPath
	}
	if *fx > 0 {
		cfg.Camera.Fx = *fx
	}
	if *fy > 0 {
		cfg.Camera.Fy = *fy
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	f, err := os.Open(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open image: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	frame, format, err := image.Decode(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode image: %v\n", err)
		os.Exit(1)
	}
	bounds := frame.Bounds()
	fmt.Printf("Loaded %s image: %dx%d pixels\n", format, bounds.Dx(), bounds.Dy())

	detector, err := buildDetector(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build detector: %v\n", err)
		os.Exit(1)
	}

	opts := pipeline.DefaultOptions()
	opts.Decode.NumClasses = cfg.Model.NumClasses
	opts.Decode.ConfidenceThreshold = cfg.Pipeline.ConfidenceThreshold
	opts.IoUThreshold = cfg.Pipeline.IoUThreshold

	pipe := pipeline.New(detector, opts, logger)
	defer pipe.Close()

	intr := pose.Intrinsics{Fx: cfg.Camera.Fx, Fy: cfg.Camera.Fy, Cx: cfg.Camera.Cx, Cy: cfg.Camera.Cy}
	if !intr.Valid() {
		// No calibration supplied: approximate with the image geometry.
		intr = pose.Intrinsics{
			Fx: float64(bounds.Dx()),
			Fy: float64(bounds.Dx()),
			Cx: float64(bounds.Dx()) / 2,
			Cy: float64(bounds.Dy()) / 2,
		}
		fmt.Printf("No intrinsics configured, assuming fx=fy=%.0f\n", intr.Fx)
	}
	pipe.SetIntrinsics(intr)

	teeth, err := pipe.Detect(context.Background(), frame, bounds.Dx(), bounds.Dy())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nDetected %d teeth:\n", len(teeth))
	for _, tt := range teeth {
		p := tt.Pose.Position
		fmt.Printf("  %s  conf=%.2f  box=(%.0f,%.0f %gx%g)  pos=(%.1f, %.1f, %.1f)mm  attach=(%.1f, %.1f, %.1f)mm\n",
			tt.ID, tt.Confidence,
			tt.BoundingBox.X, tt.BoundingBox.Y, tt.BoundingBox.Width, tt.BoundingBox.Height,
			p.X*1000, p.Y*1000, p.Z*1000,
			tt.OptimalAttachment.X*1000, tt.OptimalAttachment.Y*1000, tt.OptimalAttachment.Z*1000)
	}
}

func buildDetector(cfg config.Config) (detect.Detector, error) {
	if cfg.Model.Path == "" {
		fmt.Println("No model configured, using simulated detector")
		return detect.NewSimulatedDetector(cfg.Model.InputSize, cfg.Model.NumClasses), nil
	}
	return detect.NewDNNDetector(cfg.Model.Path, cfg.Model.InputSize, cfg.Model.NumClasses)
}
