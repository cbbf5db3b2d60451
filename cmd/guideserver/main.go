// Command guideserver serves the detection pipeline and placement session
// over a websocket API.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"bracket-guide/internal/config"
	"bracket-guide/internal/detect"
	"bracket-guide/internal/logging"
	"bracket-guide/internal/pipeline"
	"bracket-guide/internal/pose"
	"bracket-guide/internal/server"
	"bracket-guide/internal/version"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var detector detect.Detector
	if cfg.Model.Path == "" {
		logger.Info("no model configured, using simulated detector")
		detector = detect.NewSimulatedDetector(cfg.Model.InputSize, cfg.Model.NumClasses)
	} else {
		detector, err = detect.NewDNNDetector(cfg.Model.Path, cfg.Model.InputSize, cfg.Model.NumClasses)
		if err != nil {
			logger.Fatal("load detection model", zap.Error(err))
		}
	}

	opts := pipeline.DefaultOptions()
	opts.Decode.NumClasses = cfg.Model.NumClasses
	opts.Decode.ConfidenceThreshold = cfg.Pipeline.ConfidenceThreshold
	opts.IoUThreshold = cfg.Pipeline.IoUThreshold

	pipe := pipeline.New(detector, opts, logger)
	defer pipe.Close()

	intr := pose.Intrinsics{Fx: cfg.Camera.Fx, Fy: cfg.Camera.Fy, Cx: cfg.Camera.Cx, Cy: cfg.Camera.Cy}
	if intr.Valid() {
		pipe.SetIntrinsics(intr)
	} else {
		logger.Info("no camera intrinsics configured, waiting for client calibration")
	}

	srv := server.New(pipe, pipeline.NewSession(logger), logger)

	logger.Info("guide server listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("version", version.Version))
	if err := http.ListenAndServe(cfg.Server.Addr, srv.Handler()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
