// Package config loads application configuration from a YAML file with
// sensible defaults for every field.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	LogLevel string         `yaml:"log_level"`
	Model    ModelConfig    `yaml:"model"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Camera   CameraConfig   `yaml:"camera"`
	Server   ServerConfig   `yaml:"server"`
}

// ModelConfig describes the detection model. An empty Path selects the
// simulated detector.
type ModelConfig struct {
	Path       string `yaml:"path"`
	InputSize  int    `yaml:"input_size"`
	NumClasses int    `yaml:"num_classes"`
}

// PipelineConfig holds the detection pipeline thresholds.
type PipelineConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	IoUThreshold        float64 `yaml:"iou_threshold"`
}

// CameraConfig holds default pinhole intrinsics, used until the tracking
// session supplies live values.
type CameraConfig struct {
	Fx float64 `yaml:"fx"`
	Fy float64 `yaml:"fy"`
	Cx float64 `yaml:"cx"`
	Cy float64 `yaml:"cy"`
}

// ServerConfig holds the guide server listen settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Model: ModelConfig{
			InputSize:  640,
			NumClasses: 1,
		},
		Pipeline: PipelineConfig{
			ConfidenceThreshold: 0.5,
			IoUThreshold:        0.45,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads a YAML config file over the defaults. A missing path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Model.InputSize <= 0 {
		return fmt.Errorf("model input_size must be positive, got %d", c.Model.InputSize)
	}
	if c.Model.NumClasses < 1 {
		return fmt.Errorf("model num_classes must be at least 1, got %d", c.Model.NumClasses)
	}
	if c.Pipeline.ConfidenceThreshold < 0 || c.Pipeline.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be in [0,1], got %v", c.Pipeline.ConfidenceThreshold)
	}
	if c.Pipeline.IoUThreshold < 0 || c.Pipeline.IoUThreshold > 1 {
		return fmt.Errorf("iou_threshold must be in [0,1], got %v", c.Pipeline.IoUThreshold)
	}
	return nil
}
