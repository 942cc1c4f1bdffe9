// Package config loads and validates application configuration from files,
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"

	"github.com/nutriscan/labelocr/internal/engine"
	"github.com/nutriscan/labelocr/internal/extract"
)

// OutputConfig controls how scan results are rendered.
type OutputConfig struct {
	// Format is "json" or "text".
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// Config is the application-wide configuration.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Pipeline extract.Config `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output" json:"output"`
}

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Pipeline: extract.DefaultConfig(),
		Output:   OutputConfig{Format: "json"},
	}
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q (debug, info, warn, error)", c.LogLevel)
	}
	if c.Output.Format != "json" && c.Output.Format != "text" {
		return fmt.Errorf("invalid output.format %q (json, text)", c.Output.Format)
	}
	switch c.Pipeline.Method {
	case engine.MethodAuto, engine.TesseractEngineID, engine.DeepEngineID:
	default:
		return fmt.Errorf("invalid pipeline.method %q", c.Pipeline.Method)
	}
	if len(c.Pipeline.Tesseract.Languages) == 0 {
		return errors.New("pipeline.tesseract.languages must not be empty")
	}
	if (c.Pipeline.Deep.ModelPath == "") != (c.Pipeline.Deep.DictPath == "") {
		return errors.New("pipeline.deep.model_path and pipeline.deep.dict_path must be set together")
	}
	if c.Pipeline.Method == engine.DeepEngineID && c.Pipeline.Deep.ModelPath == "" {
		return errors.New("pipeline.method is \"deep\" but no deep model is configured")
	}
	p := c.Pipeline.Preprocess
	if p.TargetLongEdge <= 0 {
		return errors.New("pipeline.preprocess.target_long_edge must be positive")
	}
	if p.ContrastTiles <= 0 {
		return errors.New("pipeline.preprocess.contrast_tiles must be positive")
	}
	if p.BinarizeWindow <= 0 || p.BinarizeWindow%2 == 0 {
		return errors.New("pipeline.preprocess.binarize_window must be a positive odd number")
	}
	return nil
}
