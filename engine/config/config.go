// Package config loads the YAML file that tunes the procedural batcher and its host window.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/accumulator"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/linear_buffer"
	"gopkg.in/yaml.v3"
)

const (
	PresentModeVSync    = "vsync"
	PresentModeUncapped = "uncapped"
)

// maxConfigSize bounds the file Load will read.
const maxConfigSize = 1024 * 1024

// WindowConfig describes the host window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Config is the root of the configuration file. Keys missing from the file keep their Default values.
type Config struct {
	// ByteBudget is the size in bytes shared by every buffer kind of an accumulator.
	ByteBudget        int          `yaml:"byte_budget"`
	TranscodeWorkers  int          `yaml:"transcode_workers"`
	ParallelThreshold int          `yaml:"parallel_threshold"`
	Window            WindowConfig `yaml:"window"`
	PresentMode       string       `yaml:"present_mode"`
	// SpawnVolume is the half extent of the cube the demo spawns meshes in.
	SpawnVolume float32 `yaml:"spawn_volume"`
	Profiling   bool    `yaml:"profiling"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		ByteBudget:        linear_buffer.DefaultByteBudget,
		TranscodeWorkers:  1,
		ParallelThreshold: accumulator.DefaultParallelThreshold,
		Window: WindowConfig{
			Title:  "Procedural Batching",
			Width:  1280,
			Height: 720,
		},
		PresentMode: PresentModeVSync,
		SpawnVolume: 5,
		Profiling:   false,
	}
}

// Parse decodes YAML over the defaults and validates the result.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the decoded configuration
//   - error: a decode or validation error
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses a configuration file.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Config: the decoded configuration
//   - error: a read, decode or validation error
func Load(path string) (Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to stat config %s: %w", path, err)
	}
	if info.Size() > maxConfigSize {
		return Config{}, fmt.Errorf("config %s is too large (%d bytes)", path, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Write encodes the configuration as YAML.
//
// Parameters:
//   - w: the destination
//
// Returns:
//   - error: an encode error
func (c Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

// Validate reports every invalid field.
//
// Returns:
//   - error: nil, or the joined field errors
func (c Config) Validate() error {
	var errs []error
	if c.ByteBudget <= 0 {
		errs = append(errs, fmt.Errorf("byte_budget must be positive, got %d", c.ByteBudget))
	}
	if c.TranscodeWorkers < 1 {
		errs = append(errs, fmt.Errorf("transcode_workers must be at least 1, got %d", c.TranscodeWorkers))
	}
	if c.ParallelThreshold < 0 {
		errs = append(errs, fmt.Errorf("parallel_threshold must not be negative, got %d", c.ParallelThreshold))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	switch c.PresentMode {
	case PresentModeVSync, PresentModeUncapped:
	default:
		errs = append(errs, fmt.Errorf("present_mode must be %q or %q, got %q", PresentModeVSync, PresentModeUncapped, c.PresentMode))
	}
	if c.SpawnVolume <= 0 {
		errs = append(errs, fmt.Errorf("spawn_volume must be positive, got %g", c.SpawnVolume))
	}
	return errors.Join(errs...)
}

// AccumulatorOptions returns the accumulator options the batcher settings map to.
//
// Returns:
//   - []accumulator.AccumulatorBuilderOption: budget, worker and threshold options
func (c Config) AccumulatorOptions() []accumulator.AccumulatorBuilderOption {
	return []accumulator.AccumulatorBuilderOption{
		accumulator.WithByteBudget(c.ByteBudget),
		accumulator.WithTranscodeWorkers(c.TranscodeWorkers),
		accumulator.WithParallelThreshold(c.ParallelThreshold),
	}
}
