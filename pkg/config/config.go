// Package config provides configuration loading and management for ctfiducials.
// It handles loading configuration from YAML files and provides default values
// for every tuning constant of the segmentation pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Table sides accepted by Table.Side
const (
	TableBelow = "below"
	TableAbove = "above"
)

// Hole detector variants accepted by Holes.Variant
const (
	VariantLevelSet = "levelset"
	VariantOtsu     = "otsu"
	VariantBlob     = "blob"
)

// Marker polarities accepted by Holes.Polarity
const (
	PolarityBright = "bright"
	PolarityDark   = "dark"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many slices are processed concurrently
		NumCores int `yaml:"numCores"`

		// RequireMarkers turns an empty marker result into an error
		RequireMarkers bool `yaml:"requireMarkers"`
	} `yaml:"processing"`

	// Table removal parameters
	Table struct {
		// Thickness is calibrated per scanner geometry (72.3 and 79 observed)
		Thickness float64 `yaml:"thickness"`

		// Side is the side of the cut row that holds the table: below or above
		Side string `yaml:"side"`
	} `yaml:"table"`

	// Body extraction parameters
	Body struct {
		// ClosingRadius is the structuring element radius [x, y]
		ClosingRadius [2]int `yaml:"closingRadius"`

		// Kernel is the structuring element shape: box, ball or cross
		Kernel string `yaml:"kernel"`

		// KeepLargestOnly keeps only the largest connected component
		KeepLargestOnly bool `yaml:"keepLargestOnly"`
	} `yaml:"body"`

	// Holes holds the threshold + level set detector parameters
	Holes struct {
		Variant  string `yaml:"variant"`
		Polarity string `yaml:"polarity"`

		HistogramBins        int     `yaml:"histogramBins"`
		ReconstructionRadius [2]int  `yaml:"reconstructionRadius"`
		ReconstructionKernel string  `yaml:"reconstructionKernel"`
		GradientSigma        float64 `yaml:"gradientSigma"`
		LevelSetValue        float64 `yaml:"levelSetValue"`
		FarValue             float64 `yaml:"farValue"`
		PropagationScaling   float64 `yaml:"propagationScaling"`
		CurvatureScaling     float64 `yaml:"curvatureScaling"`
		Iterations           int     `yaml:"iterations"`
		TimeStep             float64 `yaml:"timeStep"`

		// MinRoundness rejects labels below this roundness
		MinRoundness float64 `yaml:"minRoundness"`
	} `yaml:"holes"`

	// Otsu holds the multi-threshold detector parameters
	Otsu struct {
		Thresholds     int     `yaml:"thresholds"`
		Bins           int     `yaml:"bins"`
		ValleyEmphasis bool    `yaml:"valleyEmphasis"`
		MinRoundness   float64 `yaml:"minRoundness"`
		MaxElongation  float64 `yaml:"maxElongation"`
	} `yaml:"otsu"`

	// Blob holds the keypoint blob detector parameters
	Blob struct {
		MinArea             float64 `yaml:"minArea"`
		MaxArea             float64 `yaml:"maxArea"`
		MinThreshold        float64 `yaml:"minThreshold"`
		MaxThreshold        float64 `yaml:"maxThreshold"`
		ThresholdStep       float64 `yaml:"thresholdStep"`
		MinCircularity      float64 `yaml:"minCircularity"`
		MinInertiaRatio     float64 `yaml:"minInertiaRatio"`
		MinConvexity        float64 `yaml:"minConvexity"`
		MinDistBetweenBlobs float64 `yaml:"minDistBetweenBlobs"`
		MinRepeatability    int     `yaml:"minRepeatability"`
		BlobColor           uint8   `yaml:"blobColor"`
	} `yaml:"blob"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// SaveOverlays writes a PNG overlay per processed slice
		SaveOverlays bool `yaml:"saveOverlays"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.NumCores = runtime.NumCPU()
	cfg.Processing.RequireMarkers = false

	cfg.Table.Thickness = 79
	cfg.Table.Side = TableBelow

	cfg.Body.ClosingRadius = [2]int{3, 1}
	cfg.Body.Kernel = "box"
	cfg.Body.KeepLargestOnly = true

	cfg.Holes.Variant = VariantLevelSet
	cfg.Holes.Polarity = PolarityBright
	cfg.Holes.HistogramBins = 256
	cfg.Holes.ReconstructionRadius = [2]int{1, 1}
	cfg.Holes.ReconstructionKernel = "ball"
	cfg.Holes.GradientSigma = 0.8
	cfg.Holes.LevelSetValue = 0
	cfg.Holes.FarValue = 25
	cfg.Holes.PropagationScaling = 1
	cfg.Holes.CurvatureScaling = 5
	cfg.Holes.Iterations = 2000
	cfg.Holes.TimeStep = 0.0005
	cfg.Holes.MinRoundness = 0.9

	cfg.Otsu.Thresholds = 3
	cfg.Otsu.Bins = 256
	cfg.Otsu.ValleyEmphasis = true
	cfg.Otsu.MinRoundness = 0.86
	cfg.Otsu.MaxElongation = 1.11

	cfg.Blob.MinArea = 25
	cfg.Blob.MaxArea = 100
	cfg.Blob.MinThreshold = 10
	cfg.Blob.MaxThreshold = 100
	cfg.Blob.ThresholdStep = 1
	cfg.Blob.MinCircularity = 0.65
	cfg.Blob.MinInertiaRatio = 0.65
	cfg.Blob.MinConvexity = 0.65
	cfg.Blob.MinDistBetweenBlobs = 8
	cfg.Blob.MinRepeatability = 1
	cfg.Blob.BlobColor = 0

	cfg.Output.Verbose = true
	cfg.Output.SaveOverlays = true

	return cfg
}

// Validate checks that every configured value is usable
func (c *Config) Validate() error {
	if c.Processing.NumCores < 1 {
		return fmt.Errorf("processing.numCores must be at least 1, got %d", c.Processing.NumCores)
	}
	if c.Table.Thickness < 0 {
		return fmt.Errorf("table.thickness must not be negative, got %g", c.Table.Thickness)
	}
	if c.Table.Side != TableBelow && c.Table.Side != TableAbove {
		return fmt.Errorf("table.side must be %q or %q, got %q", TableBelow, TableAbove, c.Table.Side)
	}
	if c.Body.ClosingRadius[0] < 0 || c.Body.ClosingRadius[1] < 0 {
		return fmt.Errorf("body.closingRadius must not be negative, got %v", c.Body.ClosingRadius)
	}
	switch c.Holes.Variant {
	case VariantLevelSet, VariantOtsu, VariantBlob:
	default:
		return fmt.Errorf("holes.variant %q is not one of levelset, otsu, blob", c.Holes.Variant)
	}
	if c.Holes.Polarity != PolarityBright && c.Holes.Polarity != PolarityDark {
		return fmt.Errorf("holes.polarity must be %q or %q, got %q", PolarityBright, PolarityDark, c.Holes.Polarity)
	}
	if c.Holes.HistogramBins < 2 {
		return fmt.Errorf("holes.histogramBins must be at least 2, got %d", c.Holes.HistogramBins)
	}
	if c.Holes.GradientSigma <= 0 {
		return fmt.Errorf("holes.gradientSigma must be positive, got %g", c.Holes.GradientSigma)
	}
	if c.Holes.FarValue <= 0 {
		return fmt.Errorf("holes.farValue must be positive, got %g", c.Holes.FarValue)
	}
	if c.Holes.Iterations < 0 {
		return fmt.Errorf("holes.iterations must not be negative, got %d", c.Holes.Iterations)
	}
	if c.Holes.TimeStep <= 0 {
		return fmt.Errorf("holes.timeStep must be positive, got %g", c.Holes.TimeStep)
	}
	if c.Otsu.Thresholds < 1 {
		return fmt.Errorf("otsu.thresholds must be at least 1, got %d", c.Otsu.Thresholds)
	}
	if c.Otsu.Bins <= c.Otsu.Thresholds {
		return fmt.Errorf("otsu.bins (%d) must exceed otsu.thresholds (%d)", c.Otsu.Bins, c.Otsu.Thresholds)
	}
	if c.Blob.ThresholdStep <= 0 {
		return fmt.Errorf("blob.thresholdStep must be positive, got %g", c.Blob.ThresholdStep)
	}
	if c.Blob.MinThreshold >= c.Blob.MaxThreshold {
		return fmt.Errorf("blob.minThreshold (%g) must be below blob.maxThreshold (%g)", c.Blob.MinThreshold, c.Blob.MaxThreshold)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
