package blob

import (
	"fmt"
	"image"
	"math"

	"ctfiducials/pkg/config"
)

// Params mirrors the SimpleBlobDetector parameters
type Params struct {
	MinThreshold     float64
	MaxThreshold     float64
	ThresholdStep    float64
	MinRepeatability int
	// MinDistBetweenBlobs is the distance (pixels) under which centres found
	// at different thresholds belong to the same blob
	MinDistBetweenBlobs float64

	FilterByColor bool
	BlobColor     uint8

	FilterByArea bool
	MinArea      float64
	MaxArea      float64

	FilterByCircularity bool
	MinCircularity      float64
	MaxCircularity      float64

	FilterByInertia bool
	MinInertiaRatio float64
	MaxInertiaRatio float64

	FilterByConvexity bool
	MinConvexity      float64
	MaxConvexity      float64
}

// DefaultParams returns the marker detection defaults
func DefaultParams() Params {
	return Params{
		MinThreshold:        10,
		MaxThreshold:        100,
		ThresholdStep:       1,
		MinRepeatability:    1,
		MinDistBetweenBlobs: 8,

		FilterByColor: true,
		BlobColor:     0,

		FilterByArea: true,
		MinArea:      25,
		MaxArea:      100,

		FilterByCircularity: true,
		MinCircularity:      0.65,
		MaxCircularity:      math.MaxFloat32,

		FilterByInertia: true,
		MinInertiaRatio: 0.65,
		MaxInertiaRatio: math.MaxFloat32,

		FilterByConvexity: true,
		MinConvexity:      0.65,
		MaxConvexity:      math.MaxFloat32,
	}
}

// ParamsFromConfig overrides the defaults with the blob section of cfg
func ParamsFromConfig(cfg *config.Config) Params {
	b := cfg.Blob
	p := DefaultParams()
	p.MinArea, p.MaxArea = b.MinArea, b.MaxArea
	p.MinThreshold, p.MaxThreshold, p.ThresholdStep = b.MinThreshold, b.MaxThreshold, b.ThresholdStep
	p.MinCircularity = b.MinCircularity
	p.MinInertiaRatio = b.MinInertiaRatio
	p.MinConvexity = b.MinConvexity
	p.MinDistBetweenBlobs = b.MinDistBetweenBlobs
	p.MinRepeatability = b.MinRepeatability
	p.BlobColor = b.BlobColor
	return p
}

// Validate checks the threshold scan
func (p Params) Validate() error {
	if p.ThresholdStep <= 0 {
		return fmt.Errorf("threshold step must be positive, got %g", p.ThresholdStep)
	}
	if p.MinThreshold >= p.MaxThreshold {
		return fmt.Errorf("min threshold %g must be below max threshold %g", p.MinThreshold, p.MaxThreshold)
	}
	if p.MinRepeatability < 1 {
		return fmt.Errorf("min repeatability must be at least 1, got %d", p.MinRepeatability)
	}
	return nil
}

// KeyPoint is a detected blob centre (pixel coordinates) and diameter
type KeyPoint struct {
	X, Y float64
	Size float64
}

// Detector finds keypoints in an 8-bit image
type Detector interface {
	Detect(img *image.Gray) ([]KeyPoint, error)
}
