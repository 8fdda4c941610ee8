package segmentation

import (
	"ctfiducials/internal/models"
	"ctfiducials/pkg/config"
	"ctfiducials/pkg/labeling"
	"ctfiducials/pkg/levelset"
	"ctfiducials/pkg/monitoring"
	"ctfiducials/pkg/morphology"
	"ctfiducials/pkg/threshold"
)

// Marker polarities
const (
	PolarityBright = config.PolarityBright
	PolarityDark   = config.PolarityDark
)

// HoleDetector finds marker regions in a body-masked slice and returns them
// as a shape-filtered label map co-registered with the input.
type HoleDetector interface {
	Execute(s *models.Slice) (*models.LabelMap, error)
}

// LevelSetParams configures ThresholdLevelSetDetector
type LevelSetParams struct {
	// Polarity selects bright (value > threshold) or dark (value <= threshold) markers
	Polarity       string
	HistogramBins  int
	Reconstruction morphology.Kernel
	GradientSigma  float64
	LevelSetValue  float64
	Evolution      levelset.Params
	MinRoundness   float64
}

// ThresholdLevelSetDetector splits the slice with a maximum entropy threshold,
// cleans the split by reconstruction, refines it with a shape-detection level
// set and keeps the round components.
type ThresholdLevelSetDetector struct {
	Params  LevelSetParams
	Verbose bool
}

// NewThresholdLevelSetDetector builds the detector from the holes section of cfg
func NewThresholdLevelSetDetector(cfg *config.Config) (*ThresholdLevelSetDetector, error) {
	h := cfg.Holes
	k, err := morphology.NewKernel(h.ReconstructionKernel, h.ReconstructionRadius[0], h.ReconstructionRadius[1])
	if err != nil {
		return nil, &ConfigurationError{Parameter: "holes.reconstructionKernel", Reason: err.Error()}
	}

	p := LevelSetParams{
		Polarity:       h.Polarity,
		HistogramBins:  h.HistogramBins,
		Reconstruction: k,
		GradientSigma:  h.GradientSigma,
		LevelSetValue:  h.LevelSetValue,
		Evolution: levelset.Params{
			PropagationScaling: h.PropagationScaling,
			CurvatureScaling:   h.CurvatureScaling,
			Iterations:         h.Iterations,
			TimeStep:           h.TimeStep,
			FarValue:           h.FarValue,
		},
		MinRoundness: h.MinRoundness,
	}
	if err := p.Evolution.Validate(); err != nil {
		return nil, &ConfigurationError{Parameter: "holes", Reason: err.Error()}
	}
	return &ThresholdLevelSetDetector{Params: p, Verbose: cfg.Output.Verbose}, nil
}

// Execute runs the detector on a body-masked slice. A degenerate threshold
// yields an empty label map, not an error.
func (d *ThresholdLevelSetDetector) Execute(s *models.Slice) (*models.LabelMap, error) {
	p := d.Params

	split, ok := d.split(s)
	if !ok {
		d.logf("holes: degenerate histogram, no candidates")
		return s.NewLabelMap(), nil
	}

	cleaned := morphology.OpeningByReconstruction(split, p.Reconstruction, models.FullyConnected)
	cleaned = morphology.ClosingByReconstruction(cleaned, p.Reconstruction, models.FullyConnected)
	if cleaned.Count() == 0 {
		d.logf("holes: nothing left after reconstruction")
		return s.NewLabelMap(), nil
	}

	binary := cleaned.Float()
	feature := levelset.GradientMagnitude(binary, p.GradientSigma)
	phi := levelset.IsoContourDistance(binary, p.LevelSetValue, p.Evolution.FarValue)
	phi, ev := levelset.Evolve(phi, feature, p.Evolution)
	d.logf("holes: level set ran %d iterations over %d pixels, rms change %.3g",
		ev.Iterations, ev.ActivePixels, ev.RMSChange)

	labels := labeling.Label(levelset.Region(phi), models.FullyConnected)
	labels = labeling.FillLabelHoles(labels, models.FullyConnected)

	records := labeling.ComputeShapeStatistics(labels)
	out, kept, dropped := labeling.Filter(labels, records, labeling.MinRoundness(p.MinRoundness))
	d.logf("holes: %d candidates kept, %d rejected (roundness < %.2f)", len(kept), len(dropped), p.MinRoundness)
	return out, nil
}

// split applies the maximum entropy threshold with the configured polarity.
// Dark markers are only searched where the slice is non-zero.
func (d *ThresholdLevelSetDetector) split(s *models.Slice) (*models.Mask, bool) {
	h := threshold.NewHistogram(s.Data, d.Params.HistogramBins)
	t, ok := threshold.MaximumEntropy(h)
	if !ok {
		return nil, false
	}
	d.logf("holes: maximum entropy threshold %.2f (bin %d)", t.Value, t.Bin)

	m := s.NewMask()
	for i, v := range s.Data {
		above := h.Bin(v) > t.Bin
		switch d.Params.Polarity {
		case PolarityDark:
			if !above && v != 0 {
				m.Data[i] = 1
			}
		default:
			if above {
				m.Data[i] = 1
			}
		}
	}
	return m, true
}

func (d *ThresholdLevelSetDetector) logf(format string, v ...interface{}) {
	if d.Verbose {
		monitoring.Logf(format, v...)
	}
}

var (
	_ HoleDetector = (*ThresholdLevelSetDetector)(nil)
	_ HoleDetector = (*OtsuMultiThresholdDetector)(nil)
)
