package segmentation

import (
	"fmt"

	"ctfiducials/internal/models"
	"ctfiducials/pkg/config"
	"ctfiducials/pkg/labeling"
	"ctfiducials/pkg/monitoring"
	"ctfiducials/pkg/threshold"
)

// OtsuMultiThresholdDetector classifies the slice with multi-level Otsu
// thresholds, labels each class separately and keeps the round, compact
// components. Class 0 (darkest) is background.
type OtsuMultiThresholdDetector struct {
	Thresholds     int
	Bins           int
	ValleyEmphasis bool
	MinRoundness   float64
	MaxElongation  float64
	Verbose        bool
}

// NewOtsuMultiThresholdDetector builds the detector from the otsu section of cfg
func NewOtsuMultiThresholdDetector(cfg *config.Config) (*OtsuMultiThresholdDetector, error) {
	o := cfg.Otsu
	if o.Thresholds < 1 || o.Bins <= o.Thresholds {
		return nil, &ConfigurationError{
			Parameter: "otsu",
			Reason:    fmt.Sprintf("need 1 <= thresholds < bins, got %d thresholds and %d bins", o.Thresholds, o.Bins),
		}
	}
	return &OtsuMultiThresholdDetector{
		Thresholds:     o.Thresholds,
		Bins:           o.Bins,
		ValleyEmphasis: o.ValleyEmphasis,
		MinRoundness:   o.MinRoundness,
		MaxElongation:  o.MaxElongation,
		Verbose:        cfg.Output.Verbose,
	}, nil
}

// Execute runs the detector on a body-masked slice
func (d *OtsuMultiThresholdDetector) Execute(s *models.Slice) (*models.LabelMap, error) {
	h := threshold.NewHistogram(s.Data, d.Bins)
	thresholds, ok := threshold.MultiOtsu(h, d.Thresholds, d.ValleyEmphasis)
	if !ok {
		if d.Verbose {
			monitoring.Logf("otsu: degenerate histogram, no candidates")
		}
		return s.NewLabelMap(), nil
	}

	classes := s.NewLabelMap()
	for i, v := range s.Data {
		classes.Data[i] = threshold.Classify(h.Bin(v), thresholds)
	}
	labels := labeling.LabelClasses(classes, models.FullyConnected)

	records := labeling.ComputeShapeStatistics(labels)
	keep := labeling.All(labeling.MinRoundness(d.MinRoundness), labeling.MaxElongation(d.MaxElongation))
	out, kept, dropped := labeling.Filter(labels, records, keep)

	if d.Verbose {
		values := make([]float64, len(thresholds))
		for i, t := range thresholds {
			values[i] = t.Value
		}
		monitoring.Logf("otsu: thresholds %.2f, %d candidates kept, %d rejected", values, len(kept), len(dropped))
	}
	return out, nil
}
