package segmentation

import (
	"ctfiducials/internal/models"
	"ctfiducials/pkg/labeling"
	"ctfiducials/pkg/monitoring"
	"ctfiducials/pkg/morphology"
)

// BodyMaskExtractor isolates the patient silhouette in a table-masked slice
type BodyMaskExtractor struct {
	Closing         morphology.Kernel
	KeepLargestOnly bool
	Verbose         bool
}

// NewBodyMaskExtractor builds an extractor closing with the given kernel
func NewBodyMaskExtractor(shape string, radius [2]int, keepLargestOnly bool) (*BodyMaskExtractor, error) {
	k, err := morphology.NewKernel(shape, radius[0], radius[1])
	if err != nil {
		return nil, &ConfigurationError{Parameter: "body.kernel", Reason: err.Error()}
	}
	return &BodyMaskExtractor{Closing: k, KeepLargestOnly: keepLargestOnly}, nil
}

// Execute binarises s at > 0, closes the result, fills interior holes and
// labels the fully connected components. With KeepLargestOnly only the
// largest component survives. An empty slice gives an all-zero label map.
func (b *BodyMaskExtractor) Execute(s *models.Slice) *models.LabelMap {
	fg := s.NewMask()
	for i, v := range s.Data {
		if v > 0 {
			fg.Data[i] = 1
		}
	}

	closed := morphology.Close(fg, b.Closing)
	filled := morphology.FillHoles(closed, models.FullyConnected)
	labels := labeling.Label(filled, models.FullyConnected)

	if b.Verbose {
		monitoring.Logf("body: %d foreground pixels, %d components", fg.Count(), len(labels.Labels()))
	}
	if b.KeepLargestOnly {
		labels = labeling.LargestComponent(labels)
	}
	return labels
}

// BodyMask returns a copy of s with every pixel outside the labelled regions
// set to 0
func BodyMask(s *models.Slice, labels *models.LabelMap) *models.Slice {
	return ApplyMask(s, labels.Mask())
}
