package blob

import (
	"fmt"
	"image"
	"math"

	"ctfiducials/internal/models"
)

// CV runs the blob detector on a slice and returns the keypoint overlay
type CV struct {
	Detector Detector
}

// Execute rescales s to 8 bits, detects keypoints and draws them
func (c *CV) Execute(s *models.Slice) (*image.NRGBA, []KeyPoint, error) {
	gray := Rescale8(s)
	kps, err := c.Detector.Detect(gray)
	if err != nil {
		return nil, nil, fmt.Errorf("blob detection failed: %w", err)
	}
	return Annotate(gray, kps, KeypointColor), kps, nil
}

// Adapter exposes the blob detector as a label map producer: every keypoint
// becomes a disk of its diameter, labelled from 1 in detection order. Pixels
// claimed by an earlier keypoint keep their label.
type Adapter struct {
	Detector Detector
}

// Execute returns the keypoint disks co-registered with s
func (a *Adapter) Execute(s *models.Slice) (*models.LabelMap, error) {
	kps, err := a.Detector.Detect(Rescale8(s))
	if err != nil {
		return nil, fmt.Errorf("blob detection failed: %w", err)
	}
	return KeypointLabels(s, kps), nil
}

// KeypointLabels rasterises kps as disks on a label map shaped like s
func KeypointLabels(s *models.Slice, kps []KeyPoint) *models.LabelMap {
	out := s.NewLabelMap()
	for i, kp := range kps {
		r := math.Max(0.5, kp.Size/2)
		x0, x1 := int(math.Floor(kp.X-r)), int(math.Ceil(kp.X+r))
		y0, y1 := int(math.Floor(kp.Y-r)), int(math.Ceil(kp.Y+r))
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
					continue
				}
				if math.Hypot(float64(x)-kp.X, float64(y)-kp.Y) > r {
					continue
				}
				if idx := y*s.Width + x; out.Data[idx] == 0 {
					out.Data[idx] = i + 1
				}
			}
		}
	}
	return out
}
