//go:build gocv

package labeling

import (
	"gocv.io/x/gocv"

	"ctfiducials/internal/cvmat"
	"ctfiducials/internal/models"
	"ctfiducials/pkg/monitoring"
)

// components labels m with OpenCV's connected components. Label order is
// whatever the algorithm produces; callers renumber.
func components(m *models.Mask, conn models.Connectivity) *models.LabelMap {
	out := &models.LabelMap{
		Width:   m.Width,
		Height:  m.Height,
		Data:    make([]int, len(m.Data)),
		Spacing: m.Spacing,
		Origin:  m.Origin,
	}
	if len(m.Data) == 0 {
		return out
	}

	src, err := cvmat.FromMask(m)
	if err != nil {
		monitoring.Logf("labeling: %v, using native labelling", err)
		return flood(m, conn)
	}
	defer src.Close()

	labels := gocv.NewMat()
	defer labels.Close()

	gocv.ConnectedComponentsWithParams(src, &labels, cvmat.Connectivity(conn), gocv.MatTypeCV32S, gocv.CCL_DEFAULT)
	res, err := cvmat.ToLabels(labels, out)
	if err != nil {
		monitoring.Logf("labeling: %v, using native labelling", err)
		return flood(m, conn)
	}
	return res
}
