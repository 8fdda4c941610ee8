//go:build !gocv

package labeling

import "ctfiducials/internal/models"

func components(m *models.Mask, conn models.Connectivity) *models.LabelMap {
	return flood(m, conn)
}
