//go:build !gocv

package morphology

import "ctfiducials/internal/models"

// Dilate sets every pixel whose kernel neighbourhood touches the foreground.
func Dilate(m *models.Mask, k Kernel) *models.Mask {
	return dilate(m, k)
}

// Erode keeps pixels whose whole kernel neighbourhood is foreground.
// Pixels outside the image count as foreground.
func Erode(m *models.Mask, k Kernel) *models.Mask {
	return erode(m, k)
}

// Close is a dilation followed by an erosion with the same kernel.
func Close(m *models.Mask, k Kernel) *models.Mask {
	return erode(dilate(m, k), k)
}

// Open is an erosion followed by a dilation with the same kernel.
func Open(m *models.Mask, k Kernel) *models.Mask {
	return dilate(erode(m, k), k)
}
