//go:build gocv

package morphology

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"ctfiducials/internal/cvmat"
	"ctfiducials/internal/models"
	"ctfiducials/pkg/monitoring"
)

// Dilate sets every pixel whose kernel neighbourhood touches the foreground.
func Dilate(m *models.Mask, k Kernel) *models.Mask {
	out, err := apply(m, k, func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat) {
		gocv.Dilate(src, dst, kernel)
	})
	if err != nil {
		monitoring.Logf("morphology: OpenCV dilate failed, using native: %v", err)
		return dilate(m, k)
	}
	return out
}

// Erode keeps pixels whose whole kernel neighbourhood is foreground.
// Pixels outside the image count as foreground.
func Erode(m *models.Mask, k Kernel) *models.Mask {
	out, err := apply(m, k, func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat) {
		gocv.Erode(src, dst, kernel)
	})
	if err != nil {
		monitoring.Logf("morphology: OpenCV erode failed, using native: %v", err)
		return erode(m, k)
	}
	return out
}

// Close is a dilation followed by an erosion with the same kernel.
func Close(m *models.Mask, k Kernel) *models.Mask {
	out, err := apply(m, k, func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat) {
		gocv.MorphologyEx(src, dst, gocv.MorphClose, kernel)
	})
	if err != nil {
		monitoring.Logf("morphology: OpenCV closing failed, using native: %v", err)
		return erode(dilate(m, k), k)
	}
	return out
}

// Open is an erosion followed by a dilation with the same kernel.
func Open(m *models.Mask, k Kernel) *models.Mask {
	out, err := apply(m, k, func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat) {
		gocv.MorphologyEx(src, dst, gocv.MorphOpen, kernel)
	})
	if err != nil {
		monitoring.Logf("morphology: OpenCV opening failed, using native: %v", err)
		return dilate(erode(m, k), k)
	}
	return out
}

func apply(m *models.Mask, k Kernel, op func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat)) (*models.Mask, error) {
	if len(m.Data) == 0 {
		return m.Derive(), nil
	}

	src, err := cvmat.FromMask(m)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	kernel, err := structuringElement(k)
	if err != nil {
		return nil, err
	}
	defer kernel.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	op(src, &dst, kernel)
	return cvmat.ToMask(dst, m)
}

// structuringElement returns k as an OpenCV kernel anchored at its centre.
// Box and cross match OpenCV's own shapes; the ball is rasterised from the
// kernel offsets since OpenCV's ellipse is drawn differently.
func structuringElement(k Kernel) (gocv.Mat, error) {
	size := image.Pt(2*k.RadiusX+1, 2*k.RadiusY+1)
	switch k.Shape {
	case Box:
		return gocv.GetStructuringElement(gocv.MorphRect, size), nil
	case Cross:
		return gocv.GetStructuringElement(gocv.MorphCross, size), nil
	}

	grid := make([]byte, size.X*size.Y)
	for _, o := range k.Offsets {
		grid[(o.Y+k.RadiusY)*size.X+o.X+k.RadiusX] = 1
	}
	mat, err := gocv.NewMatFromBytes(size.Y, size.X, gocv.MatTypeCV8U, grid)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to build %s kernel: %w", k.Shape, err)
	}
	return mat, nil
}
