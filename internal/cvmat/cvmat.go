//go:build gocv

// Package cvmat moves masks and label maps in and out of OpenCV matrices.
package cvmat

import (
	"fmt"

	"gocv.io/x/gocv"

	"ctfiducials/internal/models"
)

// FromMask copies m into a single-channel 8-bit matrix. The caller closes it.
func FromMask(m *models.Mask) (gocv.Mat, error) {
	data := append([]byte(nil), m.Data...)
	mat, err := gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8U, data)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to wrap %dx%d mask: %w", m.Width, m.Height, err)
	}
	return mat, nil
}

// ToMask copies an 8-bit matrix into a mask with the geometry of like.
// Non-zero pixels become 1.
func ToMask(mat gocv.Mat, like *models.Mask) (*models.Mask, error) {
	if mat.Rows() != like.Height || mat.Cols() != like.Width {
		return nil, fmt.Errorf("matrix is %dx%d, expected %dx%d", mat.Cols(), mat.Rows(), like.Width, like.Height)
	}
	out := like.Derive()
	for i, v := range mat.ToBytes() {
		if v != 0 {
			out.Data[i] = 1
		}
	}
	return out, nil
}

// ToLabels copies a CV_32S label matrix into a label map with the geometry
// of like
func ToLabels(mat gocv.Mat, like *models.LabelMap) (*models.LabelMap, error) {
	if mat.Rows() != like.Height || mat.Cols() != like.Width {
		return nil, fmt.Errorf("matrix is %dx%d, expected %dx%d", mat.Cols(), mat.Rows(), like.Width, like.Height)
	}
	data, err := mat.DataPtrInt32()
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	out := like.Derive()
	for i, v := range data {
		out.Data[i] = int(v)
	}
	return out, nil
}

// Connectivity returns the OpenCV connectivity code for conn
func Connectivity(conn models.Connectivity) int {
	if conn == models.FaceConnected {
		return 4
	}
	return 8
}
