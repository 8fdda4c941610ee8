package blob

import (
	"image"
	"math"

	"gonum.org/v1/gonum/floats"

	"ctfiducials/internal/models"
)

// Rescale8 maps the slice intensity range linearly onto [0, 255], truncating
// to integers. A constant slice maps to 0.
func Rescale8(s *models.Slice) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, s.Width, s.Height))
	if len(s.Data) == 0 {
		return img
	}

	lo, hi := floats.Min(s.Data), floats.Max(s.Data)
	if hi == lo {
		return img
	}
	span := hi - lo
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			// the epsilon absorbs rounding so the maximum lands on 255
			v := math.Floor((s.At(x, y)-lo)*255/span + 1e-9)
			img.Pix[y*img.Stride+x] = uint8(math.Max(0, math.Min(255, v)))
		}
	}
	return img
}
