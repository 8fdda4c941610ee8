package blob

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// KeypointColor is the default keypoint outline colour
var KeypointColor = colorful.Color{R: 1, G: 0, B: 0}

// Annotate returns an RGBA copy of img with a circle of the keypoint
// diameter drawn around every keypoint
func Annotate(img image.Image, kps []KeyPoint, c colorful.Color) *image.NRGBA {
	out := imaging.Clone(img)
	r, g, b := c.RGB255()

	for _, kp := range kps {
		radius := math.Max(1, kp.Size/2)
		// enough samples to close the outline at one pixel spacing
		steps := int(math.Ceil(2*math.Pi*radius)) * 2
		for i := 0; i < steps; i++ {
			a := 2 * math.Pi * float64(i) / float64(steps)
			x := int(math.Round(kp.X + radius*math.Cos(a)))
			y := int(math.Round(kp.Y + radius*math.Sin(a)))
			if !image.Pt(x, y).In(out.Bounds()) {
				continue
			}
			o := out.PixOffset(x, y)
			out.Pix[o+0], out.Pix[o+1], out.Pix[o+2], out.Pix[o+3] = r, g, b, 255
		}
	}
	return out
}
