package visualization

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"ctfiducials/internal/models"
	"ctfiducials/pkg/labeling"
)

// KeypointBoxColor outlines the body bounding box on keypoint images
var KeypointBoxColor = colorful.Color{R: 0, G: 0, B: 1}

// KeypointOverlay decorates an annotated keypoint image with the contour and
// bounding box of the largest body component and a z=<zIndex>mm caption in
// the top-left corner. body may be nil.
func KeypointOverlay(img image.Image, body *models.LabelMap, zIndex float64) *image.NRGBA {
	out := imaging.Clone(img)

	if body != nil {
		largest := labeling.LargestComponent(body)
		drawContours(out, largest, func(int) colorful.Color { return BodyColor })
		if r := bounds(largest); !r.Empty() {
			drawRect(out, r, KeypointBoxColor)
		}
	}

	Caption(out, fmt.Sprintf("z=%gmm", zIndex), image.Pt(0, 15))
	return out
}

// Caption writes text in white with its baseline starting at dot
func Caption(img draw.Image, text string, dot image.Point) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(dot.X, dot.Y),
	}
	d.DrawString(text)
}
