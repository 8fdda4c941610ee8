package blob

import (
	"image"
	"image/color"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctfiducials/internal/models"
	"ctfiducials/pkg/config"
)

// grayWithDisks returns a w x h image of value bg with disks of value fg
func grayWithDisks(w, h int, bg, fg uint8, disks ...[3]int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = bg
	}
	for _, d := range disks {
		cx, cy, r := d[0], d[1], d[2]
		for y := cy - r; y <= cy+r; y++ {
			for x := cx - r; x <= cx+r; x++ {
				dx, dy := x-cx, y-cy
				if dx*dx+dy*dy <= r*r {
					img.SetGray(x, y, color.Gray{Y: fg})
				}
			}
		}
	}
	return img
}

func TestRescale8(t *testing.T) {
	s := models.NewSlice(3, 1)
	copy(s.Data, []float64{-100, 0, 100})

	img := Rescale8(s)
	assert.Equal(t, []uint8{0, 127, 255}, img.Pix)

	flat := models.NewSlice(2, 2)
	for i := range flat.Data {
		flat.Data[i] = 12
	}
	assert.Equal(t, []uint8{0, 0, 0, 0}, Rescale8(flat).Pix)
}

func TestRescale8MapsRangeEndsExactly(t *testing.T) {
	ranges := [][2]float64{
		{-100, 100},
		{-1024, 3071},
		{0.1, 0.7},
		{0.1 + 0.2, 0.9},
		{1e-3, 3e-3},
		{-3.3, 1e6},
	}
	for _, r := range ranges {
		s := models.NewSlice(3, 1)
		copy(s.Data, []float64{r[1], r[0], (r[0] + r[1]) / 2})

		img := Rescale8(s)
		assert.Equal(t, uint8(255), img.Pix[0], "max of [%g, %g]", r[0], r[1])
		assert.Equal(t, uint8(0), img.Pix[1], "min of [%g, %g]", r[0], r[1])
		assert.InDelta(t, 127, float64(img.Pix[2]), 1, "midpoint of [%g, %g]", r[0], r[1])
	}
}

func TestParamsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Blob.MinArea = 30
	cfg.Blob.BlobColor = 255

	p := ParamsFromConfig(cfg)
	assert.Equal(t, 30.0, p.MinArea)
	assert.Equal(t, uint8(255), p.BlobColor)
	assert.Equal(t, 100.0, p.MaxArea)
	assert.True(t, p.FilterByConvexity)
	assert.NoError(t, p.Validate())
}

func TestParamsValidate(t *testing.T) {
	p := DefaultParams()
	p.ThresholdStep = 0
	assert.Error(t, p.Validate())

	p = DefaultParams()
	p.MinThreshold = 100
	assert.Error(t, p.Validate())

	p = DefaultParams()
	p.MinRepeatability = 0
	assert.Error(t, p.Validate())
}

func TestHullArea(t *testing.T) {
	assert.Equal(t, 1.0, hullArea([]image.Point{{3, 4}}))

	var rect []image.Point
	for y := 0; y < 3; y++ {
		for x := 0; x < 2; x++ {
			rect = append(rect, image.Pt(x, y))
		}
	}
	assert.Equal(t, 6.0, hullArea(rect))

	// an L shape is filled in by its hull
	l := []image.Point{{0, 0}, {0, 1}, {1, 1}}
	assert.Equal(t, 3.5, hullArea(l))
}

func TestKeypointLabels(t *testing.T) {
	s := models.NewSlice(40, 40)
	s.Spacing = models.Spacing{X: 0.5, Y: 0.5}

	l := KeypointLabels(s, []KeyPoint{{X: 10, Y: 10, Size: 6}, {X: 30, Y: 25, Size: 4}})
	assert.Equal(t, []int{1, 2}, l.Labels())
	assert.Equal(t, 1, l.At(10, 10))
	assert.Equal(t, 1, l.At(13, 10))
	assert.Equal(t, 0, l.At(14, 10))
	assert.Equal(t, 2, l.At(30, 25))
	assert.Equal(t, s.Spacing, l.Spacing)
}

func TestAnnotate(t *testing.T) {
	img := grayWithDisks(40, 40, 100, 100)
	out := Annotate(img, []KeyPoint{{X: 20, Y: 20, Size: 10}}, colorful.Color{R: 0, G: 1, B: 0})

	require.Equal(t, img.Bounds(), out.Bounds())
	assert.Equal(t, color.NRGBA{R: 0, G: 255, B: 0, A: 255}, out.NRGBAAt(25, 20))
	assert.Equal(t, color.NRGBA{R: 100, G: 100, B: 100, A: 255}, out.NRGBAAt(20, 20))
	// source untouched
	assert.Equal(t, uint8(100), img.GrayAt(25, 20).Y)
}
