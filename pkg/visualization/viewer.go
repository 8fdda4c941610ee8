// Package visualization renders slices and their segmentation results for
// inspection: display windowing, contour overlays and PNG output. Nothing here
// feeds back into detection.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"

	"ctfiducials/internal/models"
)

// Overlay colours
var (
	BodyColor = colorful.Color{R: 0, G: 1, B: 0}
	BoxColor  = colorful.Color{R: 1, G: 0, B: 0}
)

// Viewer draws one slice with the display window from its metadata
type Viewer struct {
	slice *models.Slice

	// center and width of the intensity window; width <= 0 uses the full range
	center float64
	width  float64
}

// NewViewer creates a viewer for s using the window of meta
func NewViewer(s *models.Slice, meta models.SliceMeta) *Viewer {
	return &Viewer{slice: s, center: meta.WindowCenter, width: meta.WindowWidth}
}

// Window maps [center-width, center+width] linearly onto [0, 255], clamping
// outside values. A non-positive width maps the slice's own range.
func Window(s *models.Slice, center, width float64) *image.Gray {
	img := image.NewGray(s.Bounds())
	if len(s.Data) == 0 {
		return img
	}

	lo, hi := center-width, center+width
	if width <= 0 {
		lo, hi = floats.Min(s.Data), floats.Max(s.Data)
	}
	if hi <= lo {
		return img
	}

	scale := 255 / (hi - lo)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			v := (s.At(x, y) - lo) * scale
			img.Pix[y*img.Stride+x] = uint8(math.Max(0, math.Min(255, math.Round(v))))
		}
	}
	return img
}

// Base returns the windowed slice
func (v *Viewer) Base() *image.Gray {
	return Window(v.slice, v.center, v.width)
}

// Overlay draws the body contour and bounding box and every marker contour in
// its own colour over the windowed slice. Either map may be nil.
func (v *Viewer) Overlay(body, markers *models.LabelMap) *image.NRGBA {
	out := imaging.Clone(v.Base())

	if body != nil {
		drawContours(out, body, func(int) colorful.Color { return BodyColor })
		if r := bounds(body); !r.Empty() {
			drawRect(out, r, BoxColor)
		}
	}
	if markers != nil {
		labels := markers.Labels()
		palette := LabelPalette(len(labels))
		index := make(map[int]int, len(labels))
		for i, l := range labels {
			index[l] = i
		}
		drawContours(out, markers, func(l int) colorful.Color { return palette[index[l]] })
	}
	return out
}

// LabelPalette returns n visually distinct colours with evenly spaced hues
func LabelPalette(n int) []colorful.Color {
	out := make([]colorful.Color, n)
	for i := range out {
		out[i] = colorful.Hsv(360*float64(i)/math.Max(1, float64(n)), 0.85, 1).Clamped()
	}
	return out
}

// drawContours colours the labelled pixels that have a face neighbour with a
// different label
func drawContours(img *image.NRGBA, l *models.LabelMap, colorOf func(int) colorful.Color) {
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			v := l.At(x, y)
			if v == 0 {
				continue
			}
			if l.At(x-1, y) == v && l.At(x+1, y) == v && l.At(x, y-1) == v && l.At(x, y+1) == v {
				continue
			}
			setColor(img, x, y, colorOf(v))
		}
	}
}

func drawRect(img *image.NRGBA, r image.Rectangle, c colorful.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		setColor(img, x, r.Min.Y, c)
		setColor(img, x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		setColor(img, r.Min.X, y, c)
		setColor(img, r.Max.X-1, y, c)
	}
}

func setColor(img *image.NRGBA, x, y int, c colorful.Color) {
	if !image.Pt(x, y).In(img.Bounds()) {
		return
	}
	r, g, b := c.RGB255()
	img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 255})
}

func bounds(l *models.LabelMap) image.Rectangle {
	var r image.Rectangle
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			if l.At(x, y) != 0 {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}

// SaveImage writes img to filename; the format follows the extension
func SaveImage(img image.Image, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := imaging.Save(img, filename); err != nil {
		return fmt.Errorf("failed to save %s: %w", filename, err)
	}
	return nil
}

// SaveOverlay renders the overlay of body and markers and writes it as
// overlay_<index>.png in outputDir
func (v *Viewer) SaveOverlay(body, markers *models.LabelMap, outputDir string) (string, error) {
	filename := filepath.Join(outputDir, fmt.Sprintf("overlay_%03d.png", v.slice.Index))
	return filename, SaveImage(v.Overlay(body, markers), filename)
}
