//go:build !gocv

package blob

import (
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/segment"

	"ctfiducials/internal/models"
	"ctfiducials/pkg/labeling"
)

type scanner struct {
	p Params
}

// NewDetector returns the pure Go blob scanner
func NewDetector(p Params) (Detector, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &scanner{p: p}, nil
}

// Detect scans thresholds from MinThreshold (inclusive) to MaxThreshold
// (exclusive). A pixel is white at level t when its value exceeds t.
func (s *scanner) Detect(img *image.Gray) ([]KeyPoint, error) {
	var groups [][]center
	for t := s.p.MinThreshold; t < s.p.MaxThreshold; t += s.p.ThresholdStep {
		level := uint8(math.Min(255, math.Max(0, math.Floor(t)+1)))
		binary := segment.Threshold(img, level)
		groups = s.merge(groups, s.findBlobs(binary))
	}
	return keypoints(groups, s.p.MinRepeatability), nil
}

type center struct {
	x, y   float64
	radius float64
}

// findBlobs returns the centres of the regions of binary passing the filters
func (s *scanner) findBlobs(binary *image.Gray) []center {
	colors := []uint8{0, 255}
	if s.p.FilterByColor {
		colors = []uint8{s.p.BlobColor}
	}

	var centers []center
	for _, c := range colors {
		centers = append(centers, s.findColorBlobs(binary, c)...)
	}
	return centers
}

func (s *scanner) findColorBlobs(binary *image.Gray, c uint8) []center {
	b := binary.Bounds()
	w, h := b.Dx(), b.Dy()
	gray := func(x, y int) uint8 { return binary.Pix[y*binary.Stride+x] }

	m := models.NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if gray(x, y) == c {
				m.Set(x, y, 1)
			}
		}
	}
	labels := labeling.Label(m, models.FullyConnected)

	pixels := make(map[int][]image.Point)
	touching := make(map[int]bool)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := labels.At(x, y)
			if v == 0 {
				continue
			}
			pixels[v] = append(pixels[v], image.Pt(x, y))
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				touching[v] = true
			}
		}
	}

	var centers []center
	for _, r := range labeling.ComputeShapeStatistics(labels) {
		// dark regions open to the border are background, not holes
		if c == 0 && touching[r.Label] {
			continue
		}
		if !s.accept(r, pixels[r.Label]) {
			continue
		}

		cx, cy := r.Centroid[0], r.Centroid[1]
		px, py := int(math.Round(cx)), int(math.Round(cy))
		if s.p.FilterByColor && (px < 0 || py < 0 || px >= w || py >= h || gray(px, py) != s.p.BlobColor) {
			continue
		}
		centers = append(centers, center{x: cx, y: cy, radius: medianBoundaryDistance(labels, r.Label, pixels[r.Label], cx, cy)})
	}
	return centers
}

func (s *scanner) accept(r labeling.ShapeRecord, pixels []image.Point) bool {
	p := s.p
	area := float64(r.Area)
	if p.FilterByArea && (area < p.MinArea || area >= p.MaxArea) {
		return false
	}
	if p.FilterByCircularity {
		circularity := r.Roundness * r.Roundness
		if circularity < p.MinCircularity || circularity >= p.MaxCircularity {
			return false
		}
	}
	if p.FilterByInertia {
		ratio := 0.0
		if r.PrincipalMoments[1] > 0 {
			ratio = r.PrincipalMoments[0] / r.PrincipalMoments[1]
		}
		if ratio < p.MinInertiaRatio || ratio >= p.MaxInertiaRatio {
			return false
		}
	}
	if p.FilterByConvexity {
		hull := hullArea(pixels)
		if hull == 0 {
			return false
		}
		convexity := area / hull
		if convexity < p.MinConvexity || convexity >= p.MaxConvexity {
			return false
		}
	}
	return true
}

// merge assigns each new centre to the first existing group it is close to,
// keeping every group sorted by radius
func (s *scanner) merge(groups [][]center, current []center) [][]center {
	var created [][]center
	for _, c := range current {
		isNew := true
		for j, g := range groups {
			last := g[len(g)-1]
			dist := math.Hypot(last.x-c.x, last.y-c.y)
			isNew = dist >= s.p.MinDistBetweenBlobs && dist >= last.radius && dist >= c.radius
			if !isNew {
				k := sort.Search(len(g), func(i int) bool { return g[i].radius >= c.radius })
				g = append(g, center{})
				copy(g[k+1:], g[k:])
				g[k] = c
				groups[j] = g
				break
			}
		}
		if isNew {
			created = append(created, []center{c})
		}
	}
	return append(groups, created...)
}

func keypoints(groups [][]center, minRepeatability int) []KeyPoint {
	var out []KeyPoint
	for _, g := range groups {
		if len(g) < minRepeatability {
			continue
		}
		var sx, sy float64
		for _, c := range g {
			sx += c.x
			sy += c.y
		}
		n := float64(len(g))
		out = append(out, KeyPoint{X: sx / n, Y: sy / n, Size: 2 * g[len(g)/2].radius})
	}
	return out
}

// medianBoundaryDistance is the median distance from (cx, cy) to the region
// pixels that have a face neighbour outside the region
func medianBoundaryDistance(labels *models.LabelMap, label int, pixels []image.Point, cx, cy float64) float64 {
	var dists []float64
	for _, p := range pixels {
		if labels.At(p.X-1, p.Y) == label && labels.At(p.X+1, p.Y) == label &&
			labels.At(p.X, p.Y-1) == label && labels.At(p.X, p.Y+1) == label {
			continue
		}
		dists = append(dists, math.Hypot(float64(p.X)-cx, float64(p.Y)-cy))
	}
	if len(dists) == 0 {
		return 0
	}
	sort.Float64s(dists)
	return dists[len(dists)/2]
}
