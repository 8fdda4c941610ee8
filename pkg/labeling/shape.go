package labeling

import (
	"image"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"ctfiducials/internal/models"
)

// ShapeRecord holds the geometric descriptors of one labelled region.
// Physical quantities use the label map spacing (mm).
type ShapeRecord struct {
	Label int

	// Area is the pixel count, PhysicalArea the same in mm²
	Area         int
	PhysicalArea float64

	// Perimeter is the Crofton estimate in mm
	Perimeter float64

	// Roundness is the equivalent-circle perimeter over Perimeter, in [0, 1]
	Roundness float64

	// Elongation is the principal axis ratio, >= 1 (1 for a disk)
	Elongation float64

	// EquivalentRadius is the radius of the disk with the same area, in mm
	EquivalentRadius float64

	// Centroid is the mean pixel index (x, y); PhysicalCentroid the same in mm
	Centroid         [2]float64
	PhysicalCentroid [2]float64

	// PrincipalMoments are the eigenvalues of the second moment tensor, ascending
	PrincipalMoments [2]float64

	BoundingBox image.Rectangle
}

type accumulator struct {
	n                  int
	sx, sy             float64
	sxx, syy, sxy      float64
	hRuns, vRuns       int
	diagRuns, antiRuns int
	box                image.Rectangle
}

// ComputeShapeStatistics returns one record per label present in l, sorted
// by label.
func ComputeShapeStatistics(l *models.LabelMap) []ShapeRecord {
	w, h := l.Width, l.Height
	acc := make(map[int]*accumulator)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := l.Data[y*w+x]
			if v == 0 {
				continue
			}
			a, ok := acc[v]
			if !ok {
				a = &accumulator{box: image.Rect(x, y, x+1, y+1)}
				acc[v] = a
			}
			fx, fy := float64(x), float64(y)
			a.n++
			a.sx += fx
			a.sy += fy
			a.sxx += fx * fx
			a.syy += fy * fy
			a.sxy += fx * fy
			a.box = a.box.Union(image.Rect(x, y, x+1, y+1))

			// intercept counts: a run starts where the previous pixel
			// along the line direction is not this label
			if l.At(x-1, y) != v {
				a.hRuns++
			}
			if l.At(x, y-1) != v {
				a.vRuns++
			}
			if l.At(x-1, y-1) != v {
				a.diagRuns++
			}
			if l.At(x+1, y-1) != v {
				a.antiRuns++
			}
		}
	}

	records := make([]ShapeRecord, 0, len(acc))
	for label, a := range acc {
		records = append(records, a.record(label, l.Spacing, l.Origin))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Label < records[j].Label })
	return records
}

func (a *accumulator) record(label int, spacing models.Spacing, origin models.Origin) ShapeRecord {
	n := float64(a.n)
	sx, sy := spacing.X, spacing.Y
	pixelArea := sx * sy

	r := ShapeRecord{
		Label:        label,
		Area:         a.n,
		PhysicalArea: n * pixelArea,
		BoundingBox:  a.box,
	}

	mx, my := a.sx/n, a.sy/n
	r.Centroid = [2]float64{mx, my}
	r.PhysicalCentroid = [2]float64{origin.X + mx*sx, origin.Y + my*sy}
	r.EquivalentRadius = math.Sqrt(r.PhysicalArea / math.Pi)

	// Crofton formula over four directions; the diagonal line spacing is
	// the distance between neighbouring diagonals of the pixel grid
	diag := sx * sy / math.Hypot(sx, sy)
	r.Perimeter = math.Pi / 4 * (float64(a.hRuns)*sy + float64(a.vRuns)*sx + float64(a.diagRuns+a.antiRuns)*diag)
	if r.Perimeter > 0 {
		equivalent := 2 * math.Sqrt(math.Pi*r.PhysicalArea)
		r.Roundness = math.Min(1, equivalent/r.Perimeter)
	}

	// second central moments, each pixel treated as a uniform unit square
	cxx := (a.sxx/n-mx*mx)*sx*sx + sx*sx/12
	cyy := (a.syy/n-my*my)*sy*sy + sy*sy/12
	cxy := (a.sxy/n - mx*my) * sx * sy

	var eig mat.EigenSym
	if eig.Factorize(mat.NewSymDense(2, []float64{cxx, cxy, cxy, cyy}), false) {
		vals := eig.Values(nil)
		r.PrincipalMoments = [2]float64{vals[0], vals[1]}
		if vals[0] > 0 {
			r.Elongation = math.Sqrt(vals[1] / vals[0])
		}
	}
	if r.Elongation < 1 {
		r.Elongation = 1
	}
	return r
}

// ByLabel indexes records by their label
func ByLabel(records []ShapeRecord) map[int]ShapeRecord {
	out := make(map[int]ShapeRecord, len(records))
	for _, r := range records {
		out[r.Label] = r
	}
	return out
}

// MinRoundness keeps regions at least as round as min
func MinRoundness(min float64) Predicate {
	return func(r ShapeRecord) bool { return r.Roundness >= min }
}

// MaxElongation keeps regions no more elongated than max
func MaxElongation(max float64) Predicate {
	return func(r ShapeRecord) bool { return r.Elongation <= max }
}

// All combines predicates; a region is kept when every predicate keeps it
func All(preds ...Predicate) Predicate {
	return func(r ShapeRecord) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}
