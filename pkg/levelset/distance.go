package levelset

import (
	"math"

	"ctfiducials/internal/models"
)

const edtInf = 1e20

// IsoContourDistance returns a signed distance map (mm) to the interface
// between pixels above levelSetValue and the rest. Pixels above the level are
// positive. The interface lies half a pixel from the nearest pixel centre and
// magnitudes are clamped to farValue.
func IsoContourDistance(s *models.Slice, levelSetValue, farValue float64) *models.Slice {
	w, h := s.Width, s.Height
	inside := make([]bool, len(s.Data))
	for i, v := range s.Data {
		inside[i] = v > levelSetValue
	}

	toOutside := distanceTransform(w, h, s.Spacing, func(i int) bool { return !inside[i] })
	toInside := distanceTransform(w, h, s.Spacing, func(i int) bool { return inside[i] })

	half := 0.5 * math.Min(s.Spacing.X, s.Spacing.Y)
	out := s.Derive()
	for i := range out.Data {
		var d float64
		if inside[i] {
			d = toOutside[i] - half
		} else {
			d = -(toInside[i] - half)
		}
		out.Data[i] = math.Max(-farValue, math.Min(farValue, d))
	}
	return out
}

// distanceTransform returns the exact Euclidean distance (mm) from every pixel
// to the nearest pixel for which feature is true (Felzenszwalb–Huttenlocher).
func distanceTransform(w, h int, spacing models.Spacing, feature func(int) bool) []float64 {
	grid := make([]float64, w*h)
	for i := range grid {
		if feature(i) {
			grid[i] = 0
		} else {
			grid[i] = edtInf
		}
	}

	n := w
	if h > n {
		n = h
	}
	f := make([]float64, n)
	d := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			f[y] = grid[y*w+x]
		}
		squaredDistance1D(f[:h], d[:h], v, z, spacing.Y)
		for y := 0; y < h; y++ {
			grid[y*w+x] = d[y]
		}
	}

	for y := 0; y < h; y++ {
		copy(f[:w], grid[y*w:(y+1)*w])
		squaredDistance1D(f[:w], d[:w], v, z, spacing.X)
		copy(grid[y*w:(y+1)*w], d[:w])
	}

	for i, sq := range grid {
		grid[i] = math.Sqrt(sq)
	}
	return grid
}

// squaredDistance1D computes the lower envelope of parabolas rooted at each
// sample of f, with samples spaced s apart.
func squaredDistance1D(f, d []float64, v []int, z []float64, s float64) {
	n := len(f)
	if n == 0 {
		return
	}

	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)

	for q := 1; q < n; q++ {
		sect := intersect(f, v[k], q, s)
		for sect <= z[k] {
			k--
			sect = intersect(f, v[k], q, s)
		}
		k++
		v[k] = q
		z[k] = sect
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		pq := float64(q) * s
		for z[k+1] < pq {
			k++
		}
		dq := pq - float64(v[k])*s
		d[q] = dq*dq + f[v[k]]
	}
}

// intersect returns the position where the parabolas rooted at samples p and q meet
func intersect(f []float64, p, q int, s float64) float64 {
	pp, pq := float64(p)*s, float64(q)*s
	return ((f[q] + pq*pq) - (f[p] + pp*pp)) / (2 * (pq - pp))
}
