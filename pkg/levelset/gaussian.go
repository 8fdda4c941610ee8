package levelset

import (
	"math"

	"ctfiducials/internal/models"
)

// recursiveCoefficients holds the Young–van Vliet filter coefficients
type recursiveCoefficients struct {
	b          float64
	b1, b2, b3 float64
}

func newRecursiveCoefficients(sigma float64) recursiveCoefficients {
	// the closed form for q is only valid down to half a pixel
	sigma = math.Max(sigma, 0.5)

	var q float64
	if sigma >= 2.5 {
		q = 0.98711*sigma - 0.96330
	} else {
		q = 3.97156 - 4.14554*math.Sqrt(1-0.26891*sigma)
	}

	q2, q3 := q*q, q*q*q
	b0 := 1.57825 + 2.44413*q + 1.4281*q2 + 0.422205*q3
	c := recursiveCoefficients{
		b1: (2.44413*q + 2.85619*q2 + 1.26661*q3) / b0,
		b2: -(1.4281*q2 + 1.26661*q3) / b0,
		b3: 0.422205 * q3 / b0,
	}
	c.b = 1 - (c.b1 + c.b2 + c.b3)
	return c
}

// filter runs the causal then anti-causal pass over line in place. The edges
// are initialised with the steady-state response to the edge value.
func (c recursiveCoefficients) filter(line []float64) {
	n := len(line)
	if n == 0 {
		return
	}

	w1, w2, w3 := line[0], line[0], line[0]
	for i := 0; i < n; i++ {
		w := c.b*line[i] + c.b1*w1 + c.b2*w2 + c.b3*w3
		line[i] = w
		w1, w2, w3 = w, w1, w2
	}

	y1, y2, y3 := line[n-1], line[n-1], line[n-1]
	for i := n - 1; i >= 0; i-- {
		y := c.b*line[i] + c.b1*y1 + c.b2*y2 + c.b3*y3
		line[i] = y
		y1, y2, y3 = y, y1, y2
	}
}

// RecursiveGaussian smooths s with a Gaussian of the given physical sigma (mm).
func RecursiveGaussian(s *models.Slice, sigma float64) *models.Slice {
	out := s.Clone()
	w, h := s.Width, s.Height

	cx := newRecursiveCoefficients(sigma / s.Spacing.X)
	for y := 0; y < h; y++ {
		cx.filter(out.Data[y*w : (y+1)*w])
	}

	cy := newRecursiveCoefficients(sigma / s.Spacing.Y)
	col := make([]float64, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = out.Data[y*w+x]
		}
		cy.filter(col)
		for y := 0; y < h; y++ {
			out.Data[y*w+x] = col[y]
		}
	}
	return out
}

// GradientMagnitude returns |∇(G_sigma * s)| in intensity units per mm.
func GradientMagnitude(s *models.Slice, sigma float64) *models.Slice {
	smooth := RecursiveGaussian(s, sigma)
	out := s.Derive()
	w, h := s.Width, s.Height

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := derivative(smooth, x, y, 1, 0, s.Spacing.X)
			gy := derivative(smooth, x, y, 0, 1, s.Spacing.Y)
			out.Data[y*w+x] = math.Hypot(gx, gy)
		}
	}
	return out
}

// derivative is a central difference along (dx, dy), one-sided at the border
func derivative(s *models.Slice, x, y, dx, dy int, spacing float64) float64 {
	x0, y0 := x-dx, y-dy
	x1, y1 := x+dx, y+dy
	span := 2.0
	if x0 < 0 || y0 < 0 {
		x0, y0 = x, y
		span--
	}
	if x1 >= s.Width || y1 >= s.Height {
		x1, y1 = x, y
		span--
	}
	if span == 0 {
		return 0
	}
	return (s.At(x1, y1) - s.At(x0, y0)) / (span * spacing)
}
