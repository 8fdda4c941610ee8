package levelset

import (
	"fmt"
	"math"

	"ctfiducials/internal/models"
)

// activeFeature is the smallest feature value for which a pixel is updated
const activeFeature = 1e-6

// Params controls the shape-detection evolution
type Params struct {
	PropagationScaling float64
	CurvatureScaling   float64
	Iterations         int
	TimeStep           float64
	// FarValue bounds |phi| after every step
	FarValue float64
}

// Validate checks the evolution parameters
func (p Params) Validate() error {
	if p.Iterations < 0 {
		return fmt.Errorf("iterations must be non-negative, got %d", p.Iterations)
	}
	if p.TimeStep <= 0 {
		return fmt.Errorf("time step must be positive, got %g", p.TimeStep)
	}
	if p.FarValue <= 0 {
		return fmt.Errorf("far value must be positive, got %g", p.FarValue)
	}
	return nil
}

// Evolution reports what an Evolve call did
type Evolution struct {
	Iterations   int
	ActivePixels int
	// RMSChange is the root mean square update over the active pixels in
	// the last iteration
	RMSChange float64
}

// Evolve advances phi under
//
//	phi_t = g * (alpha*|grad phi| + beta*kappa*|grad phi|)
//
// where g is the feature image, alpha the propagation scaling, beta the
// curvature scaling and kappa the mean curvature of the level sets. The
// propagation term uses an upwind scheme and the curvature term central
// differences. Pixels whose feature value is at most 1e-6 never change.
// phi and feature must share dimensions; phi is not modified.
func Evolve(phi, feature *models.Slice, p Params) (*models.Slice, Evolution) {
	w, h := phi.Width, phi.Height
	sx, sy := phi.Spacing.X, phi.Spacing.Y

	active := make([]int, 0, len(phi.Data))
	for i, g := range feature.Data {
		if g > activeFeature {
			active = append(active, i)
		}
	}

	ev := Evolution{ActivePixels: len(active)}
	cur := phi.Clone()
	if len(active) == 0 {
		return cur, ev
	}

	delta := make([]float64, len(active))
	for it := 0; it < p.Iterations; it++ {
		var sumSq float64
		for j, i := range active {
			x, y := i%w, i/w
			at := func(dx, dy int) float64 {
				xx, yy := clampIndex(x+dx, w), clampIndex(y+dy, h)
				return cur.Data[yy*w+xx]
			}

			c := cur.Data[i]
			l, r := at(-1, 0), at(1, 0)
			u, d := at(0, -1), at(0, 1)

			// one-sided differences for the upwind propagation term
			dxm, dxp := (c-l)/sx, (r-c)/sx
			dym, dyp := (c-u)/sy, (d-c)/sy
			// phi grows outward, so the speed in the Hamilton-Jacobi form is negative
			gradUpwind := math.Sqrt(
				sq(math.Min(dxm, 0)) + sq(math.Max(dxp, 0)) +
					sq(math.Min(dym, 0)) + sq(math.Max(dyp, 0)))

			px := (r - l) / (2 * sx)
			py := (d - u) / (2 * sy)
			pxx := (r - 2*c + l) / (sx * sx)
			pyy := (d - 2*c + u) / (sy * sy)
			pxy := (at(1, 1) - at(1, -1) - at(-1, 1) + at(-1, -1)) / (4 * sx * sy)

			var curvature float64
			if grad2 := px*px + py*py; grad2 > 1e-12 {
				curvature = (pxx*py*py - 2*px*py*pxy + pyy*px*px) / grad2
			}

			g := feature.Data[i]
			update := g * (p.PropagationScaling*gradUpwind + p.CurvatureScaling*curvature)
			delta[j] = p.TimeStep * update
			sumSq += delta[j] * delta[j]
		}

		for j, i := range active {
			cur.Data[i] = math.Max(-p.FarValue, math.Min(p.FarValue, cur.Data[i]+delta[j]))
		}

		ev.Iterations++
		ev.RMSChange = math.Sqrt(sumSq / float64(len(active)))
	}

	return cur, ev
}

// Region returns the mask of pixels where phi is positive
func Region(phi *models.Slice) *models.Mask {
	m := phi.NewMask()
	for i, v := range phi.Data {
		if v > 0 {
			m.Data[i] = 1
		}
	}
	return m
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func sq(v float64) float64 { return v * v }
