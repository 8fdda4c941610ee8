package threshold

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Threshold is a split of the histogram after bin Bin: bins <= Bin are below,
// bins > Bin are above. Value is the corresponding intensity.
type Threshold struct {
	Bin   int
	Value float64
}

// MaximumEntropy returns the Kapur threshold maximising the sum of the
// background and foreground entropies. ok is false when the histogram cannot
// be split (constant or empty data).
func MaximumEntropy(h *Histogram) (Threshold, bool) {
	if h.Degenerate() {
		return Threshold{}, false
	}

	p := h.Probabilities()
	buf := make([]float64, len(p))
	best, bestBin := -1.0, -1
	var below float64

	for t := 0; t < len(p)-1; t++ {
		below += p[t]
		above := 1 - below
		if below <= 0 || above <= 0 {
			continue
		}

		lo := buf[:t+1]
		floats.ScaleTo(lo, 1/below, p[:t+1])
		hb := stat.Entropy(lo)

		hi := buf[:len(p)-t-1]
		floats.ScaleTo(hi, 1/above, p[t+1:])
		hf := stat.Entropy(hi)

		if hb+hf > best {
			best, bestBin = hb+hf, t
		}
	}

	if bestBin < 0 {
		return Threshold{}, false
	}
	return Threshold{Bin: bestBin, Value: h.UpperEdge(bestBin)}, true
}
