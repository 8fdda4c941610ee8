// Package threshold computes global intensity thresholds from image
// histograms: maximum entropy (Kapur) and multi-level Otsu with optional
// valley emphasis.
package threshold

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Histogram is a fixed-width histogram spanning the data range
type Histogram struct {
	Counts   []float64
	Min      float64
	Max      float64
	BinWidth float64
	Total    float64
}

// NewHistogram bins data into the given number of equal-width bins over
// [min(data), max(data)]. The maximum falls in the last bin.
func NewHistogram(data []float64, bins int) *Histogram {
	h := &Histogram{Counts: make([]float64, bins)}
	if len(data) == 0 || bins == 0 {
		return h
	}

	h.Min = floats.Min(data)
	h.Max = floats.Max(data)
	h.BinWidth = (h.Max - h.Min) / float64(bins)
	for _, v := range data {
		h.Counts[h.Bin(v)]++
	}
	h.Total = floats.Sum(h.Counts)
	return h
}

// Bin returns the bin index of v, clamped to the histogram range
func (h *Histogram) Bin(v float64) int {
	if h.BinWidth == 0 {
		return 0
	}
	i := int(math.Floor((v - h.Min) / h.BinWidth))
	if i < 0 {
		return 0
	}
	if i >= len(h.Counts) {
		return len(h.Counts) - 1
	}
	return i
}

// UpperEdge returns the intensity at the upper edge of bin i
func (h *Histogram) UpperEdge(i int) float64 {
	return h.Min + float64(i+1)*h.BinWidth
}

// Degenerate reports whether the data holds fewer than two distinct bins
func (h *Histogram) Degenerate() bool {
	occupied := 0
	for _, c := range h.Counts {
		if c > 0 {
			occupied++
		}
	}
	return occupied < 2
}

// Probabilities returns the normalised histogram
func (h *Histogram) Probabilities() []float64 {
	p := make([]float64, len(h.Counts))
	if h.Total == 0 {
		return p
	}
	floats.ScaleTo(p, 1/h.Total, h.Counts)
	return p
}
