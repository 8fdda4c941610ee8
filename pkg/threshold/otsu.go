package threshold

// MultiOtsu returns n thresholds that maximise the between-class variance of
// the n+1 classes they induce. With valleyEmphasis the objective is weighted
// by one minus the summed probability at the threshold bins, which favours
// thresholds in histogram valleys. Ties resolve to the lexicographically
// smallest thresholds. ok is false when there are fewer bins than classes or
// the histogram is degenerate.
func MultiOtsu(h *Histogram, n int, valleyEmphasis bool) ([]Threshold, bool) {
	bins := len(h.Counts)
	if n < 1 || bins < n+1 || h.Degenerate() {
		return nil, false
	}

	p := h.Probabilities()

	// prefix sums of the class weight and first moment
	omega := make([]float64, bins+1)
	mu := make([]float64, bins+1)
	for i, v := range p {
		omega[i+1] = omega[i] + v
		mu[i+1] = mu[i] + float64(i)*v
	}
	term := func(from, to int) float64 {
		w := omega[to+1] - omega[from]
		if w <= 0 {
			return 0
		}
		m := mu[to+1] - mu[from]
		return m * m / w
	}

	s := &otsuSearch{
		bins:     bins,
		n:        n,
		p:        p,
		term:     term,
		valley:   valleyEmphasis,
		current:  make([]int, n),
		bestBins: make([]int, n),
		best:     -1,
	}
	s.search(0, 0, 0, 0)

	out := make([]Threshold, n)
	for i, b := range s.bestBins {
		out[i] = Threshold{Bin: b, Value: h.UpperEdge(b)}
	}
	return out, true
}

type otsuSearch struct {
	bins     int
	n        int
	p        []float64
	term     func(from, to int) float64
	valley   bool
	current  []int
	bestBins []int
	best     float64
}

// search places threshold k at bins >= from. acc is the objective of the
// classes closed so far, mass the probability at the chosen threshold bins.
func (s *otsuSearch) search(k, from int, acc, mass float64) {
	if k == s.n {
		obj := acc + s.term(from, s.bins-1)
		if s.valley {
			obj *= 1 - mass
		}
		if obj > s.best {
			s.best = obj
			copy(s.bestBins, s.current)
		}
		return
	}

	// leave room for the remaining thresholds and a final class
	last := s.bins - 1 - (s.n - k)
	for t := from; t <= last; t++ {
		s.current[k] = t
		s.search(k+1, t+1, acc+s.term(from, t), mass+s.p[t])
	}
}

// Classify returns the class index of bin b: the number of thresholds it lies above
func Classify(b int, thresholds []Threshold) int {
	class := 0
	for _, t := range thresholds {
		if b > t.Bin {
			class++
		}
	}
	return class
}
