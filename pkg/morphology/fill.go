package morphology

import "ctfiducials/internal/models"

// FillHoles sets every background pixel that cannot be reached from the image
// border. Foreground connectivity is conn; the background floods with its dual.
func FillHoles(m *models.Mask, conn models.Connectivity) *models.Mask {
	w, h := m.Width, m.Height
	if w == 0 || h == 0 {
		return m.Clone()
	}
	seed := m.Derive()
	for x := 0; x < w; x++ {
		seed.Data[x] = 1
		seed.Data[(h-1)*w+x] = 1
	}
	for y := 0; y < h; y++ {
		seed.Data[y*w] = 1
		seed.Data[y*w+w-1] = 1
	}

	outside := ReconstructByDilation(seed, m.Invert(), conn.Dual())
	return outside.Invert()
}
