package morphology

import "ctfiducials/internal/models"

// dilate sets every pixel whose kernel neighbourhood touches the foreground.
func dilate(m *models.Mask, k Kernel) *models.Mask {
	out := m.Derive()
	w, h := m.Width, m.Height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if m.Data[y*w+x] == 0 {
				continue
			}
			for _, o := range k.Offsets {
				nx, ny := x+o.X, y+o.Y
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				out.Data[ny*w+nx] = 1
			}
		}
	}
	return out
}

// erode keeps pixels whose whole kernel neighbourhood is foreground.
// Pixels outside the image count as foreground.
func erode(m *models.Mask, k Kernel) *models.Mask {
	out := m.Derive()
	w, h := m.Width, m.Height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if m.Data[y*w+x] == 0 {
				continue
			}
			keep := uint8(1)
			for _, o := range k.Offsets {
				nx, ny := x+o.X, y+o.Y
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				if m.Data[ny*w+nx] == 0 {
					keep = 0
					break
				}
			}
			out.Data[y*w+x] = keep
		}
	}
	return out
}
