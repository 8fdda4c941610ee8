package morphology

import "ctfiducials/internal/models"

// ReconstructByDilation grows marker inside mask until stable. The result is
// the union of the mask regions (under conn) that intersect the marker.
func ReconstructByDilation(marker, mask *models.Mask, conn models.Connectivity) *models.Mask {
	out := mask.Derive()
	w, h := mask.Width, mask.Height
	queue := make([]int, 0, 64)

	for i, v := range marker.Data {
		if v != 0 && mask.Data[i] != 0 && out.Data[i] == 0 {
			out.Data[i] = 1
			queue = append(queue, i)
		}
	}

	offsets := conn.Offsets()
	for len(queue) > 0 {
		idx := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y := idx%w, idx/w
		for _, o := range offsets {
			nx, ny := x+o.X, y+o.Y
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			n := ny*w + nx
			if mask.Data[n] != 0 && out.Data[n] == 0 {
				out.Data[n] = 1
				queue = append(queue, n)
			}
		}
	}
	return out
}

// OpeningByReconstruction removes foreground regions that do not survive an
// erosion by k, leaving the surviving regions with their exact shape.
func OpeningByReconstruction(m *models.Mask, k Kernel, conn models.Connectivity) *models.Mask {
	return ReconstructByDilation(Erode(m, k), m, conn)
}

// ClosingByReconstruction fills background regions that do not survive a
// dilation of the foreground by k, without altering the remaining boundary.
func ClosingByReconstruction(m *models.Mask, k Kernel, conn models.Connectivity) *models.Mask {
	background := m.Invert()
	marker := Dilate(m, k).Invert()
	return ReconstructByDilation(marker, background, conn.Dual()).Invert()
}
