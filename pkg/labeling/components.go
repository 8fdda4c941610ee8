// Package labeling assigns connected-component labels and computes per-label
// shape descriptors. Every function returns a new label map.
package labeling

import "ctfiducials/internal/models"

// Label assigns a distinct positive label to every connected foreground region
// of m. Labels are numbered from 1 in raster order of each region's first pixel.
func Label(m *models.Mask, conn models.Connectivity) *models.LabelMap {
	return rasterOrder(components(m, conn))
}

// LabelClasses labels every connected region of equal non-zero class. Class 0
// is background. Two touching regions of different classes get different labels.
func LabelClasses(classes *models.LabelMap, conn models.Connectivity) *models.LabelMap {
	out := classes.Derive()
	next := 0
	for _, c := range classes.Labels() {
		m := classes.Mask()
		for i, v := range classes.Data {
			if v != c {
				m.Data[i] = 0
			}
		}

		regions := components(m, conn)
		top := 0
		for i, v := range regions.Data {
			if v == 0 {
				continue
			}
			out.Data[i] = next + v
			if v > top {
				top = v
			}
		}
		next += top
	}
	return rasterOrder(out)
}

// rasterOrder renumbers l from 1 in raster order of each label's first pixel
func rasterOrder(l *models.LabelMap) *models.LabelMap {
	out := l.Derive()
	mapping := make(map[int]int)
	for i, v := range l.Data {
		if v == 0 {
			continue
		}
		n, ok := mapping[v]
		if !ok {
			n = len(mapping) + 1
			mapping[v] = n
		}
		out.Data[i] = n
	}
	return out
}

// flood labels the foreground of m by depth-first region growing
func flood(m *models.Mask, conn models.Connectivity) *models.LabelMap {
	out := &models.LabelMap{
		Width:   m.Width,
		Height:  m.Height,
		Data:    make([]int, len(m.Data)),
		Spacing: m.Spacing,
		Origin:  m.Origin,
	}
	w, h := out.Width, out.Height
	offsets := conn.Offsets()
	next := 0
	stack := make([]int, 0, 64)

	for start := range out.Data {
		if m.Data[start] == 0 || out.Data[start] != 0 {
			continue
		}
		next++
		out.Data[start] = next
		stack = append(stack[:0], start)

		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := idx%w, idx/w
			for _, o := range offsets {
				nx, ny := x+o.X, y+o.Y
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				n := ny*w + nx
				if out.Data[n] == 0 && m.Data[n] != 0 {
					out.Data[n] = next
					stack = append(stack, n)
				}
			}
		}
	}
	return out
}

// Areas returns the pixel count of every label present in l
func Areas(l *models.LabelMap) map[int]int {
	areas := make(map[int]int)
	for _, v := range l.Data {
		if v != 0 {
			areas[v]++
		}
	}
	return areas
}

// LargestComponent keeps only the label with the largest area. Ties go to the
// lowest label. An empty map is returned unchanged.
func LargestComponent(l *models.LabelMap) *models.LabelMap {
	areas := Areas(l)
	best, bestArea := 0, 0
	for _, label := range l.Labels() {
		if areas[label] > bestArea {
			best, bestArea = label, areas[label]
		}
	}

	out := l.Derive()
	if best == 0 {
		return out
	}
	for i, v := range l.Data {
		if v == best {
			out.Data[i] = v
		}
	}
	return out
}
