package labeling

import (
	"image"

	"ctfiducials/internal/models"
	"ctfiducials/pkg/morphology"
)

// FillLabelHoles assigns to each label the background pixels it completely
// encloses. Pixels already owned by another label are left untouched.
func FillLabelHoles(l *models.LabelMap, conn models.Connectivity) *models.LabelMap {
	out := l.Clone()
	boxes := boundingBoxes(l)

	for _, label := range l.Labels() {
		box := boxes[label].Inset(-1)
		w, h := box.Dx(), box.Dy()
		local := models.NewMask(w, h)
		for y := box.Min.Y; y < box.Max.Y; y++ {
			for x := box.Min.X; x < box.Max.X; x++ {
				if l.At(x, y) == label {
					local.Set(x-box.Min.X, y-box.Min.Y, 1)
				}
			}
		}

		filled := morphology.FillHoles(local, conn)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if filled.At(x, y) == 0 || local.At(x, y) != 0 {
					continue
				}
				gx, gy := x+box.Min.X, y+box.Min.Y
				idx := gy*l.Width + gx
				if out.Data[idx] == 0 {
					out.Data[idx] = label
				}
			}
		}
	}
	return out
}

func boundingBoxes(l *models.LabelMap) map[int]image.Rectangle {
	boxes := make(map[int]image.Rectangle)
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			v := l.Data[y*l.Width+x]
			if v == 0 {
				continue
			}
			px := image.Rect(x, y, x+1, y+1)
			if b, ok := boxes[v]; ok {
				boxes[v] = b.Union(px)
			} else {
				boxes[v] = px
			}
		}
	}
	return boxes
}
