package morphology

import (
	"fmt"
	"image"
)

// Kernel shapes
const (
	Box   = "box"
	Ball  = "ball"
	Cross = "cross"
)

// Kernel is a flat, symmetric structuring element centred on the origin
type Kernel struct {
	Shape   string
	RadiusX int
	RadiusY int
	Offsets []image.Point
}

// NewKernel builds a structuring element of the given shape and radius.
// A ball is the ellipse (dx/rx)² + (dy/ry)² <= 1; a zero radius collapses
// that axis.
func NewKernel(shape string, rx, ry int) (Kernel, error) {
	if rx < 0 || ry < 0 {
		return Kernel{}, fmt.Errorf("kernel radius must not be negative, got [%d, %d]", rx, ry)
	}

	k := Kernel{Shape: shape, RadiusX: rx, RadiusY: ry}
	for dy := -ry; dy <= ry; dy++ {
		for dx := -rx; dx <= rx; dx++ {
			var keep bool
			switch shape {
			case Box:
				keep = true
			case Cross:
				keep = dx == 0 || dy == 0
			case Ball:
				keep = inEllipse(dx, dy, rx, ry)
			default:
				return Kernel{}, fmt.Errorf("unknown kernel shape %q", shape)
			}
			if keep {
				k.Offsets = append(k.Offsets, image.Pt(dx, dy))
			}
		}
	}
	return k, nil
}

func inEllipse(dx, dy, rx, ry int) bool {
	var sum float64
	if rx == 0 {
		if dx != 0 {
			return false
		}
	} else {
		fx := float64(dx) / float64(rx)
		sum += fx * fx
	}
	if ry == 0 {
		if dy != 0 {
			return false
		}
	} else {
		fy := float64(dy) / float64(ry)
		sum += fy * fy
	}
	return sum <= 1
}

// Size returns the number of pixels in the structuring element
func (k Kernel) Size() int {
	return len(k.Offsets)
}
