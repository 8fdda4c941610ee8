package models

import (
	"image"
	"testing"
)

func TestSliceDerivedImagesShareGeometry(t *testing.T) {
	s := NewSlice(4, 3)
	s.Spacing = Spacing{X: 0.5, Y: 2}
	s.Origin = Origin{X: -10, Y: 5}

	m := s.NewMask()
	l := s.NewLabelMap()
	if m.Spacing != s.Spacing || m.Origin != s.Origin || m.Width != 4 || m.Height != 3 {
		t.Errorf("mask geometry %+v does not match slice", m)
	}
	if l.Spacing != s.Spacing || l.Origin != s.Origin || len(l.Data) != 12 {
		t.Errorf("label map geometry does not match slice")
	}
	if f := m.Float(); f.Spacing != s.Spacing || f.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Errorf("float mask geometry does not match slice")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := NewSlice(2, 2)
	c := s.Clone()
	c.Set(1, 1, 7)
	if s.At(1, 1) != 0 {
		t.Error("Clone shares pixel data with the original")
	}
}

func TestMaskInvertAndCount(t *testing.T) {
	m := NewMask(3, 2)
	m.Set(0, 0, 1)
	m.Set(2, 1, 1)

	if m.Count() != 2 {
		t.Errorf("expected 2 set pixels, got %d", m.Count())
	}
	if inv := m.Invert(); inv.Count() != 4 || inv.At(0, 0) != 0 {
		t.Errorf("unexpected inverse %v", inv.Data)
	}
	if m.At(-1, 0) != 0 || m.At(3, 0) != 0 {
		t.Error("out-of-range pixels must read as 0")
	}
}

func TestLabelMap(t *testing.T) {
	l := NewSlice(4, 1).NewLabelMap()
	copy(l.Data, []int{0, 5, 2, 5})

	labels := l.Labels()
	if len(labels) != 2 || labels[0] != 2 || labels[1] != 5 {
		t.Errorf("expected labels [2 5], got %v", labels)
	}
	if l.Mask().Count() != 3 {
		t.Errorf("expected 3 foreground pixels, got %d", l.Mask().Count())
	}

	l.Spacing = Spacing{X: 0.5, Y: 0.5}
	l.Origin = Origin{X: 10, Y: 20}
	if x, y := l.PhysicalPoint(2, 4); x != 11 || y != 22 {
		t.Errorf("expected (11, 22), got (%g, %g)", x, y)
	}
}

func TestConnectivity(t *testing.T) {
	if len(FullyConnected.Offsets()) != 8 || len(FaceConnected.Offsets()) != 4 {
		t.Error("unexpected neighbour counts")
	}
	if FullyConnected.Dual() != FaceConnected || FaceConnected.Dual() != FullyConnected {
		t.Error("dual connectivity mismatch")
	}
}
