package models

import "image"

// Spacing is the physical size of one pixel in mm
type Spacing struct {
	X, Y float64
}

// Origin is the physical coordinate of pixel (0,0)
type Origin struct {
	X, Y float64
}

// Slice represents a single CT slice with metadata.
// Data is stored row-major, Data[y*Width+x], in Hounsfield units.
type Slice struct {
	Width  int
	Height int
	Data   []float64

	// Spacing and Origin co-register every derived mask with the slice
	Spacing Spacing
	Origin  Origin

	// Index is the position of this slice in the sequence
	Index int

	// Position is the physical z position of the slice in mm
	Position float64
}

// NewSlice allocates a zero-valued slice with unit spacing.
func NewSlice(width, height int) *Slice {
	return &Slice{
		Width:   width,
		Height:  height,
		Data:    make([]float64, width*height),
		Spacing: Spacing{X: 1, Y: 1},
	}
}

// At returns the intensity at (x, y)
func (s *Slice) At(x, y int) float64 {
	return s.Data[y*s.Width+x]
}

// Set sets the intensity at (x, y)
func (s *Slice) Set(x, y int, v float64) {
	s.Data[y*s.Width+x] = v
}

// Bounds returns the pixel rectangle covered by the slice
func (s *Slice) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// Clone returns a deep copy of the slice.
func (s *Slice) Clone() *Slice {
	out := *s
	out.Data = append([]float64(nil), s.Data...)
	return &out
}

// Derive allocates an empty slice sharing the geometry of s.
func (s *Slice) Derive() *Slice {
	out := *s
	out.Data = make([]float64, len(s.Data))
	return &out
}

// NewMask allocates an all-zero mask co-registered with the slice.
func (s *Slice) NewMask() *Mask {
	return &Mask{
		Width:   s.Width,
		Height:  s.Height,
		Data:    make([]uint8, s.Width*s.Height),
		Spacing: s.Spacing,
		Origin:  s.Origin,
	}
}

// NewLabelMap allocates an all-background label map co-registered with the slice.
func (s *Slice) NewLabelMap() *LabelMap {
	return &LabelMap{
		Width:   s.Width,
		Height:  s.Height,
		Data:    make([]int, s.Width*s.Height),
		Spacing: s.Spacing,
		Origin:  s.Origin,
	}
}

// Mask is a binary image with values in {0, 1}
type Mask struct {
	Width   int
	Height  int
	Data    []uint8
	Spacing Spacing
	Origin  Origin
}

// NewMask allocates an all-zero mask with unit spacing.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:   width,
		Height:  height,
		Data:    make([]uint8, width*height),
		Spacing: Spacing{X: 1, Y: 1},
	}
}

// At reports whether (x, y) is set. Out-of-range coordinates read as 0.
func (m *Mask) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Data[y*m.Width+x]
}

// Set writes v at (x, y)
func (m *Mask) Set(x, y int, v uint8) {
	m.Data[y*m.Width+x] = v
}

// Count returns the number of set pixels
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v != 0 {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	out := *m
	out.Data = append([]uint8(nil), m.Data...)
	return &out
}

// Derive allocates an empty mask sharing the geometry of m.
func (m *Mask) Derive() *Mask {
	out := *m
	out.Data = make([]uint8, len(m.Data))
	return &out
}

// Invert returns the complement of the mask.
func (m *Mask) Invert() *Mask {
	out := m.Derive()
	for i, v := range m.Data {
		if v == 0 {
			out.Data[i] = 1
		}
	}
	return out
}

// Float returns the mask as a 0/1 slice co-registered with it.
func (m *Mask) Float() *Slice {
	out := &Slice{
		Width:   m.Width,
		Height:  m.Height,
		Data:    make([]float64, len(m.Data)),
		Spacing: m.Spacing,
		Origin:  m.Origin,
	}
	for i, v := range m.Data {
		if v != 0 {
			out.Data[i] = 1
		}
	}
	return out
}

// LabelMap holds connected-component labels; 0 is background
type LabelMap struct {
	Width   int
	Height  int
	Data    []int
	Spacing Spacing
	Origin  Origin
}

// At returns the label at (x, y). Out-of-range coordinates read as background.
func (l *LabelMap) At(x, y int) int {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return 0
	}
	return l.Data[y*l.Width+x]
}

// Clone returns a deep copy of the label map.
func (l *LabelMap) Clone() *LabelMap {
	out := *l
	out.Data = append([]int(nil), l.Data...)
	return &out
}

// Derive allocates an all-background label map sharing the geometry of l.
func (l *LabelMap) Derive() *LabelMap {
	out := *l
	out.Data = make([]int, len(l.Data))
	return &out
}

// Mask returns the foreground (any non-zero label) as a binary mask.
func (l *LabelMap) Mask() *Mask {
	out := &Mask{
		Width:   l.Width,
		Height:  l.Height,
		Data:    make([]uint8, len(l.Data)),
		Spacing: l.Spacing,
		Origin:  l.Origin,
	}
	for i, v := range l.Data {
		if v != 0 {
			out.Data[i] = 1
		}
	}
	return out
}

// Labels returns the distinct non-zero labels in ascending order
func (l *LabelMap) Labels() []int {
	seen := make(map[int]bool)
	maxLabel := 0
	for _, v := range l.Data {
		if v != 0 {
			seen[v] = true
			if v > maxLabel {
				maxLabel = v
			}
		}
	}
	labels := make([]int, 0, len(seen))
	for i := 1; i <= maxLabel; i++ {
		if seen[i] {
			labels = append(labels, i)
		}
	}
	return labels
}

// PhysicalPoint converts a (possibly fractional) pixel index into mm
func (l *LabelMap) PhysicalPoint(x, y float64) (float64, float64) {
	return l.Origin.X + x*l.Spacing.X, l.Origin.Y + y*l.Spacing.Y
}

// SliceMeta carries the per-slice scalar metadata supplied by the loader
type SliceMeta struct {
	// TableHeight is the scanner table height in mm; nil when the loader
	// could not provide it
	TableHeight *float64 `yaml:"tableHeight"`

	// WindowCenter and WindowWidth are display-only intensity window values
	WindowCenter float64 `yaml:"windowCenter"`
	WindowWidth  float64 `yaml:"windowWidth"`

	// ZIndex is the slice location used to select the slice from a series
	ZIndex float64 `yaml:"zIndex"`
}

// Volume is an ordered stack of slices with their metadata
type Volume struct {
	Slices []*Slice
	Meta   []SliceMeta
}

// Len returns the number of slices in the volume
func (v *Volume) Len() int {
	return len(v.Slices)
}
