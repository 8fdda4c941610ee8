package segmentation

import (
	"math"

	"ctfiducials/internal/models"
	"ctfiducials/pkg/config"
)

// Table sides
const (
	// TableBelow discards rows at and after the cut row
	TableBelow = config.TableBelow
	// TableAbove discards rows before the cut row
	TableAbove = config.TableAbove
)

// TableRemover masks out the scanner couch. The table height changes per
// slice and is passed to Remove; thickness and side are scanner calibration.
type TableRemover struct {
	Thickness float64
	Side      string
}

// NewTableRemover returns a remover for the given table thickness and side
func NewTableRemover(thickness float64, side string) (*TableRemover, error) {
	switch side {
	case TableBelow, TableAbove:
	default:
		return nil, &ConfigurationError{Parameter: "table.side", Reason: "must be below or above, got " + side}
	}
	return &TableRemover{Thickness: thickness, Side: side}, nil
}

// CutRow returns round(width/2) + tableHeight - thickness clamped to
// [0, height]. The table height is truncated to whole units first.
func CutRow(width, height int, tableHeight, thickness float64) int {
	row := int(math.Round(float64(width)/2) + math.Trunc(tableHeight) - thickness)
	if row < 0 {
		return 0
	}
	if row > height {
		return height
	}
	return row
}

// Remove returns the table mask of s: 1 on the kept rows, 0 on the table side
// of the cut row. A nil tableHeight is a ConfigurationError.
func (t *TableRemover) Remove(s *models.Slice, tableHeight *float64) (*models.Mask, error) {
	if tableHeight == nil {
		return nil, &ConfigurationError{Parameter: "tableHeight"}
	}

	cut := CutRow(s.Width, s.Height, *tableHeight, t.Thickness)
	m := s.NewMask()

	keep := m.Data[:cut*s.Width]
	if t.Side == TableAbove {
		keep = m.Data[cut*s.Width:]
	}
	for i := range keep {
		keep[i] = 1
	}
	return m, nil
}

// ApplyMask returns a copy of s with every pixel outside m set to 0
func ApplyMask(s *models.Slice, m *models.Mask) *models.Slice {
	out := s.Clone()
	for i, v := range m.Data {
		if v == 0 {
			out.Data[i] = 0
		}
	}
	return out
}
