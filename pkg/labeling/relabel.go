package labeling

import (
	"sort"

	"ctfiducials/internal/models"
)

// ChangeLabel returns a copy of l with every label found in changeMap replaced
// by its mapped value. Labels absent from the map are kept.
func ChangeLabel(l *models.LabelMap, changeMap map[int]int) *models.LabelMap {
	out := l.Clone()
	if len(changeMap) == 0 {
		return out
	}
	for i, v := range out.Data {
		if to, ok := changeMap[v]; ok {
			out.Data[i] = to
		}
	}
	return out
}

// Predicate decides whether a labelled region is kept
type Predicate func(ShapeRecord) bool

// Partition splits the records into the labels accepted and rejected by keep.
// Both lists are sorted ascending.
func Partition(records []ShapeRecord, keep Predicate) (kept, dropped []int) {
	for _, r := range records {
		if keep(r) {
			kept = append(kept, r.Label)
		} else {
			dropped = append(dropped, r.Label)
		}
	}
	sort.Ints(kept)
	sort.Ints(dropped)
	return kept, dropped
}

// Filter relabels to background every label whose record fails keep. Labels
// without a record are dropped as well.
func Filter(l *models.LabelMap, records []ShapeRecord, keep Predicate) (*models.LabelMap, []int, []int) {
	kept, dropped := Partition(records, keep)

	known := make(map[int]bool, len(records))
	for _, r := range records {
		known[r.Label] = true
	}

	changeMap := make(map[int]int, len(dropped))
	for _, label := range dropped {
		changeMap[label] = 0
	}
	for _, label := range l.Labels() {
		if !known[label] {
			changeMap[label] = 0
			dropped = append(dropped, label)
		}
	}
	sort.Ints(dropped)

	return ChangeLabel(l, changeMap), kept, dropped
}
