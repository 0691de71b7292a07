package engine

import "sort"

// extent is a half-open file byte range [Start, End) tagged with the
// index of the segment or section it belongs to.
type extent struct {
	Start, End uint64
	Index      int
}

// IntervalIndex is an immutable, sorted-by-start index over a set of
// file extents, built once after parse and discarded once an
// injection's fixups have been applied (offsets shift under it).
// Lookup scans the extents in Start order and stops at the first one
// that starts past the queried offset, so it is linear in the number
// of extents, not logarithmic. The index is never mutated in place.
type IntervalIndex struct {
	extents []extent
}

// NewIntervalIndex builds an index from a list of (start, end, index)
// extents. Extents need not be disjoint or pre-sorted.
func NewIntervalIndex(extents []extent) *IntervalIndex {
	sorted := make([]extent, len(extents))
	copy(sorted, extents)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	return &IntervalIndex{extents: sorted}
}

// Find returns the index of the first extent containing offset, and
// true if one exists. Extents are kept sorted by Start, so when two
// overlap the one with the smaller Start is reported.
func (idx *IntervalIndex) Find(offset uint64) (int, bool) {
	for _, e := range idx.extents {
		if e.Start > offset {
			break
		}
		if offset < e.End {
			return e.Index, true
		}
	}
	return 0, false
}
