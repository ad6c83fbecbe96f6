package basevalue

import "sort"

// Ordered is any base value type with a total order: int, float, text
// (string), and the Timestamp/period types reuse Go's built-in ordering
// operators directly. Ordered lets generic helpers (sort + dedup) work
// across every scalar value_type spec.md §3.2 lists.
type Ordered interface {
	~int | ~int32 | ~int64 | ~float64 | ~string
}

// DatumSort stable-sorts vs in place, matching spec.md §4.B's
// "datum_sort + datum_remove_duplicates" requirement.
func DatumSort[T Ordered](vs []T) {
	sort.SliceStable(vs, func(i, j int) bool { return vs[i] < vs[j] })
}

// DatumRemoveDuplicates removes adjacent duplicates from a sorted slice,
// the second half of spec.md §4.B's sort+dedup contract.
func DatumRemoveDuplicates[T Ordered](vs []T) []T {
	if len(vs) == 0 {
		return vs
	}
	out := vs[:1]
	for _, v := range vs[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// DatumSortUnique sorts vs and removes adjacent duplicates, returning a new
// slice; vs is not mutated.
func DatumSortUnique[T Ordered](vs []T) []T {
	cp := append([]T(nil), vs...)
	DatumSort(cp)
	return DatumRemoveDuplicates(cp)
}

// SortPointsByInstant is the point-value_type analogue of DatumSortUnique:
// points don't have a natural total order, so InstantSet construction only
// ever sorts points by their paired timestamp, deduplicating when both
// timestamp and point are equal. Kept here (not in the temporal package)
// because it depends on Point.Equal, a base-value trait.
func SortPointsByInstant(points []Point, ts []int64) ([]Point, []int64) {
	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return ts[idx[i]] < ts[idx[j]] })
	outP := make([]Point, 0, len(points))
	outT := make([]int64, 0, len(ts))
	for _, i := range idx {
		if len(outT) > 0 && outT[len(outT)-1] == ts[i] && outP[len(outP)-1].Equal(points[i]) {
			continue
		}
		outP = append(outP, points[i])
		outT = append(outT, ts[i])
	}
	return outP, outT
}
