// Package spgist implements the 8-dimensional oct-tree index over temporal
// point bounding boxes (spec.md §4.J): SP-GiST's GBOX access method
// generalized to an in-process tree since this repo has no Postgres access-
// method host to plug into. Grounded on
// original_source/point/src/IndexSpgistTPoint.c: getOctant8D (choose),
// picksplit's median-of-coordinates split, and the traversal-cube
// bookkeeping (nextCubeGbox/overlap8D/contain8D) that lets inner nodes prune
// without re-examining every leaf. Structurally shaped like the teacher's
// internal/lidar/l3grid package (a config-driven spatial bucketing
// structure with Insert/Query entry points), adapted from a 2D polar grid
// to an 8D box tree.
package spgist

import (
	"math"
	"sort"

	"github.com/kestrel-spatial/tempo/internal/tbox"
)

// axisKey is a box's eight defining coordinates, laid out the way
// getOctant8D compares them: (xmin,xmax,ymin,ymax,zmin,zmax,tmin,tmax).
type axisKey struct {
	XMin, XMax float64
	YMin, YMax float64
	ZMin, ZMax float64
	TMin, TMax float64
}

func keyOf(b tbox.Box) axisKey {
	return axisKey{
		XMin: b.XMin, XMax: b.XMax,
		YMin: b.YMin, YMax: b.YMax,
		ZMin: b.ZMin, ZMax: b.ZMax,
		TMin: float64(b.TMin), TMax: float64(b.TMax),
	}
}

// octant computes the 8-bit octant of box relative to centroid (grounded on
// getOctant8D): one bit per coordinate, set when box's value exceeds
// centroid's on that axis.
func octant(centroid, box axisKey) uint8 {
	var o uint8
	if box.XMin > centroid.XMin {
		o |= 0x80
	}
	if box.XMax > centroid.XMax {
		o |= 0x40
	}
	if box.YMin > centroid.YMin {
		o |= 0x20
	}
	if box.YMax > centroid.YMax {
		o |= 0x10
	}
	if box.ZMin > centroid.ZMin {
		o |= 0x08
	}
	if box.ZMax > centroid.ZMax {
		o |= 0x04
	}
	if box.TMin > centroid.TMin {
		o |= 0x02
	}
	if box.TMax > centroid.TMax {
		o |= 0x01
	}
	return o
}

const numOctants = 256

// corner carries the known range of one box corner's coordinates (e.g. the
// possible values of XMin) across a subtree, one field pair per axis.
type corner struct {
	XLo, XHi float64
	YLo, YHi float64
	ZLo, ZHi float64
	TLo, THi float64
}

var posInf = math.Inf(1)

// cube is CubeGbox: the traversal value SP-GiST carries down the tree.
// minCorner bounds the subtree's possible (xmin,ymin,zmin,tmin) values;
// maxCorner bounds its possible (xmax,ymax,zmax,tmax) values.
type cube struct {
	minCorner, maxCorner corner
}

func rootCube() cube {
	inf := posInf
	c := corner{XLo: -inf, XHi: inf, YLo: -inf, YHi: inf, ZLo: -inf, ZHi: inf, TLo: -inf, THi: inf}
	return cube{minCorner: c, maxCorner: c}
}

// next computes the child cube for descending into octant oct below a node
// with the given centroid, grounded on nextCubeGbox.
func (c cube) next(centroid axisKey, oct uint8) cube {
	out := c
	if oct&0x80 != 0 {
		out.minCorner.XLo = centroid.XMin
	} else {
		out.minCorner.XHi = centroid.XMin
	}
	if oct&0x40 != 0 {
		out.maxCorner.XLo = centroid.XMax
	} else {
		out.maxCorner.XHi = centroid.XMax
	}
	if oct&0x20 != 0 {
		out.minCorner.YLo = centroid.YMin
	} else {
		out.minCorner.YHi = centroid.YMin
	}
	if oct&0x10 != 0 {
		out.maxCorner.YLo = centroid.YMax
	} else {
		out.maxCorner.YHi = centroid.YMax
	}
	if oct&0x08 != 0 {
		out.minCorner.ZLo = centroid.ZMin
	} else {
		out.minCorner.ZHi = centroid.ZMin
	}
	if oct&0x04 != 0 {
		out.maxCorner.ZLo = centroid.ZMax
	} else {
		out.maxCorner.ZHi = centroid.ZMax
	}
	if oct&0x02 != 0 {
		out.minCorner.TLo = centroid.TMin
	} else {
		out.minCorner.THi = centroid.TMin
	}
	if oct&0x01 != 0 {
		out.maxCorner.TLo = centroid.TMax
	} else {
		out.maxCorner.THi = centroid.TMax
	}
	return out
}

// mayOverlap reports whether any box in this cube's subtree could overlap
// query, grounded on overlap8D: a dimension is only checked when query
// bounds it (an infinite query extent on that axis can't exclude anything).
func (c cube) mayOverlap(query axisKey) bool {
	result := true
	if query.XMax != posInf {
		result = result && c.minCorner.XLo <= query.XMax && c.maxCorner.XHi >= query.XMin
	}
	if query.YMax != posInf {
		result = result && c.minCorner.YLo <= query.YMax && c.maxCorner.YHi >= query.YMin
	}
	if query.ZMax != posInf {
		result = result && c.minCorner.ZLo <= query.ZMax && c.maxCorner.ZHi >= query.ZMin
	}
	if query.TMax != posInf {
		result = result && c.minCorner.TLo <= query.TMax && c.maxCorner.THi >= query.TMin
	}
	return result
}

// mayContain reports whether any box in this cube's subtree could fully
// contain query, grounded on contain8D.
func (c cube) mayContain(query axisKey) bool {
	result := true
	if query.XMax != posInf {
		result = result && c.maxCorner.XHi >= query.XMax && c.minCorner.XLo <= query.XMin
	}
	if query.YMax != posInf {
		result = result && c.maxCorner.YHi >= query.YMax && c.minCorner.YLo <= query.YMin
	}
	if query.ZMax != posInf {
		result = result && c.maxCorner.ZHi >= query.ZMax && c.minCorner.ZLo <= query.ZMin
	}
	if query.TMax != posInf {
		result = result && c.maxCorner.THi >= query.TMax && c.minCorner.TLo <= query.TMin
	}
	return result
}

// mayBefore reports whether every box in this cube's subtree could precede
// query in time (grounded on before8D: cube_gbox->right.mmax < query->mmin).
func (c cube) mayBefore(query axisKey) bool { return c.maxCorner.THi < query.TMin }

// mayAfter is after8D's Go counterpart.
func (c cube) mayAfter(query axisKey) bool { return c.minCorner.TLo > query.TMax }

// mayOverBefore is overBefore8D's Go counterpart.
func (c cube) mayOverBefore(query axisKey) bool { return c.maxCorner.THi <= query.TMax }

// mayOverAfter is overAfter8D's Go counterpart.
func (c cube) mayOverAfter(query axisKey) bool { return c.minCorner.TLo >= query.TMin }

// mayLeft/mayOverLeft/mayRight/mayOverRight are left8D/overLeft8D/right8D/
// overRight8D's Go counterparts, the X-axis half-space checks.
func (c cube) mayLeft(query axisKey) bool      { return c.maxCorner.XHi < query.XMin }
func (c cube) mayOverLeft(query axisKey) bool  { return c.maxCorner.XHi <= query.XMax }
func (c cube) mayRight(query axisKey) bool     { return c.minCorner.XLo > query.XMax }
func (c cube) mayOverRight(query axisKey) bool { return c.minCorner.XLo >= query.XMin }

// mayBelow/mayOverBelow/mayAbove/mayOverAbove are below8D/overBelow8D/
// above8D/overAbove8D's Go counterparts, the Y-axis half-space checks.
func (c cube) mayBelow(query axisKey) bool      { return c.maxCorner.YHi < query.YMin }
func (c cube) mayOverBelow(query axisKey) bool  { return c.maxCorner.YHi <= query.YMax }
func (c cube) mayAbove(query axisKey) bool      { return c.minCorner.YLo > query.YMax }
func (c cube) mayOverAbove(query axisKey) bool  { return c.minCorner.YLo >= query.YMin }

// mayFront/mayOverFront/mayBack/mayOverBack are front8D/overFront8D/back8D/
// overBack8D's Go counterparts, the Z-axis half-space checks.
func (c cube) mayFront(query axisKey) bool      { return c.maxCorner.ZHi < query.ZMin }
func (c cube) mayOverFront(query axisKey) bool  { return c.maxCorner.ZHi <= query.ZMax }
func (c cube) mayBack(query axisKey) bool       { return c.minCorner.ZLo > query.ZMax }
func (c cube) mayOverBack(query axisKey) bool   { return c.minCorner.ZLo >= query.ZMin }

// Entry is a single indexed (bbox, payload-id) pair.
type Entry struct {
	Box tbox.Box
	ID  string
}

// node is either an inner node (centroid + up to 256 children) or a leaf
// bucket of entries not yet large enough to split.
type node struct {
	leaf     bool
	entries  []Entry
	centroid axisKey
	children map[uint8]*node
}

// Tree is an in-memory SP-GiST-style oct-tree over tbox.Box keys. Config's
// OctreeMaxPageEntries/OctreeMinPageEntries (engcfg.EngineConfig) govern when
// a leaf bucket splits (spec.md §4.J).
type Tree struct {
	root            *node
	maxPageEntries  int
	minPageEntries  int
}

// New creates an empty Tree. maxPageEntries/minPageEntries come from
// engcfg.EngineConfig.OctreeMaxPageEntries/OctreeMinPageEntries.
func New(maxPageEntries, minPageEntries int) *Tree {
	return &Tree{
		root:           &node{leaf: true},
		maxPageEntries: maxPageEntries,
		minPageEntries: minPageEntries,
	}
}

// Insert adds entry's box under id to the tree, splitting leaf pages that
// exceed maxPageEntries.
func (t *Tree) Insert(box tbox.Box, id string) {
	insertInto(t.root, Entry{Box: box, ID: id}, t.maxPageEntries, t.minPageEntries)
}

func insertInto(n *node, e Entry, maxPage, minPage int) {
	if n.leaf {
		n.entries = append(n.entries, e)
		if len(n.entries) > maxPage && len(n.entries) >= minPage {
			split(n, maxPage, minPage)
		}
		return
	}
	oct := octant(n.centroid, keyOf(e.Box))
	child, ok := n.children[oct]
	if !ok {
		child = &node{leaf: true}
		n.children[oct] = child
	}
	insertInto(child, e, maxPage, minPage)
}

// split turns a leaf into an inner node, grounded on spgist_tpoint_picksplit:
// the centroid is the median of each of the 8 coordinates across the page's
// entries, and every entry is then re-filed into its octant relative to that
// centroid.
func split(n *node, maxPage, minPage int) {
	entries := n.entries
	keys := make([]axisKey, len(entries))
	for i, e := range entries {
		keys[i] = keyOf(e.Box)
	}
	centroid := medianKey(keys)

	n.leaf = false
	n.centroid = centroid
	n.entries = nil
	n.children = make(map[uint8]*node)

	for _, e := range entries {
		oct := octant(centroid, keyOf(e.Box))
		child, ok := n.children[oct]
		if !ok {
			child = &node{leaf: true}
			n.children[oct] = child
		}
		child.entries = append(child.entries, e)
	}
	for _, child := range n.children {
		// Only recurse when the split actually shrank the bucket: identical
		// or near-identical keys can median-split into a single octant that
		// reproduces the parent's entire entry set, which would otherwise
		// recurse forever (Postgres's SP-GiST handles this with an
		// allTheSame leaf marker; this tree instead just stops subdividing).
		if len(child.entries) > maxPage && len(child.entries) >= minPage && len(child.entries) < len(entries) {
			split(child, maxPage, minPage)
		}
	}
}

func medianKey(keys []axisKey) axisKey {
	n := len(keys)
	col := func(f func(axisKey) float64) float64 {
		vals := make([]float64, n)
		for i, k := range keys {
			vals[i] = f(k)
		}
		sort.Float64s(vals)
		return vals[n/2]
	}
	return axisKey{
		XMin: col(func(k axisKey) float64 { return k.XMin }),
		XMax: col(func(k axisKey) float64 { return k.XMax }),
		YMin: col(func(k axisKey) float64 { return k.YMin }),
		YMax: col(func(k axisKey) float64 { return k.YMax }),
		ZMin: col(func(k axisKey) float64 { return k.ZMin }),
		ZMax: col(func(k axisKey) float64 { return k.ZMax }),
		TMin: col(func(k axisKey) float64 { return k.TMin }),
		TMax: col(func(k axisKey) float64 { return k.TMax }),
	}
}

// QueryOverlaps returns the IDs of every indexed box overlapping query
// (spec.md §4.J's overlap/&& operator), pruning subtrees via mayOverlap
// before ever inspecting their leaves.
func (t *Tree) QueryOverlaps(query tbox.Box) []string {
	qk := keyOf(query)
	var out []string
	walk(t.root, rootCube(), func(c cube) bool { return c.mayOverlap(qk) }, func(e Entry) bool {
		return tbox.Overlaps(e.Box, query)
	}, &out)
	return out
}

// QueryContains returns the IDs of every indexed box that fully contains
// query (spec.md §4.J's contains operator).
func (t *Tree) QueryContains(query tbox.Box) []string {
	qk := keyOf(query)
	var out []string
	walk(t.root, rootCube(), func(c cube) bool { return c.mayContain(qk) }, func(e Entry) bool {
		return tbox.Contains(e.Box, query)
	}, &out)
	return out
}

// QueryBefore returns the IDs of every indexed box whose time extent
// strictly precedes query's (spec.md §4.J's before/<<# operator).
func (t *Tree) QueryBefore(query tbox.Box) []string {
	qk := keyOf(query)
	var out []string
	walk(t.root, rootCube(), func(c cube) bool { return !c.mayAfter(qk) }, func(e Entry) bool {
		return e.Box.TMax < query.TMin
	}, &out)
	return out
}

// QueryAfter is QueryBefore's mirror (spec.md §4.J's after/#>> operator).
func (t *Tree) QueryAfter(query tbox.Box) []string {
	qk := keyOf(query)
	var out []string
	walk(t.root, rootCube(), func(c cube) bool { return !c.mayBefore(qk) }, func(e Entry) bool {
		return e.Box.TMin > query.TMax
	}, &out)
	return out
}

// QueryContained returns the IDs of every indexed box fully contained in
// query (spec.md §4.J's contained/<@ operator). The C source's switch on
// RTContainedByStrategyNumber reuses overlap8D for pruning — a box cannot
// be contained in query without first overlapping it — and defers the
// tighter contained check to the leaf.
func (t *Tree) QueryContained(query tbox.Box) []string {
	qk := keyOf(query)
	var out []string
	walk(t.root, rootCube(), func(c cube) bool { return c.mayOverlap(qk) }, func(e Entry) bool {
		return tbox.Contained(e.Box, query)
	}, &out)
	return out
}

// QuerySame returns the IDs of every indexed box covering exactly query's
// extent (spec.md §4.J's same/~= operator). RTSameStrategyNumber reuses
// contain8D for pruning alongside RTContainsStrategyNumber: a box equal to
// query necessarily contains it.
func (t *Tree) QuerySame(query tbox.Box) []string {
	qk := keyOf(query)
	var out []string
	walk(t.root, rootCube(), func(c cube) bool { return c.mayContain(qk) }, func(e Entry) bool {
		return tbox.Same(e.Box, query)
	}, &out)
	return out
}

// QueryLeft returns the IDs of every indexed box strictly to the left of
// query on the X axis (spec.md §4.J's left/<< operator). Grounded on the
// RTLeftStrategyNumber case, which prunes with !overRight8D rather than
// !left8D directly: only an entry that could extend past query's right
// edge fails to qualify.
func (t *Tree) QueryLeft(query tbox.Box) []string {
	qk := keyOf(query)
	var out []string
	walk(t.root, rootCube(), func(c cube) bool { return !c.mayOverRight(qk) }, func(e Entry) bool {
		return e.Box.XMax < query.XMin
	}, &out)
	return out
}

// QueryOverLeft returns the IDs of every indexed box that does not extend
// to the right of query (spec.md §4.J's overleft/&< operator).
func (t *Tree) QueryOverLeft(query tbox.Box) []string {
	qk := keyOf(query)
	var out []string
	walk(t.root, rootCube(), func(c cube) bool { return !c.mayRight(qk) }, func(e Entry) bool {
		return e.Box.XMax <= query.XMax
	}, &out)
	return out
}

// QueryRight is QueryLeft's mirror (spec.md §4.J's right/>> operator).
func (t *Tree) QueryRight(query tbox.Box) []string {
	qk := keyOf(query)
	var out []string
	walk(t.root, rootCube(), func(c cube) bool { return !c.mayOverLeft(qk) }, func(e Entry) bool {
		return e.Box.XMin > query.XMax
	}, &out)
	return out
}

// QueryOverRight is QueryOverLeft's mirror (spec.md §4.J's overright/&>
// operator).
func (t *Tree) QueryOverRight(query tbox.Box) []string {
	qk := keyOf(query)
	var out []string
	walk(t.root, rootCube(), func(c cube) bool { return !c.mayLeft(qk) }, func(e Entry) bool {
		return e.Box.XMin >= query.XMin
	}, &out)
	return out
}

// QueryBelow returns the IDs of every indexed box strictly below query on
// the Y axis (spec.md §4.J's below/<<| operator).
func (t *Tree) QueryBelow(query tbox.Box) []string {
	qk := keyOf(query)
	var out []string
	walk(t.root, rootCube(), func(c cube) bool { return !c.mayOverAbove(qk) }, func(e Entry) bool {
		return e.Box.YMax < query.YMin
	}, &out)
	return out
}

// QueryOverBelow is QueryBelow's inclusive variant (spec.md §4.J's
// overbelow/&<| operator).
func (t *Tree) QueryOverBelow(query tbox.Box) []string {
	qk := keyOf(query)
	var out []string
	walk(t.root, rootCube(), func(c cube) bool { return !c.mayAbove(qk) }, func(e Entry) bool {
		return e.Box.YMax <= query.YMax
	}, &out)
	return out
}

// QueryAbove is QueryBelow's mirror (spec.md §4.J's above/|>> operator).
func (t *Tree) QueryAbove(query tbox.Box) []string {
	qk := keyOf(query)
	var out []string
	walk(t.root, rootCube(), func(c cube) bool { return !c.mayOverBelow(qk) }, func(e Entry) bool {
		return e.Box.YMin > query.YMax
	}, &out)
	return out
}

// QueryOverAbove is QueryAbove's inclusive variant (spec.md §4.J's
// overabove/|&> operator).
func (t *Tree) QueryOverAbove(query tbox.Box) []string {
	qk := keyOf(query)
	var out []string
	walk(t.root, rootCube(), func(c cube) bool { return !c.mayBelow(qk) }, func(e Entry) bool {
		return e.Box.YMin >= query.YMin
	}, &out)
	return out
}

// QueryFront returns the IDs of every indexed box strictly in front of
// query on the Z axis (spec.md §4.J's front operator).
func (t *Tree) QueryFront(query tbox.Box) []string {
	qk := keyOf(query)
	var out []string
	walk(t.root, rootCube(), func(c cube) bool { return !c.mayOverBack(qk) }, func(e Entry) bool {
		return e.Box.ZMax < query.ZMin
	}, &out)
	return out
}

// QueryOverFront is QueryFront's inclusive variant (spec.md §4.J's
// overfront operator).
func (t *Tree) QueryOverFront(query tbox.Box) []string {
	qk := keyOf(query)
	var out []string
	walk(t.root, rootCube(), func(c cube) bool { return !c.mayBack(qk) }, func(e Entry) bool {
		return e.Box.ZMax <= query.ZMax
	}, &out)
	return out
}

// QueryBack is QueryFront's mirror (spec.md §4.J's back operator).
func (t *Tree) QueryBack(query tbox.Box) []string {
	qk := keyOf(query)
	var out []string
	walk(t.root, rootCube(), func(c cube) bool { return !c.mayOverFront(qk) }, func(e Entry) bool {
		return e.Box.ZMin > query.ZMax
	}, &out)
	return out
}

// QueryOverBack is QueryBack's inclusive variant (spec.md §4.J's overback
// operator).
func (t *Tree) QueryOverBack(query tbox.Box) []string {
	qk := keyOf(query)
	var out []string
	walk(t.root, rootCube(), func(c cube) bool { return !c.mayFront(qk) }, func(e Entry) bool {
		return e.Box.ZMin >= query.ZMin
	}, &out)
	return out
}

// walk is the shared inner/leaf-consistent traversal: innerMayMatch prunes
// subtrees (spg inner-consistent), leafMatch filters the leaves that survive
// (spg leaf-consistent / recheck).
func walk(n *node, c cube, innerMayMatch func(cube) bool, leafMatch func(Entry) bool, out *[]string) {
	if !innerMayMatch(c) {
		return
	}
	if n.leaf {
		for _, e := range n.entries {
			if leafMatch(e) {
				*out = append(*out, e.ID)
			}
		}
		return
	}
	for oct, child := range n.children {
		walk(child, c.next(n.centroid, oct), innerMayMatch, leafMatch, out)
	}
}
