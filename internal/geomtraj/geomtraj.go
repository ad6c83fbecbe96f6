// Package geomtraj defines the minimal geometry-blob vocabulary the
// temporal variants cache as their trajectory (spec.md §3.3, §4.I, §9
// "cached trajectory"). It plays the role spec.md §1 assigns to the host
// geometry library — point/linestring/multipoint construction only, no
// predicates — kept separate from package temporal to avoid an import cycle
// with package trajectory, which builds these from a Sequence's instants.
package geomtraj

import "github.com/kestrel-spatial/tempo/internal/basevalue"

// Geom is the sum type a trajectory blob can be: a single point (all
// instants collapsed to one position), a linestring (ordered positions
// through a continuous point Sequence), or a multipoint (the union of
// disjoint point trajectories in a SequenceSet, spec.md §4.I).
type Geom struct {
	kind   Kind
	points []basevalue.Point // ordered for LineString, unordered set for MultiPoint/Point
}

type Kind int

const (
	KindEmpty Kind = iota
	KindPoint
	KindLineString
	KindMultiPoint
)

func (g Geom) Kind() Kind                { return g.kind }
func (g Geom) Points() []basevalue.Point { return append([]basevalue.Point(nil), g.points...) }

// NewPoint wraps a single point as a degenerate trajectory (every instant of
// a Sequence shares the same value).
func NewPoint(p basevalue.Point) Geom { return Geom{kind: KindPoint, points: []basevalue.Point{p}} }

// NewLineString builds an ordered trajectory through pts, deduplicating
// consecutive equal points (spec.md §4.I).
func NewLineString(pts []basevalue.Point) Geom {
	deduped := make([]basevalue.Point, 0, len(pts))
	for _, p := range pts {
		if len(deduped) > 0 && deduped[len(deduped)-1].Equal(p) {
			continue
		}
		deduped = append(deduped, p)
	}
	if len(deduped) == 1 {
		return NewPoint(deduped[0])
	}
	return Geom{kind: KindLineString, points: deduped}
}

// NewMultiPoint wraps an unordered set of points (spec.md §4.I
// SequenceSet trajectory union of point-only trajectories).
func NewMultiPoint(pts []basevalue.Point) Geom {
	return Geom{kind: KindMultiPoint, points: pts}
}

// Union combines two trajectories: two point-only trajectories become one
// multipoint; any other pair (point/line or line/line) becomes a single
// LineString through a's points followed by b's points. The result does not
// keep the inputs as separate components, and no geometric linework union
// is computed, so the joined LineString runs straight from a's last point to
// b's first.
func Union(a, b Geom) Geom {
	if a.kind == KindEmpty {
		return b
	}
	if b.kind == KindEmpty {
		return a
	}
	if (a.kind == KindPoint || a.kind == KindMultiPoint) && (b.kind == KindPoint || b.kind == KindMultiPoint) {
		return NewMultiPoint(append(a.Points(), b.Points()...))
	}
	// Mixed point/line or line/line: concatenate the point lists into one
	// LineString, since linework dominates length/trajectory callers.
	return Geom{kind: KindLineString, points: append(a.Points(), b.Points()...)}
}
