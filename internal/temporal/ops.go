// Package temporal implements the four temporal variants (spec.md §3.3,
// §4.C): Instant, InstantSet, Sequence, and SequenceSet, generic over a base
// value type V.
//
// The original engine dispatches per-value-type behaviour (equality,
// interpolation, bbox projection) through a type-oid lookup table; Go has no
// runtime type-oid dispatch; the idiomatic replacement is a small struct of
// closures supplied once per V, mirroring the same "each value_type plugs in
// its own operations" shape without reflection.
package temporal

import (
	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/period"
	"github.com/kestrel-spatial/tempo/internal/tbox"
)

// Ops bundles the per-value-type operations the variants and kernel depend
// on (spec.md §4.B). Continuous types (float, geompoint, geogpoint) use
// Interpolate and Collinear for normal-form reduction and value_at; discrete
// types (int, text) leave Interpolate nil (their Collinear is a plain
// equal-value check) and ValueAt/Sequence construction falls back to step
// semantics.
type Ops[V any] struct {
	// Eq is required for every value type.
	Eq func(a, b V) bool

	// Less gives a total order; required for min_value/max_value and range
	// restriction (InstantSet construction orders by timestamp and does not
	// use it). Point value types leave this nil (spec.md §4.B
	// notes points have accessors/equality but no ordering), and operations
	// that need it (min_value, restriction to range) fail with
	// terr.ErrUnsupported.
	Less func(a, b V) bool

	// Continuous marks the value type as using linear interpolation between
	// instants (float, geompoint, geogpoint) rather than step/discrete
	// holding (int, text) — spec.md §3.3's continuous_value flag.
	Continuous bool

	// Interpolate returns the value at fractional position frac in [0,1]
	// between a (at frac=0) and b (at frac=1). Required when Continuous.
	Interpolate func(a, b V, frac float64) V

	// Collinear reports whether mid is redundant between prev and next under
	// spec.md §3.3's Sequence normal form: equal values for discrete types,
	// or space-time collinearity for continuous point types. tPrev/tMid/tNext
	// let the implementation compute the time-fraction when needed.
	Collinear func(prev, mid, next V, tPrev, tMid, tNext period.Timestamp) bool

	// BBoxOf projects a single (value, timestamp) pair into a Box, used to
	// accumulate a variant's bbox at construction time.
	BBoxOf func(v V, t period.Timestamp) tbox.Box
}

// IntOps are the Ops for temporal integers: discrete, ordered, no
// interpolation.
var IntOps = Ops[int32]{
	Eq:   func(a, b int32) bool { return a == b },
	Less: func(a, b int32) bool { return a < b },
	Collinear: func(prev, mid, next int32, _, _, _ period.Timestamp) bool {
		return prev == mid && mid == next
	},
	BBoxOf: func(_ int32, t period.Timestamp) tbox.Box { return tbox.MakeFromTimestamp(t) },
}

// FloatOps are the Ops for temporal floats: continuous, ordered, linearly
// interpolated.
var FloatOps = Ops[float64]{
	Eq:         func(a, b float64) bool { return a == b },
	Less:       func(a, b float64) bool { return a < b },
	Continuous: true,
	Interpolate: func(a, b float64, frac float64) float64 {
		return a + (b-a)*frac
	},
	Collinear: func(prev, mid, next float64, tPrev, tMid, tNext period.Timestamp) bool {
		return floatCollinear(prev, mid, next, tPrev, tMid, tNext)
	},
	BBoxOf: func(_ float64, t period.Timestamp) tbox.Box { return tbox.MakeFromTimestamp(t) },
}

func floatCollinear(prev, mid, next float64, tPrev, tMid, tNext period.Timestamp) bool {
	if tNext == tPrev {
		return prev == mid && mid == next
	}
	frac := float64(tMid-tPrev) / float64(tNext-tPrev)
	interp := prev + (next-prev)*frac
	return interp == mid
}

// TextOps are the Ops for temporal text: discrete, ordered lexically, no
// interpolation.
var TextOps = Ops[string]{
	Eq:   func(a, b string) bool { return a == b },
	Less: func(a, b string) bool { return a < b },
	Collinear: func(prev, mid, next string, _, _, _ period.Timestamp) bool {
		return prev == mid && mid == next
	},
	BBoxOf: func(_ string, t period.Timestamp) tbox.Box { return tbox.MakeFromTimestamp(t) },
}

// PointOps are the Ops for temporal geometry/geography points: continuous,
// unordered (Less is nil), linearly interpolated, bit-for-bit equal.
var PointOps = Ops[basevalue.Point]{
	Eq: func(a, b basevalue.Point) bool { return a.Equal(b) },
	Continuous: true,
	Interpolate: func(a, b basevalue.Point, frac float64) basevalue.Point {
		if a.HasZ() {
			ax, ay, az := a.Get3D()
			bx, by, bz := b.Get3D()
			return basevalue.NewPoint3D(
				ax+(bx-ax)*frac, ay+(by-ay)*frac, az+(bz-az)*frac,
				a.SRID(), a.Geodetic())
		}
		ax, ay := a.Get2D()
		bx, by := b.Get2D()
		return basevalue.NewPoint2D(ax+(bx-ax)*frac, ay+(by-ay)*frac, a.SRID(), a.Geodetic())
	},
	Collinear: pointCollinear,
	BBoxOf: func(p basevalue.Point, t period.Timestamp) tbox.Box {
		if p.HasZ() {
			x, y, z := p.Get3D()
			return tbox.MakeFromPoint(x, y, true, z, p.Geodetic(), t)
		}
		x, y := p.Get2D()
		return tbox.MakeFromPoint(x, y, false, 0, p.Geodetic(), t)
	},
}

// pointCollinear reports whether mid is collinear in space-time with prev
// and next: the linearly-interpolated position at mid's time fraction
// matches mid's actual position within a small tolerance (spec.md §3.3).
func pointCollinear(prev, mid, next basevalue.Point, tPrev, tMid, tNext period.Timestamp) bool {
	if tNext == tPrev {
		return prev.Equal(mid) && mid.Equal(next)
	}
	frac := float64(tMid-tPrev) / float64(tNext-tPrev)
	const eps = 1e-11
	if prev.HasZ() {
		px, py, pz := prev.Get3D()
		nx, ny, nz := next.Get3D()
		mx, my, mz := mid.Get3D()
		return approxEq(px+(nx-px)*frac, mx, eps) && approxEq(py+(ny-py)*frac, my, eps) && approxEq(pz+(nz-pz)*frac, mz, eps)
	}
	px, py := prev.Get2D()
	nx, ny := next.Get2D()
	mx, my := mid.Get2D()
	return approxEq(px+(nx-px)*frac, mx, eps) && approxEq(py+(ny-py)*frac, my, eps)
}

func approxEq(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}
