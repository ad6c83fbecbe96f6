// Package tbox implements bbox4d (spec.md §4.A): a 4D closed interval over
// (x, y, z, t) with per-dimension presence flags, used both as the temporal
// variants' precomputed bounding box and as the SP-GiST octree's index key.
package tbox

import (
	"fmt"
	"math"

	"github.com/kestrel-spatial/tempo/internal/period"
)

// Box is bbox4d. HasX/HasZ/HasT/Geodetic record which dimensions are
// meaningful at all; the constructors leave the coordinates of an absent
// dimension at zero rather than filling them with sentinels.
type Box struct {
	XMin, XMax float64
	YMin, YMax float64
	ZMin, ZMax float64
	TMin, TMax period.Timestamp

	HasX, HasZ, HasT bool
	Geodetic         bool
}

// inf/negInf are the sentinel values for a box with no spatial extent on a
// given axis.
const inf = math.MaxFloat64
const negInf = -math.MaxFloat64

// emptySpatial returns a Box with no spatial dimensions populated; callers
// layer in HasX/HasZ/HasT as they add information.
func emptySpatial() Box {
	return Box{XMin: inf, XMax: negInf, YMin: inf, YMax: negInf, ZMin: inf, ZMax: negInf}
}

// MakeFromPoint builds a Box covering a single 2D or 3D point at instant t.
func MakeFromPoint(x, y float64, hasZ bool, z float64, geodetic bool, t period.Timestamp) Box {
	b := Box{XMin: x, XMax: x, YMin: y, YMax: y, HasX: true, HasT: true, TMin: t, TMax: t, Geodetic: geodetic}
	if hasZ {
		b.ZMin, b.ZMax = z, z
		b.HasZ = true
	} else {
		b.ZMin, b.ZMax = 0, 0
	}
	return b
}

// MakeFromTimestamp builds a Box with only the temporal dimension populated.
func MakeFromTimestamp(t period.Timestamp) Box {
	return Box{HasT: true, TMin: t, TMax: t}
}

// MakeFromPeriod builds a Box with only the temporal dimension populated,
// spanning p.
func MakeFromPeriod(p period.Period) Box {
	return Box{HasT: true, TMin: p.Lower, TMax: p.Upper}
}

// Union expands b in place to also cover other. Dimensions present in only
// one operand are adopted as-is; dimensions present in neither stay absent.
func (b *Box) Union(other Box) {
	if other.HasX {
		if !b.HasX {
			b.XMin, b.XMax, b.YMin, b.YMax = other.XMin, other.XMax, other.YMin, other.YMax
			b.HasX = true
			b.Geodetic = other.Geodetic
		} else {
			b.XMin = math.Min(b.XMin, other.XMin)
			b.XMax = math.Max(b.XMax, other.XMax)
			b.YMin = math.Min(b.YMin, other.YMin)
			b.YMax = math.Max(b.YMax, other.YMax)
		}
	}
	if other.HasZ {
		if !b.HasZ {
			b.ZMin, b.ZMax = other.ZMin, other.ZMax
			b.HasZ = true
		} else {
			b.ZMin = math.Min(b.ZMin, other.ZMin)
			b.ZMax = math.Max(b.ZMax, other.ZMax)
		}
	}
	if other.HasT {
		if !b.HasT {
			b.TMin, b.TMax = other.TMin, other.TMax
			b.HasT = true
		} else {
			if other.TMin < b.TMin {
				b.TMin = other.TMin
			}
			if other.TMax > b.TMax {
				b.TMax = other.TMax
			}
		}
	}
}

// UnionCopy returns a new Box covering both a and b without mutating either.
func UnionCopy(a, b Box) Box {
	out := a
	out.Union(b)
	return out
}

// geodeticMismatch is the one check every comparator performs before looking
// at coordinates: spec.md §4.A "geodetic vs planar boxes are not comparable".
func geodeticMismatch(a, b Box) bool {
	return a.HasX && b.HasX && a.Geodetic != b.Geodetic
}

// Contains reports whether b fully contains other on every dimension both
// have populated; dimensions absent on either side are ignored (spec.md
// §4.A).
func Contains(b, other Box) bool {
	if geodeticMismatch(b, other) {
		return false
	}
	if b.HasX && other.HasX {
		if other.XMin < b.XMin || other.XMax > b.XMax || other.YMin < b.YMin || other.YMax > b.YMax {
			return false
		}
	}
	if b.HasZ && other.HasZ {
		if other.ZMin < b.ZMin || other.ZMax > b.ZMax {
			return false
		}
	}
	if b.HasT && other.HasT {
		if other.TMin < b.TMin || other.TMax > b.TMax {
			return false
		}
	}
	return true
}

// Contained is Contains with the operands reversed.
func Contained(b, other Box) bool { return Contains(other, b) }

// Overlaps reports whether a and b share any point on every dimension both
// have populated.
func Overlaps(a, b Box) bool {
	if geodeticMismatch(a, b) {
		return false
	}
	if a.HasX && b.HasX {
		if a.XMax < b.XMin || b.XMax < a.XMin || a.YMax < b.YMin || b.YMax < a.YMin {
			return false
		}
	}
	if a.HasZ && b.HasZ {
		if a.ZMax < b.ZMin || b.ZMax < a.ZMin {
			return false
		}
	}
	if a.HasT && b.HasT {
		if a.TMax < b.TMin || b.TMax < a.TMin {
			return false
		}
	}
	return true
}

// Same reports whether a and b cover the same extent on every dimension
// both have populated.
func Same(a, b Box) bool {
	if geodeticMismatch(a, b) {
		return false
	}
	if a.HasX != b.HasX || a.HasZ != b.HasZ || a.HasT != b.HasT {
		return false
	}
	if a.HasX && (a.XMin != b.XMin || a.XMax != b.XMax || a.YMin != b.YMin || a.YMax != b.YMax) {
		return false
	}
	if a.HasZ && (a.ZMin != b.ZMin || a.ZMax != b.ZMax) {
		return false
	}
	if a.HasT && (a.TMin != b.TMin || a.TMax != b.TMax) {
		return false
	}
	return true
}

// Distance returns the spatial distance between a and b: zero if they
// overlap, +∞ if their time intervals are disjoint, otherwise the 2D/3D
// Euclidean distance computed with a scale-and-add hypotenuse to avoid
// overflow on large coordinates — grounded on original_source's
// pg_hypot/pg_hypot3D (GeoBoundBoxOps.c).
func Distance(a, b Box) (float64, error) {
	if geodeticMismatch(a, b) {
		return 0, fmt.Errorf("distance: mixed geodetic/planar boxes")
	}
	if a.HasT && b.HasT && (a.TMax < b.TMin || b.TMax < a.TMin) {
		return math.Inf(1), nil
	}
	if !a.HasX || !b.HasX {
		return 0, nil
	}
	dx := axisGap(a.XMin, a.XMax, b.XMin, b.XMax)
	dy := axisGap(a.YMin, a.YMax, b.YMin, b.YMax)
	if a.HasZ && b.HasZ {
		dz := axisGap(a.ZMin, a.ZMax, b.ZMin, b.ZMax)
		return hypot3D(dx, dy, dz), nil
	}
	return hypot(dx, dy), nil
}

// axisGap returns the gap between two 1D intervals along one axis, or 0 if
// they overlap.
func axisGap(aMin, aMax, bMin, bMax float64) float64 {
	if aMax < bMin {
		return bMin - aMax
	}
	if bMax < aMin {
		return aMin - bMax
	}
	return 0
}

// hypot is math.Hypot, named to match the original's pg_hypot for grounding
// clarity; math.Hypot already uses a scale-and-add algorithm internally.
func hypot(x, y float64) float64 { return math.Hypot(x, y) }

// hypot3D extends the 2D scale-and-add hypotenuse to three dimensions,
// following original_source/point/src/GeoBoundBoxOps.c's pg_hypot3D: scale
// by the largest-magnitude component so the other two ratios stay within
// [0,1], then fold them in.
func hypot3D(x, y, z float64) float64 {
	x, y, z = math.Abs(x), math.Abs(y), math.Abs(z)
	if x < y {
		x, y = y, x
	}
	if x < z {
		x, z = z, x
	}
	if x == 0 {
		return 0
	}
	yx := y / x
	zx := z / x
	return x * math.Sqrt(1+yx*yx+zx*zx)
}

// ExpandSpatial returns a copy of b with its spatial dimensions expanded by
// d on every side.
func ExpandSpatial(b Box, d float64) Box {
	out := b
	if out.HasX {
		out.XMin -= d
		out.XMax += d
		out.YMin -= d
		out.YMax += d
	}
	if out.HasZ {
		out.ZMin -= d
		out.ZMax += d
	}
	return out
}

// ExpandTemporal returns a copy of b with its temporal dimension expanded by
// iv on both ends.
func ExpandTemporal(b Box, iv period.Interval) Box {
	out := b
	if out.HasT {
		out.TMin = out.TMin.Shift(period.Interval{Microseconds: -iv.Microseconds, Months: -iv.Months, Days: -iv.Days})
		out.TMax = out.TMax.Shift(iv)
	}
	return out
}
