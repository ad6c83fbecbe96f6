package restrict

import (
	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/period"
)

// LevelCrossingSolver finds the fractional positions within a segment
// [start,end] (affinely interpolated) at which the segment's value equals
// level, used by Restriction-to-value on continuous Sequences (spec.md
// §4.G: "linear root for scalar, geometric point-equality for points").
// Results are fractions in (0,1) exclusive — callers check the endpoints
// separately via ops.Eq.
type LevelCrossingSolver[V any] func(start, end, level V) []float64

// FloatLevelCrossing solves the single linear root of the segment equalling
// level, grounded on the scalar case of
// original_source/point/src/TemporalS.c's restriction-to-value routine.
func FloatLevelCrossing(start, end, level float64) []float64 {
	denom := end - start
	if denom == 0 {
		return nil
	}
	frac := (level - start) / denom
	if frac <= 0 || frac >= 1 {
		return nil
	}
	return []float64{frac}
}

// PointLevelCrossing solves for the fraction at which the affinely
// interpolated segment passes exactly through level, by requiring the x and
// y coordinates' independent linear solves to agree; Z coordinates are not
// compared (spec.md §4.G's
// "geometric point-equality" case), grounded on
// original_source/point/src/TemporalGeo.c's segment/point intersection.
func PointLevelCrossing(start, end, level basevalue.Point) []float64 {
	sx, sy := start.Get2D()
	ex, ey := end.Get2D()
	lx, ly := level.Get2D()

	fx, okx := solveAxis(sx, ex, lx)
	fy, oky := solveAxis(sy, ey, ly)

	const eps = 1e-9
	switch {
	case okx && oky:
		if approxEq(fx, fy, eps) {
			return []float64{fx}
		}
		return nil
	case okx && !oky:
		// y is constant along the segment; valid only if it already equals
		// the target's y everywhere.
		if sy == ey && sy == ly {
			return []float64{fx}
		}
		return nil
	case oky && !okx:
		if sx == ex && sx == lx {
			return []float64{fy}
		}
		return nil
	default:
		return nil
	}
}

func solveAxis(start, end, level float64) (float64, bool) {
	denom := end - start
	if denom == 0 {
		return 0, false
	}
	frac := (level - start) / denom
	if frac <= 0 || frac >= 1 {
		return 0, false
	}
	return frac, true
}

func approxEq(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func fracToTime(t0, t1 period.Timestamp, frac float64) period.Timestamp {
	return t0 + period.Timestamp(frac*float64(t1-t0))
}
