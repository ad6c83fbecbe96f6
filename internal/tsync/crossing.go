package tsync

import (
	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/period"
)

// CrossingSolver computes a split instant strictly inside a segment where a
// pointwise-applied operator over two affine (linearly interpolated)
// segments could change discontinuously (spec.md §4.F). ok is false when no
// such instant exists strictly inside (t0, t1).
type CrossingSolver[A, B any] func(aStart, aEnd A, bStart, bEnd B, t0, t1 period.Timestamp) (t period.Timestamp, ok bool)

// DistanceMinimumCrossing solves for the timestamp minimizing
// ‖A(t) - B(t)‖² over a segment where both operands move affinely, the
// "distance minimum" case of spec.md §4.F. Grounded on
// original_source/point/src/TemporalGeo.c's analytic nearest-approach-instant
// solve: parametrize u in [0,1] across the segment, so ‖diff(u)‖² is a
// quadratic in u, and take its vertex. The original branches on
// MOBDB_FLAGS_GET_Z throughout this file rather than dropping Z, so the Z
// term is folded into the same dot products whenever both operands carry
// one. Callers that have already run basevalue.CheckCompatible know
// aStart/bStart agree on HasZ; this still checks both sides itself rather
// than trusting that, since not every caller of this CrossingSolver (e.g.
// tengrpc's direct SynchronizeSequences path) runs that guard first.
func DistanceMinimumCrossing(aStart, aEnd, bStart, bEnd basevalue.Point, t0, t1 period.Timestamp) (period.Timestamp, bool) {
	ax0, ay0, az0 := aStart.Get3D()
	ax1, ay1, az1 := aEnd.Get3D()
	bx0, by0, bz0 := bStart.Get3D()
	bx1, by1, bz1 := bEnd.Get3D()

	px, py := ax0-bx0, ay0-by0
	dx, dy := (ax1-ax0)-(bx1-bx0), (ay1-ay0)-(by1-by0)
	dot, sq := px*dx+py*dy, dx*dx+dy*dy

	if aStart.HasZ() && bStart.HasZ() {
		pz := az0 - bz0
		dz := (az1 - az0) - (bz1 - bz0)
		dot += pz * dz
		sq += dz * dz
	}

	u, ok := normalEquationRoot(dot, sq)
	if !ok || u <= 0 || u >= 1 {
		return 0, false
	}
	return interpolateTime(t0, t1, u), true
}

// LinearEqualityCrossing solves A(t) = B(t) for two affinely-interpolated
// scalar segments, the "value equality of linear scalars" case of
// spec.md §4.F.
func LinearEqualityCrossing(aStart, aEnd, bStart, bEnd float64, t0, t1 period.Timestamp) (period.Timestamp, bool) {
	u, ok := normalEquationRoot(aStart-bStart, (aEnd-aStart)-(bEnd-bStart))
	if !ok || u <= 0 || u >= 1 {
		return 0, false
	}
	return interpolateTime(t0, t1, u), true
}

func interpolateTime(t0, t1 period.Timestamp, u float64) period.Timestamp {
	return t0 + period.Timestamp(u*float64(t1-t0))
}
