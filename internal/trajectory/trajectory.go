// Package trajectory implements spec.md §4.I's trajectory & geometric
// operators over point Sequences/SequenceSets: length, cumulative length,
// speed, azimuth, time-weighted centroid, restriction to a geometry
// (AtGeometry), and nearest-approach instant/distance/shortest-line. There
// is no minus-a-geometry operator. Grounded on
// original_source/point/src/TemporalGeo.c (trajectory, length, speed,
// azimuth, NAI/NAD) and on the teacher's internal/lidar/transform.go
// Cartesian conversion helpers for the planar distance math.
package trajectory

import (
	"math"

	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/geomtraj"
	"github.com/kestrel-spatial/tempo/internal/period"
	"github.com/kestrel-spatial/tempo/internal/temporal"
	"github.com/kestrel-spatial/tempo/internal/terr"
	"github.com/kestrel-spatial/tempo/internal/tsync"
	"fmt"
)

func euclidean(a, b basevalue.Point) float64 {
	if a.HasZ() {
		ax, ay, az := a.Get3D()
		bx, by, bz := b.Get3D()
		dx, dy, dz := ax-bx, ay-by, az-bz
		return math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	ax, ay := a.Get2D()
	bx, by := b.Get2D()
	dx, dy := ax-bx, ay-by
	return math.Sqrt(dx*dx + dy*dy)
}

// Length returns the Euclidean length of a Sequence's trajectory (spec.md
// §4.I). Geography length is out of scope here: the spec routes it through
// an external great-circle library the engine does not itself implement
// (see SPEC_FULL.md §1); planar Sequences use this directly, geodetic ones
// are expected to be projected first by the caller.
func Length(seq *temporal.Sequence[basevalue.Point]) float64 {
	instants := seq.Instants()
	total := 0.0
	for i := 1; i < len(instants); i++ {
		total += euclidean(instants[i-1].Value, instants[i].Value)
	}
	return total
}

// CumulativeLength returns a float Sequence on the same time partition as
// seq, where each instant holds the running length up to that time.
func CumulativeLength(seq *temporal.Sequence[basevalue.Point]) (*temporal.Sequence[float64], error) {
	instants := seq.Instants()
	out := make([]temporal.Instant[float64], len(instants))
	running := 0.0
	out[0] = temporal.NewInstant(0.0, instants[0].Time)
	for i := 1; i < len(instants); i++ {
		running += euclidean(instants[i-1].Value, instants[i].Value)
		out[i] = temporal.NewInstant(running, instants[i].Time)
	}
	return temporal.NewSequence(out, seq.LowerInc(), seq.UpperInc(), temporal.FloatOps, nil)
}

// Speed returns a piecewise-constant float SequenceSet: the value on segment
// [I_k, I_{k+1}] is length(segment)/duration in units-per-second, zero when
// the endpoints coincide (spec.md §4.I).
func Speed(seq *temporal.Sequence[basevalue.Point]) (*temporal.SequenceSet[float64], error) {
	instants := seq.Instants()
	if len(instants) < 2 {
		return nil, fmt.Errorf("speed: sequence needs at least two instants: %w", terr.ErrUnsupported)
	}
	var segs []*temporal.Sequence[float64]
	for i := 1; i < len(instants); i++ {
		a, b := instants[i-1], instants[i]
		seconds := float64(b.Time-a.Time) / 1e6
		v := 0.0
		if seconds > 0 {
			v = euclidean(a.Value, b.Value) / seconds
		}
		seg, err := temporal.NewSequence([]temporal.Instant[float64]{
			temporal.NewInstant(v, a.Time),
			temporal.NewInstant(v, b.Time),
		}, true, true, temporal.FloatOps, nil)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}
	return temporal.NewSequenceSet(segs, temporal.FloatOps, nil)
}

// azimuthRadians is the bearing from a to b measured clockwise from north,
// in [0, 2π).
func azimuthRadians(a, b basevalue.Point) float64 {
	ax, ay := a.Get2D()
	bx, by := b.Get2D()
	theta := math.Atan2(bx-ax, by-ay)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return theta
}

// Azimuth returns a piecewise-constant float SequenceSet over the
// sub-domain where motion is non-stationary (spec.md §4.I): stationary
// segments (coincident endpoints) contribute no azimuth value and are
// skipped.
func Azimuth(seq *temporal.Sequence[basevalue.Point]) (*temporal.SequenceSet[float64], bool, error) {
	instants := seq.Instants()
	var segs []*temporal.Sequence[float64]
	for i := 1; i < len(instants); i++ {
		a, b := instants[i-1], instants[i]
		if a.Value.Equal(b.Value) {
			continue
		}
		az := azimuthRadians(a.Value, b.Value)
		seg, err := temporal.NewSequence([]temporal.Instant[float64]{
			temporal.NewInstant(az, a.Time),
			temporal.NewInstant(az, b.Time),
		}, true, true, temporal.FloatOps, nil)
		if err != nil {
			return nil, false, err
		}
		segs = append(segs, seg)
	}
	if len(segs) == 0 {
		return nil, false, nil
	}
	ss, err := temporal.NewSequenceSet(segs, temporal.FloatOps, nil)
	return ss, true, err
}

// TimeWeightedCentroid computes the time-weighted average position: project
// to one scalar component per axis, average each with its segment-duration
// weight, then reassemble (spec.md §4.I).
func TimeWeightedCentroid(seq *temporal.Sequence[basevalue.Point]) (basevalue.Point, error) {
	instants := seq.Instants()
	if len(instants) < 2 {
		if len(instants) == 1 {
			return instants[0].Value, nil
		}
		return basevalue.Point{}, fmt.Errorf("time_weighted_centroid: empty sequence: %w", terr.ErrUnsupported)
	}
	hasZ := instants[0].Value.HasZ()
	var sumX, sumY, sumZ, totalW float64
	for i := 1; i < len(instants); i++ {
		a, b := instants[i-1], instants[i]
		w := float64(b.Time - a.Time)
		if w <= 0 {
			continue
		}
		var ax, ay, az, bx, by, bz float64
		if hasZ {
			ax, ay, az = a.Value.Get3D()
			bx, by, bz = b.Value.Get3D()
		} else {
			ax, ay = a.Value.Get2D()
			bx, by = b.Value.Get2D()
		}
		sumX += w * (ax + bx) / 2
		sumY += w * (ay + by) / 2
		sumZ += w * (az + bz) / 2
		totalW += w
	}
	if totalW == 0 {
		return instants[0].Value, nil
	}
	srid, geodetic := instants[0].Value.SRID(), instants[0].Value.Geodetic()
	if hasZ {
		return basevalue.NewPoint3D(sumX/totalW, sumY/totalW, sumZ/totalW, srid, geodetic), nil
	}
	return basevalue.NewPoint2D(sumX/totalW, sumY/totalW, srid, geodetic), nil
}

// GeometryPredicate abstracts the external geometry library's
// intersects/closest-point/distance primitives over geomtraj.Geom, since
// this repo implements only the minimal point/linestring vocabulary itself
// (spec.md §1 scopes the full geometry library as an external collaborator).
type GeometryPredicate interface {
	// Intersects reports whether the chord from a to b meets g.
	Intersects(a, b basevalue.Point, g geomtraj.Geom) bool
	// ChordFractions returns, in increasing order, the fractions in [0,1]
	// along the chord a->b at which it enters/exits g.
	ChordFractions(a, b basevalue.Point, g geomtraj.Geom) []float64
	// ClosestPoint returns the point of g nearest to p and the distance.
	ClosestPoint(p basevalue.Point, g geomtraj.Geom) (basevalue.Point, float64)
}

// AtGeometry restricts seq to the sub-domain where it intersects g
// (spec.md §4.I): each chord's crossing fractions become instants, mapped
// back to timestamps by linear interpolation.
func AtGeometry(seq *temporal.Sequence[basevalue.Point], g geomtraj.Geom, pred GeometryPredicate) (*temporal.SequenceSet[basevalue.Point], bool, error) {
	instants := seq.Instants()
	var segs []*temporal.Sequence[basevalue.Point]
	for i := 1; i < len(instants); i++ {
		a, b := instants[i-1], instants[i]
		fracs := pred.ChordFractions(a.Value, b.Value, g)
		if len(fracs) == 0 {
			continue
		}
		if len(fracs) == 1 {
			t := fracTime(a.Time, b.Time, fracs[0])
			v, _ := seq.ValueAt(t, temporal.PointOps)
			seg, err := temporal.NewSequence([]temporal.Instant[basevalue.Point]{temporal.NewInstant(v, t)}, true, true, temporal.PointOps, temporal.BuildPointTrajectory)
			if err != nil {
				return nil, false, err
			}
			segs = append(segs, seg)
			continue
		}
		t0 := fracTime(a.Time, b.Time, fracs[0])
		t1 := fracTime(a.Time, b.Time, fracs[len(fracs)-1])
		v0, _ := seq.ValueAt(t0, temporal.PointOps)
		v1, _ := seq.ValueAt(t1, temporal.PointOps)
		seg, err := temporal.NewSequence([]temporal.Instant[basevalue.Point]{
			temporal.NewInstant(v0, t0),
			temporal.NewInstant(v1, t1),
		}, true, true, temporal.PointOps, temporal.BuildPointTrajectory)
		if err != nil {
			return nil, false, err
		}
		segs = append(segs, seg)
	}
	if len(segs) == 0 {
		return nil, false, nil
	}
	ss, err := temporal.NewSequenceSet(segs, temporal.PointOps, temporal.BuildPointTrajectory)
	return ss, true, err
}

func fracTime(t0, t1 period.Timestamp, frac float64) period.Timestamp {
	return t0 + period.Timestamp(frac*float64(t1-t0))
}

// NAI is the nearest-approach instant of seq against a static geometry: the
// argmin over segments of closest-point-to-geometry distance, materialized
// as an Instant (spec.md §4.I).
func NAI(seq *temporal.Sequence[basevalue.Point], g geomtraj.Geom, pred GeometryPredicate) (temporal.Instant[basevalue.Point], float64, error) {
	instants := seq.Instants()
	if len(instants) == 0 {
		return temporal.Instant[basevalue.Point]{}, 0, fmt.Errorf("nai: empty sequence: %w", terr.ErrUnsupported)
	}
	bestDist := math.Inf(1)
	var bestInst temporal.Instant[basevalue.Point]
	for i := 1; i < len(instants); i++ {
		a, b := instants[i-1], instants[i]
		closest, segBest := closestOnChord(a, b, g, pred)
		if segBest < bestDist {
			bestDist = segBest
			bestInst = closest
		}
	}
	if len(instants) == 1 {
		_, d := pred.ClosestPoint(instants[0].Value, g)
		if d < bestDist {
			bestDist = d
			bestInst = instants[0]
		}
	}
	return bestInst, bestDist, nil
}

func closestOnChord(a, b temporal.Instant[basevalue.Point], g geomtraj.Geom, pred GeometryPredicate) (temporal.Instant[basevalue.Point], float64) {
	const samples = 16
	bestDist := math.Inf(1)
	var bestInst temporal.Instant[basevalue.Point]
	for i := 0; i <= samples; i++ {
		frac := float64(i) / float64(samples)
		p := temporal.PointOps.Interpolate(a.Value, b.Value, frac)
		_, d := pred.ClosestPoint(p, g)
		if d < bestDist {
			bestDist = d
			bestInst = temporal.NewInstant(p, fracTime(a.Time, b.Time, frac))
		}
	}
	return bestInst, bestDist
}

// NAD returns the nearest-approach distance between two point Sequences by
// lifting to a distance Sequence with crossings=true and taking its minimum
// (spec.md §4.I).
func NAD(a, b *temporal.Sequence[basevalue.Point]) (float64, bool, error) {
	if err := basevalue.CheckCompatible(a.Instants()[0].Value, b.Instants()[0].Value); err != nil {
		return 0, false, fmt.Errorf("nad: %w", err)
	}
	distOps := temporal.FloatOps
	dist := func(p, q basevalue.Point) float64 { return euclidean(p, q) }
	seq, ok, err := tsync.LiftSequences(a, b, temporal.PointOps, temporal.PointOps, distOps, true, tsync.DistanceMinimumCrossing, dist, nil)
	if err != nil || !ok {
		return 0, ok, err
	}
	min, err := seq.MinValue(distOps)
	return min, true, err
}

// ShortestLine retrieves both operands' positions at the NAD-minimizing
// timestamp and builds a 2-point linestring between them.
func ShortestLine(a, b *temporal.Sequence[basevalue.Point]) (geomtraj.Geom, float64, bool, error) {
	if err := basevalue.CheckCompatible(a.Instants()[0].Value, b.Instants()[0].Value); err != nil {
		return geomtraj.Geom{}, 0, false, fmt.Errorf("shortest_line: %w", err)
	}
	distOps := temporal.FloatOps
	dist := func(p, q basevalue.Point) float64 { return euclidean(p, q) }
	seq, ok, err := tsync.LiftSequences(a, b, temporal.PointOps, temporal.PointOps, distOps, true, tsync.DistanceMinimumCrossing, dist, nil)
	if err != nil || !ok {
		return geomtraj.Geom{}, 0, ok, err
	}
	instants := seq.Instants()
	best := instants[0]
	for _, inst := range instants[1:] {
		if inst.Value < best.Value {
			best = inst
		}
	}
	pa, _ := a.ValueAt(best.Time, temporal.PointOps)
	pb, _ := b.ValueAt(best.Time, temporal.PointOps)
	return geomtraj.NewLineString([]basevalue.Point{pa, pb}), best.Value, true, nil
}
