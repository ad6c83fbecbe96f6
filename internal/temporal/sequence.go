package temporal

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/geomtraj"
	"github.com/kestrel-spatial/tempo/internal/period"
	"github.com/kestrel-spatial/tempo/internal/tbox"
	"github.com/kestrel-spatial/tempo/internal/terr"
)

// Sequence is Seq([I1,...,In], lowerInc, upperInc) (spec.md §3.3): strictly
// increasing timestamps, n >= 1; for n=1 both bounds must be inclusive.
// Carries a precomputed bbox and, for point value types, a precomputed
// trajectory.
type Sequence[V any] struct {
	instants           []Instant[V]
	lowerInc, upperInc bool
	bbox               tbox.Box
	trajectory         geomtraj.Geom // zero value (KindEmpty) for non-point value types
}

// NewSequence validates spec.md §3.3's Sequence invariants, removes
// redundant internal instants (the Sequence normal form), and computes the
// bbox and trajectory. buildTrajectory is nil for non-point value types.
func NewSequence[V any](
	instants []Instant[V],
	lowerInc, upperInc bool,
	ops Ops[V],
	buildTrajectory func([]Instant[V]) geomtraj.Geom,
) (*Sequence[V], error) {
	if len(instants) == 0 {
		return nil, fmt.Errorf("sequence must contain at least one instant: %w", terr.ErrNormalForm)
	}
	cp := append([]Instant[V](nil), instants...)
	for i := 1; i < len(cp); i++ {
		if cp[i-1].Time >= cp[i].Time {
			return nil, fmt.Errorf("sequence: timestamps must be strictly increasing at index %d: %w", i, terr.ErrNormalForm)
		}
	}
	if len(cp) == 1 && !(lowerInc && upperInc) {
		return nil, fmt.Errorf("sequence: single-instant sequence must be closed on both ends: %w", terr.ErrNormalForm)
	}
	if len(cp) >= 2 && cp[0].Time == cp[len(cp)-1].Time && !(lowerInc && upperInc) {
		return nil, fmt.Errorf("sequence: empty-interior sequence is forbidden: %w", terr.ErrNormalForm)
	}

	cp = removeRedundantInstants(cp, ops)

	box := cp[0].BBox(ops)
	for _, inst := range cp[1:] {
		box.Union(inst.BBox(ops))
	}

	var traj geomtraj.Geom
	if buildTrajectory != nil {
		traj = buildTrajectory(cp)
		if traj.Kind() == geomtraj.KindEmpty {
			return nil, fmt.Errorf("sequence: trajectory must be non-empty: %w", terr.ErrNormalForm)
		}
	}

	return &Sequence[V]{instants: cp, lowerInc: lowerInc, upperInc: upperInc, bbox: box, trajectory: traj}, nil
}

// removeRedundantInstants applies spec.md §3.3's Sequence normal form: an
// internal instant I_k is redundant iff it is collinear (in the ops.Collinear
// sense) with its neighbours. Endpoints are never removed.
func removeRedundantInstants[V any](instants []Instant[V], ops Ops[V]) []Instant[V] {
	if len(instants) < 3 || ops.Collinear == nil {
		return instants
	}
	out := make([]Instant[V], 0, len(instants))
	out = append(out, instants[0])
	for i := 1; i < len(instants)-1; i++ {
		prev, mid, next := out[len(out)-1], instants[i], instants[i+1]
		if ops.Collinear(prev.Value, mid.Value, next.Value, prev.Time, mid.Time, next.Time) {
			continue
		}
		out = append(out, mid)
	}
	out = append(out, instants[len(instants)-1])
	return out
}

// Instants returns a copy of the composing instants.
func (s *Sequence[V]) Instants() []Instant[V] { return append([]Instant[V](nil), s.instants...) }

// NumInstants, LowerInc, UpperInc, BBox, Trajectory are plain accessors.
func (s *Sequence[V]) NumInstants() int          { return len(s.instants) }
func (s *Sequence[V]) LowerInc() bool            { return s.lowerInc }
func (s *Sequence[V]) UpperInc() bool            { return s.upperInc }
func (s *Sequence[V]) BBox() tbox.Box            { return s.bbox }
func (s *Sequence[V]) Trajectory() geomtraj.Geom { return s.trajectory }

// StartTimestamp and EndTimestamp return the sequence's time bounds.
func (s *Sequence[V]) StartTimestamp() period.Timestamp { return s.instants[0].Time }
func (s *Sequence[V]) EndTimestamp() period.Timestamp   { return s.instants[len(s.instants)-1].Time }

// Period returns the sequence's time domain as a Period.
func (s *Sequence[V]) Period() period.Period {
	p, _ := period.NewPeriod(s.StartTimestamp(), s.EndTimestamp(), s.lowerInc, s.upperInc)
	return p
}

// ValueAt returns the value at t, interpolating for continuous types when t
// falls strictly inside a segment (spec.md §4.C). Returns false if t is
// outside the sequence's time domain (honouring inclusivity).
func (s *Sequence[V]) ValueAt(t period.Timestamp, ops Ops[V]) (V, bool) {
	var zero V
	if !s.Period().Contains(t) {
		return zero, false
	}
	// Binary search for the segment containing t.
	lo, hi := 0, len(s.instants)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s.instants[mid].Time <= t {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	if s.instants[lo].Time == t {
		return s.instants[lo].Value, true
	}
	if lo == len(s.instants)-1 {
		return zero, false
	}
	a, b := s.instants[lo], s.instants[lo+1]
	if !ops.Continuous {
		return a.Value, true // step interpolation: hold the preceding instant's value
	}
	frac := float64(t-a.Time) / float64(b.Time-a.Time)
	return ops.Interpolate(a.Value, b.Value, frac), true
}

// Values returns the composing values in instant order (no
// deduplication; see ever/always-equals for set semantics).
func (s *Sequence[V]) Values() []V {
	out := make([]V, len(s.instants))
	for i, inst := range s.instants {
		out[i] = inst.Value
	}
	return out
}

func (s *Sequence[V]) EverEquals(v V, ops Ops[V]) bool {
	for _, inst := range s.instants {
		if ops.Eq(inst.Value, v) {
			return true
		}
	}
	return false
}

func (s *Sequence[V]) AlwaysEquals(v V, ops Ops[V]) bool {
	for _, inst := range s.instants {
		if !ops.Eq(inst.Value, v) {
			return false
		}
	}
	return true
}

func (s *Sequence[V]) MinValue(ops Ops[V]) (V, error) {
	if ops.Less == nil {
		var zero V
		return zero, fmt.Errorf("min_value on unordered value type: %w", terr.ErrUnsupported)
	}
	min := s.instants[0].Value
	for _, inst := range s.instants[1:] {
		if ops.Less(inst.Value, min) {
			min = inst.Value
		}
	}
	return min, nil
}

func (s *Sequence[V]) MaxValue(ops Ops[V]) (V, error) {
	if ops.Less == nil {
		var zero V
		return zero, fmt.Errorf("max_value on unordered value type: %w", terr.ErrUnsupported)
	}
	max := s.instants[0].Value
	for _, inst := range s.instants[1:] {
		if ops.Less(max, inst.Value) {
			max = inst.Value
		}
	}
	return max, nil
}

// Duration returns the sequence's timespan.
func (s *Sequence[V]) Duration() period.Interval {
	micros := int64(s.EndTimestamp()) - int64(s.StartTimestamp())
	return period.Interval{Microseconds: micros}
}

func (s *Sequence[V]) Hash() uint64 {
	h := fnv.New64a()
	for _, inst := range s.instants {
		fmt.Fprintf(h, "%d", inst.Hash())
	}
	fmt.Fprintf(h, "|%v|%v", s.lowerInc, s.upperInc)
	return h.Sum64()
}

func (s *Sequence[V]) Equal(o *Sequence[V], ops Ops[V]) bool {
	if !tbox.Same(s.bbox, o.bbox) {
		return false
	}
	if s.lowerInc != o.lowerInc || s.upperInc != o.upperInc || len(s.instants) != len(o.instants) {
		return false
	}
	for i := range s.instants {
		if !s.instants[i].Equal(o.instants[i], ops) {
			return false
		}
	}
	return true
}

// Shift returns a copy of s with every instant's timestamp shifted by iv.
func (s *Sequence[V]) Shift(iv period.Interval, ops Ops[V], buildTrajectory func([]Instant[V]) geomtraj.Geom) (*Sequence[V], error) {
	shifted := make([]Instant[V], len(s.instants))
	for i, inst := range s.instants {
		shifted[i] = NewInstant(inst.Value, inst.Time.Shift(iv))
	}
	return NewSequence(shifted, s.lowerInc, s.upperInc, ops, buildTrajectory)
}

func (s *Sequence[V]) String() string {
	lb, ub := "[", "]"
	if !s.lowerInc {
		lb = "("
	}
	if !s.upperInc {
		ub = ")"
	}
	parts := make([]string, len(s.instants))
	for i, inst := range s.instants {
		parts[i] = inst.String()
	}
	return lb + strings.Join(parts, ", ") + ub
}

// BuildPointTrajectory is the buildTrajectory callback for Sequence[Point]:
// a linestring through the instants, collapsed to a point if every instant
// shares the same value (spec.md §4.I).
func BuildPointTrajectory(instants []Instant[basevalue.Point]) geomtraj.Geom {
	pts := make([]basevalue.Point, len(instants))
	allSame := true
	for i, inst := range instants {
		pts[i] = inst.Value
		if i > 0 && !pts[0].Equal(pts[i]) {
			allSame = false
		}
	}
	if allSame {
		return geomtraj.NewPoint(pts[0])
	}
	return geomtraj.NewLineString(pts)
}
