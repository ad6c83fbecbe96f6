package temporal

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/kestrel-spatial/tempo/internal/period"
	"github.com/kestrel-spatial/tempo/internal/tbox"
	"github.com/kestrel-spatial/tempo/internal/terr"
)

// InstantSet is IS([I1,...,In]): strictly increasing timestamps; no two
// adjacent instants may hold equal values and equal timestamps (spec.md
// §3.3). Since timestamps are already strict, duplicate-timestamp rejection
// is implicit in the timestamp check.
type InstantSet[V any] struct {
	instants []Instant[V]
	bbox     tbox.Box
}

// NewInstantSet sorts the instants by timestamp (input order is not
// required), rejects duplicate timestamps, and constructs an InstantSet,
// computing its bbox. A length-1 InstantSet is allowed (spec.md §3.3).
func NewInstantSet[V any](instants []Instant[V], ops Ops[V]) (*InstantSet[V], error) {
	if len(instants) == 0 {
		return nil, fmt.Errorf("instant set must contain at least one instant: %w", terr.ErrNormalForm)
	}
	cp := append([]Instant[V](nil), instants...)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Time < cp[j].Time })
	for i := 1; i < len(cp); i++ {
		if cp[i-1].Time == cp[i].Time {
			return nil, fmt.Errorf("instant set: duplicate timestamp %s at index %d: %w", cp[i].Time, i, terr.ErrNormalForm)
		}
	}
	box := cp[0].BBox(ops)
	for _, inst := range cp[1:] {
		box.Union(inst.BBox(ops))
	}
	return &InstantSet[V]{instants: cp, bbox: box}, nil
}

// Instants returns a copy of the composing instants.
func (s *InstantSet[V]) Instants() []Instant[V] { return append([]Instant[V](nil), s.instants...) }

// NumInstants returns the number of composing instants.
func (s *InstantSet[V]) NumInstants() int { return len(s.instants) }

// BBox returns the precomputed bounding box.
func (s *InstantSet[V]) BBox() tbox.Box { return s.bbox }

// StartTimestamp and EndTimestamp return the bounds of the set.
func (s *InstantSet[V]) StartTimestamp() period.Timestamp { return s.instants[0].Time }
func (s *InstantSet[V]) EndTimestamp() period.Timestamp   { return s.instants[len(s.instants)-1].Time }

// Timestamps returns every composing timestamp.
func (s *InstantSet[V]) Timestamps() []period.Timestamp {
	out := make([]period.Timestamp, len(s.instants))
	for i, inst := range s.instants {
		out[i] = inst.Time
	}
	return out
}

// ValueAt returns the value at t if t is one of the composing timestamps.
// InstantSet has no interior: between instants the value is undefined.
func (s *InstantSet[V]) ValueAt(t period.Timestamp) (V, bool) {
	idx := sort.Search(len(s.instants), func(i int) bool { return s.instants[i].Time >= t })
	if idx < len(s.instants) && s.instants[idx].Time == t {
		return s.instants[idx].Value, true
	}
	var zero V
	return zero, false
}

// Values returns every composing value, without deduplication or ordering
// beyond timestamp order (use ops.Eq externally to dedup if needed).
func (s *InstantSet[V]) Values() []V {
	out := make([]V, len(s.instants))
	for i, inst := range s.instants {
		out[i] = inst.Value
	}
	return out
}

// EverEquals reports whether any instant equals v.
func (s *InstantSet[V]) EverEquals(v V, ops Ops[V]) bool {
	for _, inst := range s.instants {
		if ops.Eq(inst.Value, v) {
			return true
		}
	}
	return false
}

// AlwaysEquals reports whether every instant equals v.
func (s *InstantSet[V]) AlwaysEquals(v V, ops Ops[V]) bool {
	for _, inst := range s.instants {
		if !ops.Eq(inst.Value, v) {
			return false
		}
	}
	return true
}

// MinValue and MaxValue require an ordered value type (ops.Less != nil).
func (s *InstantSet[V]) MinValue(ops Ops[V]) (V, error) {
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

func (s *InstantSet[V]) MaxValue(ops Ops[V]) (V, error) {
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

// Hash folds every composing instant's hash together (spec.md §4.C).
func (s *InstantSet[V]) Hash() uint64 {
	h := fnv.New64a()
	for _, inst := range s.instants {
		fmt.Fprintf(h, "%d", inst.Hash())
	}
	return h.Sum64()
}

// Equal compares two InstantSets for representation-independent equality: a
// bbox mismatch short-circuits to false before comparing instants.
func (s *InstantSet[V]) Equal(o *InstantSet[V], ops Ops[V]) bool {
	if !tbox.Same(s.bbox, o.bbox) {
		return false
	}
	if len(s.instants) != len(o.instants) {
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
func (s *InstantSet[V]) Shift(iv period.Interval, ops Ops[V]) (*InstantSet[V], error) {
	shifted := make([]Instant[V], len(s.instants))
	for i, inst := range s.instants {
		shifted[i] = NewInstant(inst.Value, inst.Time.Shift(iv))
	}
	return NewInstantSet(shifted, ops)
}

func (s *InstantSet[V]) String() string {
	parts := make([]string, len(s.instants))
	for i, inst := range s.instants {
		parts[i] = inst.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
