package temporal

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/kestrel-spatial/tempo/internal/geomtraj"
	"github.com/kestrel-spatial/tempo/internal/period"
	"github.com/kestrel-spatial/tempo/internal/tbox"
	"github.com/kestrel-spatial/tempo/internal/terr"
)

// SequenceSet is SS([Seq1,...,Seqm]) (spec.md §3.3): sequences ordered by
// time, pairwise either disjoint or touching at a single instant where at
// most one side is inclusive.
type SequenceSet[V any] struct {
	sequences []*Sequence[V]
	bbox      tbox.Box
}

// NewSequenceSet validates ordering/non-overlap, merges adjacent sequences
// that meet at an inclusive-both-sides instant with equal values there (the
// SequenceSet normal form, spec.md §3.3), and computes the union bbox.
func NewSequenceSet[V any](
	seqs []*Sequence[V],
	ops Ops[V],
	buildTrajectory func([]Instant[V]) geomtraj.Geom,
) (*SequenceSet[V], error) {
	if len(seqs) == 0 {
		return nil, fmt.Errorf("sequence set must contain at least one sequence: %w", terr.ErrNormalForm)
	}
	cp := append([]*Sequence[V](nil), seqs...)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].StartTimestamp() < cp[j].StartTimestamp() })

	merged := make([]*Sequence[V], 0, len(cp))
	merged = append(merged, cp[0])
	for _, next := range cp[1:] {
		last := merged[len(merged)-1]
		if shouldMerge(last, next, ops) {
			m, err := mergeSequences(last, next, ops, buildTrajectory)
			if err != nil {
				return nil, err
			}
			merged[len(merged)-1] = m
			continue
		}
		if err := checkNonOverlap(last, next); err != nil {
			return nil, err
		}
		merged = append(merged, next)
	}

	box := merged[0].BBox()
	for _, seq := range merged[1:] {
		box.Union(seq.BBox())
	}
	return &SequenceSet[V]{sequences: merged, bbox: box}, nil
}

// shouldMerge reports whether last and next meet at a shared, both-inclusive
// instant with equal values there — the SequenceSet normal-form merge
// condition (spec.md §3.3), also reused by §4.G's at_min/at_max
// deduplication.
func shouldMerge[V any](last, next *Sequence[V], ops Ops[V]) bool {
	if last.EndTimestamp() != next.StartTimestamp() {
		return false
	}
	if !last.upperInc || !next.lowerInc {
		return false
	}
	lastVal := last.instants[len(last.instants)-1].Value
	nextVal := next.instants[0].Value
	return ops.Eq(lastVal, nextVal)
}

// mergeSequences concatenates next onto last, dropping next's duplicate
// leading instant.
func mergeSequences[V any](last, next *Sequence[V], ops Ops[V], buildTrajectory func([]Instant[V]) geomtraj.Geom) (*Sequence[V], error) {
	combined := append(last.Instants(), next.Instants()[1:]...)
	return NewSequence(combined, last.lowerInc, next.upperInc, ops, buildTrajectory)
}

// checkNonOverlap enforces spec.md §3.3's pairwise ordering: disjoint, or
// touching at a single instant where at most one side is inclusive.
func checkNonOverlap[V any](last, next *Sequence[V]) error {
	if next.StartTimestamp() < last.EndTimestamp() {
		return fmt.Errorf("sequence set: sequences overlap: %w", terr.ErrNormalForm)
	}
	if next.StartTimestamp() == last.EndTimestamp() && last.upperInc && next.lowerInc {
		return fmt.Errorf("sequence set: sequences share an inclusive instant with unequal values: %w", terr.ErrNormalForm)
	}
	return nil
}

// Sequences returns a copy of the composing sequences.
func (s *SequenceSet[V]) Sequences() []*Sequence[V] { return append([]*Sequence[V](nil), s.sequences...) }

func (s *SequenceSet[V]) NumSequences() int { return len(s.sequences) }
func (s *SequenceSet[V]) BBox() tbox.Box    { return s.bbox }

func (s *SequenceSet[V]) StartTimestamp() period.Timestamp { return s.sequences[0].StartTimestamp() }
func (s *SequenceSet[V]) EndTimestamp() period.Timestamp {
	return s.sequences[len(s.sequences)-1].EndTimestamp()
}

// ContinuousTime reports whether every adjacent pair of sequences touches
// (spec.md §3.3's continuous_time flag).
func (s *SequenceSet[V]) ContinuousTime() bool {
	for i := 1; i < len(s.sequences); i++ {
		if s.sequences[i-1].EndTimestamp() != s.sequences[i].StartTimestamp() {
			return false
		}
	}
	return true
}

// ValueAt searches the composing sequences for one containing t.
func (s *SequenceSet[V]) ValueAt(t period.Timestamp, ops Ops[V]) (V, bool) {
	idx := sort.Search(len(s.sequences), func(i int) bool { return s.sequences[i].EndTimestamp() >= t })
	// A sequence ending exactly at t with an exclusive upper bound may be
	// followed by one starting at t, so the next sequence is tried as well.
	for i := idx; i < len(s.sequences) && i <= idx+1; i++ {
		if v, ok := s.sequences[i].ValueAt(t, ops); ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

func (s *SequenceSet[V]) EverEquals(v V, ops Ops[V]) bool {
	for _, seq := range s.sequences {
		if seq.EverEquals(v, ops) {
			return true
		}
	}
	return false
}

func (s *SequenceSet[V]) AlwaysEquals(v V, ops Ops[V]) bool {
	for _, seq := range s.sequences {
		if !seq.AlwaysEquals(v, ops) {
			return false
		}
	}
	return true
}

func (s *SequenceSet[V]) MinValue(ops Ops[V]) (V, error) {
	min, err := s.sequences[0].MinValue(ops)
	if err != nil {
		return min, err
	}
	for _, seq := range s.sequences[1:] {
		v, err := seq.MinValue(ops)
		if err != nil {
			return v, err
		}
		if ops.Less(v, min) {
			min = v
		}
	}
	return min, nil
}

func (s *SequenceSet[V]) MaxValue(ops Ops[V]) (V, error) {
	max, err := s.sequences[0].MaxValue(ops)
	if err != nil {
		return max, err
	}
	for _, seq := range s.sequences[1:] {
		v, err := seq.MaxValue(ops)
		if err != nil {
			return v, err
		}
		if ops.Less(max, v) {
			max = v
		}
	}
	return max, nil
}

func (s *SequenceSet[V]) Hash() uint64 {
	h := fnv.New64a()
	for _, seq := range s.sequences {
		fmt.Fprintf(h, "%d", seq.Hash())
	}
	return h.Sum64()
}

func (s *SequenceSet[V]) Equal(o *SequenceSet[V], ops Ops[V]) bool {
	if !tbox.Same(s.bbox, o.bbox) {
		return false
	}
	if len(s.sequences) != len(o.sequences) {
		return false
	}
	for i := range s.sequences {
		if !s.sequences[i].Equal(o.sequences[i], ops) {
			return false
		}
	}
	return true
}

func (s *SequenceSet[V]) String() string {
	parts := make([]string, len(s.sequences))
	for i, seq := range s.sequences {
		parts[i] = seq.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
