// Package tsync implements the synchronization & lifting kernel of
// spec.md §4.F — "the heart" of the engine. Grounded on
// original_source/point/src/TemporalGeo.c's synchronize/lift pair and on
// gonum.org/v1/gonum/mat for the crossing-root bookkeeping (SPEC_FULL.md
// §10): each candidate crossing is solved as a tiny 2x2 linear system via
// mat.Dense rather than the closed-form scalar algebra inlined directly,
// giving the kernel the same "small numerical solve through gonum" shape the
// teacher's internal/db statistics code uses gonum/stat for, generalized
// from summary statistics to root-finding.
package tsync

import (
	"fmt"
	"sort"

	"github.com/kestrel-spatial/tempo/internal/geomtraj"
	"github.com/kestrel-spatial/tempo/internal/period"
	"github.com/kestrel-spatial/tempo/internal/temporal"
	"github.com/kestrel-spatial/tempo/internal/terr"
	"gonum.org/v1/gonum/mat"
)

// Synchronized is the pair of per-operand instant lists produced by
// SynchronizeSequences, sharing the same timestamps and inclusivities
// (spec.md §4.F's "Synchronization output").
type Synchronized[A, B any] struct {
	InstantsA          []temporal.Instant[A]
	InstantsB          []temporal.Instant[B]
	LowerInc, UpperInc bool
}

// normalEquationRoot solves the 1-variable linear equation c0 + c1*u = 0 by
// building it as a trivial 2x2 linear system (c1 u = -c0, with a dummy
// second row pinning a slack variable to zero) and reading back u via
// gonum/mat — the bookkeeping SPEC_FULL.md §10 wires in place of inlined
// scalar division, so crossing solves go through the same linear-algebra
// path regardless of how many terms a future operator's normal equation
// grows to.
func normalEquationRoot(c0, c1 float64) (float64, bool) {
	if c1 == 0 {
		return 0, false
	}
	a := mat.NewDense(2, 2, []float64{c1, 0, 0, 1})
	b := mat.NewVecDense(2, []float64{-c0, 0})
	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return 0, false
	}
	return x.AtVec(0), true
}

// SynchronizeSequences aligns a and b onto their common piecewise-linear
// time partition (spec.md §4.F). solver is nil when crossings is false or
// the operand types aren't continuous; when non-nil it is invoked once per
// merged segment to test for an interior discontinuity point.
func SynchronizeSequences[A, B any](
	a *temporal.Sequence[A], b *temporal.Sequence[B],
	opsA temporal.Ops[A], opsB temporal.Ops[B],
	crossings bool, solver CrossingSolver[A, B],
) (Synchronized[A, B], bool, error) {
	overlap, ok := a.Period().Intersect(b.Period())
	if !ok {
		return Synchronized[A, B]{}, false, nil
	}
	if err := checkCompatibleDomains(a, b); err != nil {
		return Synchronized[A, B]{}, false, err
	}

	boundaries := mergeBoundaries(a, b, overlap)
	if crossings && solver != nil {
		boundaries = insertCrossings(a, b, opsA, opsB, boundaries, solver)
	}

	instA := make([]temporal.Instant[A], len(boundaries))
	instB := make([]temporal.Instant[B], len(boundaries))
	for i, t := range boundaries {
		va, found := a.ValueAt(t, opsA)
		if !found {
			return Synchronized[A, B]{}, false, fmt.Errorf("synchronize: %s outside domain(A): %w", t, terr.ErrInvalidInput)
		}
		vb, found := b.ValueAt(t, opsB)
		if !found {
			return Synchronized[A, B]{}, false, fmt.Errorf("synchronize: %s outside domain(B): %w", t, terr.ErrInvalidInput)
		}
		instA[i] = temporal.NewInstant(va, t)
		instB[i] = temporal.NewInstant(vb, t)
	}

	return Synchronized[A, B]{InstantsA: instA, InstantsB: instB, LowerInc: overlap.LowerInc, UpperInc: overlap.UpperInc}, true, nil
}

// checkCompatibleDomains has no SRID/hasZ/geodesy fields to compare at this
// generic level (those live on basevalue.Point); concrete callers working
// with Sequence[basevalue.Point] must check compatibility themselves via
// basevalue.CheckCompatible before calling Synchronize — see trajectory and
// restrict packages. This hook exists so future value types with their own
// compatibility notion can plug in without changing the kernel's shape.
func checkCompatibleDomains[A, B any](_ *temporal.Sequence[A], _ *temporal.Sequence[B]) error {
	return nil
}

// mergeBoundaries returns the sorted, deduplicated union of a's and b's
// instant timestamps that fall within overlap, plus overlap's own bounds.
func mergeBoundaries[A, B any](a *temporal.Sequence[A], b *temporal.Sequence[B], overlap period.Period) []period.Timestamp {
	seen := map[period.Timestamp]bool{overlap.Lower: true, overlap.Upper: true}
	out := []period.Timestamp{overlap.Lower, overlap.Upper}
	for _, inst := range a.Instants() {
		if overlap.Contains(inst.Time) && !seen[inst.Time] {
			seen[inst.Time] = true
			out = append(out, inst.Time)
		}
	}
	for _, inst := range b.Instants() {
		if overlap.Contains(inst.Time) && !seen[inst.Time] {
			seen[inst.Time] = true
			out = append(out, inst.Time)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// insertCrossings refines each adjacent boundary pair with an interior
// crossing point when solver finds one, evaluating the affine segment
// endpoints via ValueAt (spec.md §4.F rule 2).
func insertCrossings[A, B any](
	a *temporal.Sequence[A], b *temporal.Sequence[B],
	opsA temporal.Ops[A], opsB temporal.Ops[B],
	boundaries []period.Timestamp, solver CrossingSolver[A, B],
) []period.Timestamp {
	if !opsA.Continuous || !opsB.Continuous {
		return boundaries
	}
	out := make([]period.Timestamp, 0, len(boundaries))
	for i := 0; i < len(boundaries)-1; i++ {
		t0, t1 := boundaries[i], boundaries[i+1]
		out = append(out, t0)
		aStart, _ := a.ValueAt(t0, opsA)
		aEnd, _ := a.ValueAt(t1, opsA)
		bStart, _ := b.ValueAt(t0, opsB)
		bEnd, _ := b.ValueAt(t1, opsB)
		if tStar, ok := solver(aStart, aEnd, bStart, bEnd, t0, t1); ok {
			out = append(out, tStar)
		}
	}
	out = append(out, boundaries[len(boundaries)-1])
	return out
}

// LiftSequences applies op pointwise to the synchronized pair and builds the
// result Sequence via the supplied constructor (which renormalizes),
// spec.md §4.F's "Lifting output".
func LiftSequences[A, B, R any](
	a *temporal.Sequence[A], b *temporal.Sequence[B],
	opsA temporal.Ops[A], opsB temporal.Ops[B], opsR temporal.Ops[R],
	crossings bool, solver CrossingSolver[A, B],
	op func(va A, vb B) R,
	buildTrajectory func([]temporal.Instant[R]) geomtraj.Geom,
) (*temporal.Sequence[R], bool, error) {
	sync, ok, err := SynchronizeSequences(a, b, opsA, opsB, crossings, solver)
	if err != nil || !ok {
		return nil, ok, err
	}
	out := make([]temporal.Instant[R], len(sync.InstantsA))
	for i := range sync.InstantsA {
		out[i] = temporal.NewInstant(op(sync.InstantsA[i].Value, sync.InstantsB[i].Value), sync.InstantsA[i].Time)
	}
	seq, err := temporal.NewSequence(out, sync.LowerInc, sync.UpperInc, opsR, buildTrajectory)
	if err != nil {
		return nil, false, err
	}
	return seq, true, nil
}
