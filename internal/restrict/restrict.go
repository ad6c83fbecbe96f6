// Package restrict implements spec.md §4.G's restriction & set algebra:
// AtValue/MinusValue, AtPeriod/AtPeriodSet/MinusPeriod (with SliceToPeriod),
// AtFloatRange, and AtMin/AtMax. It has no restriction to or minus a value
// list, a range list, a timestamp or a timestamp set, and no MinusPeriodSet
// or minus-range operator. Grounded on
// original_source/point/src/TemporalS.c's restriction family and on
// internal/temporal's SequenceSet merge logic (reused here for the
// at_min/at_max adjacent-sequence dedup spec.md §4.G calls out explicitly).
package restrict

import (
	"fmt"
	"sort"

	"github.com/kestrel-spatial/tempo/internal/geomtraj"
	"github.com/kestrel-spatial/tempo/internal/period"
	"github.com/kestrel-spatial/tempo/internal/temporal"
	"github.com/kestrel-spatial/tempo/internal/terr"
)

// SliceToPeriod extracts the portion of seq falling within p, interpolating
// new boundary instants where p's bounds don't land on an existing instant
// (spec.md §4.G: "values at new boundaries are interpolated"). Returns
// ok=false if seq's domain and p don't overlap.
func SliceToPeriod[V any](seq *temporal.Sequence[V], p period.Period, ops temporal.Ops[V], buildTrajectory func([]temporal.Instant[V]) geomtraj.Geom) (*temporal.Sequence[V], bool, error) {
	overlap, ok := seq.Period().Intersect(p)
	if !ok {
		return nil, false, nil
	}
	lowerVal, found := seq.ValueAt(overlap.Lower, ops)
	if !found {
		return nil, false, nil
	}
	instants := []temporal.Instant[V]{temporal.NewInstant(lowerVal, overlap.Lower)}
	for _, inst := range seq.Instants() {
		if inst.Time > overlap.Lower && inst.Time < overlap.Upper {
			instants = append(instants, inst)
		}
	}
	if overlap.Upper != overlap.Lower {
		upperVal, found := seq.ValueAt(overlap.Upper, ops)
		if !found {
			return nil, false, nil
		}
		instants = append(instants, temporal.NewInstant(upperVal, overlap.Upper))
	}
	out, err := temporal.NewSequence(instants, overlap.LowerInc, overlap.UpperInc, ops, buildTrajectory)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// AtPeriod restricts a SequenceSet to a single Period, clipping each
// composing Sequence and dropping those with no overlap.
func AtPeriod[V any](ss *temporal.SequenceSet[V], p period.Period, ops temporal.Ops[V], buildTrajectory func([]temporal.Instant[V]) geomtraj.Geom) (*temporal.SequenceSet[V], bool, error) {
	var kept []*temporal.Sequence[V]
	for _, seq := range ss.Sequences() {
		sliced, ok, err := SliceToPeriod(seq, p, ops, buildTrajectory)
		if err != nil {
			return nil, false, err
		}
		if ok {
			kept = append(kept, sliced)
		}
	}
	if len(kept) == 0 {
		return nil, false, nil
	}
	out, err := temporal.NewSequenceSet(kept, ops, buildTrajectory)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// AtPeriodSet restricts to the union of a PeriodSet's periods.
func AtPeriodSet[V any](ss *temporal.SequenceSet[V], ps *period.PeriodSet, ops temporal.Ops[V], buildTrajectory func([]temporal.Instant[V]) geomtraj.Geom) (*temporal.SequenceSet[V], bool, error) {
	var kept []*temporal.Sequence[V]
	for _, seq := range ss.Sequences() {
		for _, p := range ps.Periods() {
			sliced, ok, err := SliceToPeriod(seq, p, ops, buildTrajectory)
			if err != nil {
				return nil, false, err
			}
			if ok {
				kept = append(kept, sliced)
			}
		}
	}
	if len(kept) == 0 {
		return nil, false, nil
	}
	out, err := temporal.NewSequenceSet(kept, ops, buildTrajectory)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// MinusPeriod returns the complement of AtPeriod: the sub-domain of ss
// outside p. It computes the complement periods of p within ss's
// [start, end] span itself and slices each composing Sequence to them with
// SliceToPeriod.
func MinusPeriod[V any](ss *temporal.SequenceSet[V], p period.Period, ops temporal.Ops[V], buildTrajectory func([]temporal.Instant[V]) geomtraj.Geom) (*temporal.SequenceSet[V], bool, error) {
	complements := complementWithin(period.Period{Lower: ss.StartTimestamp(), Upper: ss.EndTimestamp(), LowerInc: true, UpperInc: true}, p)
	if len(complements) == 0 {
		return nil, false, nil
	}
	var kept []*temporal.Sequence[V]
	for _, seq := range ss.Sequences() {
		for _, c := range complements {
			sliced, ok, err := SliceToPeriod(seq, c, ops, buildTrajectory)
			if err != nil {
				return nil, false, err
			}
			if ok {
				kept = append(kept, sliced)
			}
		}
	}
	if len(kept) == 0 {
		return nil, false, nil
	}
	out, err := temporal.NewSequenceSet(kept, ops, buildTrajectory)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// complementWithin returns the (zero, one, or two) sub-periods of domain
// not covered by p.
func complementWithin(domain, p period.Period) []period.Period {
	overlap, ok := domain.Intersect(p)
	if !ok {
		return []period.Period{domain}
	}
	var out []period.Period
	if domain.Lower.Before(overlap.Lower) || (domain.Lower.Equal(overlap.Lower) && domain.LowerInc && !overlap.LowerInc) {
		left, err := period.NewPeriod(domain.Lower, overlap.Lower, domain.LowerInc, !overlap.LowerInc)
		if err == nil {
			out = append(out, left)
		}
	}
	if overlap.Upper.Before(domain.Upper) || (overlap.Upper.Equal(domain.Upper) && domain.UpperInc && !overlap.UpperInc) {
		right, err := period.NewPeriod(overlap.Upper, domain.Upper, !overlap.UpperInc, domain.UpperInc)
		if err == nil {
			out = append(out, right)
		}
	}
	return out
}

// hit marks a sub-domain of a single Sequence where the value equals the
// restriction target.
type hit struct {
	lower, upper       period.Timestamp
	lowerInc, upperInc bool
}

// AtValue restricts a Sequence to the sub-domain where it equals target
// (spec.md §4.G). solver is nil for discrete value types; isolated crossings
// are both-inclusive, segment-long runs inherit the segment's own bounds.
func AtValue[V any](seq *temporal.Sequence[V], target V, ops temporal.Ops[V], solver LevelCrossingSolver[V], buildTrajectory func([]temporal.Instant[V]) geomtraj.Geom) (*temporal.SequenceSet[V], bool, error) {
	hits := collectValueHits(seq, target, ops, solver)
	if len(hits) == 0 {
		return nil, false, nil
	}
	var kept []*temporal.Sequence[V]
	for _, h := range hits {
		p, err := period.NewPeriod(h.lower, h.upper, h.lowerInc, h.upperInc)
		if err != nil {
			return nil, false, err
		}
		sliced, ok, err := SliceToPeriod(seq, p, ops, buildTrajectory)
		if err != nil {
			return nil, false, err
		}
		if ok {
			kept = append(kept, sliced)
		}
	}
	if len(kept) == 0 {
		return nil, false, nil
	}
	out, err := temporal.NewSequenceSet(kept, ops, buildTrajectory)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// MinusValue is the complement of AtValue within seq's own domain.
func MinusValue[V any](seq *temporal.Sequence[V], target V, ops temporal.Ops[V], solver LevelCrossingSolver[V], buildTrajectory func([]temporal.Instant[V]) geomtraj.Geom) (*temporal.SequenceSet[V], bool, error) {
	hits := collectValueHits(seq, target, ops, solver)
	if len(hits) == 0 {
		seqCopy, err := temporal.NewSequence(seq.Instants(), seq.LowerInc(), seq.UpperInc(), ops, buildTrajectory)
		if err != nil {
			return nil, false, err
		}
		out, err := temporal.NewSequenceSet([]*temporal.Sequence[V]{seqCopy}, ops, buildTrajectory)
		return out, true, err
	}
	domain := period.Period{Lower: seq.StartTimestamp(), Upper: seq.EndTimestamp(), LowerInc: seq.LowerInc(), UpperInc: seq.UpperInc()}
	var kept []*temporal.Sequence[V]
	for _, c := range complementHits(domain, hits) {
		sliced, ok, err := SliceToPeriod(seq, c, ops, buildTrajectory)
		if err != nil {
			return nil, false, err
		}
		if ok {
			kept = append(kept, sliced)
		}
	}
	if len(kept) == 0 {
		return nil, false, nil
	}
	out, err := temporal.NewSequenceSet(kept, ops, buildTrajectory)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func complementHits(domain period.Period, hits []hit) []period.Period {
	sort.Slice(hits, func(i, j int) bool { return hits[i].lower < hits[j].lower })
	var out []period.Period
	cursor := domain.Lower
	cursorInc := domain.LowerInc
	for _, h := range hits {
		if h.lower.After(cursor) || (h.lower.Equal(cursor) && cursorInc && !h.lowerInc) {
			if p, err := period.NewPeriod(cursor, h.lower, cursorInc, !h.lowerInc); err == nil {
				out = append(out, p)
			}
		}
		if h.upper.After(cursor) {
			cursor = h.upper
			cursorInc = !h.upperInc
		}
	}
	if cursor.Before(domain.Upper) || (cursor.Equal(domain.Upper) && cursorInc && domain.UpperInc) {
		if p, err := period.NewPeriod(cursor, domain.Upper, cursorInc, domain.UpperInc); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func collectValueHits[V any](seq *temporal.Sequence[V], target V, ops temporal.Ops[V], solver LevelCrossingSolver[V]) []hit {
	instants := seq.Instants()
	var hits []hit
	if ops.Continuous && solver != nil {
		for i := 0; i < len(instants)-1; i++ {
			a, b := instants[i], instants[i+1]
			if ops.Eq(a.Value, target) && ops.Eq(b.Value, target) {
				hits = append(hits, hit{a.Time, b.Time, true, true})
				continue
			}
			for _, frac := range solver(a.Value, b.Value, target) {
				t := fracToTime(a.Time, b.Time, frac)
				hits = append(hits, hit{t, t, true, true})
			}
			if ops.Eq(a.Value, target) {
				hits = append(hits, hit{a.Time, a.Time, true, true})
			}
		}
		if ops.Eq(instants[len(instants)-1].Value, target) {
			last := instants[len(instants)-1].Time
			hits = append(hits, hit{last, last, true, true})
		}
		return mergeHits(hits)
	}
	for _, inst := range instants {
		if ops.Eq(inst.Value, target) {
			hits = append(hits, hit{inst.Time, inst.Time, true, true})
		}
	}
	return mergeHits(hits)
}

func mergeHits(hits []hit) []hit {
	if len(hits) == 0 {
		return nil
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].lower < hits[j].lower })
	out := []hit{hits[0]}
	for _, h := range hits[1:] {
		last := &out[len(out)-1]
		if h.lower <= last.upper {
			if h.upper > last.upper {
				last.upper = h.upper
				last.upperInc = h.upperInc
			}
			continue
		}
		out = append(out, h)
	}
	return out
}

// AtMin restricts seq to the sub-domain where it attains its minimum value,
// deduplicating adjacent sub-sequences that touch at an exclusive bound with
// equal values (spec.md §4.G: reuses the SequenceSet merge normal form).
func AtMin[V any](seq *temporal.Sequence[V], ops temporal.Ops[V], solver LevelCrossingSolver[V], buildTrajectory func([]temporal.Instant[V]) geomtraj.Geom) (*temporal.SequenceSet[V], bool, error) {
	min, err := seq.MinValue(ops)
	if err != nil {
		return nil, false, err
	}
	return AtValue(seq, min, ops, solver, buildTrajectory)
}

// AtMax is AtMin's dual.
func AtMax[V any](seq *temporal.Sequence[V], ops temporal.Ops[V], solver LevelCrossingSolver[V], buildTrajectory func([]temporal.Instant[V]) geomtraj.Geom) (*temporal.SequenceSet[V], bool, error) {
	max, err := seq.MaxValue(ops)
	if err != nil {
		return nil, false, err
	}
	return AtValue(seq, max, ops, solver, buildTrajectory)
}

// AtFloatRange restricts a float Sequence to the sub-domain within [lo,hi],
// a linear-root problem on each endpoint producing up to two sub-segments
// per input segment (spec.md §4.G).
func AtFloatRange(seq *temporal.Sequence[float64], lo, hi float64, loInc, hiInc bool, buildTrajectory func([]temporal.Instant[float64]) geomtraj.Geom) (*temporal.SequenceSet[float64], bool, error) {
	if hi < lo {
		return nil, false, fmt.Errorf("range: hi < lo: %w", terr.ErrInvalidInput)
	}
	instants := seq.Instants()
	var hits []hit
	for i := 0; i < len(instants)-1; i++ {
		a, b := instants[i], instants[i+1]
		segLo, segHi := a.Time, b.Time
		frac0, frac1 := 0.0, 1.0
		lowVal, highVal := a.Value, b.Value
		rising := highVal >= lowVal
		if !rising {
			lowVal, highVal = highVal, lowVal
		}
		if highVal < lo || lowVal > hi {
			continue
		}
		if lowVal < lo {
			for _, f := range FloatLevelCrossing(a.Value, b.Value, lo) {
				frac0 = f
			}
		}
		if highVal > hi {
			for _, f := range FloatLevelCrossing(a.Value, b.Value, hi) {
				frac1 = f
			}
		}
		if !rising {
			frac0, frac1 = frac1, frac0
		}
		if frac0 > frac1 {
			frac0, frac1 = frac1, frac0
		}
		hits = append(hits, hit{fracToTime(segLo, segHi, frac0), fracToTime(segLo, segHi, frac1), loInc, hiInc})
	}
	merged := mergeHits(hits)
	if len(merged) == 0 {
		return nil, false, nil
	}
	var kept []*temporal.Sequence[float64]
	for _, h := range merged {
		p, err := period.NewPeriod(h.lower, h.upper, h.lowerInc, h.upperInc)
		if err != nil {
			return nil, false, err
		}
		sliced, ok, err := SliceToPeriod(seq, p, temporal.FloatOps, buildTrajectory)
		if err != nil {
			return nil, false, err
		}
		if ok {
			kept = append(kept, sliced)
		}
	}
	if len(kept) == 0 {
		return nil, false, nil
	}
	out, err := temporal.NewSequenceSet(kept, temporal.FloatOps, buildTrajectory)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}
