// Package aggregate implements spec.md §4.H's aggregation core: transition/
// combine/final over accumulator-typed state, specialized to the centroid
// aggregate's Double3 (2D: sum_x, sum_y, count) and Double4 (3D: sum_x,
// sum_y, sum_z, count) accumulators. Grounded on
// original_source/grid_sel/point/src/GeoAggFuncs.c's transition/combine/
// final triple, structurally on the teacher's l5tracks/tracking.go
// transition-style state-update shape, and wired to github.com/google/uuid
// for state handles the same way the teacher hands out track IDs.
package aggregate

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/period"
	"github.com/kestrel-spatial/tempo/internal/tbox"
	"github.com/kestrel-spatial/tempo/internal/temporal"
	"github.com/kestrel-spatial/tempo/internal/terr"
	"github.com/kestrel-spatial/tempo/internal/tsync"
)

// Addable is satisfied by the two accumulator shapes (basevalue.Double3,
// basevalue.Double4), both of which already carry a componentwise Add.
type Addable[T any] interface {
	Add(T) T
}

// TransitionInstantState folds contribution (a single observation already
// mapped into accumulator units, e.g. basevalue.CentroidAccum2D(p)) into
// state at time t (spec.md §4.H transition). A fresh timestamp simply
// adopts contribution as its own accumulator; a timestamp already present
// in state is itself added to, so repeated observations at the same instant
// accumulate there and nowhere else. state may be nil to start a fresh
// state.
func TransitionInstantState[T Addable[T]](state *temporal.InstantSet[T], contribution T, t period.Timestamp, ops temporal.Ops[T]) (*temporal.InstantSet[T], error) {
	var existing []temporal.Instant[T]
	if state != nil {
		existing = state.Instants()
	}

	out := make([]temporal.Instant[T], 0, len(existing)+1)
	found := false
	for _, inst := range existing {
		if inst.Time == t {
			out = append(out, temporal.NewInstant(inst.Value.Add(contribution), t))
			found = true
		} else {
			out = append(out, inst)
		}
	}
	if !found {
		out = append(out, temporal.NewInstant(contribution, t))
		sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	}
	return temporal.NewInstantSet(out, ops)
}

// CombineInstantStates merges two partial instant-typed states
// (spec.md §4.H combine). At a timestamp present in only one operand the
// result is that operand's own accumulator; at a timestamp present in both
// the accumulators are added. Either operand may be nil (identity).
func CombineInstantStates[T Addable[T]](a, b *temporal.InstantSet[T], ops temporal.Ops[T]) (*temporal.InstantSet[T], error) {
	var ai, bi []temporal.Instant[T]
	if a != nil {
		ai = a.Instants()
	}
	if b != nil {
		bi = b.Instants()
	}
	if len(ai) == 0 && len(bi) == 0 {
		return nil, fmt.Errorf("combine: both states empty: %w", terr.ErrInvalidInput)
	}

	byTime := make(map[period.Timestamp]T, len(ai)+len(bi))
	for _, inst := range ai {
		byTime[inst.Time] = inst.Value
	}
	for _, inst := range bi {
		if existing, ok := byTime[inst.Time]; ok {
			byTime[inst.Time] = existing.Add(inst.Value)
		} else {
			byTime[inst.Time] = inst.Value
		}
	}

	times := make([]period.Timestamp, 0, len(byTime))
	for t := range byTime {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	out := make([]temporal.Instant[T], len(times))
	for i, t := range times {
		out[i] = temporal.NewInstant(byTime[t], t)
	}
	return temporal.NewInstantSet(out, ops)
}

// FinalInstantState2D materializes the InstantSet[Point] the centroid
// aggregate's final step produces for an instant-typed Double3 state
// (spec.md §4.H final): each instant's accumulator is divided by its own
// count, so each instant holds the centroid of the observations recorded at
// that timestamp.
func FinalInstantState2D(state *temporal.InstantSet[basevalue.Double3], srid basevalue.SRID, geodetic bool) (*temporal.InstantSet[basevalue.Point], error) {
	instants := state.Instants()
	out := make([]temporal.Instant[basevalue.Point], len(instants))
	for i, inst := range instants {
		out[i] = temporal.NewInstant(inst.Value.Finalize2D(srid, geodetic), inst.Time)
	}
	return temporal.NewInstantSet(out, temporal.PointOps)
}

// FinalInstantState3D is FinalInstantState2D's 3D counterpart.
func FinalInstantState3D(state *temporal.InstantSet[basevalue.Double4], srid basevalue.SRID, geodetic bool) (*temporal.InstantSet[basevalue.Point], error) {
	instants := state.Instants()
	out := make([]temporal.Instant[basevalue.Point], len(instants))
	for i, inst := range instants {
		out[i] = temporal.NewInstant(inst.Value.Finalize3D(srid, geodetic), inst.Time)
	}
	return temporal.NewInstantSet(out, temporal.PointOps)
}

// CombineSequenceStates merges two partial sequence-typed states through the
// synchronization kernel with addition as the pointwise operator and
// crossings=false (componentwise sums don't need interior discontinuity
// refinement) — the sequence-typed analogue of CombineInstantStates, reusing
// internal/tsync the way spec.md §4.H's "synchronize state_a and state_b"
// phrasing calls for.
func CombineSequenceStates[T Addable[T]](a, b *temporal.Sequence[T], ops temporal.Ops[T]) (*temporal.Sequence[T], bool, error) {
	add := func(va, vb T) T { return va.Add(vb) }
	return tsync.LiftSequences(a, b, ops, ops, ops, false, nil, add, nil)
}

// DimKind tags a dynamic aggregate state's accumulator dimensionality, used
// by the wire/grpc boundary (which can't carry a Go type parameter) to catch
// a 2D/3D mismatch at runtime the way CombineInstantStates' generic
// signature catches it at compile time for in-process callers.
type DimKind uint8

const (
	Dim2D DimKind = iota
	Dim3D
)

func (d DimKind) String() string {
	if d == Dim3D {
		return "3D"
	}
	return "2D"
}

// DynState is a type-erased aggregate state carried across process
// boundaries (e.g. internal/tengrpc), tagged with its accumulator
// dimensionality so CombineDyn can raise terr.ErrDimensionalityMismatch
// instead of panicking on a bad type assertion.
type DynState struct {
	Dim   DimKind
	State2D *temporal.InstantSet[basevalue.Double3]
	State3D *temporal.InstantSet[basevalue.Double4]
}

// CombineDyn is CombineInstantStates for type-erased states, enforcing
// spec.md §4.H's "fatal if the operand types disagree" rule.
func CombineDyn(a, b DynState) (DynState, error) {
	if a.Dim != b.Dim {
		return DynState{}, fmt.Errorf("aggregate combine: mixing %v and %v centroid states: %w", a.Dim, b.Dim, terr.ErrDimensionalityMismatch)
	}
	switch a.Dim {
	case Dim2D:
		merged, err := CombineInstantStates(a.State2D, b.State2D, double3Ops)
		return DynState{Dim: Dim2D, State2D: merged}, err
	case Dim3D:
		merged, err := CombineInstantStates(a.State3D, b.State3D, double4Ops)
		return DynState{Dim: Dim3D, State3D: merged}, err
	default:
		return DynState{}, fmt.Errorf("aggregate combine: unknown dimensionality: %w", terr.ErrInvalidInput)
	}
}

var double3Ops = temporal.Ops[basevalue.Double3]{
	Eq:     func(a, b basevalue.Double3) bool { return a == b },
	BBoxOf: func(_ basevalue.Double3, t period.Timestamp) tbox.Box { return tbox.MakeFromTimestamp(t) },
}

var double4Ops = temporal.Ops[basevalue.Double4]{
	Eq:     func(a, b basevalue.Double4) bool { return a == b },
	BBoxOf: func(_ basevalue.Double4, t period.Timestamp) tbox.Box { return tbox.MakeFromTimestamp(t) },
}

// Registry hands out UUID state handles for in-flight aggregations and
// serializes access per handle — spec.md §4.H's "at-most-one-concurrent-
// writer per state handle is the caller's responsibility" is honoured here
// by actually providing that mutual exclusion, rather than leaving every
// caller to reimplement it.
type Registry struct {
	mu     sync.Mutex
	states map[uuid.UUID]*DynState
}

func NewRegistry() *Registry { return &Registry{states: make(map[uuid.UUID]*DynState)} }

// Open allocates a new handle for a fresh (empty) aggregation.
func (r *Registry) Open(dim DimKind) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.states[id] = &DynState{Dim: dim}
	return id
}

// Transition2D folds a contribution into the handle's state under the
// registry's lock.
func (r *Registry) Transition2D(id uuid.UUID, contribution basevalue.Double3, t period.Timestamp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[id]
	if !ok {
		return fmt.Errorf("aggregate: unknown state handle %s: %w", id, terr.ErrInvalidInput)
	}
	updated, err := TransitionInstantState(st.State2D, contribution, t, double3Ops)
	if err != nil {
		return err
	}
	st.State2D = updated
	return nil
}

// Final2D materializes and removes the handle's state.
func (r *Registry) Final2D(id uuid.UUID, srid basevalue.SRID, geodetic bool) (*temporal.InstantSet[basevalue.Point], error) {
	r.mu.Lock()
	st, ok := r.states[id]
	if ok {
		delete(r.states, id)
	}
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("aggregate: unknown state handle %s: %w", id, terr.ErrInvalidInput)
	}
	return FinalInstantState2D(st.State2D, srid, geodetic)
}
