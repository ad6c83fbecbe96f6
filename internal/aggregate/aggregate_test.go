package aggregate

import (
	"testing"

	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/period"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(s string) period.Timestamp {
	t, err := period.ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return t
}

func pt(x, y float64) basevalue.Point { return basevalue.NewPoint2D(x, y, 4326, false) }

func TestTransitionInstantStateKeepsDistinctTimestampsIndependent(t *testing.T) {
	t.Parallel()

	state, err := TransitionInstantState[basevalue.Double3](nil, basevalue.CentroidAccum2D(pt(0, 0)), ts("2001-01-01 00:00:00"), double3Ops)
	require.NoError(t, err)
	state, err = TransitionInstantState(state, basevalue.CentroidAccum2D(pt(10, 0)), ts("2001-01-02 00:00:00"), double3Ops)
	require.NoError(t, err)

	instants := state.Instants()
	require.Len(t, instants, 2)
	first, last := instants[0].Value, instants[1].Value
	assert.Equal(t, 0.0, first.A)
	assert.Equal(t, 1.0, first.C)
	assert.Equal(t, 10.0, last.A, "a later observation must not fold the earlier one's contribution in")
	assert.Equal(t, 1.0, last.C)
}

func TestTransitionInstantStateAccumulatesAtSameTimestamp(t *testing.T) {
	t.Parallel()

	state, err := TransitionInstantState[basevalue.Double3](nil, basevalue.CentroidAccum2D(pt(2, 0)), ts("2001-01-01 00:00:00"), double3Ops)
	require.NoError(t, err)
	state, err = TransitionInstantState(state, basevalue.CentroidAccum2D(pt(0, 4)), ts("2001-01-01 00:00:00"), double3Ops)
	require.NoError(t, err)

	require.Equal(t, 1, state.NumInstants())
	total := state.Instants()[0].Value
	assert.Equal(t, 2.0, total.A)
	assert.Equal(t, 4.0, total.B)
	assert.Equal(t, 2.0, total.C)
}

func TestCombineInstantStatesAtSameTimestamp(t *testing.T) {
	t.Parallel()

	a, err := TransitionInstantState[basevalue.Double3](nil, basevalue.CentroidAccum2D(pt(2, 0)), ts("2001-01-01 00:00:00"), double3Ops)
	require.NoError(t, err)
	b, err := TransitionInstantState[basevalue.Double3](nil, basevalue.CentroidAccum2D(pt(0, 4)), ts("2001-01-01 00:00:00"), double3Ops)
	require.NoError(t, err)

	merged, err := CombineInstantStates(a, b, double3Ops)
	require.NoError(t, err)
	require.Equal(t, 1, merged.NumInstants())
	total := merged.Instants()[0].Value
	assert.Equal(t, 2.0, total.A)
	assert.Equal(t, 4.0, total.B)
	assert.Equal(t, 2.0, total.C)
}

func TestCombineInstantStatesAtDistinctTimestamps(t *testing.T) {
	t.Parallel()

	a, err := TransitionInstantState[basevalue.Double3](nil, basevalue.CentroidAccum2D(pt(2, 0)), ts("2001-01-01 00:00:00"), double3Ops)
	require.NoError(t, err)
	b, err := TransitionInstantState[basevalue.Double3](nil, basevalue.CentroidAccum2D(pt(0, 4)), ts("2001-01-02 00:00:00"), double3Ops)
	require.NoError(t, err)

	merged, err := CombineInstantStates(a, b, double3Ops)
	require.NoError(t, err)
	require.Equal(t, 2, merged.NumInstants())

	instants := merged.Instants()
	first, second := instants[0].Value, instants[1].Value
	assert.Equal(t, 2.0, first.A, "a's own timestamp must carry only a's contribution")
	assert.Equal(t, 0.0, first.B)
	assert.Equal(t, 1.0, first.C)
	assert.Equal(t, 0.0, second.A, "b's own timestamp must carry only b's contribution")
	assert.Equal(t, 4.0, second.B)
	assert.Equal(t, 1.0, second.C)
}

func TestFinalInstantState2D(t *testing.T) {
	t.Parallel()

	state, err := TransitionInstantState[basevalue.Double3](nil, basevalue.CentroidAccum2D(pt(0, 0)), ts("2001-01-01 00:00:00"), double3Ops)
	require.NoError(t, err)
	state, err = TransitionInstantState(state, basevalue.CentroidAccum2D(pt(10, 0)), ts("2001-01-02 00:00:00"), double3Ops)
	require.NoError(t, err)

	result, err := FinalInstantState2D(state, 4326, false)
	require.NoError(t, err)

	x0, y0 := result.Instants()[0].Value.Get2D()
	assert.InDelta(t, 0.0, x0, 1e-9)
	assert.InDelta(t, 0.0, y0, 1e-9)

	x1, y1 := result.Instants()[1].Value.Get2D()
	assert.InDelta(t, 10.0, x1, 1e-9, "each instant finalizes against its own count, not a running total")
	assert.InDelta(t, 0.0, y1, 1e-9)
}

func TestCombineDynRejectsDimensionMismatch(t *testing.T) {
	t.Parallel()

	a := DynState{Dim: Dim2D}
	b := DynState{Dim: Dim3D}
	_, err := CombineDyn(a, b)
	require.Error(t, err)
}

func TestRegistryTransitionAndFinal(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	id := reg.Open(Dim2D)
	require.NoError(t, reg.Transition2D(id, basevalue.CentroidAccum2D(pt(0, 0)), ts("2001-01-01 00:00:00")))
	require.NoError(t, reg.Transition2D(id, basevalue.CentroidAccum2D(pt(4, 4)), ts("2001-01-02 00:00:00")))

	result, err := reg.Final2D(id, 4326, false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.NumInstants())

	_, err = reg.Final2D(id, 4326, false)
	require.Error(t, err, "handle should be consumed by Final2D")
}
