package temporal

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

func TestSequenceRejectsNonIncreasingTimestamps(t *testing.T) {
	t.Parallel()

	instants := []Instant[basevalue.Point]{
		NewInstant(pt(0, 0), ts("2001-01-02 00:00:00")),
		NewInstant(pt(1, 1), ts("2001-01-01 00:00:00")),
	}
	_, err := NewSequence(instants, true, true, PointOps, BuildPointTrajectory)
	require.Error(t, err)
}

func TestSequenceRejectsEmptyInterior(t *testing.T) {
	t.Parallel()

	same := ts("2001-01-01 00:00:00")
	instants := []Instant[basevalue.Point]{
		NewInstant(pt(0, 0), same),
		NewInstant(pt(1, 1), same),
	}
	_, err := NewSequence(instants, true, false, PointOps, BuildPointTrajectory)
	require.Error(t, err)
}

func TestSequenceRemovesCollinearInstant(t *testing.T) {
	t.Parallel()

	instants := []Instant[basevalue.Point]{
		NewInstant(pt(0, 0), ts("2001-01-01 00:00:00")),
		NewInstant(pt(2, 2), ts("2001-01-03 00:00:00")), // collinear midpoint, should be dropped
		NewInstant(pt(4, 4), ts("2001-01-05 00:00:00")),
	}
	seq, err := NewSequence(instants, true, true, PointOps, BuildPointTrajectory)
	require.NoError(t, err)
	assert.Equal(t, 2, seq.NumInstants())
}

func TestSequenceValueAtInterpolates(t *testing.T) {
	t.Parallel()

	instants := []Instant[basevalue.Point]{
		NewInstant(pt(0, 0), ts("2001-01-01 00:00:00")),
		NewInstant(pt(4, 4), ts("2001-01-05 00:00:00")),
	}
	seq, err := NewSequence(instants, true, true, PointOps, BuildPointTrajectory)
	require.NoError(t, err)

	v, ok := seq.ValueAt(ts("2001-01-03 00:00:00"), PointOps)
	require.True(t, ok)
	x, y := v.Get2D()
	assert.InDelta(t, 2.0, x, 1e-9)
	assert.InDelta(t, 2.0, y, 1e-9)

	_, ok = seq.ValueAt(ts("2001-01-10 00:00:00"), PointOps)
	assert.False(t, ok)
}

func TestSequenceSetMergesAdjacentEqualBoundary(t *testing.T) {
	t.Parallel()

	mid := ts("2001-01-03 00:00:00")
	s1, err := NewSequence([]Instant[float64]{
		NewInstant(1.0, ts("2001-01-01 00:00:00")),
		NewInstant(5.0, mid),
	}, true, true, FloatOps, nil)
	require.NoError(t, err)
	s2, err := NewSequence([]Instant[float64]{
		NewInstant(5.0, mid),
		NewInstant(9.0, ts("2001-01-05 00:00:00")),
	}, true, true, FloatOps, nil)
	require.NoError(t, err)

	ss, err := NewSequenceSet([]*Sequence[float64]{s1, s2}, FloatOps, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, ss.NumSequences(), "adjacent sequences sharing an inclusive equal-valued boundary must merge")
}

func TestSequenceSetRejectsOverlap(t *testing.T) {
	t.Parallel()

	s1, _ := NewSequence([]Instant[float64]{
		NewInstant(1.0, ts("2001-01-01 00:00:00")),
		NewInstant(2.0, ts("2001-01-05 00:00:00")),
	}, true, true, FloatOps, nil)
	s2, _ := NewSequence([]Instant[float64]{
		NewInstant(3.0, ts("2001-01-03 00:00:00")),
		NewInstant(4.0, ts("2001-01-07 00:00:00")),
	}, true, true, FloatOps, nil)

	_, err := NewSequenceSet([]*Sequence[float64]{s1, s2}, FloatOps, nil)
	require.Error(t, err)
}

func TestInstantSetRejectsDuplicateTimestamp(t *testing.T) {
	t.Parallel()

	same := ts("2001-01-01 00:00:00")
	_, err := NewInstantSet([]Instant[float64]{
		NewInstant(1.0, same),
		NewInstant(2.0, same),
	}, FloatOps)
	require.Error(t, err)
}

func TestBBoxSoundness(t *testing.T) {
	t.Parallel()

	instants := []Instant[basevalue.Point]{
		NewInstant(pt(0, 0), ts("2001-01-01 00:00:00")),
		NewInstant(pt(4, -4), ts("2001-01-05 00:00:00")),
	}
	seq, err := NewSequence(instants, true, true, PointOps, BuildPointTrajectory)
	require.NoError(t, err)

	box := seq.BBox()
	for _, inst := range seq.Instants() {
		x, y := inst.Value.Get2D()
		assert.GreaterOrEqual(t, x, box.XMin)
		assert.LessOrEqual(t, x, box.XMax)
		assert.GreaterOrEqual(t, y, box.YMin)
		assert.LessOrEqual(t, y, box.YMax)
	}
}

func TestSingleInstantSequenceMustBeInclusive(t *testing.T) {
	t.Parallel()

	_, err := NewSequence([]Instant[float64]{NewInstant(1.0, ts("2001-01-01 00:00:00"))}, true, false, FloatOps, nil)
	require.Error(t, err)

	seq, err := NewSequence([]Instant[float64]{NewInstant(1.0, ts("2001-01-01 00:00:00"))}, true, true, FloatOps, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, seq.NumInstants())
}
