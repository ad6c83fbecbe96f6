package restrict

import (
	"testing"

	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/period"
	"github.com/kestrel-spatial/tempo/internal/temporal"
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

func TestAtValuePointIsolatedCrossing(t *testing.T) {
	t.Parallel()

	seq, err := temporal.NewSequence([]temporal.Instant[basevalue.Point]{
		temporal.NewInstant(pt(0, 0), ts("2001-01-01 00:00:00")),
		temporal.NewInstant(pt(4, 4), ts("2001-01-05 00:00:00")),
	}, true, true, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)

	ss, ok, err := AtValue(seq, pt(2, 2), temporal.PointOps, PointLevelCrossing, temporal.BuildPointTrajectory)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, ss.NumSequences())
	assert.Equal(t, ts("2001-01-03 00:00:00"), ss.StartTimestamp())
	assert.Equal(t, ts("2001-01-03 00:00:00"), ss.EndTimestamp())
}

func TestAtValueNoMatchIsNone(t *testing.T) {
	t.Parallel()

	seq, err := temporal.NewSequence([]temporal.Instant[basevalue.Point]{
		temporal.NewInstant(pt(0, 0), ts("2001-01-01 00:00:00")),
		temporal.NewInstant(pt(4, 4), ts("2001-01-05 00:00:00")),
	}, true, true, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)

	_, ok, err := AtValue(seq, pt(10, 10), temporal.PointOps, PointLevelCrossing, temporal.BuildPointTrajectory)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSliceToPeriodInterpolatesBoundaries(t *testing.T) {
	t.Parallel()

	seq, err := temporal.NewSequence([]temporal.Instant[float64]{
		temporal.NewInstant(0.0, ts("2001-01-01 00:00:00")),
		temporal.NewInstant(4.0, ts("2001-01-05 00:00:00")),
	}, true, true, temporal.FloatOps, nil)
	require.NoError(t, err)

	p, err := period.NewPeriod(ts("2001-01-02 00:00:00"), ts("2001-01-03 00:00:00"), true, true)
	require.NoError(t, err)

	sliced, ok, err := SliceToPeriod(seq, p, temporal.FloatOps, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, sliced.NumInstants())
	v0, _ := sliced.ValueAt(ts("2001-01-02 00:00:00"), temporal.FloatOps)
	assert.InDelta(t, 1.0, v0, 1e-9)
}

func TestAtFloatRange(t *testing.T) {
	t.Parallel()

	seq, err := temporal.NewSequence([]temporal.Instant[float64]{
		temporal.NewInstant(0.0, ts("2001-01-01 00:00:00")),
		temporal.NewInstant(10.0, ts("2001-01-11 00:00:00")),
	}, true, true, temporal.FloatOps, nil)
	require.NoError(t, err)

	ss, ok, err := AtFloatRange(seq, 2, 4, true, true, nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, ss.NumSequences())
	assert.Equal(t, ts("2001-01-03 00:00:00"), ss.StartTimestamp())
	assert.Equal(t, ts("2001-01-05 00:00:00"), ss.EndTimestamp())
}

func TestAtMinMax(t *testing.T) {
	t.Parallel()

	seq, err := temporal.NewSequence([]temporal.Instant[float64]{
		temporal.NewInstant(5.0, ts("2001-01-01 00:00:00")),
		temporal.NewInstant(1.0, ts("2001-01-02 00:00:00")),
		temporal.NewInstant(9.0, ts("2001-01-03 00:00:00")),
	}, true, true, temporal.FloatOps, nil)
	require.NoError(t, err)

	ssMin, ok, err := AtMin(seq, temporal.FloatOps, FloatLevelCrossing, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ts("2001-01-02 00:00:00"), ssMin.StartTimestamp())

	ssMax, ok, err := AtMax(seq, temporal.FloatOps, FloatLevelCrossing, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ts("2001-01-03 00:00:00"), ssMax.StartTimestamp())
}
