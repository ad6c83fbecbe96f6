package trajectory

import (
	"math"
	"testing"

	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/geomtraj"
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

func straightSeq(t *testing.T) *temporal.Sequence[basevalue.Point] {
	t.Helper()
	seq, err := temporal.NewSequence([]temporal.Instant[basevalue.Point]{
		temporal.NewInstant(pt(0, 0), ts("2001-01-01 00:00:00")),
		temporal.NewInstant(pt(3, 4), ts("2001-01-01 00:00:01")),
	}, true, true, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)
	return seq
}

func TestLengthOfStraightSegment(t *testing.T) {
	t.Parallel()

	seq := straightSeq(t)
	assert.InDelta(t, 5.0, Length(seq), 1e-9)
}

func TestCumulativeLengthMatchesLength(t *testing.T) {
	t.Parallel()

	seq := straightSeq(t)
	cum, err := CumulativeLength(seq)
	require.NoError(t, err)
	instants := cum.Instants()
	assert.Equal(t, 0.0, instants[0].Value)
	assert.InDelta(t, 5.0, instants[len(instants)-1].Value, 1e-9)
}

func TestSpeedIsDistanceOverTime(t *testing.T) {
	t.Parallel()

	seq := straightSeq(t)
	ss, err := Speed(seq)
	require.NoError(t, err)
	require.Equal(t, 1, ss.NumSequences())
	v, ok := ss.ValueAt(ts("2001-01-01 00:00:00"), temporal.FloatOps)
	require.True(t, ok)
	assert.InDelta(t, 5.0, v, 1e-9, "5 units over 1 second")
}

func TestSpeedOfOutAndBackPathIsOneSequence(t *testing.T) {
	t.Parallel()

	seq, err := temporal.NewSequence([]temporal.Instant[basevalue.Point]{
		temporal.NewInstant(pt(1, 1), ts("2001-01-01 00:00:00")),
		temporal.NewInstant(pt(2, 2), ts("2001-01-01 00:00:01")),
		temporal.NewInstant(pt(1, 1), ts("2001-01-01 00:00:02")),
	}, true, true, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)

	ss, err := Speed(seq)
	require.NoError(t, err)
	// Both legs run at √2 units/s and touch at 00:00:01, so they merge.
	require.Equal(t, 1, ss.NumSequences())
	v, ok := ss.ValueAt(ts("2001-01-01 00:00:01"), temporal.FloatOps)
	require.True(t, ok)
	assert.InDelta(t, math.Sqrt2, v, 1e-9)
}

func TestAzimuthSkipsStationarySegments(t *testing.T) {
	t.Parallel()

	seq, err := temporal.NewSequence([]temporal.Instant[basevalue.Point]{
		temporal.NewInstant(pt(0, 0), ts("2001-01-01 00:00:00")),
		temporal.NewInstant(pt(0, 0), ts("2001-01-01 00:00:01")),
		temporal.NewInstant(pt(0, 10), ts("2001-01-01 00:00:02")),
	}, true, true, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)

	ss, ok, err := Azimuth(seq)
	require.NoError(t, err)
	require.True(t, ok)
	v, found := ss.ValueAt(ts("2001-01-01 00:00:01"), temporal.FloatOps)
	require.True(t, found)
	assert.InDelta(t, 0.0, v, 1e-9, "due north")
}

func TestTimeWeightedCentroidOfUnevenSegments(t *testing.T) {
	t.Parallel()

	seq, err := temporal.NewSequence([]temporal.Instant[basevalue.Point]{
		temporal.NewInstant(pt(0, 0), ts("2001-01-01 00:00:00")),
		temporal.NewInstant(pt(10, 0), ts("2001-01-01 00:00:01")),
		temporal.NewInstant(pt(10, 0), ts("2001-01-01 00:01:01")),
	}, true, true, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)

	c, err := TimeWeightedCentroid(seq)
	require.NoError(t, err)
	x, y := c.Get2D()
	// (1s × mean x 5 + 60s × x 10) / 61s
	assert.InDelta(t, 605.0/61.0, x, 1e-9, "dominated by the long stationary leg at x=10")
	assert.InDelta(t, 0.0, y, 1e-9)
}

func TestNADFindsMinimumBetweenCrossingPaths(t *testing.T) {
	t.Parallel()

	a, err := temporal.NewSequence([]temporal.Instant[basevalue.Point]{
		temporal.NewInstant(pt(0, 0), ts("2001-01-01 00:00:00")),
		temporal.NewInstant(pt(4, 4), ts("2001-01-01 00:00:04")),
	}, true, true, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)

	b, err := temporal.NewSequence([]temporal.Instant[basevalue.Point]{
		temporal.NewInstant(pt(0, 4), ts("2001-01-01 00:00:00")),
		temporal.NewInstant(pt(4, 0), ts("2001-01-01 00:00:04")),
	}, true, true, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)

	nad, ok, err := NAD(a, b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 0.0, nad, 1e-9, "paths cross at the midpoint")
}

func TestNADRejectsIncompatibleOperands(t *testing.T) {
	t.Parallel()

	a, err := temporal.NewSequence([]temporal.Instant[basevalue.Point]{
		temporal.NewInstant(pt(0, 0), ts("2001-01-01 00:00:00")),
		temporal.NewInstant(pt(4, 4), ts("2001-01-01 00:00:04")),
	}, true, true, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)

	otherSRID := basevalue.NewPoint2D(0, 4, 3857, false)
	b, err := temporal.NewSequence([]temporal.Instant[basevalue.Point]{
		temporal.NewInstant(otherSRID, ts("2001-01-01 00:00:00")),
		temporal.NewInstant(basevalue.NewPoint2D(4, 0, 3857, false), ts("2001-01-01 00:00:04")),
	}, true, true, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)

	_, _, err = NAD(a, b)
	require.Error(t, err)
}

func TestShortestLineRejectsIncompatibleOperands(t *testing.T) {
	t.Parallel()

	a, err := temporal.NewSequence([]temporal.Instant[basevalue.Point]{
		temporal.NewInstant(pt(0, 0), ts("2001-01-01 00:00:00")),
		temporal.NewInstant(pt(0, 0), ts("2001-01-01 00:00:04")),
	}, true, true, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)

	withZ := basevalue.NewPoint3D(3, 4, 1, 4326, false)
	b, err := temporal.NewSequence([]temporal.Instant[basevalue.Point]{
		temporal.NewInstant(withZ, ts("2001-01-01 00:00:00")),
		temporal.NewInstant(basevalue.NewPoint3D(3, 4, 1, 4326, false), ts("2001-01-01 00:00:04")),
	}, true, true, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)

	_, _, _, err = ShortestLine(a, b)
	require.Error(t, err)
}

func TestShortestLineBuildsTwoPointGeometry(t *testing.T) {
	t.Parallel()

	a, err := temporal.NewSequence([]temporal.Instant[basevalue.Point]{
		temporal.NewInstant(pt(0, 0), ts("2001-01-01 00:00:00")),
		temporal.NewInstant(pt(0, 0), ts("2001-01-01 00:00:04")),
	}, true, true, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)

	b, err := temporal.NewSequence([]temporal.Instant[basevalue.Point]{
		temporal.NewInstant(pt(3, 4), ts("2001-01-01 00:00:00")),
		temporal.NewInstant(pt(3, 4), ts("2001-01-01 00:00:04")),
	}, true, true, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)

	g, dist, ok, err := ShortestLine(a, b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 5.0, dist, 1e-9)
	assert.Equal(t, geomtraj.KindLineString, g.Kind())
	require.Len(t, g.Points(), 2)
}
