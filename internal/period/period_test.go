package period

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTS(s string) Timestamp {
	ts, err := ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return ts
}

func TestNewPeriod(t *testing.T) {
	t.Parallel()

	t.Run("rejects lower after upper", func(t *testing.T) {
		_, err := NewPeriod(mustTS("2001-01-02 00:00:00"), mustTS("2001-01-01 00:00:00"), true, true)
		require.Error(t, err)
	})

	t.Run("rejects open instant period", func(t *testing.T) {
		ts := mustTS("2001-01-01 00:00:00")
		_, err := NewPeriod(ts, ts, true, false)
		require.Error(t, err)
	})

	t.Run("accepts closed instant period", func(t *testing.T) {
		ts := mustTS("2001-01-01 00:00:00")
		p, err := NewPeriod(ts, ts, true, true)
		require.NoError(t, err)
		assert.True(t, p.Contains(ts))
	})
}

func TestPeriodOverlapsAdjacent(t *testing.T) {
	t.Parallel()

	a, err := NewPeriod(mustTS("2001-01-01 00:00:00"), mustTS("2001-01-05 00:00:00"), true, false)
	require.NoError(t, err)
	b, err := NewPeriod(mustTS("2001-01-05 00:00:00"), mustTS("2001-01-10 00:00:00"), true, true)
	require.NoError(t, err)

	assert.False(t, a.Overlaps(b), "touching at an exclusive/inclusive boundary should not overlap")
	assert.True(t, a.Adjacent(b))

	c, err := NewPeriod(mustTS("2001-01-05 00:00:00"), mustTS("2001-01-10 00:00:00"), false, true)
	require.NoError(t, err)
	assert.False(t, a.Adjacent(c), "both sides exclusive at the shared boundary leaves a gap, not adjacency")
}

func TestNewPeriodSetRejectsOverlap(t *testing.T) {
	t.Parallel()

	a, _ := NewPeriod(mustTS("2001-01-01 00:00:00"), mustTS("2001-01-05 00:00:00"), true, true)
	b, _ := NewPeriod(mustTS("2001-01-03 00:00:00"), mustTS("2001-01-10 00:00:00"), true, true)
	_, err := NewPeriodSet([]Period{a, b})
	require.Error(t, err)
}

func TestNewTimestampSetRejectsNonIncreasing(t *testing.T) {
	t.Parallel()

	_, err := NewTimestampSet([]Timestamp{mustTS("2001-01-02 00:00:00"), mustTS("2001-01-01 00:00:00")})
	require.Error(t, err)
}

func TestFloatRangeString(t *testing.T) {
	t.Parallel()

	r, err := NewFloatRange(1.0/3.0, 2.0, true, false)
	require.NoError(t, err)
	assert.Equal(t, "[0.333333, 2)", r.String(6))
}

func TestTimestampInZoneConvertsWallClock(t *testing.T) {
	t.Parallel()

	ts := mustTS("2001-06-15 12:00:00")
	zoned, err := ts.InZone("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, 8, zoned.Hour(), "mid-June New York is EDT (UTC-4)")
	assert.True(t, ts.Time().Equal(zoned), "InZone relabels the instant, it does not shift it")
}

func TestTimestampInZoneRejectsUnknownZone(t *testing.T) {
	t.Parallel()

	_, err := mustTS("2001-01-01 00:00:00").InZone("Not/AZone")
	require.Error(t, err)
}
