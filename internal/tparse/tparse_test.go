package tparse

import (
	"testing"

	"github.com/kestrel-spatial/tempo/internal/temporal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFloatInstant(t *testing.T) {
	t.Parallel()

	p, err := Parse("1.5@2001-01-01 00:00:00", ReadFloat, temporal.FloatOps, nil)
	require.NoError(t, err)
	require.Equal(t, temporal.KindInstant, p.Kind)
	assert.Equal(t, 1.5, p.Instant.Value)
}

func TestParseFloatInstantSet(t *testing.T) {
	t.Parallel()

	p, err := Parse("{1.5@2001-01-01 00:00:00, 2.5@2001-01-02 00:00:00}", ReadFloat, temporal.FloatOps, nil)
	require.NoError(t, err)
	require.Equal(t, temporal.KindInstantSet, p.Kind)
	assert.Equal(t, 2, p.InstantSet.NumInstants())
}

func TestParseFloatSequence(t *testing.T) {
	t.Parallel()

	p, err := Parse("[1.5@2001-01-01 00:00:00, 2.5@2001-01-02 00:00:00)", ReadFloat, temporal.FloatOps, nil)
	require.NoError(t, err)
	require.Equal(t, temporal.KindSequence, p.Kind)
	assert.Equal(t, 2, p.Sequence.NumInstants())
	assert.True(t, p.Sequence.LowerInc())
	assert.False(t, p.Sequence.UpperInc())
}

func TestParseFloatSequenceSet(t *testing.T) {
	t.Parallel()

	input := "{[1@2001-01-01 00:00:00, 2@2001-01-02 00:00:00], [5@2001-01-03 00:00:00, 6@2001-01-04 00:00:00]}"
	p, err := Parse(input, ReadFloat, temporal.FloatOps, nil)
	require.NoError(t, err)
	require.Equal(t, temporal.KindSequenceSet, p.Kind)
	assert.Equal(t, 2, p.SequenceSet.NumSequences())
}

func TestParseIntInstantRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := Parse("abc@2001-01-01 00:00:00", ReadInt, temporal.IntOps, nil)
	require.Error(t, err)
}

func TestParseTextInstantQuoted(t *testing.T) {
	t.Parallel()

	p, err := Parse(`"hello@world"@2001-01-01 00:00:00`, ReadText, temporal.TextOps, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello@world", p.Instant.Value)
}

func TestParsePointInstant(t *testing.T) {
	t.Parallel()

	p, err := ParsePoint("POINT(1 2)@2001-01-01 00:00:00", false, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)
	require.Equal(t, temporal.KindInstant, p.Kind)
	x, y := p.Instant.Value.Get2D()
	assert.Equal(t, 1.0, x)
	assert.Equal(t, 2.0, y)
}

func TestParsePointSequenceWithSRIDPrefix(t *testing.T) {
	t.Parallel()

	input := "SRID=4326;[POINT(0 0)@2001-01-01 00:00:00, POINT(4 4)@2001-01-05 00:00:00]"
	p, err := ParsePoint(input, false, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)
	require.Equal(t, temporal.KindSequence, p.Kind)
	for _, inst := range p.Sequence.Instants() {
		assert.EqualValues(t, 4326, inst.Value.SRID())
	}
}

func TestParsePointRejectsConflictingSRID(t *testing.T) {
	t.Parallel()

	input := "SRID=4326;SRID=3857;POINT(1 1)@2001-01-01 00:00:00"
	_, err := ParsePoint(input, false, temporal.PointOps, temporal.BuildPointTrajectory)
	require.Error(t, err)
}

func TestParsePointZ(t *testing.T) {
	t.Parallel()

	p, err := ParsePoint("POINT Z(1 2 3)@2001-01-01 00:00:00", false, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)
	x, y, z := p.Instant.Value.Get3D()
	assert.Equal(t, 1.0, x)
	assert.Equal(t, 2.0, y)
	assert.Equal(t, 3.0, z)
}
