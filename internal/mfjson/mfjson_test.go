package mfjson

import (
	"testing"

	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/temporal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInstant(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"type":"MovingPoint",
		"coordinates":[1.0,2.0],
		"datetimes":"2001-01-01T00:00:00"
	}`)
	d, err := Decode(data, nil)
	require.NoError(t, err)
	require.Equal(t, temporal.KindInstant, d.Kind)
	x, y := d.Instant.Value.Get2D()
	assert.Equal(t, 1.0, x)
	assert.Equal(t, 2.0, y)
}

func TestDecodeInstantSet(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"type":"MovingPoint",
		"interpolations":["Discrete"],
		"coordinates":[[0,0],[1,1]],
		"datetimes":["2001-01-01T00:00:00","2001-01-02T00:00:00"]
	}`)
	d, err := Decode(data, nil)
	require.NoError(t, err)
	require.Equal(t, temporal.KindInstantSet, d.Kind)
	assert.Equal(t, 2, d.InstantSet.NumInstants())
}

func TestDecodeSequence(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"type":"MovingPoint",
		"interpolations":["Linear"],
		"coordinates":[[0,0],[4,4]],
		"datetimes":["2001-01-01T00:00:00","2001-01-05T00:00:00"],
		"lower_inc":true,
		"upper_inc":false
	}`)
	d, err := Decode(data, nil)
	require.NoError(t, err)
	require.Equal(t, temporal.KindSequence, d.Kind)
	assert.True(t, d.Sequence.LowerInc())
	assert.False(t, d.Sequence.UpperInc())
}

func TestDecodeSequenceSet(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"type":"MovingPoint",
		"interpolations":["Linear"],
		"sequences":[
			{"coordinates":[[0,0],[1,1]],"datetimes":["2001-01-01T00:00:00","2001-01-02T00:00:00"],"lower_inc":true,"upper_inc":true},
			{"coordinates":[[5,5],[6,6]],"datetimes":["2001-01-03T00:00:00","2001-01-04T00:00:00"],"lower_inc":true,"upper_inc":true}
		]
	}`)
	d, err := Decode(data, nil)
	require.NoError(t, err)
	require.Equal(t, temporal.KindSequenceSet, d.Kind)
	assert.Equal(t, 2, d.SequenceSet.NumSequences())
}

func TestDecodeWithCRS(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"type":"MovingPoint",
		"coordinates":[1.0,2.0],
		"datetimes":"2001-01-01T00:00:00",
		"crs":{"type":"name","properties":{"name":"urn:ogc:def:crs:EPSG::4326"}}
	}`)
	resolver := func(name string) (basevalue.SRID, error) {
		assert.Equal(t, "urn:ogc:def:crs:EPSG::4326", name)
		return 4326, nil
	}
	d, err := Decode(data, resolver)
	require.NoError(t, err)
	assert.EqualValues(t, 4326, d.Instant.Value.SRID())
}

func TestDecodeRejectsWrongType(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`{"type":"Point"}`), nil)
	require.Error(t, err)
}
