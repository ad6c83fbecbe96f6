package basevalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointEqualBitForBit(t *testing.T) {
	t.Parallel()

	a := NewPoint2D(1.0, 2.0, 4326, false)
	b := NewPoint2D(1.0, 2.0, 4326, false)
	assert.True(t, a.Equal(b))

	c := NewPoint2D(1.0, 2.0000000001, 4326, false)
	assert.False(t, a.Equal(c))

	d := NewPoint3D(1.0, 2.0, 0, 4326, false)
	assert.False(t, a.Equal(d), "hasZ mismatch must not compare equal even with z=0")
}

func TestCheckCompatible(t *testing.T) {
	t.Parallel()

	planar := NewPoint2D(0, 0, 4326, false)
	geodetic := NewPoint2D(0, 0, 4326, true)
	require.Error(t, CheckCompatible(planar, geodetic))

	withZ := NewPoint3D(0, 0, 0, 4326, false)
	require.Error(t, CheckCompatible(planar, withZ))

	otherSRID := NewPoint2D(0, 0, 3857, false)
	require.Error(t, CheckCompatible(planar, otherSRID))

	unknownSRID := NewPoint2D(0, 0, 0, false)
	require.NoError(t, CheckCompatible(planar, unknownSRID))
}

func TestCentroidAccumulator(t *testing.T) {
	t.Parallel()

	pts := []Point{
		NewPoint2D(0, 0, 4326, false),
		NewPoint2D(2, 0, 4326, false),
		NewPoint2D(0, 2, 4326, false),
	}
	var acc Double3
	for _, p := range pts {
		acc = acc.Add(CentroidAccum2D(p))
	}
	centroid := acc.Finalize2D(4326, false)
	x, y := centroid.Get2D()
	assert.InDelta(t, 2.0/3.0, x, 1e-9)
	assert.InDelta(t, 2.0/3.0, y, 1e-9)
}

func TestDatumSortUnique(t *testing.T) {
	t.Parallel()

	got := DatumSortUnique([]int{3, 1, 2, 1, 3})
	assert.Equal(t, []int{1, 2, 3}, got)
}
