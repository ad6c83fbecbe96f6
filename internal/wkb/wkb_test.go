package wkb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/period"
	"github.com/kestrel-spatial/tempo/internal/temporal"
)

func mustTimestamp(t *testing.T, s string) period.Timestamp {
	t.Helper()
	ts, err := period.ParseTimestamp(s)
	require.NoError(t, err)
	return ts
}

func TestInstantRoundTrips(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    basevalue.Point
	}{
		{"2d planar", basevalue.NewPoint2D(1.5, -2.25, 4326, false)},
		{"3d planar", basevalue.NewPoint3D(1.5, -2.25, 9.0, 4326, false)},
		{"2d geodetic no srid", basevalue.NewPoint2D(12.3, 45.6, 0, true)},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			inst := temporal.NewInstant(tc.p, mustTimestamp(t, "2001-01-01 00:00:00"))
			got, err := DecodeInstant(EncodeInstant(inst))
			require.NoError(t, err)
			assert.True(t, got.Equal(inst, temporal.PointOps))
		})
	}
}

func TestInstantHexWKBRoundTrips(t *testing.T) {
	t.Parallel()

	inst := temporal.NewInstant(basevalue.NewPoint2D(3, 4, 4326, false), mustTimestamp(t, "2001-01-01 00:00:00"))
	hexStr := AsHexWKB(EncodeInstant(inst))

	raw, err := FromHexWKB(hexStr)
	require.NoError(t, err)
	got, err := DecodeInstant(raw)
	require.NoError(t, err)
	assert.True(t, got.Equal(inst, temporal.PointOps))
}

func TestFromHexWKBRejectsInvalidHex(t *testing.T) {
	t.Parallel()

	_, err := FromHexWKB("not hex!!")
	require.Error(t, err)
}

func TestInstantSetRoundTrips(t *testing.T) {
	t.Parallel()

	instants := []temporal.Instant[basevalue.Point]{
		temporal.NewInstant(basevalue.NewPoint2D(0, 0, 4326, false), mustTimestamp(t, "2001-01-01 00:00:00")),
		temporal.NewInstant(basevalue.NewPoint2D(1, 1, 4326, false), mustTimestamp(t, "2001-01-01 00:00:05")),
		temporal.NewInstant(basevalue.NewPoint2D(2, 0, 4326, false), mustTimestamp(t, "2001-01-01 00:00:10")),
	}
	set, err := temporal.NewInstantSet(instants, temporal.PointOps)
	require.NoError(t, err)

	got, err := DecodeInstantSet(EncodeInstantSet(set), temporal.PointOps)
	require.NoError(t, err)
	assert.True(t, got.Equal(set, temporal.PointOps))
}

func TestSequenceRoundTrips(t *testing.T) {
	t.Parallel()

	instants := []temporal.Instant[basevalue.Point]{
		temporal.NewInstant(basevalue.NewPoint2D(0, 0, 4326, false), mustTimestamp(t, "2001-01-01 00:00:00")),
		temporal.NewInstant(basevalue.NewPoint2D(4, 4, 4326, false), mustTimestamp(t, "2001-01-01 00:00:04")),
		temporal.NewInstant(basevalue.NewPoint2D(8, 0, 4326, false), mustTimestamp(t, "2001-01-01 00:00:08")),
	}
	seq, err := temporal.NewSequence(instants, true, false, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)

	got, err := DecodeSequence(EncodeSequence(seq), temporal.PointOps)
	require.NoError(t, err)
	assert.True(t, got.Equal(seq, temporal.PointOps))
	assert.Equal(t, seq.LowerInc(), got.LowerInc())
	assert.Equal(t, seq.UpperInc(), got.UpperInc())
}

func TestSequenceWithZRoundTrips(t *testing.T) {
	t.Parallel()

	instants := []temporal.Instant[basevalue.Point]{
		temporal.NewInstant(basevalue.NewPoint3D(0, 0, 1, 4326, false), mustTimestamp(t, "2001-01-01 00:00:00")),
		temporal.NewInstant(basevalue.NewPoint3D(4, 4, 2, 4326, false), mustTimestamp(t, "2001-01-01 00:00:04")),
	}
	seq, err := temporal.NewSequence(instants, true, true, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)

	got, err := DecodeSequence(EncodeSequence(seq), temporal.PointOps)
	require.NoError(t, err)
	assert.True(t, got.Equal(seq, temporal.PointOps))
}

func TestSequenceSetRoundTrips(t *testing.T) {
	t.Parallel()

	seqA, err := temporal.NewSequence([]temporal.Instant[basevalue.Point]{
		temporal.NewInstant(basevalue.NewPoint2D(0, 0, 4326, false), mustTimestamp(t, "2001-01-01 00:00:00")),
		temporal.NewInstant(basevalue.NewPoint2D(1, 1, 4326, false), mustTimestamp(t, "2001-01-01 00:00:02")),
	}, true, false, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)

	seqB, err := temporal.NewSequence([]temporal.Instant[basevalue.Point]{
		temporal.NewInstant(basevalue.NewPoint2D(5, 5, 4326, false), mustTimestamp(t, "2001-01-01 00:01:00")),
		temporal.NewInstant(basevalue.NewPoint2D(6, 6, 4326, false), mustTimestamp(t, "2001-01-01 00:01:02")),
	}, true, true, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)

	ss, err := temporal.NewSequenceSet([]*temporal.Sequence[basevalue.Point]{seqA, seqB}, temporal.PointOps, temporal.BuildPointTrajectory)
	require.NoError(t, err)

	got, err := DecodeSequenceSet(EncodeSequenceSet(ss), temporal.PointOps)
	require.NoError(t, err)
	assert.True(t, got.Equal(ss, temporal.PointOps))
	assert.Equal(t, ss.NumSequences(), got.NumSequences())
}

func TestDecodeRejectsWrongDurationTag(t *testing.T) {
	t.Parallel()

	inst := temporal.NewInstant(basevalue.NewPoint2D(0, 0, 4326, false), mustTimestamp(t, "2001-01-01 00:00:00"))
	payload := EncodeInstant(inst)

	_, err := DecodeSequence(payload, temporal.PointOps)
	require.Error(t, err)
}

func TestDecodeRejectsTruncatedPayload(t *testing.T) {
	t.Parallel()

	inst := temporal.NewInstant(basevalue.NewPoint2D(0, 0, 4326, false), mustTimestamp(t, "2001-01-01 00:00:00"))
	payload := EncodeInstant(inst)

	_, err := DecodeInstant(payload[:len(payload)-3])
	require.Error(t, err)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	t.Parallel()

	inst := temporal.NewInstant(basevalue.NewPoint2D(0, 0, 4326, false), mustTimestamp(t, "2001-01-01 00:00:00"))
	payload := append(EncodeInstant(inst), 0xFF, 0xFF)

	_, err := DecodeInstant(payload)
	require.Error(t, err)
}
