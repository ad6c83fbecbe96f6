// Package wkb implements the binary and hex-binary wire format for
// temporal-point values (spec.md §6.2): a 1-byte endianness marker, a flags
// byte folding the duration tag/hasZ/geodetic/hasSRID/has-bbox bits plus, for
// Sequence, the bound-inclusivity bits, an optional SRID, an instant/
// sequence count, then the composing elements.
//
// Byte-cursor writer/reader style (fixed-width fields at known offsets,
// binary.LittleEndian throughout) is grounded on the teacher's
// internal/lidar packet codec (parser.go's cursor-based field extraction,
// track_export.go's binary.LittleEndian.PutUint* writer), generalized from a
// single fixed LiDAR packet layout to this package's four self-describing
// variant layouts.
package wkb

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/period"
	"github.com/kestrel-spatial/tempo/internal/tbox"
	"github.com/kestrel-spatial/tempo/internal/temporal"
	"github.com/kestrel-spatial/tempo/internal/terr"
)

// Endianness is the wire format's first byte, naming the byte order every
// multi-byte field afterward is written in.
type Endianness byte

const (
	BigEndian    Endianness = 0
	LittleEndian Endianness = 1
)

func (e Endianness) order() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// flags byte bit layout. Bits 0-1 carry the duration tag (temporal.Kind);
// the remaining six are independent booleans.
const (
	flagHasZ     = 1 << 2
	flagGeodetic = 1 << 3
	flagHasSRID  = 1 << 4
	flagHasBBox  = 1 << 5
	flagLowerInc = 1 << 6
	flagUpperInc = 1 << 7
)

// EncodeInstant writes the WKB payload for a single temporal-point Instant.
func EncodeInstant(i temporal.Instant[basevalue.Point]) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(LittleEndian))

	flags := byte(temporal.KindInstant)
	p := i.Value
	if p.HasZ() {
		flags |= flagHasZ
	}
	if p.Geodetic() {
		flags |= flagGeodetic
	}
	if p.SRID() != 0 {
		flags |= flagHasSRID
	}
	buf.WriteByte(flags)

	if p.SRID() != 0 {
		writeUint32(&buf, uint32(p.SRID()))
	}
	writePoint(&buf, i.Time, p)
	return buf.Bytes()
}

// DecodeInstant reads a WKB payload produced by EncodeInstant.
func DecodeInstant(data []byte) (temporal.Instant[basevalue.Point], error) {
	r := newReader(data)
	if err := r.readEndianness(); err != nil {
		return temporal.Instant[basevalue.Point]{}, err
	}
	flags, err := r.readByte()
	if err != nil {
		return temporal.Instant[basevalue.Point]{}, err
	}
	if temporal.Kind(flags&0x3) != temporal.KindInstant {
		return temporal.Instant[basevalue.Point]{}, fmt.Errorf("wkb: expected Instant duration tag: %w", terr.ErrInvalidInput)
	}
	srid, err := readOptionalSRID(r, flags)
	if err != nil {
		return temporal.Instant[basevalue.Point]{}, err
	}
	t, p, err := readPoint(r, flags, srid)
	if err != nil {
		return temporal.Instant[basevalue.Point]{}, err
	}
	return temporal.NewInstant(p, t), r.finish()
}

// EncodeInstantSet writes the WKB payload for a temporal-point InstantSet.
func EncodeInstantSet(s *temporal.InstantSet[basevalue.Point]) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(LittleEndian))

	instants := s.Instants()
	flags := byte(temporal.KindInstantSet)
	srid := instants[0].Value.SRID()
	if instants[0].Value.HasZ() {
		flags |= flagHasZ
	}
	if instants[0].Value.Geodetic() {
		flags |= flagGeodetic
	}
	if srid != 0 {
		flags |= flagHasSRID
	}
	flags |= flagHasBBox
	buf.WriteByte(flags)
	if srid != 0 {
		writeUint32(&buf, uint32(srid))
	}
	writeBox(&buf, s.BBox())
	writeUint32(&buf, uint32(len(instants)))
	for _, inst := range instants {
		writePoint(&buf, inst.Time, inst.Value)
	}
	return buf.Bytes()
}

// DecodeInstantSet reads a WKB payload produced by EncodeInstantSet.
func DecodeInstantSet(data []byte, ops temporal.Ops[basevalue.Point]) (*temporal.InstantSet[basevalue.Point], error) {
	r := newReader(data)
	if err := r.readEndianness(); err != nil {
		return nil, err
	}
	flags, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if temporal.Kind(flags&0x3) != temporal.KindInstantSet {
		return nil, fmt.Errorf("wkb: expected InstantSet duration tag: %w", terr.ErrInvalidInput)
	}
	srid, err := readOptionalSRID(r, flags)
	if err != nil {
		return nil, err
	}
	if err := readOptionalBBox(r, flags); err != nil {
		return nil, err
	}
	count, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	instants := make([]temporal.Instant[basevalue.Point], count)
	for i := range instants {
		t, p, err := readPoint(r, flags, srid)
		if err != nil {
			return nil, err
		}
		instants[i] = temporal.NewInstant(p, t)
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return temporal.NewInstantSet(instants, ops)
}

// EncodeSequence writes the WKB payload for a temporal-point Sequence.
func EncodeSequence(s *temporal.Sequence[basevalue.Point]) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(LittleEndian))

	instants := s.Instants()
	flags := byte(temporal.KindSequence)
	srid := instants[0].Value.SRID()
	if instants[0].Value.HasZ() {
		flags |= flagHasZ
	}
	if instants[0].Value.Geodetic() {
		flags |= flagGeodetic
	}
	if srid != 0 {
		flags |= flagHasSRID
	}
	if s.LowerInc() {
		flags |= flagLowerInc
	}
	if s.UpperInc() {
		flags |= flagUpperInc
	}
	flags |= flagHasBBox
	buf.WriteByte(flags)
	if srid != 0 {
		writeUint32(&buf, uint32(srid))
	}
	writeBox(&buf, s.BBox())
	writeUint32(&buf, uint32(len(instants)))
	for _, inst := range instants {
		writePoint(&buf, inst.Time, inst.Value)
	}
	return buf.Bytes()
}

// DecodeSequence reads a WKB payload produced by EncodeSequence.
func DecodeSequence(data []byte, ops temporal.Ops[basevalue.Point]) (*temporal.Sequence[basevalue.Point], error) {
	r := newReader(data)
	if err := r.readEndianness(); err != nil {
		return nil, err
	}
	flags, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if temporal.Kind(flags&0x3) != temporal.KindSequence {
		return nil, fmt.Errorf("wkb: expected Sequence duration tag: %w", terr.ErrInvalidInput)
	}
	srid, err := readOptionalSRID(r, flags)
	if err != nil {
		return nil, err
	}
	if err := readOptionalBBox(r, flags); err != nil {
		return nil, err
	}
	count, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	instants := make([]temporal.Instant[basevalue.Point], count)
	for i := range instants {
		t, p, err := readPoint(r, flags, srid)
		if err != nil {
			return nil, err
		}
		instants[i] = temporal.NewInstant(p, t)
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return temporal.NewSequence(instants, flags&flagLowerInc != 0, flags&flagUpperInc != 0, ops, temporal.BuildPointTrajectory)
}

// EncodeSequenceSet writes the WKB payload for a temporal-point
// SequenceSet. Each composing sequence carries its own lowerInc/upperInc
// pair, so those bits move from the top-level flags byte into a one-byte
// header preceding each sequence's instant count.
func EncodeSequenceSet(ss *temporal.SequenceSet[basevalue.Point]) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(LittleEndian))

	seqs := ss.Sequences()
	first := seqs[0].Instants()[0].Value
	flags := byte(temporal.KindSequenceSet)
	srid := first.SRID()
	if first.HasZ() {
		flags |= flagHasZ
	}
	if first.Geodetic() {
		flags |= flagGeodetic
	}
	if srid != 0 {
		flags |= flagHasSRID
	}
	flags |= flagHasBBox
	buf.WriteByte(flags)
	if srid != 0 {
		writeUint32(&buf, uint32(srid))
	}
	writeBox(&buf, ss.BBox())
	writeUint32(&buf, uint32(len(seqs)))
	for _, seq := range seqs {
		var seqFlags byte
		if seq.LowerInc() {
			seqFlags |= flagLowerInc
		}
		if seq.UpperInc() {
			seqFlags |= flagUpperInc
		}
		buf.WriteByte(seqFlags)
		instants := seq.Instants()
		writeUint32(&buf, uint32(len(instants)))
		for _, inst := range instants {
			writePoint(&buf, inst.Time, inst.Value)
		}
	}
	return buf.Bytes()
}

// DecodeSequenceSet reads a WKB payload produced by EncodeSequenceSet.
func DecodeSequenceSet(data []byte, ops temporal.Ops[basevalue.Point]) (*temporal.SequenceSet[basevalue.Point], error) {
	r := newReader(data)
	if err := r.readEndianness(); err != nil {
		return nil, err
	}
	flags, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if temporal.Kind(flags&0x3) != temporal.KindSequenceSet {
		return nil, fmt.Errorf("wkb: expected SequenceSet duration tag: %w", terr.ErrInvalidInput)
	}
	srid, err := readOptionalSRID(r, flags)
	if err != nil {
		return nil, err
	}
	if err := readOptionalBBox(r, flags); err != nil {
		return nil, err
	}
	seqCount, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	seqs := make([]*temporal.Sequence[basevalue.Point], seqCount)
	for i := range seqs {
		seqFlags, err := r.readByte()
		if err != nil {
			return nil, err
		}
		instCount, err := r.readUint32()
		if err != nil {
			return nil, err
		}
		instants := make([]temporal.Instant[basevalue.Point], instCount)
		for j := range instants {
			t, p, err := readPoint(r, flags, srid)
			if err != nil {
				return nil, err
			}
			instants[j] = temporal.NewInstant(p, t)
		}
		seq, err := temporal.NewSequence(instants, seqFlags&flagLowerInc != 0, seqFlags&flagUpperInc != 0, ops, temporal.BuildPointTrajectory)
		if err != nil {
			return nil, err
		}
		seqs[i] = seq
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return temporal.NewSequenceSet(seqs, ops, temporal.BuildPointTrajectory)
}

// AsHexWKB hex-encodes a WKB payload, matching spec.md §6.2's "same bytes,
// hex-encoded" HEX-WKB form.
func AsHexWKB(wkb []byte) string {
	return hex.EncodeToString(wkb)
}

// FromHexWKB decodes a HEX-WKB string back to raw WKB bytes.
func FromHexWKB(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("wkb: invalid hex: %w", terr.ErrInvalidInput)
	}
	return b, nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeInt64(buf *bytes.Buffer, v int64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	buf.Write(tmp[:])
}

func writeFloat64(buf *bytes.Buffer, v float64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	buf.Write(tmp[:])
}

func writePoint(buf *bytes.Buffer, t period.Timestamp, p basevalue.Point) {
	writeInt64(buf, int64(t))
	x, y := p.Get2D()
	writeFloat64(buf, x)
	writeFloat64(buf, y)
	if p.HasZ() {
		_, _, z := p.Get3D()
		writeFloat64(buf, z)
	}
}

// writeBox serialises a precomputed bounding box as a fixed-width block:
// three (min,max) float64 pairs for X/Y/Z followed by the (min,max)
// timestamp pair. The decoder consumes but does not use these bytes for
// reconstruction — the Sequence/InstantSet/SequenceSet constructors
// recompute the bbox from the decoded instants — but a WKB consumer that
// only needs the box (e.g. the octree index) can read it without decoding
// every instant.
func writeBox(buf *bytes.Buffer, b tbox.Box) {
	writeFloat64(buf, b.XMin)
	writeFloat64(buf, b.XMax)
	writeFloat64(buf, b.YMin)
	writeFloat64(buf, b.YMax)
	writeFloat64(buf, b.ZMin)
	writeFloat64(buf, b.ZMax)
	writeInt64(buf, int64(b.TMin))
	writeInt64(buf, int64(b.TMax))
}
