package wkb

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/period"
	"github.com/kestrel-spatial/tempo/internal/terr"
)

// reader is a forward-only byte cursor over a WKB payload, mirroring the
// teacher's packet parser's offset-tracking style (parser.go) but with
// explicit bounds checks at every read instead of a single upfront size
// check, since WKB payloads are variable-length.
type reader struct {
	data  []byte
	pos   int
	order binary.ByteOrder
}

func newReader(data []byte) *reader {
	return &reader{data: data, order: binary.LittleEndian}
}

func (r *reader) readEndianness() error {
	b, err := r.readByte()
	if err != nil {
		return fmt.Errorf("wkb: missing endianness byte: %w", err)
	}
	e := Endianness(b)
	if e != BigEndian && e != LittleEndian {
		return fmt.Errorf("wkb: unknown endianness byte %d: %w", b, terr.ErrInvalidInput)
	}
	r.order = e.order()
	return nil
}

func (r *reader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("wkb: truncated payload at byte %d: %w", r.pos, terr.ErrInvalidInput)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) readN(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("wkb: truncated payload at byte %d (need %d more): %w", r.pos, n, terr.ErrInvalidInput)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) readUint32() (uint32, error) {
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

func (r *reader) readInt64() (int64, error) {
	b, err := r.readN(8)
	if err != nil {
		return 0, err
	}
	return int64(r.order.Uint64(b)), nil
}

func (r *reader) readFloat64() (float64, error) {
	b, err := r.readN(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(r.order.Uint64(b)), nil
}

// finish reports an error if the payload carries trailing bytes beyond what
// was consumed — a WKB payload has no length prefix of its own, so
// trailing garbage is only detectable once every declared element has been
// read.
func (r *reader) finish() error {
	if r.pos != len(r.data) {
		return fmt.Errorf("wkb: %d trailing bytes after payload: %w", len(r.data)-r.pos, terr.ErrInvalidInput)
	}
	return nil
}

func readOptionalSRID(r *reader, flags byte) (basevalue.SRID, error) {
	if flags&flagHasSRID == 0 {
		return 0, nil
	}
	v, err := r.readUint32()
	if err != nil {
		return 0, err
	}
	return basevalue.SRID(v), nil
}

func readOptionalBBox(r *reader, flags byte) error {
	if flags&flagHasBBox == 0 {
		return nil
	}
	for i := 0; i < 6; i++ {
		if _, err := r.readFloat64(); err != nil {
			return err
		}
	}
	if _, err := r.readInt64(); err != nil {
		return err
	}
	if _, err := r.readInt64(); err != nil {
		return err
	}
	return nil
}

func readPoint(r *reader, flags byte, srid basevalue.SRID) (period.Timestamp, basevalue.Point, error) {
	tRaw, err := r.readInt64()
	if err != nil {
		return 0, basevalue.Point{}, err
	}
	x, err := r.readFloat64()
	if err != nil {
		return 0, basevalue.Point{}, err
	}
	y, err := r.readFloat64()
	if err != nil {
		return 0, basevalue.Point{}, err
	}
	geodetic := flags&flagGeodetic != 0
	var p basevalue.Point
	if flags&flagHasZ != 0 {
		z, err := r.readFloat64()
		if err != nil {
			return 0, basevalue.Point{}, err
		}
		p = basevalue.NewPoint3D(x, y, z, srid, geodetic)
	} else {
		p = basevalue.NewPoint2D(x, y, srid, geodetic)
	}
	return period.Timestamp(tRaw), p, nil
}
