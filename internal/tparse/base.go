package tparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/terr"
)

// ReadInt reads an integer Base token, stopping at the "@" separator.
func ReadInt(sc *scanner) (int32, error) {
	sc.skipSpace()
	raw := strings.TrimSpace(sc.readUntil("@"))
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("int base value %q: %w", raw, terr.ErrInvalidInput)
	}
	return int32(n), nil
}

// ReadFloat reads a floating-point Base token, stopping at the "@" separator.
func ReadFloat(sc *scanner) (float64, error) {
	sc.skipSpace()
	raw := strings.TrimSpace(sc.readUntil("@"))
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("float base value %q: %w", raw, terr.ErrInvalidInput)
	}
	return f, nil
}

// ReadText reads a text Base token. Text values may be double-quoted to
// allow embedded "@"; unquoted text reads up to the next "@" verbatim.
func ReadText(sc *scanner) (string, error) {
	sc.skipSpace()
	if sc.peek() == '"' {
		sc.pos++
		raw := sc.readUntil(`"`)
		if err := sc.expect('"'); err != nil {
			return "", err
		}
		return raw, nil
	}
	return strings.TrimSpace(sc.readUntil("@")), nil
}

// ReadPoint reads a WKT/EWKT point Base token: "POINT(x y)" or
// "POINT Z(x y z)", optionally prefixed with "SRID=<n>;". If prefixSRID is
// non-zero and the point carries its own SRID, they must match (spec.md
// §4.D); otherwise the point inherits prefixSRID.
func ReadPoint(prefixSRID basevalue.SRID, geodetic bool) BaseReader[basevalue.Point] {
	return func(sc *scanner) (basevalue.Point, error) {
		sc.skipSpace()
		ownSRID, err := ParseSRIDPrefix(sc)
		if err != nil {
			return basevalue.Point{}, err
		}
		sc.skipSpace()
		if !strings.HasPrefix(sc.s[sc.pos:], "POINT") {
			return basevalue.Point{}, fmt.Errorf("expected POINT at position %d: %w", sc.pos, terr.ErrInvalidGeometry)
		}
		sc.pos += len("POINT")
		sc.skipSpace()
		hasZ := false
		if sc.peek() == 'Z' || sc.peek() == 'z' {
			hasZ = true
			sc.pos++
			sc.skipSpace()
		}
		if err := sc.expect('('); err != nil {
			return basevalue.Point{}, err
		}
		raw := strings.TrimSpace(sc.readUntil(")"))
		if err := sc.expect(')'); err != nil {
			return basevalue.Point{}, err
		}
		fields := strings.Fields(raw)
		want := 2
		if hasZ {
			want = 3
		}
		if len(fields) != want {
			return basevalue.Point{}, fmt.Errorf("POINT expects %d coordinates, got %q: %w", want, raw, terr.ErrInvalidGeometry)
		}
		coords := make([]float64, want)
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return basevalue.Point{}, fmt.Errorf("POINT coordinate %q: %w", f, terr.ErrInvalidGeometry)
			}
			coords[i] = v
		}

		srid := prefixSRID
		if ownSRID != 0 {
			if prefixSRID != 0 && ownSRID != prefixSRID {
				return basevalue.Point{}, fmt.Errorf("point SRID %d conflicts with prefix SRID %d: %w", ownSRID, prefixSRID, terr.ErrSRIDMismatch)
			}
			srid = ownSRID
		}

		if hasZ {
			return basevalue.NewPoint3D(coords[0], coords[1], coords[2], srid, geodetic), nil
		}
		return basevalue.NewPoint2D(coords[0], coords[1], srid, geodetic), nil
	}
}
