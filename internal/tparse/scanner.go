// Package tparse implements the textual grammar of spec.md §6.1 / §4.D:
//
//	Temporal  := ("SRID=" int ";")? ( Instant | Set | Seq | SeqSet )
//	Set       := "{" Instant ("," Instant)* "}"
//	Seq       := ("[" | "(") Instant ("," Instant)* ("]" | ")")
//	SeqSet    := "{" Seq ("," Seq)* "}"
//	Instant   := Base "@" Timestamp
//
// grounded on original_source/point/src/Parser.c and GeoParser.c for the
// grammar shape, written as a small hand-rolled scanner over a string in the
// same "index into the source, peek/advance" idiom as the teacher's frame
// command parser (serial.go).
package tparse

import (
	"fmt"
	"strings"

	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/period"
	"github.com/kestrel-spatial/tempo/internal/terr"
)

// scanner is a minimal cursor over the input string.
type scanner struct {
	s   string
	pos int
}

func newScanner(s string) *scanner { return &scanner{s: s} }

func (sc *scanner) skipSpace() {
	for sc.pos < len(sc.s) && sc.s[sc.pos] == ' ' {
		sc.pos++
	}
}

func (sc *scanner) eof() bool { return sc.pos >= len(sc.s) }

func (sc *scanner) peek() byte {
	if sc.eof() {
		return 0
	}
	return sc.s[sc.pos]
}

func (sc *scanner) expect(b byte) error {
	sc.skipSpace()
	if sc.eof() || sc.s[sc.pos] != b {
		return fmt.Errorf("expected %q at position %d in %q: %w", b, sc.pos, sc.s, terr.ErrInvalidInput)
	}
	sc.pos++
	return nil
}

// readUntil returns the substring up to (not including) the first occurrence
// of any byte in stop, advancing the cursor past it.
func (sc *scanner) readUntil(stop string) string {
	start := sc.pos
	for sc.pos < len(sc.s) && !strings.ContainsRune(stop, rune(sc.s[sc.pos])) {
		sc.pos++
	}
	return sc.s[start:sc.pos]
}

// ParseSRIDPrefix consumes an optional "SRID=<int>;" prefix, returning the
// SRID (0 if absent) and advancing past it.
func ParseSRIDPrefix(sc *scanner) (basevalue.SRID, error) {
	sc.skipSpace()
	if !strings.HasPrefix(sc.s[sc.pos:], "SRID=") {
		return 0, nil
	}
	sc.pos += len("SRID=")
	digits := sc.readUntil(";")
	if err := sc.expect(';'); err != nil {
		return 0, err
	}
	var n int64
	if _, err := fmt.Sscanf(digits, "%d", &n); err != nil {
		return 0, fmt.Errorf("SRID: %q: %w", digits, terr.ErrInvalidInput)
	}
	return basevalue.SRID(n), nil
}

// ParseTimestampToken reads a timestamp token up to the next structural
// delimiter (',', ']', ')', '}') and parses it.
func ParseTimestampToken(sc *scanner) (period.Timestamp, error) {
	sc.skipSpace()
	raw := sc.readUntil(",])}")
	raw = strings.TrimSpace(raw)
	return period.ParseTimestamp(raw)
}
