package tparse

import (
	"fmt"
	"strings"

	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/geomtraj"
	"github.com/kestrel-spatial/tempo/internal/temporal"
	"github.com/kestrel-spatial/tempo/internal/terr"
)

// Parsed is a tagged union over the four variants Parse can produce: exactly
// one of Instant/InstantSet/Sequence/SequenceSet is non-nil, selected by
// Kind. Go has no sum type, so the parser returns this rather than an
// interface{} the caller has to type-switch blindly.
type Parsed[V any] struct {
	Kind         temporal.Kind
	Instant      *temporal.Instant[V]
	InstantSet   *temporal.InstantSet[V]
	Sequence     *temporal.Sequence[V]
	SequenceSet  *temporal.SequenceSet[V]
}

// BaseReader parses one Base token (spec.md §4.D grammar) starting at the
// scanner's current position, stopping before the "@" separator.
type BaseReader[V any] func(sc *scanner) (V, error)

// Parse consumes the full Temporal grammar of spec.md §4.D/§6.1 and
// produces the matching variant. ops and buildTrajectory configure the
// value-type-specific behaviour (buildTrajectory is nil for non-point
// types). Use ParsePoint instead when V is basevalue.Point, so the leading
// SRID prefix can be threaded into the per-point SRID check.
func Parse[V any](input string, readBase BaseReader[V], ops temporal.Ops[V], buildTrajectory func([]temporal.Instant[V]) geomtraj.Geom) (Parsed[V], error) {
	sc := newScanner(strings.TrimSpace(input))
	if _, err := ParseSRIDPrefix(sc); err != nil {
		return Parsed[V]{}, err
	}
	return parseBody(sc, readBase, ops, buildTrajectory)
}

// ParsePoint parses a temporal point literal, making the leading "SRID=...;"
// prefix (if any) available to every POINT token's own SRID check.
func ParsePoint(input string, geodetic bool, ops temporal.Ops[basevalue.Point], buildTrajectory func([]temporal.Instant[basevalue.Point]) geomtraj.Geom) (Parsed[basevalue.Point], error) {
	sc := newScanner(strings.TrimSpace(input))
	prefixSRID, err := ParseSRIDPrefix(sc)
	if err != nil {
		return Parsed[basevalue.Point]{}, err
	}
	return parseBody(sc, ReadPoint(prefixSRID, geodetic), ops, buildTrajectory)
}

func parseBody[V any](sc *scanner, readBase BaseReader[V], ops temporal.Ops[V], buildTrajectory func([]temporal.Instant[V]) geomtraj.Geom) (Parsed[V], error) {
	sc.skipSpace()
	switch sc.peek() {
	case '{':
		return parseSetOrSeqSet(sc, readBase, ops, buildTrajectory)
	case '[', '(':
		seq, err := parseSeq(sc, readBase, ops, buildTrajectory)
		if err != nil {
			return Parsed[V]{}, err
		}
		return Parsed[V]{Kind: temporal.KindSequence, Sequence: seq}, nil
	default:
		inst, err := parseInstant(sc, readBase)
		if err != nil {
			return Parsed[V]{}, err
		}
		return Parsed[V]{Kind: temporal.KindInstant, Instant: &inst}, nil
	}
}

func parseInstant[V any](sc *scanner, readBase BaseReader[V]) (temporal.Instant[V], error) {
	v, err := readBase(sc)
	if err != nil {
		return temporal.Instant[V]{}, err
	}
	if err := sc.expect('@'); err != nil {
		return temporal.Instant[V]{}, err
	}
	t, err := ParseTimestampToken(sc)
	if err != nil {
		return temporal.Instant[V]{}, err
	}
	return temporal.NewInstant(v, t), nil
}

func parseSeq[V any](sc *scanner, readBase BaseReader[V], ops temporal.Ops[V], buildTrajectory func([]temporal.Instant[V]) geomtraj.Geom) (*temporal.Sequence[V], error) {
	lowerInc := sc.peek() == '['
	if err := sc.expect(openBracket(lowerInc)); err != nil {
		return nil, err
	}
	var instants []temporal.Instant[V]
	for {
		inst, err := parseInstant(sc, readBase)
		if err != nil {
			return nil, err
		}
		instants = append(instants, inst)
		sc.skipSpace()
		if sc.peek() == ',' {
			sc.pos++
			continue
		}
		break
	}
	sc.skipSpace()
	upperInc := sc.peek() == ']'
	if sc.peek() != ']' && sc.peek() != ')' {
		return nil, fmt.Errorf("sequence: expected ']' or ')' at position %d: %w", sc.pos, terr.ErrInvalidInput)
	}
	sc.pos++
	return temporal.NewSequence(instants, lowerInc, upperInc, ops, buildTrajectory)
}

func parseSetOrSeqSet[V any](sc *scanner, readBase BaseReader[V], ops temporal.Ops[V], buildTrajectory func([]temporal.Instant[V]) geomtraj.Geom) (Parsed[V], error) {
	if err := sc.expect('{'); err != nil {
		return Parsed[V]{}, err
	}
	sc.skipSpace()
	if sc.peek() == '[' || sc.peek() == '(' {
		var seqs []*temporal.Sequence[V]
		for {
			// Rewind the consumed '{' isn't needed: parseSeq expects to see
			// the opening bracket directly.
			seq, err := parseSeq(sc, readBase, ops, buildTrajectory)
			if err != nil {
				return Parsed[V]{}, err
			}
			seqs = append(seqs, seq)
			sc.skipSpace()
			if sc.peek() == ',' {
				sc.pos++
				sc.skipSpace()
				continue
			}
			break
		}
		if err := sc.expect('}'); err != nil {
			return Parsed[V]{}, err
		}
		ss, err := temporal.NewSequenceSet(seqs, ops, buildTrajectory)
		if err != nil {
			return Parsed[V]{}, err
		}
		return Parsed[V]{Kind: temporal.KindSequenceSet, SequenceSet: ss}, nil
	}

	var instants []temporal.Instant[V]
	for {
		inst, err := parseInstant(sc, readBase)
		if err != nil {
			return Parsed[V]{}, err
		}
		instants = append(instants, inst)
		sc.skipSpace()
		if sc.peek() == ',' {
			sc.pos++
			continue
		}
		break
	}
	if err := sc.expect('}'); err != nil {
		return Parsed[V]{}, err
	}
	is, err := temporal.NewInstantSet(instants, ops)
	if err != nil {
		return Parsed[V]{}, err
	}
	return Parsed[V]{Kind: temporal.KindInstantSet, InstantSet: is}, nil
}

func openBracket(lowerInc bool) byte {
	if lowerInc {
		return '['
	}
	return '('
}
