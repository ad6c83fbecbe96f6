// Package mfjson implements the MF-JSON reader of spec.md §4.E/§6.3: a
// moving-point document of the shape
//
//	{"type":"MovingPoint","interpolations":[...],"coordinates":...,
//	 "datetimes":...,"lower_inc":...,"upper_inc":...,"sequences":[...],"crs":...}
//
// is decoded into the matching temporal.Instant/InstantSet/Sequence/
// SequenceSet[basevalue.Point] variant. Grounded on the teacher's
// encoding/json usage in internal/config/tuning.go: decode into an
// intermediate struct first, validate, then build the domain type — the
// spec explicitly treats the JSON tokenizer itself as an external
// collaborator, so stdlib encoding/json plays that host role here exactly
// as it does for the teacher's config loader.
package mfjson

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/period"
	"github.com/kestrel-spatial/tempo/internal/temporal"
	"github.com/kestrel-spatial/tempo/internal/terr"
)

// doc mirrors the wire shape; Coordinates and Datetimes are left as
// json.RawMessage because their shape (flat vs nested) depends on which
// variant is being decoded.
type doc struct {
	Type            string          `json:"type"`
	Interpolations  []string        `json:"interpolations"`
	Coordinates     json.RawMessage `json:"coordinates"`
	Datetimes       json.RawMessage `json:"datetimes"`
	LowerInc        *bool           `json:"lower_inc"`
	UpperInc        *bool           `json:"upper_inc"`
	Sequences       []sequenceDoc   `json:"sequences"`
	CRS             *crsDoc         `json:"crs"`
}

type sequenceDoc struct {
	Coordinates [][]float64 `json:"coordinates"`
	Datetimes   []string    `json:"datetimes"`
	LowerInc    bool        `json:"lower_inc"`
	UpperInc    bool        `json:"upper_inc"`
}

type crsDoc struct {
	Type       string `json:"type"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

// SRIDResolver resolves a CRS name (e.g. "urn:ogc:def:crs:EPSG::4326") to an
// SRID. spec.md §4.E treats this registry as external; the caller supplies
// it.
type SRIDResolver func(crsName string) (basevalue.SRID, error)

// Decode parses an MF-JSON moving-point document and returns the matching
// variant, tagged by Kind the same way tparse.Parsed is.
type Decoded struct {
	Kind        temporal.Kind
	Instant     *temporal.Instant[basevalue.Point]
	InstantSet  *temporal.InstantSet[basevalue.Point]
	Sequence    *temporal.Sequence[basevalue.Point]
	SequenceSet *temporal.SequenceSet[basevalue.Point]
}

func Decode(data []byte, resolveSRID SRIDResolver) (Decoded, error) {
	var d doc
	if err := json.Unmarshal(data, &d); err != nil {
		return Decoded{}, fmt.Errorf("mfjson: %w: %w", err, terr.ErrInvalidInput)
	}
	if d.Type != "MovingPoint" {
		return Decoded{}, fmt.Errorf("mfjson: unsupported type %q: %w", d.Type, terr.ErrInvalidInput)
	}

	srid, geodetic, err := resolveCRS(d.CRS, resolveSRID)
	if err != nil {
		return Decoded{}, err
	}

	if len(d.Sequences) > 0 {
		return decodeSequenceSet(d, srid, geodetic)
	}
	if len(d.Interpolations) == 1 && d.Interpolations[0] == "Linear" {
		return decodeSequence(d, srid, geodetic)
	}
	if len(d.Interpolations) == 1 && d.Interpolations[0] == "Discrete" {
		return decodeInstantSet(d, srid, geodetic)
	}
	return decodeInstant(d, srid, geodetic)
}

func resolveCRS(crs *crsDoc, resolve SRIDResolver) (basevalue.SRID, bool, error) {
	if crs == nil {
		return 0, false, nil
	}
	if resolve == nil {
		return 0, false, fmt.Errorf("mfjson: crs present but no SRID registry configured: %w", terr.ErrInvalidInput)
	}
	srid, err := resolve(crs.Properties.Name)
	if err != nil {
		return 0, false, fmt.Errorf("mfjson: resolving crs %q: %w", crs.Properties.Name, err)
	}
	return srid, false, nil
}

func decodePoint(coords []float64, srid basevalue.SRID, geodetic bool) (basevalue.Point, error) {
	switch len(coords) {
	case 2:
		return basevalue.NewPoint2D(coords[0], coords[1], srid, geodetic), nil
	case 3:
		return basevalue.NewPoint3D(coords[0], coords[1], coords[2], srid, geodetic), nil
	default:
		return basevalue.Point{}, fmt.Errorf("mfjson: coordinates must have 2 or 3 members, got %d: %w", len(coords), terr.ErrInvalidGeometry)
	}
}

func parseDatetime(s string) (period.Timestamp, error) {
	return period.ParseTimestamp(strings.Replace(s, "T", " ", 1))
}

func decodeInstant(d doc, srid basevalue.SRID, geodetic bool) (Decoded, error) {
	var coords []float64
	if err := json.Unmarshal(d.Coordinates, &coords); err != nil {
		return Decoded{}, fmt.Errorf("mfjson: instant coordinates: %w: %w", err, terr.ErrInvalidInput)
	}
	var dt string
	if err := json.Unmarshal(d.Datetimes, &dt); err != nil {
		return Decoded{}, fmt.Errorf("mfjson: instant datetimes: %w: %w", err, terr.ErrInvalidInput)
	}
	p, err := decodePoint(coords, srid, geodetic)
	if err != nil {
		return Decoded{}, err
	}
	t, err := parseDatetime(dt)
	if err != nil {
		return Decoded{}, err
	}
	inst := temporal.NewInstant(p, t)
	return Decoded{Kind: temporal.KindInstant, Instant: &inst}, nil
}

func decodeInstantSet(d doc, srid basevalue.SRID, geodetic bool) (Decoded, error) {
	var coords [][]float64
	if err := json.Unmarshal(d.Coordinates, &coords); err != nil {
		return Decoded{}, fmt.Errorf("mfjson: instant-set coordinates: %w: %w", err, terr.ErrInvalidInput)
	}
	var dts []string
	if err := json.Unmarshal(d.Datetimes, &dts); err != nil {
		return Decoded{}, fmt.Errorf("mfjson: instant-set datetimes: %w: %w", err, terr.ErrInvalidInput)
	}
	if len(coords) != len(dts) {
		return Decoded{}, fmt.Errorf("mfjson: %d coordinates but %d datetimes: %w", len(coords), len(dts), terr.ErrInvalidInput)
	}
	instants := make([]temporal.Instant[basevalue.Point], len(coords))
	for i := range coords {
		p, err := decodePoint(coords[i], srid, geodetic)
		if err != nil {
			return Decoded{}, err
		}
		t, err := parseDatetime(dts[i])
		if err != nil {
			return Decoded{}, err
		}
		instants[i] = temporal.NewInstant(p, t)
	}
	is, err := temporal.NewInstantSet(instants, temporal.PointOps)
	if err != nil {
		return Decoded{}, err
	}
	return Decoded{Kind: temporal.KindInstantSet, InstantSet: is}, nil
}

func decodeSequence(d doc, srid basevalue.SRID, geodetic bool) (Decoded, error) {
	var coords [][]float64
	if err := json.Unmarshal(d.Coordinates, &coords); err != nil {
		return Decoded{}, fmt.Errorf("mfjson: sequence coordinates: %w: %w", err, terr.ErrInvalidInput)
	}
	var dts []string
	if err := json.Unmarshal(d.Datetimes, &dts); err != nil {
		return Decoded{}, fmt.Errorf("mfjson: sequence datetimes: %w: %w", err, terr.ErrInvalidInput)
	}
	seq, err := buildSequence(coords, dts, d.LowerInc, d.UpperInc, srid, geodetic)
	if err != nil {
		return Decoded{}, err
	}
	return Decoded{Kind: temporal.KindSequence, Sequence: seq}, nil
}

func buildSequence(coords [][]float64, dts []string, lowerInc, upperInc *bool, srid basevalue.SRID, geodetic bool) (*temporal.Sequence[basevalue.Point], error) {
	if len(coords) != len(dts) {
		return nil, fmt.Errorf("mfjson: %d coordinates but %d datetimes: %w", len(coords), len(dts), terr.ErrInvalidInput)
	}
	if lowerInc == nil || upperInc == nil {
		return nil, fmt.Errorf("mfjson: sequence requires lower_inc and upper_inc: %w", terr.ErrInvalidInput)
	}
	instants := make([]temporal.Instant[basevalue.Point], len(coords))
	for i := range coords {
		p, err := decodePoint(coords[i], srid, geodetic)
		if err != nil {
			return nil, err
		}
		t, err := parseDatetime(dts[i])
		if err != nil {
			return nil, err
		}
		instants[i] = temporal.NewInstant(p, t)
	}
	return temporal.NewSequence(instants, *lowerInc, *upperInc, temporal.PointOps, temporal.BuildPointTrajectory)
}

func decodeSequenceSet(d doc, srid basevalue.SRID, geodetic bool) (Decoded, error) {
	seqs := make([]*temporal.Sequence[basevalue.Point], len(d.Sequences))
	for i, sd := range d.Sequences {
		lowerInc, upperInc := sd.LowerInc, sd.UpperInc
		seq, err := buildSequence(sd.Coordinates, sd.Datetimes, &lowerInc, &upperInc, srid, geodetic)
		if err != nil {
			return Decoded{}, err
		}
		seqs[i] = seq
	}
	ss, err := temporal.NewSequenceSet(seqs, temporal.PointOps, temporal.BuildPointTrajectory)
	if err != nil {
		return Decoded{}, err
	}
	return Decoded{Kind: temporal.KindSequenceSet, SequenceSet: ss}, nil
}
