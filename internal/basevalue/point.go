// Package basevalue implements the per-scalar-type operations the temporal
// algebra depends on (spec.md §3.2, §4.B): equality, ordering, addition for
// the centroid accumulator types, and point accessors.
//
// Point geometries are opaque blobs elsewhere in the system; here they are
// the minimal interface the core actually consumes (construction, 2D/3D
// accessors, SRID, hasZ, geodetic) rather than a full geometry library —
// spec.md §1 explicitly scopes the geometry library itself out of the core.
package basevalue

import (
	"fmt"

	"github.com/kestrel-spatial/tempo/internal/terr"
)

// SRID identifies a spatial reference system. Zero means "unknown" (spec.md
// §4.D: an unknown-SRID point adopts the prefix SRID of its enclosing
// literal).
type SRID int32

// Point is a 2D or 3D point value, optionally geodetic. It is the engine's
// stand-in for the host geometry library's point type: construction and the
// four accessors spec.md §4.B names (get2d/get3d/srid/hasZ) plus geodetic.
type Point struct {
	X, Y, Z    float64
	hasZ       bool
	srid       SRID
	geodetic   bool
}

// NewPoint2D constructs a planar or geodetic 2D point.
func NewPoint2D(x, y float64, srid SRID, geodetic bool) Point {
	return Point{X: x, Y: y, srid: srid, geodetic: geodetic}
}

// NewPoint3D constructs a planar or geodetic 3D point.
func NewPoint3D(x, y, z float64, srid SRID, geodetic bool) Point {
	return Point{X: x, Y: y, Z: z, hasZ: true, srid: srid, geodetic: geodetic}
}

// HasZ reports whether p carries a Z coordinate.
func (p Point) HasZ() bool { return p.hasZ }

// Geodetic reports whether p is a geogpoint (geodetic=true implied per
// spec.md §3.2).
func (p Point) Geodetic() bool { return p.geodetic }

// SRID returns p's spatial reference identifier.
func (p Point) SRID() SRID { return p.srid }

// Get2D returns the (x, y) pair, dropping Z if present.
func (p Point) Get2D() (float64, float64) { return p.X, p.Y }

// Get3D returns (x, y, z). If p has no Z, z is 0.
func (p Point) Get3D() (float64, float64, float64) { return p.X, p.Y, p.Z }

// WithSRID returns a copy of p with its SRID set, used when a parsed point's
// SRID is unknown and the literal's prefix SRID must be assigned (spec.md
// §4.D).
func (p Point) WithSRID(s SRID) Point {
	p.srid = s
	return p
}

// Equal reports whether two points compare bit-for-bit equal on every
// accessed coordinate, honouring hasZ (spec.md §4.B: "two point values
// compare equal iff all accessed coordinates compare equal bit-for-bit").
func (p Point) Equal(o Point) bool {
	if p.hasZ != o.hasZ || p.geodetic != o.geodetic {
		return false
	}
	if p.X != o.X || p.Y != o.Y {
		return false
	}
	if p.hasZ && p.Z != o.Z {
		return false
	}
	return true
}

// CheckCompatible fails if p and o differ in hasZ or geodetic, or carry
// different SRIDs when both are known (an SRID of 0 matches any SRID) —
// the fatal-mismatch checks every binary point operator performs first
// (spec.md §4.F "Failure modes of the kernel").
func CheckCompatible(p, o Point) error {
	if p.geodetic != o.geodetic {
		return fmt.Errorf("mixed geodetic/planar points: %w", terr.ErrInvalidGeometry)
	}
	if p.hasZ != o.hasZ {
		return fmt.Errorf("hasZ %v vs %v: %w", p.hasZ, o.hasZ, terr.ErrDimensionalityMismatch)
	}
	if p.srid != 0 && o.srid != 0 && p.srid != o.srid {
		return fmt.Errorf("SRID %d vs %d: %w", p.srid, o.srid, terr.ErrSRIDMismatch)
	}
	return nil
}

func (p Point) String() string {
	if p.hasZ {
		return fmt.Sprintf("POINT Z(%v %v %v)", p.X, p.Y, p.Z)
	}
	return fmt.Sprintf("POINT(%v %v)", p.X, p.Y)
}
