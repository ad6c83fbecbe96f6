package basevalue

// Double2, Double3, and Double4 are the internal accumulator types spec.md
// §3.2 names: running component sums used by the centroid aggregate (spec.md
// §4.H). They are never user-facing value types — only transition/combine
// produce and consume them.
type Double2 struct{ A, B float64 }
type Double3 struct{ A, B, C float64 }
type Double4 struct{ A, B, C, D float64 }

// Add implements the componentwise "+" spec.md §4.B requires of every
// numeric value_type, specialized to the three accumulator shapes.
func (d Double2) Add(o Double2) Double2 { return Double2{d.A + o.A, d.B + o.B} }
func (d Double3) Add(o Double3) Double3 { return Double3{d.A + o.A, d.B + o.B, d.C + o.C} }
func (d Double4) Add(o Double4) Double4 {
	return Double4{d.A + o.A, d.B + o.B, d.C + o.C, d.D + o.D}
}

// CentroidAccum2D builds the (sum_x, sum_y, count) accumulator for a planar
// point, stored as Double3 per spec.md §4.H.
func CentroidAccum2D(p Point) Double3 {
	x, y := p.Get2D()
	return Double3{A: x, B: y, C: 1}
}

// CentroidAccum3D builds the (sum_x, sum_y, sum_z, count) accumulator for a
// 3D point, stored as Double4 per spec.md §4.H.
func CentroidAccum3D(p Point) Double4 {
	x, y, z := p.Get3D()
	return Double4{A: x, B: y, C: z, D: 1}
}

// Finalize2D divides a Double3 centroid accumulator by its count and
// materializes a planar Point (spec.md §4.H final).
func (d Double3) Finalize2D(srid SRID, geodetic bool) Point {
	return NewPoint2D(d.A/d.C, d.B/d.C, srid, geodetic)
}

// Finalize3D divides a Double4 centroid accumulator by its count and
// materializes a 3D Point.
func (d Double4) Finalize3D(srid SRID, geodetic bool) Point {
	return NewPoint3D(d.A/d.D, d.B/d.D, d.C/d.D, srid, geodetic)
}
