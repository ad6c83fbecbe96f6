// Package selectivity implements spec.md §4.K's n-d histogram selectivity
// estimator over bounding boxes: restriction selectivity for overlap/
// contains/contained/same and the directional operator family, plus join
// selectivity and a period-bounds histogram for the temporal dimension.
// Grounded on original_source/point/src/GeoEstimate.c: nd_box_ratio
// (pro-rated cell coverage), nd_box_overlap (which cells a query box
// touches), nd_stats_value_index/nd_increment (flattened n-d cell
// iteration), and estimate_selectivity's per-operator cell-combination
// rules (sum for overlaps/same, max for contains, min for contained).
// estimate_join_selectivity grounds JoinSelectivity's drive-by-the-smaller-
// histogram strategy. Wired to gonum.org/v1/gonum/stat for the dispersion
// weighting used to size each axis's bin count (in place of the original's
// hand-rolled range_quintile) and gonum.org/v1/gonum/floats for the flat
// cell-value arithmetic, per SPEC_FULL.md §10's domain-stack wiring.
package selectivity

import (
	"fmt"
	"math"

	"github.com/kestrel-spatial/tempo/internal/engcfg"
	"github.com/kestrel-spatial/tempo/internal/tbox"
	"github.com/kestrel-spatial/tempo/internal/terr"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// minDimensionWidth mirrors MIN_DIMENSION_WIDTH: an axis narrower than this
// across the sample isn't worth splitting into bins.
const minDimensionWidth = 1e-9

// Axis extracts one dimension's (lo, hi) pair from a tbox.Box. The same
// machinery serves both spatial histograms (AxisX/AxisY/AxisZ/AxisT) and the
// period-bounds histogram (AxisPeriodLower/AxisPeriodUpper operate on boxes
// built by BoxFromPeriod).
type Axis struct {
	Name    string
	Extract func(tbox.Box) (lo, hi float64)
}

var (
	AxisX = Axis{Name: "x", Extract: func(b tbox.Box) (float64, float64) { return b.XMin, b.XMax }}
	AxisY = Axis{Name: "y", Extract: func(b tbox.Box) (float64, float64) { return b.YMin, b.YMax }}
	AxisZ = Axis{Name: "z", Extract: func(b tbox.Box) (float64, float64) { return b.ZMin, b.ZMax }}
	AxisT = Axis{Name: "t", Extract: func(b tbox.Box) (float64, float64) {
		return float64(b.TMin), float64(b.TMax)
	}}

	// AxisPeriodLower/AxisPeriodUpper read the same fields as AxisX for a box
	// built by BoxFromPeriod, named distinctly for a period-bounds histogram.
	AxisPeriodLower = Axis{Name: "lower", Extract: AxisX.Extract}
	AxisPeriodUpper = Axis{Name: "upper", Extract: AxisX.Extract}
)

// BoxFromPeriod packs a period's (lower, upper) bound pair into a Box's X
// dimension so the shared Histogram machinery can build a period-bounds
// histogram (spec.md §4.K "temporal-dimension selectivity from a
// period-bounds histogram") without a parallel data structure.
func BoxFromPeriod(lower, upper float64) tbox.Box {
	return tbox.Box{XMin: lower, XMax: upper, HasX: true}
}

// Histogram is an n-d grid of pro-rated feature density over a set of
// sampled boxes (spec.md §4.K's extent/size/value/histogram_features).
type Histogram struct {
	axes          []Axis
	extentMin     []float64
	extentMax     []float64
	size          []int
	values        []float64 // flattened, row-major over size; normalized to sum to 1
	totalFeatures float64
}

// Build samples boxes into an n-d histogram over axes, targeting roughly
// targetCells total cells (dispersion-weighted per axis via gonum/stat in
// place of the original's range_quintile dimension-selection heuristic).
func Build(boxes []tbox.Box, axes []Axis, targetCells int) (*Histogram, error) {
	if len(boxes) == 0 {
		return nil, fmt.Errorf("selectivity: no sample boxes: %w", terr.ErrStatisticsUnavailable)
	}
	n := len(axes)
	extentMin := make([]float64, n)
	extentMax := make([]float64, n)
	for d := range axes {
		extentMin[d] = math.Inf(1)
		extentMax[d] = math.Inf(-1)
	}
	lowsByAxis := make([][]float64, n)
	for d := range axes {
		lowsByAxis[d] = make([]float64, len(boxes))
	}
	for i, b := range boxes {
		for d, ax := range axes {
			lo, hi := ax.Extract(b)
			lowsByAxis[d][i] = lo
			extentMin[d] = math.Min(extentMin[d], lo)
			extentMax[d] = math.Max(extentMax[d], hi)
		}
	}

	dispersion := make([]float64, n)
	for d := range axes {
		dispersion[d] = stat.StdDev(lowsByAxis[d], nil)
		if dispersion[d] == 0 {
			dispersion[d] = 1
		}
	}
	dispersionSum := floats.Sum(dispersion)

	size := make([]int, n)
	totalCells := 1
	for d := range axes {
		width := extentMax[d] - extentMin[d]
		if width < minDimensionWidth {
			size[d] = 1
			continue
		}
		share := dispersion[d] / dispersionSum * float64(n)
		s := int(math.Round(share * math.Pow(float64(targetCells), 1.0/float64(n))))
		if s < 1 {
			s = 1
		}
		size[d] = s
		totalCells *= s
	}

	values := make([]float64, totalCells)
	idxBuf := make([]int, n)
	for _, b := range boxes {
		var cellMin, cellMax [8]int
		for d, ax := range axes {
			lo, hi := ax.Extract(b)
			width := extentMax[d] - extentMin[d]
			if size[d] == 1 || width < minDimensionWidth {
				cellMin[d], cellMax[d] = 0, 0
				continue
			}
			lowBin := int(math.Floor(float64(size[d]) * (lo - extentMin[d]) / width))
			highBin := int(math.Floor(float64(size[d]) * (hi - extentMin[d]) / width))
			cellMin[d] = clampInt(lowBin, 0, size[d]-1)
			cellMax[d] = clampInt(highBin, 0, size[d]-1)
		}
		forEachCell(cellMin[:n], cellMax[:n], idxBuf, func(idx []int) {
			flat := flatIndex(idx, size)
			values[flat]++
		})
	}

	floats.Scale(1/floats.Sum(values), values)

	return &Histogram{
		axes:          axes,
		extentMin:     extentMin,
		extentMax:     extentMax,
		size:          size,
		values:        values,
		totalFeatures: float64(len(boxes)),
	}, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// flatIndex is nd_stats_value_index: row-major flattening of an n-d cell
// coordinate.
func flatIndex(idx, size []int) int {
	flat, accum := 0, 1
	for d := range idx {
		flat += idx[d] * accum
		accum *= size[d]
	}
	return flat
}

// forEachCell walks every n-d cell coordinate in [min, max] inclusive,
// grounded on nd_increment's odometer-style counter.
func forEachCell(min, max []int, counter []int, visit func([]int)) {
	copy(counter, min)
	for {
		visit(counter)
		d := 0
		for d < len(counter) {
			if counter[d] < max[d] {
				counter[d]++
				break
			}
			counter[d] = min[d]
			d++
		}
		if d == len(counter) {
			return
		}
	}
}

// cellBounds returns cell idx's box in the histogram's own axis ordering.
func (h *Histogram) cellBounds(idx []int) []interval {
	out := make([]interval, len(h.axes))
	for d := range h.axes {
		width := h.extentMax[d] - h.extentMin[d]
		cellWidth := width / float64(h.size[d])
		out[d] = interval{
			lo: h.extentMin[d] + float64(idx[d])*cellWidth,
			hi: h.extentMin[d] + float64(idx[d]+1)*cellWidth,
		}
	}
	return out
}

type interval struct{ lo, hi float64 }

// ratio is nd_box_ratio: the fraction of cell covered by query, 0 when
// disjoint on any axis, 1 when query fully covers cell.
func ratio(query []interval, cell []interval) float64 {
	covered := true
	for d := range query {
		if query[d].hi <= cell[d].lo || query[d].lo >= cell[d].hi {
			return 0
		}
		if query[d].lo > cell[d].lo || query[d].hi < cell[d].hi {
			covered = false
		}
	}
	if covered {
		return 1
	}
	vol2 := 1.0
	ivol := 1.0
	for d := range query {
		width2 := cell[d].hi - cell[d].lo
		vol2 *= width2
		imin := math.Max(query[d].lo, cell[d].lo)
		imax := math.Min(query[d].hi, cell[d].hi)
		ivol *= math.Max(0, imax-imin)
	}
	if vol2 == 0 {
		return 0
	}
	return ivol / vol2
}

func (h *Histogram) queryIntervals(query tbox.Box) []interval {
	out := make([]interval, len(h.axes))
	for d, ax := range h.axes {
		lo, hi := ax.Extract(query)
		out[d] = interval{lo: lo, hi: hi}
	}
	return out
}

// overlapRange is nd_box_overlap: which cells a query box's extent touches.
func (h *Histogram) overlapRange(q []interval) (min, max []int) {
	n := len(h.axes)
	min, max = make([]int, n), make([]int, n)
	for d := 0; d < n; d++ {
		width := h.extentMax[d] - h.extentMin[d]
		if width < minDimensionWidth {
			min[d], max[d] = 0, 0
			continue
		}
		lowBin := int(math.Floor(float64(h.size[d]) * (q[d].lo - h.extentMin[d]) / width))
		highBin := int(math.Floor(float64(h.size[d]) * (q[d].hi - h.extentMin[d]) / width))
		min[d] = clampInt(lowBin, 0, h.size[d]-1)
		max[d] = clampInt(highBin, 0, h.size[d]-1)
	}
	return min, max
}

// RestrictOp names the non-directional bbox operators of spec.md §4.K.
type RestrictOp int

const (
	OpOverlaps RestrictOp = iota
	OpSame
	OpContains
	OpContained
)

// Estimate returns the restriction selectivity of op against query,
// grounded on estimate_selectivity's switch: overlaps/same sum pro-rated
// cell density; contains takes the maximum single-cell pro-rated density
// (the tightest covering cell establishes the floor on how large contains
// can plausibly be); contained takes the minimum (spec.md §4.K).
func (h *Histogram) Estimate(op RestrictOp, query tbox.Box, cfg *engcfg.EngineConfig) (float64, error) {
	qi := h.queryIntervals(query)
	min, max := h.overlapRange(qi)

	var total float64
	var best float64
	first := true
	forEachCell(min, max, make([]int, len(h.axes)), func(idx []int) {
		flat := flatIndex(idx, h.size)
		cellDensity := h.values[flat]
		r := ratio(qi, h.cellBounds(idx))
		contribution := cellDensity * r
		total += contribution
		if first || contribution > best {
			best = contribution
			first = false
		}
	})

	switch op {
	case OpOverlaps, OpSame:
		return clamp01(total), nil
	case OpContains:
		return clamp01(best), nil
	case OpContained:
		// Mirrors CONTAINED_OP's running minimum; with no cells touched at
		// all the query can't plausibly contain anything in the sample.
		if first {
			return 0, nil
		}
		return clamp01(minCellDensity(h, qi, min, max)), nil
	}
	return 0, fmt.Errorf("selectivity: unknown restrict op %d: %w", op, terr.ErrInvalidInput)
}

func minCellDensity(h *Histogram, qi []interval, qMin, qMax []int) float64 {
	minVal := math.Inf(1)
	forEachCell(qMin, qMax, make([]int, len(h.axes)), func(idx []int) {
		flat := flatIndex(idx, h.size)
		r := ratio(qi, h.cellBounds(idx))
		v := h.values[flat] * r
		if v < minVal {
			minVal = v
		}
	})
	if math.IsInf(minVal, 1) {
		return 0
	}
	return minVal
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Relation is one half-space comparison for a directional operator.
type Relation int

const (
	// RelBefore: the histogrammed values' upper bound is below boundary
	// (spec.md's "left"/"below"/"before").
	RelBefore Relation = iota
	// RelOverBefore: the values' upper bound does not exceed boundary
	// ("overleft"/"overbelow"/"overbefore").
	RelOverBefore
	// RelAfter: the values' lower bound is above boundary
	// ("right"/"above"/"after").
	RelAfter
	// RelOverAfter: the values' lower bound is not below boundary
	// ("overright"/"overabove"/"overafter").
	RelOverAfter
)

// EstimateDirectional generalizes GeoEstimate.c's twelve near-identical
// left_point_sel/overleft_point_sel/.../overafter_point_sel functions into
// one routine parameterized by axis and Relation: each of those operators
// is the same half-space sweep over a different axis (x, y, or t) with a
// strict/"over" boundary variant. boundary is the query's relevant bound
// (e.g. query's XMax for "left of"), shifted by
// cfg.BoundaryShiftFactor the way the upstream statistics library's split
// cells are — spec.md §9's preserved "×0.5 PostGIS boundary compatibility"
// magic constant.
func (h *Histogram) EstimateDirectional(axis int, rel Relation, boundary float64, cfg *engcfg.EngineConfig) (float64, error) {
	if axis < 0 || axis >= len(h.axes) {
		return 0, fmt.Errorf("selectivity: axis %d out of range: %w", axis, terr.ErrInvalidInput)
	}
	shifted := boundary + cfg.BoundaryShiftFactor

	n := len(h.axes)
	min := make([]int, n)
	max := make([]int, n)
	for d := 0; d < n; d++ {
		max[d] = h.size[d] - 1
	}

	var total float64
	forEachCell(min, max, make([]int, n), func(idx []int) {
		cell := h.cellBounds(idx)
		flat := flatIndex(idx, h.size)
		density := h.values[flat]

		var frac float64
		switch rel {
		case RelBefore:
			if cell[axis].hi <= shifted {
				frac = 1
			} else if cell[axis].lo < shifted {
				frac = (shifted - cell[axis].lo) / (cell[axis].hi - cell[axis].lo)
			}
		case RelOverBefore:
			if cell[axis].lo <= shifted {
				frac = 1
			}
		case RelAfter:
			if cell[axis].lo >= shifted {
				frac = 1
			} else if cell[axis].hi > shifted {
				frac = (cell[axis].hi - shifted) / (cell[axis].hi - cell[axis].lo)
			}
		case RelOverAfter:
			if cell[axis].hi >= shifted {
				frac = 1
			}
		}
		total += density * frac
	})
	return clamp01(total), nil
}

// JoinSelectivity estimates the selectivity of an overlap join between h and
// other, grounded on estimate_join_selectivity's "drive the summation from
// the smaller histogram" strategy: every cell of the smaller histogram
// contributes its own density times the other histogram's overlap
// selectivity at that cell's box.
func (h *Histogram) JoinSelectivity(other *Histogram, cfg *engcfg.EngineConfig) (float64, error) {
	if len(h.axes) != len(other.axes) {
		return 0, fmt.Errorf("selectivity: join requires matching axis count (%d vs %d): %w", len(h.axes), len(other.axes), terr.ErrDimensionalityMismatch)
	}
	small, large := h, other
	if len(small.values) > len(large.values) {
		small, large = large, small
	}

	n := len(small.axes)
	min := make([]int, n)
	max := make([]int, n)
	for d := 0; d < n; d++ {
		max[d] = small.size[d] - 1
	}

	var total float64
	forEachCell(min, max, make([]int, n), func(idx []int) {
		flat := flatIndex(idx, small.size)
		density := small.values[flat]
		if density == 0 {
			return
		}
		cell := small.cellBounds(idx)
		box := boxFromIntervals(cell)
		otherSel, err := large.Estimate(OpOverlaps, box, cfg)
		if err != nil {
			return
		}
		total += density * otherSel
	})
	return clamp01(total), nil
}

func boxFromIntervals(iv []interval) tbox.Box {
	b := tbox.Box{HasX: true}
	if len(iv) > 0 {
		b.XMin, b.XMax = iv[0].lo, iv[0].hi
	}
	if len(iv) > 1 {
		b.YMin, b.YMax = iv[1].lo, iv[1].hi
	}
	if len(iv) > 2 {
		b.ZMin, b.ZMax, b.HasZ = iv[2].lo, iv[2].hi, true
	}
	return b
}

// Snapshot is the persisted form of a Histogram, for storage in a
// statistics catalog (internal/statcat) without keeping the original sample
// boxes around — only the derived cell grid is durable state.
type Snapshot struct {
	ExtentMin     []float64
	ExtentMax     []float64
	Size          []int
	Values        []float64
	TotalFeatures float64
}

// Snapshot captures h's cell grid for persistence.
func (h *Histogram) Snapshot() Snapshot {
	return Snapshot{
		ExtentMin:     append([]float64(nil), h.extentMin...),
		ExtentMax:     append([]float64(nil), h.extentMax...),
		Size:          append([]int(nil), h.size...),
		Values:        append([]float64(nil), h.values...),
		TotalFeatures: h.totalFeatures,
	}
}

// FromSnapshot reconstructs a Histogram from a persisted Snapshot and the
// axes it was built over. Axes aren't themselves serialized (they're Go
// closures); the caller supplies the same axis set used for Build.
func FromSnapshot(axes []Axis, snap Snapshot) *Histogram {
	return &Histogram{
		axes:          axes,
		extentMin:     snap.ExtentMin,
		extentMax:     snap.ExtentMax,
		size:          snap.Size,
		values:        snap.Values,
		totalFeatures: snap.TotalFeatures,
	}
}

// CombineTemporal applies spec.md §4.K's independence assumption: the final
// selectivity of a spatial restriction combined with a temporal-dimension
// one is their product, clamped to [0,1]. cfg is not read and no default is
// substituted here; a caller without a histogram uses Fallback for that side.
func CombineTemporal(spatialSel, temporalSel float64, cfg *engcfg.EngineConfig) float64 {
	return clamp01(spatialSel * temporalSel)
}

// Fallback returns the configured default selectivity used when no
// histogram is available (spec.md §7's statistics_unavailable case).
func Fallback(cfg *engcfg.EngineConfig) float64 {
	return clamp01(cfg.SelectivityDefault)
}
