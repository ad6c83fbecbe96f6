package selectivity

import (
	"testing"

	"github.com/kestrel-spatial/tempo/internal/engcfg"
	"github.com/kestrel-spatial/tempo/internal/tbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridBoxes() []tbox.Box {
	var boxes []tbox.Box
	for x := 0.0; x < 10; x++ {
		for y := 0.0; y < 10; y++ {
			boxes = append(boxes, tbox.Box{
				XMin: x, XMax: x + 1,
				YMin: y, YMax: y + 1,
				HasX: true,
			})
		}
	}
	return boxes
}

func TestBuildRejectsEmptySample(t *testing.T) {
	t.Parallel()

	_, err := Build(nil, []Axis{AxisX, AxisY}, 64)
	require.Error(t, err)
}

func TestEstimateOverlapsWithinExtent(t *testing.T) {
	t.Parallel()

	h, err := Build(gridBoxes(), []Axis{AxisX, AxisY}, 100)
	require.NoError(t, err)

	cfg := engcfg.DefaultEngineConfig()
	sel, err := h.Estimate(OpOverlaps, tbox.Box{XMin: 0, XMax: 10, YMin: 0, YMax: 10, HasX: true}, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sel, 0.05, "a query covering the whole extent should see nearly all density")
}

func TestEstimateOverlapsSmallerThanFullExtent(t *testing.T) {
	t.Parallel()

	h, err := Build(gridBoxes(), []Axis{AxisX, AxisY}, 100)
	require.NoError(t, err)

	cfg := engcfg.DefaultEngineConfig()
	full, err := h.Estimate(OpOverlaps, tbox.Box{XMin: 0, XMax: 10, YMin: 0, YMax: 10, HasX: true}, cfg)
	require.NoError(t, err)
	half, err := h.Estimate(OpOverlaps, tbox.Box{XMin: 0, XMax: 5, YMin: 0, YMax: 10, HasX: true}, cfg)
	require.NoError(t, err)
	assert.Less(t, half, full)
	assert.Greater(t, half, 0.0)
}

func TestEstimateContainsIsAtMostOverlaps(t *testing.T) {
	t.Parallel()

	h, err := Build(gridBoxes(), []Axis{AxisX, AxisY}, 100)
	require.NoError(t, err)

	cfg := engcfg.DefaultEngineConfig()
	query := tbox.Box{XMin: 2, XMax: 4, YMin: 2, YMax: 4, HasX: true}
	overlaps, err := h.Estimate(OpOverlaps, query, cfg)
	require.NoError(t, err)
	contains, err := h.Estimate(OpContains, query, cfg)
	require.NoError(t, err)
	assert.LessOrEqual(t, contains, overlaps+1e-9)
}

func TestEstimateDirectionalBeforeIncreasesWithBoundary(t *testing.T) {
	t.Parallel()

	h, err := Build(gridBoxes(), []Axis{AxisX, AxisY}, 100)
	require.NoError(t, err)
	cfg := engcfg.DefaultEngineConfig()

	low, err := h.EstimateDirectional(0, RelBefore, 2, cfg)
	require.NoError(t, err)
	high, err := h.EstimateDirectional(0, RelBefore, 8, cfg)
	require.NoError(t, err)
	assert.Less(t, low, high, "more of the sample is 'before' a boundary further to the right")
}

func TestEstimateDirectionalRejectsBadAxis(t *testing.T) {
	t.Parallel()

	h, err := Build(gridBoxes(), []Axis{AxisX, AxisY}, 100)
	require.NoError(t, err)
	cfg := engcfg.DefaultEngineConfig()

	_, err = h.EstimateDirectional(5, RelBefore, 0, cfg)
	require.Error(t, err)
}

func TestJoinSelectivityOfIdenticalHistogramsIsSumOfSquaredDensities(t *testing.T) {
	t.Parallel()

	h1, err := Build(gridBoxes(), []Axis{AxisX, AxisY}, 100)
	require.NoError(t, err)
	h2, err := Build(gridBoxes(), []Axis{AxisX, AxisY}, 100)
	require.NoError(t, err)

	cfg := engcfg.DefaultEngineConfig()
	sel, err := h1.JoinSelectivity(h2, cfg)
	require.NoError(t, err)
	// Each axis counts boxes per cell as 1,2,2,...,2 (sum 19), so a cell's
	// density is a_i*a_j/361 and each cell's overlap estimate against the
	// identical histogram is its own density: the join is (Σa²)²/361².
	assert.InDelta(t, 1369.0/130321.0, sel, 1e-9)
	assert.LessOrEqual(t, sel, 1.0)
}

func TestJoinSelectivityRejectsMismatchedDimensions(t *testing.T) {
	t.Parallel()

	h1, err := Build(gridBoxes(), []Axis{AxisX, AxisY}, 100)
	require.NoError(t, err)
	h2, err := Build(gridBoxes(), []Axis{AxisX}, 10)
	require.NoError(t, err)

	cfg := engcfg.DefaultEngineConfig()
	_, err = h1.JoinSelectivity(h2, cfg)
	require.Error(t, err)
}

func TestPeriodBoundsHistogramViaBoxFromPeriod(t *testing.T) {
	t.Parallel()

	var boxes []tbox.Box
	for i := 0.0; i < 20; i++ {
		boxes = append(boxes, BoxFromPeriod(i, i+5))
	}
	h, err := Build(boxes, []Axis{AxisPeriodLower, AxisPeriodUpper}, 50)
	require.NoError(t, err)

	cfg := engcfg.DefaultEngineConfig()
	sel, err := h.Estimate(OpOverlaps, BoxFromPeriod(0, 25), cfg)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sel, 0.05)
}

func TestCombineTemporalClampsToUnitInterval(t *testing.T) {
	t.Parallel()

	cfg := engcfg.DefaultEngineConfig()
	assert.Equal(t, 0.25, CombineTemporal(0.5, 0.5, cfg))
	assert.Equal(t, 0.0, CombineTemporal(0, 1, cfg))
}

func TestFallbackMatchesConfiguredDefault(t *testing.T) {
	t.Parallel()

	cfg := engcfg.DefaultEngineConfig()
	assert.Equal(t, cfg.SelectivityDefault, Fallback(cfg))
}
