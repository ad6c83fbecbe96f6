package spgist

import (
	"sort"
	"testing"

	"github.com/kestrel-spatial/tempo/internal/period"
	"github.com/kestrel-spatial/tempo/internal/tbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(s string) period.Timestamp {
	t, err := period.ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return t
}

func box(x0, y0, x1, y1 float64, t0, t1 period.Timestamp) tbox.Box {
	return tbox.Box{
		XMin: x0, XMax: x1, YMin: y0, YMax: y1,
		HasX: true, HasT: true, TMin: t0, TMax: t1,
	}
}

func TestInsertAndQueryOverlapsFindsMatches(t *testing.T) {
	t.Parallel()

	tr := New(256, 8)
	t0 := ts("2001-01-01 00:00:00")
	t1 := ts("2001-01-02 00:00:00")
	t2 := ts("2001-03-01 00:00:00")
	t3 := ts("2001-03-02 00:00:00")

	tr.Insert(box(0, 0, 1, 1, t0, t1), "near-origin")
	tr.Insert(box(100, 100, 101, 101, t2, t3), "far-away")

	query := box(-1, -1, 2, 2, t0, t1)
	got := tr.QueryOverlaps(query)
	assert.Equal(t, []string{"near-origin"}, got)
}

func TestQueryOverlapsExcludesDisjointTime(t *testing.T) {
	t.Parallel()

	tr := New(256, 8)
	t0 := ts("2001-01-01 00:00:00")
	t1 := ts("2001-01-02 00:00:00")
	t2 := ts("2001-06-01 00:00:00")
	t3 := ts("2001-06-02 00:00:00")

	tr.Insert(box(0, 0, 1, 1, t0, t1), "spring")
	query := box(-10, -10, 10, 10, t2, t3)
	assert.Empty(t, tr.QueryOverlaps(query))
}

func TestQueryBeforeAndAfter(t *testing.T) {
	t.Parallel()

	tr := New(256, 8)
	early := box(0, 0, 1, 1, ts("2001-01-01 00:00:00"), ts("2001-01-02 00:00:00"))
	late := box(0, 0, 1, 1, ts("2001-06-01 00:00:00"), ts("2001-06-02 00:00:00"))
	tr.Insert(early, "early")
	tr.Insert(late, "late")

	query := box(0, 0, 1, 1, ts("2001-03-01 00:00:00"), ts("2001-03-02 00:00:00"))
	assert.Equal(t, []string{"early"}, tr.QueryBefore(query))
	assert.Equal(t, []string{"late"}, tr.QueryAfter(query))
}

func TestSplitPreservesAllEntries(t *testing.T) {
	t.Parallel()

	tr := New(4, 2)
	t0 := ts("2001-01-01 00:00:00")
	var ids []string
	for i := 0; i < 40; i++ {
		id := string(rune('a' + i%26))
		ids = append(ids, id)
		x := float64(i)
		tr.Insert(box(x, x, x+1, x+1, t0, t0+period.Timestamp(i)), id)
	}

	got := tr.QueryOverlaps(box(-1000, -1000, 1000, 1000, t0-1, t0+1000))
	sort.Strings(got)
	sort.Strings(ids)
	assert.Equal(t, ids, got)
}

func TestQueryContainsRequiresFullContainment(t *testing.T) {
	t.Parallel()

	tr := New(256, 8)
	t0 := ts("2001-01-01 00:00:00")
	t1 := ts("2001-01-05 00:00:00")
	tr.Insert(box(0, 0, 10, 10, t0, t1), "big")
	tr.Insert(box(2, 2, 3, 3, t0, t1), "small")

	query := box(2, 2, 3, 3, t0, t1)
	got := tr.QueryContains(query)
	require.Len(t, got, 2)
	sort.Strings(got)
	assert.Equal(t, []string{"big", "small"}, got)
}

func TestQueryContainedFindsOnlyTheEnclosedBox(t *testing.T) {
	t.Parallel()

	tr := New(256, 8)
	t0 := ts("2001-01-01 00:00:00")
	t1 := ts("2001-01-05 00:00:00")
	tr.Insert(box(0, 0, 10, 10, t0, t1), "big")
	tr.Insert(box(2, 2, 3, 3, t0, t1), "small")

	query := box(2, 2, 3, 3, t0, t1)
	assert.Equal(t, []string{"small"}, tr.QueryContained(query))
}

func TestQuerySameRequiresExactMatch(t *testing.T) {
	t.Parallel()

	tr := New(256, 8)
	t0 := ts("2001-01-01 00:00:00")
	t1 := ts("2001-01-05 00:00:00")
	tr.Insert(box(0, 0, 10, 10, t0, t1), "big")
	tr.Insert(box(2, 2, 3, 3, t0, t1), "small")

	assert.Equal(t, []string{"small"}, tr.QuerySame(box(2, 2, 3, 3, t0, t1)))
	assert.Equal(t, []string{"big"}, tr.QuerySame(box(0, 0, 10, 10, t0, t1)))
}

func TestQueryLeftRightFamily(t *testing.T) {
	t.Parallel()

	t0 := ts("2001-01-01 00:00:00")
	t1 := ts("2001-01-02 00:00:00")
	tr := New(256, 8)
	tr.Insert(box(0, 0, 1, 1, t0, t1), "west")
	tr.Insert(box(10, 0, 11, 1, t0, t1), "east")

	query := box(4, 0, 5, 1, t0, t1)
	assert.Equal(t, []string{"west"}, tr.QueryLeft(query))
	assert.Equal(t, []string{"east"}, tr.QueryRight(query))

	touching := box(1, 0, 2, 1, t0, t1)
	assert.Empty(t, tr.QueryLeft(touching), "strict left excludes a box sharing the boundary")
	assert.Equal(t, []string{"west"}, tr.QueryOverLeft(touching), "overleft includes the boundary-sharing box")
}

func TestQueryBelowAboveFamily(t *testing.T) {
	t.Parallel()

	t0 := ts("2001-01-01 00:00:00")
	t1 := ts("2001-01-02 00:00:00")
	tr := New(256, 8)
	tr.Insert(box(0, 0, 1, 1, t0, t1), "south")
	tr.Insert(box(0, 10, 1, 11, t0, t1), "north")

	query := box(0, 4, 1, 5, t0, t1)
	assert.Equal(t, []string{"south"}, tr.QueryBelow(query))
	assert.Equal(t, []string{"north"}, tr.QueryAbove(query))

	touching := box(0, 1, 1, 2, t0, t1)
	assert.Empty(t, tr.QueryBelow(touching), "strict below excludes a box sharing the boundary")
	assert.Equal(t, []string{"south"}, tr.QueryOverBelow(touching), "overbelow includes the boundary-sharing box")
}

func TestQueryFrontBackFamily(t *testing.T) {
	t.Parallel()

	t0 := ts("2001-01-01 00:00:00")
	t1 := ts("2001-01-02 00:00:00")
	tr := New(256, 8)
	near := tbox.Box{
		XMin: 0, XMax: 1, YMin: 0, YMax: 1, HasX: true,
		ZMin: 0, ZMax: 1, HasZ: true,
		TMin: t0, TMax: t1, HasT: true,
	}
	far := near
	far.ZMin, far.ZMax = 10, 11
	tr.Insert(near, "near")
	tr.Insert(far, "far")

	query := near
	query.ZMin, query.ZMax = 4, 5
	assert.Equal(t, []string{"near"}, tr.QueryFront(query))
	assert.Equal(t, []string{"far"}, tr.QueryBack(query))

	touching := near
	touching.ZMin, touching.ZMax = 1, 2
	assert.Empty(t, tr.QueryFront(touching), "strict front excludes a box sharing the boundary")
	assert.Equal(t, []string{"near"}, tr.QueryOverFront(touching), "overfront includes the boundary-sharing box")
}
