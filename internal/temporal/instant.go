package temporal

import (
	"fmt"
	"hash/fnv"

	"github.com/kestrel-spatial/tempo/internal/period"
	"github.com/kestrel-spatial/tempo/internal/tbox"
)

// Instant is I(v, t): a single observation (spec.md §3.3).
type Instant[V any] struct {
	Value V
	Time  period.Timestamp
}

// NewInstant constructs an Instant. Instants never fail to construct: there
// is no invariant to violate with a single observation.
func NewInstant[V any](v V, t period.Timestamp) Instant[V] {
	return Instant[V]{Value: v, Time: t}
}

// BBox returns the Instant's bounding box via the supplied Ops.
func (i Instant[V]) BBox(ops Ops[V]) tbox.Box {
	return ops.BBoxOf(i.Value, i.Time)
}

// Equal reports value+timestamp equality using ops.Eq.
func (i Instant[V]) Equal(o Instant[V], ops Ops[V]) bool {
	return i.Time == o.Time && ops.Eq(i.Value, o.Value)
}

// Hash folds the instant's timestamp and a type-erased fmt representation of
// its value into an FNV-1a hash, matching spec.md §4.C's "FNV-style fold
// over instants".
func (i Instant[V]) Hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%v", i.Time, i.Value)
	return h.Sum64()
}

func (i Instant[V]) String() string {
	return fmt.Sprintf("%v@%s", i.Value, i.Time)
}
