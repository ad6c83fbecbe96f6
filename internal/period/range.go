package period

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kestrel-spatial/tempo/internal/terr"
)

// IntRange is a typed interval over int32 with inclusivity flags (spec.md
// §3.1).
type IntRange struct {
	Lower, Upper         int32
	LowerInc, UpperInc bool
}

// NewIntRange validates and constructs an IntRange.
func NewIntRange(lower, upper int32, lowerInc, upperInc bool) (IntRange, error) {
	if lower > upper {
		return IntRange{}, fmt.Errorf("int range: lower %d is after upper %d: %w", lower, upper, terr.ErrNormalForm)
	}
	if lower == upper && !(lowerInc && upperInc) {
		return IntRange{}, fmt.Errorf("int range: empty-interior range must be closed on both ends: %w", terr.ErrNormalForm)
	}
	return IntRange{Lower: lower, Upper: upper, LowerInc: lowerInc, UpperInc: upperInc}, nil
}

// Contains reports whether v lies within r, honouring inclusivity.
func (r IntRange) Contains(v int32) bool {
	if v < r.Lower || v > r.Upper {
		return false
	}
	if v == r.Lower && !r.LowerInc {
		return false
	}
	if v == r.Upper && !r.UpperInc {
		return false
	}
	return true
}

func (r IntRange) String() string {
	lb, ub := "[", "]"
	if !r.LowerInc {
		lb = "("
	}
	if !r.UpperInc {
		ub = ")"
	}
	return fmt.Sprintf("%s%d, %d%s", lb, r.Lower, r.Upper, ub)
}

// FloatRange is a typed interval over float64 with inclusivity flags
// (spec.md §3.1).
type FloatRange struct {
	Lower, Upper         float64
	LowerInc, UpperInc bool
}

// NewFloatRange validates and constructs a FloatRange.
func NewFloatRange(lower, upper float64, lowerInc, upperInc bool) (FloatRange, error) {
	if lower > upper {
		return FloatRange{}, fmt.Errorf("float range: lower %g is after upper %g: %w", lower, upper, terr.ErrNormalForm)
	}
	if lower == upper && !(lowerInc && upperInc) {
		return FloatRange{}, fmt.Errorf("float range: empty-interior range must be closed on both ends: %w", terr.ErrNormalForm)
	}
	return FloatRange{Lower: lower, Upper: upper, LowerInc: lowerInc, UpperInc: upperInc}, nil
}

// Contains reports whether v lies within r, honouring inclusivity.
func (r FloatRange) Contains(v float64) bool {
	if v < r.Lower || v > r.Upper {
		return false
	}
	if v == r.Lower && !r.LowerInc {
		return false
	}
	if v == r.Upper && !r.UpperInc {
		return false
	}
	return true
}

// String emits at most maxdd fractional digits, matching floatspan_out
// (spec.md §3.1).
func (r FloatRange) String(maxdd int) string {
	lb, ub := "[", "]"
	if !r.LowerInc {
		lb = "("
	}
	if !r.UpperInc {
		ub = ")"
	}
	return fmt.Sprintf("%s%s, %s%s", lb, FormatFloat(r.Lower, maxdd), FormatFloat(r.Upper, maxdd), ub)
}

// FormatFloat rounds v to at most maxdd fractional digits and trims trailing
// zeros, the shape floatspan_out and every float temporal emitter uses
// (spec.md §3.1). Shared across packages so "≤ maxdd dd" means the same
// thing everywhere a float crosses the text boundary.
func FormatFloat(v float64, maxdd int) string {
	s := strconv.FormatFloat(v, 'f', maxdd, 64)
	if maxdd <= 0 {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		s = "0"
	}
	return s
}
