package period

import (
	"fmt"

	"github.com/kestrel-spatial/tempo/internal/terr"
)

// Period is a half-open or closed interval [lower, upper] with two
// inclusivity flags (spec.md §3.1). lower <= upper always; when lower ==
// upper, both flags must be true (a degenerate instant period).
type Period struct {
	Lower, Upper         Timestamp
	LowerInc, UpperInc bool
}

// NewPeriod validates and constructs a Period.
func NewPeriod(lower, upper Timestamp, lowerInc, upperInc bool) (Period, error) {
	if lower.After(upper) {
		return Period{}, fmt.Errorf("period: lower %s is after upper %s: %w", lower, upper, terr.ErrNormalForm)
	}
	if lower.Equal(upper) && !(lowerInc && upperInc) {
		return Period{}, fmt.Errorf("period: empty-interior instant period must be closed on both ends: %w", terr.ErrNormalForm)
	}
	return Period{Lower: lower, Upper: upper, LowerInc: lowerInc, UpperInc: upperInc}, nil
}

// Contains reports whether t lies within p, honouring inclusivity.
func (p Period) Contains(t Timestamp) bool {
	if t.Before(p.Lower) || t.After(p.Upper) {
		return false
	}
	if t.Equal(p.Lower) && !p.LowerInc {
		return false
	}
	if t.Equal(p.Upper) && !p.UpperInc {
		return false
	}
	return true
}

// Overlaps reports whether p and o share any instant.
func (p Period) Overlaps(o Period) bool {
	if p.Upper.Before(o.Lower) || o.Upper.Before(p.Lower) {
		return false
	}
	if p.Upper.Equal(o.Lower) && !(p.UpperInc && o.LowerInc) {
		return false
	}
	if o.Upper.Equal(p.Lower) && !(o.UpperInc && p.LowerInc) {
		return false
	}
	return true
}

// Adjacent reports whether p and o touch at a single instant without
// overlapping (one side exclusive at the shared boundary).
func (p Period) Adjacent(o Period) bool {
	if p.Upper.Equal(o.Lower) && p.UpperInc != o.LowerInc {
		return true
	}
	if o.Upper.Equal(p.Lower) && o.UpperInc != p.LowerInc {
		return true
	}
	return false
}

// Intersect returns the overlap of p and o, or false if they don't overlap.
func (p Period) Intersect(o Period) (Period, bool) {
	if !p.Overlaps(o) {
		return Period{}, false
	}
	lower, lowerInc := p.Lower, p.LowerInc
	if o.Lower.After(p.Lower) {
		lower, lowerInc = o.Lower, o.LowerInc
	} else if o.Lower.Equal(p.Lower) {
		lowerInc = p.LowerInc && o.LowerInc
	}
	upper, upperInc := p.Upper, p.UpperInc
	if o.Upper.Before(p.Upper) {
		upper, upperInc = o.Upper, o.UpperInc
	} else if o.Upper.Equal(p.Upper) {
		upperInc = p.UpperInc && o.UpperInc
	}
	return Period{Lower: lower, Upper: upper, LowerInc: lowerInc, UpperInc: upperInc}, true
}

// String renders "[lower, upper]" style text with the bracket shapes from
// spec.md §6.1.
func (p Period) String() string {
	lb, ub := "[", "]"
	if !p.LowerInc {
		lb = "("
	}
	if !p.UpperInc {
		ub = ")"
	}
	return fmt.Sprintf("%s%s, %s%s", lb, p.Lower, p.Upper, ub)
}

// PeriodSet is an ordered sequence of pairwise non-overlapping, non-adjacent
// Periods (spec.md §3.1).
type PeriodSet struct {
	periods []Period
}

// NewPeriodSet validates ps is time-ordered, non-overlapping and
// non-adjacent, and returns an owned PeriodSet.
func NewPeriodSet(ps []Period) (*PeriodSet, error) {
	if len(ps) == 0 {
		return nil, fmt.Errorf("period set must contain at least one period: %w", terr.ErrNormalForm)
	}
	cp := append([]Period(nil), ps...)
	for i := 1; i < len(cp); i++ {
		prev, cur := cp[i-1], cp[i]
		if cur.Lower.Before(prev.Lower) {
			return nil, fmt.Errorf("period set: periods at index %d and %d are not time-ordered: %w", i-1, i, terr.ErrNormalForm)
		}
		if cur.Lower.Before(prev.Upper) || (cur.Lower.Equal(prev.Upper)) {
			if cur.Overlaps(prev) || cur.Adjacent(prev) {
				return nil, fmt.Errorf("period set: periods at index %d and %d overlap or are adjacent: %w", i-1, i, terr.ErrNormalForm)
			}
		}
	}
	return &PeriodSet{periods: cp}, nil
}

// Periods returns a copy of the composing periods.
func (s *PeriodSet) Periods() []Period { return append([]Period(nil), s.periods...) }

// NumPeriods returns the number of composing periods.
func (s *PeriodSet) NumPeriods() int { return len(s.periods) }

// Contains reports whether t is contained in any composing period.
func (s *PeriodSet) Contains(t Timestamp) bool {
	for _, p := range s.periods {
		if p.Contains(t) {
			return true
		}
	}
	return false
}

// StartTimestamp and EndTimestamp return the bounds of the whole set.
func (s *PeriodSet) StartTimestamp() Timestamp { return s.periods[0].Lower }
func (s *PeriodSet) EndTimestamp() Timestamp   { return s.periods[len(s.periods)-1].Upper }
