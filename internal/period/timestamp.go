// Package period implements the engine's primitive time types: Timestamp,
// Period, PeriodSet, and TimestampSet (spec.md §3.1).
package period

import (
	"fmt"
	"time"

	"github.com/kestrel-spatial/tempo/internal/terr"
	"github.com/kestrel-spatial/tempo/internal/tzcache"
)

// Timestamp is a 64-bit signed microsecond count since the Unix epoch,
// matching spec.md §3.1. It is the engine's sole representation of a point
// in time; conversion to/from time.Time happens at the parser/emitter
// boundary only.
type Timestamp int64

// FromTime converts a time.Time to a Timestamp, truncating to microseconds.
func FromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixMicro())
}

// Time converts a Timestamp back to a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.UnixMicro(int64(t)).UTC()
}

// String renders the canonical "space separator, microsecond precision" form
// from spec.md §6.1/§9.
func (t Timestamp) String() string {
	tm := t.Time()
	if tm.Nanosecond() == 0 {
		return tm.Format("2006-01-02 15:04:05")
	}
	return tm.Format("2006-01-02 15:04:05.000000")
}

// InZone converts t into tz's current wall-clock time via
// internal/tzcache's process-wide zone cache, for display purposes only —
// Timestamp's own representation never leaves UTC, so callers that don't
// need localized output can ignore this entirely.
func (t Timestamp) InZone(tz string) (time.Time, error) {
	loc, err := tzcache.Load(tz)
	if err != nil {
		return time.Time{}, err
	}
	return t.Time().In(loc), nil
}

// timestampLayouts are tried in order by ParseTimestamp. The canonical
// emitted form uses a space separator (spec.md §6.1, §9's Open Question);
// "T" is accepted on input for robustness, matching the parser/emitter
// asymmetry spec.md's Open Question flags rather than hides.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseTimestamp parses the canonical textual timestamp form. It accepts
// both the space and "T" separators; see timestampLayouts.
func ParseTimestamp(s string) (Timestamp, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		if tm, err := time.Parse(layout, s); err == nil {
			return FromTime(tm), nil
		} else {
			lastErr = err
		}
	}
	return 0, fmt.Errorf("timestamp: %q: %w", s, lastErr)
}

// Before, After and Equal give Timestamp a total order without requiring
// callers to unwrap the underlying int64.
func (t Timestamp) Before(o Timestamp) bool { return t < o }
func (t Timestamp) After(o Timestamp) bool  { return t > o }
func (t Timestamp) Equal(o Timestamp) bool  { return t == o }

// Interval is a calendar interval of (months, days, microseconds), matching
// spec.md §3.1. Months and days are kept separate from microseconds because
// they are calendar-relative (a month's length depends on which month), so
// Interval is only ever applied to a Timestamp via Shift, never compared as
// a flat duration.
type Interval struct {
	Months       int32
	Days         int32
	Microseconds int64
}

// Shift adds an Interval to a Timestamp. Months/days are applied against the
// wall-clock calendar in UTC; microseconds are added last.
func (t Timestamp) Shift(iv Interval) Timestamp {
	tm := t.Time()
	tm = tm.AddDate(0, int(iv.Months), int(iv.Days))
	tm = tm.Add(time.Duration(iv.Microseconds) * time.Microsecond)
	return FromTime(tm)
}

// TimestampSet is an ordered sequence of strictly increasing Timestamps
// (spec.md §3.3 TimestampSet).
type TimestampSet struct {
	ts []Timestamp
}

// NewTimestampSet validates that ts is strictly increasing and returns an
// owned, sorted-order TimestampSet.
func NewTimestampSet(ts []Timestamp) (*TimestampSet, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("timestamp set must contain at least one timestamp: %w", terr.ErrNormalForm)
	}
	cp := append([]Timestamp(nil), ts...)
	for i := 1; i < len(cp); i++ {
		if !cp[i-1].Before(cp[i]) {
			return nil, fmt.Errorf("timestamp set: timestamps must be strictly increasing at index %d: %w", i, terr.ErrNormalForm)
		}
	}
	return &TimestampSet{ts: cp}, nil
}

// Timestamps returns the composing timestamps by value; the caller may not
// mutate the engine's owned slice, so a copy is returned.
func (s *TimestampSet) Timestamps() []Timestamp {
	return append([]Timestamp(nil), s.ts...)
}

// NumTimestamps returns the number of composing timestamps.
func (s *TimestampSet) NumTimestamps() int { return len(s.ts) }

// StartTimestamp and EndTimestamp return the first/last composing timestamp.
func (s *TimestampSet) StartTimestamp() Timestamp { return s.ts[0] }
func (s *TimestampSet) EndTimestamp() Timestamp   { return s.ts[len(s.ts)-1] }
