// Package tzcache implements a process-wide, init-once timezone lookup
// cache, generalizing the teacher's curated-list/validate/label shape
// (internal/units/timezone.go) onto Go's own zoneinfo database instead of a
// fixed list of 55 cities.
//
// Grounded on original_source/meos/postgres/timezone/pgtz.c's pg_tzset: a
// zone name is looked up under its *uppercased* form so "utc"/"UTC"/"Utc"
// share one cache entry, "GMT" is special-cased rather than resolved
// through the OS zoneinfo tree, and a POSIX fixed-offset spec such as
// "<+05:30>-05:30" (pg_tzset_offset's output shape) is parsed directly
// without ever touching zoneinfo.
package tzcache

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kestrel-spatial/tempo/internal/terr"
)

var (
	mu    sync.RWMutex
	cache = make(map[string]*time.Location)
)

// Load resolves name to a *time.Location, caching the result under name's
// uppercased form. Repeated lookups of the same zone (in any case) never
// re-touch the OS zoneinfo tree once resolved.
func Load(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("tzcache: empty timezone name: %w", terr.ErrInvalidInput)
	}
	key := strings.ToUpper(name)

	mu.RLock()
	loc, ok := cache[key]
	mu.RUnlock()
	if ok {
		return loc, nil
	}

	mu.Lock()
	defer mu.Unlock()
	if loc, ok := cache[key]; ok {
		return loc, nil
	}

	loc, err := resolve(key, name)
	if err != nil {
		return nil, err
	}
	cache[key] = loc
	return loc, nil
}

func resolve(key, original string) (*time.Location, error) {
	if key == "GMT" || key == "UTC" {
		return time.UTC, nil
	}
	if loc, ok := parseFixedOffset(original); ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(original)
	if err != nil {
		// Fall back to a case-insensitive search of the zoneinfo tree for
		// the on-disk spelling of the name.
		const root = "/usr/share/zoneinfo"
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil || d.IsDir() || loc != nil {
				return nil
			}
			if rel, relErr := filepath.Rel(root, path); relErr == nil && strings.EqualFold(rel, original) {
				loc, err = time.LoadLocation(rel)
			}
			return nil
		})
	}
	if err != nil {
		return nil, fmt.Errorf("tzcache: unknown timezone %q: %w", original, terr.ErrInvalidInput)
	}
	return loc, nil
}

// fixedOffsetPattern matches a POSIX TZ fixed-offset spec of the shape
// pg_tzset_offset emits: a bracketed ISO-sign label followed by the
// POSIX-sign offset zic actually parses, e.g. "<+05:30>-05:30" or
// "<-04:00>+04:00". The bracketed label already carries the real,
// ISO-sign (east-positive) UTC offset; the trailing part is redundant
// POSIX-convention bookkeeping this parser doesn't need to re-derive.
var fixedOffsetPattern = regexp.MustCompile(`^<([+-])(\d{2}):(\d{2})>[+-]\d{2}:\d{2}$`)

func parseFixedOffset(spec string) (*time.Location, bool) {
	m := fixedOffsetPattern.FindStringSubmatch(spec)
	if m == nil {
		return nil, false
	}
	hh, _ := strconv.Atoi(m[2])
	mm, _ := strconv.Atoi(m[3])
	seconds := hh*3600 + mm*60
	if m[1] == "-" {
		seconds = -seconds
	}
	name := spec[:strings.IndexByte(spec, '>')+1]
	return time.FixedZone(name, seconds), true
}

// Validate reports whether name resolves to a known zone, without
// propagating the error — the shape of the teacher's IsTimezoneValid.
func Validate(name string) bool {
	_, err := Load(name)
	return err == nil
}

// CommonZones is a curated list of commonly used IANA zone names, one per
// unique standard/DST offset pair, carried over from the teacher's
// CommonTimezones list (roughly west to east, Niue to Apia) for UIs that want
// a short picklist instead of the full zoneinfo database.
var CommonZones = []string{
	"Pacific/Niue", "America/Anchorage", "Pacific/Honolulu",
	"America/Los_Angeles", "America/Denver", "America/Chicago",
	"America/New_York", "America/Sao_Paulo", "Atlantic/Azores",
	"UTC", "Europe/Berlin", "Africa/Johannesburg", "Europe/Athens",
	"Asia/Dubai", "Asia/Kolkata", "Asia/Dhaka", "Asia/Bangkok",
	"Asia/Singapore", "Asia/Seoul", "Australia/Sydney",
	"Pacific/Auckland", "Pacific/Apia",
}

// IsCommonZone reports whether tz is one of CommonZones.
func IsCommonZone(tz string) bool {
	for _, z := range CommonZones {
		if z == tz {
			return true
		}
	}
	return false
}

// Label returns a human-readable "name (current offset)" string for tz,
// computed from the cached *time.Location rather than a hand-maintained
// table — so it stays correct across DST transitions the teacher's static
// label map couldn't reflect.
func Label(tz string) string {
	loc, err := Load(tz)
	if err != nil {
		return tz
	}
	_, offset := time.Now().In(loc).Zone()
	return fmt.Sprintf("%s (%s)", tz, formatOffset(offset))
}

func formatOffset(seconds int) string {
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}
