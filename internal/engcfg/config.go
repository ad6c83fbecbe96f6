// Package engcfg provides a builder-with-defaults configuration struct for
// the temporal engine, in the same shape as the teacher's
// lidar.BackgroundConfig / lidar.DefaultBackgroundConfig.
package engcfg

import "encoding/json"

// EngineConfig tunes the normal-form tolerances, text emission, and index
// parameters used across the engine. Zero value is never used directly;
// construct with DefaultEngineConfig.
type EngineConfig struct {
	// MaxDD bounds the fractional digits floatspan_out and float temporal
	// emitters print (spec §3.1).
	MaxDD int

	// CollinearEpsilon is the tolerance used when deciding whether an
	// internal Sequence instant is collinear in space-time with its
	// neighbours and therefore redundant (spec §3.3).
	CollinearEpsilon float64

	// EqualEpsilon is the tolerance used when comparing float base values
	// for ever_equals/always_equals and restriction-to-value crossing
	// detection. Point equality stays bit-for-bit per spec §4.B; this only
	// governs scalar floats.
	EqualEpsilon float64

	// OctreeMaxPageEntries bounds the number of leaf bboxes considered by a
	// single picksplit call before the page is split (spec §4.J).
	OctreeMaxPageEntries int

	// OctreeMinPageEntries is the smallest page picksplit will still bother
	// splitting; smaller pages are left as a single leaf bucket.
	OctreeMinPageEntries int

	// SelectivityDefault is returned, clamped to [0,1], when the estimator
	// has no histogram to consult (spec §4.K, §7 statistics_unavailable).
	SelectivityDefault float64

	// BoundaryShiftFactor is the directional-operator boundary correction
	// inherited from the upstream statistics library; see spec.md §9 and
	// DESIGN.md's Open Question resolution.
	BoundaryShiftFactor float64
}

// DefaultEngineConfig returns an EngineConfig tuned for general-purpose use.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		MaxDD:                 6,
		CollinearEpsilon:      1e-11,
		EqualEpsilon:          1e-11,
		OctreeMaxPageEntries:  256,
		OctreeMinPageEntries:  8,
		SelectivityDefault:    0.01,
		BoundaryShiftFactor:   0.5,
	}
}

// optionalConfig mirrors EngineConfig with pointer fields so partial JSON
// overrides (a subset of fields) can be loaded without clobbering defaults,
// the same pattern as the teacher's config.TuningConfig.
type optionalConfig struct {
	MaxDD                 *int     `json:"max_dd,omitempty"`
	CollinearEpsilon      *float64 `json:"collinear_epsilon,omitempty"`
	EqualEpsilon          *float64 `json:"equal_epsilon,omitempty"`
	OctreeMaxPageEntries  *int     `json:"octree_max_page_entries,omitempty"`
	OctreeMinPageEntries  *int     `json:"octree_min_page_entries,omitempty"`
	SelectivityDefault    *float64 `json:"selectivity_default,omitempty"`
	BoundaryShiftFactor   *float64 `json:"boundary_shift_factor,omitempty"`
}

// LoadOverrides applies a JSON document of optional overrides on top of c,
// returning a new EngineConfig. Fields absent from data keep c's value.
func (c *EngineConfig) LoadOverrides(data []byte) (*EngineConfig, error) {
	var o optionalConfig
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	out := *c
	if o.MaxDD != nil {
		out.MaxDD = *o.MaxDD
	}
	if o.CollinearEpsilon != nil {
		out.CollinearEpsilon = *o.CollinearEpsilon
	}
	if o.EqualEpsilon != nil {
		out.EqualEpsilon = *o.EqualEpsilon
	}
	if o.OctreeMaxPageEntries != nil {
		out.OctreeMaxPageEntries = *o.OctreeMaxPageEntries
	}
	if o.OctreeMinPageEntries != nil {
		out.OctreeMinPageEntries = *o.OctreeMinPageEntries
	}
	if o.SelectivityDefault != nil {
		out.SelectivityDefault = *o.SelectivityDefault
	}
	if o.BoundaryShiftFactor != nil {
		out.BoundaryShiftFactor = *o.BoundaryShiftFactor
	}
	return &out, nil
}
