package tengrpc

// ParseRequest carries a temporal-point literal in the textual grammar of
// spec.md §4.D/§6.1 (e.g. "POINT(0 0)@2001-01-01 00:00:00").
type ParseRequest struct {
	Text string `json:"text"`
}

// ParseResponse reports the parsed value's variant and instant count, plus
// its canonical re-serialization (round-tripped through Sequence.String
// and friends) for the caller to confirm normal-form.
type ParseResponse struct {
	Kind         string `json:"kind"`
	InstantCount int32  `json:"instant_count"`
	Canonical    string `json:"canonical"`
}

// RestrictRequest slices a temporal-point Sequence to a period.
type RestrictRequest struct {
	Text           string `json:"text"`
	LowerTimestamp string `json:"lower_timestamp"`
	UpperTimestamp string `json:"upper_timestamp"`
	LowerInclusive bool   `json:"lower_inclusive"`
	UpperInclusive bool   `json:"upper_inclusive"`
}

// RestrictResponse is the restricted value's text form, or Ok=false when
// the period doesn't intersect the value's domain (spec.md §4.G: emptiness
// is a valid, non-error outcome).
type RestrictResponse struct {
	Text string `json:"text"`
	Ok   bool   `json:"ok"`
}

// SynchronizeRequest names two temporal-point Sequences to synchronize
// onto a common instant set (spec.md §4.F).
type SynchronizeRequest struct {
	SequenceAText string `json:"sequence_a_text"`
	SequenceBText string `json:"sequence_b_text"`
}

// SynchronizeResponse reports the synchronized instant count and the two
// resynchronized sequences' text form.
type SynchronizeResponse struct {
	SequenceAText string `json:"sequence_a_text"`
	SequenceBText string `json:"sequence_b_text"`
	InstantCount  int32  `json:"instant_count"`
}

// NearestApproachDistanceRequest names two temporal-point Sequences whose
// closest approach distance is being asked for (spec.md §4.I NAD).
type NearestApproachDistanceRequest struct {
	SequenceAText string `json:"sequence_a_text"`
	SequenceBText string `json:"sequence_b_text"`
}

// NearestApproachDistanceResponse is the minimum Euclidean distance between
// the two sequences over their shared domain, or Ok=false when the domains
// don't overlap.
type NearestApproachDistanceResponse struct {
	Distance float64 `json:"distance"`
	Ok       bool    `json:"ok"`
}
