package domain

import (
	"slices"
	"strconv"
	"strings"
)

// UnknownVolume is the sentinel volume of a measure without estimate.
const UnknownVolume int64 = -1

// Measure is one entry of the measure catalog: a targeting measure with
// metadata and a historical volume estimate (impressions per day).
type Measure struct {
	ID              int64  `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	Category        string `json:"category,omitempty" yaml:"category"`
	EstimatedVolume int64  `json:"estimatedVolume" yaml:"estimatedVolume"`
}

// HistoricalMeasureVolume carries the observed or estimated volume of a
// measure into an allocation pass. Volume is UnknownVolume when no
// estimate exists.
type HistoricalMeasureVolume struct {
	MeasureID int64 `json:"measureId"`
	Volume    int64 `json:"volume"`
}

// Known reports whether the volume carries an estimate.
func (v HistoricalMeasureVolume) Known() bool {
	return v.Volume >= 0
}

// MeasureSet is an ordered, deduplicated set of measure identifiers. Use
// NewMeasureSet to build one from arbitrary input.
type MeasureSet []int64

// NewMeasureSet sorts and deduplicates ids. The input slice is not
// modified.
func NewMeasureSet(ids ...int64) MeasureSet {
	out := slices.Clone(ids)
	slices.Sort(out)
	return MeasureSet(slices.Compact(out))
}

// String renders the canonical text form, e.g. "3,17,42". Two measure sets
// with the same members always render identically.
func (s MeasureSet) String() string {
	parts := make([]string, len(s))
	for i, id := range s {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// Contains reports whether id is a member of the set.
func (s MeasureSet) Contains(id int64) bool {
	_, ok := slices.BinarySearch(s, id)
	return ok
}
