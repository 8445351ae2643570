// Package decimate reduces a dense canonical record set to a sparse summary
// series.
//
// Select narrows the set to one operator-defined depth range; unknown range
// ids fail open and pass the set through untouched. Decimate dispatches on
// the configured strategy: depth-interval binning with per-bin medians, or
// fixed-bin-count chunking with per-chunk means. Both are pure functions —
// identical inputs always yield identical output — and both signal "no
// decimated output" with a nil slice instead of an error, so a non-positive
// interval or an empty filtered set degrades quietly.
//
// Cache memoizes engine output keyed by a digest of (records, config,
// active range), matching the recompute-on-change behavior of the
// interactive caller.
package decimate
