// Package exporter serializes decimated points to the delimited text format
// downstream tooling consumes. The header names, column order, delimiter and
// per-column decimal precision are a compatibility contract and must not
// change.
package exporter
