// Package quality scores the reliability of an ingested drilling table.
//
// Score is a pure function over the raw rows: it produces completeness,
// conformity and statistical-quality percentages plus their rounded mean.
// It consumes the raw table rather than the canonical record set because
// two of its metrics are not derivable after normalization — conformity
// inspects the original column names, and completeness covers the
// pump-output passthrough field that never reaches a canonical record.
//
// The statistics metric is deliberately optimistic: it starts at 100, loses
// ten points per high-variance field, and is floored at 75. That floor is a
// documented limitation of the scoring model, not a defect.
package quality
