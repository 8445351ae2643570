package domain

import "strings"

// RawRecord is a single row of tabular input: free-form column name to the
// raw cell text. Raw records are produced by the ingestion decoders and
// discarded once normalized.
type RawRecord map[string]string

// IsEmpty reports whether every cell in the row is blank.
func (r RawRecord) IsEmpty() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Measurement is a numeric value carrying parse provenance. Parsed is false
// when the source cell was missing or not numeric and the value was
// defaulted to zero.
type Measurement struct {
	Value  float64 `json:"value"`
	Parsed bool    `json:"parsed"`
}

// DrillingRecord is the canonical normalized record. Retained records always
// satisfy Depth > 0; rows violating that are dropped during ingestion.
type DrillingRecord struct {
	Depth float64 `json:"depth"`
	WOB   float64 `json:"wob"`
	RPM   float64 `json:"rpm"`
	ROP   float64 `json:"rop"`
}

// IsValid reports whether the record passed the ingestion depth gate.
func (dr DrillingRecord) IsValid() bool {
	return dr.Depth > 0
}
