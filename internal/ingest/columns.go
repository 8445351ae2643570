package ingest

import (
	"strconv"
	"strings"

	"github.com/zahidhamidi/well-data-refine-62/pkg/contracts/domain"
)

// Canonical field names used across the pipeline.
const (
	FieldDepth = "depth"
	FieldWOB   = "wob"
	FieldRPM   = "rpm"
	FieldROP   = "rop"
	// FieldPumpOutput is a passthrough field: it never reaches the canonical
	// record but participates in the completeness score.
	FieldPumpOutput = "pump_output"
)

// fieldSynonyms maps a canonical field to the header fragments that identify
// it, in match priority order. Matching is case-insensitive substring
// containment; the first header that matches any fragment wins.
var fieldSynonyms = map[string][]string{
	FieldDepth:      {"depth", "md"},
	FieldWOB:        {"wob", "weight on bit", "weight-on-bit"},
	FieldRPM:        {"rpm", "rotary speed", "rotary"},
	FieldROP:        {"rop", "rate of penetration", "penetration rate"},
	FieldPumpOutput: {"pump output", "total pump", "flow rate", "flow in"},
}

// ColumnMap resolves canonical field names to the actual header of the
// ingested table.
type ColumnMap map[string]string

// ResolveColumns maps every known canonical field to the first header that
// matches one of its synonyms. Fields with no matching header are absent
// from the returned map.
func ResolveColumns(headers []string) ColumnMap {
	cm := make(ColumnMap, len(fieldSynonyms))
	for field, synonyms := range fieldSynonyms {
		if h, ok := resolveField(headers, synonyms); ok {
			cm[field] = h
		}
	}
	return cm
}

func resolveField(headers []string, synonyms []string) (string, bool) {
	for _, syn := range synonyms {
		for _, h := range headers {
			if strings.Contains(strings.ToLower(h), syn) {
				return h, true
			}
		}
	}
	return "", false
}

// ParseMeasurement performs the lenient parse-with-default conversion. A
// blank or non-numeric cell yields {0, false}; thousands separators are
// tolerated.
func ParseMeasurement(cell string) domain.Measurement {
	s := strings.TrimSpace(cell)
	if s == "" {
		return domain.Measurement{}
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return domain.Measurement{}
	}
	return domain.Measurement{Value: v, Parsed: true}
}

// Cell returns the raw cell for a canonical field, or "" when the field was
// not resolved or the row lacks it.
func (cm ColumnMap) Cell(row domain.RawRecord, field string) string {
	header, ok := cm[field]
	if !ok {
		return ""
	}
	return row[header]
}

// Measurement parses the cell for a canonical field out of a row.
func (cm ColumnMap) Measurement(row domain.RawRecord, field string) domain.Measurement {
	return ParseMeasurement(cm.Cell(row, field))
}
