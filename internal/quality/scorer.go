package quality

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/zahidhamidi/well-data-refine-62/internal/ingest"
	"github.com/zahidhamidi/well-data-refine-62/pkg/contracts/domain"
)

// completenessFields are the canonical fields whose fill rate is averaged
// into the completeness score.
var completenessFields = []string{
	ingest.FieldRPM,
	ingest.FieldWOB,
	ingest.FieldPumpOutput,
	ingest.FieldDepth,
}

// conformityNames are the column-name fragments the conformity score looks
// for, each matched as a case-insensitive substring of any header.
var conformityNames = []string{"wob", "depth", "timestamp", "rpm"}

// statisticsFields are the fields whose dispersion feeds the statistics
// score.
var statisticsFields = []string{
	ingest.FieldWOB,
	ingest.FieldRPM,
	ingest.FieldDepth,
}

const (
	statisticsPenalty = 10
	statisticsFloor   = 75
)

// Score computes the quality report for a raw table. It is deterministic and
// has no side effects; an empty table scores zero across the board.
func Score(headers []string, rows []domain.RawRecord) domain.QualityReport {
	if len(rows) == 0 {
		return domain.QualityReport{}
	}

	cm := ingest.ResolveColumns(headers)

	completeness := scoreCompleteness(cm, rows)
	conformity := scoreConformity(headers)
	statistics := scoreStatistics(cm, rows)

	return domain.QualityReport{
		Completeness: completeness,
		Conformity:   conformity,
		Statistics:   statistics,
		Overall:      roundMean(completeness, conformity, statistics),
	}
}

// scoreCompleteness averages the fill percentage of the four required
// fields. A cell counts as filled only when it parses as a number; this uses
// the same lenient parser as ingestion, so a field defaulted to zero there
// is counted as missing here.
func scoreCompleteness(cm ingest.ColumnMap, rows []domain.RawRecord) int {
	total := float64(len(rows))
	var sum float64
	for _, field := range completenessFields {
		filled := 0
		for _, row := range rows {
			if cm.Measurement(row, field).Parsed {
				filled++
			}
		}
		sum += float64(filled) / total * 100
	}
	return int(math.Round(sum / float64(len(completenessFields))))
}

// scoreConformity counts how many of the expected column names appear as a
// substring of any ingested header.
func scoreConformity(headers []string) int {
	matched := 0
	for _, name := range conformityNames {
		for _, h := range headers {
			if strings.Contains(strings.ToLower(h), name) {
				matched++
				break
			}
		}
	}
	return int(math.Round(float64(matched) / float64(len(conformityNames)) * 100))
}

// scoreStatistics starts at 100 and deducts a fixed penalty for every field
// whose population variance exceeds twice its mean, flooring at 75.
func scoreStatistics(cm ingest.ColumnMap, rows []domain.RawRecord) int {
	score := 100
	for _, field := range statisticsFields {
		values := parseableValues(cm, rows, field)
		if len(values) == 0 {
			continue
		}
		mean := stat.Mean(values, nil)
		variance := stat.PopVariance(values, nil)
		if variance > 2*mean {
			score -= statisticsPenalty
		}
	}
	if score < statisticsFloor {
		score = statisticsFloor
	}
	return score
}

func parseableValues(cm ingest.ColumnMap, rows []domain.RawRecord, field string) []float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if m := cm.Measurement(row, field); m.Parsed {
			values = append(values, m.Value)
		}
	}
	return values
}

func roundMean(scores ...int) int {
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return int(math.Round(float64(sum) / float64(len(scores))))
}
